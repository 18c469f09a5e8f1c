package importers

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wordstudy/internal/database/groups"
	"github.com/mrlokans/wordstudy/internal/database/words"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
)

// DefaultConcurrency bounds parallel part suggestions.
const DefaultConcurrency = 4

// WordStore persists words. Implemented by words.Repository.
type WordStore interface {
	Create(ctx context.Context, in words.CreateInput) (*entities.Word, error)
	GetByWrittenForm(ctx context.Context, writtenForm string) (*entities.Word, error)
}

// GroupStore manages the optional target group. Implemented by groups.Repository.
type GroupStore interface {
	GetByName(ctx context.Context, name string) (*entities.Group, error)
	Create(ctx context.Context, in groups.CreateInput) (*entities.Group, error)
	AddWords(ctx context.Context, groupID uint, wordIDs []uint) (*entities.Group, error)
}

// PartSuggester fills in parts for entries that have none.
// Implemented by reading.Suggester.
type PartSuggester interface {
	SuggestParts(writtenForm string) ([]entities.WordPart, error)
}

// Result summarises one import.
type Result struct {
	Created int
	Skipped int // written form already present
	Failed  int
	Errors  []string
	GroupID *uint
}

// Pipeline handles the import workflow:
// suggest missing parts → create words → add them to the target group.
type Pipeline struct {
	words       WordStore
	groups      GroupStore
	suggester   PartSuggester
	log         *logger.Logger
	Concurrency int
}

// NewPipeline creates an import pipeline. suggester may be nil, in which case
// entries without parts fail validation.
func NewPipeline(ws WordStore, gs GroupStore, suggester PartSuggester, log *logger.Logger) *Pipeline {
	return &Pipeline{
		words:       ws,
		groups:      gs,
		suggester:   suggester,
		log:         logger.OrNop(log).With("component", "importer"),
		Concurrency: DefaultConcurrency,
	}
}

// Import stores every entry of list. Invalid entries are counted as failed
// and the rest still import; only internal store errors abort the run.
func (p *Pipeline) Import(ctx context.Context, list *WordList) (Result, error) {
	var result Result
	if list == nil || (len(list.Words) == 0 && list.Group == "") {
		return result, nil
	}

	entries := make([]WordListEntry, len(list.Words))
	copy(entries, list.Words)
	suggestErrs, err := p.suggestParts(ctx, entries)
	if err != nil {
		return result, err
	}

	wordIDs := make([]uint, 0, len(entries))
	for i, entry := range entries {
		if suggestErrs[i] != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.WrittenForm, suggestErrs[i]))
			continue
		}

		word, err := p.words.Create(ctx, words.CreateInput{
			WrittenForm:  entry.WrittenForm,
			Romanization: entry.Romanization,
			Gloss:        entry.Gloss,
			Parts:        entry.Parts,
		})
		switch {
		case err == nil:
			result.Created++
			wordIDs = append(wordIDs, word.ID)
		case errors.Is(err, storeerr.ErrConflict):
			existing, lookupErr := p.words.GetByWrittenForm(ctx, entry.WrittenForm)
			if lookupErr != nil {
				return result, lookupErr
			}
			result.Skipped++
			wordIDs = append(wordIDs, existing.ID)
		case errors.Is(err, storeerr.ErrInvalidArgument):
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.WrittenForm, err))
		default:
			return result, err
		}
	}

	if list.Group != "" {
		group, err := p.targetGroup(ctx, list.Group)
		if err != nil {
			return result, err
		}
		if len(wordIDs) > 0 {
			if group, err = p.groups.AddWords(ctx, group.ID, wordIDs); err != nil {
				return result, err
			}
		}
		result.GroupID = &group.ID
	}

	p.log.Info("word list imported",
		"created", result.Created, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// suggestParts fills entries without parts in place. Per-entry failures are
// returned by index; the error is set only when ctx is cancelled.
func (p *Pipeline) suggestParts(ctx context.Context, entries []WordListEntry) ([]error, error) {
	errs := make([]error, len(entries))
	if p.suggester == nil {
		return errs, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	limit := p.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)

	for i := range entries {
		if len(entries[i].Parts) > 0 {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parts, err := p.suggester.SuggestParts(entries[i].WrittenForm)
			if err != nil {
				errs[i] = err
				return nil
			}
			entries[i].Parts = parts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return errs, nil
}

func (p *Pipeline) targetGroup(ctx context.Context, name string) (*entities.Group, error) {
	group, err := p.groups.GetByName(ctx, name)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, storeerr.ErrNotFound) {
		return nil, err
	}
	return p.groups.Create(ctx, groups.CreateInput{Name: name})
}
