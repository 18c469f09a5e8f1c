// Package words provides database operations for vocabulary words.
//
// # Usage
//
//	repo := words.NewRepository(db, log)
//	word, err := repo.Create(ctx, words.CreateInput{WrittenForm: "食べる", ...})
//	page, total, err := repo.Page(ctx, paging.Request{Limit: 20, SortField: "wrong_count", SortDir: paging.Desc})
//
// Listings and Get fill Word.CorrectCount and Word.WrongCount from review rows.
package words

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/database/paging"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
	"github.com/mrlokans/wordstudy/internal/validation"
)

// SortFields are the sortable word fields, including the computed review counts.
var SortFields = paging.NewFields("word", "words.id", "written_form", map[string]string{
	"written_form":  "words.written_form",
	"romanization":  "words.romanization",
	"gloss":         "words.gloss",
	"correct_count": "COALESCE(review_counts.correct_count, 0)",
	"wrong_count":   "COALESCE(review_counts.wrong_count, 0)",
})

// WithReviewCounts selects words together with their review tallies. Words
// without reviews get zero counts.
func WithReviewCounts(q *gorm.DB) *gorm.DB {
	return q.Select("words.*, " +
		"COALESCE(review_counts.correct_count, 0) AS correct_count, " +
		"COALESCE(review_counts.wrong_count, 0) AS wrong_count").
		Joins(`LEFT JOIN (
			SELECT word_id,
				SUM(CASE WHEN correct THEN 1 ELSE 0 END) AS correct_count,
				SUM(CASE WHEN correct THEN 0 ELSE 1 END) AS wrong_count
			FROM word_review_items
			GROUP BY word_id
		) AS review_counts ON review_counts.word_id = words.id`)
}

// CreateInput is the caller-supplied shape of a new word.
type CreateInput struct {
	WrittenForm  string              `json:"written_form" validate:"required,max=255"`
	Romanization string              `json:"romanization" validate:"required,max=255"`
	Gloss        string              `json:"gloss" validate:"required,max=512"`
	Parts        []entities.WordPart `json:"parts" validate:"required,min=1,dive"`
}

// UpdateInput changes only the non-nil fields.
type UpdateInput struct {
	WrittenForm  *string              `json:"written_form,omitempty"`
	Romanization *string              `json:"romanization,omitempty"`
	Gloss        *string              `json:"gloss,omitempty"`
	Parts        *[]entities.WordPart `json:"parts,omitempty"`
}

// Repository handles all word database operations.
type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewRepository creates a new words repository.
func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: logger.OrNop(log).With("repo", "words")}
}

// Create inserts a word. The written form must not be taken.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*entities.Word, error) {
	const op = "words.create"

	in = in.normalized()
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	word := &entities.Word{
		WrittenForm:  in.WrittenForm,
		Romanization: in.Romanization,
		Gloss:        in.Gloss,
		Parts:        datatypes.JSONSlice[entities.WordPart](in.Parts),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureWrittenFormFree(tx, op, word.WrittenForm, 0); err != nil {
			return err
		}
		return tx.Create(word).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("word created", "word_id", word.ID)
	return word, nil
}

// Get retrieves a word by ID with its review tallies.
func (r *Repository) Get(ctx context.Context, id uint) (*entities.Word, error) {
	const op = "words.get"
	word, err := loadWithCounts(r.db.WithContext(ctx), op, id)
	if err != nil {
		return nil, r.fail(op, err)
	}
	return word, nil
}

// GetByWrittenForm retrieves a word by its exact written form.
func (r *Repository) GetByWrittenForm(ctx context.Context, writtenForm string) (*entities.Word, error) {
	const op = "words.get_by_written_form"
	var word entities.Word
	err := WithReviewCounts(r.db.WithContext(ctx).Model(&entities.Word{})).
		Where("words.written_form = ?", strings.TrimSpace(writtenForm)).
		Take(&word).Error
	if err != nil {
		if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
			return nil, storeerr.NotFound(op, "word %q not found", writtenForm)
		}
		return nil, r.fail(op, err)
	}
	return &word, nil
}

// Page returns one page of words with their review tallies.
func (r *Repository) Page(ctx context.Context, req paging.Request) ([]entities.Word, int64, error) {
	items, total, err := paging.Fetch[entities.Word](
		r.db.WithContext(ctx).Model(&entities.Word{}), req, SortFields, WithReviewCounts,
	)
	if err != nil {
		return nil, 0, r.fail("words.page", err)
	}
	return items, total, nil
}

// Update applies the non-nil fields of in. A new written form must not
// belong to another word.
func (r *Repository) Update(ctx context.Context, id uint, in UpdateInput) (*entities.Word, error) {
	const op = "words.update"

	var updated *entities.Word
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var word entities.Word
		if err := tx.First(&word, id).Error; err != nil {
			return notFoundOr(op, err, id)
		}

		merged := in.apply(word)
		if err := validation.Struct(op, merged); err != nil {
			return err
		}
		if merged.WrittenForm != word.WrittenForm {
			if err := ensureWrittenFormFree(tx, op, merged.WrittenForm, id); err != nil {
				return err
			}
		}

		word.WrittenForm = merged.WrittenForm
		word.Romanization = merged.Romanization
		word.Gloss = merged.Gloss
		word.Parts = datatypes.JSONSlice[entities.WordPart](merged.Parts)
		if err := tx.Save(&word).Error; err != nil {
			return err
		}

		var err error
		updated, err = loadWithCounts(tx, op, id)
		return err
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("word updated", "word_id", id)
	return updated, nil
}

// Delete removes a word together with its group memberships and review rows,
// and recounts every group it belonged to.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	const op = "words.delete"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var word entities.Word
		if err := database.LockWord(tx, id, &word); err != nil {
			return notFoundOr(op, err, id)
		}

		// Read after the word lock so no concurrent add is missed.
		var groupIDs []uint
		if err := tx.Model(&entities.Membership{}).Where("word_id = ?", id).Pluck("group_id", &groupIDs).Error; err != nil {
			return err
		}
		if _, err := database.LockGroups(tx, groupIDs...); err != nil {
			return err
		}

		if err := tx.Where("word_id = ?", id).Delete(&entities.Membership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("word_id = ?", id).Delete(&entities.ReviewItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&entities.Word{}, id).Error; err != nil {
			return err
		}
		return database.RecountWords(tx, groupIDs...)
	})
	if err != nil {
		return r.fail(op, err)
	}

	r.log.Debug("word deleted", "word_id", id)
	return nil
}

// Groups lists the groups the word belongs to, ordered by name.
func (r *Repository) Groups(ctx context.Context, id uint) ([]entities.Group, error) {
	const op = "words.groups"

	db := r.db.WithContext(ctx)
	ok, err := database.Exists(db, &entities.Word{}, id)
	if err != nil {
		return nil, r.fail(op, err)
	}
	if !ok {
		return nil, storeerr.NotFound(op, "word %d not found", id)
	}

	groups := make([]entities.Group, 0)
	err = db.Model(&entities.Group{}).
		Joins("JOIN study_group_words ON study_group_words.group_id = study_groups.id").
		Where("study_group_words.word_id = ?", id).
		Order("study_groups.name ASC, study_groups.id ASC").
		Find(&groups).Error
	if err != nil {
		return nil, r.fail(op, err)
	}
	return groups, nil
}

func (r *Repository) fail(op string, err error) error {
	mapped := storeerr.Map(op, err)
	if storeerr.KindOf(mapped) == storeerr.KindInternal {
		r.log.Error("word operation failed", "op", op, "error", err)
	}
	return mapped
}

func loadWithCounts(tx *gorm.DB, op string, id uint) (*entities.Word, error) {
	var word entities.Word
	err := WithReviewCounts(tx.Model(&entities.Word{})).Where("words.id = ?", id).Take(&word).Error
	if err != nil {
		return nil, notFoundOr(op, err, id)
	}
	return &word, nil
}

func ensureWrittenFormFree(tx *gorm.DB, op, writtenForm string, exceptID uint) error {
	var count int64
	q := tx.Model(&entities.Word{}).Where("written_form = ?", writtenForm)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storeerr.Conflict(op, "word %q already exists", writtenForm)
	}
	return nil
}

func notFoundOr(op string, err error, id uint) error {
	if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
		return storeerr.NotFound(op, "word %d not found", id)
	}
	return err
}

func (in CreateInput) normalized() CreateInput {
	out := CreateInput{
		WrittenForm:  strings.TrimSpace(in.WrittenForm),
		Romanization: strings.TrimSpace(in.Romanization),
		Gloss:        strings.TrimSpace(in.Gloss),
		Parts:        NormalizeParts(in.Parts),
	}
	return out
}

func (in UpdateInput) apply(w entities.Word) CreateInput {
	merged := CreateInput{
		WrittenForm:  w.WrittenForm,
		Romanization: w.Romanization,
		Gloss:        w.Gloss,
		Parts:        []entities.WordPart(w.Parts),
	}
	if in.WrittenForm != nil {
		merged.WrittenForm = *in.WrittenForm
	}
	if in.Romanization != nil {
		merged.Romanization = *in.Romanization
	}
	if in.Gloss != nil {
		merged.Gloss = *in.Gloss
	}
	if in.Parts != nil {
		merged.Parts = *in.Parts
	}
	return merged.normalized()
}

// NormalizeParts trims every written form and reading. It keeps empty
// entries so validation can report them.
func NormalizeParts(parts []entities.WordPart) []entities.WordPart {
	if parts == nil {
		return nil
	}
	out := make([]entities.WordPart, 0, len(parts))
	for _, p := range parts {
		readings := make([]string, 0, len(p.Readings))
		for _, reading := range p.Readings {
			readings = append(readings, strings.TrimSpace(reading))
		}
		out = append(out, entities.WordPart{
			WrittenForm: strings.TrimSpace(p.WrittenForm),
			Readings:    readings,
		})
	}
	return out
}
