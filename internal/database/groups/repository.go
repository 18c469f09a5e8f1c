// Package groups provides database operations for study groups and their
// word memberships.
//
// Every operation that changes membership recomputes words_count from the
// membership rows in the same transaction.
package groups

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/database/paging"
	"github.com/mrlokans/wordstudy/internal/database/words"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
	"github.com/mrlokans/wordstudy/internal/validation"
)

var SortFields = paging.NewFields("group", "study_groups.id", "name", map[string]string{
	"name":        "study_groups.name",
	"words_count": "study_groups.words_count",
})

type CreateInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	WordIDs []uint `json:"word_ids,omitempty"`
}

// UpdateInput renames the group and/or replaces its full word list.
// A non-nil empty WordIDs clears the group.
type UpdateInput struct {
	Name    *string `json:"name,omitempty"`
	WordIDs *[]uint `json:"word_ids,omitempty"`
}

type nameInput struct {
	Name string `json:"name" validate:"required,max=255"`
}

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: logger.OrNop(log).With("repo", "groups")}
}

// Create inserts a group and its initial members as one unit. An unknown
// word id fails the whole operation and leaves no group behind.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*entities.Group, error) {
	const op = "groups.create"

	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}
	wordIDs := database.UniqueIDs(in.WordIDs)

	group := &entities.Group{Name: in.Name}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, op, group.Name, 0); err != nil {
			return err
		}
		if err := checkWords(tx, op, wordIDs); err != nil {
			return err
		}
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		if err := database.AddMemberships(tx, group.ID, wordIDs); err != nil {
			return err
		}
		if err := database.RecountWords(tx, group.ID); err != nil {
			return err
		}
		return tx.First(group, group.ID).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("group created", "group_id", group.ID, "words", group.WordsCount)
	return group, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*entities.Group, error) {
	const op = "groups.get"
	var group entities.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		return nil, r.fail(op, notFoundOr(op, err, id))
	}
	return &group, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Group, error) {
	const op = "groups.get_by_name"
	var group entities.Group
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&group).Error
	if err != nil {
		if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
			return nil, storeerr.NotFound(op, "group %q not found", name)
		}
		return nil, r.fail(op, err)
	}
	return &group, nil
}

func (r *Repository) Page(ctx context.Context, req paging.Request) ([]entities.Group, int64, error) {
	items, total, err := paging.Fetch[entities.Group](
		r.db.WithContext(ctx).Model(&entities.Group{}), req, SortFields, nil,
	)
	if err != nil {
		return nil, 0, r.fail("groups.page", err)
	}
	return items, total, nil
}

// PageWords lists the members of a group with their review tallies, using
// the word sort fields.
func (r *Repository) PageWords(ctx context.Context, groupID uint, req paging.Request) ([]entities.Word, int64, error) {
	const op = "groups.page_words"

	db := r.db.WithContext(ctx)
	ok, err := database.Exists(db, &entities.Group{}, groupID)
	if err != nil {
		return nil, 0, r.fail(op, err)
	}
	if !ok {
		return nil, 0, storeerr.NotFound(op, "group %d not found", groupID)
	}

	base := db.Model(&entities.Word{}).
		Joins("JOIN study_group_words ON study_group_words.word_id = words.id").
		Where("study_group_words.group_id = ?", groupID)
	items, total, err := paging.Fetch[entities.Word](base, req, words.SortFields, words.WithReviewCounts)
	if err != nil {
		return nil, 0, r.fail(op, err)
	}
	return items, total, nil
}

// Update renames the group and/or replaces its members. Both changes commit
// together or not at all.
func (r *Repository) Update(ctx context.Context, id uint, in UpdateInput) (*entities.Group, error) {
	const op = "groups.update"

	var name string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if err := validation.Struct(op, nameInput{Name: name}); err != nil {
			return nil, err
		}
	}

	var ids []uint
	if in.WordIDs != nil {
		ids = database.UniqueIDs(*in.WordIDs)
	}

	var group entities.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkWords(tx, op, ids); err != nil {
			return err
		}
		if err := lockGroup(tx, op, id); err != nil {
			return err
		}
		if in.Name != nil {
			if err := ensureNameFree(tx, op, name, id); err != nil {
				return err
			}
			if err := tx.Model(&entities.Group{}).Where("id = ?", id).Update("name", name).Error; err != nil {
				return err
			}
		}
		if in.WordIDs != nil {
			if err := replaceWords(tx, id, ids); err != nil {
				return err
			}
		}
		return tx.First(&group, id).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("group updated", "group_id", id)
	return &group, nil
}

// Delete removes a group, its memberships and every session run against it
// together with their reviews.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	const op = "groups.delete"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockGroup(tx, op, id); err != nil {
			return err
		}

		sessions := tx.Model(&entities.Session{}).Select("id").Where("group_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessions).Delete(&entities.ReviewItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&entities.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&entities.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Group{}, id).Error
	})
	if err != nil {
		return r.fail(op, err)
	}

	r.log.Debug("group deleted", "group_id", id)
	return nil
}

// AddWords adds words to a group. Ids that are already members, or repeated
// within wordIDs, are ignored.
func (r *Repository) AddWords(ctx context.Context, groupID uint, wordIDs []uint) (*entities.Group, error) {
	const op = "groups.add_words"

	ids := database.UniqueIDs(wordIDs)
	var group entities.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkWords(tx, op, ids); err != nil {
			return err
		}
		if err := lockGroup(tx, op, groupID); err != nil {
			return err
		}
		if err := database.AddMemberships(tx, groupID, ids); err != nil {
			return err
		}
		if err := database.RecountWords(tx, groupID); err != nil {
			return err
		}
		return tx.First(&group, groupID).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("group words added", "group_id", groupID, "words", group.WordsCount)
	return &group, nil
}

// SetWords replaces the full membership of a group. An empty list clears it.
func (r *Repository) SetWords(ctx context.Context, groupID uint, wordIDs []uint) (*entities.Group, error) {
	const op = "groups.set_words"

	ids := database.UniqueIDs(wordIDs)
	var group entities.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkWords(tx, op, ids); err != nil {
			return err
		}
		if err := lockGroup(tx, op, groupID); err != nil {
			return err
		}
		if err := replaceWords(tx, groupID, ids); err != nil {
			return err
		}
		return tx.First(&group, groupID).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("group words replaced", "group_id", groupID, "words", group.WordsCount)
	return &group, nil
}

func (r *Repository) fail(op string, err error) error {
	mapped := storeerr.Map(op, err)
	if storeerr.KindOf(mapped) == storeerr.KindInternal {
		r.log.Error("group operation failed", "op", op, "error", err)
	}
	return mapped
}

func replaceWords(tx *gorm.DB, groupID uint, ids []uint) error {
	if err := tx.Where("group_id = ?", groupID).Delete(&entities.Membership{}).Error; err != nil {
		return err
	}
	if err := database.AddMemberships(tx, groupID, ids); err != nil {
		return err
	}
	return database.RecountWords(tx, groupID)
}

func lockGroup(tx *gorm.DB, op string, id uint) error {
	locked, err := database.LockGroups(tx, id)
	if err != nil {
		return err
	}
	if len(locked) == 0 {
		return storeerr.NotFound(op, "group %d not found", id)
	}
	return nil
}

// checkWords locks the given words and rejects unknown ids. Callers run it
// before locking the group.
func checkWords(tx *gorm.DB, op string, ids []uint) error {
	missing, err := database.LockWords(tx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return storeerr.InvalidArgument(op, "unknown word ids %v", missing)
	}
	return nil
}

func ensureNameFree(tx *gorm.DB, op, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&entities.Group{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storeerr.Conflict(op, "group %q already exists", name)
	}
	return nil
}

func notFoundOr(op string, err error, id uint) error {
	if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
		return storeerr.NotFound(op, "group %d not found", id)
	}
	return err
}
