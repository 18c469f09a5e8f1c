// Package activities provides database operations for study activities,
// the exercise types a session runs (flashcards, typing, ...).
package activities

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/database/paging"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
	"github.com/mrlokans/wordstudy/internal/validation"
)

var SortFields = paging.NewFields("activity", "study_activities.id", "name", map[string]string{
	"name": "study_activities.name",
})

type Input struct {
	Name string `json:"name" validate:"required,max=100"`
	URL  string `json:"url,omitempty" validate:"omitempty,url,max=2048"`
}

// UpdateInput changes only the fields that are set. An empty URL clears it.
type UpdateInput struct {
	Name *string `json:"name,omitempty"`
	URL  *string `json:"url,omitempty"`
}

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: logger.OrNop(log).With("repo", "activities")}
}

func (r *Repository) Create(ctx context.Context, in Input) (*entities.Activity, error) {
	const op = "activities.create"

	in = in.normalized()
	if err := validation.Struct(op, in); err != nil {
		return nil, err
	}

	activity := &entities.Activity{Name: in.Name, URL: in.URL}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, op, activity.Name, 0); err != nil {
			return err
		}
		return tx.Create(activity).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("activity created", "activity_id", activity.ID, "name", activity.Name)
	return activity, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*entities.Activity, error) {
	const op = "activities.get"
	var activity entities.Activity
	if err := r.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return nil, r.fail(op, notFoundOr(op, err, id))
	}
	return &activity, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*entities.Activity, error) {
	const op = "activities.get_by_name"
	var activity entities.Activity
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).Take(&activity).Error
	if err != nil {
		if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
			return nil, storeerr.NotFound(op, "activity %q not found", name)
		}
		return nil, r.fail(op, err)
	}
	return &activity, nil
}

func (r *Repository) Page(ctx context.Context, req paging.Request) ([]entities.Activity, int64, error) {
	items, total, err := paging.Fetch[entities.Activity](
		r.db.WithContext(ctx).Model(&entities.Activity{}), req, SortFields, nil,
	)
	if err != nil {
		return nil, 0, r.fail("activities.page", err)
	}
	return items, total, nil
}

func (r *Repository) Update(ctx context.Context, id uint, in UpdateInput) (*entities.Activity, error) {
	const op = "activities.update"

	var activity entities.Activity
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&activity, id).Error; err != nil {
			return notFoundOr(op, err, id)
		}

		merged := Input{Name: activity.Name, URL: activity.URL}
		if in.Name != nil {
			merged.Name = *in.Name
		}
		if in.URL != nil {
			merged.URL = *in.URL
		}
		merged = merged.normalized()
		if err := validation.Struct(op, merged); err != nil {
			return err
		}
		if err := ensureNameFree(tx, op, merged.Name, id); err != nil {
			return err
		}

		activity.Name = merged.Name
		activity.URL = merged.URL
		return tx.Save(&activity).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("activity updated", "activity_id", id)
	return &activity, nil
}

// Delete removes an activity together with its sessions and their reviews.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	const op = "activities.delete"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activity entities.Activity
		if err := tx.First(&activity, id).Error; err != nil {
			return notFoundOr(op, err, id)
		}

		sessions := tx.Model(&entities.Session{}).Select("id").Where("activity_id = ?", id)
		if err := tx.Where("session_id IN (?)", sessions).Delete(&entities.ReviewItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&entities.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Activity{}, id).Error
	})
	if err != nil {
		return r.fail(op, err)
	}

	r.log.Debug("activity deleted", "activity_id", id)
	return nil
}

func (r *Repository) fail(op string, err error) error {
	mapped := storeerr.Map(op, err)
	if storeerr.KindOf(mapped) == storeerr.KindInternal {
		r.log.Error("activity operation failed", "op", op, "error", err)
	}
	return mapped
}

func (in Input) normalized() Input {
	return Input{Name: strings.TrimSpace(in.Name), URL: strings.TrimSpace(in.URL)}
}

func ensureNameFree(tx *gorm.DB, op, name string, exceptID uint) error {
	var count int64
	q := tx.Model(&entities.Activity{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return storeerr.Conflict(op, "activity %q already exists", name)
	}
	return nil
}

func notFoundOr(op string, err error, id uint) error {
	if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
		return storeerr.NotFound(op, "activity %d not found", id)
	}
	return err
}
