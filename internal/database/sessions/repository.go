// Package sessions provides database operations for study sessions and the
// review items recorded in them.
//
// Sessions are append-only: once created only their reviews change. A
// session with a nil group is free-form practice and accepts any word.
package sessions

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/database/paging"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
)

// SortFields orders sessions. Sessions without a group sort as group 0.
var SortFields = paging.NewFields("session", "study_sessions.id", "created_at", map[string]string{
	"created_at":  "study_sessions.created_at",
	"group_id":    "COALESCE(study_sessions.group_id, 0)",
	"activity_id": "study_sessions.activity_id",
})

// WithDetails adds the group name, activity name and review count to a
// session query.
func WithDetails(q *gorm.DB) *gorm.DB {
	return q.Select("study_sessions.*, " +
		"COALESCE(study_groups.name, '') AS group_name, " +
		"study_activities.name AS activity_name, " +
		"COALESCE(review_totals.review_items_count, 0) AS review_items_count").
		Joins("LEFT JOIN study_groups ON study_groups.id = study_sessions.group_id").
		Joins("JOIN study_activities ON study_activities.id = study_sessions.activity_id").
		Joins(`LEFT JOIN (
			SELECT session_id, COUNT(*) AS review_items_count
			FROM word_review_items
			GROUP BY session_id
		) AS review_totals ON review_totals.session_id = study_sessions.id`)
}

type CreateInput struct {
	GroupID    *uint `json:"group_id,omitempty"`
	ActivityID uint  `json:"activity_id"`
}

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: logger.OrNop(log).With("repo", "sessions")}
}

// Create starts a session. The activity and, when given, the group must
// exist; a zero activity id is reported as not found. Empty groups are
// accepted.
func (r *Repository) Create(ctx context.Context, in CreateInput) (*entities.Session, error) {
	const op = "sessions.create"

	var session *entities.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := database.Exists(tx, &entities.Activity{}, in.ActivityID)
		if err != nil {
			return err
		}
		if !ok {
			return storeerr.NotFound(op, "activity %d not found", in.ActivityID)
		}
		if in.GroupID != nil {
			ok, err := database.Exists(tx, &entities.Group{}, *in.GroupID)
			if err != nil {
				return err
			}
			if !ok {
				return storeerr.NotFound(op, "group %d not found", *in.GroupID)
			}
		}

		row := &entities.Session{GroupID: in.GroupID, ActivityID: in.ActivityID}
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}
		session, err = load(tx, op, row.ID)
		return err
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("session created", "session_id", session.ID, "activity_id", session.ActivityID)
	return session, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*entities.Session, error) {
	const op = "sessions.get"
	session, err := load(r.db.WithContext(ctx), op, id)
	if err != nil {
		return nil, r.fail(op, err)
	}
	return session, nil
}

func (r *Repository) Page(ctx context.Context, req paging.Request) ([]entities.Session, int64, error) {
	items, total, err := paging.Fetch[entities.Session](
		r.db.WithContext(ctx).Model(&entities.Session{}), req, SortFields, WithDetails,
	)
	if err != nil {
		return nil, 0, r.fail("sessions.page", err)
	}
	return items, total, nil
}

// PageByGroup lists the sessions run against one group.
func (r *Repository) PageByGroup(ctx context.Context, groupID uint, req paging.Request) ([]entities.Session, int64, error) {
	const op = "sessions.page_by_group"

	db := r.db.WithContext(ctx)
	ok, err := database.Exists(db, &entities.Group{}, groupID)
	if err != nil {
		return nil, 0, r.fail(op, err)
	}
	if !ok {
		return nil, 0, storeerr.NotFound(op, "group %d not found", groupID)
	}

	base := db.Model(&entities.Session{}).Where("study_sessions.group_id = ?", groupID)
	items, total, err := paging.Fetch[entities.Session](base, req, SortFields, WithDetails)
	if err != nil {
		return nil, 0, r.fail(op, err)
	}
	return items, total, nil
}

// Delete removes a session and its reviews.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	const op = "sessions.delete"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := database.Exists(tx, &entities.Session{}, id)
		if err != nil {
			return err
		}
		if !ok {
			return storeerr.NotFound(op, "session %d not found", id)
		}
		if err := tx.Where("session_id = ?", id).Delete(&entities.ReviewItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Session{}, id).Error
	})
	if err != nil {
		return r.fail(op, err)
	}

	r.log.Debug("session deleted", "session_id", id)
	return nil
}

// AddReview records one attempt at a word. When the session has a group the
// word must currently be a member of it.
func (r *Repository) AddReview(ctx context.Context, sessionID, wordID uint, correct bool) (*entities.ReviewItem, error) {
	const op = "sessions.add_review"

	var review *entities.ReviewItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session entities.Session
		if err := tx.First(&session, sessionID).Error; err != nil {
			return notFoundOr(op, err, "session", sessionID)
		}
		ok, err := database.Exists(tx, &entities.Word{}, wordID)
		if err != nil {
			return err
		}
		if !ok {
			return storeerr.NotFound(op, "word %d not found", wordID)
		}

		if session.GroupID != nil {
			var members int64
			err := tx.Model(&entities.Membership{}).
				Where("group_id = ? AND word_id = ?", *session.GroupID, wordID).
				Count(&members).Error
			if err != nil {
				return err
			}
			if members == 0 {
				return storeerr.InvalidArgument(op, "word %d not in session's group %d", wordID, *session.GroupID)
			}
		}

		review = &entities.ReviewItem{SessionID: sessionID, WordID: wordID, Correct: correct}
		return tx.Omit(clause.Associations).Create(review).Error
	})
	if err != nil {
		return nil, r.fail(op, err)
	}

	r.log.Debug("review recorded", "session_id", sessionID, "word_id", wordID, "correct", correct)
	return review, nil
}

// Reviews returns the reviews of a session in the order they were recorded.
func (r *Repository) Reviews(ctx context.Context, sessionID uint) ([]entities.ReviewItem, error) {
	const op = "sessions.reviews"

	db := r.db.WithContext(ctx)
	ok, err := database.Exists(db, &entities.Session{}, sessionID)
	if err != nil {
		return nil, r.fail(op, err)
	}
	if !ok {
		return nil, storeerr.NotFound(op, "session %d not found", sessionID)
	}

	items := make([]entities.ReviewItem, 0)
	err = db.Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, r.fail(op, err)
	}
	return items, nil
}

// ResetHistory deletes every session and review item. Words, groups and
// activities are kept.
func (r *Repository) ResetHistory(ctx context.Context) (sessions, reviews int64, err error) {
	const op = "sessions.reset_history"

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("1 = 1").Delete(&entities.ReviewItem{})
		if res.Error != nil {
			return res.Error
		}
		reviews = res.RowsAffected

		res = tx.Where("1 = 1").Delete(&entities.Session{})
		if res.Error != nil {
			return res.Error
		}
		sessions = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, 0, r.fail(op, err)
	}

	r.log.Info("study history reset", "sessions", sessions, "reviews", reviews)
	return sessions, reviews, nil
}

func (r *Repository) fail(op string, err error) error {
	mapped := storeerr.Map(op, err)
	if storeerr.KindOf(mapped) == storeerr.KindInternal {
		r.log.Error("session operation failed", "op", op, "error", err)
	}
	return mapped
}

func load(tx *gorm.DB, op string, id uint) (*entities.Session, error) {
	var session entities.Session
	err := WithDetails(tx.Model(&entities.Session{})).Where("study_sessions.id = ?", id).Take(&session).Error
	if err != nil {
		return nil, notFoundOr(op, err, "session", id)
	}
	return &session, nil
}

func notFoundOr(op string, err error, what string, id uint) error {
	if storeerr.KindOf(storeerr.Map(op, err)) == storeerr.KindNotFound {
		return storeerr.NotFound(op, "%s %d not found", what, id)
	}
	return err
}
