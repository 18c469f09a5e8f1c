// Package stats computes learning statistics from review rows on every call.
// Nothing is cached, so results always reflect the latest committed reviews.
package stats

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/storeerr"
)

type Repository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRepository(db *gorm.DB, log *logger.Logger) *Repository {
	return &Repository{db: db, log: logger.OrNop(log).With("repo", "stats")}
}

type tally struct {
	Total   int64
	Correct int64
}

// WordStats counts correct and wrong reviews of a word. A word with no
// reviews gets zero counts.
func (r *Repository) WordStats(ctx context.Context, wordID uint) (*entities.WordStats, error) {
	const op = "stats.word"

	db := r.db.WithContext(ctx)
	if err := mustExist(db, op, &entities.Word{}, "word", wordID); err != nil {
		return nil, r.fail(op, err)
	}

	t, err := countReviews(db.Where("word_id = ?", wordID))
	if err != nil {
		return nil, r.fail(op, err)
	}
	return &entities.WordStats{CorrectCount: t.Correct, WrongCount: t.Total - t.Correct}, nil
}

// SessionStats summarises a session. Accuracy is 0 when nothing was reviewed.
func (r *Repository) SessionStats(ctx context.Context, sessionID uint) (*entities.SessionStats, error) {
	const op = "stats.session"

	db := r.db.WithContext(ctx)
	if err := mustExist(db, op, &entities.Session{}, "session", sessionID); err != nil {
		return nil, r.fail(op, err)
	}

	t, err := countReviews(db.Where("session_id = ?", sessionID))
	if err != nil {
		return nil, r.fail(op, err)
	}
	return &entities.SessionStats{
		TotalReviews:   t.Total,
		CorrectReviews: t.Correct,
		Accuracy:       ratio(t.Correct, t.Total),
	}, nil
}

// Overview summarises the whole store.
func (r *Repository) Overview(ctx context.Context) (*entities.Overview, error) {
	const op = "stats.overview"

	db := r.db.WithContext(ctx)
	var out entities.Overview

	counts := []struct {
		dst *int64
		q   *gorm.DB
	}{
		{&out.TotalWords, db.Model(&entities.Word{})},
		{&out.StudiedWords, db.Model(&entities.ReviewItem{}).Distinct("word_id")},
		{&out.TotalSessions, db.Model(&entities.Session{})},
		{&out.ActiveGroups, db.Model(&entities.Session{}).Where("group_id IS NOT NULL").Distinct("group_id")},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return nil, r.fail(op, err)
		}
	}

	t, err := countReviews(db)
	if err != nil {
		return nil, r.fail(op, err)
	}
	out.TotalReviews = t.Total
	out.SuccessRate = ratio(t.Correct, t.Total)

	var last []entities.Session
	if err := db.Order("created_at DESC, id DESC").Limit(1).Find(&last).Error; err != nil {
		return nil, r.fail(op, err)
	}
	if len(last) == 1 {
		out.LastSessionID = &last[0].ID
		out.LastSessionAt = &last[0].CreatedAt
	}

	return &out, nil
}

func (r *Repository) fail(op string, err error) error {
	mapped := storeerr.Map(op, err)
	if storeerr.KindOf(mapped) == storeerr.KindInternal {
		r.log.Error("stats query failed", "op", op, "error", err)
	}
	return mapped
}

func countReviews(q *gorm.DB) (tally, error) {
	var t tally
	err := q.Model(&entities.ReviewItem{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0) AS correct").
		Scan(&t).Error
	return t, err
}

func mustExist(db *gorm.DB, op string, model any, what string, id uint) error {
	ok, err := database.Exists(db, model, id)
	if err != nil {
		return err
	}
	if !ok {
		return storeerr.NotFound(op, "%s %d not found", what, id)
	}
	return nil
}

func ratio(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}
