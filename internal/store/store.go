// Package store bundles the learning-record repositories behind one handle.
//
// Transport layers open a Store once and share it between concurrent
// callers; every repository uses the same connection pool.
package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/wordstudy/internal/config"
	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/database/activities"
	"github.com/mrlokans/wordstudy/internal/database/groups"
	"github.com/mrlokans/wordstudy/internal/database/sessions"
	"github.com/mrlokans/wordstudy/internal/database/stats"
	"github.com/mrlokans/wordstudy/internal/database/words"
	"github.com/mrlokans/wordstudy/internal/logger"
)

type Store struct {
	Words      *words.Repository
	Groups     *groups.Repository
	Activities *activities.Repository
	Sessions   *sessions.Repository
	Stats      *stats.Repository

	closer func() error
}

// Open connects to the configured database, migrates it and seeds the
// default activities when cfg.Seed.Activities is set.
func Open(cfg *config.Config, log *logger.Logger) (*Store, error) {
	log = logger.OrNop(log)

	db, err := database.NewDatabase(cfg.Database, cfg.Log.SQLLevel, log)
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Activities {
		if _, err := db.SeedActivities(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to seed activities: %w", err)
		}
	}

	s := New(db.DB, log)
	s.closer = db.Close
	return s, nil
}

// New wraps an already migrated connection. Close on the result is a no-op.
func New(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{
		Words:      words.NewRepository(db, log),
		Groups:     groups.NewRepository(db, log),
		Activities: activities.NewRepository(db, log),
		Sessions:   sessions.NewRepository(db, log),
		Stats:      stats.NewRepository(db, log),
	}
}

func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
