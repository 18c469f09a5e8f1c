package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mrlokans/wordstudy/internal/config"
	"github.com/mrlokans/wordstudy/internal/logger"
	"github.com/mrlokans/wordstudy/internal/store"
)

// openStore loads the environment config, applies the -db override and opens
// the store. The returned cleanup closes the store and flushes the logger.
func openStore(databasePath string, seed bool) (*store.Store, *logger.Logger, func(), error) {
	cfg := config.NewConfig()
	if databasePath != "" && cfg.Database.Driver != config.DriverPostgres {
		absPath, err := filepath.Abs(databasePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get absolute path for database: %w", err)
		}
		cfg.Database.Path = absPath
	}
	cfg.Seed.Activities = seed

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	s, err := store.Open(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	cleanup := func() {
		if err := s.Close(); err != nil {
			log.Warn("failed to close database", "error", err)
		}
		log.Sync()
	}
	return s, log, cleanup, nil
}
