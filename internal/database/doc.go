// Package database provides the data access layer for the learning-record store.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, activity seeding
//	├── membership.go    # Group membership and words_count helpers shared by repositories
//	├── crud.go          # Generic Reader / CRUD repository interfaces
//	├── paging/          # Offset paging with whitelisted (and computed) sort fields
//	├── words/           # Vocabulary words and their review tallies
//	├── groups/          # Study groups and memberships
//	├── activities/      # Study activities
//	├── sessions/        # Study sessions and review items
//	├── stats/           # Word, session and overview statistics
//	└── dbtest/          # Test fixtures
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database, cfg.Log.SQLLevel, log)
//
//	wordsRepo := words.NewRepository(db.DB, log)
//	groupsRepo := groups.NewRepository(db.DB, log)
//
//	word, err := wordsRepo.Create(ctx, words.CreateInput{...})
//	group, err := groupsRepo.AddWords(ctx, groupID, []uint{word.ID})
//
// internal/store wires all of them at once.
//
// # Invariants
//
// Group.WordsCount is never written directly. Any change to memberships is
// followed by RecountWords in the same transaction, after LockGroups has
// locked the affected groups. Word rows are always locked before group rows
// (LockWord or LockWords first, then LockGroups).
//
// Every error leaving a repository has passed through storeerr.Map.
//
// # Adding a New Domain
//
// To add a new domain (e.g., decks):
//
//  1. Create a new sub-package: internal/database/decks/
//  2. Define a Repository struct with *gorm.DB and *logger.Logger fields
//  3. Add NewRepository(db *gorm.DB, log *logger.Logger) constructor
//  4. Add its model to entities.StudyModels
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
