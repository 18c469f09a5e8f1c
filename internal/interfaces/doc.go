// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - database.Reader[E]: Get by id and paged listing (internal/database/crud.go)
//   - database.CRUD[E, C, U]: Reader plus Create/Update/Delete (internal/database/crud.go)
//
// Implemented by the per-entity repositories under internal/database/
// (words, groups, activities). sessions implements Reader only because
// sessions are never updated; stats is read-only and has no generic shape.
//
// ## Import Interfaces
//
//   - WordStore: Word creation and lookup (internal/importers/pipeline.go)
//   - GroupStore: Target group lookup, creation, membership (internal/importers/pipeline.go)
//   - PartSuggester: Part and reading suggestion (internal/importers/pipeline.go)
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., decks):
//
//  1. Create sub-package: internal/database/decks/
//
//  2. Define repository:
//
//     type Repository struct {
//         db  *gorm.DB
//         log *logger.Logger
//     }
//
//     func NewRepository(db *gorm.DB, log *logger.Logger) *Repository
//
//  3. Declare the sortable fields and page through paging.Fetch:
//
//     var SortFields = paging.NewFields("deck", "decks.id", "name", map[string]string{
//         "name": "decks.name",
//     })
//
//  4. Map every returned error with storeerr.Map so callers only see the
//     four store error kinds.
//
//  5. Add the model to entities.StudyModels and a compile-time check here:
//
//     var _ database.CRUD[entities.Deck, decks.CreateInput, decks.UpdateInput] = (*decks.Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
