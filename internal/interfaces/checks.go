package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/database/activities"
	"github.com/mrlokans/wordstudy/internal/database/groups"
	"github.com/mrlokans/wordstudy/internal/database/sessions"
	"github.com/mrlokans/wordstudy/internal/database/words"
	"github.com/mrlokans/wordstudy/internal/entities"
	"github.com/mrlokans/wordstudy/internal/importers"
	"github.com/mrlokans/wordstudy/internal/reading"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ database.CRUD[entities.Word, words.CreateInput, words.UpdateInput] = (*words.Repository)(nil)

var _ database.CRUD[entities.Group, groups.CreateInput, groups.UpdateInput] = (*groups.Repository)(nil)

var _ database.CRUD[entities.Activity, activities.Input, activities.UpdateInput] = (*activities.Repository)(nil)

// Sessions are append-only, so only the read half applies.
var _ database.Reader[entities.Session] = (*sessions.Repository)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ importers.WordStore = (*words.Repository)(nil)
var _ importers.GroupStore = (*groups.Repository)(nil)
var _ importers.PartSuggester = (*reading.Suggester)(nil)
