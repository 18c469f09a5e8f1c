// Package dbtest opens throwaway learning-record databases for tests and
// seeds rows without going through repository validation.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/wordstudy/internal/database"
	"github.com/mrlokans/wordstudy/internal/entities"
)

// Open creates a migrated SQLite database in t.TempDir with foreign keys on.
// The connection is closed when the test ends.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()

	dbPath := filepath.Join(tb.TempDir(), "wordstudy_test.db")
	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN(dbPath, 5*time.Second)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(tb, err)
	require.NoError(tb, database.Migrate(db))

	tb.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

// SeedWord inserts a word with a single part equal to its written form.
func SeedWord(tb testing.TB, db *gorm.DB, writtenForm, romanization, gloss string) *entities.Word {
	tb.Helper()
	w := &entities.Word{
		WrittenForm:  writtenForm,
		Romanization: romanization,
		Gloss:        gloss,
		Parts: datatypes.JSONSlice[entities.WordPart]{
			{WrittenForm: writtenForm, Readings: []string{romanization}},
		},
	}
	require.NoError(tb, db.Create(w).Error)
	return w
}

// SeedGroup inserts a group with the given members and a correct words_count.
func SeedGroup(tb testing.TB, db *gorm.DB, name string, words ...*entities.Word) *entities.Group {
	tb.Helper()
	g := &entities.Group{Name: name}
	require.NoError(tb, db.Create(g).Error)
	for _, w := range words {
		m := &entities.Membership{WordID: w.ID, GroupID: g.ID}
		require.NoError(tb, db.Omit(clause.Associations).Create(m).Error)
	}
	require.NoError(tb, database.RecountWords(db, g.ID))
	require.NoError(tb, db.First(g, g.ID).Error)
	return g
}

func SeedActivity(tb testing.TB, db *gorm.DB, name string) *entities.Activity {
	tb.Helper()
	a := &entities.Activity{Name: name, URL: "https://example.com/" + name}
	require.NoError(tb, db.Create(a).Error)
	return a
}

// SeedSession inserts a session; group may be nil for free-form practice.
func SeedSession(tb testing.TB, db *gorm.DB, group *entities.Group, activity *entities.Activity) *entities.Session {
	tb.Helper()
	s := &entities.Session{ActivityID: activity.ID}
	if group != nil {
		id := group.ID
		s.GroupID = &id
	}
	require.NoError(tb, db.Omit(clause.Associations).Create(s).Error)
	return s
}

// SeedReviews records one review per outcome for word in session.
func SeedReviews(tb testing.TB, db *gorm.DB, session *entities.Session, word *entities.Word, outcomes ...bool) {
	tb.Helper()
	for _, correct := range outcomes {
		r := &entities.ReviewItem{SessionID: session.ID, WordID: word.ID, Correct: correct}
		require.NoError(tb, db.Omit(clause.Associations).Create(r).Error)
	}
}

// CountRows counts rows of model matching the optional condition.
func CountRows(tb testing.TB, db *gorm.DB, model any, query string, args ...any) int64 {
	tb.Helper()
	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(tb, q.Count(&n).Error)
	return n
}
