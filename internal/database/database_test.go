package database

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/wordstudy/internal/config"
	"github.com/mrlokans/wordstudy/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(config.Database{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 2,
	}, "silent", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedWord(t *testing.T, db *gorm.DB, written string) *entities.Word {
	t.Helper()
	w := &entities.Word{
		WrittenForm:  written,
		Romanization: written,
		Gloss:        written,
		Parts:        []entities.WordPart{{WrittenForm: written, Readings: []string{written}}},
	}
	require.NoError(t, db.Create(w).Error)
	return w
}

func TestNewDatabase_Migrates(t *testing.T) {
	db := setupTestDB(t)

	for _, model := range entities.StudyModels() {
		assert.True(t, db.DB.Migrator().HasTable(model), "%T", model)
	}
}

func TestNewDatabase_EnablesForeignKeys(t *testing.T) {
	db := setupTestDB(t)

	var enabled int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	err := db.DB.Omit(clause.Associations).Create(&entities.Membership{WordID: 1, GroupID: 1}).Error
	assert.Error(t, err)
}

func TestNewDatabase_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Database
		msg  string
	}{
		{"unsupported driver", config.Database{Driver: "mysql", Path: "x.db"}, "unsupported database driver"},
		{"sqlite without path", config.Database{Driver: config.DriverSQLite}, "database path is not set"},
		{"postgres without dsn", config.Database{Driver: config.DriverPostgres}, "DSN is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDatabase(tt.cfg, "silent", nil)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSeedActivities_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	created, err := db.SeedActivities()
	require.NoError(t, err)
	assert.Equal(t, len(defaultActivities), created)

	created, err = db.SeedActivities()
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Activity{}).Count(&count).Error)
	assert.Equal(t, int64(len(defaultActivities)), count)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"/tmp/a.db?_foreign_keys=1&_busy_timeout=2000&_txlock=immediate",
		SQLiteDSN("/tmp/a.db", 2*time.Second))
	assert.Equal(t,
		"file:a.db?cache=shared&_foreign_keys=1&_busy_timeout=5000&_txlock=immediate",
		SQLiteDSN("file:a.db?cache=shared", 0))
}

func TestMembershipHelpers(t *testing.T) {
	db := setupTestDB(t).DB
	a := seedWord(t, db, "a")
	b := seedWord(t, db, "b")
	group := &entities.Group{Name: "g"}
	require.NoError(t, db.Create(group).Error)

	require.NoError(t, AddMemberships(db, group.ID, []uint{a.ID, b.ID}))
	require.NoError(t, AddMemberships(db, group.ID, []uint{a.ID}))
	require.NoError(t, RecountWords(db, group.ID))

	locked, err := LockGroups(db, group.ID, 999)
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, int64(2), locked[0].WordsCount)

	missing, err := MissingIDs(db, &entities.Word{}, []uint{a.ID, 404, b.ID, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint{404, 0}, missing)

	ok, err := Exists(db, &entities.Group{}, group.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockHelpers_PostgresLockOrder(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=wordstudy dbname=wordstudy sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	wordSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var word entities.Word
		_ = LockWord(tx, 7, &word)
		return tx
	})
	assert.Contains(t, wordSQL, `FROM "words"`)
	assert.True(t, strings.HasSuffix(wordSQL, "FOR UPDATE"), wordSQL)

	wordsSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		_, _ = LockWords(tx, []uint{1, 2})
		return tx
	})
	assert.Contains(t, wordsSQL, `FROM "words"`)
	assert.True(t, strings.HasSuffix(wordsSQL, "FOR KEY SHARE"), wordsSQL)

	groupsSQL := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		_, _ = LockGroups(tx, 3)
		return tx
	})
	assert.Contains(t, groupsSQL, `FROM "study_groups"`)
	assert.True(t, strings.HasSuffix(groupsSQL, "FOR UPDATE"), groupsSQL)
}

func TestLockWords_ReportsMissing(t *testing.T) {
	db := setupTestDB(t).DB
	a := seedWord(t, db, "a")

	missing, err := LockWords(db, []uint{a.ID, 77})
	require.NoError(t, err)
	assert.Equal(t, []uint{77}, missing)

	var word entities.Word
	require.NoError(t, LockWord(db, a.ID, &word))
	assert.Equal(t, a.ID, word.ID)
	assert.ErrorIs(t, LockWord(db, 77, &word), gorm.ErrRecordNotFound)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []uint{0, 1, 3}, UniqueIDs([]uint{3, 1, 3, 0, 1}))
	assert.Empty(t, UniqueIDs(nil))
}
