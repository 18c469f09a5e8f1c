package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportWordsCommand_ParseFlags(t *testing.T) {
	cmd := NewImportWordsCommand()

	err := cmd.ParseFlags([]string{"-file", "words.json", "-group", "N5", "-no-suggest"})

	require.NoError(t, err)
	assert.Equal(t, "words.json", cmd.FilePath)
	assert.Equal(t, "N5", cmd.Group)
	assert.True(t, cmd.NoSuggest)

	err = NewImportWordsCommand().ParseFlags(nil)
	assert.EqualError(t, err, "required flag -file not provided")
}

func TestResetHistoryCommand_RequiresConfirmation(t *testing.T) {
	err := NewResetHistoryCommand().ParseFlags(nil)
	assert.Error(t, err)

	cmd := NewResetHistoryCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-yes"}))
	assert.True(t, cmd.Yes)
}

func TestMigrateThenImportAndStats(t *testing.T) {
	t.Setenv("LOG_SQL_LEVEL", "silent")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	listPath := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(listPath, []byte(`{"group": "Nature", "words": [
		{"written_form": "山", "romanization": "yama", "gloss": "mountain",
		 "parts": [{"written_form": "山", "readings": ["やま"]}]}
	]}`), 0o644))

	migrate := NewMigrateCommand()
	require.NoError(t, migrate.ParseFlags([]string{"-db", dbPath}))
	require.NoError(t, migrate.Run())

	importCmd := NewImportWordsCommand()
	require.NoError(t, importCmd.ParseFlags([]string{"-db", dbPath, "-file", listPath, "-no-suggest"}))
	require.NoError(t, importCmd.Run())

	stats := NewStatsCommand()
	require.NoError(t, stats.ParseFlags([]string{"-db", dbPath, "-json"}))
	require.NoError(t, stats.Run())

	s, _, cleanup, err := openStore(dbPath, false)
	require.NoError(t, err)
	defer cleanup()
	group, err := s.Groups.GetByName(t.Context(), "Nature")
	require.NoError(t, err)
	assert.Equal(t, int64(1), group.WordsCount)
}
