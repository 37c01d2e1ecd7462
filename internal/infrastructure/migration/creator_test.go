package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "Add Statement Lines", "line items per statement")
		require.NoError(t, err)

		assert.Equal(t, "add_statement_lines", mf.Name)
		assert.Len(t, mf.Version, 14)
		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add_statement_lines")
		assert.Contains(t, string(up), "line items per statement")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "rollback")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "db", "migrations")

		mf, err := CreateMigration(dir, "initial", "")
		require.NoError(t, err)
		assert.FileExists(t, mf.UpPath)
	})
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Add Users Table":      "add_users_table",
		"fix--weird   spacing": "fix_weird_spacing",
		"trailing-":            "trailing",
		"UPPER_case_123":       "upper_case_123",
		"weird!@#chars":        "weirdchars",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeName(input), "input %q", input)
	}
}

func TestListMigrations(t *testing.T) {
	t.Run("returns up migrations sorted by version", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20240102000000_second.up.sql",
			"20240102000000_second.down.sql",
			"20240101000000_first.up.sql",
			"20240101000000_first.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- sql"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"20240101000000_first", "20240102000000_second"}, migrations)
	})

	t.Run("missing directory is empty, not an error", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
