package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add expenses table", "add_expenses_table"},
		{"Add-Cash-Flows", "add_cash_flows"},
		{"add__ledger__index", "add_ledger_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("first migration is version 000001", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "create expenses", "Expense table")
		require.NoError(t, err)

		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_create_expenses.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_create_expenses.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "-- Migration: create expenses")
		assert.Contains(t, string(up), "-- Expense table")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "(rollback)")
	})

	t.Run("numbers past the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"000002_b.up.sql", "000002_b.down.sql", "000010_c.up.sql", "000010_c.down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
		}

		mf, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)

		assert.Equal(t, "000011", mf.Version)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory yields none", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("sorts by version and ignores down files", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{"000010_c.up.sql", "000002_b.up.sql", "000002_b.down.sql", "README.md"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0o644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000002_b", "000010_c"}, migrations)
	})

	t.Run("repository migrations are well formed", func(t *testing.T) {
		dir := filepath.Join("..", "..", "..", "migrations")
		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.NotEmpty(t, migrations)

		for i, base := range migrations {
			assert.Equal(t, i+1, versionOf(base), base)
			_, err := os.Stat(filepath.Join(dir, base+".down.sql"))
			assert.NoError(t, err, "missing down migration for %s", base)
		}
	})
}
