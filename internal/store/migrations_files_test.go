package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationsDir = filepath.Join("..", "..", "db", "migrations")

func TestLoadMigrationsPairsShippedFiles(t *testing.T) {
	steps, err := loadMigrations(migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, steps)
	assert.Equal(t, 1, steps[0].version)
	assert.Equal(t, "0001_mirror.up.sql", steps[0].name)
	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1].version, steps[i].version)
	}
}

func TestLoadMigrations(t *testing.T) {
	write := func(t *testing.T, dir string, names ...string) {
		t.Helper()
		for _, name := range names {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
		}
	}

	t.Run("orders by number", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "0010_b.up.sql", "0010_b.down.sql", "0002_a.up.sql", "0002_a.down.sql", "README.md")
		steps, err := loadMigrations(dir)
		require.NoError(t, err)
		require.Len(t, steps, 2)
		assert.Equal(t, 2, steps[0].version)
		assert.Equal(t, 10, steps[1].version)
	})

	t.Run("missing down", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "0001_a.up.sql")
		_, err := loadMigrations(dir)
		assert.ErrorContains(t, err, "needs both")
	})

	t.Run("duplicate up", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "0001_a.up.sql", "0001_b.up.sql", "0001_a.down.sql")
		_, err := loadMigrations(dir)
		assert.ErrorContains(t, err, "two up files")
	})
}
