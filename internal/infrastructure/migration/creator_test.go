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
		{"add harvest photos", "add_harvest_photos"},
		{"Add-SPB-Index", "add_spb_index"},
		{"ADD__SPB__INDEX", "add_spb_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("-- test"), 0644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("numbers after existing migrations", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_create_organization.up.sql", "000001_create_organization.down.sql",
			"000003_create_spb.up.sql", "000003_create_spb.down.sql",
		)

		mf, err := CreateMigration(dir, "add harvest photos", "photo metadata")
		require.NoError(t, err)
		assert.Equal(t, "000004", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000004_add_harvest_photos.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000004_add_harvest_photos.down.sql"), mf.DownPath)

		content, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(content), "-- Description: photo metadata")
	})

	t.Run("creates the directory and starts at one", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")
		mf, err := CreateMigration(dir, "init", "")
		require.NoError(t, err)
		assert.Equal(t, "000001", mf.Version)
		_, err = os.Stat(mf.DownPath)
		assert.NoError(t, err)
	})

	t.Run("rejects an unusable name", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up files sorted", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000002_create_harvest_records.up.sql", "000002_create_harvest_records.down.sql",
			"000001_create_organization.up.sql", "000001_create_organization.down.sql",
			"README.md",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "000009_dir.up.sql"), 0755))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_create_organization", "000002_create_harvest_records"}, migrations)
	})

	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}

func TestNextVersion(t *testing.T) {
	assert.Equal(t, 1, nextVersion(nil))
	assert.Equal(t, 8, nextVersion([]string{"000002_a", "000007_b", "notes"}))
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	ups, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	for _, base := range ups {
		_, err := os.Stat(filepath.Join(dir, base+".down.sql"))
		assert.NoError(t, err, "%s has no down migration", base)
	}
}
