package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/kde-theme-backup/common"
)

func mkdirs(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0755))
	}
}

func TestList_CaseInsensitiveOrder(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "gamma", "Beta", "alpha")
	// Files, including archives, are not backups.
	require.NoError(t, os.WriteFile(filepath.Join(root, "alpha.tar.gz"), []byte("x"), 0644))
	// Nested directories are not listed.
	mkdirs(t, root, filepath.Join("alpha", "nested"))

	names, err := New(root).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "Beta", "gamma"}, names)
}

func TestList_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kde-theme-backups")

	names, err := New(root).List()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.DirExists(t, root)
}

func TestList_FreshOnEveryCall(t *testing.T) {
	root := t.TempDir()
	c := New(root)

	first, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, first)

	mkdirs(t, root, "win11-dark")
	second, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"win11-dark"}, second)
}

func TestList_RootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0644))

	_, err := New(root).List()
	assert.Error(t, err)
}

func TestList_FollowsSymlinkedDirectories(t *testing.T) {
	root := t.TempDir()
	elsewhere := t.TempDir()
	mkdirs(t, root, "local")
	mkdirs(t, elsewhere, "shared")
	require.NoError(t, os.WriteFile(filepath.Join(elsewhere, "notes.txt"), nil, 0644))

	if err := os.Symlink(filepath.Join(elsewhere, "shared"), filepath.Join(root, "linked")); err != nil {
		t.Skip("symlinks not supported:", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "notes.txt"), filepath.Join(root, "file-link")))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "gone"), filepath.Join(root, "dangling")))

	names, err := New(root).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"linked", "local"}, names)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{"macosfull", nil},
		{"win11-dark", nil},
		{"default", nil},
		{"", common.ErrEmptyName},
		{"my backup", common.ErrInvalidName},
		{"a/b", common.ErrInvalidName},
		{"a:b", common.ErrInvalidName},
		{"a\\b", common.ErrInvalidName},
		{"..", common.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateName_Message(t *testing.T) {
	err := ValidateName("my backup")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "::")
	assert.Contains(t, err.Error(), `"my backup"`)
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		wantErr error
	}{
		{"macosfull", nil},
		{"my backup", nil},
		{"a:b", nil},
		{"", common.ErrEmptyName},
		{".", common.ErrInvalidName},
		{"..", common.ErrInvalidName},
		{"../keep", common.ErrInvalidName},
		{"a/b", common.ErrInvalidName},
		{"a\\b", common.ErrInvalidName},
		{"a\x00b", common.ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.name, "\x00", "NUL"), func(t *testing.T) {
			err := ValidateEntry(tt.name)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDelete_NameWithSpace(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "my backup")
	c := New(root)

	names, err := c.List()
	require.NoError(t, err)
	require.Equal(t, []string{"my backup"}, names)

	require.NoError(t, c.Delete(names[0]))
	assert.NoDirExists(t, c.Path("my backup"))
}

func TestDelete_DirectoryOnly(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "foo")
	require.NoError(t, os.WriteFile(filepath.Join(root, "foo", "kdeglobals"), []byte("x"), 0644))

	c := New(root)
	require.NoError(t, c.Delete("foo"))
	assert.NoDirExists(t, c.Path("foo"))
}

func TestDelete_DirectoryAndArchive(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "foo", "bar")
	c := New(root)
	require.NoError(t, os.WriteFile(c.ArchivePath("foo"), []byte("x"), 0644))

	require.NoError(t, c.Delete("foo"))
	assert.NoDirExists(t, c.Path("foo"))
	assert.NoFileExists(t, c.ArchivePath("foo"))
	assert.DirExists(t, c.Path("bar"))
}

func TestDelete_ArchiveOnly(t *testing.T) {
	root := t.TempDir()
	c := New(root)
	require.NoError(t, os.WriteFile(c.ArchivePath("orphan"), []byte("x"), 0644))

	require.NoError(t, c.Delete("orphan"))
	assert.NoFileExists(t, c.ArchivePath("orphan"))
}

func TestDelete_AggregatesFailures(t *testing.T) {
	root := t.TempDir()
	c := New(root)
	// A non-empty directory in place of the archive makes os.Remove fail
	// while the backup directory itself is removed.
	mkdirs(t, root, "foo", filepath.Join("foo.tar.gz", "inner"))

	err := c.Delete("foo")
	require.Error(t, err)

	var derr *DeletionError
	require.True(t, errors.As(err, &derr))
	assert.Nil(t, derr.DirErr)
	assert.NotNil(t, derr.ArchiveErr)
	assert.NoDirExists(t, c.Path("foo"))
}

func TestDelete_RejectsInvalidName(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "keep")

	err := New(root).Delete("../keep")
	assert.ErrorIs(t, err, common.ErrInvalidName)
	assert.DirExists(t, filepath.Join(root, "keep"))
}

func TestArchiveBackupName(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/home/me/theme1.tar.gz", "theme1", false},
		{"macosfull.TAR.GZ", "macosfull", false},
		{"dark.tgz", "dark", false},
		{"notes.txt", "", true},
		{"my theme.tar.gz", "", true},
		{".tar.gz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ArchiveBackupName(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreArchive(t *testing.T) {
	srcDir := t.TempDir()
	root := t.TempDir()
	src := filepath.Join(srcDir, "theme1.tgz")
	require.NoError(t, os.WriteFile(src, []byte("archive-bytes"), 0640))
	mtime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	c := New(root)
	require.NoError(t, c.StoreArchive(src))

	data, err := os.ReadFile(c.ArchivePath("theme1"))
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))

	info, err := os.Stat(c.ArchivePath("theme1"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestStoreArchive_SameFile(t *testing.T) {
	root := t.TempDir()
	c := New(root)
	require.NoError(t, os.WriteFile(c.ArchivePath("theme1"), []byte("keep"), 0644))

	require.NoError(t, c.StoreArchive(c.ArchivePath("theme1")))

	data, err := os.ReadFile(c.ArchivePath("theme1"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}
