// Package catalog lists and manages backups stored under the backup root.
//
// The directory itself is the source of truth: every backup is a
// subdirectory root/<name>/ with an optional sibling archive
// root/<name>.tar.gz. Nothing is cached; List rescans on every call.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yllada/kde-theme-backup/common"
)

// invalidNameChars may not appear in a backup name.
const invalidNameChars = " /\\:"

// Catalog is a view over one backup root directory.
type Catalog struct {
	root string
}

// New returns a Catalog rooted at root. The directory is created lazily by List.
func New(root string) *Catalog {
	return &Catalog{root: root}
}

// Root returns the backup root directory.
func (c *Catalog) Root() string {
	return c.root
}

// Path returns the directory of the named backup.
func (c *Catalog) Path(name string) string {
	return filepath.Join(c.root, name)
}

// ArchivePath returns the archive file of the named backup.
func (c *Catalog) ArchivePath(name string) string {
	return filepath.Join(c.root, name+common.ArchiveSuffix)
}

// List ensures the root exists and returns the names of its immediate
// subdirectories in case-insensitive order. Symlinks to directories count.
func (c *Catalog) List() ([]string, error) {
	if err := os.MkdirAll(c.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || (entry.Type()&os.ModeSymlink != 0 && c.Exists(entry.Name())) {
			names = append(names, entry.Name())
		}
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names, nil
}

// Exists reports whether the backup directory root/name exists.
func (c *Catalog) Exists(name string) bool {
	info, err := os.Stat(c.Path(name))
	return err == nil && info.IsDir()
}

// ValidateName rejects empty names and names containing a space, '/', '\' or ':'.
func ValidateName(name string) error {
	if name == "" {
		return common.ErrEmptyName
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w (got %q)", common.ErrInvalidName, name)
	}
	return ValidateEntry(name)
}

// ValidateEntry accepts any name List can return, including ones created
// outside the application such as "my backup". It only rejects names that
// would resolve outside the root.
func ValidateEntry(name string) error {
	if name == "" {
		return common.ErrEmptyName
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w (got %q)", common.ErrInvalidName, name)
	}
	return nil
}

// DeletionError reports the removals that failed while deleting a backup.
type DeletionError struct {
	Name string
	// DirErr is the failure removing root/<name>/, if any.
	DirErr error
	// ArchiveErr is the failure removing root/<name>.tar.gz, if any.
	ArchiveErr error
}

func (e *DeletionError) Error() string {
	var parts []string
	if e.DirErr != nil {
		parts = append(parts, "directory: "+e.DirErr.Error())
	}
	if e.ArchiveErr != nil {
		parts = append(parts, "archive: "+e.ArchiveErr.Error())
	}
	return fmt.Sprintf("failed to delete backup %q (%s)", e.Name, strings.Join(parts, "; "))
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *DeletionError) Unwrap() []error {
	var errs []error
	if e.DirErr != nil {
		errs = append(errs, e.DirErr)
	}
	if e.ArchiveErr != nil {
		errs = append(errs, e.ArchiveErr)
	}
	return errs
}

// Delete removes the backup directory (recursively) and then its archive.
// Missing entries are not errors. Both removals are always attempted;
// failures are collected into a *DeletionError.
func (c *Catalog) Delete(name string) error {
	if err := ValidateEntry(name); err != nil {
		return err
	}

	derr := &DeletionError{Name: name}
	if err := os.RemoveAll(c.Path(name)); err != nil {
		derr.DirErr = err
	}
	if err := os.Remove(c.ArchivePath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		derr.ArchiveErr = err
	}

	if derr.DirErr != nil || derr.ArchiveErr != nil {
		return derr
	}
	return nil
}

// RemoveBackupDir removes only the backup directory, keeping the archive.
func (c *Catalog) RemoveBackupDir(name string) error {
	if err := ValidateEntry(name); err != nil {
		return err
	}
	if err := os.RemoveAll(c.Path(name)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", c.Path(name), err)
	}
	return nil
}

// ArchiveBackupName returns the backup an archive file extracts to:
// its base name without the .tar.gz (or .tgz) suffix.
func ArchiveBackupName(archivePath string) (string, error) {
	base := filepath.Base(archivePath)
	lower := strings.ToLower(base)

	var name string
	switch {
	case strings.HasSuffix(lower, common.ArchiveSuffix):
		name = base[:len(base)-len(common.ArchiveSuffix)]
	case strings.HasSuffix(lower, ".tgz"):
		name = base[:len(base)-len(".tgz")]
	default:
		return "", fmt.Errorf("%w: %s", common.ErrNotArchive, base)
	}

	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

// StoreArchive copies an imported archive into the root as <name>.tar.gz,
// keeping its permissions and modification time.
func (c *Catalog) StoreArchive(src string) error {
	name, err := ArchiveBackupName(src)
	if err != nil {
		return err
	}
	dst := c.ArchivePath(name)

	srcAbs, _ := filepath.Abs(src)
	dstAbs, _ := filepath.Abs(dst)
	if srcAbs == dstAbs {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
