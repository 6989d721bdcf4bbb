package redact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ironsheep/image-tagger/internal/fsutil"
)

// BackupSuffix is appended to an image path to name its backup.
const BackupSuffix = ".bak"

// BackupPath returns the backup location for an image.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// HasBackup reports whether a backup exists for path.
func HasBackup(path string) bool {
	return fsutil.Exists(BackupPath(path))
}

// EnsureBackup stores original as the backup of path unless a backup already
// exists. It reports whether a new backup was created. An existing backup is
// never overwritten, so it always holds the bytes from before the first
// redaction.
func EnsureBackup(path string, original []byte) (bool, error) {
	created, err := fsutil.CreateExclusive(BackupPath(path), original)
	if err != nil {
		return false, fmt.Errorf("failed to back up image: %w", err)
	}
	return created, nil
}

// Restore replaces the image at path with its backup. The backup itself is
// kept, so a restored image can be redacted again and restored again.
func Restore(path string) error {
	data, err := os.ReadFile(BackupPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w for %s", ErrNoBackup, path)
		}
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if err := fsutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("failed to restore image: %w", err)
	}
	return nil
}
