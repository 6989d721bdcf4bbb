// Package fsutil holds the small file-replacement helpers shared by the
// redaction engine and the tag store.
//
// Every write goes through a temporary sibling file that is synced and then
// renamed (or hard-linked) into place, so readers only ever observe either the
// previous content or the complete new content.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultPerm is used for files that do not exist yet.
const DefaultPerm fs.FileMode = 0o644

// WriteAtomic replaces path with data.
//
// The data is written to a temporary file in the same directory, flushed to
// disk and renamed over path. The permissions of an existing file are kept.
// On failure the temporary file is removed and path is left untouched.
func WriteAtomic(path string, data []byte) error {
	perm := DefaultPerm
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	}

	tmp, err := writeTemp(path, data, perm)
	if err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// CreateExclusive writes data to path only if path does not exist yet.
//
// The content is staged in a temporary file and hard-linked to path, so the
// file appears complete or not at all. It reports false (and no error) when
// path already exists, including when another writer won a race for it.
func CreateExclusive(path string, data []byte) (bool, error) {
	if _, err := os.Lstat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", filepath.Base(path), err)
	}

	tmp, err := writeTemp(path, data, DefaultPerm)
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// Exists reports whether path exists. Errors other than "not exist" count as
// existing.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

func writeTemp(path string, data []byte, perm fs.FileMode) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	return name, nil
}
