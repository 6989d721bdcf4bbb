package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic_NewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	if err := WriteAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("content: got %q, want %q", got, "hello")
	}
}

func TestWriteAtomic_ReplacesAndKeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteAtomic(path, []byte("new content")); err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new content" {
		t.Errorf("content: got %q", got)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("perm: got %v, want 0600", fi.Mode().Perm())
	}
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.bin")

	for i := 0; i < 3; i++ {
		if err := WriteAtomic(path, []byte{byte(i)}); err != nil {
			t.Fatalf("WriteAtomic %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory should only hold the target, got %v", names)
	}
}

func TestWriteAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.bin")
	if err := WriteAtomic(path, []byte("x")); err == nil {
		t.Error("WriteAtomic should fail when the directory does not exist")
	}
}

func TestCreateExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "first.bak")

	created, err := CreateExclusive(path, []byte("one"))
	if err != nil {
		t.Fatalf("CreateExclusive failed: %v", err)
	}
	if !created {
		t.Fatal("first CreateExclusive should create the file")
	}

	created, err = CreateExclusive(path, []byte("two"))
	if err != nil {
		t.Fatalf("second CreateExclusive failed: %v", err)
	}
	if created {
		t.Error("second CreateExclusive must not report creation")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "one" {
		t.Errorf("existing file was overwritten: got %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the created file, found %d entries", len(entries))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")

	if Exists(path) {
		t.Error("Exists should be false before creation")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !Exists(path) {
		t.Error("Exists should be true after creation")
	}
}
