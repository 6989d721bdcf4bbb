package redact

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestBackupPath(t *testing.T) {
	if got := BackupPath("/photos/a.png"); got != "/photos/a.png.bak" {
		t.Errorf("BackupPath: got %s", got)
	}
}

func TestEnsureBackup_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")

	if HasBackup(path) {
		t.Fatal("backup should not exist yet")
	}

	created, err := EnsureBackup(path, []byte("original"))
	if err != nil {
		t.Fatalf("EnsureBackup failed: %v", err)
	}
	if !created {
		t.Error("first EnsureBackup should create the backup")
	}

	created, err = EnsureBackup(path, []byte("already redacted"))
	if err != nil {
		t.Fatalf("second EnsureBackup failed: %v", err)
	}
	if created {
		t.Error("second EnsureBackup must not create a backup")
	}

	got, err := os.ReadFile(BackupPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte("original")) {
		t.Errorf("backup content: got %q, want %q", got, "original")
	}
	if !HasBackup(path) {
		t.Error("HasBackup should report the backup")
	}
}

func TestRestore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	if err := os.WriteFile(path, []byte("redacted"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureBackup(path, []byte("pristine")); err != nil {
		t.Fatal(err)
	}

	if err := Restore(path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "pristine" {
		t.Errorf("restored content: got %q, want %q", got, "pristine")
	}
	if !HasBackup(path) {
		t.Error("Restore must keep the backup")
	}
}

func TestRestore_NoBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Restore(path)
	if !errors.Is(err, ErrNoBackup) {
		t.Errorf("Restore: got %v, want ErrNoBackup", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "data" {
		t.Error("failed Restore modified the image")
	}
}
