package fsx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMoveRelocatesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw", "a.mp4")
	dst := filepath.Join(dir, "crop", "a.mp4")
	mustWrite(t, src, "video-bytes")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := Move(src, dst); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(src); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected source to be gone, stat err=%v", err)
	}
	if got := mustRead(t, dst); got != "video-bytes" {
		t.Fatalf("unexpected destination content %q", got)
	}
}

func TestMoveRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.mp4")
	dst := filepath.Join(dir, "b.mp4")
	mustWrite(t, src, "new")
	mustWrite(t, dst, "old")

	err := Move(src, dst)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if got := mustRead(t, dst); got != "old" {
		t.Fatalf("destination overwritten: %q", got)
	}
	if got := mustRead(t, src); got != "new" {
		t.Fatalf("source modified: %q", got)
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFileAtomic(dir, "metadata.csv", []byte("v1"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(dir, "metadata.csv", []byte("v2"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	if got := mustRead(t, filepath.Join(dir, "metadata.csv")); got != "v2" {
		t.Fatalf("unexpected content %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := Exists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("expected missing file, got %v %v", ok, err)
	}
	path := filepath.Join(dir, "present")
	mustWrite(t, path, "x")
	ok, err = Exists(path)
	if err != nil || !ok {
		t.Fatalf("expected present file, got %v %v", ok, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
