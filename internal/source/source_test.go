package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMaterializeLocal(t *testing.T) {
	dir := t.TempDir()

	root, cleanup, err := Materialize(context.Background(), Input{Path: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if root != dir {
		t.Fatalf("root = %q, want %q", root, dir)
	}

	// Local cleanup must not remove the caller's directory.
	cleanup()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("local directory removed by cleanup: %v", err)
	}
}

func TestMaterializeLocalMissing(t *testing.T) {
	_, _, err := Materialize(context.Background(), Input{Path: filepath.Join(t.TempDir(), "absent")})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestMaterializeLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := Materialize(context.Background(), Input{Path: path})
	if err == nil {
		t.Fatal("expected error for non-directory, got nil")
	}
}

func TestMaterializeEmptyInput(t *testing.T) {
	_, _, err := Materialize(context.Background(), Input{})
	if err == nil {
		t.Fatal("expected error for empty input, got nil")
	}
}

func TestMaterializeBothInputs(t *testing.T) {
	_, _, err := Materialize(context.Background(), Input{Path: t.TempDir(), Repo: "https://example.com/repo.git"})
	if err == nil {
		t.Fatal("expected error for ambiguous input, got nil")
	}
}
