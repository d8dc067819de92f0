package build

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// Archives a directory tree in memory and returns entry names in order.
func tarEntries(t *testing.T, dir string) []string {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeDirToTar(tw, dir); err != nil {
		t.Fatalf("writeDirToTar: %v", err)
	}
	tw.Close()

	var names []string
	tr := tar.NewReader(&buf)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read archive: %v", err)
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestWriteDirToTar(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "pkg"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"app.py", "pkg/util.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# "+name), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	names := tarEntries(t, dir)

	want := []string{"app.py", "pkg", "pkg/util.py"}
	if !slices.Equal(names, want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
}

func TestWriteDirToTarOmitsRoot(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only.py"), nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names := tarEntries(t, dir)
	if slices.Contains(names, ".") {
		t.Fatalf("entries %v contain the tree root", names)
	}
}

func TestWriteDirToTarDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.py", "a.py", "c.py"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	first := tarEntries(t, dir)
	second := tarEntries(t, dir)
	if !slices.Equal(first, second) {
		t.Fatalf("archives differ:\n%v\n%v", first, second)
	}
}

func TestWriteFileToTar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	content := []byte("flask==3.0.0\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeFileToTar(tw, path, "requirements.txt"); err != nil {
		t.Fatalf("writeFileToTar: %v", err)
	}
	tw.Close()

	tr := tar.NewReader(&buf)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if hdr.Name != "requirements.txt" {
		t.Fatalf("entry name = %q, want requirements.txt", hdr.Name)
	}

	got, err := io.ReadAll(tr)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("entry content = %q, want %q", got, content)
	}
}

func TestWriteFileToTarMissingFile(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := writeFileToTar(tw, filepath.Join(t.TempDir(), "absent"), "absent"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
