package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
)

// Identifies where a build's project files come from.
//
// Exactly one of Path or Repo must be set: Path names a directory on the
// local filesystem, Repo names a git repository to clone.
type Input struct {
	Path string // Local project directory.
	Repo string // Git repository URL.
}

// Resolves a build input to a project root on the local filesystem.
//
// Local paths are validated and returned as-is. Repositories are shallow
// cloned into a temporary directory. The returned cleanup function removes
// any temporary state and must be called when the build completes; for
// local paths it is a no-op.
func Materialize(ctx context.Context, in Input) (string, func(), error) {
	switch {
	case in.Path != "" && in.Repo != "":
		return "", nil, fmt.Errorf("source path and repository are mutually exclusive")
	case in.Repo != "":
		return cloneRepo(ctx, in.Repo)
	case in.Path != "":
		return localDir(in.Path)
	default:
		return "", nil, fmt.Errorf("no source path or repository given")
	}
}

// Validates a local project directory.
func localDir(path string) (string, func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, err
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("source %s is not a directory", abs)
	}

	return abs, func() {}, nil
}

// Shallow clones a repository into a temporary directory.
//
// Depth 1 is enough for a build: only the working tree matters, not the
// history.
func cloneRepo(ctx context.Context, url string) (string, func(), error) {
	tmpDir, err := os.MkdirTemp("", "stowd-src-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	if _, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	}); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("clone %s: %w", url, err)
	}

	return tmpDir, cleanup, nil
}
