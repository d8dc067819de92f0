package build

import (
	"archive/tar"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Copies a single host file into a directory inside the container.
//
// The file is streamed as a one-entry tar archive and extracted into
// destDir under the given name.
func copyFile(ctx context.Context, ctr Container, hostPath, destDir, name string) error {
	slog.Debug("copy file", "src", hostPath, "dest", destDir)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		err := writeFileToTar(tw, hostPath, name)
		tw.Close()
		pw.CloseWithError(err)
	}()

	return ctr.CopyTo(ctx, pr, destDir)
}

// Copies a host directory's contents into a directory inside the container.
//
// The tree is walked in lexical order, so two copies of byte-identical
// trees produce identical archives. Existing files at the destination are
// overwritten; there is no partial-copy rollback.
func copyTree(ctx context.Context, ctr Container, hostDir, destDir string) error {
	slog.Debug("copy tree", "src", hostDir, "dest", destDir)

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		err := writeDirToTar(tw, hostDir)
		tw.Close()
		pw.CloseWithError(err)
	}()

	return ctr.CopyTo(ctx, pr, destDir)
}

// Writes a single file to a tar writer with the given archive name.
func writeFileToTar(tw *tar.Writer, hostPath, name string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Writes a directory tree's contents to a tar writer.
//
// Entries are named relative to the tree root, so extraction places them
// directly into the destination directory.
func writeDirToTar(tw *tar.Writer, hostDir string) error {
	return filepath.WalkDir(hostDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(hostDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		return writeTarEntry(tw, path, filepath.ToSlash(relPath), d)
	})
}

// Writes a single file or directory entry to a tar writer.
func writeTarEntry(tw *tar.Writer, hostPath, archivePath string, d os.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = archivePath

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	if info.Mode().IsRegular() {
		f, err := os.Open(hostPath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	}

	return nil
}
