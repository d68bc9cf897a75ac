package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxEntrySize bounds each extracted file.
const maxEntrySize = 1 << 30

// Restore extracts an archive written by Backup into targetDir and returns the
// restored paths. Nothing in targetDir changes unless the whole archive reads
// cleanly; existing files are kept unless force is true.
func Restore(ctx context.Context, archivePath, targetDir string, force bool) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompressing archive: %w", err)
	}
	defer gr.Close()

	if err := os.MkdirAll(targetDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}
	staging, err := os.MkdirTemp(targetDir, ".restore-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	var names []string
	foundDB := false
	tr := tar.NewReader(gr)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading archive entry: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, err := entryName(hdr.Name)
		if err != nil {
			return nil, err
		}
		if strings.HasSuffix(name, ".db") {
			foundDB = true
		}
		if !force {
			if _, err := os.Stat(filepath.Join(targetDir, name)); err == nil {
				return nil, fmt.Errorf("file already exists (use --force to overwrite): %s", filepath.Join(targetDir, name))
			}
		}
		if err := extract(tr, filepath.Join(staging, name)); err != nil {
			return nil, fmt.Errorf("extracting %s: %w", name, err)
		}
		names = append(names, name)
	}

	if !foundDB {
		return nil, errors.New("invalid backup: archive does not contain a .db file")
	}

	restored := make([]string, 0, len(names))
	for _, name := range names {
		dest := filepath.Join(targetDir, name)
		// A stale WAL would be replayed over the restored database.
		if strings.HasSuffix(name, ".db") {
			_ = os.Remove(dest + "-wal")
			_ = os.Remove(dest + "-shm")
		}
		if err := os.Rename(filepath.Join(staging, name), dest); err != nil {
			return restored, fmt.Errorf("moving %s into place: %w", name, err)
		}
		restored = append(restored, dest)
	}
	return restored, nil
}

// entryName accepts only plain file names, the form Backup writes.
func entryName(name string) (string, error) {
	if filepath.IsAbs(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("path traversal detected: %q", name)
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || cleaned == "." {
		return "", fmt.Errorf("unexpected archive entry %q", name)
	}
	return cleaned, nil
}

func extract(r io.Reader, dest string) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(r, maxEntrySize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxEntrySize {
		err = fmt.Errorf("entry exceeds %d bytes", maxEntrySize)
	}
	return err
}
