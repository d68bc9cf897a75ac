// Package backup archives the settings database, with the configuration file
// when there is one, and restores such archives.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/store"
)

// Backup writes a gzipped tar to archivePath holding a consistent snapshot of
// the database at dbPath and, when configPath is not empty, the config file.
// Entries are stored under their base names.
func Backup(ctx context.Context, dbPath, configPath, archivePath string) error {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}
		return fmt.Errorf("stat database: %w", err)
	}

	snapshot, err := snapshotDB(ctx, dbPath)
	if err != nil {
		return err
	}
	defer os.RemoveAll(filepath.Dir(snapshot))

	if err := os.MkdirAll(filepath.Dir(archivePath), 0o750); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}
	out, err := os.OpenFile(archivePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

	if err := addFile(tw, snapshot, filepath.Base(dbPath)); err != nil {
		return err
	}
	if configPath != "" {
		if err := addFile(tw, configPath, filepath.Base(configPath)); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finishing tar: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("finishing gzip: %w", err)
	}
	return out.Close()
}

// snapshotDB copies the live database with VACUUM INTO, which reads through
// the WAL, and returns the copy's path inside a fresh temp directory.
func snapshotDB(ctx context.Context, dbPath string) (string, error) {
	dir, err := os.MkdirTemp("", "plunge-backup-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot directory: %w", err)
	}
	dest := filepath.Join(dir, "snapshot.db")

	db, err := store.New(dbPath)
	if err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.DB().ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("snapshotting database: %w", err)
	}
	return dest, nil
}

func addFile(tw *tar.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	hdr := &tar.Header{
		Name:    name,
		Mode:    0o600,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Second),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header for %s: %w", name, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
