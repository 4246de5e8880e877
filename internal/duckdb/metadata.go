package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/inodb/spliceai-lookup/internal/scorecache"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Import describes a completed score file import.
type Import struct {
	Key         scorecache.Key
	Source      FileFingerprint
	RecordCount int64
}

func formatModTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// LastImport returns the recorded import for key, or false if none exists.
func (s *Store) LastImport(k scorecache.Key) (Import, bool, error) {
	var (
		imp     Import
		modtime string
	)
	err := s.db.QueryRow(`SELECT source_path, source_size, source_modtime, record_count
		FROM score_imports WHERE score_key=?`, k.String()).
		Scan(&imp.Source.Path, &imp.Source.Size, &modtime, &imp.RecordCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, false, nil
	}
	if err != nil {
		return Import{}, false, fmt.Errorf("query import for %s: %w", k, err)
	}
	imp.Key = k
	imp.Source.ModTime, err = time.Parse(time.RFC3339Nano, modtime)
	if err != nil {
		return Import{}, false, fmt.Errorf("parse import modtime for %s: %w", k, err)
	}
	return imp, true, nil
}

// Current reports whether the last import of key came from an unchanged copy of fp.
func (s *Store) Current(k scorecache.Key, fp FileFingerprint) bool {
	imp, ok, err := s.LastImport(k)
	if err != nil || !ok {
		return false
	}
	return imp.Source.Path == fp.Path &&
		imp.Source.Size == fp.Size &&
		imp.Source.ModTime.Equal(fp.ModTime)
}

func clearImport(ctx context.Context, ex execer, k scorecache.Key) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM score_imports WHERE score_key=?`, k.String()); err != nil {
		return fmt.Errorf("clear import record: %w", err)
	}
	return nil
}

func insertImport(ctx context.Context, ex execer, imp Import) error {
	_, err := ex.ExecContext(ctx, `INSERT INTO score_imports VALUES (?, ?, ?, ?, ?)`,
		imp.Key.String(), imp.Source.Path, imp.Source.Size,
		formatModTime(imp.Source.ModTime), imp.RecordCount)
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}
