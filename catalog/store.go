package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/wippyai/rsz"
	rszerrors "github.com/wippyai/rsz/errors"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Catalogues with
// another version are rejected, not migrated.
const schemaVersion = 1

// Status is the outcome of scanning one file.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

var (
	// ErrLocked is returned by Open when another process holds the catalogue.
	ErrLocked = errors.New("catalog is locked by another process")
	// ErrSchemaMismatch indicates a catalogue written by a different schema.
	ErrSchemaMismatch = errors.New("catalog schema version mismatch")
)

// Store is an open catalogue.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// FileRecord is the scan result of one file.
type FileRecord struct {
	Path        string
	Size        int64
	ScannedAt   time.Time
	Status      Status
	ErrorKind   string
	Error       string
	ObjectCount int
	Descriptors []rsz.DescriptorInfo
}

// NewFileRecord builds a record from a scan outcome. err may be nil.
func NewFileRecord(path string, size int64, descs []rsz.DescriptorInfo, objects int, err error) FileRecord {
	rec := FileRecord{
		Path:        path,
		Size:        size,
		ScannedAt:   time.Now().UTC(),
		Status:      StatusOK,
		ObjectCount: objects,
		Descriptors: descs,
	}
	if err != nil {
		rec.Status = StatusFailed
		rec.Error = err.Error()
		if kind, ok := rszerrors.KindOf(err); ok {
			rec.ErrorKind = string(kind)
		}
	}
	return rec
}

// Open creates or opens the catalogue at path and takes its lock.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db, path: path, lock: lock}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	if err := s.initSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	Logger().Debug("catalog opened", zap.String("path", path))
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = fmt.Errorf("release lock: %w", uerr)
	}
	return err
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: catalog has version %d, expected %d (delete %s and rescan)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Record replaces the stored result for rec.Path.
func (s *Store) Record(ctx context.Context, rec FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE path = ?", rec.Path); err != nil {
		return fmt.Errorf("delete previous record: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO files (path, size, scanned_at, status, error_kind, error, object_count)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Path,
		rec.Size,
		rec.ScannedAt.UTC().Format(time.RFC3339Nano),
		string(rec.Status),
		nullableString(rec.ErrorKind),
		nullableString(rec.Error),
		rec.ObjectCount,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO descriptors (file_id, idx, hash, revision, symbol, status, version, extern, root)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare descriptor insert: %w", err)
	}
	defer stmt.Close()
	for _, d := range rec.Descriptors {
		var ver any
		if d.Status == rsz.RevisionKnown {
			ver = int64(d.Version)
		}
		if _, err := stmt.ExecContext(ctx,
			fileID,
			d.Index,
			int64(d.Descriptor.Hash),
			int64(d.Descriptor.Revision),
			nullableString(d.Symbol),
			d.Status.String(),
			ver,
			nullableString(d.Extern),
			boolToInt(d.Root),
		); err != nil {
			return fmt.Errorf("insert descriptor %d: %w", d.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	Logger().Debug("recorded file",
		zap.String("path", rec.Path),
		zap.String("status", string(rec.Status)),
		zap.Int("descriptors", len(rec.Descriptors)))
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
