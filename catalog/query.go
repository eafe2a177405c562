package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wippyai/rsz"
)

// Summary counts the catalogue contents.
type Summary struct {
	Files       int `json:"files"`
	Failed      int `json:"failed"`
	Descriptors int `json:"descriptors"`
	Unlisted    int `json:"unlisted"`
	UnknownType int `json:"unknown_type"`
}

// Mismatch is a revision checksum seen for a registered schema that its
// revision table does not list.
type Mismatch struct {
	Symbol   string `json:"symbol"`
	Hash     uint32 `json:"hash"`
	Revision uint32 `json:"revision"`
	Files    int    `json:"files"`
	Example  string `json:"example"`
}

// UnknownType is a structural hash with no registered schema.
type UnknownType struct {
	Hash      uint32 `json:"hash"`
	Revisions int    `json:"revisions"`
	Files     int    `json:"files"`
	Example   string `json:"example"`
}

// Summary returns totals over the whole catalogue.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) FROM files`,
		string(StatusFailed),
	).Scan(&sum.Files, &sum.Failed)
	if err != nil {
		return sum, fmt.Errorf("count files: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
         FROM descriptors`,
		rsz.RevisionUnlisted.String(),
		rsz.RevisionUnknownType.String(),
	).Scan(&sum.Descriptors, &sum.Unlisted, &sum.UnknownType)
	if err != nil {
		return sum, fmt.Errorf("count descriptors: %w", err)
	}
	return sum, nil
}

// Mismatches lists unlisted revision checksums grouped by schema.
func (s *Store) Mismatches(ctx context.Context) ([]Mismatch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.symbol, d.hash, d.revision, COUNT(DISTINCT d.file_id), MIN(f.path)
         FROM descriptors d JOIN files f ON f.id = d.file_id
         WHERE d.status = ?
         GROUP BY d.hash, d.revision
         ORDER BY d.symbol, d.revision`,
		rsz.RevisionUnlisted.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query mismatches: %w", err)
	}
	defer rows.Close()

	var out []Mismatch
	for rows.Next() {
		var m Mismatch
		var hash, rev int64
		var symbol sql.NullString
		if err := rows.Scan(&symbol, &hash, &rev, &m.Files, &m.Example); err != nil {
			return nil, fmt.Errorf("scan mismatch: %w", err)
		}
		m.Symbol = symbol.String
		m.Hash = uint32(hash)
		m.Revision = uint32(rev)
		out = append(out, m)
	}
	return out, rows.Err()
}

// UnknownTypes lists structural hashes the registry could not resolve.
func (s *Store) UnknownTypes(ctx context.Context) ([]UnknownType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.hash, COUNT(DISTINCT d.revision), COUNT(DISTINCT d.file_id), MIN(f.path)
         FROM descriptors d JOIN files f ON f.id = d.file_id
         WHERE d.status = ?
         GROUP BY d.hash
         ORDER BY COUNT(DISTINCT d.file_id) DESC, d.hash`,
		rsz.RevisionUnknownType.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query unknown types: %w", err)
	}
	defer rows.Close()

	var out []UnknownType
	for rows.Next() {
		var u UnknownType
		var hash int64
		if err := rows.Scan(&hash, &u.Revisions, &u.Files, &u.Example); err != nil {
			return nil, fmt.Errorf("scan unknown type: %w", err)
		}
		u.Hash = uint32(hash)
		out = append(out, u)
	}
	return out, rows.Err()
}

// Failures lists files whose last scan failed, most recent first.
func (s *Store) Failures(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, size, scanned_at, status, COALESCE(error_kind, ''), COALESCE(error, ''), object_count
         FROM files WHERE status = ?
         ORDER BY scanned_at DESC, path`,
		string(StatusFailed),
	)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var rec FileRecord
		var scanned, status string
		if err := rows.Scan(&rec.Path, &rec.Size, &scanned, &status, &rec.ErrorKind, &rec.Error, &rec.ObjectCount); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		rec.Status = Status(status)
		if rec.ScannedAt, err = time.Parse(time.RFC3339Nano, scanned); err != nil {
			return nil, fmt.Errorf("parse scanned_at %q: %w", scanned, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
