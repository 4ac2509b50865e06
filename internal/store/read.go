package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// ListSnapshots returns every snapshot recorded for a manifest path,
// oldest first. Ordering is deterministic: taken_at, then id as a
// tiebreaker for snapshots recorded within the same second.
//
// Returns an empty slice (not nil) if no snapshots exist for the path.
func (s *Store) ListSnapshots(ctx context.Context, path string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, content_hash, taken_at, line_count
		FROM snapshots
		WHERE path = ?
		ORDER BY taken_at ASC, id COLLATE BINARY ASC
	`, path)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

// GetSnapshot returns a snapshot and its declarations by snapshot ID.
func (s *Store) GetSnapshot(ctx context.Context, id string) (Snapshot, []DeclRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, content_hash, taken_at, line_count
		FROM snapshots
		WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		if isNoRows(err) {
			return Snapshot{}, nil, fmt.Errorf("snapshot %s not found", id)
		}
		return Snapshot{}, nil, fmt.Errorf("get snapshot: %w", err)
	}

	decls, err := s.readDeclarations(ctx, id)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, decls, nil
}

// readDeclarations returns a snapshot's declarations in stored file order.
func (s *Store) readDeclarations(ctx context.Context, snapshotID string) ([]DeclRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, name, normalized_name, raw
		FROM declarations
		WHERE snapshot_id = ?
		ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("query declarations: %w", err)
	}
	defer rows.Close()

	decls := []DeclRecord{}
	for rows.Next() {
		var d DeclRecord
		if err := rows.Scan(&d.Position, &d.Name, &d.NormalizedName, &d.Raw); err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		decls = append(decls, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return decls, nil
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	var takenAt string
	if err := row.Scan(&snap.ID, &snap.Path, &snap.ContentHash, &takenAt, &snap.LineCount); err != nil {
		return Snapshot{}, err
	}
	t, err := time.Parse(time.RFC3339, takenAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse taken_at %q: %w", takenAt, err)
	}
	snap.TakenAt = t
	return snap, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
