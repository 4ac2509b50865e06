package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pinset-io/pinset/internal/manifest"
)

// Snapshot is a recorded state of a manifest.
type Snapshot struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	TakenAt     time.Time `json:"taken_at"`
	LineCount   int       `json:"line_count"`
}

// DeclRecord is one stored declaration, in file order.
type DeclRecord struct {
	Position       int    `json:"position"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
	Raw            string `json:"raw"`
}

// RecordSnapshot stores the current state of a manifest.
//
// Idempotent by content: if the latest recorded state of m.Path has the
// same content hash, no new snapshot is created and the existing one is
// returned with created=false. Declaration order is stored exactly as it
// appears in the manifest.
func (s *Store) RecordSnapshot(ctx context.Context, m *manifest.Manifest) (Snapshot, bool, error) {
	hash := m.Hash()

	// Reuse an identical existing snapshot.
	existing, err := s.findSnapshot(ctx, m.Path, hash)
	if err != nil {
		return Snapshot{}, false, err
	}
	if existing != nil {
		return *existing, false, nil
	}

	snap := Snapshot{
		ID:          uuid.NewString(),
		Path:        m.Path,
		ContentHash: hash,
		TakenAt:     time.Now().UTC().Truncate(time.Second),
		LineCount:   len(m.Lines),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, path, content_hash, taken_at, line_count)
		VALUES (?, ?, ?, ?, ?)
	`, snap.ID, snap.Path, snap.ContentHash, snap.TakenAt.Format(time.RFC3339), snap.LineCount)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: %w", err)
	}

	for i, d := range m.Declarations() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO declarations (snapshot_id, position, name, normalized_name, raw)
			VALUES (?, ?, ?, ?, ?)
		`, snap.ID, i, d.Name, manifest.NormalizeName(d.Name), d.String())
		if err != nil {
			return Snapshot{}, false, fmt.Errorf("record declaration %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("record snapshot: %w", err)
	}
	return snap, true, nil
}

// findSnapshot returns the snapshot with the given path and content hash,
// or nil if none exists.
func (s *Store) findSnapshot(ctx context.Context, path, hash string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, content_hash, taken_at, line_count
		FROM snapshots
		WHERE path = ? AND content_hash = ?
	`, path, hash)
	snap, err := scanSnapshot(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find snapshot: %w", err)
	}
	return &snap, nil
}
