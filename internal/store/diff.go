package store

import (
	"context"
	"fmt"
)

// Diff describes how a manifest changed between two snapshots.
//
// Moved lists declarations present in both snapshots whose relative order
// changed. Installation order affects downstream integration, so a pure
// reorder is reported even when no declaration text changed.
type Diff struct {
	From    string       `json:"from"` // snapshot ID
	To      string       `json:"to"`   // snapshot ID
	Added   []DeclRecord `json:"added,omitempty"`
	Removed []DeclRecord `json:"removed,omitempty"`
	Changed []DeclChange `json:"changed,omitempty"`
	Moved   []string     `json:"moved,omitempty"` // normalized names
}

// DeclChange is a declaration whose text changed between snapshots.
type DeclChange struct {
	Name   string `json:"name"` // normalized
	Before string `json:"before"`
	After  string `json:"after"`
}

// Empty reports whether the diff contains no changes.
func (d *Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 && len(d.Moved) == 0
}

// DiffSnapshots compares two stored snapshots by normalized declaration
// name. Results follow the "to" snapshot's order for additions and the
// "from" snapshot's order for removals.
func (s *Store) DiffSnapshots(ctx context.Context, fromID, toID string) (*Diff, error) {
	_, fromDecls, err := s.GetSnapshot(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	_, toDecls, err := s.GetSnapshot(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return DiffDeclarations(fromID, toID, fromDecls, toDecls), nil
}

// DiffDeclarations computes the diff between two declaration sequences.
// Exposed so callers can diff a stored snapshot against a live manifest.
func DiffDeclarations(fromID, toID string, from, to []DeclRecord) *Diff {
	diff := &Diff{From: fromID, To: toID}

	fromByName := indexByName(from)
	toByName := indexByName(to)

	for _, d := range to {
		if _, ok := fromByName[d.NormalizedName]; !ok {
			diff.Added = append(diff.Added, d)
		}
	}
	for _, d := range from {
		if _, ok := toByName[d.NormalizedName]; !ok {
			diff.Removed = append(diff.Removed, d)
		}
	}

	// Common declarations, in "from" order.
	var fromCommon, toCommon []string
	for _, d := range from {
		if _, ok := toByName[d.NormalizedName]; ok {
			fromCommon = append(fromCommon, d.NormalizedName)
			if before, after := d.Raw, toByName[d.NormalizedName].Raw; before != after {
				diff.Changed = append(diff.Changed, DeclChange{
					Name:   d.NormalizedName,
					Before: before,
					After:  after,
				})
			}
		}
	}
	for _, d := range to {
		if _, ok := fromByName[d.NormalizedName]; ok {
			toCommon = append(toCommon, d.NormalizedName)
		}
	}

	// Names outside the longest common subsequence of the two orderings
	// are the ones that moved.
	inLCS := map[string]bool{}
	for _, name := range lcs(fromCommon, toCommon) {
		inLCS[name] = true
	}
	for _, name := range toCommon {
		if !inLCS[name] {
			diff.Moved = append(diff.Moved, name)
		}
	}
	return diff
}

func indexByName(decls []DeclRecord) map[string]DeclRecord {
	byName := make(map[string]DeclRecord, len(decls))
	for _, d := range decls {
		// First occurrence wins; duplicates are a checker finding.
		if _, ok := byName[d.NormalizedName]; !ok {
			byName[d.NormalizedName] = d
		}
	}
	return byName
}

// lcs computes a longest common subsequence of two string slices.
// Manifests are small (hundreds of lines), so quadratic space is fine.
func lcs(a, b []string) []string {
	n, m := len(a), len(b)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				table[i][j] = table[i+1][j+1] + 1
			} else if table[i+1][j] >= table[i][j+1] {
				table[i][j] = table[i+1][j]
			} else {
				table[i][j] = table[i][j+1]
			}
		}
	}

	var seq []string
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			seq = append(seq, a[i])
			i++
			j++
		case table[i+1][j] >= table[i][j+1]:
			i++
		default:
			j++
		}
	}
	return seq
}
