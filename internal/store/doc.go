// Package store provides durable snapshot storage for manifests.
//
// Each snapshot records a manifest's content hash plus its declarations in
// file order, so the history of a manifest - what changed, and whether
// order changed - can be reconstructed and diffed later. Snapshots are
// idempotent by (path, content hash): recording an unchanged manifest
// returns the existing snapshot.
//
// Backed by SQLite with WAL mode for concurrent read access.
package store
