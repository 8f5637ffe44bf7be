package store

import (
	"fmt"
	"io"
)

// loadPendingWrites bounds the batch size badger uses while loading a backup.
const loadPendingWrites = 256

// Backup streams a full snapshot of the graph in badger's native backup
// format and returns the version it was taken at.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("backup graph: %w", err)
	}
	return version, nil
}

// Load replays a snapshot written by Backup. Keys in the snapshot overwrite
// existing keys, so callers restore into an empty store.
func (s *Store) Load(r io.Reader) error {
	if err := s.db.Load(r, loadPendingWrites); err != nil {
		return fmt.Errorf("load graph: %w", err)
	}
	return nil
}
