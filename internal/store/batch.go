package store

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

// defaultCascadeBatch keeps a batch of follow or bookmark deletions, with
// their index keys, well below badger's per-transaction limit.
const defaultCascadeBatch = 500

// deleteInBatches removes ids through del, committing every s.cascadeBatch
// records. Records already gone are skipped and not counted. A failure leaves
// earlier batches committed, so a retry resumes where this one stopped.
func (s *Store) deleteInBatches(ctx context.Context, ids []string, del func(txn *badger.Txn, id string) error) (int, error) {
	deleted := 0
	for chunk := range slices.Chunk(ids, s.cascadeBatch) {
		var n int
		err := s.update(ctx, func(txn *badger.Txn) error {
			n = 0
			for _, recordID := range chunk {
				err := del(txn, recordID)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				n++
			}
			return nil
		})
		if err != nil {
			return deleted, err
		}
		deleted += n

		if s.logger != nil {
			s.logger.Debug("cascade batch committed", "records", n, "total", deleted)
		}
	}
	return deleted, nil
}

// removeTxn deletes a record and its indexes, discarding the old value.
func (e *Entity[T]) removeTxn(txn *badger.Txn, id string) error {
	_, err := e.deleteTxn(txn, id)
	return err
}
