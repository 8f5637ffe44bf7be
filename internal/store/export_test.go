package store

import "github.com/dgraph-io/badger/v4"

// OpenWithSmallTransactions opens a store whose 1 MiB memtable caps a
// transaction at roughly sixteen hundred writes, and whose batched cascades
// delete batch records per transaction.
func OpenWithSmallTransactions(path string, batch int) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithMemTableSize(1 << 20).
		WithValueThreshold(1 << 10).
		WithSyncWrites(false).
		WithLogger(nil)

	s, err := open(opts, nil)
	if err != nil {
		return nil, err
	}
	s.cascadeBatch = batch
	return s, nil
}
