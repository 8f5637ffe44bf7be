package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
//
// Unique indexes map one value to one id and are checked inside the same
// transaction that writes the record, so two racing creates cannot both win.
// Lookup indexes map one value to many ids and back the list queries.
type Entity[T any] struct {
	store   *Store
	prefix  string
	idOf    func(*T) string
	unique  []Index[T]
	lookups []Index[T]
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Store, prefix string, idOf func(*T) string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
		idOf:   idOf,
	}
}

// WithUniqueIndex adds a unique secondary index.
func (e *Entity[T]) WithUniqueIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.unique = append(e.unique, Index[T]{name: name, keyGen: keyGen})
	return e
}

// WithUniqueIndexTransform adds a unique index whose lookups are normalised
// by lookupTransform, enabling case-insensitive matches.
func (e *Entity[T]) WithUniqueIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.unique = append(e.unique, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithLookup adds a non-unique index used to list entities by a shared value.
func (e *Entity[T]) WithLookup(name string, keyGen func(*T) []string) *Entity[T] {
	e.lookups = append(e.lookups, Index[T]{name: name, keyGen: keyGen})
	return e
}

// Create stores a new entity.
// Returns ErrAlreadyExists if the id or any unique index value is taken.
func (e *Entity[T]) Create(ctx context.Context, entity *T) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		return e.createTxn(txn, entity)
	})
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity *T
	err := e.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		entity, err = e.getTxn(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// GetByIndex retrieves an entity by a unique index value.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	var entity *T
	err := e.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		entity, err = e.getByIndexTxn(txn, indexName, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update replaces an existing entity and rewrites its indexes.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, entity *T) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		return e.updateTxn(txn, entity)
	})
}

// Delete deletes an entity by ID.
// This operation is idempotent - it does not return an error if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string) error {
	return e.store.update(ctx, func(txn *badger.Txn) error {
		_, err := e.deleteTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	})
}

// ListByLookup returns every entity whose lookup index holds value.
func (e *Entity[T]) ListByLookup(ctx context.Context, indexName, value string) ([]*T, error) {
	var entities []*T
	err := e.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		entities, err = e.listByLookupTxn(txn, indexName, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// CountByLookup counts entities whose lookup index holds value without loading them.
func (e *Entity[T]) CountByLookup(ctx context.Context, indexName, value string) (int, error) {
	var n int
	err := e.store.view(ctx, func(txn *badger.Txn) error {
		n = len(e.idsByLookupTxn(txn, indexName, value))
		return nil
	})
	return n, err
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		prefix := []byte(e.prefix)
		_ = e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return err
				}

				if isIndexKey(string(it.Item().Key()[len(prefix):])) {
					continue
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil
				}
			}
			return nil
		})
	}
}

// Count returns the number of stored records, ignoring index keys.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	prefix := []byte(e.prefix)
	n := 0
	err := e.store.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if !isIndexKey(string(it.Item().Key()[len(prefix):])) {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Transaction-level building blocks. Store methods compose these inside a
// single badger transaction when an operation touches several entities.

func (e *Entity[T]) getTxn(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(recordKey(e.prefix, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s%s: %w", e.prefix, id, err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entity)
	})
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s%s: %w", e.prefix, id, err)
	}
	return &entity, nil
}

func (e *Entity[T]) getByIndexTxn(txn *badger.Txn, indexName, value string) (*T, error) {
	item, err := txn.Get(uniqueKey(e.prefix, indexName, e.transform(indexName, value)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get index %s: %w", indexName, err)
	}

	id, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("read index %s: %w", indexName, err)
	}
	return e.getTxn(txn, string(id))
}

func (e *Entity[T]) existsByIndexTxn(txn *badger.Txn, indexName, value string) (bool, error) {
	_, err := txn.Get(uniqueKey(e.prefix, indexName, e.transform(indexName, value)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", indexName, err)
	}
	return true, nil
}

func (e *Entity[T]) createTxn(txn *badger.Txn, entity *T) error {
	id := e.idOf(entity)

	_, err := txn.Get(recordKey(e.prefix, id))
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check existing key: %w", err)
	}

	for _, idx := range e.unique {
		for _, value := range idx.keyGen(entity) {
			taken, err := e.existsByIndexTxn(txn, idx.name, value)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("index %s conflict on %s: %w", idx.name, value, ErrAlreadyExists)
			}
		}
	}

	return e.writeTxn(txn, entity)
}

func (e *Entity[T]) updateTxn(txn *badger.Txn, entity *T) error {
	old, err := e.getTxn(txn, e.idOf(entity))
	if err != nil {
		return err
	}

	for _, idx := range e.unique {
		held := make(map[string]bool)
		for _, value := range idx.keyGen(old) {
			held[value] = true
		}
		for _, value := range idx.keyGen(entity) {
			if held[value] {
				continue
			}
			taken, err := e.existsByIndexTxn(txn, idx.name, value)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("index %s conflict on %s: %w", idx.name, value, ErrAlreadyExists)
			}
		}
	}

	if err := e.clearIndexesTxn(txn, old); err != nil {
		return err
	}
	return e.writeTxn(txn, entity)
}

// deleteTxn removes the record and its index keys and returns what was deleted.
func (e *Entity[T]) deleteTxn(txn *badger.Txn, id string) (*T, error) {
	old, err := e.getTxn(txn, id)
	if err != nil {
		return nil, err
	}
	if err := e.clearIndexesTxn(txn, old); err != nil {
		return nil, err
	}
	if err := txn.Delete(recordKey(e.prefix, id)); err != nil {
		return nil, fmt.Errorf("delete %s%s: %w", e.prefix, id, err)
	}
	return old, nil
}

func (e *Entity[T]) idsByLookupTxn(txn *badger.Txn, indexName, value string) []string {
	prefix := lookupPrefix(e.prefix, indexName, value)

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false // We only need keys.
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		ids = append(ids, string(it.Item().Key()[len(prefix):]))
	}
	return ids
}

func (e *Entity[T]) listByLookupTxn(txn *badger.Txn, indexName, value string) ([]*T, error) {
	ids := e.idsByLookupTxn(txn, indexName, value)

	entities := make([]*T, 0, len(ids))
	for _, id := range ids {
		entity, err := e.getTxn(txn, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (e *Entity[T]) writeTxn(txn *badger.Txn, entity *T) error {
	id := e.idOf(entity)

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal %s%s: %w", e.prefix, id, err)
	}
	if err := txn.Set(recordKey(e.prefix, id), data); err != nil {
		return fmt.Errorf("set %s%s: %w", e.prefix, id, err)
	}

	for _, idx := range e.unique {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Set(uniqueKey(e.prefix, idx.name, value), []byte(id)); err != nil {
				return fmt.Errorf("set index %s: %w", idx.name, err)
			}
		}
	}
	for _, idx := range e.lookups {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Set(lookupKey(e.prefix, idx.name, value, id), []byte{}); err != nil {
				return fmt.Errorf("set lookup %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) clearIndexesTxn(txn *badger.Txn, entity *T) error {
	id := e.idOf(entity)

	for _, idx := range e.unique {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(uniqueKey(e.prefix, idx.name, value)); err != nil {
				return fmt.Errorf("delete index %s: %w", idx.name, err)
			}
		}
	}
	for _, idx := range e.lookups {
		for _, value := range idx.keyGen(entity) {
			if err := txn.Delete(lookupKey(e.prefix, idx.name, value, id)); err != nil {
				return fmt.Errorf("delete lookup %s: %w", idx.name, err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) transform(indexName, value string) string {
	for _, idx := range e.unique {
		if idx.name == indexName && idx.lookupTransform != nil {
			return idx.lookupTransform(value)
		}
	}
	return value
}
