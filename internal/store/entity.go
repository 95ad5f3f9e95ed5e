package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// Entity provides generic CRUD operations for any domain type.
type Entity[T any] struct {
	store   *Badger
	prefix  string
	indexes []Index[T]
	groups  []Index[T]
	refs    []Reference[T]
}

// Index defines a secondary index on an entity.
type Index[T any] struct {
	name            string
	keyGen          func(*T) []string
	lookupTransform func(string) string // Optional transformation for lookups
}

// Reference declares that the values produced by keyGen are IDs of records
// stored under another entity's prefix.
type Reference[T any] struct {
	name   string
	prefix string
	keyGen func(*T) []string
}

// Guard inspects the transaction of a delete and returns an error to refuse it.
type Guard func(txn *badger.Txn) error

// NewEntity creates a new Entity instance for type T.
func NewEntity[T any](s *Badger, prefix string) *Entity[T] {
	return &Entity[T]{
		store:  s,
		prefix: prefix,
	}
}

// WithIndex adds a unique secondary index to the entity.
func (e *Entity[T]) WithIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// WithIndexTransform adds a unique secondary index with lookup transformation.
// The lookupTransform function is applied to search values before index lookup,
// enabling case-insensitive searches, normalization, etc.
func (e *Entity[T]) WithIndexTransform(name string, keyGen func(*T) []string, lookupTransform func(string) string) *Entity[T] {
	e.indexes = append(e.indexes, Index[T]{
		name:            name,
		keyGen:          keyGen,
		lookupTransform: lookupTransform,
	})
	return e
}

// WithGroupIndex adds a non-unique index: many entities may share a value.
// Keys are prefix + "idx:" + name + ":" + value + ":" + id and carry no value.
func (e *Entity[T]) WithGroupIndex(name string, keyGen func(*T) []string) *Entity[T] {
	e.groups = append(e.groups, Index[T]{
		name:   name,
		keyGen: keyGen,
	})
	return e
}

// WithReference requires every ID produced by keyGen to exist under prefix
// when the entity is written.
func (e *Entity[T]) WithReference(name, prefix string, keyGen func(*T) []string) *Entity[T] {
	e.refs = append(e.refs, Reference[T]{
		name:   name,
		prefix: prefix,
		keyGen: keyGen,
	})
	return e
}

func (e *Entity[T]) indexKey(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value)
}

func (e *Entity[T]) groupPrefix(name, value string) []byte {
	return []byte(e.prefix + "idx:" + name + ":" + value + ":")
}

func (e *Entity[T]) groupKey(name, value, id string) []byte {
	return append(e.groupPrefix(name, value), id...)
}

// Create creates a new entity with the given ID.
// Returns ErrAlreadyExists if an entity with this ID already exists.
func (e *Entity[T]) Create(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}

		for _, idx := range e.indexes {
			for _, indexKey := range idx.keyGen(entity) {
				_, err := txn.Get(e.indexKey(idx.name, indexKey))
				if err == nil {
					return fmt.Errorf("index %s conflict on key %s: %w", idx.name, indexKey, ErrAlreadyExists)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
			}
		}

		if err := e.touchReferences(txn, entity); err != nil {
			return err
		}

		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})

	return translate(err)
}

// Get retrieves an entity by ID.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		var err error
		entity, err = e.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (e *Entity[T]) get(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get([]byte(e.prefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var entity T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &entity); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetByIndex retrieves an entity by unique secondary index.
// If the index has a lookup transform, it will be applied to the value before lookup.
func (e *Entity[T]) GetByIndex(ctx context.Context, indexName, value string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	transformedValue := value
	for _, idx := range e.indexes {
		if idx.name == indexName && idx.lookupTransform != nil {
			transformedValue = idx.lookupTransform(value)
			break
		}
	}

	var entity *T
	err := e.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(e.indexKey(indexName, transformedValue))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		entity, err = e.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// Update updates an existing entity.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Update(ctx context.Context, id string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := e.prefix + id

	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = e.store.db.Update(func(txn *badger.Txn) error {
		oldEntity, err := e.get(txn, id)
		if err != nil {
			return err
		}

		if err := e.deleteIndexes(txn, id, oldEntity); err != nil {
			return err
		}

		// Check for new unique index conflicts, ignoring keys the entity already owned.
		for _, idx := range e.indexes {
			oldKeys := make(map[string]bool)
			for _, k := range idx.keyGen(oldEntity) {
				oldKeys[k] = true
			}

			for _, indexKey := range idx.keyGen(entity) {
				if oldKeys[indexKey] {
					continue
				}
				_, err := txn.Get(e.indexKey(idx.name, indexKey))
				if err == nil {
					return fmt.Errorf("index %s conflict on key %s: %w", idx.name, indexKey, ErrAlreadyExists)
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("failed to check index key: %w", err)
				}
			}
		}

		if err := e.touchReferences(txn, entity); err != nil {
			return err
		}

		if err := txn.Set([]byte(key), data); err != nil {
			return fmt.Errorf("failed to set key: %w", err)
		}
		return e.setIndexes(txn, id, entity)
	})

	return translate(err)
}

// Delete deletes an entity by ID after every guard accepts the transaction.
// Returns ErrNotFound if the entity does not exist.
func (e *Entity[T]) Delete(ctx context.Context, id string, guards ...Guard) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := e.store.db.Update(func(txn *badger.Txn) error {
		entity, err := e.get(txn, id)
		if err != nil {
			return err
		}

		for _, guard := range guards {
			if err := guard(txn); err != nil {
				return err
			}
		}

		if err := e.deleteIndexes(txn, id, entity); err != nil {
			return err
		}

		if err := txn.Delete([]byte(e.prefix + id)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		return nil
	})

	return translate(err)
}

// HasGroupMember reports whether any entity has value under the group index.
// Intended for use inside a Guard.
func (e *Entity[T]) HasGroupMember(txn *badger.Txn, name, value string) (bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = e.groupPrefix(name, value)
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return it.Valid(), nil
}

// List returns an iterator over all entities.
func (e *Entity[T]) List(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		e.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				key := string(it.Item().Key())
				if strings.HasPrefix(key[len(e.prefix):], "idx:") {
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
					return nil // Consumer stopped early
				}
			}

			return nil
		})
	}
}

// ListByGroup returns an iterator over the entities sharing value under the
// group index.
func (e *Entity[T]) ListByGroup(ctx context.Context, name, value string) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		e.store.db.View(func(txn *badger.Txn) error {
			ids, err := e.groupIDs(txn, name, value)
			if err != nil {
				yield(nil, err)
				return err
			}

			for _, id := range ids {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				entity, err := e.get(txn, id)
				if errors.Is(err, ErrNotFound) {
					continue
				}
				if !yield(entity, err) || err != nil {
					return err
				}
			}
			return nil
		})
	}
}

// Count returns the number of stored entities without decoding them.
func (e *Entity[T]) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	err := e.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(e.prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if strings.HasPrefix(string(key[len(e.prefix):]), "idx:") {
				continue
			}
			n++
		}
		return nil
	})
	return n, err
}

// CountGroup returns the number of entities sharing value under the group index.
func (e *Entity[T]) CountGroup(ctx context.Context, name, value string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var n int
	err := e.store.db.View(func(txn *badger.Txn) error {
		ids, err := e.groupIDs(txn, name, value)
		n = len(ids)
		return err
	})
	return n, err
}

func (e *Entity[T]) groupIDs(txn *badger.Txn, name, value string) ([]string, error) {
	prefix := e.groupPrefix(name, value)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []string
	for it.Rewind(); it.Valid(); it.Next() {
		ids = append(ids, string(it.Item().Key()[len(prefix):]))
	}
	return ids, nil
}

func (e *Entity[T]) setIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, indexKey := range idx.keyGen(entity) {
			if err := txn.Set(e.indexKey(idx.name, indexKey), []byte(id)); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	for _, grp := range e.groups {
		for _, value := range grp.keyGen(entity) {
			if err := txn.Set(e.groupKey(grp.name, value, id), nil); err != nil {
				return fmt.Errorf("failed to set group key: %w", err)
			}
		}
	}
	return nil
}

func (e *Entity[T]) deleteIndexes(txn *badger.Txn, id string, entity *T) error {
	for _, idx := range e.indexes {
		for _, indexKey := range idx.keyGen(entity) {
			if err := txn.Delete(e.indexKey(idx.name, indexKey)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	for _, grp := range e.groups {
		for _, value := range grp.keyGen(entity) {
			if err := txn.Delete(e.groupKey(grp.name, value, id)); err != nil {
				return fmt.Errorf("failed to delete group key: %w", err)
			}
		}
	}
	return nil
}

// touchReferences verifies that every referenced record exists and rewrites it
// unchanged. Putting the parent in this transaction's write set makes a
// concurrent delete of the parent fail with a conflict instead of leaving a
// dangling reference.
func (e *Entity[T]) touchReferences(txn *badger.Txn, entity *T) error {
	for _, ref := range e.refs {
		seen := make(map[string]bool)
		for _, id := range ref.keyGen(entity) {
			if seen[id] {
				continue
			}
			seen[id] = true

			key := []byte(ref.prefix + id)
			item, err := txn.Get(key)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%s %s: %w", ref.name, id, ErrInvalidReference)
			}
			if err != nil {
				return fmt.Errorf("failed to check %s reference: %w", ref.name, err)
			}

			val, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read %s reference: %w", ref.name, err)
			}
			if err := txn.Set(key, val); err != nil {
				return fmt.Errorf("failed to touch %s reference: %w", ref.name, err)
			}
		}
	}
	return nil
}

// translate maps Badger transaction errors onto store errors.
func translate(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// collect drains an iterator into a slice, stopping at the first error.
func collect[T any](seq iter.Seq2[*T, error]) ([]*T, error) {
	var out []*T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
