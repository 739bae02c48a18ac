package store

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"

	"tunebook/pkg/logger"
)

// Store wraps a Pebble database and exposes one durable, ordered map per
// entity namespace. Records survive process restarts with identical
// contents. Callers must not mutate inside a Scan; collect keys or values
// first, then write.
type Store struct {
	db   *pebble.DB
	path string
}

// Open opens (or creates) a Pebble database at the given path.
func Open(path string) (*Store, error) {
	logger.Info("opening_pebble_db", "path", path)
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return nil, err
	}
	logger.Info("pebble_opened", "path", path)
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	s.db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and usable.
func (s *Store) Ready() bool {
	return s != nil && s.db != nil
}

// Path returns the on-disk location of the database.
func (s *Store) Path() string {
	return s.path
}

// Get returns the record stored under ns+key. The boolean is false when the
// key is absent; absence is never an error.
func (s *Store) Get(ns, key string) ([]byte, bool, error) {
	if s.db == nil {
		return nil, false, fmt.Errorf("store not opened; call store.Open first")
	}
	v, closer, err := s.db.Get([]byte(ns + key))
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, true, nil
}

// Put stores a record under ns+key, overwriting any previous value.
func (s *Store) Put(ns, key string, val []byte) error {
	if s.db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	if err := s.db.Set([]byte(ns+key), val, pebble.Sync); err != nil {
		logger.Error("store_put_failed", "ns", ns, "key", key, "error", err)
		return err
	}
	return nil
}

// Delete removes the record under ns+key. Deleting an absent key is a no-op.
func (s *Store) Delete(ns, key string) error {
	if s.db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	if err := s.db.Delete([]byte(ns+key), pebble.Sync); err != nil {
		logger.Error("store_delete_failed", "ns", ns, "key", key, "error", err)
		return err
	}
	return nil
}

// Scan iterates every record in ns in ascending key order. fn receives the
// key with the namespace prefix stripped and a copy of the value; returning
// false stops the scan early.
func (s *Store) Scan(ns string, fn func(key string, val []byte) (bool, error)) error {
	if s.db == nil {
		return fmt.Errorf("store not opened; call store.Open first")
	}
	prefix := []byte(ns)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		k := string(iter.Key()[len(prefix):])
		v := append([]byte(nil), iter.Value()...)
		cont, err := fn(k, v)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return iter.Error()
}

// Count returns the number of records in ns.
func (s *Store) Count(ns string) (int, error) {
	n := 0
	err := s.Scan(ns, func(string, []byte) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// IsEmpty reports whether ns holds no records. It stops at the first key.
func (s *Store) IsEmpty(ns string) (bool, error) {
	empty := true
	err := s.Scan(ns, func(string, []byte) (bool, error) {
		empty = false
		return false, nil
	})
	return empty, err
}
