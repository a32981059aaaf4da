// Package lsdata persists the per-source-directory listing state the
// scanners use to decide which remote files are new. State survives
// daemon restarts so a restart does not re-fetch everything a source
// still lists.
//
// The store is backed by BadgerDB with one key per (directory id,
// file name) pair and JSON-encoded values.
package lsdata

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/fetchd-io/fetchd/internal/logger"
)

// Entry records the last observed listing state of one remote file.
type Entry struct {
	// Name is the remote file name, unique within its directory.
	Name string `json:"name"`

	// Size is the remote size at the last listing.
	Size int64 `json:"size"`

	// Mtime is the remote modification time at the last listing.
	Mtime int64 `json:"mtime"`

	// Retrieved marks whether the file was fetched in this state.
	Retrieved bool `json:"retrieved"`

	// SeenAt is when this state was recorded.
	SeenAt time.Time `json:"seen_at"`
}

// Store is the persistent listing-state store. Safe for concurrent use:
// Badger transactions handle storage consistency and a read-write mutex
// keeps the open/close lifecycle race-free.
type Store struct {
	mu sync.RWMutex
	db *badger.DB
}

// Open opens (or creates) the store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ls-data store %s: %w", dir, err)
	}
	logger.Debug("Opened ls-data store at %s", dir)
	return &Store{db: db}, nil
}

// key layout: 'l' + big-endian dir id + name. Big-endian keeps all
// entries of one directory contiguous for prefix scans.
func key(dirID uint32, name string) []byte {
	k := make([]byte, 1+4+len(name))
	k[0] = 'l'
	binary.BigEndian.PutUint32(k[1:5], dirID)
	copy(k[5:], name)
	return k
}

func prefix(dirID uint32) []byte {
	return key(dirID, "")
}

// Put stores the listing state of one file.
func (s *Store) Put(dirID uint32, e *Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode ls-data entry %q: %w", e.Name, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(dirID, e.Name), value)
	})
	if err != nil {
		return fmt.Errorf("store ls-data entry %q: %w", e.Name, err)
	}
	return nil
}

// Get returns the stored state of one file, or nil when unknown.
func (s *Store) Get(dirID uint32, name string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry *Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(dirID, name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var e Entry
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			entry = &e
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load ls-data entry %q: %w", name, err)
	}
	return entry, nil
}

// List returns every stored entry of a directory, in name order.
func (s *Store) List(dirID uint32) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := prefix(dirID)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return err
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list ls-data for dir %d: %w", dirID, err)
	}
	return entries, nil
}

// Delete drops the state of one file.
func (s *Store) Delete(dirID uint32, name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(dirID, name))
	})
	if err != nil {
		return fmt.Errorf("delete ls-data entry %q: %w", name, err)
	}
	return nil
}

// Prune removes every entry of the directory not seen since cutoff,
// returning how many were dropped. Run when a source directory is
// reconfigured or removed.
func (s *Store) Prune(dirID uint32, cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stale []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := prefix(dirID)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return err
				}
				if e.SeenAt.Before(cutoff) {
					stale = append(stale, e.Name)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan ls-data for dir %d: %w", dirID, err)
	}

	if len(stale) > 0 {
		err = s.db.Update(func(txn *badger.Txn) error {
			for _, name := range stale {
				if err := txn.Delete(key(dirID, name)); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("prune ls-data for dir %d: %w", dirID, err)
		}
	}
	if len(stale) > 0 {
		logger.Debug("Pruned %d stale ls-data entries for dir %d", len(stale), dirID)
	}
	return len(stale), nil
}

// Close shuts the store down.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
