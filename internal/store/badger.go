package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "img:"

// Badger stores each image's records as one JSON value under "img:<id>".
type Badger struct {
	db *badger.DB
}

var _ Store = (*Badger)(nil)

// OpenBadger opens or creates a Badger database in dir.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &Badger{db: db}, nil
}

// Get implements Store.
func (s *Badger) Get(ctx context.Context, id string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records for %s: %w", id, err)
	}

	var recs []Record
	if err := json.Unmarshal(value, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode records for %s: %w", id, err)
	}
	return recs, nil
}

// Put implements Store.
func (s *Badger) Put(ctx context.Context, id string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := []byte(keyPrefix + id)

	if len(records) == 0 {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			return fmt.Errorf("failed to delete records for %s: %w", id, err)
		}
		return nil
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode records for %s: %w", id, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to write records for %s: %w", id, err)
	}
	return nil
}

// Keys implements Store.
func (s *Badger) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keys := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Import copies every image of src into s, replacing existing entries.
func (s *Badger) Import(ctx context.Context, src Store) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range keys {
		recs, err := src.Get(ctx, id)
		if err != nil {
			return i, err
		}
		if err := s.Put(ctx, id, recs); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

// Close implements Store.
func (s *Badger) Close() error {
	return s.db.Close()
}
