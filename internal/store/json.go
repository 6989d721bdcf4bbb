package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-tagger/internal/fsutil"
)

// JSONFile stores every image in a single JSON document mapping file names
// to record lists:
//
//	{
//	  "receipt.jpg": [
//	    {"tag": "finance", "fileName": "receipt.jpg"},
//	    {"region": [{"x": 10, "y": 10}, ...], "label": "ACCOUNT", "fileName": "receipt.jpg"}
//	  ]
//	}
//
// The whole document is held in memory and rewritten atomically on every
// change.
type JSONFile struct {
	mu   sync.Mutex
	path string
	data map[string][]Record
}

var _ Store = (*JSONFile)(nil)

// OpenJSONFile loads the document at path. A missing file is an empty store
// and is created on the first write.
func OpenJSONFile(path string) (*JSONFile, error) {
	s := &JSONFile{path: path, data: make(map[string][]Record)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Data file not found, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
		}
	}
	if s.data == nil {
		s.data = make(map[string][]Record)
	}
	return s, nil
}

// Path returns the data file location.
func (s *JSONFile) Path() string {
	return s.path
}

// Get implements Store.
func (s *JSONFile) Get(ctx context.Context, id string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.data[id]
	if recs == nil {
		return nil, nil
	}
	return append([]Record(nil), recs...), nil
}

// Put implements Store.
func (s *JSONFile) Put(ctx context.Context, id string, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[id]
	if len(records) == 0 {
		delete(s.data, id)
	} else {
		s.data[id] = append([]Record(nil), records...)
	}

	if err := s.write(s.data); err != nil {
		if had {
			s.data[id] = prev
		} else {
			delete(s.data, id)
		}
		return err
	}
	return nil
}

// Keys implements Store.
func (s *JSONFile) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.data), nil
}

// Close implements Store. The document is flushed on every Put, so there is
// nothing left to write.
func (s *JSONFile) Close() error {
	return nil
}

// Migrate backfills the fileName back-reference on every record that lacks
// it, using the key the record is stored under. It reports whether anything
// changed; the file is only rewritten when it did.
func (s *JSONFile) Migrate(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	next := make(map[string][]Record, len(s.data))
	for name, recs := range s.data {
		recs = append([]Record(nil), recs...)
		for i := range recs {
			if recs[i].FileName == "" {
				recs[i].FileName = name
				updated++
			}
		}
		next[name] = recs
	}
	if updated == 0 {
		log.Info().Str("path", s.path).Msg("No updates needed")
		return false, nil
	}

	// The backfilled copy replaces the live data only once it is on disk.
	if err := s.write(next); err != nil {
		return false, err
	}
	s.data = next
	log.Info().Str("path", s.path).Int("records", updated).Msg("Backfilled file names")
	return true, nil
}

// write replaces the document on disk with data. Callers hold mu.
func (s *JSONFile) write(data map[string][]Record) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}
	if err := fsutil.WriteAtomic(s.path, append(raw, '\n')); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}
