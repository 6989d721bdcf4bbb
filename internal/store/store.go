// Package store persists tags and redaction regions per image.
//
// Each image is identified by its file name inside the library folder and owns
// a list of records. A record carrying a tag is a tag; a record carrying a
// region is a redaction region with an optional label. Two backends exist:
// JSONFile keeps the legacy data.json layout, Badger keeps one key per image.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ironsheep/image-tagger/internal/redact"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// ErrUnknownBackend is returned by Open for unrecognized backend names.
var ErrUnknownBackend = errors.New("unknown store backend")

// Record is one stored entry for an image.
type Record struct {
	Tag      string         `json:"tag,omitempty"`
	Region   []redact.Point `json:"region,omitempty"`
	Label    string         `json:"label,omitempty"`
	FileName string         `json:"fileName,omitempty"`
}

// IsRegion reports whether the record describes a redaction region.
func (r Record) IsRegion() bool {
	return r.Region != nil
}

// Store is a flat map from image id to its records.
type Store interface {
	// Get returns the records of id, or nil when it has none.
	Get(ctx context.Context, id string) ([]Record, error)

	// Put replaces the records of id. An empty list removes the image.
	Put(ctx context.Context, id string, records []Record) error

	// Keys returns every image id with records, sorted.
	Keys(ctx context.Context) ([]string, error)

	Close() error
}

// Open returns the backend named by backend, rooted at path. For the JSON
// backend path is the data file; for Badger it is a directory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return OpenJSONFile(path)
	case BackendBadger:
		return OpenBadger(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// Tags returns the tags stored for id in insertion order.
func Tags(ctx context.Context, s Store, id string) ([]string, error) {
	recs, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, r := range recs {
		if r.Tag != "" {
			tags = append(tags, r.Tag)
		}
	}
	return tags, nil
}

// Regions returns the redaction requests stored for id in insertion order.
// Records are returned as stored; malformed ones are left for the engine to
// skip.
func Regions(ctx context.Context, s Store, id string) ([]redact.Request, error) {
	recs, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs := []redact.Request{}
	for _, r := range recs {
		if r.IsRegion() {
			reqs = append(reqs, redact.Request{Region: r.Region, Label: r.Label})
		}
	}
	return reqs, nil
}

// SetTags replaces the tags of id and keeps its regions. Duplicate and empty
// tags are dropped.
func SetTags(ctx context.Context, s Store, id string, tags []string) error {
	recs, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(recs)+len(tags))
	for _, r := range recs {
		if r.IsRegion() {
			kept = append(kept, r)
		}
	}

	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		kept = append(kept, Record{Tag: t, FileName: id})
	}
	return s.Put(ctx, id, kept)
}

// SetRegions replaces the regions of id and keeps its tags. Requests without
// vertices cannot be stored and are dropped.
func SetRegions(ctx context.Context, s Store, id string, reqs []redact.Request) error {
	recs, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	kept := make([]Record, 0, len(recs)+len(reqs))
	for _, r := range recs {
		if !r.IsRegion() {
			kept = append(kept, r)
		}
	}
	for _, req := range reqs {
		if len(req.Region) == 0 {
			continue
		}
		kept = append(kept, Record{Region: req.Region, Label: req.Label, FileName: id})
	}
	return s.Put(ctx, id, kept)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
