// Package library ties a folder of images to the tag/region store, the
// redaction engine and OCR suggestions.
//
// Images are addressed by file name relative to the folder. Names are
// checked before anything touches the disk: path separators, dot segments
// and extensions outside the allow-list are rejected. Redactions on the same
// image are serialized; different images proceed in parallel.
package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	imgio "github.com/ironsheep/image-tagger/internal/imaging"
	"github.com/ironsheep/image-tagger/internal/ocr"
	"github.com/ironsheep/image-tagger/internal/redact"
	"github.com/ironsheep/image-tagger/internal/store"
)

// ErrInvalidName is returned for image names that are not a plain file name
// inside the folder.
var ErrInvalidName = errors.New("invalid image name")

// Library is a folder of images and their stored metadata.
type Library struct {
	root   string
	store  store.Store
	engine *redact.Engine
	cache  *imgio.ImageCache
	ocr    ocr.Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Library.
type Option func(*Library)

// WithOCROptions sets the options used by Suggest.
func WithOCROptions(o ocr.Options) Option {
	return func(l *Library) { l.ocr = o }
}

// New creates a Library over root. The store and engine are owned by the
// caller; Close only closes the store.
func New(root string, s store.Store, e *redact.Engine, opts ...Option) (*Library, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open image folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("image folder %s is not a directory", root)
	}

	l := &Library{
		root:   root,
		store:  s,
		engine: e,
		cache:  imgio.NewImageCache(),
		ocr:    ocr.DefaultOptions(),
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Root returns the image folder.
func (l *Library) Root() string {
	return l.root
}

// Close releases the store.
func (l *Library) Close() error {
	return l.store.Close()
}

// Entry is one image in a listing.
type Entry struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
	Regions   int      `json:"regions"`
	HasBackup bool     `json:"has_backup"`
}

// List returns every allow-listed image in the folder, sorted by name.
// Backups and other files are ignored.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read image folder: %w", err)
	}

	entries := []Entry{}
	for _, d := range dirents {
		if d.IsDir() || !imgio.IsSupported(d.Name()) {
			continue
		}
		name := d.Name()
		tags, err := store.Tags(ctx, l.store, name)
		if err != nil {
			return nil, err
		}
		regions, err := store.Regions(ctx, l.store, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:      name,
			Tags:      tags,
			Regions:   len(regions),
			HasBackup: redact.HasBackup(filepath.Join(l.root, name)),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Resolve maps an image name to its path inside the folder.
//
// The name must be a plain file name with an allow-listed extension. Errors
// wrap ErrInvalidName or imaging.ErrUnsupportedFormat. Resolve does not check
// that the file exists.
func (l *Library) Resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, err := imgio.FormatFromPath(name); err != nil {
		return "", err
	}
	return filepath.Join(l.root, name), nil
}

// existing resolves name and checks the file is present.
func (l *Library) existing(name string) (string, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return "", fmt.Errorf("%w: %s", redact.ErrImageNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat image: %w", err)
	}
	return path, nil
}

// Path returns the location of an existing image, for serving its bytes.
func (l *Library) Path(name string) (string, error) {
	return l.existing(name)
}

// lock returns the mutex that serializes writes to one image.
func (l *Library) lock(name string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &sync.Mutex{}
		l.locks[name] = m
	}
	return m
}

// Redact applies reqs to the named image. When reqs is nil the stored
// regions are used.
func (l *Library) Redact(ctx context.Context, name string, reqs []redact.Request) (*redact.Result, error) {
	path, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs, err = store.Regions(ctx, l.store, name)
		if err != nil {
			return nil, err
		}
	}

	m := l.lock(name)
	m.Lock()
	defer m.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := l.engine.Redact(path, reqs)
	if err != nil {
		return nil, err
	}
	if res.Written {
		l.cache.Evict(path)
	}
	return res, nil
}

// Restore replaces the named image with its backup.
func (l *Library) Restore(ctx context.Context, name string) error {
	path, err := l.Resolve(name)
	if err != nil {
		return err
	}

	m := l.lock(name)
	m.Lock()
	defer m.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.engine.Restore(path); err != nil {
		return err
	}
	l.cache.Evict(path)
	return nil
}

// load decodes an existing image through the cache.
func (l *Library) load(name string) (string, image.Image, error) {
	path, err := l.existing(name)
	if err != nil {
		return "", nil, err
	}
	img, err := l.cache.Load(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", redact.ErrDecode, err)
	}
	return path, img, nil
}

// Suggest runs OCR on the named image and returns the text boxes as
// unlabeled redaction requests.
func (l *Library) Suggest(ctx context.Context, name string) ([]redact.Request, error) {
	path, img, err := l.load(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, err := ocr.DetectImage(path, img, l.ocr)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}
	b := img.Bounds()
	reqs := ocr.Suggest(words, b.Dx(), b.Dy(), l.ocr)
	log.Debug().Str("image", name).Str("engine", string(l.ocr.Engine)).Int("words", len(words)).Int("suggestions", len(reqs)).Msg("OCR suggestions")
	return reqs, nil
}

// Tags returns the tags of the named image.
func (l *Library) Tags(ctx context.Context, name string) ([]string, error) {
	if _, err := l.Resolve(name); err != nil {
		return nil, err
	}
	return store.Tags(ctx, l.store, name)
}

// SetTags replaces the tags of the named image.
func (l *Library) SetTags(ctx context.Context, name string, tags []string) error {
	if _, err := l.existing(name); err != nil {
		return err
	}
	return store.SetTags(ctx, l.store, name, tags)
}

// Regions returns the stored redaction regions of the named image.
func (l *Library) Regions(ctx context.Context, name string) ([]redact.Request, error) {
	if _, err := l.Resolve(name); err != nil {
		return nil, err
	}
	return store.Regions(ctx, l.store, name)
}

// SetRegions replaces the stored regions of the named image. Every request
// must be valid; errors wrap redact.ErrInvalidRequest.
func (l *Library) SetRegions(ctx context.Context, name string, reqs []redact.Request) error {
	if _, err := l.existing(name); err != nil {
		return err
	}
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			return fmt.Errorf("region %d: %w", i, err)
		}
	}
	return store.SetRegions(ctx, l.store, name, reqs)
}

// Info describes one image.
type Info struct {
	Name string `json:"name"`
	*imgio.ImageInfo
	Tags       []string         `json:"tags"`
	Regions    []redact.Request `json:"regions"`
	HasBackup  bool             `json:"has_backup"`
	BlurRadius float64          `json:"blur_radius"`
	LabelFont  string           `json:"label_font"`
}

// Info returns metadata, tags and regions of the named image.
func (l *Library) Info(ctx context.Context, name string) (*Info, error) {
	path, err := l.existing(name)
	if err != nil {
		return nil, err
	}
	meta, err := imgio.LoadImageInfo(l.cache, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", redact.ErrDecode, err)
	}
	tags, err := store.Tags(ctx, l.store, name)
	if err != nil {
		return nil, err
	}
	regions, err := store.Regions(ctx, l.store, name)
	if err != nil {
		return nil, err
	}
	return &Info{
		Name:       name,
		ImageInfo:  meta,
		Tags:       tags,
		Regions:    regions,
		HasBackup:  redact.HasBackup(path),
		BlurRadius: redact.BlurRadius(meta.Width, meta.Height),
		LabelFont:  l.engine.FontName(),
	}, nil
}

// Preview crops the bounding box of req out of the current image, so a
// caller can check what a region covers before redacting it.
func (l *Library) Preview(ctx context.Context, name string, req redact.Request, scale float64) (*imgio.PreviewResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	_, img, err := l.load(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	poly := req.Pixels(b.Dx(), b.Dy())
	return imgio.Preview(img, poly.Bounds().Add(b.Min), scale)
}
