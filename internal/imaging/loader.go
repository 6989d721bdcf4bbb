package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decode reads an image from r.
//
// The standard PNG, JPEG and GIF decoders are registered by the imaging
// library, WebP by this package. EXIF orientation is ignored;
// coordinates always refer to the stored pixel grid.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}

// ImageCache keeps decoded images keyed by path, together with the
// modification time and size of the file they were decoded from. A cached
// image is only served while the file on disk still matches, so an image
// rewritten by another process is decoded afresh.
//
// The cache serves read-only operations (metadata, previews, OCR sizing). The
// redaction engine never reads through it; callers that rewrite an image
// should still Evict it to drop the stale copy right away.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/photos/receipt.jpg")
//	if err != nil {
//	    return err
//	}
//	// ... redact /photos/receipt.jpg ...
//	cache.Evict("/photos/receipt.jpg")
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
}

func (e cacheEntry) matches(fi fs.FileInfo) bool {
	return e.size == fi.Size() && e.modTime.Equal(fi.ModTime())
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]cacheEntry)}
}

// Load returns the image at path, decoding it unless a cached copy of the
// same file version exists.
//
// The path must carry an allow-listed extension; other files are rejected
// with ErrUnsupportedFormat without being opened.
func (c *ImageCache) Load(path string) (image.Image, error) {
	img, _, err := c.load(path)
	return img, err
}

func (c *ImageCache) load(path string) (image.Image, fs.FileInfo, error) {
	if _, err := FormatFromPath(path); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok && e.matches(fi) {
		return e.img, fi, nil
	}

	img, err := Decode(f)
	if err != nil {
		return nil, nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{img: img, modTime: fi.ModTime(), size: fi.Size()}
	c.mu.Unlock()
	return img, fi, nil
}

// Len is the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// ImageInfo contains metadata about an image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the allow-listed format derived from the file extension.
	Format Format `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports whether any pixel of the decoded image is not fully
	// opaque.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo returns the metadata of the image at path, decoding it
// through cache.
//
// Color depth follows the decoded Go image type: 16-bit for RGBA64, NRGBA64
// and Gray16, 8-bit otherwise.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	img, fi, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	depth := "8-bit"
	switch img.(type) {
	case *image.RGBA64, *image.NRGBA64, *image.Gray16:
		depth = "16-bit"
	}

	b := img.Bounds()
	return &ImageInfo{
		Width:         b.Dx(),
		Height:        b.Dy(),
		Format:        format,
		ColorDepth:    depth,
		HasAlpha:      HasTransparency(img),
		FileSizeBytes: fi.Size(),
	}, nil
}

// HasTransparency reports whether any pixel of img is not fully opaque.
func HasTransparency(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
