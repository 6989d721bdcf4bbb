package redact

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-tagger/internal/fsutil"
	imgio "github.com/ironsheep/image-tagger/internal/imaging"
)

// Engine applies redaction batches to image files. It holds the font and
// style resources shared by all calls.
type Engine struct {
	fonts       *Fonts
	style       LabelStyle
	jpegQuality int
	background  color.Color
}

// Option configures an Engine.
type Option func(*Engine)

// WithFonts sets the label fonts. Without it New loads DefaultFonts.
func WithFonts(f *Fonts) Option {
	return func(e *Engine) { e.fonts = f }
}

// WithLabelStyle sets label colors and outline width.
func WithLabelStyle(s LabelStyle) Option {
	return func(e *Engine) { e.style = s }
}

// WithJPEGQuality sets the quality for JPEG output (1-100).
func WithJPEGQuality(q int) Option {
	return func(e *Engine) { e.jpegQuality = q }
}

// WithBackground sets the color translucent pixels are flattened onto when
// the output format has no alpha channel.
func WithBackground(c color.Color) Option {
	return func(e *Engine) { e.background = c }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		style:       DefaultLabelStyle(),
		jpegQuality: imgio.DefaultJPEGQuality,
		background:  color.White,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fonts == nil {
		e.fonts = LoadFonts(DefaultFonts...)
	}
	return e
}

// Skipped describes a request that was not applied.
type Skipped struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Result summarizes a redaction batch.
type Result struct {
	Path          string    `json:"path"`
	Applied       int       `json:"applied"`
	Skipped       []Skipped `json:"skipped,omitempty"`
	BackupCreated bool      `json:"backup_created"`
	BackupPath    string    `json:"backup_path"`
	Written       bool      `json:"written"`
}

// Redact blurs and labels every valid request on the image at path, in
// order, and writes the result back in the original format. GIF output
// reuses the source palette and 16-bit sources are written back at 16 bits.
//
// Invalid requests are skipped and listed in the result. When no request is
// valid the image is neither backed up nor rewritten. Errors wrap
// ErrImageNotFound, ErrDecode or ErrEncode (or imaging.ErrUnsupportedFormat
// for extensions outside the allow-list); in every error case the image file
// is left as it was.
func (e *Engine) Redact(path string, reqs []Request) (*Result, error) {
	format, err := imgio.FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path, BackupPath: BackupPath(path)}
	valid := make([]int, 0, len(reqs))
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			log.Warn().Err(err).Str("path", path).Int("request", i).Msg("Skipping redaction request")
			res.Skipped = append(res.Skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		valid = append(valid, i)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	src, err := imgio.DecodeBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if len(valid) == 0 {
		log.Debug().Str("path", path).Msg("No valid redaction requests, image left unchanged")
		return res, nil
	}

	if !format.CanEncode() {
		return nil, fmt.Errorf("%w: %w: cannot encode %s", ErrEncode, imgio.ErrUnsupportedFormat, format)
	}

	created, err := EnsureBackup(path, raw)
	if err != nil {
		return nil, err
	}
	res.BackupCreated = created

	work := imaging.Clone(src)
	var base *image.NRGBA
	if isDeep(src) {
		base = imaging.Clone(work)
	}
	width, height := work.Bounds().Dx(), work.Bounds().Dy()
	radius := BlurRadius(width, height)

	for _, i := range valid {
		req := reqs[i]
		poly := req.Pixels(width, height)
		mask := Rasterize(width, height, poly)
		n := Composite(work, mask, radius)

		if req.Label != "" {
			DrawLabel(work, e.fonts.Face(FontSize(poly)), req.Label, poly.Centroid(), e.style)
		}

		log.Debug().Str("path", path).Int("request", i).Int("pixels", n).Msg("Applied redaction")
		res.Applied++
	}

	var out image.Image = work
	if base != nil {
		out = widen(src, base, work)
	}

	var buf bytes.Buffer
	opts := imgio.EncodeOptions{JPEGQuality: e.jpegQuality, Background: e.background}
	if p, ok := src.(*image.Paletted); ok {
		opts.Palette = p.Palette
	}
	if err := imgio.Encode(&buf, out, format, opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := fsutil.WriteAtomic(path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write redacted image: %w", err)
	}
	res.Written = true

	log.Info().Str("path", path).Int("applied", res.Applied).Int("skipped", len(res.Skipped)).
		Bool("backup_created", created).Msg("Redacted image")
	return res, nil
}

// Restore replaces the image at path with its backup.
func (e *Engine) Restore(path string) error {
	if _, err := imgio.FormatFromPath(path); err != nil {
		return err
	}
	if err := Restore(path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Restored image from backup")
	return nil
}

// FontName returns the font labels are drawn with.
func (e *Engine) FontName() string {
	return e.fonts.Name()
}
