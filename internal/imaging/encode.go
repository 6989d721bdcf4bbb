package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// DefaultJPEGQuality keeps generational loss invisible when an image is
// redacted several times.
const DefaultJPEGQuality = 95

// maxGIFColors is the palette limit of the GIF format.
const maxGIFColors = 256

// EncodeOptions tunes Encode.
type EncodeOptions struct {
	// JPEGQuality is the JPEG quality (1-100). Zero means DefaultJPEGQuality.
	JPEGQuality int

	// Background is painted under translucent pixels when the target format
	// has no alpha channel. Nil means white.
	Background color.Color

	// Palette is the GIF palette, normally the one the source was decoded
	// with, including its transparent entry. Pixels matching an entry keep
	// it exactly; others map to the nearest entry without dithering. Nil
	// builds a palette from the image's own colors when it has at most 256,
	// and falls back to the encoder's default quantizer otherwise.
	Palette color.Palette
}

// Encode writes img to w in the given format.
//
// Formats without alpha are flattened onto opts.Background first; formats
// with alpha keep it. WebP is written lossless so untouched pixels survive.
// Unknown formats return ErrUnsupportedFormat.
func Encode(w io.Writer, img image.Image, format Format, opts EncodeOptions) error {
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var err error
	switch format {
	case FormatJPEG:
		err = imaging.Encode(w, Flatten(img, opts.Background), imaging.JPEG, imaging.JPEGQuality(quality))
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	case FormatGIF:
		err = encodeGIF(w, img, opts.Palette)
	case FormatWebP:
		err = encodeWebP(w, img)
	default:
		return fmt.Errorf("%w: cannot encode %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

func encodeGIF(w io.Writer, img image.Image, pal color.Palette) error {
	if pal == nil {
		pal = ExactPalette(img)
	}
	if pal == nil {
		return imaging.Encode(w, img, imaging.GIF, imaging.GIFNumColors(maxGIFColors))
	}
	return imaging.Encode(w, img, imaging.GIF,
		imaging.GIFNumColors(len(pal)),
		imaging.GIFQuantizer(fixedPalette(pal)),
		imaging.GIFDrawer(draw.Src),
	)
}

// fixedPalette is a quantizer that always answers with the same palette.
type fixedPalette color.Palette

func (p fixedPalette) Quantize(_ color.Palette, _ image.Image) color.Palette {
	return color.Palette(p)
}

// ExactPalette returns the distinct colors of img, or nil when there are more
// than a GIF can hold.
func ExactPalette(img image.Image) color.Palette {
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= maxGIFColors {
		return p.Palette
	}

	seen := make(map[color.NRGBA]struct{})
	var pal color.Palette
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				c = color.NRGBA{}
			}
			if _, ok := seen[c]; ok {
				continue
			}
			if len(pal) == maxGIFColors {
				return nil
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal
}

func encodeWebP(w io.Writer, img image.Image) error {
	opts, err := encoder.NewLosslessEncoderOptions(encoder.PresetDefault, 6)
	if err != nil {
		return err
	}
	return webp.Encode(w, imaging.Clone(img), opts)
}

// Flatten composites img over an opaque background and returns a fully
// opaque copy with the same bounds size. A nil background means white.
func Flatten(img image.Image, background color.Color) *image.NRGBA {
	if background == nil {
		background = color.White
	}
	r, g, b, _ := background.RGBA()
	opaque := color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}

	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), opaque)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
