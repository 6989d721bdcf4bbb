package redact

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	"github.com/flopp/go-findfont"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// MinFontSize is the smallest label size in pixels.
	MinFontSize = 12.0

	// fontScale relates label size to the region's bounding-box height.
	fontScale = 0.4
)

// DefaultFonts are the system fonts tried, in order, for labels.
var DefaultFonts = []string{"DejaVuSans-Bold.ttf", "DejaVuSans.ttf", "Arial Bold.ttf", "arialbd.ttf", "Arial.ttf", "arial.ttf"}

// FontSize returns the label size for a region: 0.4 times its pixel
// bounding-box height, never below MinFontSize.
func FontSize(poly Polygon) float64 {
	min, max := poly.Extent()
	return math.Max(MinFontSize, fontScale*(max.Y-min.Y))
}

// Fonts holds the parsed label fonts. It is built once and shared by every
// Redact call of an Engine.
type Fonts struct {
	preferred *opentype.Font
	fallback  *opentype.Font
	name      string
}

// LoadFonts locates and parses the first usable font among names. When none
// can be found or parsed, labels use the embedded Go Regular font. Missing
// fonts are logged at debug level and are never an error.
func LoadFonts(names ...string) *Fonts {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("embedded Go Regular font is invalid: %v", err))
	}
	fonts := &Fonts{fallback: fallback, name: "Go Regular"}

	for _, name := range names {
		path, err := findfont.Find(name)
		if err != nil {
			log.Debug().Str("font", name).Msg("Font not installed")
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Font not readable")
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("Font not parseable")
			continue
		}
		fonts.preferred = f
		fonts.name = name
		break
	}

	if fonts.preferred == nil {
		log.Debug().Msg("No preferred label font available, using built-in Go Regular")
	}
	return fonts
}

// Name returns the font labels are drawn with.
func (f *Fonts) Name() string {
	return f.name
}

// Face returns a new face at size pixels. The preferred font is used when it
// can produce the face, the embedded fallback otherwise. Faces are not safe
// for concurrent use, so each call gets its own.
func (f *Fonts) Face(size float64) font.Face {
	opts := &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone}
	if f.preferred != nil {
		face, err := opentype.NewFace(f.preferred, opts)
		if err == nil {
			return face
		}
		log.Debug().Err(err).Str("font", f.name).Float64("size", size).Msg("Falling back to Go Regular")
	}
	face, err := opentype.NewFace(f.fallback, opts)
	if err != nil {
		panic(fmt.Sprintf("embedded Go Regular font cannot produce a %gpx face: %v", size, err))
	}
	return face
}

// LabelStyle controls how labels are painted.
type LabelStyle struct {
	Fill         color.Color
	Outline      color.Color
	OutlineWidth int
}

// DefaultLabelStyle is white text with a 2px black outline.
func DefaultLabelStyle() LabelStyle {
	return LabelStyle{
		Fill:         color.White,
		Outline:      color.Black,
		OutlineWidth: 2,
	}
}

// ParseLabelStyle builds a LabelStyle from hex colors such as "#FFFFFF".
func ParseLabelStyle(fill, outline string, width int) (LabelStyle, error) {
	fc, err := colorful.Hex(fill)
	if err != nil {
		return LabelStyle{}, fmt.Errorf("invalid label fill color %q: %w", fill, err)
	}
	oc, err := colorful.Hex(outline)
	if err != nil {
		return LabelStyle{}, fmt.Errorf("invalid label outline color %q: %w", outline, err)
	}
	if width < 0 {
		return LabelStyle{}, fmt.Errorf("label outline width must not be negative, got %d", width)
	}
	return LabelStyle{Fill: fc, Outline: oc, OutlineWidth: width}, nil
}

// DrawLabel paints text centered on at, both horizontally and vertically.
//
// The outline is drawn first by stamping the text at every integer offset
// within OutlineWidth, then the fill is drawn on top.
func DrawLabel(dst draw.Image, face font.Face, text string, at Vertex, style LabelStyle) {
	if text == "" {
		return
	}

	d := &font.Drawer{Dst: dst, Face: face}
	advance := d.MeasureString(text)
	m := face.Metrics()

	origin := fixed.Point26_6{
		X: fixed.Int26_6(math.Round(at.X*64)) - advance/2,
		Y: fixed.Int26_6(math.Round(at.Y*64)) + (m.Ascent-m.Descent)/2,
	}

	w := style.OutlineWidth
	if w > 0 {
		d.Src = image.NewUniform(style.Outline)
		for dy := -w; dy <= w; dy++ {
			for dx := -w; dx <= w; dx++ {
				if (dx == 0 && dy == 0) || dx*dx+dy*dy > w*w {
					continue
				}
				d.Dot = origin.Add(fixed.P(dx, dy))
				d.DrawString(text)
			}
		}
	}

	d.Src = image.NewUniform(style.Fill)
	d.Dot = origin
	d.DrawString(text)
}
