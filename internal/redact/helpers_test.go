package redact

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	imgio "github.com/ironsheep/image-tagger/internal/imaging"
)

// createCheckerboard creates an opaque black and white checkerboard with
// square cells of the given size.
func createCheckerboard(width, height, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// writeTestPNG encodes img as PNG into dir/name and returns the path.
func writeTestPNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// readTestImage decodes the file at path into an NRGBA buffer.
func readTestImage(t *testing.T, path string) *image.NRGBA {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	img, err := imgio.DecodeBytes(data)
	if err != nil {
		t.Fatalf("failed to decode %s: %v", path, err)
	}
	return imaging.Clone(img)
}

// rect builds an axis-aligned request from percent corners.
func rect(x1, y1, x2, y2 float64, label string) Request {
	return Request{
		Region: []Point{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}},
		Label:  label,
	}
}

// newTestEngine returns an engine that always draws with the embedded font.
func newTestEngine() *Engine {
	return New(WithFonts(LoadFonts()))
}
