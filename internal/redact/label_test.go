package redact

import (
	"image"
	"image/color"
	"testing"
)

func TestFontSize(t *testing.T) {
	tests := []struct {
		name string
		poly Polygon
		want float64
	}{
		{"tall region", Polygon{{80, 60}, {720, 60}, {720, 540}, {80, 540}}, 192},
		{"short region", Polygon{{0, 0}, {100, 0}, {100, 10}, {0, 10}}, MinFontSize},
		{"skewed", Polygon{{0, 10}, {50, 0}, {100, 60}, {20, 110}}, 44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FontSize(tt.poly); got != tt.want {
				t.Errorf("FontSize: got %g, want %g", got, tt.want)
			}
		})
	}
}

func TestLoadFonts_FallsBackToEmbeddedFont(t *testing.T) {
	fonts := LoadFonts("no-such-font-5b8e2c.ttf")
	if fonts.Name() != "Go Regular" {
		t.Errorf("Name: got %q, want Go Regular", fonts.Name())
	}
	face := fonts.Face(24)
	if face == nil {
		t.Fatal("Face returned nil")
	}
	if h := face.Metrics().Height.Ceil(); h < 20 || h > 40 {
		t.Errorf("24px face height: got %d", h)
	}
}

func TestParseLabelStyle(t *testing.T) {
	style, err := ParseLabelStyle("#ffffff", "#101010", 3)
	if err != nil {
		t.Fatalf("ParseLabelStyle failed: %v", err)
	}
	r, g, b, _ := style.Outline.RGBA()
	if r>>8 != 0x10 || g>>8 != 0x10 || b>>8 != 0x10 {
		t.Errorf("outline: got (%d,%d,%d), want 0x10 gray", r>>8, g>>8, b>>8)
	}
	if style.OutlineWidth != 3 {
		t.Errorf("OutlineWidth: got %d, want 3", style.OutlineWidth)
	}

	invalid := []struct{ fill, outline string }{
		{"white", "#000000"},
		{"#FFFFFF", "#12"},
	}
	for _, tt := range invalid {
		if _, err := ParseLabelStyle(tt.fill, tt.outline, 2); err == nil {
			t.Errorf("ParseLabelStyle(%q,%q) should fail", tt.fill, tt.outline)
		}
	}
	if _, err := ParseLabelStyle("#FFFFFF", "#000000", -1); err == nil {
		t.Error("negative outline width should be rejected")
	}
}

func fillGray(img *image.NRGBA) {
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 128, 128, 128, 255
	}
}

func TestDrawLabel_CenteredWithOutline(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 240, 120))
	fillGray(img)

	face := LoadFonts().Face(40)
	DrawLabel(img, face, "HIH", Vertex{120, 60}, DefaultLabelStyle())

	var sumX, sumY, white, black int
	for y := 0; y < 120; y++ {
		for x := 0; x < 240; x++ {
			c := img.NRGBAAt(x, y)
			switch {
			case c.R > 240 && c.G > 240 && c.B > 240:
				sumX += x
				sumY += y
				white++
			case c.R < 15 && c.G < 15 && c.B < 15:
				black++
			}
		}
	}

	if white == 0 {
		t.Fatal("no fill pixels drawn")
	}
	if black == 0 {
		t.Error("no outline pixels drawn")
	}

	cx, cy := sumX/white, sumY/white
	if cx < 114 || cx > 126 || cy < 54 || cy > 66 {
		t.Errorf("label center: got (%d,%d), want near (120,60)", cx, cy)
	}
}

func TestDrawLabel_NoOutline(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 50))
	fillGray(img)

	style := DefaultLabelStyle()
	style.OutlineWidth = 0
	DrawLabel(img, LoadFonts().Face(20), "X", Vertex{50, 25}, style)

	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] < 100 {
			t.Fatal("outline pixels drawn with width 0")
		}
	}
}

func TestDrawLabel_EmptyText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	fillGray(img)
	DrawLabel(img, LoadFonts().Face(12), "", Vertex{10, 10}, DefaultLabelStyle())

	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 128 {
			t.Fatal("empty label modified the image")
		}
	}
}

func TestDrawLabel_CustomColors(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 60))
	fillGray(img)

	style := LabelStyle{Fill: color.RGBA{255, 0, 0, 255}, Outline: color.RGBA{0, 0, 255, 255}, OutlineWidth: 3}
	DrawLabel(img, LoadFonts().Face(30), "M", Vertex{50, 30}, style)

	var red, blue bool
	for y := 0; y < 60; y++ {
		for x := 0; x < 100; x++ {
			c := img.NRGBAAt(x, y)
			if c.R > 240 && c.G < 15 && c.B < 15 {
				red = true
			}
			if c.B > 240 && c.R < 15 && c.G < 15 {
				blue = true
			}
		}
	}
	if !red || !blue {
		t.Errorf("custom colors missing: fill=%v outline=%v", red, blue)
	}
}
