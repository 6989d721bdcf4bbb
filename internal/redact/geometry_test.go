package redact

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		region  []Point
		wantErr bool
	}{
		{"four vertices", []Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}, false},
		{"fractional vertices", []Point{{10.5, 2.25}, {90, 10}, {90, 90}, {10, 90}}, false},
		{"no vertices", nil, true},
		{"three vertices", []Point{{0, 0}, {100, 0}, {100, 100}}, true},
		{"five vertices", []Point{{0, 0}, {50, 0}, {100, 0}, {100, 100}, {0, 100}}, true},
		{"negative x", []Point{{-1, 0}, {100, 0}, {100, 100}, {0, 100}}, true},
		{"y above 100", []Point{{0, 0}, {100, 0}, {100, 100.5}, {0, 100}}, true},
		{"NaN", []Point{{math.NaN(), 0}, {100, 0}, {100, 100}, {0, 100}}, true},
		{"infinity", []Point{{0, math.Inf(1)}, {100, 0}, {100, 100}, {0, 100}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Request{Region: tt.region}.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("Validate: got %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate: unexpected error %v", err)
			}
		})
	}
}

func TestRequest_Pixels(t *testing.T) {
	req := rect(10, 10, 90, 90, "")
	poly := req.Pixels(800, 600)

	want := Polygon{{80, 60}, {720, 60}, {720, 540}, {80, 540}}
	if poly != want {
		t.Errorf("Pixels: got %v, want %v", poly, want)
	}
}

func TestPolygon_Centroid(t *testing.T) {
	poly := Polygon{{80, 60}, {720, 60}, {720, 540}, {80, 540}}
	c := poly.Centroid()
	if c.X != 400 || c.Y != 300 {
		t.Errorf("Centroid: got (%g,%g), want (400,300)", c.X, c.Y)
	}
}

func TestPolygon_Bounds(t *testing.T) {
	poly := Polygon{{10.2, 5.9}, {30.5, 4.1}, {29, 20.01}, {9.99, 18}}
	want := image.Rect(9, 4, 31, 21)
	if got := poly.Bounds(); got != want {
		t.Errorf("Bounds: got %v, want %v", got, want)
	}
}

func TestRasterize_Rectangle(t *testing.T) {
	poly := rect(10, 10, 90, 90, "").Pixels(800, 600)
	mask := Rasterize(800, 600, poly)

	if mask.Bounds() != image.Rect(0, 0, 800, 600) {
		t.Fatalf("mask bounds: got %v, want 800x600", mask.Bounds())
	}

	inside := []image.Point{{80, 60}, {400, 300}, {719, 539}, {100, 500}}
	for _, p := range inside {
		if mask.AlphaAt(p.X, p.Y).A != 0xff {
			t.Errorf("pixel %v should be inside the mask", p)
		}
	}
	outside := []image.Point{{79, 300}, {400, 59}, {720, 300}, {400, 540}, {0, 0}, {799, 599}}
	for _, p := range outside {
		if mask.AlphaAt(p.X, p.Y).A != 0 {
			t.Errorf("pixel %v should be outside the mask", p)
		}
	}

	area := MaskArea(mask)
	if area < 639*479 || area > 641*481 {
		t.Errorf("mask area: got %d, want about %d", area, 640*480)
	}
}

func TestRasterize_IsBinary(t *testing.T) {
	poly := Request{Region: []Point{{3.3, 7.1}, {71.7, 12.2}, {95.5, 88.8}, {20.1, 64.4}}}.Pixels(97, 53)
	mask := Rasterize(97, 53, poly)
	for i, a := range mask.Pix {
		if a != 0 && a != 0xff {
			t.Fatalf("mask pixel %d has non-binary value %d", i, a)
		}
	}
}

func TestRasterize_FullImage(t *testing.T) {
	poly := rect(0, 0, 100, 100, "").Pixels(64, 48)
	mask := Rasterize(64, 48, poly)
	if got := MaskArea(mask); got != 64*48 {
		t.Errorf("full coverage area: got %d, want %d", got, 64*48)
	}
}

func TestRasterize_AreaBoundedByImage(t *testing.T) {
	requests := []Request{
		rect(0, 0, 100, 100, ""),
		{Region: []Point{{0, 0}, {100, 100}, {0, 100}, {100, 0}}},
		{Region: []Point{{50, 0}, {100, 50}, {50, 100}, {0, 50}}},
		rect(99, 99, 100, 100, ""),
	}
	for i, req := range requests {
		mask := Rasterize(120, 80, req.Pixels(120, 80))
		if area := MaskArea(mask); area < 0 || area > 120*80 {
			t.Errorf("request %d: area %d outside [0, %d]", i, area, 120*80)
		}
	}
}

func TestRasterize_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"single point", Request{Region: []Point{{50, 50}, {50, 50}, {50, 50}, {50, 50}}}},
		{"horizontal line", Request{Region: []Point{{10, 50}, {90, 50}, {60, 50}, {20, 50}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := Rasterize(100, 100, tt.req.Pixels(100, 100))
			if got := MaskArea(mask); got != 0 {
				t.Errorf("zero-area polygon produced %d mask pixels", got)
			}
			if !maskBounds(mask).Empty() {
				t.Errorf("maskBounds of empty mask: got %v, want empty", maskBounds(mask))
			}
		})
	}
}

func TestRasterize_SelfIntersectingIsDeterministic(t *testing.T) {
	bowtie := Request{Region: []Point{{10, 10}, {90, 90}, {90, 10}, {10, 90}}}.Pixels(100, 100)

	first := Rasterize(100, 100, bowtie)
	second := Rasterize(100, 100, bowtie)

	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("rasterization differs at byte %d", i)
		}
	}
	area := MaskArea(first)
	if area == 0 || area >= 100*100 {
		t.Errorf("bowtie area: got %d, want between 0 and %d", area, 100*100)
	}
}

func TestRasterize_NonOverlappingOrderIndependent(t *testing.T) {
	a := rect(5, 5, 40, 40, "").Pixels(200, 100)
	b := rect(60, 50, 95, 95, "").Pixels(200, 100)

	areaAB := MaskArea(Rasterize(200, 100, a)) + MaskArea(Rasterize(200, 100, b))
	areaBA := MaskArea(Rasterize(200, 100, b)) + MaskArea(Rasterize(200, 100, a))
	if areaAB != areaBA {
		t.Errorf("mask areas depend on order: %d vs %d", areaAB, areaBA)
	}
}

func TestMaskBounds(t *testing.T) {
	mask := Rasterize(100, 100, rect(20, 30, 50, 60, "").Pixels(100, 100))
	if got := maskBounds(mask); got != image.Rect(20, 30, 50, 60) {
		t.Errorf("maskBounds: got %v, want (20,30)-(50,60)", got)
	}
}
