package ocr

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	// edgeThreshold is the grayscale step between neighbors that counts as an
	// edge.
	edgeThreshold = 30

	// Text has a medium edge density: sparse windows are background, dense
	// ones are texture.
	minEdgeDensity  = 0.05
	maxEdgeDensity  = 0.4
	peakEdgeDensity = 0.2
)

// textWindows are the sliding window sizes, roughly one line of small to
// large print each.
var textWindows = []image.Point{{80, 25}, {100, 30}, {150, 40}, {200, 50}}

// DetectEdgeDensity finds text-like areas without OCR by sliding windows over
// an edge map and scoring each by edge density and by how horizontal its
// edge runs are. Overlapping hits are merged. Regions carry no text and are
// sorted by descending confidence.
//
// It is much less precise than Tesseract but needs no language data.
func DetectEdgeDensity(img image.Image, opts Options) []TextRegion {
	b := img.Bounds()
	m := newEdgeMap(img)

	var candidates []TextRegion
	for _, win := range textWindows {
		if win.X > m.w || win.Y > m.h {
			continue
		}
		area := win.X * win.Y
		for y := 0; y+win.Y <= m.h; y += win.Y / 2 {
			for x := 0; x+win.X <= m.w; x += win.X / 2 {
				r := image.Rect(x, y, x+win.X, y+win.Y)
				density := float64(m.edges.sum(r)) / float64(area)
				if density < minEdgeDensity || density > maxEdgeDensity {
					continue
				}

				confidence := m.horizontality(r) * (1 - math.Abs(density-peakEdgeDensity)/peakEdgeDensity)
				if confidence < opts.MinConfidence {
					continue
				}
				candidates = append(candidates, TextRegion{
					Confidence: math.Round(confidence*1000) / 1000,
					Bounds: Bounds{
						X1: r.Min.X + b.Min.X,
						Y1: r.Min.Y + b.Min.Y,
						X2: r.Max.X + b.Min.X,
						Y2: r.Max.Y + b.Min.Y,
					},
				})
			}
		}
	}

	regions := mergeOverlapping(candidates)
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
	return regions
}

// edgeMap holds summed-area tables of edge pixels and of the starts of
// horizontal and vertical edge runs, so any window is scored in constant
// time.
type edgeMap struct {
	w, h  int
	edges integral
	hRuns integral
	vRuns integral
}

func newEdgeMap(img image.Image) *edgeMap {
	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	lum := func(x, y int) int { return int(gray.Pix[gray.PixOffset(x, y)]) }

	edge := make([]bool, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := lum(x, y)
			if abs(c-lum(x+1, y)) > edgeThreshold || abs(c-lum(x, y+1)) > edgeThreshold {
				edge[y*w+x] = true
			}
		}
	}

	m := &edgeMap{w: w, h: h, edges: newIntegral(w, h), hRuns: newIntegral(w, h), vRuns: newIntegral(w, h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !edge[i] {
				continue
			}
			m.edges.add(x, y)
			if x == 0 || !edge[i-1] {
				m.hRuns.add(x, y)
			}
			if y == 0 || !edge[i-w] {
				m.vRuns.add(x, y)
			}
		}
	}
	m.edges.accumulate()
	m.hRuns.accumulate()
	m.vRuns.accumulate()
	return m
}

// horizontality is the share of horizontal runs among all edge runs in r.
// Runs are counted across the whole image, so one crossing r's left or top
// border is attributed to the window where it starts.
func (m *edgeMap) horizontality(r image.Rectangle) float64 {
	h := m.hRuns.sum(r)
	v := m.vRuns.sum(r)
	if h+v == 0 {
		return 0
	}
	return float64(h) / float64(h+v)
}

// integral is a summed-area table with a zero row and column in front.
type integral struct {
	stride int
	sums   []int
}

func newIntegral(w, h int) integral {
	return integral{stride: w + 1, sums: make([]int, (w+1)*(h+1))}
}

func (t integral) add(x, y int) {
	t.sums[(y+1)*t.stride+x+1]++
}

func (t integral) accumulate() {
	for y := 1; y < len(t.sums)/t.stride; y++ {
		for x := 1; x < t.stride; x++ {
			i := y*t.stride + x
			t.sums[i] += t.sums[i-1] + t.sums[i-t.stride] - t.sums[i-t.stride-1]
		}
	}
}

func (t integral) sum(r image.Rectangle) int {
	at := func(x, y int) int { return t.sums[y*t.stride+x] }
	return at(r.Max.X, r.Max.Y) - at(r.Min.X, r.Max.Y) - at(r.Max.X, r.Min.Y) + at(r.Min.X, r.Min.Y)
}

// mergeOverlapping folds each region into the first earlier one it overlaps,
// keeping the higher confidence.
func mergeOverlapping(regions []TextRegion) []TextRegion {
	merged := make([]TextRegion, 0, len(regions))
	for _, r := range regions {
		folded := false
		for i := range merged {
			a, b := merged[i].Bounds.Rect(), r.Bounds.Rect()
			if !a.Overlaps(b) {
				continue
			}
			u := a.Union(b)
			merged[i].Bounds = Bounds{X1: u.Min.X, Y1: u.Min.Y, X2: u.Max.X, Y2: u.Max.Y}
			merged[i].Confidence = math.Max(merged[i].Confidence, r.Confidence)
			folded = true
			break
		}
		if !folded {
			merged = append(merged, r)
		}
	}
	return merged
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
