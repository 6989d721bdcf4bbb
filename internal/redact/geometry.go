package redact

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/vector"
)

// VertexCount is the number of vertices every request must carry.
const VertexCount = 4

// Point is a vertex in percent of the image width (X) and height (Y).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Request is one quadrilateral region to blur, with an optional label drawn
// over it. It matches the JSON the UI posts: {"region": [...], "label": "..."}.
type Request struct {
	Region []Point `json:"region"`
	Label  string  `json:"label,omitempty"`
}

// Validate checks the vertex count and that every coordinate is a finite
// percentage. The returned error wraps ErrInvalidRequest.
func (r Request) Validate() error {
	if len(r.Region) != VertexCount {
		return fmt.Errorf("%w: got %d vertices, want %d", ErrInvalidRequest, len(r.Region), VertexCount)
	}
	for i, p := range r.Region {
		if !isPercent(p.X) || !isPercent(p.Y) {
			return fmt.Errorf("%w: vertex %d (%g,%g) outside 0-100", ErrInvalidRequest, i, p.X, p.Y)
		}
	}
	return nil
}

func isPercent(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// Vertex is a point in pixel space.
type Vertex struct {
	X, Y float64
}

// Polygon is a request's quadrilateral in pixel space.
type Polygon [VertexCount]Vertex

// Pixels converts the request to pixel space: x = X*width/100,
// y = Y*height/100. The request must have passed Validate.
func (r Request) Pixels(width, height int) Polygon {
	var p Polygon
	for i, v := range r.Region[:VertexCount] {
		p[i] = Vertex{
			X: v.X * float64(width) / 100,
			Y: v.Y * float64(height) / 100,
		}
	}
	return p
}

// Centroid is the arithmetic mean of the four vertices.
func (p Polygon) Centroid() Vertex {
	var c Vertex
	for _, v := range p {
		c.X += v.X
		c.Y += v.Y
	}
	c.X /= VertexCount
	c.Y /= VertexCount
	return c
}

// Extent returns the axis-aligned bounding box as min and max vertices.
func (p Polygon) Extent() (min, max Vertex) {
	min, max = p[0], p[0]
	for _, v := range p[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
	}
	return min, max
}

// Bounds returns the smallest integer rectangle containing the polygon.
func (p Polygon) Bounds() image.Rectangle {
	min, max := p.Extent()
	return image.Rect(
		int(math.Floor(min.X)), int(math.Floor(min.Y)),
		int(math.Ceil(max.X)), int(math.Ceil(max.Y)),
	)
}

// Rasterize fills the polygon into a binary mask of width x height.
//
// Pixels with any coverage are inside (0xFF), all others are 0, so the
// polygon's edges are inclusive. Zero-area polygons produce an empty mask;
// self-intersecting ones are filled deterministically by accumulated
// coverage.
func Rasterize(width, height int, poly Polygon) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return mask
	}

	z := vector.NewRasterizer(width, height)
	z.MoveTo(float32(poly[0].X), float32(poly[0].Y))
	for _, v := range poly[1:] {
		z.LineTo(float32(v.X), float32(v.Y))
	}
	z.ClosePath()
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	for i, a := range mask.Pix {
		if a != 0 {
			mask.Pix[i] = 0xff
		}
	}
	return mask
}

// MaskArea counts the pixels inside a mask.
func MaskArea(mask *image.Alpha) int {
	n := 0
	for _, a := range mask.Pix {
		if a != 0 {
			n++
		}
	}
	return n
}

// maskBounds returns the tight bounding rectangle of the set pixels, or an
// empty rectangle when the mask is empty.
func maskBounds(mask *image.Alpha) image.Rectangle {
	b := mask.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(b.Min.X, y):mask.PixOffset(b.Max.X, y)]
		for i, a := range row {
			if a == 0 {
				continue
			}
			x := b.Min.X + i
			if x < minX {
				minX = x
			}
			if x >= maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			maxY = y + 1
		}
	}
	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}
	}
	return image.Rect(minX, minY, maxX, maxY)
}
