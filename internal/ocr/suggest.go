package ocr

import (
	"image"

	"github.com/ironsheep/image-tagger/internal/redact"
)

// Suggest converts detected text boxes into redaction requests for an image
// of width x height pixels.
//
// Boxes below opts.MinConfidence are dropped, the rest are grown by
// opts.Padding and clipped to the image. Each request is the box's four
// corners in percent, clockwise from the top-left, with an empty label.
func Suggest(regions []TextRegion, width, height int, opts Options) []redact.Request {
	reqs := []redact.Request{}
	if width <= 0 || height <= 0 {
		return reqs
	}
	bounds := image.Rect(0, 0, width, height)

	for _, r := range regions {
		if r.Confidence < opts.MinConfidence {
			continue
		}
		box := r.Bounds.Rect().Inset(-opts.Padding).Intersect(bounds)
		if box.Empty() {
			continue
		}

		x1 := percent(box.Min.X, width)
		y1 := percent(box.Min.Y, height)
		x2 := percent(box.Max.X, width)
		y2 := percent(box.Max.Y, height)
		reqs = append(reqs, redact.Request{
			Region: []redact.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}},
		})
	}
	return reqs
}

func percent(v, size int) float64 {
	return float64(v) * 100 / float64(size)
}
