package redact

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

const (
	// blurFraction scales the blur radius with the shorter image side so
	// that features inside a region are unrecognizable at any resolution.
	blurFraction = 0.06

	// minBlurRadius keeps small images from getting a token blur.
	minBlurRadius = 8.0
)

// BlurRadius is the fixed Gaussian radius used for an image of the given
// size: 6% of the shorter side, at least 8 pixels.
func BlurRadius(width, height int) float64 {
	short := width
	if height < short {
		short = height
	}
	return math.Max(minBlurRadius, blurFraction*float64(short))
}

// blurWindow returns the part of bounds that has to be blurred so that every
// pixel of area gets exactly the value a full-image blur would give it. The
// convolution kernel reaches roughly one radius out; three radii leave a
// generous margin.
func blurWindow(area, bounds image.Rectangle, radius float64) image.Rectangle {
	pad := 3*int(math.Ceil(radius)) + 2
	return area.Inset(-pad).Intersect(bounds)
}

// Composite blurs the current content of dst and copies the blurred pixels
// into dst wherever mask is set. It returns the number of pixels replaced.
//
// Only a padded window around the mask is blurred. Inside the mask the result
// is identical to blurring the whole image, because the window covers the
// full kernel footprint and is clipped only at the image edges, where both
// variants extend the same border pixels.
//
// dst and mask must share bounds starting at (0,0).
func Composite(dst *image.NRGBA, mask *image.Alpha, radius float64) int {
	area := maskBounds(mask)
	if area.Empty() {
		return 0
	}

	window := blurWindow(area, dst.Bounds(), radius)
	blurred := imaging.Clone(blur.Gaussian(imaging.Crop(dst, window), radius))

	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		mrow := mask.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x++ {
			if mask.Pix[mrow+x-area.Min.X] == 0 {
				continue
			}
			d := dst.PixOffset(x, y)
			s := blurred.PixOffset(x-window.Min.X, y-window.Min.Y)
			copy(dst.Pix[d:d+4], blurred.Pix[s:s+4])
			n++
		}
	}
	return n
}
