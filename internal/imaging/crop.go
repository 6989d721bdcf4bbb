package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// PreviewResult contains a cropped view of an image region.
type PreviewResult struct {
	// Bounds is the pixel rectangle that was cropped, in source coordinates.
	Bounds image.Rectangle `json:"bounds"`

	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Preview crops r out of img, optionally rescales it and returns it as a
// base64 PNG.
//
// The rectangle is clipped to the image; an empty intersection is an error.
// A scale of 0 or 1 keeps the native size. Previews let a user check what a
// redaction region covers before the destructive write.
func Preview(img image.Image, r image.Rectangle, scale float64) (*PreviewResult, error) {
	bounds := img.Bounds()
	clipped := r.Intersect(bounds)
	if clipped.Empty() {
		return nil, fmt.Errorf("preview region %v outside image bounds %v", r, bounds)
	}

	cropped := imaging.Crop(img, clipped)

	if scale > 0 && scale != 1.0 {
		w := int(float64(clipped.Dx()) * scale)
		h := int(float64(clipped.Dy()) * scale)
		if w < 1 || h < 1 {
			return nil, fmt.Errorf("scale %g collapses a %dx%d region", scale, clipped.Dx(), clipped.Dy())
		}
		cropped = imaging.Resize(cropped, w, h, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Bounds:      clipped,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
