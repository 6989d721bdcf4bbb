package redact

import (
	"image"
	"image/color"
)

// isDeep reports whether img carries 16 bits per channel.
func isDeep(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		return true
	}
	return false
}

// widen returns work at 16 bits per channel. Pixels that still equal base,
// the 8-bit copy of src the batch started from, take their value from src.
// work and base share src's size with a zero origin.
func widen(src image.Image, base, work *image.NRGBA) *image.NRGBA64 {
	b := work.Bounds()
	off := src.Bounds().Min
	out := image.NewNRGBA64(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := work.PixOffset(x, y)
			p, q := work.Pix[i:i+4:i+4], base.Pix[i:i+4:i+4]
			if p[0] == q[0] && p[1] == q[1] && p[2] == q[2] && p[3] == q[3] {
				out.Set(x, y, src.At(off.X+x, off.Y+y))
				continue
			}
			out.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(p[0]) * 0x101,
				G: uint16(p[1]) * 0x101,
				B: uint16(p[2]) * 0x101,
				A: uint16(p[3]) * 0x101,
			})
		}
	}
	return out
}
