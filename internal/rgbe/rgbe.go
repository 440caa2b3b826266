// Package rgbe converts between float RGB triplets and the shared-exponent
// RGBE pixel encoding used by Radiance HDR files.
package rgbe

import "github.com/chewxy/math32"

// Pixel is an encoded R, G, B mantissa and shared exponent.
type Pixel [4]byte

// Encode packs an RGB triplet. Negative and NaN channels are stored as zero,
// values below the smallest exponent as black and values above the largest
// exponent are saturated.
func Encode(r, g, b float32) Pixel {
	r, g, b = sanitize(r), sanitize(g), sanitize(b)

	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if max < 1e-32 {
		return Pixel{}
	}
	if math32.IsInf(max, 1) {
		return Pixel{255, 255, 255, 255}
	}

	_, exp := math32.Frexp(max)
	if exp+128 > 255 {
		return Pixel{255, 255, 255, 255}
	}
	if exp+128 < 1 {
		return Pixel{}
	}

	// max = frac * 2^exp, so scaling by 2^(8-exp) maps it into [128, 256).
	f := math32.Ldexp(1, 8-exp)
	return Pixel{mantissa(r * f), mantissa(g * f), mantissa(b * f), byte(exp + 128)}
}

// Decode unpacks a pixel. Decode(Encode(v)) == v for every triplet produced
// by Decode, so decoded images survive a re-encode unchanged.
func Decode(p Pixel) (r, g, b float32) {
	if p[3] == 0 {
		return 0, 0, 0
	}
	f := math32.Ldexp(1.0, int(p[3])-(128+8))
	return float32(p[0]) * f, float32(p[1]) * f, float32(p[2]) * f
}

func sanitize(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func mantissa(v float32) byte {
	if v >= 255 {
		return 255
	}
	return byte(v)
}
