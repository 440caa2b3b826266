package hdrpeak

import "github.com/chewxy/math32"

func exp2f(v float32) float32 { return math32.Exp2(v) }

func srgbOetf(v float32) float32 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math32.Pow(v, 1.0/2.4) - 0.055
}

func clamp01(v float32) float32 {
	if math32.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
