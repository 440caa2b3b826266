package hdrpeak

import "github.com/chewxy/math32"

// ReduceOptions controls the brightness reduction.
type ReduceOptions struct {
	// Workers is the number of row partitions reduced concurrently.
	// Zero uses GOMAXPROCS, one reduces sequentially.
	Workers int
}

// Brightness computes the per-pixel maximum channel value of img and the
// global maximum over all pixels. Any NaN channel makes the pixel brightness
// NaN, and a NaN pixel makes the global maximum NaN.
func Brightness(img *Image, opts ...func(o *ReduceOptions)) *BrightnessMap {
	var opt ReduceOptions
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	bm := &BrightnessMap{
		Width:  img.Width,
		Height: img.Height,
		Values: make([]float32, img.Width*img.Height),
		Max:    math32.Inf(-1),
	}

	spans := splitRows(img.Height, opt.Workers)
	if len(spans) == 0 || img.Channels == 0 {
		return bm
	}

	maxima := make([]float32, len(spans))
	parallelFor(spans, func(part int, s span) {
		m := math32.Inf(-1)
		for y := s.start; y < s.end; y++ {
			row := y * img.Width
			for x := 0; x < img.Width; x++ {
				v := channelMax(img.At(x, y))
				bm.Values[row+x] = v
				m = maxOrNaN(m, v)
			}
		}
		maxima[part] = m
	})

	for _, m := range maxima {
		bm.Max = maxOrNaN(bm.Max, m)
	}
	return bm
}

func channelMax(px []float32) float32 {
	m := px[0]
	for _, v := range px[1:] {
		m = maxOrNaN(m, v)
	}
	return m
}

// maxOrNaN is max with NaN propagation.
func maxOrNaN(a, b float32) float32 {
	if math32.IsNaN(a) {
		return a
	}
	if math32.IsNaN(b) || b > a {
		return b
	}
	return a
}
