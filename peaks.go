package hdrpeak

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Peak describes one selected pixel of an environment map.
type Peak struct {
	Coord      Coord
	Brightness float32
	Values     []float32
	// Luminance is the relative luminance assuming Rec. 709 primaries.
	Luminance float32
	// Direction is the lat-long environment direction of the pixel.
	Direction mgl32.Vec3
}

// Peaks lists the masked pixels of img in row-major order.
func Peaks(img *Image, bm *BrightnessMap, m *Mask) []Peak {
	peaks := make([]Peak, 0, m.Len())
	for _, c := range m.coords {
		peaks = append(peaks, newPeak(img, bm, c))
	}
	return peaks
}

func newPeak(img *Image, bm *BrightnessMap, c Coord) Peak {
	values := make([]float32, img.Channels)
	copy(values, img.At(c.X, c.Y))
	return Peak{
		Coord:      c,
		Brightness: bm.At(c.X, c.Y),
		Values:     values,
		Luminance:  Luminance(values, GamutSRGB),
		Direction:  Direction(c, img.Width, img.Height),
	}
}

// TopPixels returns up to k pixels in order of decreasing brightness. Equal
// brightness is ordered row-major; NaN pixels are skipped.
func TopPixels(img *Image, bm *BrightnessMap, k int) []Peak {
	if k <= 0 {
		return nil
	}
	idx := make([]int, 0, len(bm.Values))
	for i, v := range bm.Values {
		if !math32.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	slices.SortFunc(idx, func(a, b int) int {
		va, vb := bm.Values[a], bm.Values[b]
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return a - b
		}
	})
	if len(idx) > k {
		idx = idx[:k]
	}

	peaks := make([]Peak, 0, len(idx))
	for _, i := range idx {
		peaks = append(peaks, newPeak(img, bm, Coord{X: i % bm.Width, Y: i / bm.Width}))
	}
	return peaks
}

// Summary describes the distribution of a brightness map.
type Summary struct {
	Count  int // non-NaN pixels
	NaN    int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	P99    float64
}

// Summarize computes brightness statistics, ignoring NaN pixels.
func Summarize(bm *BrightnessMap) Summary {
	vals := make([]float64, 0, len(bm.Values))
	s := Summary{}
	for _, v := range bm.Values {
		if math32.IsNaN(v) {
			s.NaN++
			continue
		}
		vals = append(vals, float64(v))
	}
	s.Count = len(vals)
	if s.Count == 0 {
		return s
	}

	slices.Sort(vals)
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	s.Mean = stat.Mean(vals, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, vals, nil)
	return s
}
