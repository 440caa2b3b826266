package hdrpeak

import (
	"math"
	"testing"
)

func TestTopPixels(t *testing.T) {
	nan := float32(math.NaN())
	img := imageFrom(3, 2, 1,
		3, nan, 7,
		7, 1, 2,
	)
	bm := Brightness(img)

	top := TopPixels(img, bm, 4)
	want := []Coord{{X: 2, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 0}, {X: 2, Y: 1}}
	if len(top) != len(want) {
		t.Fatalf("got %d pixels want %d", len(top), len(want))
	}
	for i, p := range top {
		if p.Coord != want[i] {
			t.Fatalf("rank %d: got %s want %s", i, p.Coord, want[i])
		}
		if p.Brightness != bm.At(p.Coord.X, p.Coord.Y) || p.Values[0] != p.Brightness {
			t.Fatalf("rank %d: inconsistent peak %+v", i, p)
		}
	}

	if got := TopPixels(img, bm, 100); len(got) != 5 {
		t.Fatalf("k > pixels: got %d want 5 non-NaN pixels", len(got))
	}
	if got := TopPixels(img, bm, 0); got != nil {
		t.Fatalf("k = 0: got %v", got)
	}
}

func TestPeaksCopyValues(t *testing.T) {
	img := imageFrom(2, 1, 3, 1, 2, 3, 0, 0, 0)
	bm := Brightness(img)
	peaks := Peaks(img, bm, BrightestMask(bm))
	if len(peaks) != 1 {
		t.Fatalf("got %d peaks", len(peaks))
	}

	peaks[0].Values[0] = 100
	if img.Pix[0] != 1 {
		t.Fatal("peak values alias the image")
	}
	if peaks[0].Brightness != 3 {
		t.Fatalf("brightness: got %v", peaks[0].Brightness)
	}
}

func TestSummarize(t *testing.T) {
	nan := float32(math.NaN())
	bm := Brightness(imageFrom(5, 1, 1, 4, 1, nan, 3, 2))

	s := Summarize(bm)
	if s.Count != 4 || s.NaN != 1 {
		t.Fatalf("counts: %+v", s)
	}
	if s.Min != 1 || s.Max != 4 || s.Mean != 2.5 {
		t.Fatalf("min/max/mean: %+v", s)
	}
	if s.Median != 2 || s.P99 != 4 {
		t.Fatalf("quantiles: %+v", s)
	}
}

func TestSummarizeAllNaN(t *testing.T) {
	nan := float32(math.NaN())
	s := Summarize(Brightness(imageFrom(2, 1, 1, nan, nan)))
	if s.Count != 0 || s.NaN != 2 || s.Max != 0 {
		t.Fatalf("got %+v", s)
	}
}
