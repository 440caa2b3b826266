package hdrpeak

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDirection(t *testing.T) {
	for _, tc := range []struct {
		c    Coord
		w, h int
		want mgl32.Vec3
	}{
		{c: Coord{X: 1, Y: 1}, w: 3, h: 3, want: mgl32.Vec3{0, 0, 1}},
		{c: Coord{X: 1, Y: 0}, w: 3, h: 3, want: mgl32.Vec3{0, 1, 0}},
		{c: Coord{X: 1, Y: 2}, w: 3, h: 3, want: mgl32.Vec3{0, -1, 0}},
		{c: Coord{X: 0, Y: 2}, w: 5, h: 5, want: mgl32.Vec3{0, 0, -1}},
		{c: Coord{X: 1, Y: 2}, w: 5, h: 5, want: mgl32.Vec3{1, 0, 0}},
		{c: Coord{X: 3, Y: 2}, w: 5, h: 5, want: mgl32.Vec3{-1, 0, 0}},
		{c: Coord{}, w: 1, h: 1, want: mgl32.Vec3{0, 0, 1}},
	} {
		got := Direction(tc.c, tc.w, tc.h)
		if !got.ApproxEqualThreshold(tc.want, 1e-5) {
			t.Errorf("Direction(%s, %d, %d): got %v want %v", tc.c, tc.w, tc.h, got, tc.want)
		}
	}
}

func TestDirectionUnitLength(t *testing.T) {
	const w, h = 17, 9
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if l := Direction(Coord{X: x, Y: y}, w, h).Len(); math32.Abs(l-1) > 1e-5 {
				t.Fatalf("(%d,%d): length %v", x, y, l)
			}
		}
	}
}

func TestLatLongRange(t *testing.T) {
	lat, lon := LatLong(Coord{X: 0, Y: 0}, 8, 4)
	if lat != math32.Pi/2 || lon != math32.Pi {
		t.Fatalf("top-left: got %v, %v", lat, lon)
	}
	lat, lon = LatLong(Coord{X: 7, Y: 3}, 8, 4)
	if lat != -math32.Pi/2 || lon != -math32.Pi {
		t.Fatalf("bottom-right: got %v, %v", lat, lon)
	}
}
