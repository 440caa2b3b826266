package rgbe

import (
	"math"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	for _, tc := range []struct {
		r, g, b float32
		want    Pixel
	}{
		{r: 0, g: 0, b: 0, want: Pixel{}},
		{r: 1, g: 1, b: 1, want: Pixel{128, 128, 128, 129}},
		{r: 5, g: 2, b: 1, want: Pixel{160, 64, 32, 131}},
		{r: 0.5, g: 0, b: 0, want: Pixel{128, 0, 0, 128}},
		{r: -3, g: 1, b: float32(math.NaN()), want: Pixel{0, 128, 0, 129}},
		{r: 1e-40, g: 0, b: 0, want: Pixel{}},
		{r: float32(math.Inf(1)), g: 0, b: 0, want: Pixel{255, 255, 255, 255}},
		{r: math.MaxFloat32, g: 0, b: 0, want: Pixel{255, 255, 255, 255}},
		{r: 1e38, g: 0, b: 0, want: Pixel{150, 0, 0, 255}},
	} {
		got := Encode(tc.r, tc.g, tc.b)
		if got != tc.want {
			t.Errorf("Encode(%v, %v, %v): got %v want %v", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestDecodeZeroExponent(t *testing.T) {
	r, g, b := Decode(Pixel{10, 20, 30, 0})
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("got %v %v %v", r, g, b)
	}
}

func TestReencodeIsStable(t *testing.T) {
	// Smaller exponents fall below the black threshold.
	for e := 30; e < 256; e += 7 {
		for m := 128; m < 256; m += 5 {
			p := Pixel{byte(m), byte(m / 2), byte(m / 3), byte(e)}
			r, g, b := Decode(p)
			if got := Encode(r, g, b); got != p {
				t.Fatalf("Encode(Decode(%v)) = %v", p, got)
			}
		}
	}
}

func TestEncodeRelativeError(t *testing.T) {
	for _, v := range []float32{0.001, 0.37, 1.5, 3.14159, 1000, 65504, 1e20} {
		r, _, _ := Decode(Encode(v, 0, 0))
		if rel := math.Abs(float64(r-v)) / float64(v); rel > 1.0/128 {
			t.Errorf("%v decoded as %v, relative error %v", v, r, rel)
		}
	}
}
