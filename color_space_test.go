package hdrpeak

import (
	"math"
	"testing"
)

func TestLuminance(t *testing.T) {
	for _, g := range []Gamut{GamutSRGB, GamutDisplayP3, GamutAdobeRGB} {
		if y := Luminance([]float32{1, 1, 1}, g); math.Abs(float64(y)-1) > 1e-4 {
			t.Errorf("%s: white luminance %v", g, y)
		}
	}
	if y := Luminance([]float32{0, 1, 0}, GamutSRGB); math.Abs(float64(y)-0.7152) > 1e-4 {
		t.Fatalf("green luminance %v", y)
	}
	if y := Luminance([]float32{3.5}, GamutSRGB); y != 3.5 {
		t.Fatalf("single channel luminance %v", y)
	}
}

func TestConvertLinearGamutRoundTrip(t *testing.T) {
	v := rgb{r: 0.2, g: 5, b: 0.7}
	for _, g := range []Gamut{GamutDisplayP3, GamutAdobeRGB} {
		back := convertLinearGamut(convertLinearGamut(v, GamutSRGB, g), g, GamutSRGB)
		for _, d := range []float32{back.r - v.r, back.g - v.g, back.b - v.b} {
			if math.Abs(float64(d)) > 1e-3 {
				t.Fatalf("%s: got %+v want %+v", g, back, v)
			}
		}
	}
}

func TestParseGamut(t *testing.T) {
	for in, want := range map[string]Gamut{
		"srgb":       GamutSRGB,
		"Display-P3": GamutDisplayP3,
		"adobe_rgb":  GamutAdobeRGB,
	} {
		got, err := ParseGamut(in)
		if err != nil || got != want {
			t.Errorf("ParseGamut(%q): got %v, %v", in, got, err)
		}
	}
	if _, err := ParseGamut("xyz"); err == nil {
		t.Fatal("expected error")
	}
}
