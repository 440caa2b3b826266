package hdrpeak

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// PreviewOptions controls the LDR preview rendition.
type PreviewOptions struct {
	// Exposure in stops, applied as a 2^Exposure scale before clamping.
	Exposure float32
	// Width of the preview in pixels, 0 keeps the source size. The height
	// follows the aspect ratio.
	Width         uint
	Interpolation resize.InterpolationFunction
	// Gamut of the source primaries, converted to sRGB before tone mapping.
	Gamut Gamut
}

// Preview tone maps img to an 8-bit sRGB image: linear exposure, clamp to
// [0, 1] and the sRGB transfer function. Single-channel images are rendered
// as gray, channels beyond the third are ignored.
func Preview(img *Image, opts ...func(o *PreviewOptions)) image.Image {
	opt := PreviewOptions{
		Interpolation: resize.Lanczos3,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	scale := exp2f(opt.Exposure)
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			px := img.At(x, y)
			var r, g, b float32
			if len(px) < 3 {
				r = px[0]
				g, b = r, r
			} else {
				v := convertLinearGamut(rgb{r: px[0], g: px[1], b: px[2]}, opt.Gamut, GamutSRGB)
				r, g, b = v.r, v.g, v.b
			}
			out.SetNRGBA(x, y, color.NRGBA{
				R: toByte(r * scale),
				G: toByte(g * scale),
				B: toByte(b * scale),
				A: 0xFF,
			})
		}
	}

	if opt.Width == 0 || int(opt.Width) == img.Width {
		return out
	}
	return resize.Resize(opt.Width, 0, out, opt.Interpolation)
}

func toByte(v float32) uint8 {
	return uint8(srgbOetf(clamp01(v))*255 + 0.5)
}

// SavePreview writes an LDR image, the format follows the extension
// (".png", ".jpg", ".gif", ".tif", ".bmp").
func SavePreview(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}
