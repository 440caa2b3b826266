package hdrpeak

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/tiff"
)

func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}

// DecodeTIFF decodes an 8/16-bit integer TIFF into a 3-channel image with
// values normalized to [0, 1]. Integer TIFFs carry no HDR range; they are
// accepted so that LDR captures can go through the same pipeline.
//
// Color is read without alpha premultiplication so that translucent pixels
// keep their stored brightness.
func DecodeTIFF(data []byte) (*Image, error) {
	cfg, err := tiff.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := checkDecodeSize(cfg.Width, cfg.Height, 3); err != nil {
		return nil, err
	}

	src, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	if b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		return nil, fmt.Errorf("%w: TIFF bounds %v, header %dx%d", ErrInvalidImage, b, cfg.Width, cfg.Height)
	}

	out := NewImage(cfg.Width, cfg.Height, 3)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := nrgba64At(src, b.Min.X+x, b.Min.Y+y)
			px := out.At(x, y)
			px[0] = float32(c.R) / 0xffff
			px[1] = float32(c.G) / 0xffff
			px[2] = float32(c.B) / 0xffff
		}
	}
	return out, nil
}

func nrgba64At(src image.Image, x, y int) color.NRGBA64 {
	if n, ok := src.(*image.NRGBA64); ok {
		return n.NRGBA64At(x, y)
	}
	return color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
}
