package hdrpeak_test

import (
	"fmt"

	"github.com/vearutop/hdrpeak"
)

func ExampleIsolateBrightest() {
	img := hdrpeak.NewImage(2, 2, 3)
	copy(img.Pix, []float32{
		1, 0, 0, 0, 5, 0,
		0, 0, 2, 0, 0, 0,
	})

	res, err := hdrpeak.IsolateBrightest(img)
	if err != nil {
		return
	}
	fmt.Println(res.Brightness.Max, res.Mask.Coords(), res.Output.Pix)

	// Output:
	// 5 [(1,0)] [0 0 0 0 5 0 0 0 0 0 0 0]
}

func ExampleIsolateBrightestFile() {
	in := "quarry_03_1k.hdr"
	_, _ = hdrpeak.IsolateBrightestFile(in, hdrpeak.DefaultOutputPath(in), func(o *hdrpeak.IsolateOptions) {
		o.Save = append(o.Save, func(so *hdrpeak.SaveOptions) {
			so.EXRCompression = hdrpeak.EXRCompressionZip
		})
	})
}

func ExampleTopPixels() {
	img := hdrpeak.NewImage(3, 1, 1)
	copy(img.Pix, []float32{2, 9, 4})

	bm := hdrpeak.Brightness(img)
	for _, p := range hdrpeak.TopPixels(img, bm, 2) {
		fmt.Println(p.Coord, p.Brightness)
	}

	// Output:
	// (1,0) 9
	// (2,0) 4
}
