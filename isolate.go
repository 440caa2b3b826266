package hdrpeak

import (
	"fmt"
	"path/filepath"
	"strings"
)

const outputSuffix = "_brightest_pixel_all_channels"

// IsolateOptions controls IsolateBrightest.
type IsolateOptions struct {
	// Workers is passed to the brightness reduction, see ReduceOptions.
	Workers int
	// Save options apply to IsolateBrightestFile output.
	Save []func(o *SaveOptions)
	// OnLoad is called by IsolateBrightestFile after the input is decoded.
	OnLoad   func(img *Image)
	OnResult func(res *IsolateResult)
}

// IsolateResult holds the output image and the intermediate products.
type IsolateResult struct {
	Output     *Image
	Brightness *BrightnessMap
	Mask       *Mask
	Peaks      []Peak
}

// IsolateBrightest returns an image of the same shape as img that keeps only
// the brightest pixel(s), every other pixel set to zero. Brightness is the
// maximum channel value; all pixels matching the global maximum exactly are
// kept. If none match, e.g. because of a NaN value, the output is all zero.
func IsolateBrightest(img *Image, opts ...func(o *IsolateOptions)) (*IsolateResult, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}

	var opt IsolateOptions
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	bm := Brightness(img, func(o *ReduceOptions) {
		o.Workers = opt.Workers
	})
	mask := BrightestMask(bm)
	out, err := Composite(img, mask)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	res := &IsolateResult{
		Output:     out,
		Brightness: bm,
		Mask:       mask,
		Peaks:      Peaks(img, bm, mask),
	}
	if opt.OnResult != nil {
		opt.OnResult(res)
	}
	return res, nil
}

// IsolateBrightestFile loads inPath, isolates its brightest pixel(s) and
// writes the result to outPath. Load and save failures are *IOError; when
// loading fails nothing is written.
func IsolateBrightestFile(inPath, outPath string, opts ...func(o *IsolateOptions)) (*IsolateResult, error) {
	var opt IsolateOptions
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	img, err := LoadImage(inPath)
	if err != nil {
		return nil, err
	}
	if opt.OnLoad != nil {
		opt.OnLoad(img)
	}

	res, err := IsolateBrightest(img, opts...)
	if err != nil {
		return nil, err
	}
	if err := SaveImage(outPath, res.Output, opt.Save...); err != nil {
		return nil, err
	}
	return res, nil
}

// DefaultOutputPath derives the output file name from the input file name,
// "env.hdr" becomes "env_brightest_pixel_all_channels.hdr". An LZ4 suffix is
// kept in place: "env.exr.lz4" becomes "env_brightest_pixel_all_channels.exr.lz4".
func DefaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	stem := strings.TrimSuffix(inPath, ext)
	if strings.EqualFold(ext, lz4Ext) {
		inner := filepath.Ext(stem)
		stem = strings.TrimSuffix(stem, inner)
		ext = inner + ext
	}
	return stem + outputSuffix + ext
}
