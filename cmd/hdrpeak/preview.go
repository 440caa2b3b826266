package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli"
	"github.com/vearutop/hdrpeak"
)

func runPreview(ctx *cli.Context) error {
	inPath := inputPath(ctx, "")
	if inPath == "" {
		return errors.New("missing input image")
	}
	width := ctx.Int("width")
	if width < 0 {
		return fmt.Errorf("invalid preview width %d", width)
	}

	gamut, err := hdrpeak.ParseGamut(ctx.String("gamut"))
	if err != nil {
		return err
	}

	img, err := hdrpeak.LoadImage(inPath)
	if err != nil {
		return err
	}

	preview := hdrpeak.Preview(img, func(o *hdrpeak.PreviewOptions) {
		o.Exposure = float32(ctx.Float64("exposure"))
		o.Width = uint(width)
		o.Gamut = gamut
	})
	outPath := ctx.String("out")
	if err := hdrpeak.SavePreview(outPath, preview); err != nil {
		return err
	}
	logger.Infof("preview %dx%d written", preview.Bounds().Dx(), preview.Bounds().Dy())

	fmt.Fprintln(ctx.App.Writer, outPath)
	return nil
}
