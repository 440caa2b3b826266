package main

import (
	"fmt"

	"github.com/urfave/cli"
	"github.com/vearutop/hdrpeak"
)

const defaultInput = "quarry_03_1k.hdr"

func isolateFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "in, i",
			Usage: "input HDR image (.hdr, .exr, .tif, optionally .lz4), default " + defaultInput,
		},
		cli.StringFlag{
			Name:  "out, o",
			Usage: "output HDR image (.hdr or .exr, optionally .lz4), derived from the input name if empty",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "row partitions reduced concurrently, 0 uses all CPUs",
		},
		cli.StringFlag{
			Name:  "exr-compression",
			Value: "zip",
			Usage: "OpenEXR output compression: none or zip",
		},
		cli.IntFlag{
			Name:  "lz4-level",
			Usage: "LZ4 level from 0 (fast) to 9 for .lz4 outputs",
		},
	}
}

func runIsolate(ctx *cli.Context) error {
	inPath := inputPath(ctx, defaultInput)
	outPath := flagString(ctx, "out")
	if outPath == "" {
		outPath = hdrpeak.DefaultOutputPath(inPath)
	}

	compression, err := hdrpeak.ParseEXRCompression(flagString(ctx, "exr-compression"))
	if err != nil {
		return err
	}
	lz4Level := flagInt(ctx, "lz4-level")

	logger.Infof("loading %s", inPath)
	_, err = hdrpeak.IsolateBrightestFile(inPath, outPath, func(o *hdrpeak.IsolateOptions) {
		o.Workers = flagInt(ctx, "workers")
		o.Save = append(o.Save, func(so *hdrpeak.SaveOptions) {
			so.EXRCompression = compression
			so.LZ4Level = lz4Level
		})
		o.OnLoad = func(img *hdrpeak.Image) {
			logger.Infof("loaded %dx%d image with %d channels", img.Width, img.Height, img.Channels)
		}
		o.OnResult = func(res *hdrpeak.IsolateResult) {
			if res.Mask.Empty() {
				logger.Warningf("no pixel equals the maximum brightness %v, output is all zero", res.Brightness.Max)
				return
			}
			logger.Infof("maximum brightness %v at %d pixel(s)", res.Brightness.Max, res.Mask.Len())
			for _, p := range res.Peaks {
				logger.Debugf("peak %s values %v direction %v", p.Coord, p.Values, p.Direction)
			}
		}
	})
	if err != nil {
		return err
	}

	logger.Noticef("wrote %s", outPath)
	fmt.Fprintln(ctx.App.Writer, outPath)
	return nil
}
