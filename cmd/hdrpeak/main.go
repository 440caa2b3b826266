package main

import (
	"os"

	"github.com/urfave/cli"
	"github.com/vearutop/hdrpeak/internal/log"
)

var logger = log.New("hdrpeak")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "hdrpeak"
	app.Usage = "isolate the brightest pixels of HDR environment maps"
	app.Version = "0.1.0"
	app.Flags = append([]cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.BoolFlag{
			Name:  "q",
			Usage: "only log errors",
		},
	}, isolateFlags()...)
	app.Before = setupLogging
	app.Action = runIsolate
	app.Commands = []cli.Command{
		{
			Name:  "isolate",
			Usage: "keep only the brightest pixel(s) of an HDR image",
			Description: `
Compute the brightness of every pixel as the maximum of its channels and
write an image of the same shape that is zero everywhere except at the
pixel(s) matching the global maximum, where all channels are copied
unchanged. Ties are kept.

This is also the default action when no command is given.`,
			ArgsUsage: "[input.hdr]",
			Flags:     isolateFlags(),
			Action:    runIsolate,
		},
		{
			Name:      "inspect",
			Usage:     "report the brightest pixels and brightness statistics",
			ArgsUsage: "input.hdr",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "top, k",
					Value: 5,
					Usage: "number of brightest pixels to list",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "row partitions reduced concurrently, 0 uses all CPUs",
				},
			},
			Action: runInspect,
		},
		{
			Name:      "preview",
			Usage:     "render a tone mapped LDR preview of an HDR image",
			ArgsUsage: "[input.hdr]",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "in, i",
					Usage: "input HDR image",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "preview.png",
					Usage: "output image, format follows the extension",
				},
				cli.IntFlag{
					Name:  "width, w",
					Usage: "preview width in pixels, 0 keeps the source size",
				},
				cli.Float64Flag{
					Name:  "exposure, e",
					Usage: "exposure adjustment in stops",
				},
				cli.StringFlag{
					Name:  "gamut",
					Value: "srgb",
					Usage: "primaries of the input: srgb, display-p3 or adobe-rgb",
				},
			},
			Action: runPreview,
		},
	}
	return app
}

func setupLogging(ctx *cli.Context) error {
	sink := ctx.App.ErrWriter
	if sink == nil {
		sink = os.Stderr
	}
	log.SetSink(sink)

	if ctx.GlobalBool("q") {
		log.SetLevel(log.Error)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}

// inputPath prefers the --in flag over the first positional argument.
func inputPath(ctx *cli.Context, fallback string) string {
	if in := flagString(ctx, "in"); in != "" {
		return in
	}
	if ctx.NArg() > 0 {
		return ctx.Args().First()
	}
	return fallback
}

// flagString reads a flag of the current command, falling back to the
// same flag given before the command name.
func flagString(ctx *cli.Context, name string) string {
	if !ctx.IsSet(name) && ctx.GlobalIsSet(name) {
		return ctx.GlobalString(name)
	}
	return ctx.String(name)
}

func flagInt(ctx *cli.Context, name string) int {
	if !ctx.IsSet(name) && ctx.GlobalIsSet(name) {
		return ctx.GlobalInt(name)
	}
	return ctx.Int(name)
}
