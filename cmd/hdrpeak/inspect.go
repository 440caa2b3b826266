package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"github.com/vearutop/hdrpeak"
)

func runInspect(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return errors.New("missing input image")
	}
	inPath := ctx.Args().First()

	img, err := hdrpeak.LoadImage(inPath)
	if err != nil {
		return err
	}
	logger.Infof("loaded %dx%d image with %d channels", img.Width, img.Height, img.Channels)

	bm := hdrpeak.Brightness(img, func(o *hdrpeak.ReduceOptions) {
		o.Workers = flagInt(ctx, "workers")
	})
	mask := hdrpeak.BrightestMask(bm)

	w := ctx.App.Writer
	fmt.Fprintf(w, "%s: %dx%d, %d channels\n\n", inPath, img.Width, img.Height, img.Channels)

	fmt.Fprintf(w, "Brightest pixels (%d):\n", mask.Len())
	writePeaks(w, hdrpeak.Peaks(img, bm, mask))

	fmt.Fprintf(w, "\nTop %d pixels:\n", ctx.Int("top"))
	writePeaks(w, hdrpeak.TopPixels(img, bm, ctx.Int("top")))

	fmt.Fprintln(w, "\nBrightness:")
	writeSummary(w, hdrpeak.Summarize(bm))
	return nil
}

func writePeaks(w io.Writer, peaks []hdrpeak.Peak) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"x", "y", "brightness", "luminance", "values", "direction"})
	for _, p := range peaks {
		table.Append([]string{
			strconv.Itoa(p.Coord.X),
			strconv.Itoa(p.Coord.Y),
			formatFloat(float64(p.Brightness)),
			formatFloat(float64(p.Luminance)),
			formatFloats(p.Values),
			fmt.Sprintf("%.4f %.4f %.4f", p.Direction[0], p.Direction[1], p.Direction[2]),
		})
	}
	table.Render()
}

func writeSummary(w io.Writer, s hdrpeak.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"pixels", "nan", "min", "mean", "median", "p99", "max"})
	table.Append([]string{
		strconv.Itoa(s.Count),
		strconv.Itoa(s.NaN),
		formatFloat(s.Min),
		formatFloat(s.Mean),
		formatFloat(s.Median),
		formatFloat(s.P99),
		formatFloat(s.Max),
	})
	table.Render()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatFloats(vs []float32) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return strings.Join(parts, " ")
}
