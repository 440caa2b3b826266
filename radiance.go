package hdrpeak

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vearutop/hdrpeak/internal/rgbe"
)

const (
	radianceMagic    = "#?RADIANCE"
	radianceMagicAlt = "#?RGBE"
	radianceFormat   = "32-bit_rle_rgbe"

	// New-style RLE is only defined for these scanline widths.
	radianceMinRLEWidth = 8
	radianceMaxRLEWidth = 0x7fff
	radianceMinRun      = 4
	radianceMaxRun      = 127
)

func isRadiance(data []byte) bool {
	return bytes.HasPrefix(data, []byte(radianceMagic)) || bytes.HasPrefix(data, []byte(radianceMagicAlt))
}

// DecodeRadiance decodes a Radiance RGBE (.hdr) file into a 3-channel image.
// Flat and new-style run-length encoded scanlines are supported; only the
// standard "-Y h +X w" orientation is accepted.
func DecodeRadiance(data []byte) (*Image, error) {
	r := bytes.NewReader(data)

	magic, err := readLine(r)
	if err != nil {
		return nil, err
	}
	if magic != radianceMagic && magic != radianceMagicAlt {
		return nil, errors.New("not a Radiance HDR file")
	}

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok && v != radianceFormat {
			return nil, fmt.Errorf("unsupported Radiance pixel format %q", v)
		}
	}

	resolution, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("read resolution: %w", err)
	}
	width, height, err := parseRadianceResolution(resolution)
	if err != nil {
		return nil, err
	}
	if err := checkDecodeSize(width, height, 3); err != nil {
		return nil, err
	}
	if height > r.Len()/radianceMinScanlineBytes(width) {
		return nil, fmt.Errorf("%w: %d bytes cannot hold %d Radiance scanlines of width %d",
			ErrInvalidImage, r.Len(), height, width)
	}

	img := NewImage(width, height, 3)
	scanline := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readRadianceScanline(r, scanline, width); err != nil {
			return nil, fmt.Errorf("scanline %d: %w", y, err)
		}
		row := img.Pix[y*width*3:]
		for x := 0; x < width; x++ {
			p := rgbe.Pixel{scanline[x*4], scanline[x*4+1], scanline[x*4+2], scanline[x*4+3]}
			row[x*3], row[x*3+1], row[x*3+2] = rgbe.Decode(p)
		}
	}
	return img, nil
}

func parseRadianceResolution(line string) (int, int, error) {
	f := strings.Fields(line)
	if len(f) != 4 {
		return 0, 0, fmt.Errorf("invalid Radiance resolution %q", line)
	}
	if f[0] != "-Y" || f[2] != "+X" {
		return 0, 0, fmt.Errorf("unsupported Radiance orientation %q", line)
	}
	height, err := strconv.Atoi(f[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Radiance height: %w", err)
	}
	width, err := strconv.Atoi(f[3])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid Radiance width: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.New("invalid Radiance dimensions")
	}
	return width, height, nil
}

// radianceMinScanlineBytes is the smallest encoding of one scanline: flat
// pixels, or an RLE marker followed by four planes of maximal runs.
func radianceMinScanlineBytes(width int) int {
	if width < radianceMinRLEWidth || width > radianceMaxRLEWidth {
		return width * 4
	}
	return 4 + 4*2*((width+radianceMaxRun-1)/radianceMaxRun)
}

// readRadianceScanline fills dst with width RGBE quadruples.
func readRadianceScanline(r *bytes.Reader, dst []byte, width int) error {
	if width < radianceMinRLEWidth || width > radianceMaxRLEWidth {
		_, err := io.ReadFull(r, dst)
		return err
	}

	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return err
	}
	if head[0] != 2 || head[1] != 2 || head[2]&0x80 != 0 {
		copy(dst, head[:])
		_, err := io.ReadFull(r, dst[4:])
		return err
	}
	if int(head[2])<<8|int(head[3]) != width {
		return errors.New("RLE scanline width mismatch")
	}

	// Components are stored as four separate run-length encoded planes.
	for c := 0; c < 4; c++ {
		for x := 0; x < width; {
			count, err := r.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				n := int(count) - 128
				if x+n > width {
					return errors.New("RLE run overflows scanline")
				}
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				for ; n > 0; n-- {
					dst[x*4+c] = v
					x++
				}
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return errors.New("invalid RLE literal count")
			}
			for ; n > 0; n-- {
				v, err := r.ReadByte()
				if err != nil {
					return err
				}
				dst[x*4+c] = v
				x++
			}
		}
	}
	return nil
}

// EncodeRadiance encodes a 3-channel image as a Radiance RGBE file with
// new-style run-length encoded scanlines where the width allows it.
// Negative channel values cannot be represented and are stored as zero.
func EncodeRadiance(img *Image) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if img.Channels != 3 {
		return nil, fmt.Errorf("%w: Radiance requires 3 channels, got %d", ErrUnsupportedFormat, img.Channels)
	}

	var buf bytes.Buffer
	buf.WriteString(radianceMagic + "\n")
	buf.WriteString("# Made with hdrpeak\n")
	buf.WriteString("FORMAT=" + radianceFormat + "\n\n")
	fmt.Fprintf(&buf, "-Y %d +X %d\n", img.Height, img.Width)

	w := img.Width
	rle := w >= radianceMinRLEWidth && w <= radianceMaxRLEWidth
	scanline := make([]byte, w*4)
	plane := make([]byte, w)
	for y := 0; y < img.Height; y++ {
		row := img.Pix[y*w*3:]
		for x := 0; x < w; x++ {
			p := rgbe.Encode(row[x*3], row[x*3+1], row[x*3+2])
			copy(scanline[x*4:], p[:])
		}
		if !rle {
			buf.Write(scanline)
			continue
		}
		buf.Write([]byte{2, 2, byte(w >> 8), byte(w & 0xff)})
		for c := 0; c < 4; c++ {
			for x := 0; x < w; x++ {
				plane[x] = scanline[x*4+c]
			}
			writeRLEPlane(&buf, plane)
		}
	}
	return buf.Bytes(), nil
}

// writeRLEPlane run-length encodes one component plane. Runs shorter than
// radianceMinRun are emitted as literals.
func writeRLEPlane(buf *bytes.Buffer, data []byte) {
	cur := 0
	for cur < len(data) {
		begRun := cur
		runCount, oldRunCount := 0, 0
		for runCount < radianceMinRun && begRun < len(data) {
			begRun += runCount
			oldRunCount = runCount
			runCount = 1
			for begRun+runCount < len(data) && runCount < radianceMaxRun && data[begRun] == data[begRun+runCount] {
				runCount++
			}
		}

		// A short run directly before the long one.
		if oldRunCount > 1 && oldRunCount == begRun-cur {
			buf.WriteByte(byte(128 + oldRunCount))
			buf.WriteByte(data[cur])
			cur = begRun
		}

		for cur < begRun {
			n := begRun - cur
			if n > 128 {
				n = 128
			}
			buf.WriteByte(byte(n))
			buf.Write(data[cur : cur+n])
			cur += n
		}

		if runCount >= radianceMinRun {
			buf.WriteByte(byte(128 + runCount))
			buf.WriteByte(data[begRun])
			cur += runCount
		}
	}
}

func readLine(r *bytes.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			break
		}
		buf = append(buf, b)
	}
	return strings.TrimRight(string(buf), "\r"), nil
}
