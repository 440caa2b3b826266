package hdrpeak

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Format identifies an HDR raster file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatRadiance
	FormatEXR
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatRadiance:
		return "radiance"
	case FormatEXR:
		return "openexr"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

const lz4Ext = ".lz4"

var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

// maxDecodeSamples bounds the number of float32 values a decoder allocates,
// so a corrupt header cannot request an arbitrarily large image.
var maxDecodeSamples = 1 << 28

// Decompressed LZ4 payloads are limited to the largest decodable raster
// plus room for headers and offset tables.
func maxDecodeBytes() int64 {
	return int64(maxDecodeSamples)*4 + 1<<20
}

// checkDecodeSize rejects dimensions read from a file header before any
// pixel memory is allocated.
func checkDecodeSize(width, height, channels int) error {
	if width <= 0 || height <= 0 || channels <= 0 {
		return fmt.Errorf("%w: dimensions %dx%dx%d", ErrInvalidImage, width, height, channels)
	}
	if width > maxDecodeSamples/height/channels {
		return fmt.Errorf("%w: %dx%dx%d exceeds the decode limit of %d samples",
			ErrInvalidImage, width, height, channels, maxDecodeSamples)
	}
	return nil
}

var lz4Levels = []lz4.CompressionLevel{lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9}

// SaveOptions controls image encoding.
type SaveOptions struct {
	EXRCompression EXRCompression
	// LZ4Level applies to paths ending in ".lz4", from 0 (fast) to 9.
	LZ4Level int
}

// FormatFromPath returns the format implied by the file extension and whether
// the file is wrapped in an LZ4 frame.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	compressed := false
	if ext == lz4Ext {
		compressed = true
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	switch ext {
	case ".hdr", ".pic", ".rgbe":
		return FormatRadiance, compressed
	case ".exr":
		return FormatEXR, compressed
	case ".tif", ".tiff":
		return FormatTIFF, compressed
	default:
		return FormatUnknown, compressed
	}
}

// DetectFormat identifies the format of data by its magic bytes.
func DetectFormat(data []byte) Format {
	switch {
	case isRadiance(data):
		return FormatRadiance
	case isEXR(data):
		return FormatEXR
	case isTIFF(data):
		return FormatTIFF
	default:
		return FormatUnknown
	}
}

// DecodeImage decodes an HDR raster, optionally wrapped in an LZ4 frame.
func DecodeImage(data []byte) (*Image, error) {
	if bytes.HasPrefix(data, lz4Magic) {
		limit := maxDecodeBytes()
		unpacked, err := io.ReadAll(io.LimitReader(lz4.NewReader(bytes.NewReader(data)), limit+1))
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		if int64(len(unpacked)) > limit {
			return nil, fmt.Errorf("%w: lz4 payload exceeds %d bytes", ErrInvalidImage, limit)
		}
		data = unpacked
	}

	var (
		img *Image
		err error
	)
	switch DetectFormat(data) {
	case FormatRadiance:
		img, err = DecodeRadiance(data)
	case FormatEXR:
		img, err = DecodeEXR(data)
	case FormatTIFF:
		img, err = DecodeTIFF(data)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if err := img.validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// LoadImage reads and decodes an HDR raster file. Any failure is returned as
// an *IOError and no image is returned.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	return img, nil
}

// EncodeImage encodes img in the given format.
func EncodeImage(img *Image, format Format, opts ...func(o *SaveOptions)) ([]byte, error) {
	opt := SaveOptions{
		EXRCompression: EXRCompressionZip,
	}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}

	switch format {
	case FormatRadiance:
		return EncodeRadiance(img)
	case FormatEXR:
		return EncodeEXR(img, opt.EXRCompression)
	default:
		return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedFormat, format)
	}
}

// SaveImage encodes img in the format implied by the path extension and
// writes it. A trailing ".lz4" wraps the encoded file in an LZ4 frame.
// Encoding completes before the file is created, so encode errors leave no
// file behind. Any failure is returned as an *IOError.
func SaveImage(path string, img *Image, opts ...func(o *SaveOptions)) error {
	format, compressed := FormatFromPath(path)
	data, err := EncodeImage(img, format, opts...)
	if err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}

	if compressed {
		opt := SaveOptions{}
		for _, applyOpt := range opts {
			applyOpt(&opt)
		}
		data, err = compressLZ4(data, opt.LZ4Level)
		if err != nil {
			return &IOError{Op: "save", Path: path, Err: err}
		}
	}

	if err := os.WriteFile(filepath.Clean(path), data, 0o644); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}

func compressLZ4(data []byte, level int) ([]byte, error) {
	if level < 0 {
		level = 0
	}
	if level >= len(lz4Levels) {
		level = len(lz4Levels) - 1
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return buf.Bytes(), nil
}
