package hdrpeak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const exrMagic = 20000630

const (
	exrCompressionNone = 0
	exrCompressionZips = 2
	exrCompressionZip  = 3
)

const (
	exrPixelUint  = 0
	exrPixelHalf  = 1
	exrPixelFloat = 2
)

const (
	exrChanOther = iota
	exrChanY
	exrChanR
	exrChanG
	exrChanB
)

// EXRCompression selects the scanline compression of written OpenEXR files.
type EXRCompression byte

const (
	EXRCompressionNone EXRCompression = exrCompressionNone
	EXRCompressionZip  EXRCompression = exrCompressionZip
)

func (c EXRCompression) String() string {
	switch c {
	case EXRCompressionNone:
		return "none"
	case EXRCompressionZip:
		return "zip"
	default:
		return fmt.Sprintf("compression(%d)", byte(c))
	}
}

// ParseEXRCompression parses "none" or "zip".
func ParseEXRCompression(s string) (EXRCompression, error) {
	switch strings.ToLower(s) {
	case "none":
		return EXRCompressionNone, nil
	case "zip":
		return EXRCompressionZip, nil
	default:
		return 0, fmt.Errorf("unknown OpenEXR compression %q", s)
	}
}

type exrChannel struct {
	name      string
	pixelType int32
	xSampling int32
	ySampling int32
	role      int
	// dest lists the channel indexes in Image.Pix the channel is written to,
	// nil if the channel is skipped.
	dest []int
}

func isEXR(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == exrMagic
}

// DecodeEXR decodes a single-part scanline OpenEXR file into a 3-channel RGB
// image. A luminance-only (Y) file is expanded to gray RGB; alpha and other
// channels are skipped.
func DecodeEXR(data []byte) (*Image, error) {
	r := bytes.NewReader(data)
	magic, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if magic != exrMagic {
		return nil, errors.New("not an OpenEXR file")
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version&0x00000200 != 0 {
		return nil, errors.New("tiled OpenEXR not supported")
	}
	if version&0x00000800 != 0 {
		return nil, errors.New("multipart OpenEXR not supported")
	}
	if version&0x00000400 != 0 {
		return nil, errors.New("deep OpenEXR not supported")
	}

	var channels []exrChannel
	var dataWindow [4]int32
	var hasDataWindow bool
	var compression byte = exrCompressionNone

	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		size, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if size < 0 || int(size) > r.Len() {
			return nil, errors.New("invalid EXR attribute size")
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return nil, errors.New("unexpected channels attribute type")
			}
			ch, err := parseEXRChannels(payload)
			if err != nil {
				return nil, err
			}
			channels = ch
		case "dataWindow":
			if typ != "box2i" {
				return nil, errors.New("unexpected dataWindow attribute type")
			}
			if len(payload) != 16 {
				return nil, errors.New("invalid dataWindow payload")
			}
			dataWindow[0] = int32(binary.LittleEndian.Uint32(payload[0:4]))
			dataWindow[1] = int32(binary.LittleEndian.Uint32(payload[4:8]))
			dataWindow[2] = int32(binary.LittleEndian.Uint32(payload[8:12]))
			dataWindow[3] = int32(binary.LittleEndian.Uint32(payload[12:16]))
			hasDataWindow = true
		case "compression":
			if typ != "compression" || len(payload) < 1 {
				return nil, errors.New("invalid compression attribute")
			}
			compression = payload[0]
		case "tiles":
			return nil, errors.New("tiled OpenEXR not supported")
		}
	}

	if len(channels) == 0 {
		return nil, errors.New("OpenEXR missing channels")
	}
	if !hasDataWindow {
		return nil, errors.New("OpenEXR missing dataWindow")
	}
	if !exrLayout(channels) {
		return nil, errors.New("OpenEXR missing R/G/B or Y channels")
	}
	for _, ch := range channels {
		if ch.xSampling != 1 || ch.ySampling != 1 {
			return nil, errors.New("OpenEXR subsampled channels are not supported")
		}
	}
	if compression != exrCompressionNone && compression != exrCompressionZips && compression != exrCompressionZip {
		return nil, fmt.Errorf("unsupported OpenEXR compression %d", compression)
	}

	width64 := int64(dataWindow[2]) - int64(dataWindow[0]) + 1
	height64 := int64(dataWindow[3]) - int64(dataWindow[1]) + 1
	if width64 <= 0 || height64 <= 0 || width64 > math.MaxInt32 || height64 > math.MaxInt32 {
		return nil, fmt.Errorf("%w: OpenEXR data window %v", ErrInvalidImage, dataWindow)
	}
	width, height := int(width64), int(height64)
	if err := checkDecodeSize(width, height, 3); err != nil {
		return nil, err
	}

	blockLines := exrBlockLines(compression)
	blockCount := (height + blockLines - 1) / blockLines
	if blockCount*8 > r.Len() {
		return nil, errors.New("OpenEXR offset table truncated")
	}
	offsets := make([]uint64, blockCount)
	for i := range offsets {
		v, err := readU64(r)
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}

	img := NewImage(width, height, 3)

	baseY := int(dataWindow[1])
	for block := 0; block < blockCount; block++ {
		if offsets[block] == 0 {
			continue
		}
		if _, err := r.Seek(int64(offsets[block]), io.SeekStart); err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		dataSize, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if dataSize < 0 || int(dataSize) > r.Len() {
			return nil, errors.New("invalid OpenEXR block size")
		}
		raw := make([]byte, dataSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}

		startY := int(y) - baseY
		if startY < 0 || startY >= height {
			return nil, errors.New("OpenEXR scanline out of bounds")
		}
		lines := blockLines
		if startY+lines > height {
			lines = height - startY
		}

		expected := exrExpectedBlockBytes(width, lines, channels)
		unpacked, err := exrDecompress(compression, raw, expected)
		if err != nil {
			return nil, err
		}

		if err := exrDecodeBlock(img, channels, startY, width, lines, unpacked); err != nil {
			return nil, err
		}
	}

	return img, nil
}

func exrBlockLines(compression byte) int {
	if compression == exrCompressionZip {
		return 16
	}
	return 1
}

func parseEXRChannels(data []byte) ([]exrChannel, error) {
	r := bytes.NewReader(data)
	var channels []exrChannel
	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		pixelType, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if pixelType != exrPixelHalf && pixelType != exrPixelFloat && pixelType != exrPixelUint {
			return nil, fmt.Errorf("unsupported OpenEXR pixel type %d", pixelType)
		}
		// pLinear and three reserved bytes.
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return nil, err
		}
		xSampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		ySampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		role := exrChanOther
		switch strings.ToUpper(name) {
		case "R":
			role = exrChanR
		case "G":
			role = exrChanG
		case "B":
			role = exrChanB
		case "Y":
			role = exrChanY
		}
		channels = append(channels, exrChannel{
			name:      name,
			pixelType: pixelType,
			xSampling: xSampling,
			ySampling: ySampling,
			role:      role,
		})
	}
	return channels, nil
}

func exrBytesPerSample(pixelType int32) int {
	switch pixelType {
	case exrPixelHalf:
		return 2
	case exrPixelFloat, exrPixelUint:
		return 4
	}
	return 0
}

func exrExpectedBlockBytes(width, lines int, channels []exrChannel) int {
	total := 0
	for _, ch := range channels {
		total += width * lines * exrBytesPerSample(ch.pixelType)
	}
	return total
}

func exrDecompress(compression byte, data []byte, expected int) ([]byte, error) {
	switch compression {
	case exrCompressionNone:
		if expected > 0 && len(data) != expected {
			return nil, errors.New("unexpected OpenEXR block size")
		}
		return data, nil
	case exrCompressionZips, exrCompressionZip:
		// Blocks that do not shrink are stored uncompressed.
		if len(data) == expected {
			return data, nil
		}
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		// One byte past the expected size is enough to detect a mismatch.
		uncompressed, err := io.ReadAll(io.LimitReader(zr, int64(expected)+1))
		if err != nil {
			return nil, err
		}
		if expected > 0 && len(uncompressed) != expected {
			return nil, errors.New("unexpected OpenEXR decompressed size")
		}
		if len(uncompressed)%2 != 0 {
			return nil, errors.New("invalid OpenEXR ZIP payload size")
		}
		undoPredictor(uncompressed)
		return unshuffleBytes(uncompressed), nil
	default:
		return nil, errors.New("unsupported OpenEXR compression")
	}
}

func undoPredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = byte(int(data[i]) + int(data[i-1]) - 128)
	}
}

func applyPredictor(data []byte) {
	if len(data) == 0 {
		return
	}
	p := data[0]
	for i := 1; i < len(data); i++ {
		d := int(data[i]) - int(p) + (128 + 256)
		p = data[i]
		data[i] = byte(d)
	}
}

func unshuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[2*i] = data[i]
		out[2*i+1] = data[i+n]
	}
	return out
}

func shuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[i] = data[2*i]
		out[i+n] = data[2*i+1]
	}
	return out
}

func exrDecodeBlock(dst *Image, channels []exrChannel, startY, width, lines int, data []byte) error {
	offset := 0
	for row := 0; row < lines; row++ {
		y := startY + row
		for _, ch := range channels {
			bpp := exrBytesPerSample(ch.pixelType)
			if bpp == 0 {
				return errors.New("unsupported OpenEXR channel pixel type")
			}
			lineBytes := width * bpp
			if offset+lineBytes > len(data) {
				return errors.New("OpenEXR block truncated")
			}
			line := data[offset : offset+lineBytes]
			offset += lineBytes

			if ch.dest == nil {
				continue
			}
			exrApplyLine(dst, ch.dest, y, width, ch.pixelType, line)
		}
	}
	return nil
}

func exrApplyLine(dst *Image, dest []int, y, width int, pixelType int32, line []byte) {
	for x := 0; x < width; x++ {
		var v float32
		switch pixelType {
		case exrPixelHalf:
			off := x * 2
			v = halfToFloat32(binary.LittleEndian.Uint16(line[off : off+2]))
		case exrPixelFloat:
			off := x * 4
			v = math.Float32frombits(binary.LittleEndian.Uint32(line[off : off+4]))
		case exrPixelUint:
			off := x * 4
			v = float32(binary.LittleEndian.Uint32(line[off : off+4]))
		}
		off := dst.PixOffset(x, y)
		for _, c := range dest {
			dst.Pix[off+c] = v
		}
	}
}

// exrLayout assigns each channel its place in the decoded RGB image: R, G and
// B map to their own channel, or, if the file has no complete RGB set, Y is
// copied to all three. It reports false if neither is present.
func exrLayout(channels []exrChannel) bool {
	present := map[int]bool{}
	for _, ch := range channels {
		present[ch.role] = true
	}
	hasRGB := present[exrChanR] && present[exrChanG] && present[exrChanB]
	if !hasRGB && !present[exrChanY] {
		return false
	}

	for i := range channels {
		role := channels[i].role
		switch {
		case hasRGB && (role == exrChanR || role == exrChanG || role == exrChanB):
			channels[i].dest = []int{role - exrChanR}
		case !hasRGB && role == exrChanY:
			channels[i].dest = []int{0, 1, 2}
		default:
			channels[i].dest = nil
		}
	}
	return true
}

// exrChannelNames returns the channel names in the alphabetical order OpenEXR
// stores them, and for each the index of the source channel in Image.Pix.
func exrChannelNames(channels int) ([]string, []int, error) {
	switch channels {
	case 1:
		return []string{"Y"}, []int{0}, nil
	case 3:
		return []string{"B", "G", "R"}, []int{2, 1, 0}, nil
	case 4:
		return []string{"A", "B", "G", "R"}, []int{3, 2, 1, 0}, nil
	default:
		return nil, nil, fmt.Errorf("%w: OpenEXR output supports 1, 3 or 4 channels, got %d", ErrUnsupportedFormat, channels)
	}
}

// EncodeEXR encodes img as a single-part scanline OpenEXR file with 32-bit
// float channels, so every value is stored bit-exactly.
func EncodeEXR(img *Image, compression EXRCompression) ([]byte, error) {
	if err := img.validate(); err != nil {
		return nil, err
	}
	if compression != EXRCompressionNone && compression != EXRCompressionZip {
		return nil, fmt.Errorf("%w: OpenEXR compression %s", ErrUnsupportedFormat, compression)
	}
	names, sources, err := exrChannelNames(img.Channels)
	if err != nil {
		return nil, err
	}

	var header bytes.Buffer
	writeU32(&header, exrMagic)
	writeU32(&header, 2)

	var chlist bytes.Buffer
	for _, name := range names {
		chlist.WriteString(name)
		chlist.WriteByte(0)
		writeU32(&chlist, exrPixelFloat)
		chlist.Write([]byte{0, 0, 0, 0}) // pLinear, reserved
		writeU32(&chlist, 1)
		writeU32(&chlist, 1)
	}
	chlist.WriteByte(0)

	box := make([]byte, 16)
	binary.LittleEndian.PutUint32(box[8:12], uint32(img.Width-1))
	binary.LittleEndian.PutUint32(box[12:16], uint32(img.Height-1))

	one := make([]byte, 4)
	binary.LittleEndian.PutUint32(one, math.Float32bits(1))

	writeEXRAttr(&header, "channels", "chlist", chlist.Bytes())
	writeEXRAttr(&header, "compression", "compression", []byte{byte(compression)})
	writeEXRAttr(&header, "dataWindow", "box2i", box)
	writeEXRAttr(&header, "displayWindow", "box2i", box)
	writeEXRAttr(&header, "lineOrder", "lineOrder", []byte{0})
	writeEXRAttr(&header, "pixelAspectRatio", "float", one)
	writeEXRAttr(&header, "screenWindowCenter", "v2f", make([]byte, 8))
	writeEXRAttr(&header, "screenWindowWidth", "float", one)
	header.WriteByte(0)

	blockLines := exrBlockLines(byte(compression))
	blockCount := (img.Height + blockLines - 1) / blockLines

	chunks := make([][]byte, blockCount)
	for block := range chunks {
		startY := block * blockLines
		lines := blockLines
		if startY+lines > img.Height {
			lines = img.Height - startY
		}
		raw := exrEncodeBlock(img, sources, startY, lines)
		if compression == EXRCompressionZip {
			raw, err = exrCompress(raw)
			if err != nil {
				return nil, err
			}
		}
		chunks[block] = raw
	}

	var out bytes.Buffer
	out.Write(header.Bytes())
	offset := uint64(header.Len() + 8*blockCount)
	for _, c := range chunks {
		writeU64(&out, offset)
		offset += uint64(8 + len(c))
	}
	for block, c := range chunks {
		writeU32(&out, uint32(block*blockLines))
		writeU32(&out, uint32(len(c)))
		out.Write(c)
	}
	return out.Bytes(), nil
}

func exrEncodeBlock(img *Image, sources []int, startY, lines int) []byte {
	out := make([]byte, 0, img.Width*lines*len(sources)*4)
	var b [4]byte
	for y := startY; y < startY+lines; y++ {
		for _, c := range sources {
			for x := 0; x < img.Width; x++ {
				binary.LittleEndian.PutUint32(b[:], math.Float32bits(img.At(x, y)[c]))
				out = append(out, b[:]...)
			}
		}
	}
	return out
}

func exrCompress(raw []byte) ([]byte, error) {
	shuffled := shuffleBytes(raw)
	applyPredictor(shuffled)

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(shuffled); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	if buf.Len() >= len(raw) {
		return raw, nil
	}
	return buf.Bytes(), nil
}

func writeEXRAttr(w *bytes.Buffer, name, typ string, payload []byte) {
	w.WriteString(name)
	w.WriteByte(0)
	w.WriteString(typ)
	w.WriteByte(0)
	writeU32(w, uint32(len(payload)))
	w.Write(payload)
}

func readNullString(r *bytes.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readI32(r *bytes.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func writeU32(w *bytes.Buffer, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.Write(buf[:])
}

func writeU64(w *bytes.Buffer, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	w.Write(buf[:])
}

func halfToFloat32(h uint16) float32 {
	sign := uint32(h>>15) & 0x1
	exp := int32(h>>10) & 0x1F
	mant := int32(h & 0x03FF)

	if exp == 0 {
		if mant == 0 {
			return math.Float32frombits(sign << 31)
		}
		for mant&0x0400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x03FF
	} else if exp == 31 {
		if mant == 0 {
			return math.Float32frombits((sign << 31) | 0x7F800000)
		}
		return math.Float32frombits((sign << 31) | 0x7F800000 | (uint32(mant) << 13))
	}

	exp = exp + (127 - 15)
	mant <<= 13
	bits := (sign << 31) | (uint32(exp) << 23) | uint32(mant)
	return math.Float32frombits(bits)
}
