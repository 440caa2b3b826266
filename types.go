package hdrpeak

import "fmt"

// Image stores a linear-light HDR raster as interleaved float32 channels.
// The channel vector of pixel (x, y) starts at Pix[(y*Width+x)*Channels].
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []float32
}

// NewImage allocates a zero image of the given shape.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float32, width*height*channels),
	}
}

// PixOffset returns the index of the first channel of pixel (x, y) in Pix.
func (m *Image) PixOffset(x, y int) int {
	return (y*m.Width + x) * m.Channels
}

// At returns the channel vector of pixel (x, y). The slice aliases Pix.
func (m *Image) At(x, y int) []float32 {
	i := m.PixOffset(x, y)
	return m.Pix[i : i+m.Channels : i+m.Channels]
}

// Clone returns a deep copy of the image.
func (m *Image) Clone() *Image {
	out := NewImage(m.Width, m.Height, m.Channels)
	copy(out.Pix, m.Pix)
	return out
}

// SameShape reports whether o has the same dimensions and channel count.
func (m *Image) SameShape(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height && m.Channels == o.Channels
}

func (m *Image) validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if m.Width <= 0 || m.Height <= 0 || m.Channels <= 0 {
		return fmt.Errorf("%w: shape %dx%dx%d", ErrInvalidImage, m.Width, m.Height, m.Channels)
	}
	if len(m.Pix) != m.Width*m.Height*m.Channels {
		return fmt.Errorf("%w: %d values for shape %dx%dx%d", ErrInvalidImage, len(m.Pix), m.Width, m.Height, m.Channels)
	}
	return nil
}

// Coord is a pixel coordinate.
type Coord struct {
	X, Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// BrightnessMap holds the per-pixel maximum channel value of an image.
type BrightnessMap struct {
	Width  int
	Height int
	Values []float32
	// Max is the maximum over Values, NaN if any value is NaN.
	Max float32
}

// At returns the brightness of pixel (x, y).
func (b *BrightnessMap) At(x, y int) float32 {
	return b.Values[y*b.Width+x]
}
