package hdrpeak

import "fmt"

// Composite returns a new image of the same shape as img that is zero
// everywhere except at the masked pixels, where all channels are copied
// from img unchanged.
func Composite(img *Image, m *Mask) (*Image, error) {
	if img.Width != m.Width || img.Height != m.Height {
		return nil, fmt.Errorf("%w: image %dx%d, mask %dx%d", ErrShapeMismatch, img.Width, img.Height, m.Width, m.Height)
	}

	out := NewImage(img.Width, img.Height, img.Channels)
	for _, c := range m.coords {
		i := img.PixOffset(c.X, c.Y)
		copy(out.Pix[i:i+img.Channels], img.Pix[i:i+img.Channels])
	}
	return out, nil
}
