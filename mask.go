package hdrpeak

// Mask is a set of pixel coordinates within a Width x Height grid.
type Mask struct {
	Width  int
	Height int

	set    []bool
	coords []Coord
}

// BuildMask selects every pixel whose brightness equals threshold exactly.
// No tolerance is applied, so ties are kept and near-maximal pixels are not.
// The mask is empty if no pixel matches, e.g. for a NaN threshold.
func BuildMask(bm *BrightnessMap, threshold float32) *Mask {
	m := &Mask{
		Width:  bm.Width,
		Height: bm.Height,
		set:    make([]bool, len(bm.Values)),
	}
	for i, v := range bm.Values {
		if v == threshold {
			m.set[i] = true
			m.coords = append(m.coords, Coord{X: i % bm.Width, Y: i / bm.Width})
		}
	}
	return m
}

// BrightestMask selects the pixels whose brightness equals the global maximum.
func BrightestMask(bm *BrightnessMap) *Mask {
	return BuildMask(bm, bm.Max)
}

// Contains reports whether pixel (x, y) is in the mask.
func (m *Mask) Contains(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.set[y*m.Width+x]
}

// Len returns the number of selected pixels.
func (m *Mask) Len() int {
	return len(m.coords)
}

// Empty reports whether no pixel is selected.
func (m *Mask) Empty() bool {
	return len(m.coords) == 0
}

// Coords returns the selected coordinates in row-major order.
func (m *Mask) Coords() []Coord {
	out := make([]Coord, len(m.coords))
	copy(out, m.coords)
	return out
}
