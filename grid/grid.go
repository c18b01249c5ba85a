package grid

// FromMask builds the uniform Grid2D of the mask's unmasked pixel
// centres at sub-sampling sub. For sub > 1 each pixel contributes
// sub×sub sub-coordinates spaced uniformly inside the pixel, row-major
// within the pixel.
//
// Complexity: O(Len×sub²) time and memory.
func FromMask(m *Mask2D, sub int) (*Grid2D, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyMask
	}
	if sub < 1 {
		return nil, ErrBadSubSize
	}
	stepY := m.pixelScales[0] / float64(sub)
	stepX := m.pixelScales[1] / float64(sub)
	half := (float64(sub) - 1) / 2

	coords := make([][2]float64, 0, m.Len()*sub*sub)
	for s := 0; s < m.Len(); s++ {
		row, col := m.NativePixel(s)
		cy, cx := m.Centre(row, col)
		for a := 0; a < sub; a++ {
			for b := 0; b < sub; b++ {
				y := cy + (half-float64(a))*stepY
				x := cx + (float64(b)-half)*stepX
				coords = append(coords, [2]float64{y, x})
			}
		}
	}

	return &Grid2D{mask: m, sub: sub, coords: coords}, nil
}

// FromCoords wraps explicit slim coordinates over a mask at a given
// sub-size. Used by Traced and by callers supplying externally computed
// (already deflected) grids. The coordinate slice is not copied; callers
// must not mutate it afterwards.
func FromCoords(m *Mask2D, sub int, coords [][2]float64) (*Grid2D, error) {
	if m == nil || m.Len() == 0 {
		return nil, ErrEmptyMask
	}
	if sub < 1 {
		return nil, ErrBadSubSize
	}
	if len(coords) != m.Len()*sub*sub {
		return nil, ErrShapeMismatch
	}

	return &Grid2D{mask: m, sub: sub, coords: coords}, nil
}

// Mask returns the mask the grid was built over.
func (g *Grid2D) Mask() *Mask2D { return g.mask }

// Sub returns the sub-sampling size S.
func (g *Grid2D) Sub() int { return g.sub }

// Len returns the number of (sub-)coordinates in slim layout.
func (g *Grid2D) Len() int { return len(g.coords) }

// Pixels returns the number of unmasked image pixels (Len / S²).
func (g *Grid2D) Pixels() int { return g.mask.Len() }

// At returns the i-th slim (y, x) coordinate.
func (g *Grid2D) At(i int) (y, x float64) {
	return g.coords[i][0], g.coords[i][1]
}

// Coords exposes the slim coordinate slice. Read-only by contract.
func (g *Grid2D) Coords() [][2]float64 { return g.coords }

// PixelIndex returns the image pixel (slim, pre-sub-sampling) that
// sub-coordinate i belongs to.
func (g *Grid2D) PixelIndex(i int) int { return i / (g.sub * g.sub) }

// Traced returns the source-plane image of the grid: each coordinate
// minus its deflection angle. deflections must hold one (dy, dx) vector
// per slim coordinate. Traced grids are recomputed per trial mass model;
// the receiver is left untouched.
//
// Complexity: O(Len).
func (g *Grid2D) Traced(deflections [][2]float64) (*Grid2D, error) {
	if len(deflections) != len(g.coords) {
		return nil, ErrShapeMismatch
	}
	out := make([][2]float64, len(g.coords))
	for i, c := range g.coords {
		out[i] = [2]float64{c[0] - deflections[i][0], c[1] - deflections[i][1]}
	}

	return &Grid2D{mask: g.mask, sub: g.sub, coords: out}, nil
}

// BinAverage bins a per-sub-coordinate vector down to one value per
// image pixel by averaging the S² sub-values of each pixel.
//
// Complexity: O(Len).
func (g *Grid2D) BinAverage(subValues []float64) ([]float64, error) {
	if len(subValues) != len(g.coords) {
		return nil, ErrShapeMismatch
	}
	n := g.sub * g.sub
	inv := 1.0 / float64(n)
	out := make([]float64, g.Pixels())
	for i, v := range subValues {
		out[i/n] += v * inv
	}

	return out, nil
}

// BinnedCoords bins the grid's sub-coordinates down to one mean (y, x)
// per image pixel. For sub == 1 this is a copy of the coordinates.
//
// Complexity: O(Len).
func (g *Grid2D) BinnedCoords() [][2]float64 {
	n := g.sub * g.sub
	inv := 1.0 / float64(n)
	out := make([][2]float64, g.Pixels())
	for i, c := range g.coords {
		p := i / n
		out[p][0] += c[0] * inv
		out[p][1] += c[1] * inv
	}

	return out
}

// Extent returns the bounding box (yMin, yMax, xMin, xMax) of the
// grid's coordinates. Used to size rectangular source-plane meshes.
//
// Complexity: O(Len).
func (g *Grid2D) Extent() (yMin, yMax, xMin, xMax float64) {
	yMin, yMax = g.coords[0][0], g.coords[0][0]
	xMin, xMax = g.coords[0][1], g.coords[0][1]
	for _, c := range g.coords[1:] {
		if c[0] < yMin {
			yMin = c[0]
		}
		if c[0] > yMax {
			yMax = c[0]
		}
		if c[1] < xMin {
			xMin = c[1]
		}
		if c[1] > xMax {
			xMax = c[1]
		}
	}

	return yMin, yMax, xMin, xMax
}
