package grid

import "errors"

// Sentinel errors for grid construction and use.
var (
	// ErrEmptyMask indicates the mask has no rows or no columns.
	ErrEmptyMask = errors.New("grid: mask must have at least one row and one column")
	// ErrFullyMasked indicates the mask excludes every pixel.
	ErrFullyMasked = errors.New("grid: mask excludes every pixel")
	// ErrNonRectangular indicates mask rows of differing lengths.
	ErrNonRectangular = errors.New("grid: all mask rows must have the same length")
	// ErrBadPixelScale indicates a non-positive pixel scale.
	ErrBadPixelScale = errors.New("grid: pixel scales must be positive")
	// ErrBadSubSize indicates a sub-grid size below 1.
	ErrBadSubSize = errors.New("grid: sub-grid size must be at least 1")
	// ErrShapeMismatch indicates a companion array whose length does not
	// match the grid or mask it accompanies.
	ErrShapeMismatch = errors.New("grid: array length does not match grid shape")
	// ErrBadRadius indicates a non-positive circular mask radius.
	ErrBadRadius = errors.New("grid: mask radius must be positive")
)

// Mask2D marks which pixels of a native 2D image are excluded from a fit
// and owns the slim↔native index correspondence. Immutable once built.
//
// Memory: O(rows×cols).
type Mask2D struct {
	rows, cols  int
	pixelScales [2]float64 // (y, x) arcseconds per pixel
	masked      [][]bool   // true = excluded
	slimToNat   [][2]int   // slim index → (row, col)
	natToSlim   []int      // row-major native index → slim index, -1 if masked
}

// Grid2D is an ordered sequence of (y, x) coordinates over the unmasked
// pixels of a mask, at sub-sampling sub (sub×sub sub-coordinates per
// pixel, row-major within each pixel). Immutable once built; Traced
// returns a new grid rather than mutating.
type Grid2D struct {
	mask   *Mask2D
	sub    int
	coords [][2]float64 // slim layout, length mask.Len()×sub²
}
