package grid

import (
	"math"
	"testing"
)

const tol = 1e-12

// TestNewMask2D_IndexTables verifies the slim↔native correspondence on a
// 3×3 mask with the corners excluded.
func TestNewMask2D_IndexTables(t *testing.T) {
	masked := [][]bool{
		{true, false, true},
		{false, false, false},
		{true, false, true},
	}
	m, err := NewMask2D(masked, [2]float64{0.1, 0.1})
	if err != nil {
		t.Fatalf("NewMask2D failed: %v", err)
	}
	if m.Len() != 5 {
		t.Fatalf("Len = %d; want 5", m.Len())
	}
	// Slim indices run row-major over unmasked pixels.
	wantNative := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, 2}, {2, 1}}
	for s, want := range wantNative {
		r, c := m.NativePixel(s)
		if r != want[0] || c != want[1] {
			t.Errorf("NativePixel(%d) = (%d,%d); want (%d,%d)", s, r, c, want[0], want[1])
		}
		if got := m.SlimIndex(want[0], want[1]); got != s {
			t.Errorf("SlimIndex(%d,%d) = %d; want %d", want[0], want[1], got, s)
		}
	}
	if got := m.SlimIndex(0, 0); got != -1 {
		t.Errorf("SlimIndex of masked pixel = %d; want -1", got)
	}
}

// TestNewMask2D_Invalid exercises the construction sentinels.
func TestNewMask2D_Invalid(t *testing.T) {
	if _, err := NewMask2D(nil, [2]float64{0.1, 0.1}); err != ErrEmptyMask {
		t.Errorf("nil mask: got %v; want ErrEmptyMask", err)
	}
	if _, err := NewMask2D([][]bool{{false}, {}}, [2]float64{0.1, 0.1}); err != ErrNonRectangular {
		t.Errorf("jagged mask: got %v; want ErrNonRectangular", err)
	}
	if _, err := NewMask2D([][]bool{{false}}, [2]float64{0, 0.1}); err != ErrBadPixelScale {
		t.Errorf("zero scale: got %v; want ErrBadPixelScale", err)
	}
	if _, err := NewMask2D([][]bool{{true, true}}, [2]float64{0.1, 0.1}); err != ErrFullyMasked {
		t.Errorf("all masked: got %v; want ErrFullyMasked", err)
	}
}

// TestCentre_OriginAndOrientation checks the scaled-coordinate
// convention: origin at the image centre, y up, x right.
func TestCentre_OriginAndOrientation(t *testing.T) {
	m, err := Unmasked([2]int{3, 3}, [2]float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("Unmasked failed: %v", err)
	}
	y, x := m.Centre(1, 1)
	if y != 0 || x != 0 {
		t.Errorf("centre pixel = (%g,%g); want (0,0)", y, x)
	}
	y, x = m.Centre(0, 2)
	if math.Abs(y-0.5) > tol || math.Abs(x-0.5) > tol {
		t.Errorf("top-right pixel = (%g,%g); want (0.5,0.5)", y, x)
	}
	y, x = m.Centre(2, 0)
	if math.Abs(y+0.5) > tol || math.Abs(x+0.5) > tol {
		t.Errorf("bottom-left pixel = (%g,%g); want (-0.5,-0.5)", y, x)
	}
}

// TestCircular_KeepsAperture checks that a circular mask keeps exactly
// the pixels inside the radius.
func TestCircular_KeepsAperture(t *testing.T) {
	m, err := Circular([2]int{5, 5}, [2]float64{1, 1}, 1.5)
	if err != nil {
		t.Fatalf("Circular failed: %v", err)
	}
	// Centre pixel plus the 4-neighbour cross at unit distance and the
	// diagonal pixels at sqrt(2) < 1.5.
	if m.Len() != 9 {
		t.Errorf("Len = %d; want 9", m.Len())
	}
	if m.IsMasked(2, 2) {
		t.Error("centre pixel should be unmasked")
	}
	if !m.IsMasked(0, 0) {
		t.Error("corner pixel should be masked")
	}
}

// TestFromMask_SubCoordinates verifies sub-pixel centre placement for
// S=2 on a single-pixel mask: four sub-centres offset by ±ps/4.
func TestFromMask_SubCoordinates(t *testing.T) {
	m, err := Unmasked([2]int{1, 1}, [2]float64{1, 1})
	if err != nil {
		t.Fatalf("Unmasked failed: %v", err)
	}
	g, err := FromMask(m, 2)
	if err != nil {
		t.Fatalf("FromMask failed: %v", err)
	}
	if g.Len() != 4 {
		t.Fatalf("Len = %d; want 4", g.Len())
	}
	want := [][2]float64{{0.25, -0.25}, {0.25, 0.25}, {-0.25, -0.25}, {-0.25, 0.25}}
	for i, w := range want {
		y, x := g.At(i)
		if math.Abs(y-w[0]) > tol || math.Abs(x-w[1]) > tol {
			t.Errorf("sub %d = (%g,%g); want (%g,%g)", i, y, x, w[0], w[1])
		}
	}
}

// TestBinAverage_RoundTrip checks that binning sub-values averages the
// S² sub-entries of each pixel.
func TestBinAverage_RoundTrip(t *testing.T) {
	m, _ := Unmasked([2]int{1, 2}, [2]float64{1, 1})
	g, _ := FromMask(m, 2)
	sub := []float64{1, 2, 3, 4, 10, 10, 10, 10}
	binned, err := g.BinAverage(sub)
	if err != nil {
		t.Fatalf("BinAverage failed: %v", err)
	}
	if math.Abs(binned[0]-2.5) > tol || math.Abs(binned[1]-10) > tol {
		t.Errorf("binned = %v; want [2.5 10]", binned)
	}
}

// TestTraced_SubtractsDeflections checks the deflection convention and
// that the receiver grid is untouched.
func TestTraced_SubtractsDeflections(t *testing.T) {
	m, _ := Unmasked([2]int{1, 1}, [2]float64{1, 1})
	g, _ := FromMask(m, 1)
	traced, err := g.Traced([][2]float64{{0.3, -0.2}})
	if err != nil {
		t.Fatalf("Traced failed: %v", err)
	}
	y, x := traced.At(0)
	if math.Abs(y+0.3) > tol || math.Abs(x-0.2) > tol {
		t.Errorf("traced = (%g,%g); want (-0.3,0.2)", y, x)
	}
	y, x = g.At(0)
	if y != 0 || x != 0 {
		t.Error("source grid mutated by Traced")
	}
	if _, err := g.Traced(nil); err != ErrShapeMismatch {
		t.Errorf("bad deflections: got %v; want ErrShapeMismatch", err)
	}
}

// TestScatterGather_RoundTrip checks slim→native→slim is lossless.
func TestScatterGather_RoundTrip(t *testing.T) {
	m, _ := Circular([2]int{5, 5}, [2]float64{1, 1}, 1.5)
	values := make([]float64, m.Len())
	for i := range values {
		values[i] = float64(i) + 1
	}
	native, err := m.ScatterNative(values)
	if err != nil {
		t.Fatalf("ScatterNative failed: %v", err)
	}
	if native[0][0] != 0 {
		t.Error("masked native entry should be zero")
	}
	back, err := m.GatherSlim(native)
	if err != nil {
		t.Fatalf("GatherSlim failed: %v", err)
	}
	for i := range values {
		if back[i] != values[i] {
			t.Fatalf("round trip mismatch at %d: %g != %g", i, back[i], values[i])
		}
	}
}

// TestSparseFromMask_Deterministic verifies the seed decimation is
// stable and lands near the requested count.
func TestSparseFromMask_Deterministic(t *testing.T) {
	m, _ := Circular([2]int{20, 20}, [2]float64{0.1, 0.1}, 0.9)
	a, err := SparseFromMask(m, 50)
	if err != nil {
		t.Fatalf("SparseFromMask failed: %v", err)
	}
	b, _ := SparseFromMask(m, 50)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic seed counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic seed at %d", i)
		}
	}
	if len(a) < 20 || len(a) > 120 {
		t.Errorf("seed count %d far from target 50", len(a))
	}
}
