package mesh

import (
	"errors"
	"fmt"
)

// ErrMeshConstruction is the umbrella sentinel for degenerate
// tessellation input. Specific causes wrap it, so callers classify with
// errors.Is(err, ErrMeshConstruction).
var ErrMeshConstruction = errors.New("mesh: degenerate tessellation input")

var (
	// ErrTooFewPoints indicates fewer than three distinct seed points.
	ErrTooFewPoints = fmt.Errorf("%w: fewer than three distinct seed points", ErrMeshConstruction)
	// ErrCollinearPoints indicates all seed points lie on one line.
	ErrCollinearPoints = fmt.Errorf("%w: seed points are collinear", ErrMeshConstruction)
)

// ErrBadConfig indicates an invalid mesh configuration (non-positive
// shape or pixel count). Unlike ErrMeshConstruction this is a setup
// error, not a per-evaluation rejection.
var ErrBadConfig = errors.New("mesh: invalid mesh configuration")

// Kind selects the mesh variant. Each kind carries only the Config
// fields relevant to it.
type Kind int

const (
	// Rectangular overlays a uniform Shape[0]×Shape[1] grid on the
	// traced extent. Mesh geometry is mass-model dependent only through
	// the extent.
	Rectangular Kind = iota
	// DelaunayMagnification triangulates the ray-traced seed positions;
	// image pixels receive barycentric weights over their enclosing
	// triangle.
	DelaunayMagnification
	// DelaunayBrightness triangulates brightness-weighted cluster
	// centres derived from an adapt image.
	DelaunayBrightness
	// VoronoiMagnification uses the same traced seeds but assigns each
	// image pixel wholly to its nearest centre (Voronoi cell).
	VoronoiMagnification
	// VoronoiBrightness is the nearest-centre counterpart of
	// DelaunayBrightness.
	VoronoiBrightness
)

// String returns the mesh kind name.
func (k Kind) String() string {
	switch k {
	case Rectangular:
		return "Rectangular"
	case DelaunayMagnification:
		return "DelaunayMagnification"
	case DelaunayBrightness:
		return "DelaunayBrightness"
	case VoronoiMagnification:
		return "VoronoiMagnification"
	case VoronoiBrightness:
		return "VoronoiBrightness"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Delaunay reports whether the kind assigns barycentric interpolation
// weights (as opposed to whole-pixel nearest-centre assignment).
func (k Kind) Delaunay() bool {
	return k == DelaunayMagnification || k == DelaunayBrightness
}

// Brightness reports whether the kind derives its centres from
// adapt-image weights rather than from traced seed positions.
func (k Kind) Brightness() bool {
	return k == DelaunayBrightness || k == VoronoiBrightness
}

// Config holds the mesh selection and its resolution knobs.
//
// Shape applies to Rectangular; Pixels, WeightFloor and WeightPower to
// the tessellated kinds (WeightFloor/WeightPower only to the
// brightness-adaptive ones).
type Config struct {
	Kind Kind
	// Shape is the (rows, cols) of a rectangular mesh.
	Shape [2]int
	// Pixels is the target centre count of a tessellated mesh.
	Pixels int
	// WeightFloor lifts every adapt weight by a fraction of the peak,
	// keeping faint regions represented. Typical range 0–1.
	WeightFloor float64
	// WeightPower sharpens (>1) or flattens (<1) the adapt weighting.
	WeightPower float64
}

// DefaultConfig returns a 30×30 rectangular mesh; tessellated kinds
// default to 500 pixels with neutral brightness weighting.
func DefaultConfig() Config {
	return Config{
		Kind:        Rectangular,
		Shape:       [2]int{30, 30},
		Pixels:      500,
		WeightFloor: 0.0,
		WeightPower: 1.0,
	}
}

// Mesh is an immutable set of source-plane pixel centres plus the
// adjacency derived from the tessellation. Rectangular meshes
// additionally carry the uniform-cell geometry used for nearest-bin
// lookup; Delaunay meshes carry their triangles for barycentric
// interpolation.
type Mesh struct {
	Kind Kind

	centres   [][2]float64
	neighbors [][]int

	// rectangular geometry
	shape          [2]int
	pitchY, pitchX float64
	yMax, xMin     float64

	// Delaunay geometry
	triangles [][3]int
	incident  [][]int // centre index → triangle indices touching it
}

// Len returns the number of mesh pixels.
func (m *Mesh) Len() int { return len(m.centres) }

// Centres exposes the pixel centre slice. Read-only by contract.
func (m *Mesh) Centres() [][2]float64 { return m.centres }

// Centre returns the (y, x) centre of mesh pixel i.
func (m *Mesh) Centre(i int) (y, x float64) {
	return m.centres[i][0], m.centres[i][1]
}

// Neighbors exposes the adjacency lists. Read-only by contract.
func (m *Mesh) Neighbors() [][]int { return m.neighbors }

// NeighborsOf returns the mesh pixels sharing a tessellation edge with
// pixel i. Read-only by contract.
func (m *Mesh) NeighborsOf(i int) []int { return m.neighbors[i] }

// Triangles exposes the Delaunay triangles (nil for other kinds).
func (m *Mesh) Triangles() [][3]int { return m.triangles }

// IncidentTriangles returns the Delaunay triangles touching centre i.
func (m *Mesh) IncidentTriangles(i int) []int { return m.incident[i] }

// RectShape returns the (rows, cols) of a rectangular mesh.
func (m *Mesh) RectShape() [2]int { return m.shape }

// RectCell returns the mesh pixel whose rectangular cell contains
// (y, x), clamping coordinates outside the mesh extent to the nearest
// edge cell. Complexity: O(1).
func (m *Mesh) RectCell(y, x float64) int {
	r := int((m.yMax - y) / m.pitchY)
	c := int((x - m.xMin) / m.pitchX)
	if r < 0 {
		r = 0
	}
	if r >= m.shape[0] {
		r = m.shape[0] - 1
	}
	if c < 0 {
		c = 0
	}
	if c >= m.shape[1] {
		c = m.shape[1] - 1
	}

	return r*m.shape[1] + c
}
