package mapping

import "gonum.org/v1/gonum/spatial/kdtree"

// centrePoint is a mesh centre tagged with its index, satisfying
// kdtree.Comparable so nearest queries return the mesh pixel directly.
type centrePoint struct {
	y, x float64
	idx  int
}

// Compare implements the kdtree.Comparable interface.
func (p centrePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(centrePoint)
	if d == 0 {
		return p.y - q.y
	}

	return p.x - q.x
}

// Dims returns the number of spatial dimensions.
func (p centrePoint) Dims() int { return 2 }

// Distance returns the squared Euclidean distance between two centres.
func (p centrePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(centrePoint)
	dy, dx := p.y-q.y, p.x-q.x

	return dy*dy + dx*dx
}

// centrePoints satisfies kdtree.Interface.
type centrePoints []centrePoint

func (p centrePoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p centrePoints) Len() int                              { return len(p) }
func (p centrePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot uses the deterministic median-of-medians partition so that the
// tree layout, and therefore any equal-distance tie-break, is
// reproducible across runs.
func (p centrePoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centrePlane{centrePoints: p, Dim: d}, kdtree.MedianOfMedians(centrePlane{centrePoints: p, Dim: d}))
}

// centrePlane implements sort.Interface and kdtree.SortSlicer.
type centrePlane struct {
	centrePoints
	kdtree.Dim
}

func (p centrePlane) Less(i, j int) bool {
	if p.Dim == 0 {
		return p.centrePoints[i].y < p.centrePoints[j].y
	}

	return p.centrePoints[i].x < p.centrePoints[j].x
}

func (p centrePlane) Slice(start, end int) kdtree.SortSlicer {
	return centrePlane{centrePoints: p.centrePoints[start:end], Dim: p.Dim}
}

func (p centrePlane) Swap(i, j int) {
	p.centrePoints[i], p.centrePoints[j] = p.centrePoints[j], p.centrePoints[i]
}

// newCentreTree builds a kd-tree over the mesh centres.
func newCentreTree(centres [][2]float64) *kdtree.Tree {
	pts := make(centrePoints, len(centres))
	for i, c := range centres {
		pts[i] = centrePoint{y: c[0], x: c[1], idx: i}
	}

	return kdtree.New(pts, false)
}

// nearestCentre returns the mesh pixel whose centre is closest to (y, x).
func nearestCentre(tree *kdtree.Tree, y, x float64) int {
	got, _ := tree.Nearest(centrePoint{y: y, x: x, idx: -1})

	return got.(centrePoint).idx
}
