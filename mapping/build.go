package mapping

import (
	"github.com/lensinv/lensinv/grid"
	"github.com/lensinv/lensinv/mesh"
)

// Build computes the mapping matrix between the traced grid's image
// pixels and the mesh pixels. Each of the S² sub-coordinates of an
// image pixel carries weight 1/S²; that weight goes wholly to one mesh
// pixel (nearest bin or nearest centre) or is split barycentrically
// over the three vertices of the enclosing Delaunay triangle. Rows of
// the result therefore sum to exactly 1.
//
// A sub-coordinate outside the mesh hull is assigned to its nearest
// centre so every image pixel always maps somewhere.
//
// Complexity: O(P·S²·log n) over P image pixels and n mesh pixels.
func Build(msh *mesh.Mesh, traced *grid.Grid2D, opts Options) (*Matrix, error) {
	if msh == nil || msh.Len() == 0 {
		return nil, ErrMapping
	}
	if traced == nil || traced.Len() == 0 {
		return nil, ErrShapeMismatch
	}
	interpolate := opts.Interpolate && msh.Kind.Delaunay()
	if interpolate && (len(msh.Triangles()) == 0) {
		return nil, ErrMapping
	}

	sub := traced.Sub()
	subWeight := 1.0 / float64(sub*sub)
	b := newMatrixBuilder(traced.Pixels(), msh.Len())

	switch {
	case msh.Kind == mesh.Rectangular:
		for i := 0; i < traced.Len(); i++ {
			y, x := traced.At(i)
			b.add(traced.PixelIndex(i), msh.RectCell(y, x), subWeight)
		}

	case interpolate:
		tree := newCentreTree(msh.Centres())
		for i := 0; i < traced.Len(); i++ {
			y, x := traced.At(i)
			row := traced.PixelIndex(i)
			v := nearestCentre(tree, y, x)
			tri, w, ok := locateBarycentric(msh, v, y, x)
			if !ok {
				// Outside the hull (or in a sliver not incident to the
				// nearest centre): whole weight to the nearest centre.
				b.add(row, v, subWeight)
				continue
			}
			for k := 0; k < 3; k++ {
				b.add(row, tri[k], subWeight*w[k])
			}
		}

	default: // Voronoi assignment: whole weight to the nearest centre.
		tree := newCentreTree(msh.Centres())
		for i := 0; i < traced.Len(); i++ {
			y, x := traced.At(i)
			b.add(traced.PixelIndex(i), nearestCentre(tree, y, x), subWeight)
		}
	}

	return b.build(), nil
}

// barycentricEps tolerates points on triangle edges.
const barycentricEps = 1e-10

// locateBarycentric searches the triangles incident to centre v (and,
// failing that, those incident to v's neighbours) for one containing
// (y, x), returning its vertex indices and non-negative weights that
// sum to 1.
func locateBarycentric(msh *mesh.Mesh, v int, y, x float64) (tri [3]int, w [3]float64, ok bool) {
	if tri, w, ok = scanIncident(msh, v, y, x); ok {
		return tri, w, true
	}
	for _, u := range msh.NeighborsOf(v) {
		if tri, w, ok = scanIncident(msh, u, y, x); ok {
			return tri, w, true
		}
	}

	return tri, w, false
}

func scanIncident(msh *mesh.Mesh, v int, y, x float64) (tri [3]int, w [3]float64, ok bool) {
	centres := msh.Centres()
	triangles := msh.Triangles()
	for _, t := range msh.IncidentTriangles(v) {
		tv := triangles[t]
		w1, w2, w3, inside := barycentric(centres[tv[0]], centres[tv[1]], centres[tv[2]], y, x)
		if !inside {
			continue
		}

		return tv, clampSimplex(w1, w2, w3), true
	}

	return tri, w, false
}

// barycentric returns the barycentric coordinates of (y, x) with
// respect to triangle (a, b, c) and whether the point lies inside
// (within edge tolerance).
func barycentric(a, b, c [2]float64, y, x float64) (w1, w2, w3 float64, inside bool) {
	det := (b[0]-c[0])*(a[1]-c[1]) + (c[1]-b[1])*(a[0]-c[0])
	if det == 0 {
		return 0, 0, 0, false
	}
	w1 = ((b[0]-c[0])*(x-c[1]) + (c[1]-b[1])*(y-c[0])) / det
	w2 = ((c[0]-a[0])*(x-c[1]) + (a[1]-c[1])*(y-c[0])) / det
	w3 = 1 - w1 - w2
	inside = w1 >= -barycentricEps && w2 >= -barycentricEps && w3 >= -barycentricEps

	return w1, w2, w3, inside
}

// clampSimplex zeroes tiny negative edge-tolerance weights and
// renormalizes so the triple sums to exactly 1 and stays non-negative.
func clampSimplex(w1, w2, w3 float64) [3]float64 {
	if w1 < 0 {
		w1 = 0
	}
	if w2 < 0 {
		w2 = 0
	}
	if w3 < 0 {
		w3 = 0
	}
	s := w1 + w2 + w3

	return [3]float64{w1 / s, w2 / s, w3 / s}
}
