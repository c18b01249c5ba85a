package mesh

import (
	"math"
	"sort"
)

// buildTessellated constructs a Delaunay/Voronoi mesh over the given
// centres. Both kinds share the triangulation-derived adjacency (two
// centres are neighbours iff they share a Delaunay edge, equivalently
// iff their Voronoi cells share an edge); they differ only in how the
// mapping step assigns image pixels.
//
// Duplicate centres are removed first: repeated traced positions are
// common when magnification is extreme and would degenerate the
// triangulation.
//
// Complexity: O(n²) time, O(n) memory, for n centres.
func buildTessellated(kind Kind, centres [][2]float64) (*Mesh, error) {
	centres = dedupe(centres)
	if len(centres) < 3 {
		return nil, ErrTooFewPoints
	}
	triangles, err := triangulate(centres)
	if err != nil {
		return nil, err
	}

	n := len(centres)
	adj := make([]map[int]struct{}, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	incident := make([][]int, n)
	for t, tri := range triangles {
		for e := 0; e < 3; e++ {
			u, v := tri[e], tri[(e+1)%3]
			adj[u][v] = struct{}{}
			adj[v][u] = struct{}{}
		}
		for _, v := range tri {
			incident[v] = append(incident[v], t)
		}
	}
	neighbors := make([][]int, n)
	for i, set := range adj {
		list := make([]int, 0, len(set))
		for j := range set {
			list = append(list, j)
		}
		sort.Ints(list)
		neighbors[i] = list
	}

	return &Mesh{
		Kind:      kind,
		centres:   centres,
		neighbors: neighbors,
		triangles: triangles,
		incident:  incident,
	}, nil
}

// dedupe removes exactly coincident points, preserving first-seen order
// so the result is deterministic.
func dedupe(pts [][2]float64) [][2]float64 {
	seen := make(map[[2]float64]struct{}, len(pts))
	out := make([][2]float64, 0, len(pts))
	for _, p := range pts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out
}

// triangulate runs incremental Bowyer–Watson over the points and
// returns the Delaunay triangles as index triples. Points must be
// distinct. Returns ErrCollinearPoints if no valid triangle survives
// (all points on one line).
//
// Complexity: O(n²) time in practice for the mesh sizes used here.
func triangulate(pts [][2]float64) ([][3]int, error) {
	n := len(pts)

	// Enclose everything in one huge triangle; its three synthetic
	// vertices take indices n, n+1, n+2.
	yMin, yMax := pts[0][0], pts[0][0]
	xMin, xMax := pts[0][1], pts[0][1]
	for _, p := range pts[1:] {
		yMin = math.Min(yMin, p[0])
		yMax = math.Max(yMax, p[0])
		xMin = math.Min(xMin, p[1])
		xMax = math.Max(xMax, p[1])
	}
	span := math.Max(yMax-yMin, xMax-xMin)
	if span == 0 {
		return nil, ErrCollinearPoints
	}
	midY, midX := (yMin+yMax)/2, (xMin+xMax)/2
	all := make([][2]float64, n, n+3)
	copy(all, pts)
	all = append(all,
		[2]float64{midY - 20*span, midX - 20*span},
		[2]float64{midY - 20*span, midX + 20*span},
		[2]float64{midY + 20*span, midX},
	)

	type tri struct {
		v          [3]int
		cy, cx, r2 float64 // circumcentre and squared radius
	}
	mkTri := func(a, b, c int) tri {
		t := tri{v: [3]int{a, b, c}}
		t.cy, t.cx, t.r2 = circumcircle(all[a], all[b], all[c])

		return t
	}

	live := []tri{mkTri(n, n+1, n+2)}
	for i := 0; i < n; i++ {
		p := all[i]

		// Edges of the cavity: those belonging to exactly one bad triangle.
		edgeCount := make(map[[2]int]int)
		keep := live[:0]
		for _, t := range live {
			dy, dx := p[0]-t.cy, p[1]-t.cx
			if dy*dy+dx*dx <= t.r2 {
				for e := 0; e < 3; e++ {
					u, v := t.v[e], t.v[(e+1)%3]
					if u > v {
						u, v = v, u
					}
					edgeCount[[2]int{u, v}]++
				}
				continue
			}
			keep = append(keep, t)
		}
		live = keep

		// Deterministic cavity retriangulation order.
		edges := make([][2]int, 0, len(edgeCount))
		for e, c := range edgeCount {
			if c == 1 {
				edges = append(edges, e)
			}
		}
		sort.Slice(edges, func(a, b int) bool {
			if edges[a][0] != edges[b][0] {
				return edges[a][0] < edges[b][0]
			}

			return edges[a][1] < edges[b][1]
		})
		for _, e := range edges {
			live = append(live, mkTri(e[0], e[1], i))
		}
	}

	out := make([][3]int, 0, len(live))
	for _, t := range live {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n {
			continue
		}
		// Zero-area slivers from collinear triples carry an infinite
		// circumradius; they are not part of any valid triangulation.
		if math.IsInf(t.r2, 1) {
			continue
		}
		out = append(out, t.v)
	}
	if len(out) == 0 {
		return nil, ErrCollinearPoints
	}

	return out, nil
}

// circumcircle returns the circumcentre and squared circumradius of the
// triangle (a, b, c). A collinear triple yields an infinite radius, so
// any later point invalidates it.
func circumcircle(a, b, c [2]float64) (cy, cx, r2 float64) {
	ay, ax := a[0], a[1]
	by, bx := b[0], b[1]
	cyy, cx0 := c[0], c[1]

	d := 2 * (ax*(by-cyy) + bx*(cyy-ay) + cx0*(ay-by))
	if d == 0 {
		return 0, 0, math.Inf(1)
	}
	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx0*cx0 + cyy*cyy
	ux := (a2*(by-cyy) + b2*(cyy-ay) + c2*(ay-by)) / d
	uy := (a2*(cx0-bx) + b2*(ax-cx0) + c2*(bx-ax)) / d

	dy, dx := ay-uy, ax-ux

	return uy, ux, dy*dy + dx*dx
}
