package mesh

// buffer widens the traced extent slightly so points on the boundary
// land strictly inside an edge cell.
const extentBuffer = 1e-8

// buildRectangular overlays a uniform shape[0]×shape[1] grid on the
// bounding box of the traced coordinates. Cells are indexed row-major
// from the top-left (maximum y, minimum x); adjacency is 4-connected.
//
// Complexity: O(rows×cols) time and memory.
func buildRectangular(yMin, yMax, xMin, xMax float64, shape [2]int) (*Mesh, error) {
	if shape[0] < 1 || shape[1] < 1 {
		return nil, ErrBadConfig
	}
	spanY := yMax - yMin
	spanX := xMax - xMin
	if spanY <= 0 || spanX <= 0 {
		// All traced points collapse onto a line or a single point, so
		// no rectangular cell structure exists.
		return nil, ErrCollinearPoints
	}
	yMin -= extentBuffer * spanY
	yMax += extentBuffer * spanY
	xMin -= extentBuffer * spanX
	xMax += extentBuffer * spanX

	rows, cols := shape[0], shape[1]
	pitchY := (yMax - yMin) / float64(rows)
	pitchX := (xMax - xMin) / float64(cols)

	centres := make([][2]float64, 0, rows*cols)
	for r := 0; r < rows; r++ {
		y := yMax - (float64(r)+0.5)*pitchY
		for c := 0; c < cols; c++ {
			x := xMin + (float64(c)+0.5)*pitchX
			centres = append(centres, [2]float64{y, x})
		}
	}

	neighbors := make([][]int, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			adj := make([]int, 0, 4)
			if r > 0 {
				adj = append(adj, i-cols)
			}
			if c > 0 {
				adj = append(adj, i-1)
			}
			if c < cols-1 {
				adj = append(adj, i+1)
			}
			if r < rows-1 {
				adj = append(adj, i+cols)
			}
			neighbors[i] = adj
		}
	}

	return &Mesh{
		Kind:      Rectangular,
		centres:   centres,
		neighbors: neighbors,
		shape:     shape,
		pitchY:    pitchY,
		pitchX:    pitchX,
		yMax:      yMax,
		xMin:      xMin,
	}, nil
}
