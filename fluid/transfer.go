package fluid

// stencil holds the four node indices and bilinear weights around a sample
// point, ordered (x,y), (x+1,y), (x+1,y+1), (x,y+1).
type stencil struct {
	i [4]int
	w [4]float64
}

// stencilAt clamps (x, y) to [0, extent-2] on each axis of the family so
// the four nodes always exist, then floors to the base node.
func (g *Grid) stencilAt(x, y float64, f Family) stencil {
	w, h := g.Extent(f)
	x = clampSample(x, float64(w-2))
	y = clampSample(y, float64(h-2))
	ix, iy := int(x), int(y)
	tx, ty := x-float64(ix), y-float64(iy)
	sx, sy := 1-tx, 1-ty
	i0 := ix + iy*w
	return stencil{
		i: [4]int{i0, i0 + 1, i0 + 1 + w, i0 + w},
		w: [4]float64{sx * sy, tx * sy, tx * ty, sx * ty},
	}
}

func clampSample(v, hi float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

// Scatter adds value*w into grid and w into weights for each of the four
// nodes surrounding (x, y) in family f.
func (g *Grid) Scatter(x, y, value float64, weights, grid []float64, f Family) {
	s := g.stencilAt(x, y, f)
	for k, i := range s.i {
		grid[i] += value * s.w[k]
		weights[i] += s.w[k]
	}
}

// SplatWeights adds only the bilinear weights of (x, y) into weights.
func (g *Grid) SplatWeights(x, y float64, weights []float64, f Family) {
	s := g.stencilAt(x, y, f)
	for k, i := range s.i {
		weights[i] += s.w[k]
	}
}

// Normalize divides each grid entry by its accumulated weight, leaving
// entries with zero weight untouched.
func Normalize(grid, weights []float64) {
	for i, w := range weights {
		if w > 0 {
			grid[i] /= w
		}
	}
}

// Gather interpolates grid at (x, y) using only nodes whose valid mask is
// non-zero, renormalising by the surviving weight. It returns 0 when no
// valid node contributes.
func (g *Grid) Gather(x, y float64, grid, valid []float64, f Family) float64 {
	s := g.stencilAt(x, y, f)
	var num, den float64
	for k, i := range s.i {
		w := valid[i] * s.w[k]
		num += w * grid[i]
		den += w
	}
	if den > 0 {
		return num / den
	}
	return 0
}
