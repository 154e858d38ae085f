package volume

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/math/interpolate"
)

// Grid is a dense signed distance field over index space. Values are in
// world units and are negative inside the surface. Voxels outside the active
// bands hold +/-Background().
type Grid struct {
	cells       geom.Grid
	values      []float64
	active      []bool
	activeCount int
	background  float64
	xform       geom.Transform

	interp *interpolate.UniformTriLinear
}

func newEmptyGrid(xform geom.Transform, background float64) *Grid {
	g := &Grid{background: background, xform: xform}
	g.cells.Init([3]int{}, [3]int{})
	return g
}

func (g *Grid) initInterpolator() {
	o, w := g.cells.Origin, g.cells.Width
	g.interp = interpolate.NewUniformTriLinear(
		float64(o[0]), 1, w[0],
		float64(o[1]), 1, w[1],
		float64(o[2]), 1, w[2],
		g.values,
	)
}

// CellBounds returns the voxels covered by the grid.
func (g *Grid) CellBounds() geom.CellBounds { return g.cells.CellBounds }

func (g *Grid) VoxelCount() int { return g.cells.Volume }
func (g *Grid) ActiveCount() int { return g.activeCount }
func (g *Grid) Background() float64 { return g.background }
func (g *Grid) Transform() geom.Transform { return g.xform }

// Value returns the value stored at voxel (i, j, k). Voxels outside the grid
// have the background value.
func (g *Grid) Value(i, j, k int) float64 {
	idx, ok := g.cells.IdxCheck(i, j, k)
	if !ok {
		return g.background
	}
	return g.values[idx]
}

// Active returns true if voxel (i, j, k) lies in one of the active bands.
func (g *Grid) Active(i, j, k int) bool {
	idx, ok := g.cells.IdxCheck(i, j, k)
	return ok && g.active[idx]
}

// ForEachActive calls f on every active voxel in order of increasing grid
// index, with x varying fastest.
func (g *Grid) ForEachActive(f func(i, j, k int)) {
	for idx, ok := range g.active {
		if ok {
			f(g.cells.Coords(idx))
		}
	}
}

// Sample returns the tri-linearly interpolated field value at an index space
// point. Points outside the grid have the background value.
func (g *Grid) Sample(p r3.Vec) float64 {
	if g.interp == nil || !g.interp.InRange(p.X, p.Y, p.Z) {
		return g.background
	}
	return g.interp.Eval(p.X, p.Y, p.Z)
}

// Inside returns true if the field is negative at an index space point.
func (g *Grid) Inside(p r3.Vec) bool {
	return g.Sample(p) < 0
}
