package interpolate

import (
	"fmt"
	"math"
)

//////////////////////////////////////
// UniformTriLinear Implementation //
//////////////////////////////////////

// UniformTriLinear is a tri-linear interpolator over a uniformly spaced grid.
// Values are stored with x varying fastest.
type UniformTriLinear struct {
	xs, ys, zs uniformAxis
	vals       []float64
}

type uniformAxis struct {
	x0, dx float64
	n      int
}

// NewUniformTriLinear creates a tri-linear interpolator for a grid with nx
// points along x starting at x0 and separated by dx, and likewise for y and
// z. len(vals) must equal nx*ny*nz.
//
// Lookups are O(1).
func NewUniformTriLinear(
	x0, dx float64, nx int,
	y0, dy float64, ny int,
	z0, dz float64, nz int,
	vals []float64,
) *UniformTriLinear {
	if nx*ny*nz != len(vals) {
		panic(fmt.Sprintf(
			"len(vals) = %d, but nx = %d, ny = %d, and nz = %d",
			len(vals), nx, ny, nz,
		))
	}

	return &UniformTriLinear{
		xs:   uniformAxis{x0, dx, nx},
		ys:   uniformAxis{y0, dy, ny},
		zs:   uniformAxis{z0, dz, nz},
		vals: vals,
	}
}

// cell returns the indices of the grid points bracketing x and the fraction
// of the way from the first to the second.
func (ax *uniformAxis) cell(x float64) (i0, i1 int, t float64) {
	if ax.n == 1 {
		return 0, 0, 0
	}

	f := (x - ax.x0) / ax.dx
	i0 = int(math.Floor(f))
	if i0 >= ax.n-1 {
		i0 = ax.n - 2
	} else if i0 < 0 {
		i0 = 0
	}
	return i0, i0 + 1, f - float64(i0)
}

func (ax *uniformAxis) inRange(x float64) bool {
	hi := ax.x0 + float64(ax.n-1)*ax.dx
	return x >= ax.x0 && x <= hi
}

// InRange returns true if (x, y, z) lies within the grid.
func (tri *UniformTriLinear) InRange(x, y, z float64) bool {
	return tri.xs.inRange(x) && tri.ys.inRange(y) && tri.zs.inRange(z)
}

func (tri *UniformTriLinear) val(i, j, k int) float64 {
	return tri.vals[i+tri.xs.n*(j+tri.ys.n*k)]
}

// Eval returns the interpolated value at (x, y, z). Points outside the grid
// are extrapolated from the nearest cell; check InRange first if that matters.
func (tri *UniformTriLinear) Eval(x, y, z float64) float64 {
	i0, i1, tx := tri.xs.cell(x)
	j0, j1, ty := tri.ys.cell(y)
	k0, k1, tz := tri.zs.cell(z)

	c00 := lerp(tri.val(i0, j0, k0), tri.val(i1, j0, k0), tx)
	c10 := lerp(tri.val(i0, j1, k0), tri.val(i1, j1, k0), tx)
	c01 := lerp(tri.val(i0, j0, k1), tri.val(i1, j0, k1), tx)
	c11 := lerp(tri.val(i0, j1, k1), tri.val(i1, j1, k1), tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)

	return lerp(c0, c1, tz)
}

func lerp(v0, v1, t float64) float64 {
	return v0 + (v1-v0)*t
}
