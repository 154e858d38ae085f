package interpolate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func value(x, y, z float64) float64 {
	return 2*x + 3*y + 5*z
}

func uniformGrid(minVal, step float64, n int) *UniformTriLinear {
	vals := make([]float64, n*n*n)
	idx := 0
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				vals[idx] = value(minVal+float64(i)*step, minVal+float64(j)*step, minVal+float64(k)*step)
				idx++
			}
		}
	}
	return NewUniformTriLinear(
		minVal, step, n,
		minVal, step, n,
		minVal, step, n,
		vals,
	)
}

func TestUniformTriLinear(t *testing.T) {
	interp := uniformGrid(0, 0.1, 11)
	eps := 1e-12

	// points on the grid should work
	assert.InDelta(t, value(0.5, 0.5, 0.5), interp.Eval(0.5, 0.5, 0.5), eps, "on grid")
	// points just off the grid should also work
	assert.InDelta(t, value(0.51, 0.50, 0.50), interp.Eval(0.51, 0.50, 0.50), eps, "nearby x")
	assert.InDelta(t, value(0.50, 0.51, 0.50), interp.Eval(0.50, 0.51, 0.50), eps, "nearby y")
	assert.InDelta(t, value(0.50, 0.50, 0.51), interp.Eval(0.50, 0.50, 0.51), eps, "nearby z")
	// points on the edge of the grid should work
	assert.InDelta(t, value(0, 0, 0), interp.Eval(0, 0, 0), eps, "grid edge")
	assert.InDelta(t, value(0.01, 0, 0), interp.Eval(0.01, 0, 0), eps, "grid edge nearby x")
	assert.InDelta(t, value(1, 1, 1), interp.Eval(1, 1, 1), eps, "upper grid edge")
}

func TestUniformTriLinearOffset(t *testing.T) {
	interp := uniformGrid(-3, 1, 7)
	assert.InDelta(t, value(-2.25, 0.5, 1.75), interp.Eval(-2.25, 0.5, 1.75), 1e-12)

	assert.True(t, interp.InRange(-3, 3, 0))
	assert.False(t, interp.InRange(-3.01, 0, 0))
	assert.False(t, interp.InRange(0, 0, 3.01))
}

func TestUniformTriLinearCorners(t *testing.T) {
	// f(x, y, z) = xyz is reproduced exactly inside a single cell.
	vals := []float64{0, 0, 0, 0, 0, 0, 0, 1}
	interp := NewUniformTriLinear(0, 1, 2, 0, 1, 2, 0, 1, 2, vals)

	xs := []float64{0.5, 0.25, 1}
	ys := []float64{0.5, 1, 1}
	zs := []float64{0.5, 0.5, 1}
	for i := range xs {
		assert.InDelta(t, xs[i]*ys[i]*zs[i], interp.Eval(xs[i], ys[i], zs[i]), 1e-12)
	}
}

func TestNewUniformTriLinearPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewUniformTriLinear(0, 1, 2, 0, 1, 2, 0, 1, 2, make([]float64, 7))
	})
}
