/*package interpolate evaluates fields sampled on regular grids at arbitrary
points.*/
package interpolate

// TriInterpolator interpolates a scalar field over three dimensions.
type TriInterpolator interface {
	Eval(x, y, z float64) float64
}

var (
	_ TriInterpolator = &UniformTriLinear{}
)
