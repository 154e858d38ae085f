/*package geom provides the vector, grid, and primitive types shared by the
mesh, volume, and particle packages.*/
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec is a three dimensional single precision vector. Mesh vertices and
// particle attributes are stored as Vecs.
type Vec [3]float32

// WorldPos is a position in world space. Particle positions are always
// WorldPos values; index space positions are carried as r3.Vec.
type WorldPos Vec

// AddSelf adds u to v in place and returns v.
func (v *Vec) AddSelf(u *Vec) *Vec {
	v[0], v[1], v[2] = v[0]+u[0], v[1]+u[1], v[2]+u[2]
	return v
}

// SubAt writes v - u to out and returns out.
func (v *Vec) SubAt(u, out *Vec) *Vec {
	out[0], out[1], out[2] = v[0]-u[0], v[1]-u[1], v[2]-u[2]
	return out
}

// ScaleSelf multiplies v by k in place and returns v.
func (v *Vec) ScaleSelf(k float32) *Vec {
	v[0], v[1], v[2] = v[0]*k, v[1]*k, v[2]*k
	return v
}

// Dot returns the dot product of v and u, accumulated in double precision.
func (v *Vec) Dot(u *Vec) float64 {
	return float64(v[0])*float64(u[0]) +
		float64(v[1])*float64(u[1]) +
		float64(v[2])*float64(u[2])
}

// CrossSelf sets v to v x u and returns v.
func (v *Vec) CrossSelf(u *Vec) *Vec {
	x := v[1]*u[2] - v[2]*u[1]
	y := v[2]*u[0] - v[0]*u[2]
	z := v[0]*u[1] - v[1]*u[0]
	v[0], v[1], v[2] = x, y, z
	return v
}

// R3 widens v to a double precision gonum vector.
func (v Vec) R3() r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// FromR3 narrows a gonum vector to a Vec.
func FromR3(p r3.Vec) Vec {
	return Vec{float32(p.X), float32(p.Y), float32(p.Z)}
}

// IsFinite returns true if no component of v is NaN or infinite.
func (v *Vec) IsFinite() bool {
	for i := 0; i < 3; i++ {
		f := float64(v[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Vec
}

// EmptyBounds returns a box which contains nothing and grows to fit the first
// point added to it.
func EmptyBounds() Bounds {
	inf := float32(math.Inf(+1))
	return Bounds{Min: Vec{inf, inf, inf}, Max: Vec{-inf, -inf, -inf}}
}

// Add grows b so that it contains v.
func (b *Bounds) Add(v *Vec) {
	for i := 0; i < 3; i++ {
		if v[i] < b.Min[i] {
			b.Min[i] = v[i]
		}
		if v[i] > b.Max[i] {
			b.Max[i] = v[i]
		}
	}
}

// Empty returns true if nothing has been added to b.
func (b Bounds) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Contains returns true if v lies in b after b is grown by pad on every side.
func (b *Bounds) Contains(v *Vec, pad float32) bool {
	for i := 0; i < 3; i++ {
		if v[i] < b.Min[i]-pad || v[i] > b.Max[i]+pad {
			return false
		}
	}
	return true
}
