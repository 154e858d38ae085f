package geom

import (
	"math"
)

// Tetra is a tetrahedron. The mesh package builds one per triangle, with the
// fourth corner at a shared reference point, to integrate enclosed volume.
//
// NOTE: Tetra caches its volume. Callers who change Corners directly must
// call Init again.
type Tetra struct {
	Corners [4]Vec
	volume  float64
	vb      volumeBuffer

	volumeValid bool
}

type volumeBuffer struct {
	buf1, buf2, buf3 Vec
}

// NewTetra creates a new tetrahedron with corners at the specified positions.
func NewTetra(c1, c2, c3, c4 *Vec) (t *Tetra, ok bool) {
	t = &Tetra{}
	return t, t.Init(c1, c2, c3, c4)
}

// Init initializes a tetrahedron to correspond to the given corners. It returns
// false if any of the given pointers is nil.
func (t *Tetra) Init(c1, c2, c3, c4 *Vec) (ok bool) {
	t.volumeValid = false

	if c1 == nil || c2 == nil || c3 == nil || c4 == nil {
		return false
	}

	t.Corners[0], t.Corners[1], t.Corners[2], t.Corners[3] = *c1, *c2, *c3, *c4
	return true
}

// Volume computes the volume of a tetrahedron.
func (t *Tetra) Volume() float64 {
	if t.volumeValid {
		return t.volume
	}

	t.volume = math.Abs(t.SignedVolume())
	t.volumeValid = true
	return t.volume
}

// SignedVolume returns the volume of the tetrahedron. It is positive if the
// last three corners wind counter-clockwise when seen from the side of their
// face opposite the first corner.
func (t *Tetra) SignedVolume() float64 {
	return t.signedVolume(
		&t.Corners[0], &t.Corners[1], &t.Corners[2], &t.Corners[3],
	)
}

func (t *Tetra) signedVolume(c1, c2, c3, c4 *Vec) float64 {
	c2.SubAt(c1, &t.vb.buf1)
	c3.SubAt(c1, &t.vb.buf2)
	c4.SubAt(c1, &t.vb.buf3)

	t.vb.buf2.CrossSelf(&t.vb.buf3)

	return t.vb.buf1.Dot(&t.vb.buf2) / 6.0
}
