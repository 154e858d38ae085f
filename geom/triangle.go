package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle in index space.
type Triangle [3]r3.Vec

// ClosestPoint returns the point of t nearest to p. The region tests follow
// Ericson, Real-Time Collision Detection, section 5.1.5.
func (t *Triangle) ClosestPoint(p r3.Vec) r3.Vec {
	a, b, c := t[0], t[1], t[2]
	ab, ac := r3.Sub(b, a), r3.Sub(c, a)

	ap := r3.Sub(p, a)
	d1, d2 := r3.Dot(ab, ap), r3.Dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := r3.Sub(p, b)
	d3, d4 := r3.Dot(ab, bp), r3.Dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return r3.Add(a, r3.Scale(d1/(d1-d3), ab))
	}

	cp := r3.Sub(p, c)
	d5, d6 := r3.Dot(ab, cp), r3.Dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return r3.Add(a, r3.Scale(d2/(d2-d6), ac))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return r3.Add(b, r3.Scale(w, r3.Sub(c, b)))
	}

	sum := va + vb + vc
	if sum == 0 {
		// Collinear corners: the triangle is a segment.
		return t.closestEdgePoint(p)
	}
	v, w := vb/sum, vc/sum
	return r3.Add(a, r3.Add(r3.Scale(v, ab), r3.Scale(w, ac)))
}

func (t *Triangle) closestEdgePoint(p r3.Vec) r3.Vec {
	best, bestD := t[0], math.Inf(+1)
	for i := 0; i < 3; i++ {
		q := closestSegmentPoint(t[i], t[(i+1)%3], p)
		if d := r3.Norm2(r3.Sub(p, q)); d < bestD {
			best, bestD = q, d
		}
	}
	return best
}

func closestSegmentPoint(a, b, p r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	len2 := r3.Norm2(ab)
	if len2 == 0 {
		return a
	}
	s := r3.Dot(r3.Sub(p, a), ab) / len2
	if s < 0 {
		s = 0
	} else if s > 1 {
		s = 1
	}
	return r3.Add(a, r3.Scale(s, ab))
}

// Dist returns the distance from p to t.
func (t *Triangle) Dist(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, t.ClosestPoint(p)))
}

// CrossX intersects t with the line parallel to the x axis which passes
// through (y, z). It returns the x coordinate of the crossing and true if the
// line hits t, and false if it misses or t is edge-on to the line.
func (t *Triangle) CrossX(y, z float64) (x float64, ok bool) {
	a, b, c := t[0], t[1], t[2]
	area := (b.Y-a.Y)*(c.Z-a.Z) - (c.Y-a.Y)*(b.Z-a.Z)
	if area == 0 {
		return 0, false
	}

	wa := ((b.Y-y)*(c.Z-z) - (c.Y-y)*(b.Z-z)) / area
	wb := ((y-a.Y)*(c.Z-a.Z) - (c.Y-a.Y)*(z-a.Z)) / area
	wc := 1 - wa - wb
	if wa < 0 || wb < 0 || wc < 0 {
		return 0, false
	}

	return wa*a.X + wb*b.X + wc*c.X, true
}

// Bounds returns the bounding box of t.
func (t *Triangle) Bounds() (min, max r3.Vec) {
	min, max = t[0], t[0]
	for i := 1; i < 3; i++ {
		min.X, max.X = math.Min(min.X, t[i].X), math.Max(max.X, t[i].X)
		min.Y, max.Y = math.Min(min.Y, t[i].Y), math.Max(max.Y, t[i].Y)
		min.Z, max.Z = math.Min(min.Z, t[i].Z), math.Max(max.Z, t[i].Z)
	}
	return min, max
}
