/*package scatter fills the active voxels of a signed distance field with
randomly placed points.*/
package scatter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/math/rand"
)

// fractionEps is the smallest fractional part of the per-voxel point count
// which is honored.
const fractionEps = 1e-6

// MaxPointsPerVoxel bounds the expected point count of a single voxel.
const MaxPointsPerVoxel = math.MaxInt32

// PointAdder receives the index space points accepted by a scatterer.
// Returning an error stops the scatter.
type PointAdder interface {
	Add(p r3.Vec) error
}

// Field is the view of a signed distance grid which a scatterer needs.
type Field interface {
	// ForEachActive visits active voxels in a fixed order.
	ForEachActive(f func(i, j, k int))
	// Inside reports whether an index space point is inside the surface.
	Inside(p r3.Vec) bool
	Transform() geom.Transform
}

// Stats summarizes a single Scatter call.
type Stats struct {
	ActiveVoxels int
	Candidates   int
	Accepted     int
}

// DenseUniform places a uniform expected number of points in every active
// voxel.
type DenseUniform struct {
	adder           PointAdder
	pointsPerVolume float64
	gen             *rand.Generator
	spread, offset  float64
}

// NewDenseUniform creates a scatterer which emits pointsPerVolume points per
// unit of world space volume, with positions jittered by spread within each
// voxel. A spread of 1 covers the whole voxel and a spread of 0 puts every
// point at the voxel center. Spreads are clamped to [0, 1] and NaN is
// treated as 1.
func NewDenseUniform(
	adder PointAdder, pointsPerVolume float64,
	gen *rand.Generator, spread float64,
) *DenseUniform {
	switch {
	case math.IsNaN(spread) || spread > 1:
		spread = 1
	case spread < 0:
		spread = 0
	}

	return &DenseUniform{
		adder:           adder,
		pointsPerVolume: pointsPerVolume,
		gen:             gen,
		spread:          spread,
		offset:          0.5 * (1 - spread),
	}
}

func (s *DenseUniform) Spread() float64 { return s.spread }

// Scatter visits the active voxels of f and, for each, draws the integer part
// of the expected point count plus one more point with probability equal to
// its fractional part. Candidates outside the surface are dropped after
// their random values are drawn, so the random stream depends only on the
// generator seed, the field, the density, and the spread.
//
// A non-positive or NaN density produces no points. A density whose
// per-voxel count exceeds MaxPointsPerVoxel fails with OutOfResources before
// any point is emitted.
func (s *DenseUniform) Scatter(f Field) (Stats, error) {
	stats := Stats{}
	perVoxel := s.pointsPerVolume * f.Transform().VoxelVolume()
	if !(perVoxel > 0) {
		return stats, nil
	}
	if perVoxel > MaxPointsPerVoxel {
		return stats, apperrors.New(apperrors.CodeOutOfResources, fmt.Sprintf(
			"%g points per voxel exceeds the limit of %d",
			perVoxel, MaxPointsPerVoxel,
		))
	}

	n := int(math.Floor(perVoxel))
	frac := perVoxel - float64(n)
	fractional := math.Abs(frac) > fractionEps

	var err error
	emit := func(i, j, k int) {
		p := r3.Vec{
			X: float64(i) - 0.5 + s.jitter(),
			Y: float64(j) - 0.5 + s.jitter(),
			Z: float64(k) - 0.5 + s.jitter(),
		}
		stats.Candidates++
		if !f.Inside(p) {
			return
		}
		if err = s.adder.Add(p); err == nil {
			stats.Accepted++
		}
	}

	f.ForEachActive(func(i, j, k int) {
		if err != nil {
			return
		}
		stats.ActiveVoxels++
		for c := 0; c < n && err == nil; c++ {
			emit(i, j, k)
		}
		if err == nil && fractional && s.gen.Uniform01() < frac {
			emit(i, j, k)
		}
	})

	return stats, err
}

func (s *DenseUniform) jitter() float64 {
	return s.offset + s.spread*s.gen.Uniform01()
}
