package scatter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/math/rand"
)

// cubeField is a field whose active voxels fill [0, n)^3 and whose inside is
// the region x < cut.
type cubeField struct {
	n     int
	cut   float64
	xform geom.Transform
}

func newCubeField(n int, voxelSize float64) *cubeField {
	return &cubeField{n: n, cut: math.Inf(+1), xform: geom.Transform{VoxelSize: voxelSize}}
}

func (f *cubeField) ForEachActive(fn func(i, j, k int)) {
	for k := 0; k < f.n; k++ {
		for j := 0; j < f.n; j++ {
			for i := 0; i < f.n; i++ {
				fn(i, j, k)
			}
		}
	}
}

func (f *cubeField) Inside(p r3.Vec) bool { return p.X < f.cut }
func (f *cubeField) Transform() geom.Transform { return f.xform }

type recorder struct {
	points []r3.Vec
	limit  int
}

var errFull = errors.New("full")

func (r *recorder) Add(p r3.Vec) error {
	if r.limit > 0 && len(r.points) >= r.limit {
		return errFull
	}
	r.points = append(r.points, p)
	return nil
}

func scatter(
	t *testing.T, f Field, density, spread float64, seed uint32,
) ([]r3.Vec, Stats) {
	rec := &recorder{}
	s := NewDenseUniform(rec, density, rand.New(rand.MT11213B, seed), spread)
	stats, err := s.Scatter(f)
	require.NoError(t, err)
	return rec.points, stats
}

func TestDeterminism(t *testing.T) {
	f := newCubeField(6, 0.5)
	p1, s1 := scatter(t, f, 20, 1, 7)
	p2, s2 := scatter(t, f, 20, 1, 7)
	p3, _ := scatter(t, f, 20, 1, 8)

	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
	assert.NotEqual(t, p1, p3)
}

func TestPointsStayInVoxels(t *testing.T) {
	f := newCubeField(4, 1)
	points, stats := scatter(t, f, 3, 1, 1)

	assert.Equal(t, 64, stats.ActiveVoxels)
	assert.Equal(t, 3*64, stats.Candidates)
	assert.Equal(t, 3*64, stats.Accepted)
	assert.Len(t, points, 3*64)

	for i, p := range points {
		voxel := i / 3
		x, y, z := voxel%4, (voxel/4)%4, voxel/16
		assert.True(t, math.Abs(p.X-float64(x)) <= 0.5, "point %d", i)
		assert.True(t, math.Abs(p.Y-float64(y)) <= 0.5, "point %d", i)
		assert.True(t, math.Abs(p.Z-float64(z)) <= 0.5, "point %d", i)
	}
}

func TestZeroSpread(t *testing.T) {
	f := newCubeField(3, 1)
	points, _ := scatter(t, f, 2, 0, 1)
	require.Len(t, points, 54)
	for i, p := range points {
		voxel := i / 2
		assert.Equal(t, r3.Vec{
			X: float64(voxel % 3), Y: float64((voxel / 3) % 3), Z: float64(voxel / 9),
		}, p)
	}
}

func TestSpreadClamp(t *testing.T) {
	gen := rand.New(rand.MT11213B, 0)
	assert.Equal(t, 1.0, NewDenseUniform(nil, 1, gen, 2).Spread())
	assert.Equal(t, 0.0, NewDenseUniform(nil, 1, gen, -3).Spread())
	assert.Equal(t, 1.0, NewDenseUniform(nil, 1, gen, math.NaN()).Spread())
	assert.Equal(t, 0.25, NewDenseUniform(nil, 1, gen, 0.25).Spread())

	f := newCubeField(3, 1)
	over, _ := scatter(t, f, 2, 5, 3)
	one, _ := scatter(t, f, 2, 1, 3)
	assert.Equal(t, one, over)
}

func TestNonPositiveDensity(t *testing.T) {
	f := newCubeField(3, 1)
	for _, density := range []float64{0, -1, math.NaN()} {
		points, stats := scatter(t, f, density, 1, 1)
		assert.Empty(t, points)
		assert.Equal(t, 0, stats.Candidates)
	}
}

func TestDensityScaling(t *testing.T) {
	f := newCubeField(10, 1)
	lo, _ := scatter(t, f, 2.5, 1, 11)
	hi, _ := scatter(t, f, 5, 1, 11)

	assert.InDelta(t, 2500, len(lo), 150)
	assert.InDelta(t, 5000, len(hi), 1)
	assert.InDelta(t, 2.0, float64(len(hi))/float64(len(lo)), 0.15)
}

func TestVoxelVolumeScaling(t *testing.T) {
	// 16 points per unit volume at voxel size 0.5 is 2 per voxel.
	f := newCubeField(3, 0.5)
	points, _ := scatter(t, f, 16, 1, 1)
	assert.Len(t, points, 54)
}

func TestRejectedPointsConsumeDraws(t *testing.T) {
	all := newCubeField(5, 1)
	half := newCubeField(5, 1)
	half.cut = 2

	p1, _ := scatter(t, all, 1.5, 1, 9)
	p2, s2 := scatter(t, half, 1.5, 1, 9)

	var want []r3.Vec
	for _, p := range p1 {
		if p.X < 2 {
			want = append(want, p)
		}
	}
	assert.Equal(t, want, p2)
	assert.True(t, s2.Candidates > s2.Accepted)
}

func TestAdderErrorStops(t *testing.T) {
	rec := &recorder{limit: 10}
	s := NewDenseUniform(rec, 4, rand.New(rand.MT19937, 1), 1)
	stats, err := s.Scatter(newCubeField(4, 1))

	assert.True(t, errors.Is(err, errFull))
	assert.Len(t, rec.points, 10)
	assert.Equal(t, 10, stats.Accepted)
	assert.Equal(t, 11, stats.Candidates)
}

func TestHugeDensity(t *testing.T) {
	for _, density := range []float64{1e25, math.Inf(+1), 2 * MaxPointsPerVoxel} {
		rec := &recorder{}
		s := NewDenseUniform(rec, density, rand.New(rand.MT11213B, 0), 1)
		stats, err := s.Scatter(newCubeField(2, 1))
		require.Error(t, err, "density %g", density)
		assert.True(t, errors.Is(err, apperrors.ErrOutOfResources))
		assert.Empty(t, rec.points)
		assert.Equal(t, 0, stats.ActiveVoxels)
	}
}
