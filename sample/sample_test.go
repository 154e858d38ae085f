package sample

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/material"
	"github.com/hhc2tech/mpm/math/rand"
	"github.com/hhc2tech/mpm/mesh"
	"github.com/hhc2tech/mpm/particle"
)

const voxelSize = 0.1

// unitBox is a unit cube whose faces lie halfway between voxel centers.
func unitBox() *mesh.TriangleMesh {
	return mesh.Box(1, 1, 1, geom.Vec{0.05, 0.05, 0.05})
}

func testMaterial(t *testing.T) *material.Material {
	mat, err := material.New(geom.Vec{0, 0, -2}, 0.25, 1e5, 0.2)
	require.NoError(t, err)
	return mat
}

func positions(ps particle.Collection) []geom.WorldPos {
	out := make([]geom.WorldPos, len(ps))
	for i, p := range ps {
		out[i] = p.Position
	}
	return out
}

func TestDeterminism(t *testing.T) {
	mat := testMaterial(t)
	r1, err := New(unitBox(), mat, voxelSize, 1e4, 1, 17)
	require.NoError(t, err)
	r2, err := New(unitBox(), mat, voxelSize, 1e4, 1, 17, WithWorkers(3))
	require.NoError(t, err)
	r3, err := New(unitBox(), mat, voxelSize, 1e4, 1, 17, WithGenerator(rand.MT19937))
	require.NoError(t, err)

	assert.NotZero(t, r1.Particles().Len())
	assert.Equal(t, positions(r1.Particles()), positions(r2.Particles()))
	assert.NotEqual(t, positions(r1.Particles()), positions(r3.Particles()))
}

func TestParticleAttributes(t *testing.T) {
	mat := testMaterial(t)
	run, err := New(unitBox(), mat, voxelSize, 1e4, 1, 0, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	for _, p := range run.Particles() {
		assert.Equal(t, mat.Velocity(), p.Velocity)
		assert.Equal(t, mat.Mass(), p.Mass)
		assert.Equal(t, mat.Lambda(), p.Lambda)
		assert.Equal(t, mat.Mu(), p.Mu)
		assert.False(t, p.HasVolume())
	}
	assert.InDelta(t, 0.25*float64(run.Particles().Len()), run.Particles().TotalMass(), 1e-3)
	assert.Same(t, mat, run.Material())
}

func TestContainment(t *testing.T) {
	orig := unitBox()
	bounds := orig.Bounds()

	run, err := New(unitBox(), testMaterial(t), voxelSize, 2e4, 1, 3)
	require.NoError(t, err)

	for i, p := range run.Particles() {
		v := geom.Vec(p.Position)
		assert.True(t, bounds.Contains(&v, voxelSize), "particle %d at %v", i, v)
	}

	// The box fills 1000 voxels exactly and each gets two points.
	assert.InDelta(t, 2000, run.Particles().Len(), 100)
	assert.Equal(t, run.Stats().Accepted, run.Particles().Len())
}

func TestDensityScaling(t *testing.T) {
	mat := testMaterial(t)
	lo, err := New(unitBox(), mat, voxelSize, 1e4, 1, 5)
	require.NoError(t, err)
	hi, err := New(unitBox(), mat, voxelSize, 4e4, 1, 5)
	require.NoError(t, err)

	ratio := float64(hi.Particles().Len()) / float64(lo.Particles().Len())
	assert.InDelta(t, 4, ratio, 0.4)
}

func TestEmptyMesh(t *testing.T) {
	m, err := mesh.New(nil, nil)
	require.NoError(t, err)

	for _, in := range []*mesh.TriangleMesh{nil, m} {
		run, err := New(in, testMaterial(t), voxelSize, 1e4, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, run.Particles().Len())
		assert.Equal(t, 0, run.Grid().ActiveCount())
	}
}

func TestMeshMutatedOnce(t *testing.T) {
	m := unitBox()
	orig := m.Clone()

	run, err := New(m, testMaterial(t), voxelSize, 1e3, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, voxelSize, run.Transform().VoxelSize)

	for i := 0; i < m.VertexCount(); i++ {
		v, o := m.Vertex(i), orig.Vertex(i)
		for k := 0; k < 3; k++ {
			assert.Equal(t, float32(float64(o[k])/voxelSize), v[k])
		}
	}

	// Sampling the already adapted mesh again gives the same particles.
	again, err := New(m, testMaterial(t), voxelSize, 1e3, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, positions(run.Particles()), positions(again.Particles()))
}

func TestResourceLimits(t *testing.T) {
	mat := testMaterial(t)

	_, err := New(unitBox(), mat, voxelSize, 1e4, 1, 0, WithMaxParticles(10))
	assert.True(t, errors.Is(err, apperrors.ErrOutOfResources))

	_, err = New(unitBox(), mat, voxelSize, 1e4, 1, 0, WithMaxVoxels(100))
	assert.True(t, errors.Is(err, apperrors.ErrOutOfResources))

	run, err := New(unitBox(), mat, voxelSize, 1e4, 1, 0, WithMaxParticles(1000000))
	require.NoError(t, err)
	assert.NotZero(t, run.Particles().Len())

	// A density too large to count per voxel is a resource error, not a
	// silent one-point-per-voxel run.
	_, err = New(unitBox(), mat, voxelSize, 1e25, 1, 0, WithMaxParticles(1000000))
	assert.True(t, errors.Is(err, apperrors.ErrOutOfResources))
}

func TestFailureRestoresMesh(t *testing.T) {
	mat := testMaterial(t)
	tests := []struct {
		name    string
		density float64
		opts    []Option
	}{
		{"voxel limit", 1e4, []Option{WithMaxVoxels(100)}},
		{"particle limit", 1e4, []Option{WithMaxParticles(10)}},
		{"huge density", 1e25, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := unitBox()
			orig := m.Clone()

			_, err := New(m, mat, voxelSize, tt.density, 1, 0, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, 1.0, m.Unit())
			for i := 0; i < m.VertexCount(); i++ {
				v, o := m.Vertex(i), orig.Vertex(i)
				for k := 0; k < 3; k++ {
					assert.InDelta(t, o[k], v[k], 1e-6)
				}
			}
		})
	}
}

func TestInvalidParameters(t *testing.T) {
	mat := testMaterial(t)

	_, err := New(unitBox(), mat, 0, 1e4, 1, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
	_, err = New(unitBox(), nil, voxelSize, 1e4, 1, 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
	_, err = New(unitBox(), mat, voxelSize, 1e4, 1, 0, WithMaxParticles(-1))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidParameter))
}

func TestNonPositiveDensity(t *testing.T) {
	run, err := New(unitBox(), testMaterial(t), voxelSize, 0, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Particles().Len())
	assert.NotZero(t, run.Grid().ActiveCount())
}
