/*package sample turns closed triangle meshes into clouds of material points.

A run rescales the mesh into the index space of a voxel grid, rasterizes it
into a signed distance field, scatters random points through the voxels
inside the surface, and tags each point with a material:

	mat, _ := material.New(geom.Vec{}, 1, 1e5, 0.2)
	run, err := sample.New(m, mat, 0.05, 8, 1, 0)
	if err != nil { ... }
	for _, p := range run.Particles() { ... }

New rewrites the vertices of the mesh in place; see volume.NewMeshAdapter.*/
package sample

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/material"
	"github.com/hhc2tech/mpm/math/rand"
	"github.com/hhc2tech/mpm/mesh"
	"github.com/hhc2tech/mpm/particle"
	"github.com/hhc2tech/mpm/scatter"
	"github.com/hhc2tech/mpm/volume"
)

const (
	// ExteriorBand is the width in voxels of the band rasterized outside the
	// surface.
	ExteriorBand = 1.0
	// InteriorBand leaves the interior of the surface untruncated.
	InteriorBand = math.MaxFloat32
)

type config struct {
	log          *zap.Logger
	generator    rand.GeneratorType
	workers      int
	maxVoxels    int
	maxParticles int
}

// Option configures a sampling run.
type Option func(*config)

// WithLogger sets the logger used for progress messages.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithGenerator selects the random engine. The default is rand.MT11213B.
func WithGenerator(gt rand.GeneratorType) Option {
	return func(c *config) { c.generator = gt }
}

// WithWorkers sets the number of rasterization goroutines.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithMaxVoxels limits the size of the distance grid.
func WithMaxVoxels(n int) Option {
	return func(c *config) { c.maxVoxels = n }
}

// WithMaxParticles limits the number of particles a run may produce.
func WithMaxParticles(n int) Option {
	return func(c *config) { c.maxParticles = n }
}

// MeshToParticle is the result of sampling a mesh.
type MeshToParticle struct {
	mat          *material.Material
	xform        geom.Transform
	grid         *volume.Grid
	particles    particle.Collection
	stats        scatter.Stats
	maxParticles int
}

var _ scatter.PointAdder = &MeshToParticle{}

// New samples m with density*voxelSize expected points per unit volume and
// returns the resulting particles, each tagged with mat. The same inputs
// always produce the same particles in the same order.
//
// New leaves m in the index space of the grid, as NewMeshAdapter does. If
// rasterization or scattering fails, m is returned to the unit it had before
// the call.
//
// A mesh with no triangles produces no particles and no error.
func New(
	m *mesh.TriangleMesh, mat *material.Material,
	voxelSize, density, spread float64, seed uint32, opts ...Option,
) (*MeshToParticle, error) {
	c := &config{generator: rand.MT11213B}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if mat == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParameter, "nil material")
	}
	if c.maxParticles < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"particle limit %d must be non-negative", c.maxParticles,
		))
	}

	start := time.Now()
	restore := func() {}
	if m != nil {
		unit := m.Unit()
		restore = func() { _ = m.Rescale(unit) }
	}
	ad, err := volume.NewMeshAdapter(m, voxelSize)
	if err != nil {
		return nil, err
	}
	c.log.Debug("adapted mesh to index space",
		zap.Int("vertices", ad.PointCount()),
		zap.Int("triangles", ad.PolygonCount()),
		zap.Float64("voxelSize", voxelSize),
	)

	opt := volume.Options{
		ExteriorBand: ExteriorBand,
		InteriorBand: InteriorBand,
		Workers:      c.workers,
		MaxVoxels:    c.maxVoxels,
		Logger:       c.log,
	}
	grid, err := volume.MeshToVolume(ad, ad.Transform(), opt)
	if err != nil {
		restore()
		return nil, err
	}
	c.log.Debug("rasterized mesh",
		zap.Int("voxels", grid.VoxelCount()),
		zap.Int("activeVoxels", grid.ActiveCount()),
	)

	run := &MeshToParticle{
		mat:          mat,
		xform:        ad.Transform(),
		grid:         grid,
		maxParticles: c.maxParticles,
	}

	gen := rand.New(c.generator, seed)
	sc := scatter.NewDenseUniform(run, density*voxelSize, gen, spread)
	run.stats, err = sc.Scatter(grid)
	if err != nil {
		restore()
		return nil, err
	}

	c.log.Info("sampled mesh",
		zap.Int("particles", run.particles.Len()),
		zap.Int("candidates", run.stats.Candidates),
		zap.Stringer("generator", gen.Type()),
		zap.Uint32("seed", seed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return run, nil
}

// Add converts an index space point to world space and appends a particle
// carrying the run's material at that position.
func (run *MeshToParticle) Add(p r3.Vec) error {
	if run.maxParticles > 0 && run.particles.Len() >= run.maxParticles {
		return apperrors.New(apperrors.CodeOutOfResources, fmt.Sprintf(
			"more than %d particles requested", run.maxParticles,
		))
	}

	part := particle.New(run.xform.IndexToWorld(p))
	part.Apply(run.mat)
	run.particles.Add(part)
	return nil
}

// Particles returns the sampled particles in the order they were generated.
func (run *MeshToParticle) Particles() particle.Collection { return run.particles }

func (run *MeshToParticle) Grid() *volume.Grid { return run.grid }
func (run *MeshToParticle) Transform() geom.Transform { return run.xform }
func (run *MeshToParticle) Stats() scatter.Stats { return run.stats }
func (run *MeshToParticle) Material() *material.Material { return run.mat }
