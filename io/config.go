// Package io reads job files and reads and writes particle outputs.
package io

import (
	"math"
	"strings"

	"gopkg.in/gcfg.v1"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/math/rand"
)

const (
	ExampleSampleFile = `[Sample]

#######################
# Required Parameters #
#######################

# Wavefront OBJ file containing a closed triangle or polygon mesh.
Mesh = path/to/mesh.obj
# File which the sampled particles will be written to.
Output = path/to/particles.bin

# Edge length of one voxel in mesh units. The mesh is rescaled to this unit
# before rasterization, so smaller voxels give finer surfaces and more
# particles.
VoxelSize = 0.05

# Number of particles per unit volume per unit voxel size. A voxel receives
# Density * VoxelSize^4 particles on average.
Density = 8

#######################
# Optional Parameters #
#######################

# Fraction of each voxel that particle jitter may cover. 1 fills the whole
# voxel, 0 places every particle at the voxel center.
# Spread = 1

# Seed for the random number generator. Runs with equal seeds and inputs
# produce identical particles.
# Seed = 0

# Output format must be one of [ Binary | Table ].
# OutputFormat = Binary

# Random engine must be one of [ MT11213B | MT19937 ].
# Generator = MT11213B

# Per-particle volume must be one of [ None | Mesh ]. Mesh divides the mesh
# volume evenly between the particles.
# Volume = None

# Threads used by the rasterizer. 0 uses every logical core.
# Workers = 0

# Allocation limits. MaxParticles = 0 means unlimited.
# MaxVoxels = 268435456
# MaxParticles = 0

# Writes a YAML summary of the run next to Output.
# Manifest = true

# LogFile = log.out
# Plot = particles.png`

	ExampleMaterialFile = `[Material]
# Initial velocity shared by every particle.
VelocityX = 0
VelocityY = 0
VelocityZ = 0

# Per-particle mass.
Mass = 1

# Elastic moduli. PoissonRatio must lie in (-1, 0.5).
YoungModulus = 1e5
PoissonRatio = 0.2`
)

// DefaultMaxVoxels is the voxel allocation limit used when none is given.
const DefaultMaxVoxels = 1 << 28

type OutputFormat int

const (
	Binary OutputFormat = iota
	Table
)

func (f OutputFormat) String() string {
	switch f {
	case Binary:
		return "Binary"
	case Table:
		return "Table"
	}
	return "Unknown"
}

// SampleConfig is the [Sample] section of a job file.
type SampleConfig struct {
	// Required
	Mesh, Output       string
	VoxelSize, Density float64

	// Optional
	Spread                           float64
	Seed                             int64
	OutputFormat, Generator, Volume  string
	Workers, MaxVoxels, MaxParticles int
	Manifest                         bool
	LogFile, Plot                    string
}

// MaterialConfig is the [Material] section of a job file.
type MaterialConfig struct {
	VelocityX, VelocityY, VelocityZ float64
	Mass                            float64
	YoungModulus, PoissonRatio      float64
}

type SampleWrapper struct {
	Sample   SampleConfig
	Material MaterialConfig
}

func DefaultSampleWrapper() *SampleWrapper {
	con := SampleConfig{}
	con.Spread = 1
	con.OutputFormat = Binary.String()
	con.Generator = rand.MT11213B.String()
	con.Volume = "None"
	con.MaxVoxels = DefaultMaxVoxels
	con.Manifest = true

	mat := MaterialConfig{}
	mat.Mass = 1
	mat.YoungModulus = 1e5
	mat.PoissonRatio = 0.2
	return &SampleWrapper{con, mat}
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0)
}

func (con *SampleConfig) ValidMesh() bool {
	return con.Mesh != ""
}
func (con *SampleConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SampleConfig) ValidVoxelSize() bool {
	return finitePositive(con.VoxelSize)
}
func (con *SampleConfig) ValidDensity() bool {
	return con.Density >= 0 && !math.IsInf(con.Density, 0)
}
func (con *SampleConfig) ValidSpread() bool {
	return con.Spread >= 0 && con.Spread <= 1
}
func (con *SampleConfig) ValidSeed() bool {
	return con.Seed >= 0 && con.Seed <= math.MaxUint32
}
func (con *SampleConfig) ValidOutputFormat() bool {
	_, ok := con.Format()
	return ok
}
func (con *SampleConfig) ValidGenerator() bool {
	_, ok := rand.ParseGeneratorType(con.Generator)
	return ok
}
func (con *SampleConfig) ValidVolume() bool {
	v := strings.ToLower(con.Volume)
	return v == "none" || v == "mesh"
}
func (con *SampleConfig) ValidWorkers() bool {
	return con.Workers >= 0
}
func (con *SampleConfig) ValidMaxVoxels() bool {
	return con.MaxVoxels > 0
}
func (con *SampleConfig) ValidMaxParticles() bool {
	return con.MaxParticles >= 0
}
func (con *SampleConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SampleConfig) ValidPlot() bool {
	return con.Plot != ""
}

// Format parses OutputFormat case-insensitively.
func (con *SampleConfig) Format() (OutputFormat, bool) {
	switch strings.ToLower(con.OutputFormat) {
	case "binary":
		return Binary, true
	case "table":
		return Table, true
	}
	return Binary, false
}

// MeshVolume reports whether particle volumes come from the mesh volume.
func (con *SampleConfig) MeshVolume() bool {
	return strings.ToLower(con.Volume) == "mesh"
}

func (mat *MaterialConfig) ValidVelocity() bool {
	for _, v := range []float64{mat.VelocityX, mat.VelocityY, mat.VelocityZ} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
func (mat *MaterialConfig) ValidMass() bool {
	return mat.Mass >= 0 && !math.IsInf(mat.Mass, 0)
}
func (mat *MaterialConfig) ValidYoungModulus() bool {
	return finitePositive(mat.YoungModulus)
}
func (mat *MaterialConfig) ValidPoissonRatio() bool {
	return mat.PoissonRatio > -1 && mat.PoissonRatio < 0.5
}

// Validate returns an InvalidParameter error naming the first bad field.
func (w *SampleWrapper) Validate() error {
	con, mat := &w.Sample, &w.Material
	checks := []struct {
		ok   bool
		name string
	}{
		{con.ValidMesh(), "Mesh"},
		{con.ValidOutput(), "Output"},
		{con.ValidVoxelSize(), "VoxelSize"},
		{con.ValidDensity(), "Density"},
		{con.ValidSpread(), "Spread"},
		{con.ValidSeed(), "Seed"},
		{con.ValidOutputFormat(), "OutputFormat"},
		{con.ValidGenerator(), "Generator"},
		{con.ValidVolume(), "Volume"},
		{con.ValidWorkers(), "Workers"},
		{con.ValidMaxVoxels(), "MaxVoxels"},
		{con.ValidMaxParticles(), "MaxParticles"},
		{mat.ValidVelocity(), "Velocity"},
		{mat.ValidMass(), "Mass"},
		{mat.ValidYoungModulus(), "YoungModulus"},
		{mat.ValidPoissonRatio(), "PoissonRatio"},
	}
	for _, c := range checks {
		if !c.ok {
			return apperrors.New(
				apperrors.CodeInvalidParameter,
				"invalid/non-existent '"+c.name+"' value",
			)
		}
	}
	return nil
}

// ReadSampleConfig reads a job file on top of the defaults and validates it.
func ReadSampleConfig(fname string) (*SampleWrapper, error) {
	wrap := DefaultSampleWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, apperrors.Wrap(
			apperrors.CodeInvalidInput, "reading "+fname, err,
		)
	}
	if err := wrap.Validate(); err != nil {
		return nil, err
	}
	return wrap, nil
}
