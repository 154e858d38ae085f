/*package particle contains the material point records produced by the
sampler.*/
package particle

import (
	"fmt"
	"math"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
	"github.com/hhc2tech/mpm/material"
)

// VolumeUnset is the Volume of a particle which has not been assigned one.
// The sampler never computes particle volumes.
const VolumeUnset float32 = -1

// Particle is a single material point.
type Particle struct {
	Position geom.WorldPos
	Velocity geom.Vec
	Mass     float32
	Volume   float32
	Lambda   float32
	Mu       float32
}

// New returns a particle at the given world space position with no material
// applied and no volume.
func New(pos geom.WorldPos) *Particle {
	return &Particle{Position: pos, Volume: VolumeUnset}
}

// Apply copies the velocity, mass, and Lame parameters of mat into p.
// Applying the same material repeatedly has no further effect.
func (p *Particle) Apply(mat *material.Material) {
	p.Velocity = mat.Velocity()
	p.Mass = mat.Mass()
	p.Lambda = mat.Lambda()
	p.Mu = mat.Mu()
}

// HasVolume returns true if a volume has been assigned to p.
func (p *Particle) HasVolume() bool {
	return p.Volume != VolumeUnset
}

// Collection is an insertion-ordered sequence of particles. Order carries no
// physical meaning.
type Collection []*Particle

func (c *Collection) Add(p *Particle) { *c = append(*c, p) }
func (c Collection) Len() int { return len(c) }

// Bounds returns the bounding box of the particle positions.
func (c Collection) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, p := range c {
		v := geom.Vec(p.Position)
		b.Add(&v)
	}
	return b
}

// TotalMass returns the summed mass of every particle.
func (c Collection) TotalMass() float64 {
	sum := 0.0
	for _, p := range c {
		sum += float64(p.Mass)
	}
	return sum
}

// AssignVolume splits total evenly between the particles of c. It must be
// invoked explicitly; nothing in the sampling pipeline calls it.
func (c Collection) AssignVolume(total float64) error {
	if !(total > 0) || math.IsInf(total, 0) {
		return apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"total particle volume %g must be positive and finite", total,
		))
	}
	if len(c) == 0 {
		return nil
	}

	vol := float32(total / float64(len(c)))
	for _, p := range c {
		p.Volume = vol
	}
	return nil
}
