/*package material describes the elastic materials which particles are
tagged with.*/
package material

import (
	"fmt"
	"math"

	apperrors "github.com/hhc2tech/mpm/errors"
	"github.com/hhc2tech/mpm/geom"
)

// Material is an immutable linear elastic material. It is built from
// engineering constants but stores only the derived Lame parameters.
type Material struct {
	velocity   geom.Vec
	mass       float32
	lambda, mu float32
}

// New derives the Lame parameters of a material from its Young's modulus and
// Poisson ratio:
//
//	lambda = E nu / ((1 + nu)(1 - 2 nu))
//	mu     = E / (2 (1 + nu))
//
// An error is returned if the Poisson ratio lies outside (-1, 0.5) or if any
// input is NaN or infinite.
func New(
	velocity geom.Vec, mass, youngModulus, poissonRatio float64,
) (*Material, error) {
	if !velocity.IsFinite() || !isFinite(mass) ||
		!isFinite(youngModulus) || !isFinite(poissonRatio) {
		return nil, apperrors.New(apperrors.CodeInvalidParameter,
			"material constants must be finite")
	}
	if poissonRatio <= -1 || poissonRatio >= 0.5 {
		return nil, apperrors.New(apperrors.CodeInvalidParameter, fmt.Sprintf(
			"Poisson ratio %g is outside (-1, 0.5)", poissonRatio,
		))
	}

	d := 1 / (1 + poissonRatio)
	lambda := youngModulus * poissonRatio / (1 - 2*poissonRatio) * d
	mu := 0.5 * youngModulus * d

	return &Material{
		velocity: velocity,
		mass:     float32(mass),
		lambda:   float32(lambda),
		mu:       float32(mu),
	}, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (m *Material) Velocity() geom.Vec { return m.velocity }
func (m *Material) Mass() float32 { return m.mass }
func (m *Material) Lambda() float32 { return m.lambda }
func (m *Material) Mu() float32 { return m.mu }

func (m *Material) String() string {
	return fmt.Sprintf("Material{velocity: %v, mass: %g, lambda: %g, mu: %g}",
		m.velocity, m.mass, m.lambda, m.mu)
}
