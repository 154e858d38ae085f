/*package rand provides seeded, reproducible random number generators.

Generators are never seeded from the clock: the same GeneratorType and seed
always produce the same stream on every platform.*/
package rand

import (
	"math"

	"gonum.org/v1/gonum/mathext/prng"
)

// GeneratorType selects the engine behind a Generator.
type GeneratorType uint8

const (
	// MT11213B is a Mersenne Twister with a period of 2^11213 - 1. It is the
	// default engine of the sampler.
	MT11213B GeneratorType = iota
	// MT19937 is the standard Mersenne Twister.
	MT19937
)

var generatorNames = map[GeneratorType]string{
	MT11213B: "MT11213B",
	MT19937:  "MT19937",
}

func (gt GeneratorType) String() string {
	if name, ok := generatorNames[gt]; ok {
		return name
	}
	return "Unknown"
}

// ParseGeneratorType returns the GeneratorType with the given name.
func ParseGeneratorType(name string) (gt GeneratorType, ok bool) {
	for t, n := range generatorNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Engine is a source of uniformly distributed 32-bit integers.
type Engine interface {
	Uint32() uint32
}

// Generator produces uniform floating point values from an Engine.
type Generator struct {
	engine Engine
	gt     GeneratorType
	seed   uint32
}

// New returns a generator of the given type seeded with seed.
func New(gt GeneratorType, seed uint32) *Generator {
	var engine Engine
	switch gt {
	case MT19937:
		mt := prng.NewMT19937()
		mt.Seed(uint64(seed))
		engine = mt
	default:
		gt = MT11213B
		engine = newMersenneTwister(&mt11213bParams, seed)
	}
	return &Generator{engine: engine, gt: gt, seed: seed}
}

func (gen *Generator) Type() GeneratorType { return gen.gt }
func (gen *Generator) Seed() uint32 { return gen.seed }

// Uint32 returns the next raw output of the underlying engine.
func (gen *Generator) Uint32() uint32 {
	return gen.engine.Uint32()
}

// Uniform01 returns a value in [0, 1) with 53 random bits built from two
// engine outputs, the first supplying the low half.
func (gen *Generator) Uniform01() float64 {
	lo := float64(gen.engine.Uint32())
	hi := float64(gen.engine.Uint32())
	x := (lo + hi*0x1p32) / 0x1p64
	if x >= 1 {
		return math.Nextafter(1, 0)
	}
	return x
}

// Uniform returns a uniform random value in [low, high).
func (gen *Generator) Uniform(low, high float64) float64 {
	return low + (high-low)*gen.Uniform01()
}

// UniformAt fills a buffer with uniform random values in [low, high).
func (gen *Generator) UniformAt(low, high float64, target []float64) {
	for i := range target {
		target[i] = gen.Uniform(low, high)
	}
}
