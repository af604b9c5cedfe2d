package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// Genome construction errors.
var (
	ErrOrganMismatch = errors.New("locomotor and eye counts differ")
	ErrOrganOverflow = errors.New("organ count exceeds controller size")
	ErrShape         = errors.New("controller parameter has wrong length")
)

// maxThrustAngle bounds a locomotor's thrust angle after mutation.
const maxThrustAngle = float32(math.Pi / 2)

// LocomotorGene places one locomotor on the body.
type LocomotorGene struct {
	Position float32 // angular position around the body (radians)
	Angle    float32 // thrust direction relative to the placement (radians)
}

// Genome is the heritable description of a cell: organ layout and
// controller parameters. A Genome is immutable once built; mutation
// produces a new one.
type Genome struct {
	Locomotors []LocomotorGene
	Eyes       []float32 // angular positions
	N          int       // controller state length
	Weights    []float32 // N*N row-major; row i holds state[i]'s outgoing weights
	Biases     []float32 // N
}

// NewGenome validates and builds a genome. The slices are copied.
// Locomotor and eye counts must match, and together fit within N.
func NewGenome(locomotors []LocomotorGene, eyes []float32, n int, weights, biases []float32) (*Genome, error) {
	if len(locomotors) != len(eyes) {
		return nil, fmt.Errorf("%w: %d locomotors, %d eyes", ErrOrganMismatch, len(locomotors), len(eyes))
	}
	if len(locomotors)+len(eyes) > n {
		return nil, fmt.Errorf("%w: %d organs, N=%d", ErrOrganOverflow, len(locomotors)+len(eyes), n)
	}
	if len(weights) != n*n {
		return nil, fmt.Errorf("%w: weights has %d elements, want %d", ErrShape, len(weights), n*n)
	}
	if len(biases) != n {
		return nil, fmt.Errorf("%w: biases has %d elements, want %d", ErrShape, len(biases), n)
	}

	return &Genome{
		Locomotors: append([]LocomotorGene(nil), locomotors...),
		Eyes:       append([]float32(nil), eyes...),
		N:          n,
		Weights:    append([]float32(nil), weights...),
		Biases:     append([]float32(nil), biases...),
	}, nil
}

// RandomGenome builds a genome with the given layout and controller
// parameters drawn from Normal(0, sigma).
func RandomGenome(rng *rand.Rand, locomotors []LocomotorGene, eyes []float32, n int, sigma float32) (*Genome, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative N", ErrShape)
	}
	return NewGenome(locomotors, eyes, n, RandomVector(rng, n*n, sigma), RandomVector(rng, n, sigma))
}

// RandomVector returns n samples from Normal(0, sigma).
func RandomVector(rng *rand.Rand, n int, sigma float32) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = float32(rng.NormFloat64()) * sigma
	}
	return v
}

// Mutate returns a perturbed copy of the genome. Organ placements and
// thrust angles receive Normal(0, layoutSigma) noise, with thrust angles
// clamped to [-pi/2, pi/2]; weights and biases receive Normal(0, weightSigma).
// Shapes are preserved, so the result is always valid.
func (g *Genome) Mutate(rng *rand.Rand, layoutSigma, weightSigma float32) *Genome {
	child := &Genome{
		Locomotors: make([]LocomotorGene, len(g.Locomotors)),
		Eyes:       make([]float32, len(g.Eyes)),
		N:          g.N,
		Weights:    make([]float32, len(g.Weights)),
		Biases:     make([]float32, len(g.Biases)),
	}

	for i, gene := range g.Locomotors {
		pos := gene.Position + float32(rng.NormFloat64())*layoutSigma
		angle := gene.Angle + float32(rng.NormFloat64())*layoutSigma
		child.Locomotors[i] = LocomotorGene{
			Position: pos,
			Angle:    clamp32(angle, -maxThrustAngle, maxThrustAngle),
		}
	}
	for i, pos := range g.Eyes {
		child.Eyes[i] = pos + float32(rng.NormFloat64())*layoutSigma
	}
	for i, w := range g.Weights {
		child.Weights[i] = w + float32(rng.NormFloat64())*weightSigma
	}
	for i, b := range g.Biases {
		child.Biases[i] = b + float32(rng.NormFloat64())*weightSigma
	}

	return child
}

// clamp32 clamps x to [lo, hi].
func clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
