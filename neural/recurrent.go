// Package neural provides the recurrent controllers that drive cells and
// the heritable genomes they are built from.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Brain is a recurrent controller: a genome's weights and biases plus the
// working state carried between decisions.
//
// The state vector is split into three contiguous segments after each step:
//
//	[0, L)      raw recurrent values (L = number of locomotors)
//	[L, N-E)    hidden, tanh
//	[N-E, N)    outputs, logistic sigmoid (E = number of eyes)
//
// Sensor values are injected into [0, E) before each step.
type Brain struct {
	Genome *Genome
	State  []float32

	scratch []float32 // Gemv destination, len N
}

// NewBrain pairs a genome with an initial state. The state is copied.
func NewBrain(g *Genome, state []float32) (*Brain, error) {
	if len(state) != g.N {
		return nil, fmt.Errorf("%w: state has %d elements, want %d", ErrShape, len(state), g.N)
	}
	return &Brain{
		Genome:  g,
		State:   append([]float32(nil), state...),
		scratch: make([]float32, g.N),
	}, nil
}

// NumLocomotors returns the locomotor count the controller drives.
func (b *Brain) NumLocomotors() int { return len(b.Genome.Locomotors) }

// NumEyes returns the eye count the controller reads.
func (b *Brain) NumEyes() int { return len(b.Genome.Eyes) }

// Step injects sensor values, advances the state one recurrent update and
// returns the output segment. The returned slice aliases State.
//
// state <- state . W + b, then tanh over the hidden segment and sigmoid
// over the output segment. Extra sensor values beyond the eye count are
// ignored.
func (b *Brain) Step(sensors []float32) []float32 {
	g := b.Genome
	n := g.N
	numEyes := len(g.Eyes)

	for i := 0; i < numEyes && i < len(sensors); i++ {
		b.State[i] = sensors[i]
	}

	if len(b.scratch) != n {
		b.scratch = make([]float32, n)
	}
	copy(b.scratch, g.Biases)

	// Row vector times row-major matrix: y = W^T x + y
	blas32.Gemv(blas.Trans, 1,
		blas32.General{Rows: n, Cols: n, Stride: n, Data: g.Weights},
		blas32.Vector{N: n, Inc: 1, Data: b.State},
		1,
		blas32.Vector{N: n, Inc: 1, Data: b.scratch},
	)
	copy(b.State, b.scratch)

	hidden := b.State[len(g.Locomotors) : n-numEyes]
	for i, x := range hidden {
		hidden[i] = float32(math.Tanh(float64(x)))
	}

	outputs := b.State[n-numEyes:]
	for i, x := range outputs {
		outputs[i] = sigmoid(x)
	}

	return outputs
}

// Outputs returns the output segment of the current state.
func (b *Brain) Outputs() []float32 {
	return b.State[b.Genome.N-len(b.Genome.Eyes):]
}

// Offspring returns a child brain with a mutated genome and a copy of the
// parent's current state.
func (b *Brain) Offspring(rng *rand.Rand, layoutSigma, weightSigma float32) *Brain {
	return &Brain{
		Genome:  b.Genome.Mutate(rng, layoutSigma, weightSigma),
		State:   append([]float32(nil), b.State...),
		scratch: make([]float32, b.Genome.N),
	}
}

// sigmoid is the logistic function 1/(1+e^-x).
func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}
