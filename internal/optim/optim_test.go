package optim

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/algorithms/layers/fullyconnected"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func fromSlice[T tensor.Float](t *testing.T, data []T, shape ...int) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return x
}

func TestSGD_SimpleUpdate(t *testing.T) {
	p := fromSlice(t, []float32{1, 2, 3}, 3)
	g := fromSlice(t, []float32{0.5, -1, 0}, 3)

	sgd := NewSGD(SGDConfig{LR: 0.1})
	require.NoError(t, sgd.Step(Update{Param: p, Grad: g}))
	assert.InDeltaSlice(t, []float32{0.95, 2.1, 3}, p.AsFloat32(), 1e-6)
}

func TestSGD_WithMomentum(t *testing.T) {
	p := fromSlice(t, []float64{1}, 1)
	g := fromSlice(t, []float64{1}, 1)

	sgd := NewSGD(SGDConfig{LR: 0.1, Momentum: 0.9})
	require.NoError(t, sgd.Step(Update{Param: p, Grad: g}))
	assert.InDelta(t, 0.9, p.AsFloat64()[0], 1e-12)

	// velocity = 0.9*1 + 1
	require.NoError(t, sgd.Step(Update{Param: p, Grad: g}))
	assert.InDelta(t, 0.71, p.AsFloat64()[0], 1e-12)

	sgd.Reset()
	require.NoError(t, sgd.Step(Update{Param: p, Grad: g}))
	assert.InDelta(t, 0.61, p.AsFloat64()[0], 1e-12)
}

func TestSGD_DefaultsAndLR(t *testing.T) {
	sgd := NewSGD(SGDConfig{})
	assert.InDelta(t, 0.01, sgd.LR(), 0)
	sgd.SetLR(0.5)
	assert.InDelta(t, 0.5, sgd.LR(), 0)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	p := fromSlice(t, []float32{1, 1}, 2)
	g := fromSlice(t, []float32{3, -0.01}, 2)

	adam := NewAdam(AdamConfig{LR: 0.1})
	require.NoError(t, adam.Step(Update{Param: p, Grad: g}))
	assert.Equal(t, 1, adam.Timestep())
	// bias correction makes the first step ±lr regardless of magnitude
	assert.InDeltaSlice(t, []float32{0.9, 1.1}, p.AsFloat32(), 1e-4)

	adam.Reset()
	assert.Equal(t, 0, adam.Timestep())
}

func TestStep_Validation(t *testing.T) {
	p := fromSlice(t, []float32{1, 2}, 2)
	tests := []struct {
		name string
		u    Update
		want error
	}{
		{"nil param", Update{Grad: p}, algorithm.ErrNullTensor},
		{"nil grad", Update{Param: p}, algorithm.ErrNullTensor},
		{"shape", Update{Param: p, Grad: fromSlice(t, []float32{1}, 1)}, algorithm.ErrIncorrectSizeOfDimension},
		{"dtype", Update{Param: p, Grad: fromSlice(t, []float64{1, 2}, 2)}, algorithm.ErrIncorrectTypeOfTensor},
		{"int param", Update{Param: tensor.MustNew(tensor.Shape{2}, tensor.Int32), Grad: p}, algorithm.ErrIncorrectTypeOfTensor},
	}
	for _, opt := range []Optimizer{NewSGD(SGDConfig{}), NewAdam(AdamConfig{})} {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before := append([]float32(nil), p.AsFloat32()...)
				ok := Update{Param: p, Grad: p}
				assert.ErrorIs(t, opt.Step(ok, tt.u), tt.want)
				assert.Equal(t, before, p.AsFloat32(), "no parameter is touched on failure")
			})
		}
	}
}

// fitLinear trains a fully-connected layer to reproduce a fixed linear map
// and returns the loss before and after training.
func fitLinear(t *testing.T, opt Optimizer, steps int) (first, last float64) {
	t.Helper()
	const n, k, m = 16, 3, 2
	rng := rand.New(rand.NewPCG(1, 2))
	x := make([]float64, n*k)
	for i := range x {
		x[i] = rng.Float64()*2 - 1
	}
	wTrue := []float64{1, -2, 0.5, 3, -1, 0.25}
	target := make([]float64, n*m)
	for i := range n {
		for j := range m {
			for l := range k {
				target[i*m+j] += x[i*k+l] * wTrue[l*m+j]
			}
		}
	}

	par := fullyconnected.Parameter{NOutputs: m}
	fwd, err := fullyconnected.NewForwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	bwd, err := fullyconnected.NewBackwardBatch(tensor.Float64, algorithm.DefaultDense, par)
	require.NoError(t, err)
	layers.Link(fwd.Result(), bwd.Input)

	fwd.Input.SetData(fromSlice(t, x, n, k))
	require.NoError(t, fullyconnected.InitializeWeights(fwd.Input, par, tensor.Float64, 3))
	g := tensor.MustNew(tensor.Shape{n, m}, tensor.Float64)
	bwd.Input.SetInputGradient(g)

	for s := range steps {
		require.NoError(t, fwd.Compute())
		y, dy := fwd.Result().Value().AsFloat64(), g.AsFloat64()
		loss := 0.0
		for i := range y {
			r := y[i] - target[i]
			loss += r * r / (2 * n)
			dy[i] = r // the backward layer averages over the batch
		}
		if s == 0 {
			first = loss
		}
		last = loss

		require.NoError(t, bwd.Compute())
		require.NoError(t, opt.Step(
			Update{Param: fwd.Input.Weights(), Grad: bwd.Result().WeightDerivatives()},
			Update{Param: fwd.Input.Biases(), Grad: bwd.Result().BiasDerivatives()},
		))
	}
	return first, last
}

func TestConvergence_FullyConnected(t *testing.T) {
	for name, opt := range map[string]Optimizer{
		"sgd":  NewSGD(SGDConfig{LR: 0.2, Momentum: 0.9}),
		"adam": NewAdam(AdamConfig{LR: 0.05}),
	} {
		t.Run(name, func(t *testing.T) {
			first, last := fitLinear(t, opt, 300)
			assert.Less(t, last, first/20)
		})
	}
}
