// Package optim implements the parameter update rules that consume layer
// derivatives.
//
// A training step runs a forward and a backward layer Batch, then hands the
// pairs (weights, weightDerivatives) and (biases, biasDerivatives) to an
// Optimizer, which updates the parameters in place:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.05, Momentum: 0.9})
//	for range steps {
//	    _ = fwd.Compute()
//	    _ = bwd.Compute()
//	    _ = opt.Step(
//	        optim.Update{Param: fwd.Input.Weights(), Grad: bwd.Result().WeightDerivatives()},
//	        optim.Update{Param: fwd.Input.Biases(), Grad: bwd.Result().BiasDerivatives()},
//	    )
//	}
package optim

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

// Update pairs a parameter tensor with its derivative.
type Update struct {
	Param *tensor.Tensor
	Grad  *tensor.Tensor
}

// Optimizer applies derivative updates to parameters.
//
// Per-parameter state (velocities, moments) is keyed by the parameter
// tensor, so the same Param must be passed on every step.
type Optimizer interface {
	// Step updates every Param in place. Nothing is modified if any pair
	// fails validation.
	Step(updates ...Update) error

	// LR returns the current learning rate.
	LR() float64

	// Reset drops all per-parameter state.
	Reset()
}

func check(updates []Update) error {
	for _, u := range updates {
		if err := algorithm.CheckTensor(u.Param, "param", nil); err != nil {
			return err
		}
		if err := algorithm.CheckTensor(u.Grad, "grad", u.Param.Shape()); err != nil {
			return err
		}
		if u.Grad.DType() != u.Param.DType() {
			return algorithm.Validation(algorithm.ErrIncorrectTypeOfTensor, "grad", "%s, want %s", u.Grad.DType(), u.Param.DType())
		}
	}
	return nil
}

// state returns the buffer kept for p, allocating a zeroed one on first use
// or when the parameter changed shape.
func state(m map[*tensor.Tensor]*tensor.Tensor, p *tensor.Tensor) *tensor.Tensor {
	s, ok := m[p]
	if !ok || !s.Shape().Equal(p.Shape()) || s.DType() != p.DType() {
		s = tensor.MustNew(p.Shape(), p.DType())
		m[p] = s
	}
	return s
}
