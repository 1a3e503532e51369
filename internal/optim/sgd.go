package optim

import (
	"github.com/born-ml/algos/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum:
//
//	param = param - lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param = param - lr * velocity
type SGD struct {
	lr         float64
	momentum   float64
	velocities map[*tensor.Tensor]*tensor.Tensor
}

// SGDConfig holds configuration for SGD.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0, range: [0, 1))
}

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*tensor.Tensor]*tensor.Tensor),
	}
}

// Step applies one update to every parameter.
func (s *SGD) Step(updates ...Update) error {
	if err := check(updates); err != nil {
		return err
	}
	for _, u := range updates {
		var v *tensor.Tensor
		if s.momentum != 0 {
			v = state(s.velocities, u.Param)
		}
		switch u.Param.DType() {
		case tensor.Float32:
			sgdStep(tensor.Values[float32](u.Param), tensor.Values[float32](u.Grad), values[float32](v), s.lr, s.momentum)
		case tensor.Float64:
			sgdStep(tensor.Values[float64](u.Param), tensor.Values[float64](u.Grad), values[float64](v), s.lr, s.momentum)
		}
	}
	return nil
}

func sgdStep[T tensor.Float](p, g, v []T, lr, momentum float64) {
	if v == nil {
		for i := range p {
			p[i] -= T(lr) * g[i]
		}
		return
	}
	for i := range p {
		v[i] = T(momentum)*v[i] + g[i]
		p[i] -= T(lr) * v[i]
	}
}

// LR returns the learning rate.
func (s *SGD) LR() float64 { return s.lr }

// SetLR changes the learning rate for subsequent steps.
func (s *SGD) SetLR(lr float64) { s.lr = lr }

// Reset drops all velocities.
func (s *SGD) Reset() {
	for p, v := range s.velocities {
		v.Release()
		delete(s.velocities, p)
	}
}

func values[T tensor.Float](t *tensor.Tensor) []T {
	if t == nil {
		return nil
	}
	return tensor.Values[T](t)
}
