package optim

import (
	"math"

	"github.com/born-ml/algos/internal/tensor"
)

// Adam implements adaptive moment estimation.
//
//	m = beta1 * m + (1 - beta1) * grad
//	v = beta2 * v + (1 - beta2) * grad²
//	param = param - lr * m̂ / (sqrt(v̂) + eps)
//
// where m̂ and v̂ are the bias-corrected moments at timestep t.
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64
	t     int
	m     map[*tensor.Tensor]*tensor.Tensor
	v     map[*tensor.Tensor]*tensor.Tensor
}

// AdamConfig holds configuration for Adam.
type AdamConfig struct {
	LR    float64 // Learning rate (default: 0.001)
	Beta1 float64 // First moment decay (default: 0.9)
	Beta2 float64 // Second moment decay (default: 0.999)
	Eps   float64 // Numerical stability term (default: 1e-8)
}

// NewAdam creates an Adam optimizer.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Beta1 == 0 {
		config.Beta1 = 0.9
	}
	if config.Beta2 == 0 {
		config.Beta2 = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LR,
		beta1: config.Beta1,
		beta2: config.Beta2,
		eps:   config.Eps,
		m:     make(map[*tensor.Tensor]*tensor.Tensor),
		v:     make(map[*tensor.Tensor]*tensor.Tensor),
	}
}

// Step advances the timestep and applies one update to every parameter.
func (a *Adam) Step(updates ...Update) error {
	if err := check(updates); err != nil {
		return err
	}
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))
	for _, u := range updates {
		m, v := state(a.m, u.Param), state(a.v, u.Param)
		switch u.Param.DType() {
		case tensor.Float32:
			adamStep(tensor.Values[float32](u.Param), tensor.Values[float32](u.Grad),
				tensor.Values[float32](m), tensor.Values[float32](v), a, bc1, bc2)
		case tensor.Float64:
			adamStep(tensor.Values[float64](u.Param), tensor.Values[float64](u.Grad),
				tensor.Values[float64](m), tensor.Values[float64](v), a, bc1, bc2)
		}
	}
	return nil
}

func adamStep[T tensor.Float](p, g, m, v []T, a *Adam, bc1, bc2 float64) {
	for i := range p {
		gi := float64(g[i])
		mi := a.beta1*float64(m[i]) + (1-a.beta1)*gi
		vi := a.beta2*float64(v[i]) + (1-a.beta2)*gi*gi
		m[i], v[i] = T(mi), T(vi)
		p[i] -= T(a.lr * (mi / bc1) / (math.Sqrt(vi/bc2) + a.eps))
	}
}

// LR returns the learning rate.
func (a *Adam) LR() float64 { return a.lr }

// SetLR changes the learning rate for subsequent steps.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// Timestep returns the number of steps taken since creation or Reset.
func (a *Adam) Timestep() int { return a.t }

// Reset drops all moments and restarts the timestep.
func (a *Adam) Reset() {
	for _, s := range []map[*tensor.Tensor]*tensor.Tensor{a.m, a.v} {
		for p, t := range s {
			t.Release()
			delete(s, p)
		}
	}
	a.t = 0
}
