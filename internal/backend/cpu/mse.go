package cpu

import (
	"github.com/born-ml/algos/internal/tensor"
)

// MSE evaluates the mean squared error objective of a linear model
//
//	F(θ) = 1/(2n) Σ_i (θ₀ + Σ_j θ_j·x_ij − y_i)²
//
// at theta [p+1] over data x [n, p] and targets y [n]. Each of value [1],
// gradient [p+1] and hessian [(p+1)·(p+1)] is computed only when non-nil.
func MSE[T tensor.Float](value, gradient, hessian, x, y, theta []T, n, p int) {
	inv := 1 / T(n)

	if value != nil || gradient != nil {
		var sum T
		if gradient != nil {
			clear(gradient[:p+1])
		}
		for i := 0; i < n; i++ {
			row := x[i*p : i*p+p]
			res := theta[0] - y[i]
			for j, xv := range row {
				res += theta[j+1] * xv
			}
			sum += res * res
			if gradient != nil {
				gradient[0] += res
				for j, xv := range row {
					gradient[j+1] += res * xv
				}
			}
		}
		if value != nil {
			value[0] = sum * inv / 2
		}
		if gradient != nil {
			for j := range gradient[:p+1] {
				gradient[j] *= inv
			}
		}
	}

	if hessian != nil {
		d := p + 1
		clear(hessian[:d*d])
		for i := 0; i < n; i++ {
			row := x[i*p : i*p+p]
			hessian[0]++
			for a, xa := range row {
				hessian[a+1] += xa
				for b := a; b < p; b++ {
					hessian[(a+1)*d+b+1] += xa * row[b]
				}
			}
		}
		for a := 0; a < d; a++ {
			for b := a; b < d; b++ {
				hessian[a*d+b] *= inv
				hessian[b*d+a] = hessian[a*d+b]
			}
		}
	}
}
