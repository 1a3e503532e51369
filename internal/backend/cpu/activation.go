package cpu

import (
	"math"

	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softplus is log(1 + exp(x)) without overflow for large x.
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}

// Logistic computes y = 1 / (1 + exp(-x)) element-wise.
func Logistic[T tensor.Float](y, x []T) {
	checkLen("logistic", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] = T(sigmoid(float64(x[i])))
		}
	})
}

// LogisticUnrolled is Logistic processing four elements per iteration.
func LogisticUnrolled[T tensor.Float](y, x []T) {
	checkLen("logistic", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		i := lo
		for ; i+4 <= hi; i += 4 {
			y[i] = T(sigmoid(float64(x[i])))
			y[i+1] = T(sigmoid(float64(x[i+1])))
			y[i+2] = T(sigmoid(float64(x[i+2])))
			y[i+3] = T(sigmoid(float64(x[i+3])))
		}
		for ; i < hi; i++ {
			y[i] = T(sigmoid(float64(x[i])))
		}
	})
}

// LogisticBackward computes grad = g · v · (1 - v) where v is the forward value.
func LogisticBackward[T tensor.Float](grad, g, v []T) {
	checkLen("logistic backward", len(grad), len(g))
	forBlocks(len(g), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			grad[i] = g[i] * v[i] * (1 - v[i])
		}
	})
}

// SmoothReLU computes y = log(1 + exp(x)) element-wise.
func SmoothReLU[T tensor.Float](y, x []T) {
	checkLen("smoothrelu", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] = T(softplus(float64(x[i])))
		}
	})
}

// SmoothReLUUnrolled is SmoothReLU processing four elements per iteration.
func SmoothReLUUnrolled[T tensor.Float](y, x []T) {
	checkLen("smoothrelu", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		i := lo
		for ; i+4 <= hi; i += 4 {
			y[i] = T(softplus(float64(x[i])))
			y[i+1] = T(softplus(float64(x[i+1])))
			y[i+2] = T(softplus(float64(x[i+2])))
			y[i+3] = T(softplus(float64(x[i+3])))
		}
		for ; i < hi; i++ {
			y[i] = T(softplus(float64(x[i])))
		}
	})
}

// SmoothReLUBackward computes grad = g · sigmoid(x) where x is the forward input.
func SmoothReLUBackward[T tensor.Float](grad, g, x []T) {
	checkLen("smoothrelu backward", len(grad), len(g))
	forBlocks(len(g), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			grad[i] = g[i] * T(sigmoid(float64(x[i])))
		}
	})
}

// Softmax computes softmax along the middle axis of an [outer, size, inner]
// decomposition (see SplitAt).
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in the axis.
func Softmax[T tensor.Float](y, x []T, outer, size, inner int) {
	checkLen("softmax", len(y), outer*size*inner)
	parallel.For(outer*inner, func(row int) {
		base := (row/inner)*size*inner + row%inner

		// Find max for numerical stability
		maxVal := math.Inf(-1)
		for i := 0; i < size; i++ {
			maxVal = math.Max(maxVal, float64(x[base+i*inner]))
		}

		var sum float64
		for i := 0; i < size; i++ {
			sum += math.Exp(float64(x[base+i*inner]) - maxVal)
		}

		// Recompute the exponentials so each output is rounded to T once.
		for i := 0; i < size; i++ {
			idx := base + i*inner
			y[idx] = T(math.Exp(float64(x[idx])-maxVal) / sum)
		}
	}, loopConfig())
}

// SoftmaxBackward computes grad = v · (g - Σ g·v) along the softmax axis,
// where v is the forward value.
func SoftmaxBackward[T tensor.Float](grad, g, v []T, outer, size, inner int) {
	checkLen("softmax backward", len(grad), outer*size*inner)
	parallel.For(outer*inner, func(row int) {
		base := (row/inner)*size*inner + row%inner

		var dot T
		for i := 0; i < size; i++ {
			idx := base + i*inner
			dot += g[idx] * v[idx]
		}
		for i := 0; i < size; i++ {
			idx := base + i*inner
			grad[idx] = v[idx] * (g[idx] - dot)
		}
	}, loopConfig())
}
