package cpu

import (
	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

// FullyConnectedForward computes y = x·w + b.
//
//	x: [n, k], w: [k, m], b: [m], y: [n, m]
//
// Each output starts from its bias and accumulates the k products in order.
func FullyConnectedForward[T tensor.Float](y, x, w, b []T, n, k, m int) {
	checkLen("fullyconnected", len(y), n*m)
	parallel.For(n, func(i int) {
		row := x[i*k : i*k+k]
		out := y[i*m : i*m+m]
		for j := 0; j < m; j++ {
			acc := b[j]
			for kk, xv := range row {
				acc += xv * w[kk*m+j]
			}
			out[j] = acc
		}
	}, loopConfig())
}

// FullyConnectedForwardUnrolled is FullyConnectedForward computing four
// outputs per pass over the input row. Every output keeps its own
// accumulator, so the result matches FullyConnectedForward exactly.
func FullyConnectedForwardUnrolled[T tensor.Float](y, x, w, b []T, n, k, m int) {
	checkLen("fullyconnected", len(y), n*m)
	parallel.For(n, func(i int) {
		row := x[i*k : i*k+k]
		out := y[i*m : i*m+m]
		j := 0
		for ; j+4 <= m; j += 4 {
			a0, a1, a2, a3 := b[j], b[j+1], b[j+2], b[j+3]
			for kk, xv := range row {
				wr := w[kk*m+j : kk*m+j+4]
				a0 += xv * wr[0]
				a1 += xv * wr[1]
				a2 += xv * wr[2]
				a3 += xv * wr[3]
			}
			out[j], out[j+1], out[j+2], out[j+3] = a0, a1, a2, a3
		}
		for ; j < m; j++ {
			acc := b[j]
			for kk, xv := range row {
				acc += xv * w[kk*m+j]
			}
			out[j] = acc
		}
	}, loopConfig())
}

// FullyConnectedBackward computes the derivatives of a fully-connected layer
// from the incoming gradient g [n, m], the forward input x [n, k] and the
// weights w [k, m]:
//
//	grad = g·wᵀ           [n, k]
//	wDer = xᵀ·g / n       [k, m]
//	bDer = Σ_rows g / n   [m]
func FullyConnectedBackward[T tensor.Float](grad, wDer, bDer, g, x, w []T, n, k, m int) {
	checkLen("fullyconnected backward", len(grad), n*k)
	cfg := loopConfig()

	parallel.For(n, func(i int) {
		gr := g[i*m : i*m+m]
		for kk := 0; kk < k; kk++ {
			wr := w[kk*m : kk*m+m]
			var acc T
			for j, gv := range gr {
				acc += gv * wr[j]
			}
			grad[i*k+kk] = acc
		}
	}, cfg)

	inv := 1 / T(n)
	parallel.For(k, func(kk int) {
		for j := 0; j < m; j++ {
			var acc T
			for i := 0; i < n; i++ {
				acc += x[i*k+kk] * g[i*m+j]
			}
			wDer[kk*m+j] = acc * inv
		}
	}, cfg)

	for j := 0; j < m; j++ {
		var acc T
		for i := 0; i < n; i++ {
			acc += g[i*m+j]
		}
		bDer[j] = acc * inv
	}
}
