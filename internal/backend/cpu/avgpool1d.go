package cpu

import (
	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

// AvgPool1D averages every window along the pooled axis. Padded positions
// count as zeros, so every window is divided by the full kernel size.
//
// Input shape:  [outer, length, inner]
// Output shape: [outer, outLength, inner]
//
// Example (kernel=2, stride=2, padding=0):
//
//	Input: [1, 5, 3, 2]   Output: [3, 2.5]
func AvgPool1D[T tensor.Float](y, x []T, p Pool1D) {
	outLen := p.OutputLength()
	checkLen("avgpool1d", len(y), p.Outer*outLen*p.Inner)
	inv := 1 / T(p.KernelSize)

	parallel.For(p.Outer*p.Inner, func(row int) {
		o, r := row/p.Inner, row%p.Inner
		in := o*p.Length*p.Inner + r
		out := o*outLen*p.Inner + r

		for w := 0; w < outLen; w++ {
			start := w*p.Stride - p.Padding
			lo, hi := max(start, 0), min(start+p.KernelSize, p.Length)
			var sum T
			for l := lo; l < hi; l++ {
				sum += x[in+l*p.Inner]
			}
			y[out+w*p.Inner] = sum * inv
		}
	}, loopConfig())
}

// AvgPool1DBackward spreads each incoming gradient element evenly over the
// unpadded positions of its window.
func AvgPool1DBackward[T tensor.Float](grad, g []T, p Pool1D) {
	outLen := p.OutputLength()
	checkLen("avgpool1d backward", len(grad), p.Outer*p.Length*p.Inner)
	inv := 1 / T(p.KernelSize)

	// Overlapping windows accumulate into the same row, one worker per row.
	parallel.For(p.Outer*p.Inner, func(row int) {
		o, r := row/p.Inner, row%p.Inner
		in := o*p.Length*p.Inner + r
		out := o*outLen*p.Inner + r

		for l := 0; l < p.Length; l++ {
			grad[in+l*p.Inner] = 0
		}
		for w := 0; w < outLen; w++ {
			start := w*p.Stride - p.Padding
			lo, hi := max(start, 0), min(start+p.KernelSize, p.Length)
			share := g[out+w*p.Inner] * inv
			for l := lo; l < hi; l++ {
				grad[in+l*p.Inner] += share
			}
		}
	}, loopConfig())
}
