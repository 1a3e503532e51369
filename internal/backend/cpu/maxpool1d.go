package cpu

import (
	"math"

	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

// Pool1D describes a one-dimensional pooling window over the middle axis of
// an [Outer, Length, Inner] decomposition of the input.
type Pool1D struct {
	Outer, Length, Inner int
	KernelSize           int
	Stride               int
	Padding              int
}

// OutputLength returns the number of windows along the pooled axis:
//
//	(length + 2*padding - kernelSize) / stride + 1
func (p Pool1D) OutputLength() int {
	return (p.Length+2*p.Padding-p.KernelSize)/p.Stride + 1
}

// MaxPool1D takes the maximum of every window along the pooled axis. Padded
// positions never win. selected receives the input position of each maximum
// along the pooled axis; on ties the first position wins.
//
// Input shape:  [outer, length, inner]
// Output shape: [outer, outLength, inner]
//
// Example (kernel=2, stride=2, padding=0):
//
//	Input: [1, 5, 3, 2]   Output: [5, 3]   Selected: [1, 2]
func MaxPool1D[T tensor.Float](y []T, selected []int32, x []T, p Pool1D) {
	outLen := p.OutputLength()
	checkLen("maxpool1d", len(y), p.Outer*outLen*p.Inner)
	checkLen("maxpool1d", len(selected), p.Outer*outLen*p.Inner)

	parallel.For(p.Outer*p.Inner, func(row int) {
		o, r := row/p.Inner, row%p.Inner
		in := o*p.Length*p.Inner + r
		out := o*outLen*p.Inner + r

		for w := 0; w < outLen; w++ {
			start := w*p.Stride - p.Padding
			lo, hi := max(start, 0), min(start+p.KernelSize, p.Length)

			maxVal := math.Inf(-1)
			best := lo
			for l := lo; l < hi; l++ {
				if v := float64(x[in+l*p.Inner]); v > maxVal {
					maxVal, best = v, l
				}
			}
			y[out+w*p.Inner] = x[in+best*p.Inner]
			selected[out+w*p.Inner] = int32(best) //nolint:gosec // best < Length, validated to fit int32
		}
	}, loopConfig())
}

// MaxPool1DBackward routes each incoming gradient element to the input
// position that won its window. Positions that won several windows receive
// the sum; positions that won none receive zero.
func MaxPool1DBackward[T tensor.Float](grad, g []T, selected []int32, p Pool1D) {
	outLen := p.OutputLength()
	checkLen("maxpool1d backward", len(grad), p.Outer*p.Length*p.Inner)

	// Rows are independent; within a row windows overlap when stride < kernel,
	// so each row is accumulated by a single worker.
	parallel.For(p.Outer*p.Inner, func(row int) {
		o, r := row/p.Inner, row%p.Inner
		in := o*p.Length*p.Inner + r
		out := o*outLen*p.Inner + r

		for l := 0; l < p.Length; l++ {
			grad[in+l*p.Inner] = 0
		}
		for w := 0; w < outLen; w++ {
			l := int(selected[out+w*p.Inner])
			grad[in+l*p.Inner] += g[out+w*p.Inner]
		}
	}, loopConfig())
}
