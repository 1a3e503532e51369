// Package cpu implements the CPU compute kernels registered in the dispatch
// tables of the algorithms.
//
// Kernels work on flat row-major slices and never allocate their outputs:
// every output slice is sized by the caller. Kernels assume their inputs were
// validated and panic on inconsistent sizes. Some kernels (QR, GMMStart)
// allocate scratch space internally; none of them return errors.
//
// Variants registered at a higher capability level (the *Unrolled kernels)
// keep the summation order of the baseline kernel, so every level produces
// bit-identical results.
package cpu

import (
	"github.com/born-ml/algos/internal/parallel"
)

// blockSize is the number of elements one worker handles at a time in
// element-wise kernels.
const blockSize = 1024

func loopConfig() parallel.Config {
	return parallel.DefaultConfig()
}

// forBlocks calls f on consecutive [lo, hi) ranges covering [0, n).
func forBlocks(n int, f func(lo, hi int)) {
	blocks := (n + blockSize - 1) / blockSize
	parallel.For(blocks, func(b int) {
		lo := b * blockSize
		f(lo, min(lo+blockSize, n))
	}, loopConfig())
}

// SplitAt decomposes shape around dim into the number of leading elements,
// the size of dim and the number of trailing elements, so that the flat index
// of (o, i, r) is (o*size+i)*inner + r.
func SplitAt(shape []int, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func checkLen(name string, got, want int) {
	if got < want {
		panic(name + ": slice shorter than required")
	}
}
