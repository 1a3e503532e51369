package cpu

import (
	"math/rand/v2"

	"github.com/born-ml/algos/internal/tensor"
)

// DropoutMask fills mask with 1/retainRatio for retained elements and 0 for
// dropped ones. Elements are drawn in order from rng, so a given seed always
// yields the same mask.
func DropoutMask[T tensor.Float](mask []T, retainRatio float64, rng *rand.Rand) {
	scale := T(1 / retainRatio)
	for i := range mask {
		if rng.Float64() < retainRatio {
			mask[i] = scale
		} else {
			mask[i] = 0
		}
	}
}

// Dropout computes y = x · mask element-wise. The backward pass uses the same
// kernel with the incoming gradient in place of x.
func Dropout[T tensor.Float](y, x, mask []T) {
	checkLen("dropout", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			y[i] = x[i] * mask[i]
		}
	})
}

// DropoutUnrolled is Dropout processing four elements per iteration.
func DropoutUnrolled[T tensor.Float](y, x, mask []T) {
	checkLen("dropout", len(y), len(x))
	forBlocks(len(x), func(lo, hi int) {
		i := lo
		for ; i+4 <= hi; i += 4 {
			y[i] = x[i] * mask[i]
			y[i+1] = x[i+1] * mask[i+1]
			y[i+2] = x[i+2] * mask[i+2]
			y[i+3] = x[i+3] * mask[i+3]
		}
		for ; i < hi; i++ {
			y[i] = x[i] * mask[i]
		}
	})
}
