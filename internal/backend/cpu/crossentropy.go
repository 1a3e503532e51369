package cpu

import (
	"math"

	"github.com/born-ml/algos/internal/tensor"
)

// probabilityFloor keeps log and division finite for zero probabilities.
const probabilityFloor = 1e-30

// CrossEntropy evaluates the categorical cross entropy
//
//	F(p) = -1/n Σ_i log p[i, y_i]
//
// of probabilities p [n, k] against class labels y [n], stored as whole
// numbers in [0, k). value [1] and gradient [n·k], the derivative with
// respect to p, are computed only when non-nil.
func CrossEntropy[T tensor.Float](value, gradient, prob, labels []T, n, k int) {
	checkLen("crossentropy", len(prob), n*k)
	inv := 1 / float64(n)

	if gradient != nil {
		checkLen("crossentropy gradient", len(gradient), n*k)
		clear(gradient[:n*k])
	}
	var sum float64
	for i := 0; i < n; i++ {
		c := int(labels[i])
		p := max(float64(prob[i*k+c]), probabilityFloor)
		sum -= math.Log(p)
		if gradient != nil {
			gradient[i*k+c] = T(-inv / p)
		}
	}
	if value != nil {
		value[0] = T(sum * inv)
	}
}
