package cpu

import (
	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

// Stump is a decision stump: it answers Left when the feature value is below
// the threshold and Right otherwise.
type Stump struct {
	Feature   int
	Threshold float64
	Left      float64
	Right     float64
}

func evalStump[T tensor.Float](s Stump, row []T) float64 {
	if float64(row[s.Feature]) < s.Threshold {
		return s.Left
	}
	return s.Right
}

// AdaBoostPredict labels every row of x [n, p] with the sign of the weighted
// vote Σ alpha_t·h_t(x). A zero vote is labelled +1.
func AdaBoostPredict[T tensor.Float](pred, x []T, n, p int, stumps []Stump, alphas []float64) {
	checkLen("adaboost", len(pred), n)
	parallel.For(n, func(i int) {
		row := x[i*p : i*p+p]
		var vote float64
		for t, s := range stumps {
			vote += alphas[t] * evalStump(s, row)
		}
		if vote >= 0 {
			pred[i] = 1
		} else {
			pred[i] = -1
		}
	}, loopConfig())
}

// LogitBoostPredict labels every row of x [n, p] with the class k maximizing
// the additive score F_k(x) = Σ_m f_mk(x). stumps holds nClasses stumps per
// boosting iteration, iteration-major. The lowest class index wins ties.
func LogitBoostPredict[T tensor.Float](pred, x []T, n, p, nClasses int, stumps []Stump) {
	checkLen("logitboost", len(pred), n)
	iterations := len(stumps) / nClasses
	parallel.For(n, func(i int) {
		row := x[i*p : i*p+p]
		best, bestScore := 0, 0.0
		for k := 0; k < nClasses; k++ {
			var score float64
			for m := 0; m < iterations; m++ {
				score += evalStump(stumps[m*nClasses+k], row)
			}
			if k == 0 || score > bestScore {
				best, bestScore = k, score
			}
		}
		pred[i] = T(best)
	}, loopConfig())
}
