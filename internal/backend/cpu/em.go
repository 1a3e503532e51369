package cpu

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/algos/internal/parallel"
	"github.com/born-ml/algos/internal/tensor"
)

// varianceFloor keeps the starting covariance positive definite when a
// feature is constant.
const varianceFloor = 1e-6

// GMMInit configures the starting-point search of a Gaussian mixture.
type GMMInit struct {
	Components int    // Number of mixture components k
	Trials     int    // Number of random starting points tried
	Seed       uint64 // Seed of the random mean selection
}

// GMMStart computes starting weights [k], means [k, p] and covariances
// [k, p, p] for a k-component Gaussian mixture over x [n, p].
//
// Each trial picks k distinct rows of x as means. All components share equal
// weights and the diagonal covariance of the whole data set. The trial with
// the highest log-likelihood wins; the first one wins ties. The returned value
// is the winning log-likelihood.
//
// x must hold finite values and k must not exceed n. The kernel allocates its
// float64 working copy of x.
func GMMStart[T tensor.Float](weights, means, covs, x []T, n, p int, cfg GMMInit) float64 {
	k := cfg.Components
	checkLen("em init", len(weights), k)
	checkLen("em init", len(means), k*p)
	checkLen("em init", len(covs), k*p*p)
	checkLen("em init observations", n, k)

	data := make([]float64, n*p)
	for i := range data {
		data[i] = float64(x[i])
	}
	variance := columnVariance(data, n, p)

	cov := mat.NewSymDense(p, nil)
	for j, v := range variance {
		cov.SetSym(j, j, v)
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(cov); !ok {
		panic("em init: covariance is not positive definite")
	}

	// Draw every trial up front so the selection only depends on the seed.
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	picks := make([][]int, cfg.Trials)
	for t := range picks {
		picks[t] = rng.Perm(n)[:k]
	}

	logLik := make([]float64, cfg.Trials)
	parallel.For(cfg.Trials, func(t int) {
		logLik[t] = mixtureLogLikelihood(data, n, p, picks[t], &chol)
	}, loopConfig())

	best := 0
	for t := 1; t < cfg.Trials; t++ {
		if logLik[t] > logLik[best] || math.IsNaN(logLik[best]) {
			best = t
		}
	}

	for c, row := range picks[best] {
		weights[c] = T(1 / float64(k))
		for j := 0; j < p; j++ {
			means[c*p+j] = T(data[row*p+j])
		}
		block := covs[c*p*p : (c+1)*p*p]
		clear(block)
		for j, v := range variance {
			block[j*p+j] = T(v)
		}
	}
	return logLik[best]
}

func columnVariance(data []float64, n, p int) []float64 {
	mean := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			mean[j] += data[i*p+j]
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	variance := make([]float64, p)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			d := data[i*p+j] - mean[j]
			variance[j] += d * d
		}
	}
	for j := range variance {
		variance[j] = max(variance[j]/float64(n), varianceFloor)
	}
	return variance
}

// mixtureLogLikelihood returns Σ_i log Σ_c (1/k)·N(x_i | x_rows[c], Σ) for
// the shared covariance Σ given by its Cholesky factorization.
func mixtureLogLikelihood(data []float64, n, p int, rows []int, chol *mat.Cholesky) float64 {
	k := len(rows)
	norm := -0.5*(float64(p)*math.Log(2*math.Pi)+chol.LogDet()) - math.Log(float64(k))

	diff := mat.NewVecDense(p, nil)
	var sol mat.VecDense
	terms := make([]float64, k)
	var total float64
	for i := 0; i < n; i++ {
		for c, row := range rows {
			for j := 0; j < p; j++ {
				diff.SetVec(j, data[i*p+j]-data[row*p+j])
			}
			if err := chol.SolveVecTo(&sol, diff); err != nil {
				// An ill-conditioned solve still yields a usable result.
				var cond mat.Condition
				if !errors.As(err, &cond) {
					return math.NaN()
				}
			}
			terms[c] = norm - 0.5*mat.Dot(diff, &sol)
		}
		total += logSumExp(terms)
	}
	return total
}

func logSumExp(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		m = math.Max(m, x)
	}
	if math.IsInf(m, -1) {
		return m
	}
	var s float64
	for _, x := range v {
		s += math.Exp(x - m)
	}
	return m + math.Log(s)
}
