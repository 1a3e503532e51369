package cpu

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/algos/internal/tensor"
)

// QR computes the thin QR decomposition a = q·r of an [n, p] matrix with
// n >= p. q is [n, p] with orthonormal columns and r is [p, p] upper
// triangular.
//
// The factorization is normalized so that the diagonal of r is non-negative,
// which makes the decomposition of a full-rank matrix unique.
func QR[T tensor.Float](q, r, a []T, n, p int) {
	checkLen("qr", len(q), n*p)
	checkLen("qr", len(r), p*p)

	data := make([]float64, n*p)
	for i := range data {
		data[i] = float64(a[i])
	}

	var f mat.QR
	f.Factorize(mat.NewDense(n, p, data))

	var qFull, rFull mat.Dense
	f.QTo(&qFull)
	f.RTo(&rFull)

	for j := 0; j < p; j++ {
		sign := 1.0
		if rFull.At(j, j) < 0 {
			sign = -1
		}
		for i := 0; i < n; i++ {
			q[i*p+j] = T(sign * qFull.At(i, j))
		}
		for c := 0; c < p; c++ {
			if c < j {
				r[j*p+c] = 0
				continue
			}
			r[j*p+c] = T(sign * rFull.At(j, c))
		}
	}
}
