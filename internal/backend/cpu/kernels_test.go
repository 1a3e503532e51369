package cpu

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-5

func randomSlice(n int, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, 1))
	out := make([]float32, n)
	for i := range out {
		out[i] = rng.Float32()*2 - 1
	}
	return out
}

func TestFullyConnectedForward(t *testing.T) {
	// x: [2, 3], w: [3, 2], b: [2]
	x := []float64{1, 2, 3, 4, 5, 6}
	w := []float64{1, 0, 0, 1, 1, 1}
	b := []float64{0.5, -0.5}
	y := make([]float64, 4)

	FullyConnectedForward(y, x, w, b, 2, 3, 2)
	assert.Equal(t, []float64{4.5, 4.5, 10.5, 10.5}, y)
}

func TestFullyConnectedForwardUnrolledMatchesBaseline(t *testing.T) {
	for _, m := range []int{1, 4, 7, 16} {
		n, k := 9, 13
		x := randomSlice(n*k, 1)
		w := randomSlice(k*m, 2)
		b := randomSlice(m, 3)

		base := make([]float32, n*m)
		unrolled := make([]float32, n*m)
		FullyConnectedForward(base, x, w, b, n, k, m)
		FullyConnectedForwardUnrolled(unrolled, x, w, b, n, k, m)
		assert.Equal(t, base, unrolled, "m=%d", m)
	}
}

func TestFullyConnectedBackward(t *testing.T) {
	// n=2, k=2, m=1
	g := []float64{1, 2}
	x := []float64{1, 2, 3, 4}
	w := []float64{10, 20}
	grad := make([]float64, 4)
	wDer := make([]float64, 2)
	bDer := make([]float64, 1)

	FullyConnectedBackward(grad, wDer, bDer, g, x, w, 2, 2, 1)
	assert.Equal(t, []float64{10, 20, 20, 40}, grad)
	assert.Equal(t, []float64{3.5, 5}, wDer)
	assert.Equal(t, []float64{1.5}, bDer)
}

func TestElementwiseActivations(t *testing.T) {
	x := []float64{-2, 0, 3}

	y := make([]float64, 3)
	Logistic(y, x)
	for i, v := range x {
		assert.InDelta(t, 1/(1+math.Exp(-v)), y[i], epsilon)
	}

	SmoothReLU(y, x)
	for i, v := range x {
		assert.InDelta(t, math.Log(1+math.Exp(v)), y[i], epsilon)
	}

	big := []float64{1000}
	out := make([]float64, 1)
	SmoothReLU(out, big)
	assert.Equal(t, 1000.0, out[0], "softplus must not overflow")
}

func TestUnrolledActivationsMatchBaseline(t *testing.T) {
	x := randomSlice(3*blockSize+5, 7)
	a := make([]float32, len(x))
	b := make([]float32, len(x))

	Logistic(a, x)
	LogisticUnrolled(b, x)
	assert.Equal(t, a, b)

	SmoothReLU(a, x)
	SmoothReLUUnrolled(b, x)
	assert.Equal(t, a, b)

	mask := randomSlice(len(x), 8)
	Dropout(a, x, mask)
	DropoutUnrolled(b, x, mask)
	assert.Equal(t, a, b)
}

func TestActivationBackward(t *testing.T) {
	g := []float64{1, 2}
	v := []float64{0.5, 0.25}
	grad := make([]float64, 2)

	LogisticBackward(grad, g, v)
	assert.Equal(t, []float64{0.25, 0.375}, grad)

	SmoothReLUBackward(grad, g, []float64{0, 0})
	assert.Equal(t, []float64{0.5, 1}, grad)
}

func TestSoftmax(t *testing.T) {
	// shape [2, 3], softmax along dim 1
	x := []float64{1, 2, 3, 1, 1, 1}
	y := make([]float64, 6)
	outer, size, inner := SplitAt([]int{2, 3}, 1)
	require.Equal(t, [3]int{2, 3, 1}, [3]int{outer, size, inner})

	Softmax(y, x, outer, size, inner)
	assert.InDelta(t, 1.0, y[0]+y[1]+y[2], epsilon)
	assert.InDelta(t, 1.0/3, y[4], epsilon)
	assert.Greater(t, y[2], y[1])

	// along dim 0: columns sum to one
	outer, size, inner = SplitAt([]int{2, 3}, 0)
	Softmax(y, x, outer, size, inner)
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 1.0, y[c]+y[3+c], epsilon)
	}
}

func TestSoftmax_Float32RoundsOnce(t *testing.T) {
	x32 := randomSlice(257, 7)
	x64 := make([]float64, len(x32))
	for i, v := range x32 {
		x32[i] = v * 20
		x64[i] = float64(x32[i])
	}
	y32 := make([]float32, len(x32))
	y64 := make([]float64, len(x64))
	Softmax(y32, x32, 1, len(x32), 1)
	Softmax(y64, x64, 1, len(x64), 1)

	for i := range y32 {
		require.Equal(t, float32(y64[i]), y32[i], "element %d", i)
	}
}

func TestSoftmaxBackwardMatchesFiniteDifference(t *testing.T) {
	x := []float64{0.1, -0.4, 0.7, 0.2}
	g := []float64{0.3, -1, 0.5, 2}
	v := make([]float64, 4)
	Softmax(v, x, 1, 4, 1)

	grad := make([]float64, 4)
	SoftmaxBackward(grad, g, v, 1, 4, 1)

	const h = 1e-6
	loss := func(in []float64) float64 {
		out := make([]float64, 4)
		Softmax(out, in, 1, 4, 1)
		var s float64
		for i := range out {
			s += g[i] * out[i]
		}
		return s
	}
	for i := range x {
		plus := append([]float64(nil), x...)
		minus := append([]float64(nil), x...)
		plus[i] += h
		minus[i] -= h
		assert.InDelta(t, (loss(plus)-loss(minus))/(2*h), grad[i], 1e-6)
	}
}

func TestDropoutMask(t *testing.T) {
	mask := make([]float64, 1000)
	DropoutMask(mask, 0.5, rand.New(rand.NewPCG(42, 0)))

	kept := 0
	for _, m := range mask {
		if m != 0 {
			assert.Equal(t, 2.0, m)
			kept++
		}
	}
	assert.InDelta(t, 500, kept, 80)

	again := make([]float64, 1000)
	DropoutMask(again, 0.5, rand.New(rand.NewPCG(42, 0)))
	assert.Equal(t, mask, again, "same seed, same mask")

	all := make([]float64, 10)
	DropoutMask(all, 1, rand.New(rand.NewPCG(1, 0)))
	for _, m := range all {
		assert.Equal(t, 1.0, m)
	}
}

func TestMaxPool1D(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		pool     Pool1D
		want     []float64
		selected []int32
	}{
		{
			name:     "kernel 2 stride 2",
			x:        []float64{1, 5, 3, 2},
			pool:     Pool1D{Outer: 1, Length: 4, Inner: 1, KernelSize: 2, Stride: 2},
			want:     []float64{5, 3},
			selected: []int32{1, 2},
		},
		{
			name:     "overlapping with padding",
			x:        []float64{4, 1, 2},
			pool:     Pool1D{Outer: 1, Length: 3, Inner: 1, KernelSize: 2, Stride: 1, Padding: 1},
			want:     []float64{4, 4, 2, 2},
			selected: []int32{0, 0, 2, 2},
		},
		{
			name:     "inner axis",
			x:        []float64{1, 9, 8, 2},
			pool:     Pool1D{Outer: 1, Length: 2, Inner: 2, KernelSize: 2, Stride: 1},
			want:     []float64{8, 9},
			selected: []int32{1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.pool.Outer * tt.pool.OutputLength() * tt.pool.Inner
			y := make([]float64, n)
			sel := make([]int32, n)
			MaxPool1D(y, sel, tt.x, tt.pool)
			assert.Equal(t, tt.want, y)
			assert.Equal(t, tt.selected, sel)
		})
	}
}

func TestMaxPool1DBackward(t *testing.T) {
	pool := Pool1D{Outer: 1, Length: 3, Inner: 1, KernelSize: 2, Stride: 1, Padding: 1}
	sel := []int32{0, 0, 2, 2}
	g := []float64{1, 2, 3, 4}
	grad := []float64{9, 9, 9}

	MaxPool1DBackward(grad, g, sel, pool)
	assert.Equal(t, []float64{3, 0, 7}, grad)
}

func TestQR(t *testing.T) {
	n, p := 4, 3
	a := []float64{
		2, -1, 0,
		1, 3, 1,
		0, 1, -2,
		1, 0, 1,
	}
	q := make([]float64, n*p)
	r := make([]float64, p*p)
	QR(q, r, a, n, p)

	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			var s float64
			for k := 0; k < p; k++ {
				s += q[i*p+k] * r[k*p+j]
			}
			assert.InDelta(t, a[i*p+j], s, 1e-9, "Q·R[%d,%d]", i, j)
		}
	}
	for a1 := 0; a1 < p; a1++ {
		for b1 := 0; b1 < p; b1++ {
			var s float64
			for i := 0; i < n; i++ {
				s += q[i*p+a1] * q[i*p+b1]
			}
			want := 0.0
			if a1 == b1 {
				want = 1
			}
			assert.InDelta(t, want, s, 1e-9, "QᵀQ[%d,%d]", a1, b1)
		}
	}
	for j := 0; j < p; j++ {
		assert.GreaterOrEqual(t, r[j*p+j], 0.0)
		for c := 0; c < j; c++ {
			assert.Equal(t, 0.0, r[j*p+c])
		}
	}
}

func TestMSE(t *testing.T) {
	// y = 1 + 2x fits exactly at theta = [1, 2]
	x := []float64{0, 1, 2}
	y := []float64{1, 3, 5}

	value := make([]float64, 1)
	gradient := make([]float64, 2)
	hessian := make([]float64, 4)
	MSE(value, gradient, hessian, x, y, []float64{1, 2}, 3, 1)
	assert.InDelta(t, 0, value[0], epsilon)
	assert.InDeltaSlice(t, []float64{0, 0}, gradient, epsilon)
	assert.InDeltaSlice(t, []float64{1, 1, 1, 5.0 / 3}, hessian, epsilon)

	// theta = [0, 0]: residuals -1, -3, -5
	MSE(value, gradient, nil, x, y, []float64{0, 0}, 3, 1)
	assert.InDelta(t, 35.0/6, value[0], epsilon)
	assert.InDeltaSlice(t, []float64{-3, -13.0 / 3}, gradient, epsilon)
}

func TestBoostingPredict(t *testing.T) {
	x := []float64{
		0.1, 5,
		0.9, 5,
		0.9, -5,
	}
	stumps := []Stump{
		{Feature: 0, Threshold: 0.5, Left: -1, Right: 1},
		{Feature: 1, Threshold: 0, Left: -1, Right: 1},
	}

	pred := make([]float64, 3)
	AdaBoostPredict(pred, x, 3, 2, stumps, []float64{1, 0.5})
	assert.Equal(t, []float64{-1, 1, 1}, pred)

	// two classes, one iteration: class 0 scores with stumps[0], class 1 with stumps[1]
	LogitBoostPredict(pred, x, 3, 2, 2, stumps)
	assert.Equal(t, []float64{1, 0, 0}, pred)
}

func TestGMMStart(t *testing.T) {
	x := []float64{
		0, 0,
		0.1, 0,
		10, 10,
		10.1, 10,
		0, 0.1,
		10, 10.1,
	}
	cfg := GMMInit{Components: 2, Trials: 8, Seed: 5}
	weights := make([]float64, 2)
	means := make([]float64, 4)
	covs := make([]float64, 8)

	ll := GMMStart(weights, means, covs, x, 6, 2, cfg)
	assert.False(t, math.IsNaN(ll))
	assert.Equal(t, []float64{0.5, 0.5}, weights)
	assert.Equal(t, 0.0, covs[1], "covariances are diagonal")
	assert.Greater(t, covs[0], 0.0)

	// the best start separates the two clusters
	assert.Greater(t, math.Abs(means[0]-means[2]), 5.0)

	again := make([]float64, 4)
	GMMStart(weights, again, covs, x, 6, 2, cfg)
	assert.Equal(t, means, again, "same seed, same start")

	assert.Panics(t, func() {
		GMMStart(make([]float64, 7), make([]float64, 14), make([]float64, 28), x, 6, 2, GMMInit{Components: 7, Trials: 1})
	}, "more components than observations violates the kernel contract")
}
