package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_VisitsEachIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	for _, n := range []int{0, 1, 7, 8, 33, 1000} {
		visits := make([]int32, n)
		For(n, func(i int) {
			atomic.AddInt32(&visits[i], 1)
		}, cfg)
		for i, v := range visits {
			assert.Equalf(t, int32(1), v, "n=%d index %d", n, i)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, func(i int) {
		order = append(order, i)
	}, Sequential)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_DisjointWritesAreDeterministic(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 8, MinChunkSize: 1}
	out := make([]float64, 257)
	For(len(out), func(i int) {
		out[i] = float64(i) * 0.5
	}, cfg)
	for i, v := range out {
		assert.Equal(t, float64(i)*0.5, v)
	}
}

func TestForBatch(t *testing.T) {
	batch, channels := 4, 8
	var hits [4][8]int32

	ForBatch(batch, channels, func(b, c int) {
		atomic.AddInt32(&hits[b][c], 1)
	}, Config{Enabled: true, NumWorkers: 3, MinChunkSize: 2})

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			assert.Equalf(t, int32(1), hits[b][c], "missing result at [%d][%d]", b, c)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("ALGOS_NUM_THREADS", "1")
	t.Setenv("ALGOS_MIN_CHUNK", "32")
	cfg := DefaultConfig()
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 32, cfg.MinChunkSize)

	t.Setenv("ALGOS_NUM_THREADS", "6")
	cfg = DefaultConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 6, cfg.NumWorkers)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential)
		}
	})
}
