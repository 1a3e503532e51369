// Package parallel provides the work-sharing loops kernels use to split
// data-parallel work across goroutines within a single compute call.
package parallel

import (
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/algos/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns the configuration taken from the environment.
func DefaultConfig() Config {
	n := envconfig.NumThreads()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: envconfig.MinChunk(),
	}
}

// Sequential is a configuration that never spawns goroutines.
var Sequential = Config{Enabled: false, NumWorkers: 1, MinChunkSize: 1}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
// Each index is visited exactly once, so f may write to disjoint slots of a
// shared output without locking.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				f(i)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ForBatch is optimized for the batch*channels iteration pattern.
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	n := batch * channels
	For(n, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
