package envconfig

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVar(t *testing.T) {
	t.Setenv(KeyMaxCapability, ` "VEC256" `)
	assert.Equal(t, "vec256", MaxCapability())
}

func TestNumThreads(t *testing.T) {
	cases := map[string]int{
		"":    runtime.NumCPU(),
		"4":   4,
		"0":   runtime.NumCPU(),
		"-2":  runtime.NumCPU(),
		"abc": runtime.NumCPU(),
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv(KeyNumThreads, value)
			assert.Equal(t, want, NumThreads())
		})
	}
}

func TestDebug(t *testing.T) {
	t.Setenv(KeyDebug, "")
	assert.False(t, Debug())
	t.Setenv(KeyDebug, "1")
	assert.True(t, Debug())
	t.Setenv(KeyDebug, "yes please")
	assert.True(t, Debug())
	t.Setenv(KeyDebug, "false")
	assert.False(t, Debug())
}

func TestValues(t *testing.T) {
	t.Setenv(KeyMinChunk, "16")
	t.Setenv(KeyMaxCapability, "baseline")

	values := Values()
	assert.Len(t, values, 4)
	got := map[string]string{}
	for i, kv := range values {
		if i > 0 {
			assert.Less(t, values[i-1][0], kv[0], "values must be sorted by name")
		}
		got[kv[0]] = kv[1]
	}
	assert.Equal(t, "16", got[KeyMinChunk])
	assert.Equal(t, "baseline", got[KeyMaxCapability])
}
