// Package dispatch selects, for each algorithm, the fastest kernel variant the
// running CPU supports.
//
// Kernel variants register themselves in a Table from init functions, keyed
// by (data type, method, capability level). Containers ask the table for the
// best entry once, at construction, and keep it for their lifetime.
package dispatch

import (
	"fmt"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/born-ml/algos/internal/envconfig"
)

// Capability is a CPU instruction-set tier a kernel variant requires.
// Levels are ordered: a CPU supporting a level supports every lower one.
type Capability int

// Capability levels, from least to most specialized.
const (
	Baseline Capability = iota // portable Go, every target
	Vec128                     // SSE4.2 on amd64, ASIMD (NEON) on arm64
	Vec256                     // AVX2 + FMA
	Vec512                     // AVX-512 F/BW/VL
)

// MaxCapability is the most specialized level known.
const MaxCapability = Vec512

// String returns the lowercase name of the level.
func (c Capability) String() string {
	switch c {
	case Baseline:
		return "baseline"
	case Vec128:
		return "vec128"
	case Vec256:
		return "vec256"
	case Vec512:
		return "vec512"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// ParseCapability converts a level name back into a Capability.
func ParseCapability(s string) (Capability, error) {
	for c := Baseline; c <= MaxCapability; c++ {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return Baseline, fmt.Errorf("unknown capability %q", s)
}

// Levels returns every level from most to least specialized.
func Levels() []Capability {
	levels := make([]Capability, 0, MaxCapability+1)
	for c := MaxCapability; c >= Baseline; c-- {
		levels = append(levels, c)
	}
	return levels
}

var detected = sync.OnceValue(func() Capability {
	level := cpuLevel()
	if s := envconfig.MaxCapability(); s != "" {
		limit, err := ParseCapability(s)
		if err != nil {
			klog.Warningf("ignoring %s: %v", envconfig.KeyMaxCapability, err)
		} else if limit < level {
			klog.V(1).Infof("capability %s capped to %s by %s", level, limit, envconfig.KeyMaxCapability)
			level = limit
		}
	}
	klog.V(1).Infof("detected CPU capability %s (features: %s)", level, strings.Join(Features(), ","))
	return level
})

// Detect returns the capability level of the running CPU. The CPU is inspected
// once per process; later calls return the cached level.
func Detect() Capability {
	return detected()
}
