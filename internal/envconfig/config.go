// Package envconfig reads the runtime configuration of the library from
// environment variables.
//
// Every setting is exposed as an accessor function so that values are read at
// the moment they are needed. Invalid values are logged and replaced by the
// default.
package envconfig

import (
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// Environment variable names.
const (
	KeyMaxCapability = "ALGOS_MAX_CAPABILITY"
	KeyNumThreads    = "ALGOS_NUM_THREADS"
	KeyMinChunk      = "ALGOS_MIN_CHUNK"
	KeyDebug         = "ALGOS_DEBUG"
)

// Var returns an environment variable stripped of leading and trailing quotes or spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// BoolWithDefault returns a function reading a bool with a default value.
// Any non-empty value that does not parse as a bool counts as true.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// Bool returns a function reading a bool that defaults to false.
func Bool(k string) func() bool {
	withDefault := BoolWithDefault(k)
	return func() bool {
		return withDefault(false)
	}
}

// Int returns a function reading a positive int with a default value.
func Int(key string, defaultValue int) func() int {
	return func() int {
		if s := Var(key); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				klog.Warningf("invalid environment variable %s=%q, using default %d", key, s, defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

var (
	// Debug enables verbose logging in the command line tool.
	Debug = Bool(KeyDebug)
	// MinChunk is the minimum number of loop items handed to one worker.
	MinChunk = Int(KeyMinChunk, 64)
)

// NumThreads is the number of workers kernels may use for data-parallel loops.
func NumThreads() int {
	return Int(KeyNumThreads, runtime.NumCPU())()
}

// MaxCapability is the highest CPU capability level kernels may be selected
// for, as a lowercase name. Empty means no cap.
func MaxCapability() string {
	return strings.ToLower(Var(KeyMaxCapability))
}

// EnvVar describes one configuration variable.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every configuration variable with its effective value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		KeyMaxCapability: {KeyMaxCapability, MaxCapability(), "Highest CPU capability level used for kernel selection (baseline, vec128, vec256, vec512)"},
		KeyNumThreads:    {KeyNumThreads, NumThreads(), "Number of workers for data-parallel kernel loops"},
		KeyMinChunk:      {KeyMinChunk, MinChunk(), "Minimum loop items per worker"},
		KeyDebug:         {KeyDebug, Debug(), "Verbose logging"},
	}
}

// Values returns the effective configuration as sorted name/value pairs.
func Values() [][2]string {
	vars := AsMap()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([][2]string, 0, len(names))
	for _, name := range names {
		out = append(out, [2]string{name, formatValue(vars[name].Value)})
	}
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
