package dispatch

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/born-ml/algos/internal/tensor"
)

// Method is the computation method of an algorithm. Each algorithm defines
// its own method constants; the table only compares them.
type Method int

// DefaultDense is the default method of every algorithm.
const DefaultDense Method = 0

// ErrNoKernel is returned when no registered variant fits the request.
var ErrNoKernel = errors.New("no kernel registered")

// Key identifies one kernel variant.
type Key struct {
	DType      tensor.DataType
	Method     Method
	Capability Capability
}

// String formats the key as dtype/method/capability.
func (k Key) String() string {
	return fmt.Sprintf("%s/method%d/%s", k.DType, k.Method, k.Capability)
}

// Handle is the result of a selection: the kernel and the key it was
// registered under.
type Handle[K any] struct {
	Kernel K
	Key    Key
}

// Selector is the lookup side of a Table.
type Selector[K any] interface {
	BestKernelFor(dtype tensor.DataType, method Method) (Handle[K], error)
}

// Table maps (data type, method, capability) to kernels of type K.
//
// Registration normally happens from init functions. Lookups are safe for
// concurrent use.
type Table[K any] struct {
	name    string
	mu      sync.RWMutex
	entries map[Key]K
}

// NewTable creates an empty table and adds it to the process-wide listing
// returned by Tables.
func NewTable[K any](name string) *Table[K] {
	t := &Table[K]{
		name:    name,
		entries: make(map[Key]K),
	}
	registerTable(t)
	return t
}

// Name returns the algorithm name the table was created with.
func (t *Table[K]) Name() string {
	return t.name
}

// Register adds a kernel variant, overwriting any previous one with the same key.
func (t *Table[K]) Register(dtype tensor.DataType, method Method, level Capability, kernel K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[Key{DType: dtype, Method: method, Capability: level}] = kernel
}

// BestKernelFor returns the most specialized variant supported by the running CPU.
func (t *Table[K]) BestKernelFor(dtype tensor.DataType, method Method) (Handle[K], error) {
	return t.BestKernelAt(dtype, method, Detect())
}

// BestKernelAt returns the most specialized variant whose level does not
// exceed level, searching from level down to Baseline.
func (t *Table[K]) BestKernelAt(dtype tensor.DataType, method Method, level Capability) (Handle[K], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for c := level; c >= Baseline; c-- {
		key := Key{DType: dtype, Method: method, Capability: c}
		if k, ok := t.entries[key]; ok {
			return Handle[K]{Kernel: k, Key: key}, nil
		}
	}
	return Handle[K]{}, fmt.Errorf("%s: %w for %s method %d at or below %s",
		t.name, ErrNoKernel, dtype, method, level)
}

// Keys returns every registered key, ordered by dtype, method and descending capability.
func (t *Table[K]) Keys() []Key {
	t.mu.RLock()
	keys := make([]Key, 0, len(t.entries))
	for k := range t.entries {
		keys = append(keys, k)
	}
	t.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.DType != b.DType {
			return a.DType < b.DType
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Capability > b.Capability
	})
	return keys
}

// Describer is the type-independent view of a Table.
type Describer interface {
	Name() string
	Keys() []Key
}

var (
	tablesMu sync.Mutex
	tables   []Describer
)

func registerTable(d Describer) {
	tablesMu.Lock()
	defer tablesMu.Unlock()
	tables = append(tables, d)
}

// Tables returns every table created in this process, sorted by name.
func Tables() []Describer {
	tablesMu.Lock()
	out := append([]Describer(nil), tables...)
	tablesMu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
