// Package argument implements the identifier-keyed map that backs every
// algorithm Input and Result.
//
// A Map has a fixed identifier space [0, n) chosen by its owner. Each slot
// holds a shared value handle (usually a *tensor.Tensor) or nothing. Using an
// identifier outside the space is a programming error and panics; reading an
// unset slot yields nil so that validation can report the missing argument.
package argument

import (
	"fmt"

	"github.com/born-ml/algos/internal/tensor"
)

// ID identifies one argument within a Map. Each role (Input, Result, layer
// data) numbers its identifiers from zero.
type ID int

// Map is an ordered mapping from ID to a shared value handle.
type Map struct {
	slots []any
}

// New creates a map with identifier space [0, n).
func New(n int) *Map {
	return &Map{slots: make([]any, n)}
}

// Len returns the size of the identifier space.
func (m *Map) Len() int {
	return len(m.slots)
}

func (m *Map) mustContain(id ID) {
	if id < 0 || int(id) >= len(m.slots) {
		panic(fmt.Sprintf("argument id %d outside of [0, %d)", id, len(m.slots)))
	}
}

// Get returns the value stored under id, or nil if the slot is unset.
func (m *Map) Get(id ID) any {
	m.mustContain(id)
	return m.slots[id]
}

// Set stores value under id, replacing any previous value.
// A nil value, including a nil *tensor.Tensor, clears the slot.
func (m *Map) Set(id ID, value any) {
	m.mustContain(id)
	if t, ok := value.(*tensor.Tensor); ok && t == nil {
		value = nil
	}
	m.slots[id] = value
}

// IsSet reports whether the slot for id holds a value.
func (m *Map) IsSet(id ID) bool {
	return m.Get(id) != nil
}

// Tensor returns the tensor stored under id, or nil if the slot is unset.
// It panics if the slot holds a value of another type: argument layouts are
// fixed per algorithm, so a mismatch means the framework itself is wrong.
func (m *Map) Tensor(id ID) *tensor.Tensor {
	v := m.Get(id)
	if v == nil {
		return nil
	}
	t, ok := v.(*tensor.Tensor)
	if !ok {
		panic(fmt.Sprintf("argument %d holds %T, not *tensor.Tensor", id, v))
	}
	return t
}

// IDs returns the identifiers of all set slots in ascending order.
func (m *Map) IDs() []ID {
	ids := make([]ID, 0, len(m.slots))
	for i, v := range m.slots {
		if v != nil {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// CopyFrom re-binds every slot of src into m. Values are shared, not copied.
func (m *Map) CopyFrom(src *Map) {
	if len(src.slots) != len(m.slots) {
		panic(fmt.Sprintf("argument map size mismatch: %d vs %d", len(src.slots), len(m.slots)))
	}
	copy(m.slots, src.slots)
}

// ShareFrom re-binds every slot of src into m like CopyFrom, but takes a new
// handle on each tensor so m stays valid after src's handles are released.
func (m *Map) ShareFrom(src *Map) {
	if len(src.slots) != len(m.slots) {
		panic(fmt.Sprintf("argument map size mismatch: %d vs %d", len(src.slots), len(m.slots)))
	}
	for i, v := range src.slots {
		if t, ok := v.(*tensor.Tensor); ok {
			v = t.Clone()
		}
		m.slots[i] = v
	}
}

// Release drops every tensor handle held by m and clears those slots.
// Values of other types stay in place.
func (m *Map) Release() {
	for i, v := range m.slots {
		if t, ok := v.(*tensor.Tensor); ok {
			t.Release()
			m.slots[i] = nil
		}
	}
}

// Clone returns a new map whose slots share the values of m.
func (m *Map) Clone() *Map {
	out := New(len(m.slots))
	out.CopyFrom(m)
	return out
}

// Get returns the value stored under id converted to T.
// ok is false when the slot is unset; a value of another type panics.
func Get[T any](m *Map, id ID) (value T, ok bool) {
	v := m.Get(id)
	if v == nil {
		return value, false
	}
	value, ok = v.(T)
	if !ok {
		panic(fmt.Sprintf("argument %d holds %T, not %T", id, v, value))
	}
	return value, true
}
