// Package algorithm implements the execution framework shared by every
// algorithm: capability interfaces for Input and Result objects, the
// Container binding them to a dispatched kernel, and the Batch object that
// runs the validate, allocate and dispatch protocol.
package algorithm

import (
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Method is the computation method of an algorithm.
type Method = dispatch.Method

// DefaultDense is the default method of every algorithm.
const DefaultDense = dispatch.DefaultDense

// ArgumentMapBacked is implemented by objects whose state lives in an argument.Map.
type ArgumentMapBacked interface {
	Arguments() *argument.Map
}

// Validatable is implemented by Inputs. Check returns the first violated
// invariant and stops there.
type Validatable[P any] interface {
	Check(par P, method Method) error
}

// Allocatable is implemented by Results. Allocate creates every missing
// buffer with a shape derived from the Input and Parameter and never
// replaces a buffer that is already present.
type Allocatable[I, P any] interface {
	Allocate(in I, par P, dtype tensor.DataType, method Method) error
}

// ResultValidatable is implemented by Results to check their buffers against
// the Input and Parameter they will be computed from.
type ResultValidatable[I, P any] interface {
	Check(in I, par P, method Method) error
}

// Input is the contract of an algorithm input.
type Input[P any] interface {
	ArgumentMapBacked
	Validatable[P]
}

// Result is the contract of an algorithm result.
type Result[I, P any] interface {
	ArgumentMapBacked
	Allocatable[I, P]
	ResultValidatable[I, P]
}

// Completer is implemented by Results that must record a successful compute,
// such as forward layer results publishing their auxiliary data.
type Completer interface {
	Complete()
}

// Releaser is implemented by Results that own handles outside their
// argument map, such as the auxiliary data of a forward layer.
type Releaser interface {
	Release()
}

// Serializable is implemented by Results that can be persisted.
// The tag is stable across releases and identifies the Result type.
type Serializable interface {
	ArgumentMapBacked
	SerializationTag() uint32
}
