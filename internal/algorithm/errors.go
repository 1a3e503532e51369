package algorithm

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error by how the caller should react to it.
type Kind int

// Error kinds.
const (
	// KindValidation: malformed, missing or mis-shaped Input or Parameter.
	KindValidation Kind = iota
	// KindAllocation: a Result buffer could not be sized or allocated.
	KindAllocation
	// KindDispatchConfiguration: no kernel for the requested type and method.
	KindDispatchConfiguration
	// KindInternalConsistency: an assumption the framework guarantees was violated.
	KindInternalConsistency
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAllocation:
		return "allocation"
	case KindDispatchConfiguration:
		return "dispatch configuration"
	case KindInternalConsistency:
		return "internal consistency"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by Error. Use errors.Is to test for them.
var (
	ErrNullTensor                  = errors.New("null input tensor")
	ErrIncorrectNumberOfDimensions = errors.New("incorrect number of dimensions")
	ErrIncorrectSizeOfDimension    = errors.New("incorrect size of dimension")
	ErrIncorrectTypeOfTensor       = errors.New("incorrect type of tensor")
	ErrIncorrectParameter          = errors.New("incorrect parameter")
	ErrIncorrectValue              = errors.New("incorrect value in input tensor")
	ErrNullModel                   = errors.New("null model")
	ErrNullLayerData               = errors.New("null layer data")
	ErrMissingLayerData            = errors.New("missing layer data entry")
	ErrForwardNotComputed          = errors.New("forward pass has not been computed")
	ErrNoKernel                    = errors.New("no kernel available")
	ErrUnexpectedType              = errors.New("unexpected argument type")
	ErrKernelPanic                 = errors.New("kernel panicked")
)

// Error is a structured failure of one step of a compute call.
type Error struct {
	Kind     Kind   // How the caller should react
	Err      error  // One of the sentinel errors above
	Argument string // Name of the argument involved, if any
	Details  string // Additional details
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(": ")
	if e.Argument != "" {
		fmt.Fprintf(&b, "%s: ", e.Argument)
	}
	b.WriteString(e.Err.Error())
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	return b.String()
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error about argument.
func Validation(err error, argument, format string, args ...any) *Error {
	return newError(KindValidation, err, argument, format, args...)
}

// Allocation returns a KindAllocation error about argument.
func Allocation(err error, argument, format string, args ...any) *Error {
	return newError(KindAllocation, err, argument, format, args...)
}

// Internal returns a KindInternalConsistency error.
func Internal(err error, format string, args ...any) *Error {
	return newError(KindInternalConsistency, err, "", format, args...)
}

func newError(kind Kind, err error, argument, format string, args ...any) *Error {
	e := &Error{Kind: kind, Err: err, Argument: argument}
	if format != "" {
		e.Details = fmt.Sprintf(format, args...)
	}
	return e
}

// Errors is the ordered error collector owned by one Batch for one compute call.
type Errors struct {
	list []*Error
}

// Add appends err. Errors that are not *Error are recorded as internal
// consistency errors. A nil err is ignored.
func (e *Errors) Add(err error) {
	if err == nil {
		return
	}
	var ae *Error
	if !errors.As(err, &ae) {
		ae = &Error{Kind: KindInternalConsistency, Err: err}
	}
	e.list = append(e.list, ae)
}

// Len returns the number of collected errors.
func (e *Errors) Len() int {
	return len(e.list)
}

// IsEmpty reports whether no error was collected.
func (e *Errors) IsEmpty() bool {
	return len(e.list) == 0
}

// List returns the collected errors in the order they were added.
func (e *Errors) List() []*Error {
	return append([]*Error(nil), e.list...)
}

// Reset empties the collector.
func (e *Errors) Reset() {
	e.list = nil
}

// Err returns e as an error, or nil if the collector is empty.
func (e *Errors) Err() error {
	if e.IsEmpty() {
		return nil
	}
	return e
}

// Error joins every collected error on separate lines.
func (e *Errors) Error() string {
	msgs := make([]string, len(e.list))
	for i, err := range e.list {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *Errors) Unwrap() []error {
	out := make([]error, len(e.list))
	for i, err := range e.list {
		out[i] = err
	}
	return out
}

// HasKind reports whether any collected error is of kind k.
func (e *Errors) HasKind(k Kind) bool {
	for _, err := range e.list {
		if err.Kind == k {
			return true
		}
	}
	return false
}
