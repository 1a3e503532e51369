package algorithm

import (
	"k8s.io/klog/v2"

	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Spec describes an algorithm to the generic Batch: how to build empty Input
// and Result objects and how to bind a kernel for a type, method and level.
type Spec[P any, I Input[P], R Result[I, P]] struct {
	Name      string
	NewInput  func() I
	NewResult func() R
	Bind      func(dtype tensor.DataType, method Method, level dispatch.Capability) (*Container, error)
}

// Option configures NewBatch.
type Option func(*options)

type options struct {
	level    dispatch.Capability
	levelSet bool
}

// WithCapability caps kernel selection at level instead of the detected
// capability of the running CPU.
func WithCapability(level dispatch.Capability) Option {
	return func(o *options) {
		o.level = level
		o.levelSet = true
	}
}

// Batch is the user-facing executor of one algorithm for one floating point
// type and method. It owns an Input, a Parameter, a Result and the error
// collector of the last compute call.
//
// A Batch is not safe for concurrent use. Clone it to compute on several
// goroutines.
type Batch[P any, I Input[P], R Result[I, P]] struct {
	Input     I
	Parameter P

	spec      Spec[P, I, R]
	dtype     tensor.DataType
	method    Method
	container *Container
	result    R
	errs      Errors
	ownsInput bool
}

// NewBatch creates a Batch and binds its kernel. It fails with a
// KindDispatchConfiguration error when no kernel is registered for dtype and
// method.
func NewBatch[P any, I Input[P], R Result[I, P]](
	spec Spec[P, I, R],
	dtype tensor.DataType,
	method Method,
	par P,
	opts ...Option,
) (*Batch[P, I, R], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.levelSet {
		o.level = dispatch.Detect()
	}

	container, err := spec.Bind(dtype, method, o.level)
	if err != nil {
		return nil, err
	}
	klog.V(2).Infof("%s: bound kernel %s", spec.Name, container.Key())

	return &Batch[P, I, R]{
		Input:     spec.NewInput(),
		Parameter: par,
		spec:      spec,
		dtype:     dtype,
		method:    method,
		container: container,
		result:    spec.NewResult(),
	}, nil
}

// Compute validates the Input, allocates missing Result buffers, validates
// the Result and runs the kernel. It stops at the first failing step; the
// failure is returned and also kept in Errors until the next call.
func (b *Batch[P, I, R]) Compute() error {
	b.errs.Reset()

	if err := b.compute(); err != nil {
		b.errs.Add(err)
		klog.V(1).Infof("%s: compute failed: %v", b.spec.Name, err)
		return b.errs.Err()
	}
	if c, ok := any(b.result).(Completer); ok {
		c.Complete()
	}
	return nil
}

func (b *Batch[P, I, R]) compute() error {
	if err := b.Input.Check(b.Parameter, b.method); err != nil {
		return err
	}
	if err := CheckDType(b.Input.Arguments(), b.dtype); err != nil {
		return err
	}
	if err := b.result.Allocate(b.Input, b.Parameter, b.dtype, b.method); err != nil {
		return err
	}
	if err := b.result.Check(b.Input, b.Parameter, b.method); err != nil {
		return err
	}
	if err := CheckDType(b.result.Arguments(), b.dtype); err != nil {
		return err
	}
	return b.container.Compute(b.Input, b.Parameter, b.result)
}

// Result returns the Result object. Its buffers are allocated by the first
// Compute call unless they were provided with SetResult.
func (b *Batch[P, I, R]) Result() R {
	return b.result
}

// SetResult replaces the Result object, typically with one whose buffers the
// caller allocated.
func (b *Batch[P, I, R]) SetResult(r R) {
	b.result = r
}

// ResetResult replaces the Result with a fresh, unallocated one. Use it
// before computing on an Input of different shape.
func (b *Batch[P, I, R]) ResetResult() {
	b.result = b.spec.NewResult()
}

// Errors returns the errors collected by the last Compute call.
func (b *Batch[P, I, R]) Errors() *Errors {
	return &b.errs
}

// Clone returns an independent Batch with the same type, method and kernel.
// The Parameter is copied by value, the Input takes its own handles on the
// same tensors and the Result is fresh and unallocated. Release the clone
// to drop those handles.
func (b *Batch[P, I, R]) Clone() *Batch[P, I, R] {
	c := &Batch[P, I, R]{
		Input:     b.spec.NewInput(),
		Parameter: b.Parameter,
		spec:      b.spec,
		dtype:     b.dtype,
		method:    b.method,
		container: b.container,
		result:    b.spec.NewResult(),
		ownsInput: true,
	}
	c.Input.Arguments().ShareFrom(b.Input.Arguments())
	return c
}

// Release drops the tensor handles the Batch holds: the Result buffers, any
// state the Result owns outside its map and, for a Batch made by Clone, the
// Input handles. A later Compute allocates the Result again.
func (b *Batch[P, I, R]) Release() {
	if r, ok := any(b.result).(Releaser); ok {
		r.Release()
	}
	b.result.Arguments().Release()
	if b.ownsInput {
		b.Input.Arguments().Release()
	}
}

// Name returns the algorithm name.
func (b *Batch[P, I, R]) Name() string { return b.spec.Name }

// DType returns the floating point type the Batch computes in.
func (b *Batch[P, I, R]) DType() tensor.DataType { return b.dtype }

// Method returns the computation method.
func (b *Batch[P, I, R]) Method() Method { return b.method }

// Kernel returns the key of the kernel bound at construction.
func (b *Batch[P, I, R]) Kernel() dispatch.Key { return b.container.Key() }
