package algorithm

import (
	"fmt"

	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Container binds one kernel selected from a dispatch table to the Input,
// Parameter and Result types of an algorithm.
//
// A Container is immutable after construction and holds no per-call state.
type Container struct {
	name    string
	key     dispatch.Key
	compute func(in, par, res any) error
}

// Bind selects the best kernel of table at or below level and returns a
// Container that runs it through run.
//
// run receives the Input, Parameter and Result already cast to the
// algorithm's types. It unpacks their buffers and calls the kernel; it must
// not allocate Result buffers.
func Bind[K, I, P, R any](
	table *dispatch.Table[K],
	dtype tensor.DataType,
	method Method,
	level dispatch.Capability,
	run func(kernel K, in I, par P, res R) error,
) (*Container, error) {
	h, err := table.BestKernelAt(dtype, method, level)
	if err != nil {
		return nil, &Error{Kind: KindDispatchConfiguration, Err: ErrNoKernel, Details: err.Error()}
	}
	name := table.Name()
	return &Container{
		name: name,
		key:  h.Key,
		compute: func(in, par, res any) error {
			i, ok := in.(I)
			if !ok {
				return Internal(ErrUnexpectedType, "%s: input is %T", name, in)
			}
			p, ok := par.(P)
			if !ok {
				return Internal(ErrUnexpectedType, "%s: parameter is %T", name, par)
			}
			r, ok := res.(R)
			if !ok {
				return Internal(ErrUnexpectedType, "%s: result is %T", name, res)
			}
			return run(h.Kernel, i, p, r)
		},
	}, nil
}

// Name returns the name of the dispatch table the kernel came from.
func (c *Container) Name() string {
	return c.name
}

// Key returns the key of the selected kernel.
func (c *Container) Key() dispatch.Key {
	return c.key
}

// Compute runs the bound kernel. A panic inside the kernel is reported as an
// internal consistency error instead of unwinding into the caller.
func (c *Container) Compute(in, par, res any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = Internal(ErrKernelPanic, "%s (%s): %v", c.name, c.key, r)
		}
	}()
	return c.compute(in, par, res)
}

// String describes the binding.
func (c *Container) String() string {
	return fmt.Sprintf("%s[%s]", c.name, c.key)
}
