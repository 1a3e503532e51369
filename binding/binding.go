// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package binding exports tensors and algorithms to a host runtime through
// opaque integer handles.
//
// The host never sees Go pointers. It creates tensors and algorithms, wires
// tensors into algorithm inputs by argument id, computes, fetches results as
// new tensor handles and destroys every handle it created:
//
//	x, _ := binding.NewTensor("float32", []int{8, 16})
//	fc, _ := binding.NewAlgorithm("fullyconnected.forward", "float32", 0)
//	_ = binding.SetParameter(fc, "nOutputs", 4)
//	_ = binding.SetInput(fc, 0, x)
//	...
//	_ = binding.Compute(fc)
//	y, _ := binding.GetResult(fc, 0)
//	defer binding.Destroy(y)
package binding

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/serialization"
	"github.com/born-ml/algos/internal/tensor"
)

// Handle is an opaque reference to a tensor or an algorithm. Zero is never
// a valid handle.
type Handle int64

// Errors returned for misuse of handles.
var (
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrNotLinkable      = errors.New("algorithms cannot be linked")
	ErrNotPersistable   = errors.New("algorithm result cannot be archived")
)

type registry struct {
	mu      sync.Mutex
	next    Handle
	objects map[Handle]any
}

var handles = registry{objects: make(map[Handle]any)}

func (r *registry) add(obj any) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.objects[r.next] = obj
	return r.next
}

func (r *registry) remove(h Handle) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[h]
	delete(r.objects, h)
	return obj, ok
}

func lookup[T any](h Handle) (T, error) {
	handles.mu.Lock()
	obj, ok := handles.objects[h]
	handles.mu.Unlock()
	v, isT := obj.(T)
	if !ok || !isT {
		var zero T
		return zero, errors.Wrapf(ErrInvalidHandle, "handle %d", h)
	}
	return v, nil
}

func parseDType(name string) (tensor.DataType, error) {
	dt, ok := tensor.ParseDataType(name)
	if !ok {
		return 0, errors.Errorf("unknown data type %q", name)
	}
	return dt, nil
}

// NewTensor allocates a zero-filled tensor.
func NewTensor(dtype string, shape []int) (Handle, error) {
	dt, err := parseDType(dtype)
	if err != nil {
		return 0, err
	}
	t, err := tensor.New(tensor.Shape(shape), dt)
	if err != nil {
		return 0, errors.Wrap(err, "new tensor")
	}
	h := handles.add(t)
	klog.V(2).Infof("binding: tensor %d created, %s%v", h, dt, shape)
	return h, nil
}

// TensorShape returns the shape of a tensor.
func TensorShape(h Handle) ([]int, error) {
	t, err := lookup[*tensor.Tensor](h)
	if err != nil {
		return nil, err
	}
	return []int(t.Shape()), nil
}

// TensorData returns the raw little-endian bytes of a tensor. The slice
// aliases the tensor's memory.
func TensorData(h Handle) ([]byte, error) {
	t, err := lookup[*tensor.Tensor](h)
	if err != nil {
		return nil, err
	}
	return t.Data(), nil
}

// SetTensorData copies values into a floating point tensor.
func SetTensorData(h Handle, values []float64) error {
	t, err := lookup[*tensor.Tensor](h)
	if err != nil {
		return err
	}
	if len(values) != t.NumElements() {
		return errors.Errorf("tensor %d holds %d elements, got %d values", h, t.NumElements(), len(values))
	}
	switch t.DType() {
	case tensor.Float32:
		dst := t.AsFloat32()
		for i, v := range values {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(t.AsFloat64(), values)
	default:
		return errors.Errorf("tensor %d holds %s", h, t.DType())
	}
	return nil
}

// NewAlgorithm creates a registered algorithm computing in dtype with method.
func NewAlgorithm(name, dtype string, method int) (Handle, error) {
	f, ok := factory(name)
	if !ok {
		return 0, errors.Wrap(ErrUnknownAlgorithm, name)
	}
	dt, err := parseDType(dtype)
	if err != nil {
		return 0, err
	}
	a, err := f(dt, algorithm.Method(method))
	if err != nil {
		return 0, err
	}
	h := handles.add(a)
	klog.V(2).Infof("binding: algorithm %d created, %s %s method %d", h, name, dt, method)
	return h, nil
}

// SetInput stores a new handle on tensor t under argument id of the
// algorithm's Input, releasing the handle previously stored there. The host
// may destroy t afterwards.
func SetInput(alg Handle, id int, t Handle) error {
	a, err := lookup[Algorithm](alg)
	if err != nil {
		return err
	}
	x, err := lookup[*tensor.Tensor](t)
	if err != nil {
		return err
	}
	return a.SetInput(id, x)
}

// GetResult returns a new handle on the Result tensor stored under id. The
// handle shares the Result's buffer and must be destroyed by the caller.
func GetResult(alg Handle, id int) (Handle, error) {
	a, err := lookup[Algorithm](alg)
	if err != nil {
		return 0, err
	}
	t, err := a.Result(id)
	if err != nil {
		return 0, err
	}
	h := handles.add(t.Clone())
	klog.V(2).Infof("binding: tensor %d created from result %d of algorithm %d", h, id, alg)
	return h, nil
}

// SetParameter sets an integer parameter by name. Boolean parameters take 0
// or 1.
func SetParameter(alg Handle, name string, value int) error {
	a, err := lookup[Algorithm](alg)
	if err != nil {
		return err
	}
	return a.SetParameter(name, value)
}

// Compute runs the algorithm. The error, if any, is the collector of the
// failed call.
func Compute(alg Handle) error {
	a, err := lookup[Algorithm](alg)
	if err != nil {
		return err
	}
	return a.Compute()
}

// Link connects the auxiliary data of a forward layer to the Input of its
// backward layer.
func Link(forward, backward Handle) error {
	fwd, err := lookup[Algorithm](forward)
	if err != nil {
		return err
	}
	bwd, err := lookup[Algorithm](backward)
	if err != nil {
		return err
	}
	return link(fwd, bwd)
}

func archiveOf(alg Handle) (persistable, algorithm.Serializable, error) {
	a, err := lookup[Algorithm](alg)
	if err != nil {
		return nil, nil, err
	}
	p, ok := a.(persistable)
	if !ok {
		return nil, nil, ErrNotPersistable
	}
	r, ok := p.archive()
	if !ok {
		return nil, nil, ErrNotPersistable
	}
	return p, r, nil
}

// Save writes the Result of an algorithm to an archive at path. A forward
// layer archive carries its auxiliary data, so a backward layer can be
// computed from it after Load.
func Save(alg Handle, path string) error {
	_, r, err := archiveOf(alg)
	if err != nil {
		return err
	}
	if err := serialization.WriteFile(path, r); err != nil {
		return err
	}
	klog.V(2).Infof("binding: result of algorithm %d saved to %s", alg, path)
	return nil
}

// Load replaces the Result of an algorithm with the archive at path. The
// archive must have been saved from the same algorithm.
func Load(alg Handle, path string) error {
	p, r, err := archiveOf(alg)
	if err != nil {
		return err
	}
	p.resetResult()
	return serialization.ReadFile(path, r)
}

// Destroy releases the object behind h. Tensor handles drop their buffer
// reference; algorithms drop their Input and Result.
func Destroy(h Handle) error {
	obj, ok := handles.remove(h)
	if !ok {
		return errors.Wrapf(ErrInvalidHandle, "handle %d", h)
	}
	switch o := obj.(type) {
	case *tensor.Tensor:
		o.Release()
	case Algorithm:
		o.Release()
	}
	klog.V(2).Infof("binding: handle %d destroyed", h)
	return nil
}

// Live returns the number of handles not yet destroyed.
func Live() int {
	handles.mu.Lock()
	defer handles.mu.Unlock()
	return len(handles.objects)
}
