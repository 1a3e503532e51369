// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package softmax implements the softmax layer along one dimension of the data.
//
// The backward layer needs the forward value, passed on as auxValue:
// gradient = v · (g - Σ g·v) along Dimension.
package softmax

import (
	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Auxiliary data ids.
const (
	AuxValue argument.ID = iota
	lastAux
)

// Serialization tags.
const (
	ForwardResultTag  uint32 = 0x0141
	BackwardResultTag uint32 = 0x0142
)

// Parameter configures the layer.
type Parameter struct {
	layers.Parameter
	Dimension int // Dimension softmax is computed along
}

// DefaultParameter computes softmax along dimension 1, the feature dimension
// of [batch, features] data.
func DefaultParameter() Parameter {
	return Parameter{Dimension: 1}
}

func (par Parameter) check(shape tensor.Shape, name string) error {
	if par.Dimension < 0 || par.Dimension >= len(shape) {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "dimension",
			"%d out of range for %s of rank %d", par.Dimension, name, len(shape))
	}
	return nil
}

// ForwardInput is the forward layer Input.
type ForwardInput struct {
	*layers.ForwardInput
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput { return &ForwardInput{layers.NewForwardInput()} }

// Check validates the data tensor and the dimension.
func (in *ForwardInput) Check(par Parameter, _ algorithm.Method) error {
	if err := in.CheckData(1); err != nil {
		return err
	}
	return par.check(in.Data().Shape(), "data")
}

// ForwardResult is the forward layer Result.
type ForwardResult struct {
	*layers.ForwardResult
}

// NewForwardResult creates an unallocated forward Result.
func NewForwardResult() *ForwardResult {
	return &ForwardResult{layers.NewForwardResult(int(lastAux))}
}

// SerializationTag identifies the Result type in archives.
func (r *ForwardResult) SerializationTag() uint32 { return ForwardResultTag }

// Allocate allocates a value shaped like the data and, unless in prediction
// stage, shares it with the backward layer.
func (r *ForwardResult) Allocate(in *ForwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	r.BeginPass(par.Parameter)
	if err := r.AllocateValue(in.Data().Shape(), dtype); err != nil {
		return err
	}
	if !par.PredictionStage {
		r.ShareAux(AuxValue, r.Value())
	}
	return nil
}

// Check validates the value and auxiliary data.
func (r *ForwardResult) Check(in *ForwardInput, par Parameter, _ algorithm.Method) error {
	if err := r.CheckValue(in.Data().Shape()); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	return r.CheckAux(AuxValue, "auxValue", in.Data().Shape())
}

// BackwardInput is the backward layer Input.
type BackwardInput struct {
	*layers.BackwardInput
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput { return &BackwardInput{layers.NewBackwardInput()} }

// Check validates the input gradient against auxValue and the dimension.
func (in *BackwardInput) Check(par Parameter, _ algorithm.Method) error {
	if _, err := in.CheckLayerData(); err != nil {
		return err
	}
	g := in.InputGradient()
	if err := algorithm.CheckTensor(g, "inputGradient", nil); err != nil {
		return err
	}
	v, err := in.Aux(AuxValue, "auxValue", g.DType(), nil)
	if err != nil {
		return err
	}
	if err := par.check(v.Shape(), "auxValue"); err != nil {
		return err
	}
	_, err = in.CheckGradient(v.Shape())
	return err
}

func (in *BackwardInput) auxValue() *tensor.Tensor {
	return in.InputFromForward().Tensor(AuxValue)
}

// BackwardResult is the backward layer Result.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult creates an unallocated backward Result.
func NewBackwardResult() *BackwardResult { return &BackwardResult{layers.NewBackwardResult()} }

// SerializationTag identifies the Result type in archives.
func (r *BackwardResult) SerializationTag() uint32 { return BackwardResultTag }

// Allocate sizes the gradient like auxValue.
func (r *BackwardResult) Allocate(in *BackwardInput, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	return r.AllocateBuffer(layers.Gradient, "gradient", in.auxValue().Shape(), dtype)
}

// Check validates the gradient shape.
func (r *BackwardResult) Check(in *BackwardInput, _ Parameter, _ algorithm.Method) error {
	return r.CheckBuffer(layers.Gradient, "gradient", in.auxValue().Shape())
}

type forwardKernel func(y, x *tensor.Tensor, outer, size, inner int)

func forward[T tensor.Float](f func(y, x []T, outer, size, inner int)) forwardKernel {
	return func(y, x *tensor.Tensor, outer, size, inner int) {
		f(tensor.Values[T](y), tensor.Values[T](x), outer, size, inner)
	}
}

type backwardKernel func(grad, g, v *tensor.Tensor, outer, size, inner int)

func backward[T tensor.Float](f func(grad, g, v []T, outer, size, inner int)) backwardKernel {
	return func(grad, g, v *tensor.Tensor, outer, size, inner int) {
		f(tensor.Values[T](grad), tensor.Values[T](g), tensor.Values[T](v), outer, size, inner)
	}
}

var (
	forwardKernels  = dispatch.NewTable[forwardKernel]("softmax.forward")
	backwardKernels = dispatch.NewTable[backwardKernel]("softmax.backward")
)

func init() {
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.Softmax[float32]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.Softmax[float64]))
	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.SoftmaxBackward[float32]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.SoftmaxBackward[float64]))
}

// ForwardBatch computes the forward layer.
type ForwardBatch = algorithm.Batch[Parameter, *ForwardInput, *ForwardResult]

// BackwardBatch computes the backward layer.
type BackwardBatch = algorithm.Batch[Parameter, *BackwardInput, *BackwardResult]

var forwardSpec = algorithm.Spec[Parameter, *ForwardInput, *ForwardResult]{
	Name:      "softmax.forward",
	NewInput:  NewForwardInput,
	NewResult: NewForwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(forwardKernels, dtype, method, level,
			func(k forwardKernel, in *ForwardInput, par Parameter, res *ForwardResult) error {
				outer, size, inner := cpu.SplitAt(in.Data().Shape(), par.Dimension)
				k(res.Value(), in.Data(), outer, size, inner)
				return nil
			})
	},
}

var backwardSpec = algorithm.Spec[Parameter, *BackwardInput, *BackwardResult]{
	Name:      "softmax.backward",
	NewInput:  NewBackwardInput,
	NewResult: NewBackwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(backwardKernels, dtype, method, level,
			func(k backwardKernel, in *BackwardInput, par Parameter, res *BackwardResult) error {
				v := in.auxValue()
				outer, size, inner := cpu.SplitAt(v.Shape(), par.Dimension)
				k(res.Gradient(), in.InputGradient(), v, outer, size, inner)
				return nil
			})
	},
}

// NewForwardBatch creates a forward layer Batch.
func NewForwardBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*ForwardBatch, error) {
	return algorithm.NewBatch(forwardSpec, dtype, method, par, opts...)
}

// NewBackwardBatch creates a backward layer Batch.
func NewBackwardBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*BackwardBatch, error) {
	return algorithm.NewBatch(backwardSpec, dtype, method, par, opts...)
}
