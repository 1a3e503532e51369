// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package smoothrelu implements the smooth rectified linear unit layer.
//
// The forward value is log(1 + exp(x)). The backward layer needs the forward
// input, passed on as auxData: gradient = g · sigmoid(x).
package smoothrelu

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
	AuxData argument.ID = iota
	lastAux
)

// Serialization tags.
const (
	ForwardResultTag  uint32 = 0x0131
	BackwardResultTag uint32 = 0x0132
)

// Parameter configures the layer.
type Parameter struct {
	layers.Parameter
}

// ForwardInput is the forward layer Input.
type ForwardInput struct {
	*layers.ForwardInput
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput { return &ForwardInput{layers.NewForwardInput()} }

// Check validates the data tensor.
func (in *ForwardInput) Check(_ Parameter, _ algorithm.Method) error {
	return in.CheckData(1)
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
// stage, shares the data with the backward layer.
func (r *ForwardResult) Allocate(in *ForwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	r.BeginPass(par.Parameter)
	if err := r.AllocateValue(in.Data().Shape(), dtype); err != nil {
		return err
	}
	if !par.PredictionStage {
		r.ShareAux(AuxData, in.Data())
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
	return r.CheckAux(AuxData, "auxData", in.Data().Shape())
}

// BackwardInput is the backward layer Input.
type BackwardInput struct {
	*layers.BackwardInput
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput { return &BackwardInput{layers.NewBackwardInput()} }

// Check validates the input gradient against auxData.
func (in *BackwardInput) Check(_ Parameter, _ algorithm.Method) error {
	if _, err := in.CheckLayerData(); err != nil {
		return err
	}
	g := in.InputGradient()
	if err := algorithm.CheckTensor(g, "inputGradient", nil); err != nil {
		return err
	}
	x, err := in.Aux(AuxData, "auxData", g.DType(), nil)
	if err != nil {
		return err
	}
	_, err = in.CheckGradient(x.Shape())
	return err
}

func (in *BackwardInput) auxData() *tensor.Tensor {
	return in.InputFromForward().Tensor(AuxData)
}

// BackwardResult is the backward layer Result.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult creates an unallocated backward Result.
func NewBackwardResult() *BackwardResult { return &BackwardResult{layers.NewBackwardResult()} }

// SerializationTag identifies the Result type in archives.
func (r *BackwardResult) SerializationTag() uint32 { return BackwardResultTag }

// Allocate sizes the gradient like auxData.
func (r *BackwardResult) Allocate(in *BackwardInput, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	return r.AllocateBuffer(layers.Gradient, "gradient", in.auxData().Shape(), dtype)
}

// Check validates the gradient shape.
func (r *BackwardResult) Check(in *BackwardInput, _ Parameter, _ algorithm.Method) error {
	return r.CheckBuffer(layers.Gradient, "gradient", in.auxData().Shape())
}

type unaryKernel func(y, x *tensor.Tensor)

func unary[T tensor.Float](f func(y, x []T)) unaryKernel {
	return func(y, x *tensor.Tensor) { f(tensor.Values[T](y), tensor.Values[T](x)) }
}

type binaryKernel func(grad, g, x *tensor.Tensor)

func binary[T tensor.Float](f func(grad, g, x []T)) binaryKernel {
	return func(grad, g, x *tensor.Tensor) {
		f(tensor.Values[T](grad), tensor.Values[T](g), tensor.Values[T](x))
	}
}

var (
	forwardKernels  = dispatch.NewTable[unaryKernel]("smoothrelu.forward")
	backwardKernels = dispatch.NewTable[binaryKernel]("smoothrelu.backward")
)

func init() {
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, unary(cpu.SmoothReLU[float32]))
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Vec256, unary(cpu.SmoothReLUUnrolled[float32]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, unary(cpu.SmoothReLU[float64]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Vec256, unary(cpu.SmoothReLUUnrolled[float64]))

	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, binary(cpu.SmoothReLUBackward[float32]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, binary(cpu.SmoothReLUBackward[float64]))
}

// ForwardBatch computes the forward layer.
type ForwardBatch = algorithm.Batch[Parameter, *ForwardInput, *ForwardResult]

// BackwardBatch computes the backward layer.
type BackwardBatch = algorithm.Batch[Parameter, *BackwardInput, *BackwardResult]

var forwardSpec = algorithm.Spec[Parameter, *ForwardInput, *ForwardResult]{
	Name:      "smoothrelu.forward",
	NewInput:  NewForwardInput,
	NewResult: NewForwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(forwardKernels, dtype, method, level,
			func(k unaryKernel, in *ForwardInput, _ Parameter, res *ForwardResult) error {
				k(res.Value(), in.Data())
				return nil
			})
	},
}

var backwardSpec = algorithm.Spec[Parameter, *BackwardInput, *BackwardResult]{
	Name:      "smoothrelu.backward",
	NewInput:  NewBackwardInput,
	NewResult: NewBackwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(backwardKernels, dtype, method, level,
			func(k binaryKernel, in *BackwardInput, _ Parameter, res *BackwardResult) error {
				k(res.Gradient(), in.InputGradient(), in.auxData())
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
