// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package maximumpooling1d implements one-dimensional maximum pooling along
// one dimension of the data.
//
// The pooled dimension of length L becomes (L + 2·Padding - KernelSize) /
// Stride + 1 long. Training-mode forward passes hand the backward layer the
// position of every maximum (auxSelectedIndices) and the shape of the data
// (auxInputDimensions), both int32.
package maximumpooling1d

import (
	"math"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Auxiliary data ids.
const (
	AuxSelectedIndices argument.ID = iota
	AuxInputDimensions
	lastAux
)

// Serialization tags.
const (
	ForwardResultTag  uint32 = 0x0151
	BackwardResultTag uint32 = 0x0152
)

// Parameter configures both passes of the layer.
type Parameter struct {
	layers.Parameter
	KernelSize int // Window length
	Stride     int // Distance between window starts
	Padding    int // Implicit padding on both ends, never selected
	Index      int // Dimension pooled over
}

// DefaultParameter pools dimension index with windows of two and stride two.
func DefaultParameter(index int) Parameter {
	return Parameter{KernelSize: 2, Stride: 2, Index: index}
}

func (par Parameter) check(shape tensor.Shape, name string) error {
	switch {
	case par.KernelSize <= 0:
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "kernelSize", "must be positive, got %d", par.KernelSize)
	case par.Stride <= 0:
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "stride", "must be positive, got %d", par.Stride)
	case par.Padding < 0 || par.Padding >= par.KernelSize:
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "padding", "must be in [0, kernelSize), got %d", par.Padding)
	case par.Index < 0 || par.Index >= len(shape):
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "index", "%d out of range for %s of rank %d", par.Index, name, len(shape))
	}
	length := shape[par.Index]
	if length+2*par.Padding < par.KernelSize {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, name,
			"dimension %d of size %d is shorter than the kernel", par.Index, length)
	}
	if length > math.MaxInt32 {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, name, "dimension %d too long for int32 indices", par.Index)
	}
	return nil
}

func (par Parameter) pool(shape tensor.Shape) cpu.Pool1D {
	outer, length, inner := cpu.SplitAt(shape, par.Index)
	return cpu.Pool1D{
		Outer: outer, Length: length, Inner: inner,
		KernelSize: par.KernelSize, Stride: par.Stride, Padding: par.Padding,
	}
}

func (par Parameter) valueShape(data tensor.Shape) tensor.Shape {
	return data.With(par.Index, par.pool(data).OutputLength())
}

// ForwardInput is the forward layer Input.
type ForwardInput struct {
	*layers.ForwardInput
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput { return &ForwardInput{layers.NewForwardInput()} }

// Check validates the data tensor and the window.
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

// Allocate allocates the pooled value and, unless in prediction stage, the
// selected indices and input dimensions.
func (r *ForwardResult) Allocate(in *ForwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	r.BeginPass(par.Parameter)
	data := in.Data().Shape()
	value := par.valueShape(data)
	if err := r.AllocateValue(value, dtype); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	if err := r.AllocateAux(AuxSelectedIndices, "auxSelectedIndices", value, tensor.Int32); err != nil {
		return err
	}
	return r.AllocateAux(AuxInputDimensions, "auxInputDimensions", tensor.Shape{len(data)}, tensor.Int32)
}

// Check validates the value and auxiliary data.
func (r *ForwardResult) Check(in *ForwardInput, par Parameter, _ algorithm.Method) error {
	data := in.Data().Shape()
	value := par.valueShape(data)
	if err := r.CheckValue(value); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	if err := algorithm.CheckTensorOfType(r.Aux(AuxSelectedIndices), "auxSelectedIndices", tensor.Int32, value); err != nil {
		return err
	}
	return algorithm.CheckTensorOfType(r.Aux(AuxInputDimensions), "auxInputDimensions", tensor.Int32, tensor.Shape{len(data)})
}

// BackwardInput is the backward layer Input.
type BackwardInput struct {
	*layers.BackwardInput
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput { return &BackwardInput{layers.NewBackwardInput()} }

// Check validates the input gradient against the selected indices and the
// window against the recorded input dimensions.
func (in *BackwardInput) Check(par Parameter, _ algorithm.Method) error {
	if _, err := in.CheckLayerData(); err != nil {
		return err
	}
	dims, err := in.Aux(AuxInputDimensions, "auxInputDimensions", tensor.Int32, nil)
	if err != nil {
		return err
	}
	if dims.Rank() != 1 {
		return algorithm.Validation(algorithm.ErrIncorrectNumberOfDimensions, "auxInputDimensions", "rank %d", dims.Rank())
	}
	data := in.inputShape()
	if err := data.Validate(); err != nil {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "auxInputDimensions", "%v", err)
	}
	if err := par.check(data, "auxInputDimensions"); err != nil {
		return err
	}
	value := par.valueShape(data)
	if _, err := in.Aux(AuxSelectedIndices, "auxSelectedIndices", tensor.Int32, value); err != nil {
		return err
	}
	_, err = in.CheckGradient(value)
	return err
}

// inputShape decodes the forward data shape from auxInputDimensions.
func (in *BackwardInput) inputShape() tensor.Shape {
	dims := in.InputFromForward().Tensor(AuxInputDimensions).AsInt32()
	shape := make(tensor.Shape, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return shape
}

// BackwardResult is the backward layer Result.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult creates an unallocated backward Result.
func NewBackwardResult() *BackwardResult { return &BackwardResult{layers.NewBackwardResult()} }

// SerializationTag identifies the Result type in archives.
func (r *BackwardResult) SerializationTag() uint32 { return BackwardResultTag }

// Allocate sizes the gradient like the forward data.
func (r *BackwardResult) Allocate(in *BackwardInput, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	return r.AllocateBuffer(layers.Gradient, "gradient", in.inputShape(), dtype)
}

// Check validates the gradient shape.
func (r *BackwardResult) Check(in *BackwardInput, _ Parameter, _ algorithm.Method) error {
	return r.CheckBuffer(layers.Gradient, "gradient", in.inputShape())
}

type forwardKernel func(y, selected, x *tensor.Tensor, p cpu.Pool1D)

func forward[T tensor.Float](f func(y []T, selected []int32, x []T, p cpu.Pool1D)) forwardKernel {
	return func(y, selected, x *tensor.Tensor, p cpu.Pool1D) {
		f(tensor.Values[T](y), selected.AsInt32(), tensor.Values[T](x), p)
	}
}

type backwardKernel func(grad, g, selected *tensor.Tensor, p cpu.Pool1D)

func backward[T tensor.Float](f func(grad, g []T, selected []int32, p cpu.Pool1D)) backwardKernel {
	return func(grad, g, selected *tensor.Tensor, p cpu.Pool1D) {
		f(tensor.Values[T](grad), tensor.Values[T](g), selected.AsInt32(), p)
	}
}

var (
	forwardKernels  = dispatch.NewTable[forwardKernel]("maximumpooling1d.forward")
	backwardKernels = dispatch.NewTable[backwardKernel]("maximumpooling1d.backward")
)

func init() {
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.MaxPool1D[float32]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.MaxPool1D[float64]))
	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.MaxPool1DBackward[float32]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.MaxPool1DBackward[float64]))
}

func runForward(k forwardKernel, in *ForwardInput, par Parameter, res *ForwardResult) error {
	data := in.Data().Shape()
	selected := res.Aux(AuxSelectedIndices)
	if par.PredictionStage {
		// The kernel always reports positions; keep them in scratch space.
		scratch, err := tensor.New(res.Value().Shape(), tensor.Int32)
		if err != nil {
			return algorithm.Allocation(algorithm.ErrIncorrectSizeOfDimension, "selectedIndices", "%v", err)
		}
		selected = scratch
	} else {
		dims := res.Aux(AuxInputDimensions).AsInt32()
		for i, d := range data {
			dims[i] = int32(d) //nolint:gosec // dimensions validated against MaxInt32 for the pooled axis
		}
	}
	k(res.Value(), selected, in.Data(), par.pool(data))
	return nil
}

// ForwardBatch computes the forward layer.
type ForwardBatch = algorithm.Batch[Parameter, *ForwardInput, *ForwardResult]

// BackwardBatch computes the backward layer.
type BackwardBatch = algorithm.Batch[Parameter, *BackwardInput, *BackwardResult]

var forwardSpec = algorithm.Spec[Parameter, *ForwardInput, *ForwardResult]{
	Name:      "maximumpooling1d.forward",
	NewInput:  NewForwardInput,
	NewResult: NewForwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(forwardKernels, dtype, method, level, runForward)
	},
}

var backwardSpec = algorithm.Spec[Parameter, *BackwardInput, *BackwardResult]{
	Name:      "maximumpooling1d.backward",
	NewInput:  NewBackwardInput,
	NewResult: NewBackwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(backwardKernels, dtype, method, level,
			func(k backwardKernel, in *BackwardInput, par Parameter, res *BackwardResult) error {
				k(res.Gradient(), in.InputGradient(), in.InputFromForward().Tensor(AuxSelectedIndices), par.pool(in.inputShape()))
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
