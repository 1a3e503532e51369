// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fullyconnected implements the fully-connected layer.
//
// The forward layer computes value = x·W + b for data x [n, in...], weights
// W [in..., nOutputs] and biases b [nOutputs]. Training-mode forward passes
// hand the data and weights to the backward layer as auxData and auxWeights.
package fullyconnected

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
	AuxWeights
	lastAux
)

// Serialization tags.
const (
	ForwardResultTag  uint32 = 0x0101
	BackwardResultTag uint32 = 0x0102
)

// Parameter configures both passes of the layer.
type Parameter struct {
	layers.Parameter
	NOutputs int // Number of layer outputs
}

func (par Parameter) check() error {
	if par.NOutputs <= 0 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nOutputs", "must be positive, got %d", par.NOutputs)
	}
	return nil
}

// weightsShape returns [data[1:]..., nOutputs].
func weightsShape(data tensor.Shape, nOutputs int) tensor.Shape {
	return append(data[1:].Clone(), nOutputs)
}

// ForwardInput is the forward layer Input.
type ForwardInput struct {
	*layers.ForwardInput
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput {
	return &ForwardInput{layers.NewForwardInput()}
}

// Check validates the data, weights and biases against the Parameter.
func (in *ForwardInput) Check(par Parameter, _ algorithm.Method) error {
	if err := in.CheckData(2); err != nil {
		return err
	}
	if err := par.check(); err != nil {
		return err
	}
	if err := algorithm.CheckTensor(in.Weights(), "weights", weightsShape(in.Data().Shape(), par.NOutputs)); err != nil {
		return err
	}
	return algorithm.CheckTensor(in.Biases(), "biases", tensor.Shape{par.NOutputs})
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

// Allocate allocates the value [n, nOutputs] and, unless in prediction stage,
// shares the data and weights with the backward layer.
func (r *ForwardResult) Allocate(in *ForwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	r.BeginPass(par.Parameter)
	if err := r.AllocateValue(tensor.Shape{in.Data().Dim(0), par.NOutputs}, dtype); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	r.ShareAux(AuxData, in.Data())
	r.ShareAux(AuxWeights, in.Weights())
	return nil
}

// Check validates the value and auxiliary data against the Input.
func (r *ForwardResult) Check(in *ForwardInput, par Parameter, _ algorithm.Method) error {
	data := in.Data().Shape()
	if err := r.CheckValue(tensor.Shape{data[0], par.NOutputs}); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	if err := r.CheckAux(AuxData, "auxData", data); err != nil {
		return err
	}
	return r.CheckAux(AuxWeights, "auxWeights", weightsShape(data, par.NOutputs))
}

type forwardKernel func(y, x, w, b *tensor.Tensor, n, k, m int)

func forward[T tensor.Float](fc func(y, x, w, b []T, n, k, m int)) forwardKernel {
	return func(y, x, w, b *tensor.Tensor, n, k, m int) {
		fc(tensor.Values[T](y), tensor.Values[T](x), tensor.Values[T](w), tensor.Values[T](b), n, k, m)
	}
}

var forwardKernels = dispatch.NewTable[forwardKernel]("fullyconnected.forward")

func init() {
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.FullyConnectedForward[float32]))
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Vec256, forward(cpu.FullyConnectedForwardUnrolled[float32]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.FullyConnectedForward[float64]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Vec256, forward(cpu.FullyConnectedForwardUnrolled[float64]))
}

func runForward(k forwardKernel, in *ForwardInput, par Parameter, res *ForwardResult) error {
	x := in.Data()
	n := x.Dim(0)
	k(res.Value(), x, in.Weights(), in.Biases(), n, x.NumElements()/n, par.NOutputs)
	return nil
}

// ForwardBatch computes the forward layer.
type ForwardBatch = algorithm.Batch[Parameter, *ForwardInput, *ForwardResult]

var forwardSpec = algorithm.Spec[Parameter, *ForwardInput, *ForwardResult]{
	Name:      "fullyconnected.forward",
	NewInput:  NewForwardInput,
	NewResult: NewForwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(forwardKernels, dtype, method, level, runForward)
	},
}

// NewForwardBatch creates a forward layer Batch.
func NewForwardBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*ForwardBatch, error) {
	return algorithm.NewBatch(forwardSpec, dtype, method, par, opts...)
}
