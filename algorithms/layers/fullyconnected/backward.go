// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fullyconnected

import (
	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// BackwardInput is the backward layer Input.
type BackwardInput struct {
	*layers.BackwardInput
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput {
	return &BackwardInput{layers.NewBackwardInput()}
}

// Check validates the input gradient [n, nOutputs] and the auxiliary data and
// weights of the linked forward pass.
func (in *BackwardInput) Check(par Parameter, _ algorithm.Method) error {
	if _, err := in.CheckLayerData(); err != nil {
		return err
	}
	if err := par.check(); err != nil {
		return err
	}
	g := in.InputGradient()
	if err := algorithm.CheckTensorRank(g, "inputGradient", 2, 2); err != nil {
		return err
	}
	x, err := in.Aux(AuxData, "auxData", g.DType(), nil)
	if err != nil {
		return err
	}
	if x.Rank() < 2 {
		return algorithm.Validation(algorithm.ErrIncorrectNumberOfDimensions, "auxData", "rank %d", x.Rank())
	}
	if _, err := in.Aux(AuxWeights, "auxWeights", g.DType(), weightsShape(x.Shape(), par.NOutputs)); err != nil {
		return err
	}
	_, err = in.CheckGradient(tensor.Shape{x.Dim(0), par.NOutputs})
	return err
}

func (in *BackwardInput) auxData() *tensor.Tensor {
	return in.InputFromForward().Tensor(AuxData)
}

func (in *BackwardInput) auxWeights() *tensor.Tensor {
	return in.InputFromForward().Tensor(AuxWeights)
}

// BackwardResult is the backward layer Result.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult creates an unallocated backward Result.
func NewBackwardResult() *BackwardResult {
	return &BackwardResult{layers.NewBackwardResult()}
}

// SerializationTag identifies the Result type in archives.
func (r *BackwardResult) SerializationTag() uint32 { return BackwardResultTag }

// Allocate sizes the gradient like auxData, the weight derivatives like
// auxWeights and the bias derivatives as [nOutputs].
func (r *BackwardResult) Allocate(in *BackwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	if err := r.AllocateBuffer(layers.Gradient, "gradient", in.auxData().Shape(), dtype); err != nil {
		return err
	}
	if err := r.AllocateBuffer(layers.WeightDerivatives, "weightDerivatives", in.auxWeights().Shape(), dtype); err != nil {
		return err
	}
	return r.AllocateBuffer(layers.BiasDerivatives, "biasDerivatives", tensor.Shape{par.NOutputs}, dtype)
}

// Check validates the buffers against the auxiliary data shapes.
func (r *BackwardResult) Check(in *BackwardInput, par Parameter, _ algorithm.Method) error {
	if err := r.CheckBuffer(layers.Gradient, "gradient", in.auxData().Shape()); err != nil {
		return err
	}
	if err := r.CheckBuffer(layers.WeightDerivatives, "weightDerivatives", in.auxWeights().Shape()); err != nil {
		return err
	}
	return r.CheckBuffer(layers.BiasDerivatives, "biasDerivatives", tensor.Shape{par.NOutputs})
}

type backwardKernel func(grad, wDer, bDer, g, x, w *tensor.Tensor, n, k, m int)

func backward[T tensor.Float](fc func(grad, wDer, bDer, g, x, w []T, n, k, m int)) backwardKernel {
	return func(grad, wDer, bDer, g, x, w *tensor.Tensor, n, k, m int) {
		fc(tensor.Values[T](grad), tensor.Values[T](wDer), tensor.Values[T](bDer),
			tensor.Values[T](g), tensor.Values[T](x), tensor.Values[T](w), n, k, m)
	}
}

var backwardKernels = dispatch.NewTable[backwardKernel]("fullyconnected.backward")

func init() {
	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.FullyConnectedBackward[float32]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, backward(cpu.FullyConnectedBackward[float64]))
}

func runBackward(k backwardKernel, in *BackwardInput, par Parameter, res *BackwardResult) error {
	x := in.auxData()
	n := x.Dim(0)
	k(res.Gradient(), res.WeightDerivatives(), res.BiasDerivatives(),
		in.InputGradient(), x, in.auxWeights(), n, x.NumElements()/n, par.NOutputs)
	return nil
}

// BackwardBatch computes the backward layer.
type BackwardBatch = algorithm.Batch[Parameter, *BackwardInput, *BackwardResult]

var backwardSpec = algorithm.Spec[Parameter, *BackwardInput, *BackwardResult]{
	Name:      "fullyconnected.backward",
	NewInput:  NewBackwardInput,
	NewResult: NewBackwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(backwardKernels, dtype, method, level, runBackward)
	},
}

// NewBackwardBatch creates a backward layer Batch.
func NewBackwardBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*BackwardBatch, error) {
	return algorithm.NewBatch(backwardSpec, dtype, method, par, opts...)
}
