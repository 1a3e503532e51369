// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package dropout implements the dropout layer.
//
// In training, each element is kept with probability RetainRatio and scaled
// by 1/RetainRatio, or zeroed. The mask is passed to the backward layer as
// auxRetainMask. In prediction stage the layer is the identity.
package dropout

import (
	"math/rand/v2"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Auxiliary data ids.
const (
	AuxRetainMask argument.ID = iota
	lastAux
)

// Serialization tags.
const (
	ForwardResultTag  uint32 = 0x0111
	BackwardResultTag uint32 = 0x0112
)

// DefaultRetainRatio is the retain ratio of DefaultParameter.
const DefaultRetainRatio = 0.5

// Parameter configures the layer.
type Parameter struct {
	layers.Parameter
	RetainRatio float64 // Probability of keeping an element, in (0, 1]
	Seed        uint64  // Seed of the mask generator
}

// DefaultParameter returns a Parameter with DefaultRetainRatio and seed 777.
func DefaultParameter() Parameter {
	return Parameter{RetainRatio: DefaultRetainRatio, Seed: 777}
}

func (par Parameter) check() error {
	if par.RetainRatio <= 0 || par.RetainRatio > 1 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "retainRatio", "must be in (0, 1], got %g", par.RetainRatio)
	}
	return nil
}

// ForwardInput is the forward layer Input.
type ForwardInput struct {
	*layers.ForwardInput
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput { return &ForwardInput{layers.NewForwardInput()} }

// Check validates the data tensor and the retain ratio.
func (in *ForwardInput) Check(par Parameter, _ algorithm.Method) error {
	if err := in.CheckData(1); err != nil {
		return err
	}
	return par.check()
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

// Allocate allocates the value and, unless in prediction stage, the retain
// mask, both shaped like the data.
func (r *ForwardResult) Allocate(in *ForwardInput, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	r.BeginPass(par.Parameter)
	shape := in.Data().Shape()
	if err := r.AllocateValue(shape, dtype); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	return r.AllocateAux(AuxRetainMask, "auxRetainMask", shape, dtype)
}

// Check validates the value and the retain mask.
func (r *ForwardResult) Check(in *ForwardInput, par Parameter, _ algorithm.Method) error {
	shape := in.Data().Shape()
	if err := r.CheckValue(shape); err != nil {
		return err
	}
	if par.PredictionStage {
		return nil
	}
	return r.CheckAux(AuxRetainMask, "auxRetainMask", shape)
}

// BackwardInput is the backward layer Input.
type BackwardInput struct {
	*layers.BackwardInput
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput { return &BackwardInput{layers.NewBackwardInput()} }

// Check validates the input gradient against the retain mask.
func (in *BackwardInput) Check(_ Parameter, _ algorithm.Method) error {
	if _, err := in.CheckLayerData(); err != nil {
		return err
	}
	g := in.InputGradient()
	if err := algorithm.CheckTensor(g, "inputGradient", nil); err != nil {
		return err
	}
	mask, err := in.Aux(AuxRetainMask, "auxRetainMask", g.DType(), nil)
	if err != nil {
		return err
	}
	_, err = in.CheckGradient(mask.Shape())
	return err
}

func (in *BackwardInput) auxRetainMask() *tensor.Tensor {
	return in.InputFromForward().Tensor(AuxRetainMask)
}

// BackwardResult is the backward layer Result.
type BackwardResult struct {
	*layers.BackwardResult
}

// NewBackwardResult creates an unallocated backward Result.
func NewBackwardResult() *BackwardResult { return &BackwardResult{layers.NewBackwardResult()} }

// SerializationTag identifies the Result type in archives.
func (r *BackwardResult) SerializationTag() uint32 { return BackwardResultTag }

// Allocate sizes the gradient like the retain mask.
func (r *BackwardResult) Allocate(in *BackwardInput, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	return r.AllocateBuffer(layers.Gradient, "gradient", in.auxRetainMask().Shape(), dtype)
}

// Check validates the gradient shape.
func (r *BackwardResult) Check(in *BackwardInput, _ Parameter, _ algorithm.Method) error {
	return r.CheckBuffer(layers.Gradient, "gradient", in.auxRetainMask().Shape())
}

type forwardKernel struct {
	mask  func(mask *tensor.Tensor, retainRatio float64, rng *rand.Rand)
	apply applyKernel
}

type applyKernel func(y, x, mask *tensor.Tensor)

func apply[T tensor.Float](f func(y, x, mask []T)) applyKernel {
	return func(y, x, mask *tensor.Tensor) {
		f(tensor.Values[T](y), tensor.Values[T](x), tensor.Values[T](mask))
	}
}

func forward[T tensor.Float](f func(y, x, mask []T)) forwardKernel {
	return forwardKernel{
		mask: func(mask *tensor.Tensor, retainRatio float64, rng *rand.Rand) {
			cpu.DropoutMask(tensor.Values[T](mask), retainRatio, rng)
		},
		apply: apply(f),
	}
}

var (
	forwardKernels  = dispatch.NewTable[forwardKernel]("dropout.forward")
	backwardKernels = dispatch.NewTable[applyKernel]("dropout.backward")
)

func init() {
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.Dropout[float32]))
	forwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Vec256, forward(cpu.DropoutUnrolled[float32]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, forward(cpu.Dropout[float64]))
	forwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Vec256, forward(cpu.DropoutUnrolled[float64]))

	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, apply(cpu.Dropout[float32]))
	backwardKernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Vec256, apply(cpu.DropoutUnrolled[float32]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, apply(cpu.Dropout[float64]))
	backwardKernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Vec256, apply(cpu.DropoutUnrolled[float64]))
}

// runForward draws a fresh mask from Seed on every call, so repeated passes
// over the same Parameter drop the same elements.
func runForward(k forwardKernel, in *ForwardInput, par Parameter, res *ForwardResult) error {
	if par.PredictionStage {
		copy(res.Value().Data(), in.Data().Data())
		return nil
	}
	mask := res.Aux(AuxRetainMask)
	k.mask(mask, par.RetainRatio, rand.New(rand.NewPCG(par.Seed, par.Seed^0xda3e39cb94b95bdb)))
	k.apply(res.Value(), in.Data(), mask)
	return nil
}

// ForwardBatch computes the forward layer.
type ForwardBatch = algorithm.Batch[Parameter, *ForwardInput, *ForwardResult]

// BackwardBatch computes the backward layer.
type BackwardBatch = algorithm.Batch[Parameter, *BackwardInput, *BackwardResult]

var forwardSpec = algorithm.Spec[Parameter, *ForwardInput, *ForwardResult]{
	Name:      "dropout.forward",
	NewInput:  NewForwardInput,
	NewResult: NewForwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(forwardKernels, dtype, method, level, runForward)
	},
}

var backwardSpec = algorithm.Spec[Parameter, *BackwardInput, *BackwardResult]{
	Name:      "dropout.backward",
	NewInput:  NewBackwardInput,
	NewResult: NewBackwardResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(backwardKernels, dtype, method, level,
			func(k applyKernel, in *BackwardInput, _ Parameter, res *BackwardResult) error {
				k(res.Gradient(), in.InputGradient(), in.auxRetainMask())
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
