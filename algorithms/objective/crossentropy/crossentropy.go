// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package crossentropy implements the categorical cross entropy objective
//
//	F(p) = -1/n Σ_i log p[i, y_i]
//
// of class probabilities against ground truth labels, with its gradient with
// respect to the probabilities. Parameter.ResultsToCompute selects which of
// them are allocated and computed.
package crossentropy

import (
	"math"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Input ids.
const (
	Probabilities argument.ID = iota
	GroundTruth
	lastInput
)

// Result ids.
const (
	Value argument.ID = iota
	Gradient
	lastResult
)

// ResultTag identifies Result in archives.
const ResultTag uint32 = 0x0302

// Results is a bitmask of objective function results.
type Results uint8

// Results to compute.
const (
	ValueResult Results = 1 << iota
	GradientResult

	AllResults = ValueResult | GradientResult
)

// Parameter configures the objective.
type Parameter struct {
	ResultsToCompute Results
}

// DefaultParameter computes the value and the gradient.
func DefaultParameter() Parameter {
	return Parameter{ResultsToCompute: AllResults}
}

func (par Parameter) has(r Results) bool { return par.ResultsToCompute&r != 0 }

// Input holds the predicted probabilities and the true classes.
type Input struct {
	args *argument.Map
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{args: argument.New(int(lastInput))} }

// Arguments returns the backing argument map.
func (in *Input) Arguments() *argument.Map { return in.args }

// Probabilities returns the [n, k] class probabilities.
func (in *Input) Probabilities() *tensor.Tensor { return in.args.Tensor(Probabilities) }

// SetProbabilities sets the class probabilities.
func (in *Input) SetProbabilities(t *tensor.Tensor) { in.args.Set(Probabilities, t) }

// GroundTruth returns the [n, 1] class labels.
func (in *Input) GroundTruth() *tensor.Tensor { return in.args.Tensor(GroundTruth) }

// SetGroundTruth sets the class labels, whole numbers in [0, k).
func (in *Input) SetGroundTruth(t *tensor.Tensor) { in.args.Set(GroundTruth, t) }

func (in *Input) dims() (n, k int) { return in.Probabilities().Dim(0), in.Probabilities().Dim(1) }

// Check validates the shapes and that every label names a class.
func (in *Input) Check(par Parameter, _ algorithm.Method) error {
	if par.ResultsToCompute&^AllResults != 0 || par.ResultsToCompute == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "resultsToCompute", "invalid mask %#x", par.ResultsToCompute)
	}
	if err := algorithm.CheckTensorRank(in.Probabilities(), "probabilities", 2, 2); err != nil {
		return err
	}
	n, k := in.dims()
	if n == 0 || k == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "probabilities", "empty %v", in.Probabilities().Shape())
	}
	if err := algorithm.CheckTensor(in.GroundTruth(), "groundTruth", tensor.Shape{n, 1}); err != nil {
		return err
	}
	var bad int
	switch gt := in.GroundTruth(); gt.DType() {
	case tensor.Float32:
		bad = firstBadLabel(gt.AsFloat32(), k)
	default:
		bad = firstBadLabel(gt.AsFloat64(), k)
	}
	if bad >= 0 {
		return algorithm.Validation(algorithm.ErrIncorrectValue, "groundTruth", "row %d is not a class in [0, %d)", bad, k)
	}
	return nil
}

func firstBadLabel[T tensor.Float](labels []T, k int) int {
	for i, v := range labels {
		f := float64(v)
		if f != math.Trunc(f) || f < 0 || f >= float64(k) {
			return i
		}
	}
	return -1
}

// Result holds the requested objective results.
type Result struct {
	args *argument.Map
}

// NewResult creates an unallocated Result.
func NewResult() *Result { return &Result{args: argument.New(int(lastResult))} }

// Arguments returns the backing argument map.
func (r *Result) Arguments() *argument.Map { return r.args }

// SerializationTag identifies the Result type in archives.
func (r *Result) SerializationTag() uint32 { return ResultTag }

// Value returns the [1, 1] objective value.
func (r *Result) Value() *tensor.Tensor { return r.args.Tensor(Value) }

// Gradient returns the [n, k] derivative with respect to the probabilities.
func (r *Result) Gradient() *tensor.Tensor { return r.args.Tensor(Gradient) }

// Set stores a caller-provided buffer under id.
func (r *Result) Set(id argument.ID, t *tensor.Tensor) { r.args.Set(id, t) }

type entry struct {
	id    argument.ID
	flag  Results
	name  string
	shape func(n, k int) tensor.Shape
}

var entries = []entry{
	{Value, ValueResult, "value", func(int, int) tensor.Shape { return tensor.Shape{1, 1} }},
	{Gradient, GradientResult, "gradient", func(n, k int) tensor.Shape { return tensor.Shape{n, k} }},
}

// Allocate allocates the results selected by the parameter.
func (r *Result) Allocate(in *Input, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	n, k := in.dims()
	for _, e := range entries {
		if !par.has(e.flag) {
			continue
		}
		id := e.id
		if err := algorithm.AllocateIfMissing(r.args.Tensor(id), e.name, e.shape(n, k), dtype,
			func(t *tensor.Tensor) { r.args.Set(id, t) }); err != nil {
			return err
		}
	}
	return nil
}

// Check validates the results selected by the parameter.
func (r *Result) Check(in *Input, par Parameter, _ algorithm.Method) error {
	n, k := in.dims()
	for _, e := range entries {
		if !par.has(e.flag) {
			continue
		}
		if err := algorithm.CheckTensor(r.args.Tensor(e.id), e.name, e.shape(n, k)); err != nil {
			return err
		}
	}
	return nil
}

type kernel func(value, gradient, prob, labels *tensor.Tensor, n, k int)

func values[T tensor.Float](t *tensor.Tensor) []T {
	if t == nil {
		return nil
	}
	return tensor.Values[T](t)
}

func adapt[T tensor.Float](f func(value, gradient, prob, labels []T, n, k int)) kernel {
	return func(value, gradient, prob, labels *tensor.Tensor, n, k int) {
		f(values[T](value), values[T](gradient), tensor.Values[T](prob), tensor.Values[T](labels), n, k)
	}
}

var kernels = dispatch.NewTable[kernel]("objective.crossentropy")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.CrossEntropy[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.CrossEntropy[float64]))
}

func run(k kernel, in *Input, par Parameter, res *Result) error {
	pick := func(id argument.ID, flag Results) *tensor.Tensor {
		if !par.has(flag) {
			return nil
		}
		return res.args.Tensor(id)
	}
	n, c := in.dims()
	k(pick(Value, ValueResult), pick(Gradient, GradientResult), in.Probabilities(), in.GroundTruth(), n, c)
	return nil
}

// Batch evaluates the objective.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "objective.crossentropy",
	NewInput:  NewInput,
	NewResult: NewResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(kernels, dtype, method, level, run)
	},
}

// NewBatch creates an objective Batch.
func NewBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.NewBatch(spec, dtype, method, par, opts...)
}
