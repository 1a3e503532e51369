// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mse implements the mean squared error objective of a linear model
//
//	F(θ) = 1/(2n) Σ_i (θ₀ + Σ_j θ_j·x_ij − y_i)²
//
// with its gradient and Hessian with respect to θ. Parameter.ResultsToCompute
// selects which of them are allocated and computed.
package mse

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/backend/cpu"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/tensor"
)

// Input ids.
const (
	Data argument.ID = iota
	DependentVariables
	Argument
	lastInput
)

// Result ids.
const (
	Value argument.ID = iota
	Gradient
	Hessian
	lastResult
)

// ResultTag identifies Result in archives.
const ResultTag uint32 = 0x0301

// Results is a bitmask of objective function results.
type Results uint8

// Results to compute.
const (
	ValueResult Results = 1 << iota
	GradientResult
	HessianResult

	AllResults = ValueResult | GradientResult | HessianResult
)

// Parameter configures the objective.
type Parameter struct {
	ResultsToCompute Results
}

// DefaultParameter computes the value and the gradient.
func DefaultParameter() Parameter {
	return Parameter{ResultsToCompute: ValueResult | GradientResult}
}

func (par Parameter) has(r Results) bool { return par.ResultsToCompute&r != 0 }

// Input holds the data, targets and the point θ to evaluate at.
type Input struct {
	args *argument.Map
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{args: argument.New(int(lastInput))} }

// Arguments returns the backing argument map.
func (in *Input) Arguments() *argument.Map { return in.args }

// Data returns the [n, p] feature matrix.
func (in *Input) Data() *tensor.Tensor { return in.args.Tensor(Data) }

// SetData sets the feature matrix.
func (in *Input) SetData(t *tensor.Tensor) { in.args.Set(Data, t) }

// DependentVariables returns the [n, 1] targets.
func (in *Input) DependentVariables() *tensor.Tensor { return in.args.Tensor(DependentVariables) }

// SetDependentVariables sets the targets.
func (in *Input) SetDependentVariables(t *tensor.Tensor) { in.args.Set(DependentVariables, t) }

// Argument returns θ, shaped [p+1, 1] with the intercept first.
func (in *Input) Argument() *tensor.Tensor { return in.args.Tensor(Argument) }

// SetArgument sets θ.
func (in *Input) SetArgument(t *tensor.Tensor) { in.args.Set(Argument, t) }

func (in *Input) dims() (n, p int) { return in.Data().Dim(0), in.Data().Dim(1) }

// Check validates the input shapes against Data and the parameter.
func (in *Input) Check(par Parameter, _ algorithm.Method) error {
	if par.ResultsToCompute&^AllResults != 0 || par.ResultsToCompute == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "resultsToCompute", "invalid mask %#x", par.ResultsToCompute)
	}
	if err := algorithm.CheckTensorRank(in.Data(), "data", 2, 2); err != nil {
		return err
	}
	n, p := in.dims()
	if n == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "data", "no observations")
	}
	if err := algorithm.CheckTensor(in.DependentVariables(), "dependentVariables", tensor.Shape{n, 1}); err != nil {
		return err
	}
	return algorithm.CheckTensor(in.Argument(), "argument", tensor.Shape{p + 1, 1})
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

// Gradient returns the [p+1, 1] gradient.
func (r *Result) Gradient() *tensor.Tensor { return r.args.Tensor(Gradient) }

// Hessian returns the [p+1, p+1] Hessian.
func (r *Result) Hessian() *tensor.Tensor { return r.args.Tensor(Hessian) }

// Set stores a caller-provided buffer under id.
func (r *Result) Set(id argument.ID, t *tensor.Tensor) { r.args.Set(id, t) }

type entry struct {
	id    argument.ID
	flag  Results
	name  string
	shape func(d int) tensor.Shape
}

var entries = []entry{
	{Value, ValueResult, "value", func(int) tensor.Shape { return tensor.Shape{1, 1} }},
	{Gradient, GradientResult, "gradient", func(d int) tensor.Shape { return tensor.Shape{d, 1} }},
	{Hessian, HessianResult, "hessian", func(d int) tensor.Shape { return tensor.Shape{d, d} }},
}

// Allocate allocates the results selected by the parameter.
func (r *Result) Allocate(in *Input, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	_, p := in.dims()
	for _, e := range entries {
		if !par.has(e.flag) {
			continue
		}
		id := e.id
		if err := algorithm.AllocateIfMissing(r.args.Tensor(id), e.name, e.shape(p+1), dtype,
			func(t *tensor.Tensor) { r.args.Set(id, t) }); err != nil {
			return err
		}
	}
	return nil
}

// Check validates the results selected by the parameter.
func (r *Result) Check(in *Input, par Parameter, _ algorithm.Method) error {
	_, p := in.dims()
	for _, e := range entries {
		if !par.has(e.flag) {
			continue
		}
		if err := algorithm.CheckTensor(r.args.Tensor(e.id), e.name, e.shape(p+1)); err != nil {
			return err
		}
	}
	return nil
}

type kernel func(value, gradient, hessian, x, y, theta *tensor.Tensor, n, p int)

// values returns nil for an absent tensor so the kernel skips that result.
func values[T tensor.Float](t *tensor.Tensor) []T {
	if t == nil {
		return nil
	}
	return tensor.Values[T](t)
}

func adapt[T tensor.Float](f func(value, gradient, hessian, x, y, theta []T, n, p int)) kernel {
	return func(value, gradient, hessian, x, y, theta *tensor.Tensor, n, p int) {
		f(values[T](value), values[T](gradient), values[T](hessian),
			tensor.Values[T](x), tensor.Values[T](y), tensor.Values[T](theta), n, p)
	}
}

var kernels = dispatch.NewTable[kernel]("objective.mse")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.MSE[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.MSE[float64]))
}

func run(k kernel, in *Input, par Parameter, res *Result) error {
	pick := func(id argument.ID, flag Results) *tensor.Tensor {
		if !par.has(flag) {
			return nil
		}
		return res.args.Tensor(id)
	}
	n, p := in.dims()
	k(pick(Value, ValueResult), pick(Gradient, GradientResult), pick(Hessian, HessianResult),
		in.Data(), in.DependentVariables(), in.Argument(), n, p)
	return nil
}

// Batch evaluates the objective.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "objective.mse",
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
