// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package initializer computes starting points for EM estimation of a
// Gaussian mixture.
//
// NTrials candidate starts are drawn, each taking NComponents distinct
// observations as means. Every component gets weight 1/k and the diagonal
// covariance of the whole data set. The candidate with the highest
// log-likelihood is returned.
package initializer

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
	Data argument.ID = iota
	lastInput
)

// Result ids.
const (
	Weights argument.ID = iota
	Means
	Covariances
	lastResult
)

// ResultTag identifies Result in archives.
const ResultTag uint32 = 0x0501

// Parameter configures the search.
type Parameter struct {
	NComponents int
	NTrials     int
	Seed        uint64
}

// DefaultParameter returns a Parameter for k components with 20 trials.
func DefaultParameter(k int) Parameter {
	return Parameter{NComponents: k, NTrials: 20, Seed: 777}
}

// Input holds the observations.
type Input struct {
	args *argument.Map
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{args: argument.New(int(lastInput))} }

// Arguments returns the backing argument map.
func (in *Input) Arguments() *argument.Map { return in.args }

// Data returns the [n, p] observations.
func (in *Input) Data() *tensor.Tensor { return in.args.Tensor(Data) }

// SetData sets the observations.
func (in *Input) SetData(t *tensor.Tensor) { in.args.Set(Data, t) }

// Check validates the observations and the parameter.
func (in *Input) Check(par Parameter, _ algorithm.Method) error {
	x := in.Data()
	if err := algorithm.CheckTensorRank(x, "data", 2, 2); err != nil {
		return err
	}
	if x.Dim(1) == 0 {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "data", "no features")
	}
	if par.NComponents < 1 || par.NComponents > x.Dim(0) {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nComponents",
			"must be in [1, %d], got %d", x.Dim(0), par.NComponents)
	}
	if par.NTrials < 1 {
		return algorithm.Validation(algorithm.ErrIncorrectParameter, "nTrials", "must be positive, got %d", par.NTrials)
	}
	var bad int
	switch x.DType() {
	case tensor.Float32:
		bad = firstNonFinite(x.AsFloat32())
	default:
		bad = firstNonFinite(x.AsFloat64())
	}
	if bad >= 0 {
		return algorithm.Validation(algorithm.ErrIncorrectValue, "data", "row %d holds a non-finite value", bad/x.Dim(1))
	}
	return nil
}

func firstNonFinite[T tensor.Float](values []T) int {
	for i, v := range values {
		if f := float64(v); math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}

// Result holds the starting mixture.
type Result struct {
	args *argument.Map
}

// NewResult creates an unallocated Result.
func NewResult() *Result { return &Result{args: argument.New(int(lastResult))} }

// Arguments returns the backing argument map.
func (r *Result) Arguments() *argument.Map { return r.args }

// SerializationTag identifies the Result type in archives.
func (r *Result) SerializationTag() uint32 { return ResultTag }

// Weights returns the [1, k] component weights.
func (r *Result) Weights() *tensor.Tensor { return r.args.Tensor(Weights) }

// Means returns the [k, p] component means.
func (r *Result) Means() *tensor.Tensor { return r.args.Tensor(Means) }

// Covariances returns the [k, p, p] component covariances.
func (r *Result) Covariances() *tensor.Tensor { return r.args.Tensor(Covariances) }

func (r *Result) shapes(in *Input, par Parameter) []tensor.Shape {
	k, p := par.NComponents, in.Data().Dim(1)
	return []tensor.Shape{{1, k}, {k, p}, {k, p, p}}
}

var names = []string{"weights", "means", "covariances"}

// Allocate allocates missing result tensors.
func (r *Result) Allocate(in *Input, par Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	for i, shape := range r.shapes(in, par) {
		id := argument.ID(i)
		if err := algorithm.AllocateIfMissing(r.args.Tensor(id), names[i], shape, dtype,
			func(t *tensor.Tensor) { r.args.Set(id, t) }); err != nil {
			return err
		}
	}
	return nil
}

// Check validates the result shapes.
func (r *Result) Check(in *Input, par Parameter, _ algorithm.Method) error {
	for i, shape := range r.shapes(in, par) {
		if err := algorithm.CheckTensor(r.args.Tensor(argument.ID(i)), names[i], shape); err != nil {
			return err
		}
	}
	return nil
}

type kernel func(weights, means, covs, x *tensor.Tensor, cfg cpu.GMMInit)

func adapt[T tensor.Float](f func(weights, means, covs, x []T, n, p int, cfg cpu.GMMInit) float64) kernel {
	return func(weights, means, covs, x *tensor.Tensor, cfg cpu.GMMInit) {
		f(tensor.Values[T](weights), tensor.Values[T](means), tensor.Values[T](covs),
			tensor.Values[T](x), x.Dim(0), x.Dim(1), cfg)
	}
}

var kernels = dispatch.NewTable[kernel]("emgmm.init")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.GMMStart[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.GMMStart[float64]))
}

// Batch computes a starting point.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "emgmm.init",
	NewInput:  NewInput,
	NewResult: NewResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(kernels, dtype, method, level,
			func(k kernel, in *Input, par Parameter, res *Result) error {
				cfg := cpu.GMMInit{Components: par.NComponents, Trials: par.NTrials, Seed: par.Seed}
				k(res.Weights(), res.Means(), res.Covariances(), in.Data(), cfg)
				return nil
			})
	},
}

// NewBatch creates an initialization Batch.
func NewBatch(dtype tensor.DataType, method algorithm.Method, par Parameter, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.NewBatch(spec, dtype, method, par, opts...)
}
