// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package qr computes the thin QR decomposition of a tall matrix.
//
// For Data of shape [n, p] with n >= p the Result holds MatrixQ [n, p] with
// orthonormal columns and MatrixR [p, p], upper triangular with a
// non-negative diagonal, such that Data = MatrixQ · MatrixR.
package qr

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
	lastInput
)

// Result ids.
const (
	MatrixQ argument.ID = iota
	MatrixR
	lastResult
)

// ResultTag identifies Result in archives.
const ResultTag uint32 = 0x0201

// Parameter is empty; the decomposition has no options.
type Parameter struct{}

// Input holds the matrix to decompose.
type Input struct {
	args *argument.Map
}

// NewInput creates an empty Input.
func NewInput() *Input { return &Input{args: argument.New(int(lastInput))} }

// Arguments returns the backing argument map.
func (in *Input) Arguments() *argument.Map { return in.args }

// Data returns the matrix to decompose.
func (in *Input) Data() *tensor.Tensor { return in.args.Tensor(Data) }

// SetData sets the matrix to decompose.
func (in *Input) SetData(t *tensor.Tensor) { in.args.Set(Data, t) }

// Check validates that Data is a matrix with at least as many rows as columns.
func (in *Input) Check(_ Parameter, _ algorithm.Method) error {
	x := in.Data()
	if err := algorithm.CheckTensorRank(x, "data", 2, 2); err != nil {
		return err
	}
	n, p := x.Dim(0), x.Dim(1)
	if p == 0 || n < p {
		return algorithm.Validation(algorithm.ErrIncorrectSizeOfDimension, "data",
			"need n >= p >= 1, got [%d, %d]", n, p)
	}
	return nil
}

// Result holds the factors.
type Result struct {
	args *argument.Map
}

// NewResult creates an unallocated Result.
func NewResult() *Result { return &Result{args: argument.New(int(lastResult))} }

// Arguments returns the backing argument map.
func (r *Result) Arguments() *argument.Map { return r.args }

// SerializationTag identifies the Result type in archives.
func (r *Result) SerializationTag() uint32 { return ResultTag }

// MatrixQ returns the orthonormal factor.
func (r *Result) MatrixQ() *tensor.Tensor { return r.args.Tensor(MatrixQ) }

// SetMatrixQ sets a caller-provided buffer for the orthonormal factor.
func (r *Result) SetMatrixQ(t *tensor.Tensor) { r.args.Set(MatrixQ, t) }

// MatrixR returns the triangular factor.
func (r *Result) MatrixR() *tensor.Tensor { return r.args.Tensor(MatrixR) }

// SetMatrixR sets a caller-provided buffer for the triangular factor.
func (r *Result) SetMatrixR(t *tensor.Tensor) { r.args.Set(MatrixR, t) }

func shapes(in *Input) (q, r tensor.Shape) {
	n, p := in.Data().Dim(0), in.Data().Dim(1)
	return tensor.Shape{n, p}, tensor.Shape{p, p}
}

// Allocate allocates missing factors.
func (r *Result) Allocate(in *Input, _ Parameter, dtype tensor.DataType, _ algorithm.Method) error {
	qShape, rShape := shapes(in)
	if err := algorithm.AllocateIfMissing(r.MatrixQ(), "matrixQ", qShape, dtype, r.SetMatrixQ); err != nil {
		return err
	}
	return algorithm.AllocateIfMissing(r.MatrixR(), "matrixR", rShape, dtype, r.SetMatrixR)
}

// Check validates the factor shapes.
func (r *Result) Check(in *Input, _ Parameter, _ algorithm.Method) error {
	qShape, rShape := shapes(in)
	if err := algorithm.CheckTensor(r.MatrixQ(), "matrixQ", qShape); err != nil {
		return err
	}
	return algorithm.CheckTensor(r.MatrixR(), "matrixR", rShape)
}

type kernel func(q, r, a *tensor.Tensor, n, p int)

func adapt[T tensor.Float](f func(q, r, a []T, n, p int)) kernel {
	return func(q, r, a *tensor.Tensor, n, p int) {
		f(tensor.Values[T](q), tensor.Values[T](r), tensor.Values[T](a), n, p)
	}
}

var kernels = dispatch.NewTable[kernel]("qr")

func init() {
	kernels.Register(tensor.Float32, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.QR[float32]))
	kernels.Register(tensor.Float64, algorithm.DefaultDense, dispatch.Baseline, adapt(cpu.QR[float64]))
}

// Batch computes the decomposition.
type Batch = algorithm.Batch[Parameter, *Input, *Result]

var spec = algorithm.Spec[Parameter, *Input, *Result]{
	Name:      "qr",
	NewInput:  NewInput,
	NewResult: NewResult,
	Bind: func(dtype tensor.DataType, method algorithm.Method, level dispatch.Capability) (*algorithm.Container, error) {
		return algorithm.Bind(kernels, dtype, method, level,
			func(k kernel, in *Input, _ Parameter, res *Result) error {
				x := in.Data()
				k(res.MatrixQ(), res.MatrixR(), x, x.Dim(0), x.Dim(1))
				return nil
			})
	},
}

// NewBatch creates a QR Batch.
func NewBatch(dtype tensor.DataType, method algorithm.Method, opts ...algorithm.Option) (*Batch, error) {
	return algorithm.NewBatch(spec, dtype, method, Parameter{}, opts...)
}
