// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package algorithm exposes the error model, computation methods and CPU
// capability levels shared by every algorithm package.
//
// Each algorithm package (algorithms/qr, algorithms/layers/fullyconnected, ...)
// provides a NewBatch constructor returning a Batch. Compute validates the
// Input, allocates missing Result buffers, validates the Result and runs the
// kernel selected for the CPU:
//
//	b, err := qr.NewBatch(tensor.Float64, algorithm.DefaultDense)
//	if err != nil {
//	    log.Fatal(err) // KindDispatchConfiguration: no kernel
//	}
//	b.Input.SetData(x)
//	if err := b.Compute(); err != nil {
//	    if errors.Is(err, algorithm.ErrIncorrectSizeOfDimension) {
//	        ...
//	    }
//	}
package algorithm

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/dispatch"
)

// Method is the computation method of an algorithm.
type Method = algorithm.Method

// DefaultDense is the default method of every algorithm.
const DefaultDense = algorithm.DefaultDense

// Capability is a CPU instruction-set level kernels are specialized for.
type Capability = dispatch.Capability

// Capability levels, lowest first.
const (
	Baseline = dispatch.Baseline
	Vec128   = dispatch.Vec128
	Vec256   = dispatch.Vec256
	Vec512   = dispatch.Vec512
)

// Detect returns the highest capability level of the running CPU, capped by
// the ALGOS_MAX_CAPABILITY environment variable.
func Detect() Capability { return dispatch.Detect() }

// ParseCapability parses a level name such as "vec256".
func ParseCapability(s string) (Capability, error) { return dispatch.ParseCapability(s) }

// Option configures a Batch constructor.
type Option = algorithm.Option

// WithCapability caps kernel selection at level.
func WithCapability(level Capability) Option { return algorithm.WithCapability(level) }

// Error is a structured failure of one compute step.
type Error = algorithm.Error

// Errors is the ordered error collector of a Batch.
type Errors = algorithm.Errors

// Kind classifies an Error.
type Kind = algorithm.Kind

// Error kinds.
const (
	KindValidation            = algorithm.KindValidation
	KindAllocation            = algorithm.KindAllocation
	KindDispatchConfiguration = algorithm.KindDispatchConfiguration
	KindInternalConsistency   = algorithm.KindInternalConsistency
)

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrNullTensor                  = algorithm.ErrNullTensor
	ErrIncorrectNumberOfDimensions = algorithm.ErrIncorrectNumberOfDimensions
	ErrIncorrectSizeOfDimension    = algorithm.ErrIncorrectSizeOfDimension
	ErrIncorrectTypeOfTensor       = algorithm.ErrIncorrectTypeOfTensor
	ErrIncorrectParameter          = algorithm.ErrIncorrectParameter
	ErrIncorrectValue              = algorithm.ErrIncorrectValue
	ErrNullModel                   = algorithm.ErrNullModel
	ErrNullLayerData               = algorithm.ErrNullLayerData
	ErrMissingLayerData            = algorithm.ErrMissingLayerData
	ErrForwardNotComputed          = algorithm.ErrForwardNotComputed
	ErrNoKernel                    = algorithm.ErrNoKernel
	ErrUnexpectedType              = algorithm.ErrUnexpectedType
	ErrKernelPanic                 = algorithm.ErrKernelPanic
)
