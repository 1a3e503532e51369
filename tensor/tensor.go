// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/algos/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for tensor element types: float32, float64, int32.
type DType = tensor.DType

// Float is a constraint for the element types algorithms compute in.
type Float = tensor.Float

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a reference-counted, shape-typed buffer.
type Tensor = tensor.Tensor

// New allocates a zero-filled tensor.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.New(shape, dtype)
}

// MustNew is like New but panics on an invalid shape.
func MustNew(shape Shape, dtype DataType) *Tensor {
	return tensor.MustNew(shape, dtype)
}

// FromSlice allocates a tensor of the given shape and copies data into it.
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Values returns the tensor data as a []T sharing the tensor's memory.
// Panics if T does not match the tensor's DataType.
func Values[T DType](t *Tensor) []T {
	return tensor.Values[T](t)
}

// ParseDataType converts a name such as "float32" into a DataType.
func ParseDataType(s string) (DataType, bool) {
	return tensor.ParseDataType(s)
}
