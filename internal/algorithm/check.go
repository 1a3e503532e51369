package algorithm

import (
	"fmt"

	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// CheckTensor validates that t is set, holds a floating point type and, when
// expected is non-nil, has exactly the expected shape.
func CheckTensor(t *tensor.Tensor, name string, expected tensor.Shape) error {
	if t == nil {
		return Validation(ErrNullTensor, name, "")
	}
	if !t.DType().IsFloat() {
		return Validation(ErrIncorrectTypeOfTensor, name, "got %s, want float32 or float64", t.DType())
	}
	if expected == nil {
		return nil
	}
	return checkShape(t, name, expected)
}

// CheckTensorOfType validates that t is set and holds dtype, with shape
// expected when expected is non-nil.
func CheckTensorOfType(t *tensor.Tensor, name string, dtype tensor.DataType, expected tensor.Shape) error {
	if t == nil {
		return Validation(ErrNullTensor, name, "")
	}
	if t.DType() != dtype {
		return Validation(ErrIncorrectTypeOfTensor, name, "got %s, want %s", t.DType(), dtype)
	}
	if expected == nil {
		return nil
	}
	return checkShape(t, name, expected)
}

// CheckTensorRank validates that t is a floating point tensor with rank in [minRank, maxRank].
// maxRank < 0 means unbounded.
func CheckTensorRank(t *tensor.Tensor, name string, minRank, maxRank int) error {
	if err := CheckTensor(t, name, nil); err != nil {
		return err
	}
	if r := t.Rank(); r < minRank || (maxRank >= 0 && r > maxRank) {
		return Validation(ErrIncorrectNumberOfDimensions, name, "rank %d", r)
	}
	return nil
}

func checkShape(t *tensor.Tensor, name string, expected tensor.Shape) error {
	shape := t.Shape()
	if len(shape) != len(expected) {
		return Validation(ErrIncorrectNumberOfDimensions, name, "got %v, want %v", shape, expected)
	}
	for i := range shape {
		if shape[i] != expected[i] {
			return Validation(ErrIncorrectSizeOfDimension, name, "dimension %d: got %v, want %v", i, shape, expected)
		}
	}
	return nil
}

// AllocateIfMissing allocates a tensor of the given shape and hands it to set,
// unless existing is already present. Present buffers are never replaced.
func AllocateIfMissing(existing *tensor.Tensor, name string, shape tensor.Shape, dtype tensor.DataType, set func(*tensor.Tensor)) error {
	if existing != nil {
		return nil
	}
	t, err := tensor.New(shape, dtype)
	if err != nil {
		return Allocation(ErrIncorrectSizeOfDimension, name, "%v", err)
	}
	set(t)
	return nil
}

// CheckDType validates that every floating point tensor in args holds dtype.
// Integer tensors such as indices are not checked.
func CheckDType(args *argument.Map, dtype tensor.DataType) error {
	for _, id := range args.IDs() {
		t, ok := args.Get(id).(*tensor.Tensor)
		if !ok || t == nil || !t.DType().IsFloat() {
			continue
		}
		if t.DType() != dtype {
			return Validation(ErrIncorrectTypeOfTensor, fmt.Sprintf("argument %d", id), "got %s, want %s", t.DType(), dtype)
		}
	}
	return nil
}
