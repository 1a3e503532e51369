// Package tensor provides the typed, reference-counted value container shared
// by every algorithm Input and Result.
package tensor

// DType is a constraint for the Go element types a Tensor can hold.
type DType interface {
	~float32 | ~float64 | ~int32
}

// Float is a constraint for the floating point element types kernels compute in.
type Float interface {
	~float32 | ~float64
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	default:
		return "unknown"
	}
}

// IsFloat reports whether kernels can compute in this data type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// ParseDataType converts a name produced by DataType.String back into a DataType.
func ParseDataType(s string) (DataType, bool) {
	switch s {
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "int32":
		return Int32, true
	default:
		return 0, false
	}
}

// DataTypeOf returns the DataType matching the Go type T.
func DataTypeOf[T DType]() DataType {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	default:
		panic("unsupported type")
	}
}
