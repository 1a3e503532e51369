package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// tensorBuffer is a reference-counted buffer shared by every Tensor handle
// created through Clone.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and drops the memory when it reaches 0.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// Tensor is a contiguous row-major numeric buffer with an immutable shape and
// a runtime element type.
//
// Several Tensor handles may share one buffer (see Clone). The buffer lives
// until the last handle is released or garbage collected. The framework never
// locks a buffer: concurrent readers are fine, concurrent writers are not.
type Tensor struct {
	buffer *tensorBuffer
	shape  Shape
	dtype  DataType
}

// New allocates a zero-filled tensor of the given shape and type.
func New(shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if dtype < Float32 || dtype > Int32 {
		return nil, fmt.Errorf("invalid data type %d", dtype)
	}

	return &Tensor{
		buffer: newTensorBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		dtype:  dtype,
	}, nil
}

// MustNew is like New but panics on an invalid shape.
func MustNew(shape Shape, dtype DataType) *Tensor {
	t, err := New(shape, dtype)
	if err != nil {
		panic(err)
	}
	return t
}

// FromSlice allocates a tensor of the given shape and copies data into it.
func FromSlice[T DType](data []T, shape Shape) (*Tensor, error) {
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t, err := New(shape, DataTypeOf[T]())
	if err != nil {
		return nil, err
	}
	copy(Values[T](t), data)
	return t, nil
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape.Clone()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Dim returns the size of dimension i.
func (t *Tensor) Dim(i int) int {
	return t.shape[i]
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (t *Tensor) ByteSize() int {
	return t.NumElements() * t.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (t *Tensor) Data() []byte {
	return t.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (t *Tensor) AsFloat32() []float32 {
	return Values[float32](t)
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (t *Tensor) AsFloat64() []float64 {
	return Values[float64](t)
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (t *Tensor) AsInt32() []int32 {
	return Values[int32](t)
}

// Values interprets the tensor data as []T without copying.
// Panics if T does not match the tensor's dtype or the buffer was released.
func Values[T DType](t *Tensor) []T {
	want := DataTypeOf[T]()
	if t.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", t.dtype, want))
	}
	data := t.buffer.data
	if len(data) == 0 {
		panic("tensor buffer was released")
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds fixed by NumElements()
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), t.NumElements())
}

// Clone returns a new handle sharing this tensor's buffer.
// The buffer is freed only after every handle has been released.
func (t *Tensor) Clone() *Tensor {
	t.buffer.addRef()
	return &Tensor{
		buffer: t.buffer,
		shape:  t.shape.Clone(),
		dtype:  t.dtype,
	}
}

// Copy returns a tensor with the same shape and type and its own copy of the data.
func (t *Tensor) Copy() *Tensor {
	out := MustNew(t.shape, t.dtype)
	copy(out.buffer.data, t.buffer.data)
	return out
}

// Release drops this handle's reference to the buffer.
func (t *Tensor) Release() {
	t.buffer.release()
}

// RefCount returns the number of live handles sharing the buffer.
func (t *Tensor) RefCount() int {
	return int(t.buffer.refCount.Load())
}

// IsUnique returns true if this tensor is the only reference to the buffer.
func (t *Tensor) IsUnique() bool {
	return t.buffer.refCount.Load() == 1
}

// SharesBuffer reports whether t and other are handles on the same buffer.
func (t *Tensor) SharesBuffer(other *Tensor) bool {
	return other != nil && t.buffer == other.buffer
}

// String returns a short description such as "float32[8, 16]".
func (t *Tensor) String() string {
	return t.dtype.String() + t.shape.String()
}
