package argument

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/algos/internal/tensor"
)

const (
	idData ID = iota
	idWeights
	idBiases
	lastID
)

func newTensor(t *testing.T, values ...float32) *tensor.Tensor {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)})
	require.NoError(t, err)
	return x
}

func TestMap_GetSet(t *testing.T) {
	m := New(int(lastID))
	assert.Equal(t, 3, m.Len())
	assert.Nil(t, m.Get(idWeights))
	assert.Nil(t, m.Tensor(idWeights))
	assert.False(t, m.IsSet(idWeights))

	x := newTensor(t, 1, 2)
	m.Set(idWeights, x)
	assert.Same(t, x, m.Tensor(idWeights))
	assert.True(t, m.IsSet(idWeights))

	m.Set(idWeights, nil)
	assert.False(t, m.IsSet(idWeights))
}

func TestMap_OutOfRangeIsProgrammingError(t *testing.T) {
	m := New(int(lastID))
	assert.Panics(t, func() { m.Get(lastID) })
	assert.Panics(t, func() { m.Set(-1, nil) })
}

func TestMap_WrongValueTypePanics(t *testing.T) {
	m := New(1)
	m.Set(0, "not a tensor")
	assert.Panics(t, func() { m.Tensor(0) })
	assert.Panics(t, func() { _, _ = Get[*tensor.Tensor](m, 0) })

	s, ok := Get[string](m, 0)
	require.True(t, ok)
	assert.Equal(t, "not a tensor", s)
}

func TestMap_IDsAreOrdered(t *testing.T) {
	m := New(int(lastID))
	m.Set(idBiases, newTensor(t, 1))
	m.Set(idData, newTensor(t, 2))
	if diff := cmp.Diff([]ID{idData, idBiases}, m.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_CloneSharesValues(t *testing.T) {
	m := New(int(lastID))
	data := newTensor(t, 1, 2, 3)
	m.Set(idData, data)

	c := m.Clone()
	assert.Same(t, data, c.Tensor(idData))

	replacement := newTensor(t, 9)
	c.Set(idData, replacement)
	assert.Same(t, data, m.Tensor(idData), "re-binding the clone must not touch the source")

	assert.Panics(t, func() { New(1).CopyFrom(m) })
}

func TestMap_ShareFromAndRelease(t *testing.T) {
	src := New(int(lastID))
	x := newTensor(t, 1, 2)
	src.Set(idData, x)
	src.Set(idBiases, "not a tensor")

	m := New(int(lastID))
	m.ShareFrom(src)
	assert.Equal(t, 2, x.RefCount())
	assert.True(t, m.Tensor(idData).SharesBuffer(x))

	x.Release()
	assert.Equal(t, []float32{1, 2}, m.Tensor(idData).AsFloat32(), "the shared handle outlives the source handle")

	m.Release()
	assert.False(t, m.IsSet(idData))
	assert.Equal(t, "not a tensor", m.Get(idBiases))
}
