// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// ForwardInput holds the data, weights and biases of a forward layer.
// Layer packages embed it and add their own Check.
type ForwardInput struct {
	args *argument.Map
}

// NewForwardInput creates an empty forward Input.
func NewForwardInput() *ForwardInput {
	return &ForwardInput{args: argument.New(int(lastForwardInput))}
}

// Arguments returns the underlying map.
func (in *ForwardInput) Arguments() *argument.Map { return in.args }

// Data returns the input data tensor.
func (in *ForwardInput) Data() *tensor.Tensor { return in.args.Tensor(Data) }

// SetData sets the input data tensor.
func (in *ForwardInput) SetData(t *tensor.Tensor) { in.args.Set(Data, t) }

// Weights returns the weights tensor.
func (in *ForwardInput) Weights() *tensor.Tensor { return in.args.Tensor(Weights) }

// SetWeights sets the weights tensor.
func (in *ForwardInput) SetWeights(t *tensor.Tensor) { in.args.Set(Weights, t) }

// Biases returns the biases tensor.
func (in *ForwardInput) Biases() *tensor.Tensor { return in.args.Tensor(Biases) }

// SetBiases sets the biases tensor.
func (in *ForwardInput) SetBiases(t *tensor.Tensor) { in.args.Set(Biases, t) }

// CheckData validates the data tensor rank.
func (in *ForwardInput) CheckData(minRank int) error {
	return algorithm.CheckTensorRank(in.Data(), "data", minRank, -1)
}

// ForwardResult holds the value of a forward layer and owns the LayerData
// passed to the backward layer. The LayerData exists from construction on,
// so a backward Input can be linked before the forward pass runs.
type ForwardResult struct {
	args       *argument.Map
	data       *LayerData
	prediction bool
}

// NewForwardResult creates a forward Result whose LayerData has auxiliary ids [0, nAux).
func NewForwardResult(nAux int) *ForwardResult {
	r := &ForwardResult{
		args: argument.New(int(lastForwardResult)),
		data: NewLayerData(nAux),
	}
	r.args.Set(ResultForBackward, r.data)
	return r
}

// Arguments returns the underlying map.
func (r *ForwardResult) Arguments() *argument.Map { return r.args }

// Value returns the forward value tensor.
func (r *ForwardResult) Value() *tensor.Tensor { return r.args.Tensor(Value) }

// SetValue sets the forward value tensor.
func (r *ForwardResult) SetValue(t *tensor.Tensor) { r.args.Set(Value, t) }

// LayerData returns the auxiliary data owned by the Result.
func (r *ForwardResult) LayerData() *LayerData { return r.data }

// AuxiliaryArguments returns the auxiliary map for serialization.
func (r *ForwardResult) AuxiliaryArguments() *argument.Map { return r.data.args }

// Aux returns the auxiliary tensor id.
func (r *ForwardResult) Aux(id argument.ID) *tensor.Tensor { return r.data.Tensor(id) }

// AllocateValue allocates the value tensor with the given shape if missing.
func (r *ForwardResult) AllocateValue(shape tensor.Shape, dtype tensor.DataType) error {
	return algorithm.AllocateIfMissing(r.Value(), "value", shape, dtype, r.SetValue)
}

// AllocateAux allocates the auxiliary tensor id with the given shape if missing.
func (r *ForwardResult) AllocateAux(id argument.ID, name string, shape tensor.Shape, dtype tensor.DataType) error {
	return algorithm.AllocateIfMissing(r.Aux(id), name, shape, dtype, func(t *tensor.Tensor) {
		r.data.Set(id, t)
	})
}

// ShareAux makes the auxiliary tensor id a new handle on t's buffer. The
// previous handle, if any, is released unless it already shares t's buffer.
func (r *ForwardResult) ShareAux(id argument.ID, t *tensor.Tensor) {
	old := r.Aux(id)
	if old != nil {
		if old.SharesBuffer(t) && old.Shape().Equal(t.Shape()) {
			return
		}
		old.Release()
	}
	r.data.Set(id, t.Clone())
}

// CheckValue validates the value tensor against the expected shape.
func (r *ForwardResult) CheckValue(expected tensor.Shape) error {
	return algorithm.CheckTensor(r.Value(), "value", expected)
}

// CheckAux validates that the auxiliary tensor id exists with the expected shape.
func (r *ForwardResult) CheckAux(id argument.ID, name string, expected tensor.Shape) error {
	t := r.Aux(id)
	if t == nil {
		return algorithm.Validation(algorithm.ErrMissingLayerData, name, "")
	}
	return algorithm.CheckTensor(t, name, expected)
}

// Release drops the auxiliary tensors and clears the completion marker.
func (r *ForwardResult) Release() { r.data.Release() }

// Begin clears the completion marker before a new training forward pass.
func (r *ForwardResult) Begin() {
	r.prediction = false
	r.data.Invalidate()
}

// BeginPass starts a forward pass computed with par. A prediction-stage pass
// writes no auxiliary data, so it drops what an earlier training pass left
// and Complete will not mark the data computed.
func (r *ForwardResult) BeginPass(par Parameter) {
	if !par.PredictionStage {
		r.Begin()
		return
	}
	r.prediction = true
	r.data.Release()
}

// Complete marks the auxiliary data as written by a successful training
// forward pass. It does nothing after a prediction-stage pass.
func (r *ForwardResult) Complete() {
	if r.prediction {
		return
	}
	r.data.MarkComputed()
}

// Computed reports whether the auxiliary data was written by a successful
// forward pass.
func (r *ForwardResult) Computed() bool { return r.data.Computed() }
