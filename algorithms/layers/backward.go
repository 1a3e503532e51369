// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package layers

import (
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/argument"
	"github.com/born-ml/algos/internal/tensor"
)

// BackwardInput holds the incoming gradient of a backward layer and the
// borrowed auxiliary data of its forward counterpart.
type BackwardInput struct {
	args *argument.Map
}

// NewBackwardInput creates an empty backward Input.
func NewBackwardInput() *BackwardInput {
	return &BackwardInput{args: argument.New(int(lastBackwardInput))}
}

// Arguments returns the underlying map.
func (in *BackwardInput) Arguments() *argument.Map { return in.args }

// InputGradient returns the gradient flowing in from the next layer.
func (in *BackwardInput) InputGradient() *tensor.Tensor { return in.args.Tensor(InputGradient) }

// SetInputGradient sets the gradient flowing in from the next layer.
func (in *BackwardInput) SetInputGradient(t *tensor.Tensor) { in.args.Set(InputGradient, t) }

// InputFromForward returns the borrowed auxiliary data. The zero view is
// returned when nothing was linked.
func (in *BackwardInput) InputFromForward() LayerDataView {
	v, _ := argument.Get[LayerDataView](in.args, InputFromForward)
	return v
}

// SetInputFromForward borrows the auxiliary data of a forward Result.
func (in *BackwardInput) SetInputFromForward(v LayerDataView) {
	if v.IsNil() {
		in.args.Set(InputFromForward, nil)
		return
	}
	in.args.Set(InputFromForward, v)
}

// CheckLayerData validates that auxiliary data is linked and was written by
// a completed forward pass.
func (in *BackwardInput) CheckLayerData() (LayerDataView, error) {
	v := in.InputFromForward()
	if v.IsNil() {
		return v, algorithm.Validation(algorithm.ErrNullLayerData, "inputFromForward", "")
	}
	if !v.Computed() {
		return v, algorithm.Validation(algorithm.ErrForwardNotComputed, "inputFromForward", "")
	}
	return v, nil
}

// Aux returns the auxiliary tensor id of the linked forward pass, checking
// that it exists with the given type and, when expected is non-nil, shape.
// CheckLayerData must have succeeded.
func (in *BackwardInput) Aux(id argument.ID, name string, dtype tensor.DataType, expected tensor.Shape) (*tensor.Tensor, error) {
	t := in.InputFromForward().Tensor(id)
	if t == nil {
		return nil, algorithm.Validation(algorithm.ErrMissingLayerData, name, "")
	}
	return t, algorithm.CheckTensorOfType(t, name, dtype, expected)
}

// CheckGradient validates the incoming gradient against the expected shape and
// returns it.
func (in *BackwardInput) CheckGradient(expected tensor.Shape) (*tensor.Tensor, error) {
	g := in.InputGradient()
	return g, algorithm.CheckTensor(g, "inputGradient", expected)
}

// BackwardResult holds the gradient with respect to the layer input and the
// derivatives with respect to the layer's weights and biases.
type BackwardResult struct {
	args *argument.Map
}

// NewBackwardResult creates an empty backward Result.
func NewBackwardResult() *BackwardResult {
	return &BackwardResult{args: argument.New(int(lastBackwardResult))}
}

// Arguments returns the underlying map.
func (r *BackwardResult) Arguments() *argument.Map { return r.args }

// Gradient returns the gradient with respect to the layer input.
func (r *BackwardResult) Gradient() *tensor.Tensor { return r.args.Tensor(Gradient) }

// SetGradient sets the gradient tensor.
func (r *BackwardResult) SetGradient(t *tensor.Tensor) { r.args.Set(Gradient, t) }

// WeightDerivatives returns the derivatives with respect to the weights.
func (r *BackwardResult) WeightDerivatives() *tensor.Tensor {
	return r.args.Tensor(WeightDerivatives)
}

// SetWeightDerivatives sets the weight derivatives tensor.
func (r *BackwardResult) SetWeightDerivatives(t *tensor.Tensor) { r.args.Set(WeightDerivatives, t) }

// BiasDerivatives returns the derivatives with respect to the biases.
func (r *BackwardResult) BiasDerivatives() *tensor.Tensor { return r.args.Tensor(BiasDerivatives) }

// SetBiasDerivatives sets the bias derivatives tensor.
func (r *BackwardResult) SetBiasDerivatives(t *tensor.Tensor) { r.args.Set(BiasDerivatives, t) }

// AllocateBuffer allocates the buffer of id with shape if missing.
func (r *BackwardResult) AllocateBuffer(id argument.ID, name string, shape tensor.Shape, dtype tensor.DataType) error {
	return algorithm.AllocateIfMissing(r.args.Tensor(id), name, shape, dtype, func(t *tensor.Tensor) {
		r.args.Set(id, t)
	})
}

// CheckBuffer validates the buffer of id against the expected shape.
func (r *BackwardResult) CheckBuffer(id argument.ID, name string, expected tensor.Shape) error {
	return algorithm.CheckTensor(r.args.Tensor(id), name, expected)
}
