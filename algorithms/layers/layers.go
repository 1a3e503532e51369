// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layers implements the forward/backward data-flow protocol shared by
// the neural network layers.
//
// A forward layer Result owns a LayerData map. When computed in training mode
// the forward pass writes into it every auxiliary tensor its backward
// counterpart needs. The backward layer Input borrows that map through a
// read-only LayerDataView:
//
//	fwd, _ := fullyconnected.NewForwardBatch(tensor.Float32, fullyconnected.Parameter{NOutputs: 4})
//	bwd, _ := fullyconnected.NewBackwardBatch(tensor.Float32, fullyconnected.Parameter{NOutputs: 4})
//	layers.Link(fwd.Result(), bwd.Input)
//
//	fwd.Input.SetData(x)
//	fwd.Input.SetWeights(w)
//	fwd.Input.SetBiases(b)
//	_ = fwd.Compute()
//
//	bwd.Input.SetInputGradient(g)
//	_ = bwd.Compute()
//
// Each layer package numbers its auxiliary tensors from zero.
package layers

import (
	"github.com/born-ml/algos/internal/argument"
)

// Forward Input argument ids.
const (
	Data argument.ID = iota
	Weights
	Biases
	lastForwardInput
)

// Forward Result argument ids.
const (
	Value argument.ID = iota
	ResultForBackward
	lastForwardResult
)

// Backward Input argument ids.
const (
	InputGradient argument.ID = iota
	InputFromForward
	lastBackwardInput
)

// Backward Result argument ids.
const (
	Gradient argument.ID = iota
	WeightDerivatives
	BiasDerivatives
	lastBackwardResult
)

// Parameter holds the settings common to every layer.
type Parameter struct {
	// PredictionStage disables the auxiliary data: the forward pass only
	// computes its value and no backward pass can follow.
	PredictionStage bool
}

// ForwardProducer is implemented by forward layer Results.
type ForwardProducer interface {
	LayerData() *LayerData
}

// BackwardConsumer is implemented by backward layer Inputs.
type BackwardConsumer interface {
	SetInputFromForward(view LayerDataView)
}

// Link makes the backward Input read the auxiliary data of the forward Result.
// Link again after replacing the forward Result.
func Link(fwd ForwardProducer, bwd BackwardConsumer) {
	bwd.SetInputFromForward(fwd.LayerData().View())
}
