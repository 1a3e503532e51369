// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the update rules that train layer parameters from
// the derivatives a backward layer computes.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom update rules
//
// # Basic Usage
//
//	par := fullyconnected.Parameter{NOutputs: 10}
//	fwd, _ := fullyconnected.NewForwardBatch(tensor.Float32, algorithm.DefaultDense, par)
//	bwd, _ := fullyconnected.NewBackwardBatch(tensor.Float32, algorithm.DefaultDense, par)
//	layers.Link(fwd.Result(), bwd.Input)
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})
//	for range epochs {
//	    _ = fwd.Compute()
//	    // write dLoss/dValue into bwd.Input.InputGradient()
//	    _ = bwd.Compute()
//	    _ = opt.Step(
//	        optim.Update{Param: fwd.Input.Weights(), Grad: bwd.Result().WeightDerivatives()},
//	        optim.Update{Param: fwd.Input.Biases(), Grad: bwd.Result().BiasDerivatives()},
//	    )
//	}
//
// Parameters are updated in place, so the forward Batch sees the new
// weights on its next Compute without being re-bound.
package optim
