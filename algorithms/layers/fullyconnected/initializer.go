// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fullyconnected

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

// InitializeWeights sets weights drawn uniformly from [-1/√fanIn, 1/√fanIn]
// and zero biases on in, sized for its data tensor. The same seed always
// produces the same weights.
func InitializeWeights(in *ForwardInput, par Parameter, dtype tensor.DataType, seed uint64) error {
	if err := in.CheckData(2); err != nil {
		return err
	}
	if err := par.check(); err != nil {
		return err
	}
	shape := weightsShape(in.Data().Shape(), par.NOutputs)
	w, err := tensor.New(shape, dtype)
	if err != nil {
		return algorithm.Allocation(algorithm.ErrIncorrectSizeOfDimension, "weights", "%v", err)
	}
	b, err := tensor.New(tensor.Shape{par.NOutputs}, dtype)
	if err != nil {
		return algorithm.Allocation(algorithm.ErrIncorrectSizeOfDimension, "biases", "%v", err)
	}

	fanIn := shape.NumElements() / par.NOutputs
	limit := 1 / math.Sqrt(float64(fanIn))
	rng := rand.New(rand.NewPCG(seed, seed+1))

	switch dtype {
	case tensor.Float32:
		fillUniform(w.AsFloat32(), limit, rng)
	case tensor.Float64:
		fillUniform(w.AsFloat64(), limit, rng)
	default:
		return algorithm.Validation(algorithm.ErrIncorrectTypeOfTensor, "weights", "unsupported dtype %s", dtype)
	}

	in.SetWeights(w)
	in.SetBiases(b)
	return nil
}

func fillUniform[T tensor.Float](dst []T, limit float64, rng *rand.Rand) {
	for i := range dst {
		dst[i] = T((rng.Float64()*2 - 1) * limit)
	}
}
