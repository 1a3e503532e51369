// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package binding

import (
	"github.com/born-ml/algos/algorithms/emgmm/initializer"
	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/algorithms/layers/averagepooling1d"
	"github.com/born-ml/algos/algorithms/layers/dropout"
	"github.com/born-ml/algos/algorithms/layers/fullyconnected"
	"github.com/born-ml/algos/algorithms/layers/logistic"
	"github.com/born-ml/algos/algorithms/layers/maximumpooling1d"
	"github.com/born-ml/algos/algorithms/layers/smoothrelu"
	"github.com/born-ml/algos/algorithms/layers/softmax"
	"github.com/born-ml/algos/algorithms/objective/crossentropy"
	"github.com/born-ml/algos/algorithms/objective/mse"
	"github.com/born-ml/algos/algorithms/qr"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/tensor"
)

func predictionStage(p *layers.Parameter, v int) { p.PredictionStage = v != 0 }

func init() {
	fc := setters[fullyconnected.Parameter]{
		"nOutputs":        func(p *fullyconnected.Parameter, v int) { p.NOutputs = v },
		"predictionStage": func(p *fullyconnected.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("fullyconnected.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := fullyconnected.NewForwardBatch(dt, m, fullyconnected.Parameter{NOutputs: 1})
		return wrap(b, err, fc)
	})
	Register("fullyconnected.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := fullyconnected.NewBackwardBatch(dt, m, fullyconnected.Parameter{NOutputs: 1})
		return wrap(b, err, fc)
	})

	do := setters[dropout.Parameter]{
		"seed":            func(p *dropout.Parameter, v int) { p.Seed = uint64(v) }, //nolint:gosec // seed bits only
		"predictionStage": func(p *dropout.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("dropout.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := dropout.NewForwardBatch(dt, m, dropout.DefaultParameter())
		return wrap(b, err, do)
	})
	Register("dropout.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := dropout.NewBackwardBatch(dt, m, dropout.DefaultParameter())
		return wrap(b, err, do)
	})

	lg := setters[logistic.Parameter]{
		"predictionStage": func(p *logistic.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("logistic.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := logistic.NewForwardBatch(dt, m, logistic.Parameter{})
		return wrap(b, err, lg)
	})
	Register("logistic.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := logistic.NewBackwardBatch(dt, m, logistic.Parameter{})
		return wrap(b, err, lg)
	})

	sr := setters[smoothrelu.Parameter]{
		"predictionStage": func(p *smoothrelu.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("smoothrelu.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := smoothrelu.NewForwardBatch(dt, m, smoothrelu.Parameter{})
		return wrap(b, err, sr)
	})
	Register("smoothrelu.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := smoothrelu.NewBackwardBatch(dt, m, smoothrelu.Parameter{})
		return wrap(b, err, sr)
	})

	sm := setters[softmax.Parameter]{
		"dimension":       func(p *softmax.Parameter, v int) { p.Dimension = v },
		"predictionStage": func(p *softmax.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("softmax.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := softmax.NewForwardBatch(dt, m, softmax.DefaultParameter())
		return wrap(b, err, sm)
	})
	Register("softmax.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := softmax.NewBackwardBatch(dt, m, softmax.DefaultParameter())
		return wrap(b, err, sm)
	})

	mp := setters[maximumpooling1d.Parameter]{
		"kernelSize":      func(p *maximumpooling1d.Parameter, v int) { p.KernelSize = v },
		"stride":          func(p *maximumpooling1d.Parameter, v int) { p.Stride = v },
		"padding":         func(p *maximumpooling1d.Parameter, v int) { p.Padding = v },
		"index":           func(p *maximumpooling1d.Parameter, v int) { p.Index = v },
		"predictionStage": func(p *maximumpooling1d.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("maximumpooling1d.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := maximumpooling1d.NewForwardBatch(dt, m, maximumpooling1d.DefaultParameter(1))
		return wrap(b, err, mp)
	})
	Register("maximumpooling1d.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := maximumpooling1d.NewBackwardBatch(dt, m, maximumpooling1d.DefaultParameter(1))
		return wrap(b, err, mp)
	})

	ap := setters[averagepooling1d.Parameter]{
		"kernelSize":      func(p *averagepooling1d.Parameter, v int) { p.KernelSize = v },
		"stride":          func(p *averagepooling1d.Parameter, v int) { p.Stride = v },
		"padding":         func(p *averagepooling1d.Parameter, v int) { p.Padding = v },
		"index":           func(p *averagepooling1d.Parameter, v int) { p.Index = v },
		"predictionStage": func(p *averagepooling1d.Parameter, v int) { predictionStage(&p.Parameter, v) },
	}
	Register("averagepooling1d.forward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := averagepooling1d.NewForwardBatch(dt, m, averagepooling1d.DefaultParameter(1))
		return wrap(b, err, ap)
	})
	Register("averagepooling1d.backward", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := averagepooling1d.NewBackwardBatch(dt, m, averagepooling1d.DefaultParameter(1))
		return wrap(b, err, ap)
	})

	Register("qr", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := qr.NewBatch(dt, m)
		return wrap(b, err, nil)
	})

	Register("objective.mse", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := mse.NewBatch(dt, m, mse.DefaultParameter())
		return wrap(b, err, setters[mse.Parameter]{
			"resultsToCompute": func(p *mse.Parameter, v int) { p.ResultsToCompute = mse.Results(v) }, //nolint:gosec // bitmask
		})
	})

	Register("objective.crossentropy", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := crossentropy.NewBatch(dt, m, crossentropy.DefaultParameter())
		return wrap(b, err, setters[crossentropy.Parameter]{
			"resultsToCompute": func(p *crossentropy.Parameter, v int) { p.ResultsToCompute = crossentropy.Results(v) }, //nolint:gosec // bitmask
		})
	})

	Register("emgmm.init", func(dt tensor.DataType, m algorithm.Method) (Algorithm, error) {
		b, err := initializer.NewBatch(dt, m, initializer.DefaultParameter(1))
		return wrap(b, err, setters[initializer.Parameter]{
			"nComponents": func(p *initializer.Parameter, v int) { p.NComponents = v },
			"nTrials":     func(p *initializer.Parameter, v int) { p.NTrials = v },
			"seed":        func(p *initializer.Parameter, v int) { p.Seed = uint64(v) }, //nolint:gosec // seed bits only
		})
	})
}
