package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/algos/algorithms/layers"
	"github.com/born-ml/algos/algorithms/layers/fullyconnected"
	"github.com/born-ml/algos/internal/algorithm"
	"github.com/born-ml/algos/internal/dispatch"
	"github.com/born-ml/algos/internal/envconfig"
	"github.com/born-ml/algos/internal/optim"
	"github.com/born-ml/algos/internal/serialization"
	"github.com/born-ml/algos/internal/tensor"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "algos %s\n", version)
		},
	}
}

func newCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show the CPU capability level used for kernel selection",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			detected := dispatch.Detect()
			table := newTable(cmd.OutOrStdout(), "LEVEL", "SELECTED")
			for _, level := range dispatch.Levels() {
				mark := ""
				if level == detected {
					mark = "*"
				}
				table.Append([]string{level.String(), mark})
			}
			table.Render()
			fmt.Fprintf(cmd.OutOrStdout(), "\nfeatures: %s\n", strings.Join(dispatch.Features(), " "))
		},
	}
}

func newKernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List every registered kernel variant",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			var data [][]string
			for _, t := range dispatch.Tables() {
				for _, k := range t.Keys() {
					data = append(data, []string{t.Name(), k.DType.String(), fmt.Sprint(int(k.Method)), k.Capability.String()})
				}
			}
			table := newTable(cmd.OutOrStdout(), "ALGORITHM", "DTYPE", "METHOD", "LEVEL")
			table.AppendBulk(data)
			table.Render()
		},
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective environment configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			vars := envconfig.AsMap()
			table := newTable(cmd.OutOrStdout(), "VARIABLE", "VALUE", "DESCRIPTION")
			for _, kv := range envconfig.Values() {
				table.Append([]string{kv[0], kv[1], vars[kv[0]].Description})
			}
			table.Render()
		},
	}
}

func newDemoCmd() *cobra.Command {
	var (
		cfg                  demoConfig
		dtypeName, levelName string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Train a fully-connected layer with forward and backward passes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dtype, ok := tensor.ParseDataType(dtypeName)
			if !ok || !dtype.IsFloat() {
				return fmt.Errorf("unsupported dtype %q", dtypeName)
			}
			cfg.dtype = dtype
			if levelName != "" {
				level, err := dispatch.ParseCapability(levelName)
				if err != nil {
					return err
				}
				cfg.opts = append(cfg.opts, algorithm.WithCapability(level))
			}
			return runDemo(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().IntVar(&cfg.batch, "batch", 8, "Number of observations")
	cmd.Flags().IntVar(&cfg.features, "features", 16, "Number of input features")
	cmd.Flags().IntVar(&cfg.outputs, "outputs", 4, "Number of layer outputs")
	cmd.Flags().IntVar(&cfg.steps, "steps", 1, "Number of training steps")
	cmd.Flags().StringVar(&cfg.optimizer, "optimizer", "sgd", "Update rule (sgd, adam)")
	cmd.Flags().Float64Var(&cfg.lr, "lr", 0.1, "Learning rate")
	cmd.Flags().StringVar(&cfg.save, "save", "", "Write the trained forward result to this archive")
	cmd.Flags().StringVar(&dtypeName, "dtype", "float32", "Floating point type (float32, float64)")
	cmd.Flags().StringVar(&levelName, "level", "", "Cap kernel selection at this capability level")
	return cmd
}

type demoConfig struct {
	batch, features, outputs, steps int
	optimizer, save                 string
	lr                              float64
	dtype                           tensor.DataType
	opts                            []algorithm.Option
}

func newOptimizer(name string, lr float64) (optim.Optimizer, error) {
	switch name {
	case "sgd":
		return optim.NewSGD(optim.SGDConfig{LR: lr, Momentum: 0.9}), nil
	case "adam":
		return optim.NewAdam(optim.AdamConfig{LR: lr}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

// runDemo fits a fully-connected layer on random data to a target of ones,
// minimizing 1/(2n)·Σ(y-1)². The backward layer averages over the batch, so
// the input gradient is the plain residual.
func runDemo(w io.Writer, cfg demoConfig) error {
	opt, err := newOptimizer(cfg.optimizer, cfg.lr)
	if err != nil {
		return err
	}
	par := fullyconnected.Parameter{NOutputs: cfg.outputs}
	fwd, err := fullyconnected.NewForwardBatch(cfg.dtype, algorithm.DefaultDense, par, cfg.opts...)
	if err != nil {
		return err
	}
	bwd, err := fullyconnected.NewBackwardBatch(cfg.dtype, algorithm.DefaultDense, par, cfg.opts...)
	if err != nil {
		return err
	}
	layers.Link(fwd.Result(), bwd.Input)

	x, err := tensor.New(tensor.Shape{cfg.batch, cfg.features}, cfg.dtype)
	if err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(1, 2))
	fill(x, func(int) float64 { return rng.Float64()*2 - 1 })
	fwd.Input.SetData(x)
	if err := fullyconnected.InitializeWeights(fwd.Input, par, cfg.dtype, 1); err != nil {
		return err
	}
	g, err := tensor.New(tensor.Shape{cfg.batch, cfg.outputs}, cfg.dtype)
	if err != nil {
		return err
	}
	bwd.Input.SetInputGradient(g)

	var first, last float64
	for step := range max(cfg.steps, 1) {
		if err := fwd.Compute(); err != nil {
			return err
		}
		y := read(fwd.Result().Value())
		loss := 0.0
		fill(g, func(i int) float64 {
			r := y[i] - 1
			loss += r * r / float64(2*cfg.batch)
			return r
		})
		if step == 0 {
			first = loss
		}
		last = loss
		klog.V(2).InfoS("demo step", "step", step, "loss", loss)

		if err := bwd.Compute(); err != nil {
			return err
		}
		err := opt.Step(
			optim.Update{Param: fwd.Input.Weights(), Grad: bwd.Result().WeightDerivatives()},
			optim.Update{Param: fwd.Input.Biases(), Grad: bwd.Result().BiasDerivatives()},
		)
		if err != nil {
			return err
		}
	}

	table := newTable(w, "STEP", "KERNEL", "TENSOR", "SHAPE")
	table.AppendBulk([][]string{
		{"forward", fwd.Kernel().String(), "value", fwd.Result().Value().Shape().String()},
		{"backward", bwd.Kernel().String(), "gradient", bwd.Result().Gradient().Shape().String()},
		{"", "", "weightDerivatives", bwd.Result().WeightDerivatives().Shape().String()},
		{"", "", "biasDerivatives", bwd.Result().BiasDerivatives().Shape().String()},
	})
	table.Render()
	fmt.Fprintf(w, "\nloss: %.6g -> %.6g after %d step(s) of %s\n", first, last, max(cfg.steps, 1), cfg.optimizer)

	if cfg.save != "" {
		if err := serialization.WriteFile(cfg.save, fwd.Result()); err != nil {
			return err
		}
		fmt.Fprintf(w, "saved forward result to %s\n", cfg.save)
	}
	return nil
}

func fill(t *tensor.Tensor, f func(i int) float64) {
	switch t.DType() {
	case tensor.Float32:
		data := t.AsFloat32()
		for i := range data {
			data[i] = float32(f(i))
		}
	case tensor.Float64:
		data := t.AsFloat64()
		for i := range data {
			data[i] = f(i)
		}
	}
}

func read(t *tensor.Tensor) []float64 {
	if t.DType() == tensor.Float64 {
		return t.AsFloat64()
	}
	out := make([]float64, t.NumElements())
	for i, v := range t.AsFloat32() {
		out[i] = float64(v)
	}
	return out
}
