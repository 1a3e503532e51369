// Package main provides the algos command line tool.
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/born-ml/algos/internal/envconfig"
)

const version = "v0.1.0-dev"

func newRootCmd() *cobra.Command {
	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)

	root := &cobra.Command{
		Use:          "algos",
		Short:        "Inspect and exercise the algorithm kernels",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if envconfig.Debug() {
				_ = fs.Set("v", "2")
			}
		},
	}
	root.PersistentFlags().AddGoFlagSet(fs)

	root.AddCommand(
		newVersionCmd(),
		newCapabilitiesCmd(),
		newKernelsCmd(),
		newConfigCmd(),
		newDemoCmd(),
	)
	return root
}

func main() {
	defer klog.Flush()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
