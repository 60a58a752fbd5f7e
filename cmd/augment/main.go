// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// augment runs, inspects and samples augmentation pipelines described in HCL configuration files.
//
// Examples:
//
//	augment run --config=pipelines.hcl --images=$HOME/photos --out=/tmp/augmented --batches=10
//	augment inspect --config=pipelines.hcl --pipeline=train --var=seed=42
//	augment sample --kind=uniform --range=0.5,1.5 --num=10000 --plot=/tmp/alpha.png
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func main() {
	klog.InitFlags(nil)
	if err := newRootCommand().Execute(); err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}
	klog.Flush()
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "augment",
		Short:         "Data augmentation pipelines for images",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	opts.register(root)
	root.AddCommand(
		newRunCommand(opts),
		newInspectCommand(opts),
		newSampleCommand(),
	)
	return root
}
