// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/augment/config"
	"github.com/gomlx/augment/ui/commandline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newInspectCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Build a pipeline and print its nodes and tensors",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.inspect(os.Stdout)
		},
	}
}

func (opts *options) inspect(w io.Writer) error {
	cfg, vars, err := opts.loadPipeline()
	if err != nil {
		return err
	}
	backend, err := opts.newBackend()
	if err != nil {
		return err
	}
	defer backend.Finalize()
	inst, err := config.Instantiate(backend, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := inst.Release(); err != nil {
			klog.Errorf("releasing pipeline: %+v", err)
		}
	}()
	p := inst.Context.Pipeline()
	if err = p.Build(); err != nil {
		return err
	}

	if len(vars) > 0 {
		_, _ = fmt.Fprintln(w, titleStyle.Render("Variables"))
		_, _ = fmt.Fprintln(w, commandline.SprintSettings(vars))
	}
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Backend %s", backend.Name())))
	_, _ = fmt.Fprintln(w, commandline.SprintPipeline(p))

	_, _ = fmt.Fprintln(w, titleStyle.Render("Configured tensors"))
	table := newPlainTable(lipgloss.Left).Headers("Name", "Role", "Tensor")
	for _, in := range cfg.Inputs {
		table.Row(in.Name, "input", inst.Tensors[in.Name].Name())
	}
	for _, src := range cfg.ExternalSources {
		table.Row(src.Name, "external source", inst.Tensors[src.Name].Name())
	}
	for _, param := range cfg.Parameters {
		table.Row(param.Name, param.Kind+" parameter", inst.Tensors[param.Name].String())
	}
	for _, aug := range cfg.Augmentations {
		role := aug.Type
		if _, found := inst.Outputs.Get(aug.Name); found {
			role += " (output)"
		}
		table.Row(aug.Name, role, inst.Tensors[aug.Name].Name())
	}
	_, _ = fmt.Fprintln(w, table.Render())
	if inst.Outputs.Len() == 0 {
		return errors.Errorf("pipeline %q has no outputs", cfg.Name)
	}
	names := make([]string, 0, inst.Outputs.Len())
	for pair := inst.Outputs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	_, _ = fmt.Fprintf(w, "Outputs: %s\n", strings.Join(names, ", "))
	return nil
}
