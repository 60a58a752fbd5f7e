// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/gomlx/augment/backends"
	_ "github.com/gomlx/augment/backends/default"
	"github.com/gomlx/augment/config"
	"github.com/gomlx/augment/ui/commandline"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zclconf/go-cty/cty"
)

// options shared by the commands that instantiate a configured pipeline.
type options struct {
	backend  string
	config   string
	pipeline string
	vars     []string
	settings string
}

func (opts *options) register(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVar(&opts.backend, "backend", "",
		"Backend configuration formatted as \"<name>:<config>\". If empty, $"+backends.AUGMENT_BACKEND+" or the default backend is used.")
	flags.StringVar(&opts.config, "config", "", "HCL file with the pipeline definitions.")
	flags.StringVar(&opts.pipeline, "pipeline", "", "Name of the pipeline to use, required if the configuration defines more than one.")
	flags.StringArrayVar(&opts.vars, "var", nil, "Variable made available to the configuration as var.<name>, formatted as \"name=value\".")
	flags.StringVar(&opts.settings, "set", "",
		"Variables separated by \";\", e.g. \"seed=3;alpha=1.5\". Entries \"file:<path>\" read the variables from a file, one per line.")
}

// newBackend creates the backend selected by the --backend flag.
func (opts *options) newBackend() (backend backends.Backend, err error) {
	err = exceptions.TryCatch[error](func() {
		if opts.backend == "" {
			backend = backends.New()
		} else {
			backend = backends.NewWithConfig(opts.backend)
		}
	})
	if err != nil {
		err = errors.WithMessagef(err, "registered backends are %v", backends.List())
	}
	return
}

// variables merges the --var and --set definitions, the later taking precedence.
func (opts *options) variables() (map[string]cty.Value, error) {
	defs := append([]string(nil), opts.vars...)
	settings, err := commandline.ParseSettings(opts.settings)
	if err != nil {
		return nil, err
	}
	defs = append(defs, settings...)
	return config.ParseVars(defs)
}

// loadPipeline parses the configuration file and selects the pipeline.
func (opts *options) loadPipeline() (*config.Pipeline, map[string]cty.Value, error) {
	if opts.config == "" {
		return nil, nil, errors.New("missing --config")
	}
	vars, err := opts.variables()
	if err != nil {
		return nil, nil, err
	}
	file, err := config.Parse(opts.config, nil, vars)
	if err != nil {
		return nil, nil, err
	}
	p, err := file.Pipeline(opts.pipeline)
	if err != nil {
		return nil, nil, err
	}
	return p, vars, nil
}
