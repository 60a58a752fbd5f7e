// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/gomlx/augment/api"
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/augment/types/tensors"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"k8s.io/klog/v2"
)

// augmentationType describes how to add an augmentation of a given type.
type augmentationType struct {
	// params names, in the order the nodes take them.
	params      []string
	withTensors func(ctx *api.Context, input *tensors.Tensor, ts []*tensors.Tensor) *tensors.Tensor
	withValues  func(ctx *api.Context, input *tensors.Tensor, values []float32) *tensors.Tensor
}

var augmentationTypes = map[string]augmentationType{
	"brightness": {
		params: []string{"alpha", "beta"},
		withTensors: func(ctx *api.Context, input *tensors.Tensor, ts []*tensors.Tensor) *tensors.Tensor {
			return api.Brightness(ctx, input, ts[0], ts[1])
		},
		withValues: func(ctx *api.Context, input *tensors.Tensor, values []float32) *tensors.Tensor {
			return api.BrightnessFixed(ctx, input, values[0], values[1])
		},
	},
	"contrast": {
		params: []string{"factor", "center"},
		withTensors: func(ctx *api.Context, input *tensors.Tensor, ts []*tensors.Tensor) *tensors.Tensor {
			return api.Contrast(ctx, input, ts[0], ts[1])
		},
		withValues: func(ctx *api.Context, input *tensors.Tensor, values []float32) *tensors.Tensor {
			return api.ContrastFixed(ctx, input, values[0], values[1])
		},
	},
}

// Instance of a configured pipeline.
type Instance struct {
	Config  *Pipeline
	Context *api.Context

	// Inputs by name, in definition order.
	Inputs *orderedmap.OrderedMap[string, *tensors.Tensor]

	// Outputs by name, in the order given by the configuration.
	Outputs *orderedmap.OrderedMap[string, *tensors.Tensor]

	// Tensors holds every named tensor: inputs, external sources, parameters and augmentation outputs.
	Tensors map[string]*tensors.Tensor
}

// Instantiate creates the pipeline described by config on backend.
//
// Feeders given by the name of an external source replace the values listed in the configuration.
// On error the partially built pipeline is released.
func Instantiate(backend backends.Backend, config *Pipeline, feeders map[string]pipeline.Feeder) (inst *Instance, err error) {
	if err = config.Validate(); err != nil {
		return nil, err
	}
	memType, _ := config.memType()
	ctx := api.NewContext(backend, pipeline.Config{
		Name:      config.Name,
		BatchSize: config.BatchSize,
		Seed:      config.Seed,
		MemType:   memType,
	})
	if ctx.Status() != api.StatusOK {
		return nil, ctx.Error()
	}
	inst = &Instance{
		Config:  config,
		Context: ctx,
		Inputs:  orderedmap.New[string, *tensors.Tensor](),
		Outputs: orderedmap.New[string, *tensors.Tensor](),
		Tensors: make(map[string]*tensors.Tensor),
	}
	defer func() {
		if err != nil {
			api.Release(ctx)
			inst = nil
		}
	}()
	captured := func(what string) error { return inst.statusError(what, ctx.Status()) }

	for _, in := range config.Inputs {
		info, _ := in.Spec.Info(config.BatchSize)
		t := api.CreateInput(ctx, info)
		if t == nil {
			return nil, captured(fmt.Sprintf("input %q", in.Name))
		}
		inst.Inputs.Set(in.Name, t)
		inst.Tensors[in.Name] = t
	}
	for _, src := range config.ExternalSources {
		if err = inst.addExternalSource(src, feeders[src.Name]); err != nil {
			return nil, err
		}
	}
	for _, param := range config.Parameters {
		t := newParameter(ctx, param)
		if t == nil {
			return nil, captured(fmt.Sprintf("parameter %q", param.Name))
		}
		inst.Tensors[param.Name] = t
	}
	var last string
	for _, aug := range config.Augmentations {
		def := augmentationTypes[aug.Type]
		input := inst.Tensors[aug.Input]
		var output *tensors.Tensor
		if len(aug.Values) > 0 {
			values := make([]float32, len(def.params))
			for ii, name := range def.params {
				values[ii] = float32(aug.Values[name])
			}
			output = def.withValues(ctx, input, values)
		} else {
			ts := make([]*tensors.Tensor, len(def.params))
			for ii, name := range def.params {
				if ref, found := aug.Params[name]; found {
					ts[ii] = inst.Tensors[ref]
				}
			}
			output = def.withTensors(ctx, input, ts)
		}
		if output == nil {
			return nil, captured(fmt.Sprintf("augmentation %s %q", aug.Type, aug.Name))
		}
		inst.Tensors[aug.Name] = output
		last = aug.Name
	}

	outputs := config.Outputs
	if len(outputs) == 0 && last != "" {
		outputs = []string{last}
	}
	for _, name := range outputs {
		inst.Outputs.Set(name, inst.Tensors[name])
	}
	klog.V(1).Infof("pipeline %q instantiated: %d inputs, %d external sources, %d parameters, %d augmentations",
		config.Name, len(config.Inputs), len(config.ExternalSources), len(config.Parameters), len(config.Augmentations))
	return inst, nil
}

func (inst *Instance) addExternalSource(src *ExternalSource, feeder pipeline.Feeder) error {
	config := inst.Config
	info, _ := src.Spec.Info(config.BatchSize)
	if feeder == nil {
		if len(src.Values) == 0 {
			return errors.Errorf("pipeline %q: external_source %q has no values and no feeder was given",
				config.Name, src.Name)
		}
		feeder = valuesFeeder(src.Values, src.Repeat)
	}
	p := inst.Context.Pipeline()
	var output *tensors.Tensor
	var err error
	switch {
	case src.SourceID != "":
		output, err = p.ExternalSourceWithID(nil, info, feeder, src.SourceID, src.Path)
	case src.Path == "":
		output, err = p.ExternalSource(nil, info, feeder)
	default:
		output, err = p.ExternalSourceWithPath(nil, info, feeder, src.Path)
	}
	if err != nil {
		return errors.WithMessagef(err, "pipeline %q: external_source %q", config.Name, src.Name)
	}
	inst.Tensors[src.Name] = output
	return nil
}

// valuesFeeder feeds values in order, restarting from the beginning if repeat is set.
func valuesFeeder(values []float64, repeat bool) pipeline.Feeder {
	if !repeat {
		return pipeline.NewSliceFeeder(values)
	}
	var pos int
	return pipeline.SourceFunc[float64](func(count int) []float64 {
		batch := make([]float64, count)
		for ii := range batch {
			batch[ii] = values[pos]
			pos = (pos + 1) % len(values)
		}
		return batch
	})
}

func newParameter(ctx *api.Context, param *Parameter) *tensors.Tensor {
	isInt, _ := param.isInt()
	kind, _ := param.kind()
	switch kind {
	case KindUniform:
		if isInt {
			return api.CreateIntUniformRand(ctx, int32(param.Range[0]), int32(param.Range[1]))
		}
		return api.CreateFloatUniformRand(ctx, float32(param.Range[0]), float32(param.Range[1]), 1)
	case KindConstant:
		if isInt {
			return api.CreateIntParameter(ctx, int32(param.Value))
		}
		return api.CreateFloatParameter(ctx, float32(param.Value), 1)
	default:
		if isInt {
			values := make([]int32, len(param.Values))
			for ii, v := range param.Values {
				values[ii] = int32(v)
			}
			return api.CreateIntRand(ctx, values, param.Frequencies)
		}
		values := make([]float32, len(param.Values))
		for ii, v := range param.Values {
			values[ii] = float32(v)
		}
		return api.CreateFloatRand(ctx, values, param.Frequencies)
	}
}

// statusError returns the error captured by the context for a failed operation.
func (inst *Instance) statusError(what string, status api.Status) error {
	cause := inst.Context.Error()
	if cause == nil {
		cause = errors.Errorf("status %s", status)
	}
	return errors.WithMessagef(cause, "pipeline %q: %s", inst.Config.Name, what)
}

// SetInput copies the flat values of the named input, and its ROIs if not nil.
func (inst *Instance) SetInput(name string, flat any, rois []int32) error {
	input, found := inst.Inputs.Get(name)
	if !found {
		return errors.Errorf("pipeline %q has no input %q", inst.Config.Name, name)
	}
	if status := api.SetInput(inst.Context, input, flat, rois); status != api.StatusOK {
		return inst.statusError(fmt.Sprintf("setting input %q", name), status)
	}
	return nil
}

// ReadOutput copies the values of the named output to flat.
func (inst *Instance) ReadOutput(name string, flat any) error {
	output, found := inst.Outputs.Get(name)
	if !found {
		return errors.Errorf("pipeline %q has no output %q", inst.Config.Name, name)
	}
	if status := api.ReadOutput(inst.Context, output, flat); status != api.StatusOK {
		return inst.statusError(fmt.Sprintf("reading output %q", name), status)
	}
	return nil
}

// Run processes one batch.
func (inst *Instance) Run() error {
	if status := api.Run(inst.Context); status != api.StatusOK {
		return inst.statusError("run", status)
	}
	return nil
}

// Release the pipeline and its parameters.
func (inst *Instance) Release() error {
	if status := api.Release(inst.Context); status != api.StatusOK {
		return inst.statusError("release", status)
	}
	return nil
}
