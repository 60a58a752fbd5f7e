// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// createParamTensor creates a parameter with newParam and attaches it to a new tensor of dims
// {batchSize*shape, 1}. It returns nil on failure, with the error captured in ctx.
func createParamTensor[T int32 | float32](ctx *Context, op string, shape int,
	newParam func(f *params.Factory) (*params.Parameter[T], error)) *tensors.Tensor {
	var output *tensors.Tensor
	status := ctx.try(op, func() error {
		if shape < 1 {
			return errors.Errorf("invalid shape %d", shape)
		}
		pipe := ctx.pipeline
		p, err := newParam(pipe.Factory())
		if err != nil {
			return err
		}
		ctx.destroyers = append(ctx.destroyers, p.Destroy)
		dtype := dtypes.FromGenericsType[T]()
		info := tensors.NewInfo(shapes.Make(dtype, pipe.BatchSize()*shape, 1), tensors.LayoutNone, pipe.Config().MemType)
		output, err = pipe.CreateTensor("", info)
		if err != nil {
			return err
		}
		switch typed := any(p).(type) {
		case *params.Parameter[int32]:
			output.SetIntParam(typed)
		case *params.Parameter[float32]:
			output.SetFloatParam(typed)
		}
		return nil
	})
	if status != StatusOK {
		return nil
	}
	return output
}

// CreateIntUniformRand returns a parameter tensor of dims {batchSize, 1} driven by an int32 generator uniform
// in [start, end] (inclusive). It returns nil on failure.
func CreateIntUniformRand(ctx *Context, start, end int32) *tensors.Tensor {
	return createParamTensor(ctx, "CreateIntUniformRand", 1, func(f *params.Factory) (*params.Parameter[int32], error) {
		return params.NewUniform(f, start, end), nil
	})
}

// CreateFloatUniformRand returns a parameter tensor of dims {batchSize*shape, 1} driven by a float32 generator
// uniform in [start, end). It returns nil on failure.
func CreateFloatUniformRand(ctx *Context, start, end float32, shape int) *tensors.Tensor {
	return createParamTensor(ctx, "CreateFloatUniformRand", shape, func(f *params.Factory) (*params.Parameter[float32], error) {
		return params.NewUniform(f, start, end), nil
	})
}

// CreateIntRand returns a parameter tensor of dims {batchSize, 1} driven by an int32 generator that draws values
// with probabilities proportional to frequencies. It returns nil on failure.
func CreateIntRand(ctx *Context, values []int32, frequencies []float64) *tensors.Tensor {
	return createParamTensor(ctx, "CreateIntRand", 1, func(f *params.Factory) (*params.Parameter[int32], error) {
		return params.NewCustom(f, values, frequencies)
	})
}

// CreateFloatRand returns a parameter tensor of dims {batchSize, 1} driven by a float32 generator that draws
// values with probabilities proportional to frequencies. It returns nil on failure.
func CreateFloatRand(ctx *Context, values []float32, frequencies []float64) *tensors.Tensor {
	return createParamTensor(ctx, "CreateFloatRand", 1, func(f *params.Factory) (*params.Parameter[float32], error) {
		return params.NewCustom(f, values, frequencies)
	})
}

// CreateIntParameter returns a parameter tensor of dims {batchSize, 1} holding the constant value.
func CreateIntParameter(ctx *Context, value int32) *tensors.Tensor {
	return createParamTensor(ctx, "CreateIntParameter", 1, func(f *params.Factory) (*params.Parameter[int32], error) {
		return params.NewSingleValue(f, value), nil
	})
}

// CreateFloatParameter returns a parameter tensor of dims {batchSize*shape, 1} holding the constant value.
func CreateFloatParameter(ctx *Context, value float32, shape int) *tensors.Tensor {
	return createParamTensor(ctx, "CreateFloatParameter", shape, func(f *params.Factory) (*params.Parameter[float32], error) {
		return params.NewSingleValue(f, value), nil
	})
}

// intParam returns the int32 parameter attached to t, or logs and returns nil.
func intParam(op string, t *tensors.Tensor) *params.Parameter[int32] {
	if t == nil {
		klog.Errorf("%s: nil parameter tensor", op)
		return nil
	}
	p, ok := t.IntParam()
	if !ok || !p.Valid() {
		klog.Errorf("%s: tensor %s has no valid int parameter (it has %s)", op, t, t.ParamKind())
		return nil
	}
	return p
}

// floatParam returns the float32 parameter attached to t, or logs and returns nil.
func floatParam(op string, t *tensors.Tensor) *params.Parameter[float32] {
	if t == nil {
		klog.Errorf("%s: nil parameter tensor", op)
		return nil
	}
	p, ok := t.FloatParam()
	if !ok || !p.Valid() {
		klog.Errorf("%s: tensor %s has no valid float parameter (it has %s)", op, t, t.ParamKind())
		return nil
	}
	return p
}

// updateStatus logs the failure of an update and converts it to a Status.
func updateStatus(op string, err error) Status {
	if err != nil {
		klog.Errorf("%s: %v", op, err)
	}
	return statusOf(err)
}

// UpdateIntUniformRand changes the range of the uniform generator attached to t. It returns
// StatusInvalidParameterType, leaving the generator unchanged, if t isn't an int uniform parameter tensor.
func UpdateIntUniformRand(start, end int32, t *tensors.Tensor) Status {
	const op = "UpdateIntUniformRand"
	p := intParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateUniform(start, end))
}

// UpdateFloatUniformRand changes the range of the uniform generator attached to t. It returns
// StatusInvalidParameterType, leaving the generator unchanged, if t isn't a float uniform parameter tensor.
func UpdateFloatUniformRand(start, end float32, t *tensors.Tensor) Status {
	const op = "UpdateFloatUniformRand"
	p := floatParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateUniform(start, end))
}

// UpdateIntParameter changes the value of the constant int parameter attached to t.
func UpdateIntParameter(value int32, t *tensors.Tensor) Status {
	const op = "UpdateIntParameter"
	p := intParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateValue(value))
}

// UpdateFloatParameter changes the value of the constant float parameter attached to t.
func UpdateFloatParameter(value float32, t *tensors.Tensor) Status {
	const op = "UpdateFloatParameter"
	p := floatParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateValue(value))
}

// UpdateIntRand changes the values and frequencies of the custom int generator attached to t.
// Invalid values or frequencies return StatusUpdateParameterFailed.
func UpdateIntRand(values []int32, frequencies []float64, t *tensors.Tensor) Status {
	const op = "UpdateIntRand"
	p := intParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateCustom(values, frequencies))
}

// UpdateFloatRand changes the values and frequencies of the custom float generator attached to t.
// Invalid values or frequencies return StatusUpdateParameterFailed.
func UpdateFloatRand(values []float32, frequencies []float64, t *tensors.Tensor) Status {
	const op = "UpdateFloatRand"
	p := floatParam(op, t)
	if p == nil {
		return StatusInvalidParameterType
	}
	return updateStatus(op, p.UpdateCustom(values, frequencies))
}

// GetIntValue returns the current value of the int parameter attached to t, or 0 if there is none.
func GetIntValue(t *tensors.Tensor) int32 {
	p := intParam("GetIntValue", t)
	if p == nil {
		return 0
	}
	return p.Get()
}

// GetFloatValue returns the current value of the float parameter attached to t, or 0 if there is none.
func GetFloatValue(t *tensors.Tensor) float32 {
	p := floatParam("GetFloatValue", t)
	if p == nil {
		return 0
	}
	return p.Get()
}
