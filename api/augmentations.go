// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package api

import (
	"github.com/gomlx/augment/nodes"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/augment/types/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// CreateInput creates an images input tensor of the pipeline. It returns nil on failure.
func CreateInput(ctx *Context, info tensors.Info) *tensors.Tensor {
	var input *tensors.Tensor
	if ctx.try("CreateInput", func() (err error) {
		input, err = ctx.pipeline.CreateInput("", info)
		return
	}) != StatusOK {
		return nil
	}
	return input
}

// SetInput copies the flat values (and the ROIs, if not nil) to the input tensor.
func SetInput(ctx *Context, input *tensors.Tensor, flat any, rois []int32) Status {
	return ctx.try("SetInput", func() error { return ctx.pipeline.SetInput(input, flat, rois) })
}

// ReadOutput copies the values of the output tensor to flat.
func ReadOutput(ctx *Context, output *tensors.Tensor, flat any) Status {
	return ctx.try("ReadOutput", func() error { return ctx.pipeline.ReadOutput(output, flat) })
}

// outputFor creates the output tensor of an augmentation of input: same shape, layout and ROI type.
func outputFor(ctx *Context, input *tensors.Tensor) (*tensors.Tensor, error) {
	if input == nil {
		return nil, errors.New("nil input tensor")
	}
	in := input.Info()
	info := tensors.NewInfo(in.Shape(), in.Layout(), in.MemType()).WithROIType(in.ROIType())
	return ctx.pipeline.CreateTensor("", info)
}

// paramInitializer is a node configured either with parameter tensors or with fixed values.
type paramInitializer interface {
	nodes.Node
	InitTensors(ts ...*tensors.Tensor) error
	InitValues(values ...float32) error
}

// addAugmentation creates the output tensor, the node with newNode, initializes it and adds it to the pipeline.
func addAugmentation[N paramInitializer](ctx *Context, op string, input *tensors.Tensor,
	newNode func(input, output *tensors.Tensor) N, init func(node N) error) *tensors.Tensor {
	var output *tensors.Tensor
	if ctx.try(op, func() error {
		var err error
		output, err = outputFor(ctx, input)
		if err != nil {
			return err
		}
		node := newNode(input, output)
		if err = init(node); err != nil {
			if releaseErr := node.Release(); releaseErr != nil {
				klog.Warningf("%s: failed to release node after failed initialization: %+v", op, releaseErr)
			}
			return err
		}
		return ctx.pipeline.Add(node)
	}) != StatusOK {
		return nil
	}
	return output
}

// Brightness adds a brightness augmentation of input, output = input*alpha + beta, and returns its output.
// The alpha and beta parameter tensors are optional: a nil one uses the default random range.
// Externally sourced tensors are read per sample from the device.
func Brightness(ctx *Context, input, alpha, beta *tensors.Tensor) *tensors.Tensor {
	return addAugmentation(ctx, "Brightness", input, ctx.newBrightness, func(node *nodes.Brightness) error {
		return node.InitTensors(alpha, beta)
	})
}

// BrightnessFixed adds a brightness augmentation with constant alpha and beta.
func BrightnessFixed(ctx *Context, input *tensors.Tensor, alpha, beta float32) *tensors.Tensor {
	return addAugmentation(ctx, "BrightnessFixed", input, ctx.newBrightness, func(node *nodes.Brightness) error {
		return node.InitValues(alpha, beta)
	})
}

// Contrast adds a contrast augmentation of input, output = (input-center)*factor + center, and returns its
// output. The factor and center parameter tensors are optional: a nil one uses the default random range.
func Contrast(ctx *Context, input, factor, center *tensors.Tensor) *tensors.Tensor {
	return addAugmentation(ctx, "Contrast", input, ctx.newContrast, func(node *nodes.Contrast) error {
		return node.InitTensors(factor, center)
	})
}

// ContrastFixed adds a contrast augmentation with constant factor and center.
func ContrastFixed(ctx *Context, input *tensors.Tensor, factor, center float32) *tensors.Tensor {
	return addAugmentation(ctx, "ContrastFixed", input, ctx.newContrast, func(node *nodes.Contrast) error {
		return node.InitValues(factor, center)
	})
}

func (ctx *Context) newBrightness(input, output *tensors.Tensor) *nodes.Brightness {
	return nodes.NewBrightness(ctx.pipeline.Factory(), input, output)
}

func (ctx *Context) newContrast(input, output *tensors.Tensor) *nodes.Contrast {
	return nodes.NewContrast(ctx.pipeline.Factory(), input, output)
}

// ExternalSource adds an external source whose output, created with info and returned, is filled each batch
// with the values given by feeder. It returns nil on failure.
func ExternalSource(ctx *Context, info tensors.Info, feeder pipeline.Feeder) *tensors.Tensor {
	var output *tensors.Tensor
	if ctx.try("ExternalSource", func() (err error) {
		output, err = ctx.pipeline.ExternalSource(nil, info, feeder)
		return
	}) != StatusOK {
		return nil
	}
	return output
}
