// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package tensors implements Tensor, the edges of an augmentation pipeline.
//
// A Tensor is described by its Info (shape, layout, ROI type, whether it is externally sourced) and, once the
// pipeline allocates it, it holds the handle of its device buffer and of its ROI buffer (int32 with shape
// [batch_size, 4]).
//
// Parameter tensors -- created by the public API to drive augmentation parameters -- carry an attached
// random parameter, which the augmentation nodes adopt as the generator of their own parameter bindings.
package tensors

import (
	"fmt"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/exceptions"
)

//go:generate go tool enumer -type=ParamKind -output=gen_paramkind_enumer.go tensor.go

// ParamKind tells which parameter, if any, is attached to a Tensor.
type ParamKind int

const (
	NoParam ParamKind = iota
	IntParam
	FloatParam
)

// Tensor is an edge of the augmentation pipeline. See package documentation.
type Tensor struct {
	name   string
	info   Info
	handle backends.Buffer
	roi    backends.Buffer

	paramKind  ParamKind
	intParam   *params.Parameter[int32]
	floatParam *params.Parameter[float32]
}

// New creates a Tensor without device buffers.
func New(name string, info Info) *Tensor {
	return &Tensor{name: name, info: info}
}

// Name of the tensor, unique within a pipeline.
func (t *Tensor) Name() string { return t.name }

// Info describing the tensor.
func (t *Tensor) Info() Info { return t.info }

// SetExternalSource marks the tensor as fed by an external source.
func (t *Tensor) SetExternalSource(external bool) { t.info.externalSource = external }

// Handle of the device buffer, or nil if not allocated yet.
func (t *Tensor) Handle() backends.Buffer { return t.handle }

// ROI returns the handle of the ROI device buffer, or nil if not allocated yet.
func (t *Tensor) ROI() backends.Buffer { return t.roi }

// IsAllocated returns whether the device buffers were set.
func (t *Tensor) IsAllocated() bool { return t.handle != nil }

// SetHandles sets the device buffers of the tensor. It is called by the pipeline that owns the tensor,
// which is responsible for releasing them.
func (t *Tensor) SetHandles(handle, roi backends.Buffer) {
	t.handle = handle
	t.roi = roi
}

// SetIntParam attaches an int32 parameter to the tensor, replacing any previous one.
func (t *Tensor) SetIntParam(p *params.Parameter[int32]) {
	if p == nil {
		exceptions.Panicf("Tensor(%q).SetIntParam(nil)", t.name)
	}
	t.paramKind, t.intParam, t.floatParam = IntParam, p, nil
}

// SetFloatParam attaches a float32 parameter to the tensor, replacing any previous one.
func (t *Tensor) SetFloatParam(p *params.Parameter[float32]) {
	if p == nil {
		exceptions.Panicf("Tensor(%q).SetFloatParam(nil)", t.name)
	}
	t.paramKind, t.intParam, t.floatParam = FloatParam, nil, p
}

// ParamKind returns which parameter is attached to the tensor.
func (t *Tensor) ParamKind() ParamKind { return t.paramKind }

// IntParam returns the attached int32 parameter, if one is attached.
func (t *Tensor) IntParam() (*params.Parameter[int32], bool) {
	return t.intParam, t.paramKind == IntParam
}

// FloatParam returns the attached float32 parameter, if one is attached.
func (t *Tensor) FloatParam() (*params.Parameter[float32], bool) {
	return t.floatParam, t.paramKind == FloatParam
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	if t == nil {
		return "<nil tensor>"
	}
	return fmt.Sprintf("%q: %s", t.name, t.info)
}
