// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nodes

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/binding"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/tensors"
)

// Default ranges of the randomized parameters.
const (
	BrightnessAlphaStart, BrightnessAlphaEnd = float32(0.1), float32(1.95)
	BrightnessBetaStart, BrightnessBetaEnd   = float32(0), float32(25)
	ContrastFactorStart, ContrastFactorEnd   = float32(0.1), float32(1.95)
	ContrastCenterStart, ContrastCenterEnd   = float32(60), float32(90)
)

// Brightness computes output = alpha * input + beta, with alpha and beta drawn per sample.
type Brightness struct {
	paramNode
}

var _ Node = (*Brightness)(nil)

// NewBrightness creates a Brightness node with alpha uniform in [0.1, 1.95] and beta uniform in [0, 25].
func NewBrightness(factory *params.Factory, input, output *tensors.Tensor) *Brightness {
	return &Brightness{newParamNode(factory, backends.OpTypeBrightness, input, output,
		paramRange{"alpha", BrightnessAlphaStart, BrightnessAlphaEnd},
		paramRange{"beta", BrightnessBetaStart, BrightnessBetaEnd})}
}

// Alpha returns the binding of the multiplicative parameter.
func (n *Brightness) Alpha() *binding.Binding[float32] { return n.Binding("alpha") }

// Beta returns the binding of the additive parameter.
func (n *Brightness) Beta() *binding.Binding[float32] { return n.Binding("beta") }

// CreateNode creates the accelerator graph node. It is idempotent.
func (n *Brightness) CreateNode(env *Env) error {
	return n.createParamNode(env, func(input, roi, output backends.Buffer, paramBuffers []backends.Buffer,
		inLayout, outLayout, roiType backends.Buffer) backends.Node {
		return env.Builder.Brightness(input, roi, output, paramBuffers[0], paramBuffers[1], inLayout, outLayout, roiType)
	})
}

// Contrast computes output = (input - center) * factor + center, with factor and center drawn per sample.
type Contrast struct {
	paramNode
}

var _ Node = (*Contrast)(nil)

// NewContrast creates a Contrast node with factor uniform in [0.1, 1.95] and center uniform in [60, 90].
func NewContrast(factory *params.Factory, input, output *tensors.Tensor) *Contrast {
	return &Contrast{newParamNode(factory, backends.OpTypeContrast, input, output,
		paramRange{"factor", ContrastFactorStart, ContrastFactorEnd},
		paramRange{"center", ContrastCenterStart, ContrastCenterEnd})}
}

// Factor returns the binding of the contrast factor.
func (n *Contrast) Factor() *binding.Binding[float32] { return n.Binding("factor") }

// Center returns the binding of the contrast center.
func (n *Contrast) Center() *binding.Binding[float32] { return n.Binding("center") }

// CreateNode creates the accelerator graph node. It is idempotent.
func (n *Contrast) CreateNode(env *Env) error {
	return n.createParamNode(env, func(input, roi, output backends.Buffer, paramBuffers []backends.Buffer,
		inLayout, outLayout, roiType backends.Buffer) backends.Node {
		return env.Builder.Contrast(input, roi, output, paramBuffers[0], paramBuffers[1], inLayout, outLayout, roiType)
	})
}
