// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package tensors

import (
	"fmt"

	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

//go:generate go tool enumer -type=Layout -trimprefix=Layout -text -output=gen_layout_enumer.go info.go

// Layout of the axes of an image tensor.
type Layout int32

const (
	LayoutNone Layout = iota
	NHWC
	NCHW
	NFHWC
	NFCHW
)

//go:generate go tool enumer -type=ROIType -trimprefix=ROI -text -output=gen_roitype_enumer.go info.go

// ROIType defines how the 4 values of a region-of-interest are interpreted.
type ROIType int32

const (
	// ROILTRB is left, top, right, bottom, with right and bottom exclusive.
	ROILTRB ROIType = iota
	// ROIXYWH is x, y, width, height.
	ROIXYWH
)

//go:generate go tool enumer -type=MemType -trimprefix=MemType -transform=lower -text -output=gen_memtype_enumer.go info.go

// MemType is where the pipeline outputs are expected to live.
type MemType int

const (
	MemTypeHost MemType = iota
	MemTypeDevice
)

// Info describes a tensor of a pipeline: the shape of its buffer, how its axes are laid out, and how its ROIs
// are expressed. The first axis is always the batch axis.
type Info struct {
	shape          shapes.Shape
	layout         Layout
	roiType        ROIType
	memType        MemType
	externalSource bool
}

// NewInfo creates the Info for the given shape and layout. The shape must have rank >= 1, and image
// layouts require the matching rank (4 for NHWC/NCHW, 5 for NFHWC/NFCHW).
//
// It panics on invalid combinations.
func NewInfo(shape shapes.Shape, layout Layout, memType MemType) Info {
	if !shape.Ok() || shape.Rank() == 0 {
		exceptions.Panicf("tensors.NewInfo(%s): tensors need a valid shape with a batch axis", shape)
	}
	wantRank := map[Layout]int{NHWC: 4, NCHW: 4, NFHWC: 5, NFCHW: 5}[layout]
	if wantRank != 0 && shape.Rank() != wantRank {
		exceptions.Panicf("tensors.NewInfo(%s): layout %s requires rank %d", shape, layout, wantRank)
	}
	return Info{shape: shape.Clone(), layout: layout, memType: memType}
}

// NewImageInfo is a shortcut to create the Info of a batch of images in NHWC layout.
func NewImageInfo(dtype dtypes.DType, batchSize, height, width, channels int) Info {
	return NewInfo(shapes.Make(dtype, batchSize, height, width, channels), NHWC, MemTypeHost)
}

// WithROIType returns a copy of the Info with the given ROI type.
func (info Info) WithROIType(roiType ROIType) Info {
	info.roiType = roiType
	return info
}

// Shape of the tensor buffer.
func (info Info) Shape() shapes.Shape { return info.shape }

// DType of the tensor elements.
func (info Info) DType() dtypes.DType { return info.shape.DType }

// Dims returns the dimensions of the tensor.
func (info Info) Dims() []int { return info.shape.Dimensions }

// Layout of the tensor axes.
func (info Info) Layout() Layout { return info.layout }

// ROIType of the tensor's ROIs.
func (info Info) ROIType() ROIType { return info.roiType }

// MemType of the tensor.
func (info Info) MemType() MemType { return info.memType }

// IsExternalSource returns whether the tensor values are fed by an external source, as opposed to
// generated by the pipeline.
func (info Info) IsExternalSource() bool { return info.externalSource }

// BatchSize is the dimension of the first axis.
func (info Info) BatchSize() int { return info.shape.Dim(0) }

func (info Info) imageAxes() (height, width, channels int) {
	dims := info.shape.Dimensions
	switch info.layout {
	case NHWC:
		return dims[1], dims[2], dims[3]
	case NCHW:
		return dims[2], dims[3], dims[1]
	case NFHWC:
		return dims[2], dims[3], dims[4]
	case NFCHW:
		return dims[3], dims[4], dims[2]
	}
	return 1, 1, 1
}

// Height of the images, or 1 if the tensor has no image layout.
func (info Info) Height() int {
	h, _, _ := info.imageAxes()
	return h
}

// Width of the images, or 1 if the tensor has no image layout.
func (info Info) Width() int {
	_, w, _ := info.imageAxes()
	return w
}

// Channels of the images, or 1 if the tensor has no image layout.
func (info Info) Channels() int {
	_, _, c := info.imageAxes()
	return c
}

// String implements fmt.Stringer.
func (info Info) String() string {
	var external string
	if info.externalSource {
		external = ", external"
	}
	return fmt.Sprintf("%s{layout=%s, roi=%s, mem=%s%s}", info.shape, info.layout, info.roiType, info.memType, external)
}
