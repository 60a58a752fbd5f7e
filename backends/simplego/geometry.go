// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
)

// geometry of a batch of images (or videos) in a given layout.
//
// For tensors.LayoutNone each sample is handled as a single row of width equal to the sample size.
type geometry struct {
	batch, frames, height, width, channels int
	channelsFirst                          bool
}

func newGeometry(op string, shape shapes.Shape, layout tensors.Layout) (g geometry, err error) {
	g.frames, g.channels, g.height = 1, 1, 1
	dims := shape.Dimensions
	wantRank := map[tensors.Layout]int{tensors.NHWC: 4, tensors.NCHW: 4, tensors.NFHWC: 5, tensors.NFCHW: 5}
	if want, found := wantRank[layout]; found && len(dims) != want {
		return g, backends.Errorf(op, backends.StatusInvalidDimension, "layout %s requires rank %d, got shape %s",
			layout, want, shape)
	}
	if len(dims) == 0 {
		return g, backends.Errorf(op, backends.StatusInvalidDimension, "images can't be scalars")
	}
	switch layout {
	case tensors.LayoutNone:
		g.batch = dims[0]
		g.width = shape.Size() / g.batch
	case tensors.NHWC:
		g.batch, g.height, g.width, g.channels = dims[0], dims[1], dims[2], dims[3]
	case tensors.NCHW:
		g.batch, g.channels, g.height, g.width = dims[0], dims[1], dims[2], dims[3]
		g.channelsFirst = true
	case tensors.NFHWC:
		g.batch, g.frames, g.height, g.width, g.channels = dims[0], dims[1], dims[2], dims[3], dims[4]
	case tensors.NFCHW:
		g.batch, g.frames, g.channels, g.height, g.width = dims[0], dims[1], dims[2], dims[3], dims[4]
		g.channelsFirst = true
	default:
		return g, backends.Errorf(op, backends.StatusInvalidValue, "unknown layout %d", int(layout))
	}
	return g, nil
}

// sameImages returns whether both geometries describe the same batch of images, regardless of layout.
func (g geometry) sameImages(g2 geometry) bool {
	return g.batch == g2.batch && g.frames == g2.frames && g.height == g2.height &&
		g.width == g2.width && g.channels == g2.channels
}

// offset of the element in the flat storage.
func (g geometry) offset(sample, frame, y, x, channel int) int {
	base := sample*g.frames + frame
	if g.channelsFirst {
		return ((base*g.channels+channel)*g.height+y)*g.width + x
	}
	return ((base*g.height+y)*g.width+x)*g.channels + channel
}

// region of a sample to process, with exclusive end.
type region struct {
	x0, y0, x1, y1 int
}

// sampleRegion decodes the ROI of the sample, clipped to the image. rois holds 4 values per sample, and
// may be nil, in which case the full image is used. Regions with zero area also select the full image.
//
// For tensors.ROILTRB the values are (left, top, right, bottom), with right and bottom exclusive.
// For tensors.ROIXYWH the values are (x, y, width, height).
func (g geometry) sampleRegion(rois []int32, sample int, roiType tensors.ROIType) region {
	full := region{x0: 0, y0: 0, x1: g.width, y1: g.height}
	if rois == nil {
		return full
	}
	v := rois[sample*4 : sample*4+4]
	var r region
	switch roiType {
	case tensors.ROIXYWH:
		r = region{x0: int(v[0]), y0: int(v[1]), x1: int(v[0] + v[2]), y1: int(v[1] + v[3])}
	default:
		r = region{x0: int(v[0]), y0: int(v[1]), x1: int(v[2]), y1: int(v[3])}
	}
	r.x0, r.x1 = clip(r.x0, 0, g.width), clip(r.x1, 0, g.width)
	r.y0, r.y1 = clip(r.y0, 0, g.height), clip(r.y1, 0, g.height)
	if r.x1 <= r.x0 || r.y1 <= r.y0 {
		return full
	}
	return r
}

func (r region) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

func clip(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
