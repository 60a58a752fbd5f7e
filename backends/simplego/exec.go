// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"reflect"

	"github.com/gomlx/augment/backends"
	"k8s.io/klog/v2"
)

// pixelFn transforms one value given the two parameters of the sample.
type pixelFn func(v, p0, p1 float64) float64

func brightness(v, alpha, beta float64) float64 {
	return v*alpha + beta
}

func contrast(v, factor, center float64) float64 {
	return (v-center)*factor + center
}

// paramValues returns a function that gives the parameter value of each sample.
func paramValues(op string, buf *Buffer, index, batchSize int) (func(sample int) float64, error) {
	flat := buf.flat.([]float32)
	n := buf.numElements()
	switch {
	case n >= batchSize:
		return func(sample int) float64 { return float64(flat[sample]) }, nil
	case n >= 1 && buf.shape.Size() == 1:
		return func(int) float64 { return float64(flat[0]) }, nil
	}
	return nil, backends.Errorf(op, backends.StatusInvalidValue,
		"parameter argument #%d holds %d values, %d (batch size) required", index, n, batchSize)
}

// execPixelOp runs fn on every value inside the ROI of each sample. Values outside the ROI are copied unchanged.
func (b *Backend) execPixelOp(node *Node, fn pixelFn) error {
	op := node.opType.String()
	input, roi, output := node.args[0], node.args[1], node.args[2]
	for _, buf := range node.args {
		if buf != nil && !buf.valid {
			return backends.Errorf(op, backends.StatusInvalidReference, "an argument of the node was finalized")
		}
	}
	g, og := node.inGeom, node.outGeom
	p0, err := paramValues(op, node.args[3], 3, g.batch)
	if err != nil {
		return err
	}
	p1, err := paramValues(op, node.args[4], 4, g.batch)
	if err != nil {
		return err
	}
	var rois []int32
	if roi != nil {
		rois = roi.flat.([]int32)
	}
	read, write := newReader(input.flat), newWriter(output.flat)
	b.workers.ParallelFor(g.batch, func(sample int) {
		a, c := p0(sample), p1(sample)
		r := g.sampleRegion(rois, sample, node.roiType)
		for frame := range g.frames {
			for y := range g.height {
				for x := range g.width {
					inside := r.contains(x, y)
					for ch := range g.channels {
						v := read(g.offset(sample, frame, y, x, ch))
						if inside {
							v = fn(v, a, c)
						}
						write(og.offset(sample, frame, y, x, ch), v)
					}
				}
			}
		}
	})
	return nil
}

// externalSource holds the data fed for the output of an external source node, until it is executed.
type externalSource struct {
	path    string
	output  *Buffer
	pending any
}

// registerSource registers the path of the node. Paths must be unique within the backend.
func (b *Backend) registerSource(node *Node) (*externalSource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op := node.opType.String()
	if b.finalized {
		return nil, backends.Errorf(op, backends.StatusInvalidReference, "backend was finalized")
	}
	if _, found := b.sources[node.path]; found {
		return nil, backends.Errorf(op, backends.StatusInvalidParameters, "external source path %q already registered", node.path)
	}
	src := &externalSource{path: node.path, output: node.args[2]}
	b.sources[node.path] = src
	return src, nil
}

func (b *Backend) unregisterSource(src *externalSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sources[src.path] == src {
		delete(b.sources, src.path)
	}
}

// FeedExternalSource stages a copy of the flat values for the external source node registered with path.
// The number of values must match the size of the node's output. Feeding again before the graph is
// executed replaces the staged values.
func (b *Backend) FeedExternalSource(path string, flat any) error {
	if err := b.faults.call(OpFeedExternalSource); err != nil {
		return err
	}
	if !isSupportedFlat(flat) {
		return backends.Errorf(OpFeedExternalSource, backends.StatusInvalidType, "flat values of type %T not supported", flat)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	src, found := b.sources[path]
	if !found {
		return backends.Errorf(OpFeedExternalSource, backends.StatusInvalidReference, "no external source registered for path %q", path)
	}
	if n, want := flatLen(flat), src.output.shape.Size(); n != want {
		return backends.Errorf(OpFeedExternalSource, backends.StatusInvalidDimension,
			"external source %q output %s requires %d values, got %d", path, src.output.shape, want, n)
	}
	flatV := reflect.ValueOf(flat)
	pending := reflect.MakeSlice(flatV.Type(), flatV.Len(), flatV.Len())
	reflect.Copy(pending, flatV)
	src.pending = pending.Interface()
	return nil
}

// execExternalSource converts the values fed for the node into its output.
func (b *Backend) execExternalSource(node *Node) error {
	op := node.opType.String()
	b.mu.Lock()
	pending := node.source.pending
	node.source.pending = nil
	b.mu.Unlock()
	if pending == nil {
		return backends.Errorf(op, backends.StatusExternalSourceGone, "no data fed for external source %q", node.path)
	}
	output := node.args[2]
	if !output.valid {
		return backends.Errorf(op, backends.StatusInvalidReference, "output of external source %q was finalized", node.path)
	}
	if reflect.TypeOf(pending) == reflect.TypeOf(output.flat) {
		reflect.Copy(reflect.ValueOf(output.flat), reflect.ValueOf(pending))
		return nil
	}
	klog.V(2).Infof("simplego: external source %q converting %T to %s", node.path, pending, output.shape.DType)
	read, write := newReader(pending), newWriter(output.flat)
	size := output.shape.Size()
	batchSize := output.shape.Dim(0)
	sampleSize := size / batchSize
	b.workers.ParallelFor(batchSize, func(sample int) {
		for ii := sample * sampleSize; ii < (sample+1)*sampleSize; ii++ {
			write(ii, read(ii))
		}
	})
	return nil
}
