// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Builder keeps track of the nodes of an augmentation graph, and executes them in order.
type Builder struct {
	backend  *Backend
	name     string
	nodes    []*Node
	verified bool
}

var _ backends.Builder = (*Builder)(nil)

// Node of the SimpleGo augmentation graph.
//
// A node is always returned by the Builder, and if its creation failed, it holds the failure status.
type Node struct {
	builder *Builder
	opType  backends.OpType
	index   int
	status  backends.Status
	err     error

	// args in the order documented by backends.Builder. Optional arguments may be nil.
	args []*Buffer

	// Pixel ops.
	inGeom, outGeom geometry
	roiType         tensors.ROIType

	// External source ops.
	dtype          dtypes.DType
	path, sourceID string
	source         *externalSource
}

// Name of the graph.
func (bld *Builder) Name() string {
	return bld.name
}

// newNode appends a new node to the graph. If a failure was injected for the op, the node is marked as failed.
func (bld *Builder) newNode(opType backends.OpType, numArgs int) *Node {
	node := &Node{
		builder: bld,
		opType:  opType,
		index:   len(bld.nodes),
		args:    make([]*Buffer, numArgs),
	}
	bld.nodes = append(bld.nodes, node)
	bld.verified = false
	if status := bld.backend.faults.injectedStatus(opType.String()); status != backends.StatusSuccess {
		node.setError(backends.Errorf(opType.String(), status, "injected failure"))
	}
	return node
}

func (node *Node) setError(err error) {
	node.err = err
	node.status = backends.StatusOf(err)
	klog.V(1).Infof("simplego: creation of node #%d (%s) failed: %v", node.index, node.opType, err)
}

// resolveArgs converts the backends.Buffer arguments to *Buffer. Arguments whose index is in optional may be nil.
func (node *Node) resolveArgs(args []backends.Buffer, optional ...int) error {
	b := node.builder.backend
	for ii, arg := range args {
		if arg == nil {
			isOptional := false
			for _, idx := range optional {
				isOptional = isOptional || idx == ii
			}
			if isOptional {
				continue
			}
		}
		buf, err := b.toBuffer(node.opType.String(), arg)
		if err != nil {
			return errors.WithMessagef(err, "argument #%d", ii)
		}
		node.args[ii] = buf
	}
	return nil
}

// readInt32Scalar reads the value of the int32 scalar argument.
func (node *Node) readInt32Scalar(index int) (int32, error) {
	op := node.opType.String()
	buf := node.args[index]
	if buf.kind != scalarKind || buf.shape.DType != dtypes.Int32 {
		return 0, backends.Errorf(op, backends.StatusInvalidType, "argument #%d must be an Int32 scalar, got %s %s",
			index, buf.kind, buf.shape)
	}
	return buf.flat.([]int32)[0], nil
}

// checkParam verifies the float parameter argument has one value, or one value per sample.
func (node *Node) checkParam(index, batchSize int) error {
	op := node.opType.String()
	buf := node.args[index]
	if buf.shape.DType != dtypes.Float32 {
		return backends.Errorf(op, backends.StatusInvalidType, "parameter argument #%d must be Float32, got %s", index, buf.shape.DType)
	}
	if size := buf.shape.Size(); size != 1 && size != batchSize {
		return backends.Errorf(op, backends.StatusInvalidDimension,
			"parameter argument #%d must hold 1 or %d (batch size) values, got shape %s", index, batchSize, buf.shape)
	}
	return nil
}

// checkImages verifies the input, roi and output arguments, decoding the layouts and ROI type.
func (node *Node) checkImages(inputLayout, outputLayout, roiType int32) error {
	op := node.opType.String()
	input, roi, output := node.args[0], node.args[1], node.args[2]
	if input.kind != tensorKind || output.kind != tensorKind {
		return backends.Errorf(op, backends.StatusInvalidReference, "input and output must be tensors, got %s and %s",
			input.kind, output.kind)
	}
	var err error
	node.inGeom, err = newGeometry(op, input.shape, tensors.Layout(inputLayout))
	if err != nil {
		return errors.WithMessage(err, "input")
	}
	node.outGeom, err = newGeometry(op, output.shape, tensors.Layout(outputLayout))
	if err != nil {
		return errors.WithMessage(err, "output")
	}
	if !node.inGeom.sameImages(node.outGeom) {
		return backends.Errorf(op, backends.StatusInvalidDimension, "input %s (%s) and output %s (%s) don't match",
			input.shape, tensors.Layout(inputLayout), output.shape, tensors.Layout(outputLayout))
	}
	if input == output && inputLayout != outputLayout {
		return backends.Errorf(op, backends.StatusInvalidParameters, "in-place operation can't change the layout")
	}
	node.roiType = tensors.ROIType(roiType)
	if node.roiType != tensors.ROILTRB && node.roiType != tensors.ROIXYWH {
		return backends.Errorf(op, backends.StatusInvalidValue, "unknown ROI type %d", roiType)
	}
	if roi != nil {
		if roi.shape.DType != dtypes.Int32 || roi.shape.Size() != 4*node.inGeom.batch {
			return backends.Errorf(op, backends.StatusInvalidDimension, "ROI must be Int32 with 4 values per sample, got %s", roi.shape)
		}
	}
	return nil
}

// addPixelOp validates and adds a node for one of the per-pixel ops, with the arguments
// (input, roi, output, param0, param1, inputLayout, outputLayout, roiType).
func (bld *Builder) addPixelOp(opType backends.OpType, args []backends.Buffer) *Node {
	node := bld.newNode(opType, len(args))
	if node.err != nil {
		return node
	}
	err := node.resolveArgs(args, 1)
	if err == nil {
		var layouts [3]int32
		for ii := range layouts {
			if layouts[ii], err = node.readInt32Scalar(5 + ii); err != nil {
				break
			}
		}
		if err == nil {
			err = node.checkImages(layouts[0], layouts[1], layouts[2])
		}
	}
	for _, paramIdx := range []int{3, 4} {
		if err == nil {
			err = node.checkParam(paramIdx, node.inGeom.batch)
		}
	}
	if err != nil {
		node.setError(err)
		return node
	}
	klog.V(2).Infof("simplego: graph %q added node #%d %s", bld.name, node.index, opType)
	return node
}

// Brightness adds a node computing output = alpha * input + beta, per sample, over the ROI of each sample.
// The roi argument may be nil, in which case the full images are processed.
func (bld *Builder) Brightness(input, roi, output, alpha, beta, inputLayout, outputLayout, roiType backends.Buffer) backends.Node {
	return bld.addPixelOp(backends.OpTypeBrightness,
		[]backends.Buffer{input, roi, output, alpha, beta, inputLayout, outputLayout, roiType})
}

// Contrast adds a node computing output = (input - center) * factor + center, per sample, over the ROI of
// each sample. The roi argument may be nil, in which case the full images are processed.
func (bld *Builder) Contrast(input, roi, output, factor, center, inputLayout, outputLayout, roiType backends.Buffer) backends.Node {
	return bld.addPixelOp(backends.OpTypeContrast,
		[]backends.Buffer{input, roi, output, factor, center, inputLayout, outputLayout, roiType})
}

// int8ArrayString decodes the string held by an int8 array.
func int8ArrayString(op string, buf *Buffer) (string, error) {
	if buf.kind != arrayKind || buf.shape.DType != dtypes.Int8 || buf.length == 0 {
		return "", backends.Errorf(op, backends.StatusInvalidParameters, "expected a non-empty Int8 array, got %s %s (%d items)",
			buf.kind, buf.shape, buf.length)
	}
	flat := buf.flat.([]int8)[:buf.length]
	bytes := make([]byte, len(flat))
	for ii, c := range flat {
		bytes[ii] = byte(c)
	}
	return string(bytes), nil
}

// addExternalSource validates and registers an external source node.
// pathIdx is the index of the path argument, and sourceIDIdx the one of the source identifier (or -1).
func (bld *Builder) addExternalSource(args []backends.Buffer, dtype dtypes.DType, pathIdx, sourceIDIdx int, layoutIdx ...int) *Node {
	node := bld.newNode(backends.OpTypeExternalSource, len(args))
	if node.err != nil {
		return node
	}
	op := node.opType.String()
	node.dtype = dtype
	err := node.resolveArgs(args, 0, 1)
	if err == nil {
		output := node.args[2]
		switch {
		case output.kind != tensorKind:
			err = backends.Errorf(op, backends.StatusInvalidReference, "output must be a tensor, got %s", output.kind)
		case output.shape.DType != dtype:
			err = backends.Errorf(op, backends.StatusInvalidType, "output dtype %s doesn't match source dtype %s",
				output.shape.DType, dtype)
		}
	}
	if err == nil {
		node.path, err = int8ArrayString(op, node.args[pathIdx])
	}
	if err == nil && sourceIDIdx >= 0 {
		node.sourceID, err = int8ArrayString(op, node.args[sourceIDIdx])
	}
	for _, idx := range layoutIdx {
		if err == nil {
			_, err = node.readInt32Scalar(idx)
		}
	}
	if err == nil {
		node.source, err = bld.backend.registerSource(node)
	}
	if err != nil {
		node.setError(err)
		return node
	}
	klog.V(2).Infof("simplego: graph %q added node #%d %s(%q)", bld.name, node.index, node.opType, node.path)
	return node
}

// ExternalSource adds a node whose output is filled with the values fed with Backend.FeedExternalSource.
// The input and roi arguments are optional.
func (bld *Builder) ExternalSource(input, roi, output, path backends.Buffer, dtype dtypes.DType) backends.Node {
	return bld.addExternalSource([]backends.Buffer{input, roi, output, path}, dtype, 3, -1)
}

// ExternalSourceWithID is the extended variant of ExternalSource, with a source identifier and layout and ROI
// type scalars.
func (bld *Builder) ExternalSourceWithID(input, roi, output, sourceID, path backends.Buffer, dtype dtypes.DType,
	inputLayout, outputLayout, roiType backends.Buffer) backends.Node {
	return bld.addExternalSource(
		[]backends.Buffer{input, roi, output, sourceID, path, inputLayout, outputLayout, roiType},
		dtype, 4, 3, 5, 6, 7)
}

// toNode converts a backends.Node to a *Node of this builder.
func (bld *Builder) toNode(op string, n backends.Node) (*Node, error) {
	node, ok := n.(*Node)
	if !ok || node == nil {
		return nil, backends.Errorf(op, backends.StatusInvalidNode, "node %T is not a %q backend node", n, BackendName)
	}
	if node.builder != bld {
		return nil, backends.Errorf(op, backends.StatusInvalidNode, "node #%d belongs to another graph", node.index)
	}
	return node, nil
}

// NodeStatus returns StatusSuccess if the node was created successfully.
func (bld *Builder) NodeStatus(n backends.Node) backends.Status {
	node, err := bld.toNode("NodeStatus", n)
	if err != nil {
		return backends.StatusInvalidNode
	}
	return node.status
}

// NodeOpType returns the type of the operation of the node.
func (bld *Builder) NodeOpType(n backends.Node) (backends.OpType, error) {
	node, err := bld.toNode("NodeOpType", n)
	if err != nil {
		return backends.OpTypeInvalid, err
	}
	return node.opType, nil
}

// NodeParameter returns the buffer given as the argument index of the node.
func (bld *Builder) NodeParameter(n backends.Node, index int) (backends.Buffer, error) {
	node, err := bld.toNode("NodeParameter", n)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(node.args) {
		return nil, backends.Errorf("NodeParameter", backends.StatusInvalidParameters,
			"node #%d (%s) has %d arguments, index %d requested", node.index, node.opType, len(node.args), index)
	}
	if node.args[index] == nil {
		return nil, backends.Errorf("NodeParameter", backends.StatusInvalidReference,
			"argument #%d of node #%d (%s) is not set", index, node.index, node.opType)
	}
	return node.args[index], nil
}

// Verify checks all nodes were created successfully.
func (bld *Builder) Verify() error {
	if err := bld.backend.faults.call(OpVerify); err != nil {
		return err
	}
	for _, node := range bld.nodes {
		if node.status != backends.StatusSuccess {
			return backends.Errorf(OpVerify, backends.StatusInvalidGraph, "graph %q node #%d (%s) has status %s: %v",
				bld.name, node.index, node.opType, node.status, node.err)
		}
	}
	bld.verified = true
	klog.V(1).Infof("simplego: graph %q verified with %d nodes", bld.name, len(bld.nodes))
	return nil
}

// Execute runs all nodes of the graph, in the order they were added.
func (bld *Builder) Execute() error {
	if err := bld.backend.faults.call(OpExecute); err != nil {
		return err
	}
	if !bld.verified {
		return backends.Errorf(OpExecute, backends.StatusGraphNotVerified, "graph %q", bld.name)
	}
	for _, node := range bld.nodes {
		var err error
		switch node.opType {
		case backends.OpTypeBrightness:
			err = bld.backend.execPixelOp(node, brightness)
		case backends.OpTypeContrast:
			err = bld.backend.execPixelOp(node, contrast)
		case backends.OpTypeExternalSource:
			err = bld.backend.execExternalSource(node)
		default:
			err = backends.Errorf(OpExecute, backends.StatusNotImplemented, "op %s", node.opType)
		}
		if err != nil {
			return errors.WithMessagef(err, "graph %q node #%d (%s)", bld.name, node.index, node.opType)
		}
	}
	return nil
}

// Finalize releases the nodes of the graph and unregisters its external sources.
// It doesn't release the buffers used by them.
func (bld *Builder) Finalize() {
	for _, node := range bld.nodes {
		if node.source != nil {
			bld.backend.unregisterSource(node.source)
		}
	}
	bld.nodes = nil
	bld.verified = false
}
