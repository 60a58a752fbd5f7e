// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/gopjrt/dtypes"
)

// Node is a node of the augmentation graph being built.
//
// It is opaque from the augment perspective. A Builder always returns a Node, even when the creation failed:
// the caller must check Builder.NodeStatus.
type Node any

// Builder defines the augmentation graph: its nodes are added in execution order, and once verified the graph
// can be executed once per batch.
//
// The argument lists of the ops are fixed, and Builder.NodeParameter returns the buffer at a position
// of this list -- the index of each argument is given in the documentation of the op.
type Builder interface {
	// Name of the graph being built.
	Name() string

	// Brightness adds a node computing output = alpha * input + beta, per sample, over the ROI of each sample.
	//
	// Arguments indices: 0 input, 1 roi, 2 output, 3 alpha, 4 beta, 5 inputLayout, 6 outputLayout, 7 roiType.
	// alpha and beta can be float32 scalars, arrays or rank-1 tensors with one value per sample. The layouts
	// and roiType are int32 scalars.
	Brightness(input, roi, output, alpha, beta, inputLayout, outputLayout, roiType Buffer) Node

	// Contrast adds a node computing output = (input - center) * factor + center, per sample, over the ROI
	// of each sample.
	//
	// Arguments indices: 0 input, 1 roi, 2 output, 3 factor, 4 center, 5 inputLayout, 6 outputLayout, 7 roiType.
	Contrast(input, roi, output, factor, center, inputLayout, outputLayout, roiType Buffer) Node

	// ExternalSource adds a node whose output is filled, at each execution, with the values fed with
	// Backend.FeedExternalSource for the path (an int8 array holding the path string).
	// Values are converted to dtype.
	//
	// Arguments indices: 0 input, 1 roi, 2 output, 3 path.
	ExternalSource(input, roi, output, path Buffer, dtype dtypes.DType) Node

	// ExternalSourceWithID is the extended variant of ExternalSource, with a source identifier (an int8 array)
	// and layout and ROI type int32 scalars.
	//
	// Arguments indices: 0 input, 1 roi, 2 output, 3 sourceID, 4 path, 5 inputLayout, 6 outputLayout, 7 roiType.
	ExternalSourceWithID(input, roi, output, sourceID, path Buffer, dtype dtypes.DType, inputLayout, outputLayout, roiType Buffer) Node

	// NodeStatus returns StatusSuccess if the node was created successfully.
	NodeStatus(node Node) Status

	// NodeOpType returns the type of the operation of the node.
	NodeOpType(node Node) (OpType, error)

	// NodeParameter returns the buffer given as the argument index of the node.
	NodeParameter(node Node, index int) (Buffer, error)

	// Verify checks the graph, after all nodes are added. It must be called before Execute.
	Verify() error

	// Execute runs all nodes of the graph, in the order they were added.
	Execute() error

	// Finalize releases the nodes of the graph. It doesn't release the buffers used by them.
	Finalize()
}
