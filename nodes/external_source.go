// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nodes

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// ExternalSource is a node whose output is populated by an external feeder each batch, instead of being computed
// by the graph. It registers its path (and optionally a source identifier) and the target dtype with the
// accelerator graph.
type ExternalSource struct {
	nodeBase
	path, sourceID string
	dtype          dtypes.DType
}

var _ Node = (*ExternalSource)(nil)

// NewExternalSource creates an ExternalSource node, and marks its output tensor as externally sourced.
// The input is optional, and may be nil.
func NewExternalSource(input, output *tensors.Tensor) *ExternalSource {
	n := &ExternalSource{
		nodeBase: nodeBase{
			name:    backends.OpTypeExternalSource.String(),
			opType:  backends.OpTypeExternalSource,
			outputs: []*tensors.Tensor{output},
		},
	}
	if input != nil {
		n.inputs = []*tensors.Tensor{input}
	}
	if output != nil {
		output.SetExternalSource(true)
	}
	return n
}

// Init records the path of the source and the dtype of the values. It does no device operation.
func (n *ExternalSource) Init(path string, dtype dtypes.DType) error {
	return n.InitWithSource("", path, dtype)
}

// InitWithSource is the extended variant of Init: it also records a source identifier, and the node is
// created with layout and ROI type metadata.
func (n *ExternalSource) InitWithSource(sourceID, path string, dtype dtypes.DType) error {
	if n.isBuilt() {
		return errors.Errorf("node %q: can't be initialized after the node is created", n.name)
	}
	if path == "" {
		return errors.Errorf("node %q: empty path", n.name)
	}
	n.sourceID, n.path, n.dtype = sourceID, path, dtype
	n.state = Configured
	return nil
}

// Path of the external source.
func (n *ExternalSource) Path() string { return n.path }

// SourceID of the external source, empty if not given.
func (n *ExternalSource) SourceID() string { return n.sourceID }

// DType of the values of the external source.
func (n *ExternalSource) DType() dtypes.DType { return n.dtype }

// CreateNode marshals the path (and source identifier) into device int8 arrays, and creates the accelerator
// graph node. It is idempotent.
func (n *ExternalSource) CreateNode(env *Env) (err error) {
	if n.isBuilt() {
		return nil
	}
	if n.state != Configured {
		return errors.Errorf("node %q: CreateNode called before Init", n.name)
	}
	output := n.outputs[0]
	if err = checkTensor(n.name, "output", output); err != nil {
		return err
	}
	var input *tensors.Tensor
	var inputHandle, roi backends.Buffer
	if len(n.inputs) > 0 {
		input = n.inputs[0]
		if err = checkTensor(n.name, "input", input); err != nil {
			return err
		}
		inputHandle, roi = input.Handle(), input.ROI()
	}
	staged := len(n.owned)
	defer func() {
		if err != nil {
			n.releaseStaged(staged)
		}
	}()
	pathArray, err := n.stageString(env.Data, n.path)
	if err != nil {
		return errors.WithMessagef(err, "node %q: staging path %q", n.name, n.path)
	}
	var node backends.Node
	if n.sourceID == "" {
		node = env.Builder.ExternalSource(inputHandle, roi, output.Handle(), pathArray, n.dtype)
	} else {
		var sourceIDArray backends.Buffer
		sourceIDArray, err = n.stageString(env.Data, n.sourceID)
		if err != nil {
			return errors.WithMessagef(err, "node %q: staging source id %q", n.name, n.sourceID)
		}
		layoutSource := output
		if input != nil {
			layoutSource = input
		}
		var inLayout, outLayout, roiType backends.Buffer
		inLayout, outLayout, roiType, err = n.stageLayouts(env.Data, layoutSource, output)
		if err != nil {
			return errors.WithMessagef(err, "node %q", n.name)
		}
		node = env.Builder.ExternalSourceWithID(inputHandle, roi, output.Handle(), sourceIDArray, pathArray, n.dtype,
			inLayout, outLayout, roiType)
	}
	return n.checkCreated(env, node)
}

// UpdateNode is a no-op: the output is fed from outside the graph.
func (n *ExternalSource) UpdateNode() error {
	if !n.isBuilt() {
		return errors.Errorf("node %q: UpdateNode called before CreateNode", n.name)
	}
	n.state = Refreshed
	return nil
}

// Release the staged device buffers of the node.
func (n *ExternalSource) Release() error {
	if err := n.releaseOwned(); err != nil {
		return errors.WithMessagef(err, "node %q", n.name)
	}
	return nil
}
