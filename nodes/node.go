// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package nodes implements the augmentation nodes of a pipeline: the units that own the parameter bindings of
// one operation, create the accelerator graph node on the first build, and refresh the bindings before each
// execution.
//
// Nodes go through the states Constructed -> Configured (Init* called) -> Built (CreateNode called) ->
// Refreshed (UpdateNode called, once per batch).
package nodes

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/binding"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

//go:generate go tool enumer -type=State -output=gen_state_enumer.go node.go

// State of a Node.
type State int

const (
	Constructed State = iota
	Configured
	Built
	Refreshed
)

// Env is what nodes need to create their accelerator graph node.
type Env struct {
	Data    backends.DataInterface
	Builder backends.Builder
	Factory *params.Factory
}

// Node of the augmentation pipeline.
type Node interface {
	// Name of the node.
	Name() string

	// OpType of the accelerator graph node.
	OpType() backends.OpType

	Inputs() []*tensors.Tensor
	Outputs() []*tensors.Tensor
	State() State

	// CreateNode allocates the device resources of the node and creates its accelerator graph node.
	// It is idempotent.
	CreateNode(env *Env) error

	// UpdateNode refreshes the parameters of the node. It must be called once between graph executions.
	UpdateNode() error

	// Release the device resources owned by the node. It is idempotent.
	Release() error
}

// nodeBase holds what is common to all nodes.
type nodeBase struct {
	name    string
	opType  backends.OpType
	inputs  []*tensors.Tensor
	outputs []*tensors.Tensor
	state   State

	env  *Env
	node backends.Node
	// owned device buffers staged for the node creation: layouts, ROI types and strings.
	owned []*binding.OwnedBuffer
}

// Name of the node.
func (n *nodeBase) Name() string { return n.name }

// OpType of the accelerator graph node.
func (n *nodeBase) OpType() backends.OpType { return n.opType }

// Inputs of the node.
func (n *nodeBase) Inputs() []*tensors.Tensor { return n.inputs }

// Outputs of the node.
func (n *nodeBase) Outputs() []*tensors.Tensor { return n.outputs }

// State of the node.
func (n *nodeBase) State() State { return n.state }

// SetName changes the name of the node, used in logs and errors.
func (n *nodeBase) SetName(name string) { n.name = name }

// GraphNode returns the accelerator graph node, nil before CreateNode.
func (n *nodeBase) GraphNode() backends.Node { return n.node }

// isBuilt returns whether CreateNode already succeeded.
func (n *nodeBase) isBuilt() bool { return n.state >= Built }

// stageInt32 creates a device int32 scalar released with the node.
func (n *nodeBase) stageInt32(data backends.DataInterface, value int32) (backends.Buffer, error) {
	handle, err := data.NewScalar(dtypes.Int32, value)
	if err != nil {
		return nil, err
	}
	n.owned = append(n.owned, binding.Own(data, handle))
	return handle, nil
}

// stageString creates a device int8 array with the exact length of s, released with the node.
func (n *nodeBase) stageString(data backends.DataInterface, s string) (backends.Buffer, error) {
	if s == "" {
		return nil, errors.New("empty string")
	}
	handle, err := data.NewArray(dtypes.Int8, len(s))
	if err != nil {
		return nil, err
	}
	n.owned = append(n.owned, binding.Own(data, handle))
	flat := make([]int8, len(s))
	for ii := range len(s) {
		flat[ii] = int8(s[ii])
	}
	if err = data.AddArrayItems(handle, flat); err != nil {
		return nil, err
	}
	return handle, nil
}

// stageLayouts stages the input and output layouts and the ROI type of the input as device scalars.
func (n *nodeBase) stageLayouts(data backends.DataInterface, input, output *tensors.Tensor) (inLayout, outLayout, roiType backends.Buffer, err error) {
	if inLayout, err = n.stageInt32(data, int32(input.Info().Layout())); err != nil {
		return
	}
	if outLayout, err = n.stageInt32(data, int32(output.Info().Layout())); err != nil {
		return
	}
	roiType, err = n.stageInt32(data, int32(input.Info().ROIType()))
	return
}

// checkCreated verifies the status of the accelerator graph node just created.
func (n *nodeBase) checkCreated(env *Env, node backends.Node) error {
	status := env.Builder.NodeStatus(node)
	if status != backends.StatusSuccess {
		return backends.Errorf(n.opType.String(), status, "failed to create node %q", n.name)
	}
	n.node = node
	n.env = env
	n.state = Built
	klog.V(1).Infof("node %q (%s) created", n.name, n.opType)
	return nil
}

// releaseStaged releases the buffers staged after the first keep ones, after a failed node creation.
func (n *nodeBase) releaseStaged(keep int) {
	for _, buf := range n.owned[keep:] {
		if err := buf.Release(); err != nil {
			klog.Warningf("node %q: failed to release staged buffer: %+v", n.name, err)
		}
	}
	n.owned = n.owned[:keep]
}

// releaseOwned releases the staged device buffers, and returns the first error.
func (n *nodeBase) releaseOwned() error {
	var firstErr error
	for _, buf := range n.owned {
		if err := buf.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	n.owned = nil
	return firstErr
}

// checkTensor verifies the tensor was allocated by the pipeline.
func checkTensor(nodeName, role string, t *tensors.Tensor) error {
	if t == nil {
		return errors.Errorf("node %q: %s tensor is nil", nodeName, role)
	}
	if !t.IsAllocated() {
		return errors.Errorf("node %q: %s tensor %q has no device buffer", nodeName, role, t.Name())
	}
	return nil
}
