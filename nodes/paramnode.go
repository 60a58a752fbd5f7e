// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nodes

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/binding"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/tensors"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"k8s.io/klog/v2"
)

// paramSlot is one float parameter of a node.
type paramSlot struct {
	binding *binding.Binding[float32]
	// tensor given with InitTensors, if any.
	tensor *tensors.Tensor
}

// paramNode is a node with one input, one output and a fixed ordered set of float parameters, each driven by
// a binding. It implements the parameter logic of Brightness and Contrast.
type paramNode struct {
	nodeBase
	slots *orderedmap.OrderedMap[string, *paramSlot]
}

// paramRange is the default range of a parameter.
type paramRange struct {
	name       string
	start, end float32
}

func newParamNode(factory *params.Factory, opType backends.OpType, input, output *tensors.Tensor, ranges ...paramRange) paramNode {
	n := paramNode{
		nodeBase: nodeBase{
			name:    opType.String(),
			opType:  opType,
			inputs:  []*tensors.Tensor{input},
			outputs: []*tensors.Tensor{output},
		},
		slots: orderedmap.New[string, *paramSlot](),
	}
	for _, r := range ranges {
		n.slots.Set(r.name, &paramSlot{binding: binding.New(factory, r.start, r.end)})
	}
	return n
}

// Binding returns the binding of the named parameter, or nil if there is no such parameter.
func (n *paramNode) Binding(name string) *binding.Binding[float32] {
	slot, found := n.slots.Get(name)
	if !found {
		return nil
	}
	return slot.binding
}

// ParamNames returns the names of the parameters, in order.
func (n *paramNode) ParamNames() []string {
	names := make([]string, 0, n.slots.Len())
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func (n *paramNode) checkCanInit(numValues int) error {
	if n.isBuilt() {
		return errors.Errorf("node %q: parameters can't be changed after the node is created", n.name)
	}
	if numValues != n.slots.Len() {
		return errors.Errorf("node %q: %d parameters %v required, got %d", n.name, n.slots.Len(), n.ParamNames(), numValues)
	}
	return nil
}

// InitValues binds the parameters, in order, to constant values.
func (n *paramNode) InitValues(values ...float32) error {
	if err := n.checkCanInit(len(values)); err != nil {
		return err
	}
	ii := 0
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.binding.SetValue(values[ii]); err != nil {
			return errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
		}
		ii++
	}
	n.state = Configured
	return nil
}

// InitTensors binds the parameters, in order, to parameter tensors.
//
// Externally sourced tensors are aliased by the binding, which is then never refreshed. Otherwise the binding
// adopts (shares) the random parameter attached to the tensor. A nil tensor keeps the default generator.
func (n *paramNode) InitTensors(ts ...*tensors.Tensor) error {
	if err := n.checkCanInit(len(ts)); err != nil {
		return err
	}
	ii := 0
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		t, slot := ts[ii], pair.Value
		ii++
		if t == nil {
			continue
		}
		slot.tensor = t
		if t.Info().IsExternalSource() {
			if err := slot.binding.SetTensor(t.Handle()); err != nil {
				return errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
			}
			continue
		}
		p, ok := t.FloatParam()
		if !ok {
			if t.ParamKind() != tensors.NoParam {
				return errors.Errorf("node %q parameter %q: tensor %q holds a %s, a float parameter is required",
					n.name, pair.Key, t.Name(), t.ParamKind())
			}
			klog.Warningf("node %q parameter %q: tensor %q has no parameter attached, keeping the default generator",
				n.name, pair.Key, t.Name())
			continue
		}
		if err := slot.binding.SetParam(p); err != nil {
			return errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
		}
	}
	n.state = Configured
	return nil
}

// batchSize of the node: the one of its input.
func (n *paramNode) batchSize() int {
	return n.inputs[0].Info().BatchSize()
}

// createParamNode materializes the bindings and creates the accelerator graph node with create, which receives
// the parameters device buffers in order, and the layouts and ROI type scalars.
func (n *paramNode) createParamNode(env *Env, create func(input, roi, output backends.Buffer, params []backends.Buffer,
	inLayout, outLayout, roiType backends.Buffer) backends.Node) error {
	if n.isBuilt() {
		return nil
	}
	input, output := n.inputs[0], n.outputs[0]
	if err := checkTensor(n.name, "input", input); err != nil {
		return err
	}
	if err := checkTensor(n.name, "output", output); err != nil {
		return err
	}
	batchSize := n.batchSize()
	paramBuffers := make([]backends.Buffer, 0, n.slots.Len())
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		b := pair.Value.binding
		if b.Mode() == binding.Unmaterialized {
			if err := b.CreateTensorForBatch(env.Data, batchSize); err != nil {
				return errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
			}
		}
		if b.Degraded() {
			klog.Warningf("node %q parameter %q: externally sourced tensor has no device buffer", n.name, pair.Key)
		}
		paramBuffers = append(paramBuffers, b.Handle())
	}
	staged := len(n.owned)
	inLayout, outLayout, roiType, err := n.stageLayouts(env.Data, input, output)
	if err != nil {
		n.releaseStaged(staged)
		return errors.WithMessagef(err, "node %q", n.name)
	}
	node := create(input.Handle(), input.ROI(), output.Handle(), paramBuffers, inLayout, outLayout, roiType)
	if err = n.checkCreated(env, node); err != nil {
		n.releaseStaged(staged)
		return err
	}
	return nil
}

// UpdateNode refreshes the bindings that are not externally sourced.
func (n *paramNode) UpdateNode() error {
	if !n.isBuilt() {
		return errors.Errorf("node %q: UpdateNode called before CreateNode", n.name)
	}
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		b := pair.Value.binding
		if b.Mode() == binding.External {
			continue
		}
		if err := b.UpdateTensor(); err != nil {
			return errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
		}
	}
	n.state = Refreshed
	return nil
}

// Release the bindings and the staged device buffers of the node.
func (n *paramNode) Release() error {
	var firstErr error
	for pair := n.slots.Oldest(); pair != nil; pair = pair.Next() {
		if err := pair.Value.binding.Release(); err != nil && firstErr == nil {
			firstErr = errors.WithMessagef(err, "node %q parameter %q", n.name, pair.Key)
		}
	}
	if err := n.releaseOwned(); err != nil && firstErr == nil {
		firstErr = errors.WithMessagef(err, "node %q", n.name)
	}
	return firstErr
}
