// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package binding bridges one randomized (or externally fed) numeric parameter of an augmentation node to the
// device memory the node consumes.
//
// A Binding wraps a params.Parameter (its generator) and the device representation the values are staged
// into. The representation is one of:
//
//   - Scalar: a single device scalar, resolved from the graph node parameter list after the node is created.
//   - Array: a device array with one value per sample of the batch.
//   - Tensor: a device tensor (by default of shape [batch_size]) with one value per sample.
//   - External: the binding aliases a device tensor owned by an external producer (e.g. the output of an
//     external source node). There is no generator, and refreshing is a no-op.
//
// Owned device buffers (OwnedBuffer) are released with the binding, borrowed ones (BorrowedBuffer) never are.
// A Binding is not safe for concurrent use: Update must complete before the graph is executed, and the graph
// execution must complete before the next Update.
package binding

import (
	"fmt"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

//go:generate go tool enumer -type=Mode -output=gen_mode_enumer.go binding.go

// Mode of the device representation of a Binding.
type Mode int

const (
	// Unmaterialized is the mode of a binding before its device buffer is created.
	Unmaterialized Mode = iota
	Scalar
	Array
	Tensor
	External
)

// representation is the tagged variant of the device representation. Exactly one is active at a time.
type representation interface {
	mode() Mode
}

type scalarRep struct {
	// owned is set if the scalar was created by the binding (DefaultScalar).
	owned *OwnedBuffer
	// resolved is the scalar fetched from the graph node (ResolveScalar).
	resolved   BorrowedBuffer
	isResolved bool
}

type arrayRep struct {
	buf *OwnedBuffer
}

type tensorRep struct {
	buf *OwnedBuffer
}

type externalRep struct {
	buf BorrowedBuffer
}

func (*scalarRep) mode() Mode   { return Scalar }
func (*arrayRep) mode() Mode    { return Array }
func (*tensorRep) mode() Mode   { return Tensor }
func (*externalRep) mode() Mode { return External }

// Binding of a parameter of type T to device memory. See package documentation.
type Binding[T params.Number] struct {
	factory *params.Factory
	data    backends.DataInterface
	dtype   dtypes.DType

	// param is the generator, nil when External.
	param     *params.Parameter[T]
	ownsParam bool

	batchSize int
	shape     shapes.Shape
	rep       representation

	// staging holds one value per element of the device buffer, copied to the device in one call.
	staging []T
	// scalarValue is the last value written to (or read from) the device scalar.
	scalarValue T

	released bool
}

// New creates a Binding with an owned uniform generator over [start, end].
// No device resources are allocated.
func New[T params.Number](factory *params.Factory, start, end T) *Binding[T] {
	return &Binding[T]{
		factory:   factory,
		dtype:     dtypes.FromGenericsType[T](),
		param:     params.NewUniform(factory, start, end),
		ownsParam: true,
		shape:     shapes.Invalid(),
	}
}

// Mode returns the current device representation.
func (b *Binding[T]) Mode() Mode {
	if b.rep == nil {
		return Unmaterialized
	}
	return b.rep.mode()
}

// DType of the values of the binding.
func (b *Binding[T]) DType() dtypes.DType { return b.dtype }

// BatchSize of the device buffer, 0 before it is materialized.
func (b *Binding[T]) BatchSize() int { return b.batchSize }

// Shape of the device buffer. It is invalid before the buffer is materialized, and for External bindings.
func (b *Binding[T]) Shape() shapes.Shape { return b.shape }

// Param returns the current generator, nil if the binding is External.
func (b *Binding[T]) Param() *params.Parameter[T] { return b.param }

// OwnsParam returns whether the generator is destroyed with the binding.
func (b *Binding[T]) OwnsParam() bool { return b.ownsParam }

// Degraded returns whether the binding is External but aliases no device buffer.
func (b *Binding[T]) Degraded() bool {
	ext, ok := b.rep.(*externalRep)
	return ok && ext.buf.IsNil()
}

// Handle returns the device buffer the graph node should consume, nil if there is none.
func (b *Binding[T]) Handle() backends.Buffer {
	switch rep := b.rep.(type) {
	case *scalarRep:
		if rep.isResolved {
			return rep.resolved.Handle()
		}
		return rep.owned.Handle()
	case *arrayRep:
		return rep.buf.Handle()
	case *tensorRep:
		return rep.buf.Handle()
	case *externalRep:
		return rep.buf.Handle()
	}
	return nil
}

func (b *Binding[T]) checkCanMaterialize(op string) error {
	if b.released {
		return errors.Errorf("binding.%s: binding was released", op)
	}
	if b.rep != nil {
		return errors.Errorf("binding.%s: binding is already materialized as %s", op, b.rep.mode())
	}
	return nil
}

// renewStaging draws one new value per element into the staging buffer.
func (b *Binding[T]) renewStaging() {
	for ii := range b.staging {
		b.staging[ii] = b.param.Renew()
	}
}

// CreateArray allocates a device array of batchSize elements, and copies one fresh sample per batch slot into it.
//
// Device failures are returned (wrapping the *backends.StatusError), and the binding stays unmaterialized.
func (b *Binding[T]) CreateArray(data backends.DataInterface, batchSize int) error {
	if err := b.checkCanMaterialize("CreateArray"); err != nil {
		return err
	}
	if batchSize < 1 {
		return errors.Errorf("binding.CreateArray: invalid batch size %d", batchSize)
	}
	handle, err := data.NewArray(b.dtype, batchSize)
	if err != nil {
		return errors.WithMessagef(err, "binding.CreateArray(batchSize=%d)", batchSize)
	}
	buf := Own(data, handle)
	b.staging = make([]T, batchSize)
	b.renewStaging()
	if err = data.AddArrayItems(handle, b.staging); err != nil {
		if releaseErr := buf.Release(); releaseErr != nil {
			klog.Warningf("binding.CreateArray: failed to release array after error: %+v", releaseErr)
		}
		b.staging = nil
		return errors.WithMessagef(err, "binding.CreateArray(batchSize=%d)", batchSize)
	}
	b.data = data
	b.batchSize = batchSize
	b.shape = shapes.Make(b.dtype, batchSize)
	b.rep = &arrayRep{buf: buf}
	return nil
}

// CreateTensor allocates a device tensor with the given shape, and copies one fresh sample per element into it.
// The first axis of the shape is the batch size, and the shape dtype must match the binding's.
//
// It is rejected if the binding is already materialized, in particular if it is External.
func (b *Binding[T]) CreateTensor(data backends.DataInterface, shape shapes.Shape) error {
	if err := b.checkCanMaterialize("CreateTensor"); err != nil {
		return err
	}
	if shape.DType != b.dtype || shape.Rank() < 1 {
		return errors.Errorf("binding.CreateTensor: invalid shape %s for a %s binding", shape, b.dtype)
	}
	b.staging = make([]T, shape.Size())
	b.renewStaging()
	handle, err := data.NewTensor(shape, b.staging)
	if err != nil {
		b.staging = nil
		return errors.WithMessagef(err, "binding.CreateTensor(%s)", shape)
	}
	b.data = data
	b.batchSize = shape.Dim(0)
	b.shape = shape.Clone()
	b.rep = &tensorRep{buf: Own(data, handle)}
	return nil
}

// CreateTensorForBatch is CreateTensor with a rank-1 shape [batchSize].
func (b *Binding[T]) CreateTensorForBatch(data backends.DataInterface, batchSize int) error {
	if batchSize < 1 {
		return errors.Errorf("binding.CreateTensorForBatch: invalid batch size %d", batchSize)
	}
	return b.CreateTensor(data, shapes.Make(b.dtype, batchSize))
}

// DefaultScalar creates a device scalar holding the current value of the generator, owned by the binding,
// to be given to the graph node creation. Use ResolveScalar once the node is created.
func (b *Binding[T]) DefaultScalar(data backends.DataInterface) (backends.Buffer, error) {
	if err := b.checkCanMaterialize("DefaultScalar"); err != nil {
		return nil, err
	}
	value := b.param.Get()
	handle, err := data.NewScalar(b.dtype, value)
	if err != nil {
		return nil, errors.WithMessage(err, "binding.DefaultScalar")
	}
	b.data = data
	b.batchSize = 1
	b.shape = shapes.Scalar(b.dtype)
	b.scalarValue = value
	b.rep = &scalarRep{owned: Own(data, handle)}
	return handle, nil
}

// ResolveScalar binds the Scalar representation to the argument index of the graph node, and reads its
// current value. Get and Update are only meaningful afterwards.
func (b *Binding[T]) ResolveScalar(data backends.DataInterface, builder backends.Builder, node backends.Node, index int) error {
	if b.released {
		return errors.New("binding.ResolveScalar: binding was released")
	}
	rep, isScalar := b.rep.(*scalarRep)
	if b.rep != nil && !isScalar {
		return errors.Errorf("binding.ResolveScalar: binding is already materialized as %s", b.rep.mode())
	}
	handle, err := builder.NodeParameter(node, index)
	if err != nil {
		return errors.WithMessagef(err, "binding.ResolveScalar(index=%d)", index)
	}
	value, err := data.ReadScalar(handle)
	if err != nil {
		return errors.WithMessagef(err, "binding.ResolveScalar(index=%d)", index)
	}
	typed, ok := value.(T)
	if !ok {
		return errors.Errorf("binding.ResolveScalar(index=%d): node parameter holds a %T, binding requires %s",
			index, value, b.dtype)
	}
	if rep == nil {
		rep = &scalarRep{}
		b.rep = rep
	}
	rep.resolved = Borrow(handle)
	rep.isResolved = true
	b.data = data
	b.batchSize = 1
	b.shape = shapes.Scalar(b.dtype)
	b.scalarValue = typed
	return nil
}

// SetTensor switches the binding to External mode, aliasing the device tensor owned by an external producer.
// Any owned device buffer is released and the generator is abandoned (destroyed if owned).
//
// A nil handle is tolerated with a warning: the binding is then Degraded, with no device buffer.
func (b *Binding[T]) SetTensor(handle backends.Buffer) error {
	if b.released {
		return errors.New("binding.SetTensor: binding was released")
	}
	err := b.releaseOwnedBuffers()
	b.destroyParam()
	b.staging = nil
	b.shape = shapes.Invalid()
	b.rep = &externalRep{buf: Borrow(handle)}
	if handle == nil {
		klog.Warningf("binding.SetTensor: external source tensor is nil, the %s binding has no device buffer", b.dtype)
	}
	return err
}

// SetValue replaces the generator with a constant one, generating value.
// The prior generator is destroyed if owned.
func (b *Binding[T]) SetValue(value T) error {
	if err := b.checkCanSetParam("SetValue"); err != nil {
		return err
	}
	p := params.NewSingleValue(b.factory, value)
	b.destroyParam()
	b.param, b.ownsParam = p, true
	return nil
}

// SetParam replaces the generator with p, shared with the caller: it is not destroyed with the binding.
// The prior generator is destroyed if owned. A nil p is a no-op, keeping the current generator.
func (b *Binding[T]) SetParam(p *params.Parameter[T]) error {
	if p == nil {
		return nil
	}
	if err := b.checkCanSetParam("SetParam"); err != nil {
		return err
	}
	if p == b.param {
		return nil
	}
	b.destroyParam()
	b.param, b.ownsParam = p, false
	return nil
}

func (b *Binding[T]) checkCanSetParam(op string) error {
	if b.released {
		return errors.Errorf("binding.%s: binding was released", op)
	}
	if b.Mode() == External {
		return errors.Errorf("binding.%s: binding is externally sourced, it has no generator", op)
	}
	return nil
}

func (b *Binding[T]) destroyParam() {
	if b.ownsParam {
		b.param.Destroy()
	}
	b.param, b.ownsParam = nil, false
}

// Update refreshes the device buffer with new samples, dispatching on the mode. It is a no-op for External
// bindings. It must be called once per batch, before the graph is executed.
func (b *Binding[T]) Update() error {
	switch b.rep.(type) {
	case *externalRep:
		return nil
	case *scalarRep:
		return b.updateScalar()
	case *arrayRep:
		return b.UpdateArray()
	case *tensorRep:
		return b.UpdateTensor()
	}
	return errors.New("binding.Update: binding is not materialized")
}

// updateScalar renews the generator once and writes the device scalar if the value changed.
// Write failures are logged and not returned.
func (b *Binding[T]) updateScalar() error {
	rep := b.rep.(*scalarRep)
	if !rep.isResolved {
		return errors.New("binding.Update: scalar binding was not resolved from its graph node")
	}
	value := b.param.Renew()
	if value == b.scalarValue {
		return nil
	}
	if err := b.data.WriteScalar(rep.resolved.Handle(), value); err != nil {
		klog.Warningf("binding.Update: failed to write scalar value %v: %+v", value, err)
		return nil
	}
	b.scalarValue = value
	return nil
}

// UpdateArray renews one sample per batch slot and copies them to the device array in one call.
// It returns immediately for External bindings.
func (b *Binding[T]) UpdateArray() error {
	if b.Mode() == External {
		return nil
	}
	rep, ok := b.rep.(*arrayRep)
	if !ok {
		return errors.Errorf("binding.UpdateArray: binding is %s", b.Mode())
	}
	b.renewStaging()
	if err := b.data.CopyArrayRange(rep.buf.Handle(), 0, len(b.staging), b.staging); err != nil {
		return errors.WithMessage(err, "binding.UpdateArray")
	}
	return nil
}

// UpdateTensor renews one sample per element and copies them over the full extent of the device tensor.
// It returns immediately for External bindings.
func (b *Binding[T]) UpdateTensor() error {
	if b.Mode() == External {
		return nil
	}
	rep, ok := b.rep.(*tensorRep)
	if !ok {
		return errors.Errorf("binding.UpdateTensor: binding is %s", b.Mode())
	}
	b.renewStaging()
	if err := b.data.CopyTensorPatch(rep.buf.Handle(), b.staging); err != nil {
		return errors.WithMessage(err, "binding.UpdateTensor")
	}
	return nil
}

// Renew advances the generator by one sample and returns it. External bindings return the zero value.
func (b *Binding[T]) Renew() T {
	if b.param == nil {
		var zero T
		return zero
	}
	return b.param.Renew()
}

// Get returns the current value: for Scalar bindings the value of the device scalar, otherwise the
// last value generated. External bindings return the zero value.
func (b *Binding[T]) Get() T {
	if b.Mode() == Scalar {
		return b.scalarValue
	}
	if b.param == nil {
		var zero T
		return zero
	}
	return b.param.Get()
}

// Default returns the default value of the generator. External bindings return the zero value.
func (b *Binding[T]) Default() T {
	if b.param == nil {
		var zero T
		return zero
	}
	return b.param.Default()
}

// DefaultArray returns a non-owning reference to the device array, nil if the binding is not an Array.
func (b *Binding[T]) DefaultArray() BorrowedBuffer {
	if rep, ok := b.rep.(*arrayRep); ok {
		return Borrow(rep.buf.Handle())
	}
	return BorrowedBuffer{}
}

// DefaultTensor returns a non-owning reference to the device tensor, owned or aliased.
// It references nil if the binding is neither a Tensor nor External.
func (b *Binding[T]) DefaultTensor() BorrowedBuffer {
	switch rep := b.rep.(type) {
	case *tensorRep:
		return Borrow(rep.buf.Handle())
	case *externalRep:
		return rep.buf
	}
	return BorrowedBuffer{}
}

// Staged returns a copy of the values last copied to the device buffer.
func (b *Binding[T]) Staged() []T {
	return append([]T(nil), b.staging...)
}

// releaseOwnedBuffers releases the device buffer if owned, and leaves the binding unmaterialized.
func (b *Binding[T]) releaseOwnedBuffers() error {
	var err error
	switch rep := b.rep.(type) {
	case *scalarRep:
		err = rep.owned.Release()
	case *arrayRep:
		err = rep.buf.Release()
	case *tensorRep:
		err = rep.buf.Release()
	}
	b.rep = nil
	if err != nil {
		return errors.WithMessage(err, "binding: releasing device buffer")
	}
	return nil
}

// Release the owned device buffers, and the generator if owned. Borrowed device buffers are never released.
// It is idempotent.
func (b *Binding[T]) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	err := b.releaseOwnedBuffers()
	b.destroyParam()
	b.staging = nil
	return err
}

// String implements fmt.Stringer.
func (b *Binding[T]) String() string {
	return fmt.Sprintf("Binding[%s](mode=%s, batch=%d, param=%s)", b.dtype, b.Mode(), b.batchSize, b.param)
}
