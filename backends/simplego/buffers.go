// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"reflect"
	"sync"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
)

// Compile-time check:
var _ backends.DataInterface = (*Backend)(nil)

type bufferKind int

const (
	tensorKind bufferKind = iota
	arrayKind
	scalarKind
)

var bufferKindNames = []string{"tensor", "array", "scalar"}

func (k bufferKind) String() string { return bufferKindNames[k] }

// Buffer for SimpleGo backend holds a shape and a reference to the flat data.
//
// Arrays are allocated with a capacity, and grow (up to the capacity) as items are added. For arrays the shape
// is always rank-1 with the capacity as dimension.
type Buffer struct {
	backend *Backend
	kind    bufferKind
	shape   shapes.Shape
	length  int

	valid, released bool

	// flat is always a slice of the underlying data type (shape.DType).
	flat any
}

// isSupportedDType returns whether buffers of the dtype can be created.
func isSupportedDType(dtype dtypes.DType) bool {
	switch dtype {
	case dtypes.Uint8, dtypes.Int8, dtypes.Int32, dtypes.Int64, dtypes.Float16, dtypes.Float32, dtypes.Float64:
		return true
	}
	return false
}

// numElements usable in the buffer: the number of items added for arrays, the shape size otherwise.
func (buf *Buffer) numElements() int {
	if buf.kind == arrayKind {
		return buf.length
	}
	return buf.shape.Size()
}

type flatPoolKey struct {
	dtype  dtypes.DType
	length int
}

// getFlatPool for given dtype/length.
func (b *Backend) getFlatPool(dtype dtypes.DType, length int) *sync.Pool {
	key := flatPoolKey{dtype: dtype, length: length}
	poolInterface, ok := b.flatPools.Load(key)
	if !ok {
		poolInterface, _ = b.flatPools.LoadOrStore(key, &sync.Pool{
			New: func() any {
				return reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), length, length).Interface()
			},
		})
	}
	return poolInterface.(*sync.Pool)
}

// newBuffer allocates a buffer with zeroed flat storage taken from the backend pools.
func (b *Backend) newBuffer(kind bufferKind, shape shapes.Shape) *Buffer {
	length := max(shape.Size(), 1)
	flat := b.getFlatPool(shape.DType, length).Get()
	reflect.ValueOf(flat).Clear()
	b.faults.countAllocation()
	return &Buffer{
		backend: b,
		kind:    kind,
		shape:   shape.Clone(),
		valid:   true,
		flat:    flat,
	}
}

// putBuffer returns the flat storage of the buffer to the pool.
// After this the buffer is marked as released, and any use of it fails.
func (b *Backend) putBuffer(buf *Buffer) {
	length := max(buf.shape.Size(), 1)
	b.getFlatPool(buf.shape.DType, length).Put(buf.flat)
	buf.flat = nil
	buf.valid = false
	buf.released = true
	b.faults.countRelease()
}

// toBuffer converts a backends.Buffer to a valid *Buffer of this backend.
func (b *Backend) toBuffer(op string, buffer backends.Buffer) (*Buffer, error) {
	buf, ok := buffer.(*Buffer)
	if !ok {
		if buffer == nil {
			return nil, backends.Errorf(op, backends.StatusInvalidReference, "nil buffer")
		}
		return nil, backends.Errorf(op, backends.StatusInvalidReference, "buffer %T is not a %q backend buffer", buffer, BackendName)
	}
	if buf == nil {
		return nil, backends.Errorf(op, backends.StatusInvalidReference, "nil buffer")
	}
	if buf.backend != b {
		return nil, backends.Errorf(op, backends.StatusInvalidReference, "buffer belongs to another backend instance")
	}
	if !buf.valid {
		return nil, backends.Errorf(op, backends.StatusInvalidReference, "buffer %p was already finalized", buf)
	}
	return buf, nil
}

// checkFlat verifies flat is a slice of the Go type of dtype, and returns its reflected value.
func checkFlat(op string, dtype dtypes.DType, flat any) (reflect.Value, error) {
	if flat == nil {
		return reflect.Value{}, backends.Errorf(op, backends.StatusInvalidParameters, "nil flat values")
	}
	flatV := reflect.ValueOf(flat)
	if flatV.Kind() != reflect.Slice {
		return reflect.Value{}, backends.Errorf(op, backends.StatusInvalidType, "flat values must be a slice, got %T", flat)
	}
	if got := dtypes.FromGoType(flatV.Type().Elem()); got != dtype {
		return reflect.Value{}, backends.Errorf(op, backends.StatusInvalidType,
			"flat values of type %T (%s) do not match buffer dtype %s", flat, got, dtype)
	}
	return flatV, nil
}

// NewArray creates an empty array with room for capacity items of the given dtype.
func (b *Backend) NewArray(dtype dtypes.DType, capacity int) (backends.Buffer, error) {
	if err := b.faults.call(OpNewArray); err != nil {
		return nil, err
	}
	if !isSupportedDType(dtype) {
		return nil, backends.Errorf(OpNewArray, backends.StatusInvalidType, "dtype %s not supported", dtype)
	}
	if capacity <= 0 {
		return nil, backends.Errorf(OpNewArray, backends.StatusInvalidDimension, "invalid capacity %d", capacity)
	}
	return b.newBuffer(arrayKind, shapes.Make(dtype, capacity)), nil
}

// AddArrayItems appends the flat values to the array.
func (b *Backend) AddArrayItems(array backends.Buffer, flat any) error {
	if err := b.faults.call(OpAddArrayItems); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpAddArrayItems, array)
	if err != nil {
		return err
	}
	if buf.kind != arrayKind {
		return backends.Errorf(OpAddArrayItems, backends.StatusInvalidReference, "buffer is a %s, not an array", buf.kind)
	}
	flatV, err := checkFlat(OpAddArrayItems, buf.shape.DType, flat)
	if err != nil {
		return err
	}
	n := flatV.Len()
	if buf.length+n > buf.shape.Size() {
		return backends.Errorf(OpAddArrayItems, backends.StatusInvalidDimension,
			"adding %d items to array with %d items and capacity %d", n, buf.length, buf.shape.Size())
	}
	reflect.Copy(reflect.ValueOf(buf.flat).Slice(buf.length, buf.length+n), flatV)
	buf.length += n
	return nil
}

// CopyArrayRange overwrites the items [start, end) of the array with the flat values.
// The array grows to end items if it had fewer.
func (b *Backend) CopyArrayRange(array backends.Buffer, start, end int, flat any) error {
	if err := b.faults.call(OpCopyArrayRange); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpCopyArrayRange, array)
	if err != nil {
		return err
	}
	if buf.kind != arrayKind {
		return backends.Errorf(OpCopyArrayRange, backends.StatusInvalidReference, "buffer is a %s, not an array", buf.kind)
	}
	flatV, err := checkFlat(OpCopyArrayRange, buf.shape.DType, flat)
	if err != nil {
		return err
	}
	if start < 0 || start > end || end > buf.shape.Size() {
		return backends.Errorf(OpCopyArrayRange, backends.StatusInvalidDimension,
			"invalid range [%d, %d) for array of capacity %d", start, end, buf.shape.Size())
	}
	if flatV.Len() != end-start {
		return backends.Errorf(OpCopyArrayRange, backends.StatusInvalidDimension,
			"range [%d, %d) requires %d values, got %d", start, end, end-start, flatV.Len())
	}
	reflect.Copy(reflect.ValueOf(buf.flat).Slice(start, end), flatV)
	buf.length = max(buf.length, end)
	return nil
}

// NewTensor creates a tensor with the given shape, initialized with the flat values, or zeros if flat is nil.
func (b *Backend) NewTensor(shape shapes.Shape, flat any) (backends.Buffer, error) {
	if err := b.faults.call(OpNewTensor); err != nil {
		return nil, err
	}
	if !shape.Ok() || !isSupportedDType(shape.DType) {
		return nil, backends.Errorf(OpNewTensor, backends.StatusInvalidType, "shape %s not supported", shape)
	}
	if shape.IsScalar() {
		return nil, backends.Errorf(OpNewTensor, backends.StatusInvalidDimension, "tensors must have rank >= 1, got %s", shape)
	}
	var flatV reflect.Value
	if flat != nil {
		var err error
		flatV, err = checkFlat(OpNewTensor, shape.DType, flat)
		if err != nil {
			return nil, err
		}
		if flatV.Len() != shape.Size() {
			return nil, backends.Errorf(OpNewTensor, backends.StatusInvalidDimension,
				"shape %s requires %d values, got %d", shape, shape.Size(), flatV.Len())
		}
	}
	buf := b.newBuffer(tensorKind, shape)
	if flat != nil {
		reflect.Copy(reflect.ValueOf(buf.flat), flatV)
	}
	return buf, nil
}

// CopyTensorPatch copies the flat values over the full extent of the tensor (or array).
func (b *Backend) CopyTensorPatch(tensor backends.Buffer, flat any) error {
	if err := b.faults.call(OpCopyTensorPatch); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpCopyTensorPatch, tensor)
	if err != nil {
		return err
	}
	if buf.kind == scalarKind {
		return backends.Errorf(OpCopyTensorPatch, backends.StatusInvalidReference, "buffer is a scalar, use WriteScalar")
	}
	flatV, err := checkFlat(OpCopyTensorPatch, buf.shape.DType, flat)
	if err != nil {
		return err
	}
	if flatV.Len() != buf.shape.Size() {
		return backends.Errorf(OpCopyTensorPatch, backends.StatusInvalidDimension,
			"%s of shape %s requires %d values, got %d", buf.kind, buf.shape, buf.shape.Size(), flatV.Len())
	}
	reflect.Copy(reflect.ValueOf(buf.flat), flatV)
	if buf.kind == arrayKind {
		buf.length = buf.shape.Size()
	}
	return nil
}

// checkScalarValue verifies value is of the Go type of dtype.
func checkScalarValue(op string, dtype dtypes.DType, value any) error {
	if value == nil {
		return backends.Errorf(op, backends.StatusInvalidParameters, "nil scalar value")
	}
	if reflect.TypeOf(value) != dtype.GoType() {
		return backends.Errorf(op, backends.StatusInvalidType, "value of type %T does not match dtype %s", value, dtype)
	}
	return nil
}

// NewScalar creates a scalar of the given dtype holding value.
func (b *Backend) NewScalar(dtype dtypes.DType, value any) (backends.Buffer, error) {
	if err := b.faults.call(OpNewScalar); err != nil {
		return nil, err
	}
	if !isSupportedDType(dtype) {
		return nil, backends.Errorf(OpNewScalar, backends.StatusInvalidType, "dtype %s not supported", dtype)
	}
	if err := checkScalarValue(OpNewScalar, dtype, value); err != nil {
		return nil, err
	}
	buf := b.newBuffer(scalarKind, shapes.Scalar(dtype))
	reflect.ValueOf(buf.flat).Index(0).Set(reflect.ValueOf(value))
	return buf, nil
}

// ReadScalar returns the current value of a scalar.
func (b *Backend) ReadScalar(scalar backends.Buffer) (any, error) {
	if err := b.faults.call(OpReadScalar); err != nil {
		return nil, err
	}
	buf, err := b.toBuffer(OpReadScalar, scalar)
	if err != nil {
		return nil, err
	}
	if buf.kind != scalarKind {
		return nil, backends.Errorf(OpReadScalar, backends.StatusInvalidReference, "buffer is a %s, not a scalar", buf.kind)
	}
	return reflect.ValueOf(buf.flat).Index(0).Interface(), nil
}

// WriteScalar overwrites the value of a scalar.
func (b *Backend) WriteScalar(scalar backends.Buffer, value any) error {
	if err := b.faults.call(OpWriteScalar); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpWriteScalar, scalar)
	if err != nil {
		return err
	}
	if buf.kind != scalarKind {
		return backends.Errorf(OpWriteScalar, backends.StatusInvalidReference, "buffer is a %s, not a scalar", buf.kind)
	}
	if err := checkScalarValue(OpWriteScalar, buf.shape.DType, value); err != nil {
		return err
	}
	reflect.ValueOf(buf.flat).Index(0).Set(reflect.ValueOf(value))
	return nil
}

// BufferShape returns the shape for the buffer. For arrays the dimension is the number of items added.
func (b *Backend) BufferShape(buffer backends.Buffer) (shapes.Shape, error) {
	buf, err := b.toBuffer("BufferShape", buffer)
	if err != nil {
		return shapes.Invalid(), err
	}
	if buf.kind == arrayKind {
		return shapes.Shape{DType: buf.shape.DType, Dimensions: []int{buf.length}}, nil
	}
	return buf.shape.Clone(), nil
}

// BufferToFlatData transfers the flat values of the buffer to the Go flat slice.
// The slice flat must have the exact number of elements of the buffer shape.
func (b *Backend) BufferToFlatData(buffer backends.Buffer, flat any) error {
	if err := b.faults.call(OpBufferToFlatData); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpBufferToFlatData, buffer)
	if err != nil {
		return err
	}
	flatV, err := checkFlat(OpBufferToFlatData, buf.shape.DType, flat)
	if err != nil {
		return err
	}
	n := buf.numElements()
	if flatV.Len() != n {
		return backends.Errorf(OpBufferToFlatData, backends.StatusInvalidDimension,
			"%s holds %d values, flat has %d", buf.kind, n, flatV.Len())
	}
	reflect.Copy(flatV, reflect.ValueOf(buf.flat).Slice(0, n))
	return nil
}

// BufferFinalize releases the buffer, and returns its storage to the pool of the backend.
//
// A finalized buffer should never be used again. Finalizing a buffer twice returns an error.
func (b *Backend) BufferFinalize(buffer backends.Buffer) error {
	if err := b.faults.call(OpBufferFinalize); err != nil {
		return err
	}
	buf, err := b.toBuffer(OpBufferFinalize, buffer)
	if err != nil {
		return err
	}
	b.putBuffer(buf)
	return nil
}
