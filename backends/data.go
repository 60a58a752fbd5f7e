// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
)

// Buffer represents device memory of the accelerator: an array, a tensor or a scalar.
// It's used as the input, output and parameters of the augmentation graph nodes.
//
// It is opaque from the augment perspective, only the backend that created it can interpret it.
type Buffer any

// DataInterface is the Backend's sub-interface that defines the API to create device buffers and transfer
// data to/from them.
//
// All flat values are slices of the Go type matching the buffer DType (e.g. []float32 for dtypes.Float32).
// All methods return a *StatusError on failure.
type DataInterface interface {
	// NewArray creates an empty array with room for capacity items of the given dtype.
	NewArray(dtype dtypes.DType, capacity int) (Buffer, error)

	// AddArrayItems appends the flat values to the array. It fails if capacity is exceeded.
	AddArrayItems(array Buffer, flat any) error

	// CopyArrayRange overwrites the items [start, end) of the array with the flat values.
	CopyArrayRange(array Buffer, start, end int, flat any) error

	// NewTensor creates a tensor with the given shape, initialized with the flat values, if not nil.
	NewTensor(shape shapes.Shape, flat any) (Buffer, error)

	// CopyTensorPatch copies the flat values over the full extent of the tensor.
	CopyTensorPatch(tensor Buffer, flat any) error

	// NewScalar creates a scalar of the given dtype holding value (a Go value of the matching type).
	NewScalar(dtype dtypes.DType, value any) (Buffer, error)

	// ReadScalar returns the current value of a scalar.
	ReadScalar(scalar Buffer) (any, error)

	// WriteScalar overwrites the value of a scalar.
	WriteScalar(scalar Buffer, value any) error

	// BufferShape returns the shape for the buffer. For arrays the dimension is the number of items added.
	BufferShape(buffer Buffer) (shapes.Shape, error)

	// BufferToFlatData transfers the flat values of the buffer to the Go flat slice.
	// The slice flat must have the exact number of elements of the buffer shape.
	BufferToFlatData(buffer Buffer, flat any) error

	// BufferFinalize releases the buffer. A finalized buffer should never be used again.
	BufferFinalize(buffer Buffer) error
}
