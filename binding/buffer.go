// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package binding

import (
	"github.com/gomlx/augment/backends"
)

// OwnedBuffer is a device buffer owned by a Binding: it is released with the binding.
type OwnedBuffer struct {
	data   backends.DataInterface
	handle backends.Buffer
}

// Own creates an OwnedBuffer: the handle will be released by OwnedBuffer.Release.
func Own(data backends.DataInterface, handle backends.Buffer) *OwnedBuffer {
	return &OwnedBuffer{data: data, handle: handle}
}

// Handle returns the device buffer, or nil if it was already released.
func (b *OwnedBuffer) Handle() backends.Buffer {
	if b == nil {
		return nil
	}
	return b.handle
}

// Release the device buffer. It is idempotent.
func (b *OwnedBuffer) Release() error {
	if b == nil || b.handle == nil {
		return nil
	}
	handle := b.handle
	b.handle = nil
	return b.data.BufferFinalize(handle)
}

// BorrowedBuffer is a non-owning reference to a device buffer owned by someone else: e.g. the output of an
// external source node, or a parameter of a graph node.
//
// It has no Release method: the owner is responsible for it.
type BorrowedBuffer struct {
	handle backends.Buffer
}

// Borrow creates a non-owning reference to handle.
func Borrow(handle backends.Buffer) BorrowedBuffer {
	return BorrowedBuffer{handle: handle}
}

// Handle returns the referenced device buffer, it may be nil.
func (b BorrowedBuffer) Handle() backends.Buffer {
	return b.handle
}

// IsNil returns whether it doesn't reference any buffer.
func (b BorrowedBuffer) IsNil() bool {
	return b.handle == nil
}
