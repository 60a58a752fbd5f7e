// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"sync"

	"github.com/gomlx/augment/backends"
)

// Names of the primitives that can be observed with NumCalls and made to fail with InjectFailure.
const (
	OpNewArray           = "NewArray"
	OpAddArrayItems      = "AddArrayItems"
	OpCopyArrayRange     = "CopyArrayRange"
	OpNewTensor          = "NewTensor"
	OpCopyTensorPatch    = "CopyTensorPatch"
	OpNewScalar          = "NewScalar"
	OpReadScalar         = "ReadScalar"
	OpWriteScalar        = "WriteScalar"
	OpBufferToFlatData   = "BufferToFlatData"
	OpBufferFinalize     = "BufferFinalize"
	OpFeedExternalSource = "FeedExternalSource"
	OpBrightness         = "Brightness"
	OpContrast           = "Contrast"
	OpExternalSource     = "ExternalSource"
	OpVerify             = "Verify"
	OpExecute            = "Execute"
)

type faults struct {
	mu          sync.Mutex
	injected    map[string]backends.Status
	calls       map[string]int
	allocations int
	releases    int
}

func newFaults() *faults {
	return &faults{
		injected: make(map[string]backends.Status),
		calls:    make(map[string]int),
	}
}

// call registers a call to op, and returns an error if a failure was injected for op.
func (f *faults) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if status, found := f.injected[op]; found {
		return backends.Errorf(op, status, "injected failure")
	}
	return nil
}

func (f *faults) injectedStatus(op string) backends.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if status, found := f.injected[op]; found {
		return status
	}
	return backends.StatusSuccess
}

func (f *faults) countAllocation() {
	f.mu.Lock()
	f.allocations++
	f.mu.Unlock()
}

func (f *faults) countRelease() {
	f.mu.Lock()
	f.releases++
	f.mu.Unlock()
}

// InjectFailure makes every following call to the primitive op (e.g. OpCopyTensorPatch) fail with the given
// status, until ClearFailures is called. For the node creation ops (OpBrightness, ...) the created nodes get
// the status.
func (b *Backend) InjectFailure(op string, status backends.Status) {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	b.faults.injected[op] = status
}

// ClearFailures removes all failures injected with InjectFailure.
func (b *Backend) ClearFailures() {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	clear(b.faults.injected)
}

// NumCalls returns how many times the primitive op was called, successfully or not.
func (b *Backend) NumCalls(op string) int {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	return b.faults.calls[op]
}

// NumAllocations returns the number of buffers (arrays, tensors and scalars) successfully created.
func (b *Backend) NumAllocations() int {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	return b.faults.allocations
}

// NumReleases returns the number of buffers successfully finalized.
func (b *Backend) NumReleases() int {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	return b.faults.releases
}

// NumLiveBuffers returns the number of buffers created and not yet finalized.
func (b *Backend) NumLiveBuffers() int {
	b.faults.mu.Lock()
	defer b.faults.mu.Unlock()
	return b.faults.allocations - b.faults.releases
}

// WasReleased returns whether the buffer was finalized with BufferFinalize.
func (b *Backend) WasReleased(buffer backends.Buffer) bool {
	buf, ok := buffer.(*Buffer)
	return ok && buf != nil && buf.released
}
