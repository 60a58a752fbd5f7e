// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"io"

	"github.com/pkg/errors"
)

// Feeder provides the values of an external source, one batch at a time.
type Feeder interface {
	// Next returns a flat slice (of any type supported by the backend) with exactly size values: the contents
	// of the external source output for the next batch.
	//
	// It returns io.EOF (possibly wrapped) when there is no more data.
	Next(size int) (flat any, err error)
}

// SourceFunc adapts a function returning count values to the Feeder interface.
type SourceFunc[T any] func(count int) []T

// Next implements Feeder. It fails if the function returns fewer values than requested, and drops the extra
// values if it returns more.
func (f SourceFunc[T]) Next(size int) (any, error) {
	values := f(size)
	if len(values) < size {
		return nil, errors.Errorf("source returned %d values, %d required", len(values), size)
	}
	return values[:size], nil
}

// SliceFeeder feeds batches taken in order from a fixed slice of values, and returns io.EOF when exhausted.
type SliceFeeder[T any] struct {
	values []T
	pos    int
}

// NewSliceFeeder creates a SliceFeeder over values.
func NewSliceFeeder[T any](values []T) *SliceFeeder[T] {
	return &SliceFeeder[T]{values: values}
}

// Next implements Feeder.
func (f *SliceFeeder[T]) Next(size int) (any, error) {
	if f.pos+size > len(f.values) {
		return nil, errors.Wrapf(io.EOF, "slice feeder has %d values left, %d required", len(f.values)-f.pos, size)
	}
	batch := f.values[f.pos : f.pos+size]
	f.pos += size
	return batch, nil
}
