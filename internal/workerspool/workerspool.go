// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs the per-sample work of augmentation kernels in parallel, within a soft limit
// of goroutines shared by all the kernels of a backend.
package workerspool

import (
	"runtime"
	"sync"
)

// Pool limits the number of goroutines running kernel work.
type Pool struct {
	mu sync.Mutex

	// maxParallelism: 0 runs everything in the caller's goroutine, negative values don't limit it.
	maxParallelism int
	numRunning     int
}

// New returns a Pool with parallelism runtime.NumCPU().
func New() *Pool {
	return &Pool{maxParallelism: runtime.NumCPU()}
}

// MaxParallelism returns the soft limit of goroutines. See SetMaxParallelism.
func (w *Pool) MaxParallelism() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxParallelism
}

// SetMaxParallelism sets the soft limit of goroutines: 0 disables parallelism, and -1 makes it unlimited.
//
// Tasks already running are not affected.
func (w *Pool) SetMaxParallelism(maxParallelism int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.maxParallelism = maxParallelism
}

// tryStart runs task in a new goroutine if the limit allows it, and returns whether it did.
func (w *Pool) tryStart(task func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.maxParallelism == 0 || (w.maxParallelism > 0 && w.numRunning >= w.maxParallelism) {
		return false
	}
	w.numRunning++
	go func() {
		defer func() {
			w.mu.Lock()
			w.numRunning--
			w.mu.Unlock()
		}()
		task()
	}()
	return true
}

// ParallelFor calls fn(sample) for every sample in [0, numSamples), and returns when all calls finished.
//
// Samples that can't get a goroutine of their own run in the caller's goroutine, so ParallelFor can be
// called from within another ParallelFor.
func (w *Pool) ParallelFor(numSamples int, fn func(sample int)) {
	if numSamples <= 0 {
		return
	}
	if numSamples == 1 || w.MaxParallelism() == 0 {
		for sample := range numSamples {
			fn(sample)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(numSamples)
	for sample := range numSamples {
		task := func() {
			defer wg.Done()
			fn(sample)
		}
		if !w.tryStart(task) {
			task()
		}
	}
	wg.Wait()
}
