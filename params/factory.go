// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package params

import (
	"math/rand/v2"
	"sync"
)

// Factory creates parameters and holds the seed of a pipeline run.
//
// The seed should be set once, before the pipeline is built: it affects only parameters created afterwards.
// A Factory is safe for concurrent use, but the parameters it creates are not.
type Factory struct {
	mu      sync.Mutex
	seed    uint64
	streams uint64
	numLive int
}

// NewFactory returns a Factory seeded with seed.
func NewFactory(seed uint64) *Factory {
	return &Factory{seed: seed}
}

// Seed returns the current seed.
func (f *Factory) Seed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seed
}

// SetSeed changes the seed used by parameters created from now on, and restarts the count of random streams,
// so that parameters created after SetSeed are reproducible.
func (f *Factory) SetSeed(seed uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seed = seed
	f.streams = 0
}

// NumLive returns the number of parameters created and not yet destroyed.
func (f *Factory) NumLive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numLive
}

// newStream returns the id and the random source for a new parameter.
func (f *Factory) newStream() (uint64, *rand.PCG) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.streams
	f.streams++
	f.numLive++
	return id, rand.NewPCG(f.seed, id)
}

func (f *Factory) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.numLive--
}
