// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simplego implements a simple, and not very fast, but very portable backend for augment.
//
// Buffers live in host memory, and kernels run per sample in parallel using a pool of goroutines.
// It supports images of dtypes Uint8, Int8, Int32, Float16, Float32 and Float64, in the NHWC, NCHW, NFHWC
// and NFCHW layouts, with LTRB or XYWH regions of interest.
//
// It also offers fault injection (InjectFailure) and call accounting (NumCalls, NumAllocations, NumReleases,
// WasReleased), used to test the code driving the backend.
package simplego

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/internal/workerspool"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// BackendName to be used in AUGMENT_BACKEND to specify this backend.
const BackendName = "simplego"

// Registers New() as the constructor for the "simplego" backend.
func init() {
	backends.Register(BackendName, New)
}

// New constructs a new SimpleGo Backend.
//
// The config is a comma-separated list of options. The only option currently is "parallelism=<n>", the soft
// limit of goroutines used to execute kernels: 0 disables parallelism and -1 makes it unlimited.
func New(config string) backends.Backend {
	b := newBackend()
	for _, option := range strings.Split(config, ",") {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		key, value, _ := strings.Cut(option, "=")
		switch key {
		case "parallelism":
			n, err := strconv.Atoi(value)
			if err != nil {
				exceptions.Panicf("backend %q: invalid parallelism in config %q: %v", BackendName, config, err)
			}
			b.workers.SetMaxParallelism(n)
		default:
			exceptions.Panicf("backend %q: unknown option %q in config %q", BackendName, key, config)
		}
	}
	klog.V(1).Infof("backend %q created with parallelism %d", BackendName, b.workers.MaxParallelism())
	return b
}

func newBackend() *Backend {
	return &Backend{
		workers: workerspool.New(),
		sources: make(map[string]*externalSource),
		faults:  newFaults(),
	}
}

// Backend implements the backends.Backend interface.
type Backend struct {
	// flatPools are a map to pools of flat slices that can be reused.
	// The underlying type is map[flatPoolKey]*sync.Pool.
	flatPools sync.Map

	workers *workerspool.Pool

	mu        sync.Mutex
	finalized bool
	// sources of external data, indexed by path.
	sources map[string]*externalSource

	faults *faults
}

// Compile-time check that simplego.Backend implements backends.Backend.
var _ backends.Backend = &Backend{}

// Name returns the short name of the backend.
func (b *Backend) Name() string {
	return BackendName
}

// String implements fmt.Stringer.
func (b *Backend) String() string { return BackendName }

// Description is a longer description of the Backend that can be used to pretty-print.
func (b *Backend) Description() string {
	return "Simple Go Portable Backend"
}

// Builder creates a new builder used to define a new named augmentation graph.
func (b *Backend) Builder(name string) backends.Builder {
	return &Builder{
		backend: b,
		name:    name,
	}
}

// Finalize releases all the associated resources immediately, and makes the backend invalid.
func (b *Backend) Finalize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finalized = true
	clear(b.sources)
}

// SetMaxParallelism changes the soft limit of goroutines used by kernels. See New.
func (b *Backend) SetMaxParallelism(n int) {
	b.workers.SetMaxParallelism(n)
}
