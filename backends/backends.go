// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface an accelerator runtime needs to implement to run augmentation graphs.
//
// A Backend offers two sets of primitives:
//
//   - DataInterface: device memory -- arrays, tensors and scalars -- and host<->device copies.
//   - Builder: creation of the augmentation graph nodes, and execution of the graph once per batch.
//
// Every primitive can fail, and failures are reported as a *StatusError carrying the numeric Status of the
// runtime. See package github.com/gomlx/augment/backends/simplego for a pure Go implementation.
package backends

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// Backend is the API that needs to be implemented by an augmentation backend.
type Backend interface {
	// Name returns the short name of the backend. E.g.: "simplego".
	Name() string

	// Description is a longer description of the Backend that can be used to pretty-print.
	Description() string

	// Builder creates a new builder used to define a new named augmentation graph.
	Builder(name string) Builder

	// DataInterface is the sub-interface that defines the API to create and transfer device buffers.
	DataInterface

	// FeedExternalSource stages the flat values (a slice of any supported Go type) for the external source
	// node registered with the given path. The values are converted to the node's dtype and written to its
	// output during the next execution.
	FeedExternalSource(path string, flat any) error

	// Finalize releases all the associated resources immediately, and makes the backend invalid.
	Finalize()
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) Backend

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a default constructor that takes as input a configuration string that is
// passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// List the names of the registered backends, sorted.
func List() []string {
	return slices.Sorted(maps.Keys(registeredConstructors))
}

// DefaultConfig is the name of the default backend configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// AUGMENT_BACKEND is the environment variable with the default backend configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
const AUGMENT_BACKEND = "AUGMENT_BACKEND"

// New returns a new default Backend.
//
// The default is:
//
// 1. The environment AUGMENT_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
//
// It panics if no backend was registered.
func New() Backend {
	config, found := os.LookupEnv(AUGMENT_BACKEND)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig takes a configuration string formatted as "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "simplego") and
// "<backend_configuration>" is backend specific. If there is no ":", the whole string is taken as the
// backend name, and an empty string selects the first registered backend.
func NewWithConfig(config string) Backend {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered backends for augment -- maybe import the default one with import _ "github.com/gomlx/augment/backends/simplego"?`)
	}
	backendName := firstRegistered
	var backendConfig string
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	} else if config != "" {
		backendName = config
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		exceptions.Panicf("can't find backend %q for configuration %q given", backendName, config)
	}
	return constructor(backendConfig)
}
