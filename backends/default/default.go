// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package _default registers the backends shipped with augment, currently only the pure Go "simplego".
//
// Programs that select their backend with backends.New or backends.NewWithConfig should include:
//
//	import _ "github.com/gomlx/augment/backends/default"
package _default

import (
	_ "github.com/gomlx/augment/backends/simplego"
)
