// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

// OpType is an enum of all operations that can be supported by a Backend.Builder.
type OpType int

const (
	OpTypeInvalid OpType = iota
	OpTypeBrightness
	OpTypeContrast
	OpTypeExternalSource
)

