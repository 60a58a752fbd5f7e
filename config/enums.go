// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package config

//go:generate go tool enumer -type=ParameterKind -trimprefix=Kind -transform=lower -text -output=gen_parameterkind_enumer.go enums.go

// ParameterKind is the generator of a parameter block, given by its "kind" attribute.
type ParameterKind int

const (
	KindUniform ParameterKind = iota
	KindConstant
	KindCustom
)

//go:generate go tool enumer -type=ParameterDType -trimprefix=DType -transform=lower -text -output=gen_parameterdtype_enumer.go enums.go

// ParameterDType is the type of values of a parameter block, given by its "dtype" attribute.
type ParameterDType int

const (
	DTypeFloat ParameterDType = iota
	DTypeInt
)
