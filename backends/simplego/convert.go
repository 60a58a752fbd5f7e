// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplego

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// flatReader returns the element i of a flat slice converted to float64.
type flatReader func(i int) float64

// flatWriter writes v to the element i of a flat slice, rounding and saturating for integer types.
type flatWriter func(i int, v float64)

type numeric interface {
	constraints.Integer | constraints.Float
}

func readNumeric[T numeric](flat []T) flatReader {
	return func(i int) float64 { return float64(flat[i]) }
}

func writeFloat[T constraints.Float](flat []T) flatWriter {
	return func(i int, v float64) { flat[i] = T(v) }
}

// writeInteger rounds to the nearest integer and clamps to [lo, hi].
func writeInteger[T constraints.Integer](flat []T, lo, hi float64) flatWriter {
	return func(i int, v float64) {
		if math.IsNaN(v) {
			flat[i] = 0
			return
		}
		flat[i] = T(math.Min(math.Max(math.Round(v), lo), hi))
	}
}

// newReader for any of the supported flat slices.
func newReader(flat any) flatReader {
	switch f := flat.(type) {
	case []uint8:
		return readNumeric(f)
	case []int8:
		return readNumeric(f)
	case []int32:
		return readNumeric(f)
	case []int64:
		return readNumeric(f)
	case []float32:
		return readNumeric(f)
	case []float64:
		return readNumeric(f)
	case []float16.Float16:
		return func(i int) float64 { return float64(f[i].Float32()) }
	}
	exceptions.Panicf("simplego: flat values of type %T not supported", flat)
	return nil
}

// newWriter for any of the supported flat slices.
func newWriter(flat any) flatWriter {
	switch f := flat.(type) {
	case []uint8:
		return writeInteger(f, 0, math.MaxUint8)
	case []int8:
		return writeInteger(f, math.MinInt8, math.MaxInt8)
	case []int32:
		return writeInteger(f, math.MinInt32, math.MaxInt32)
	case []int64:
		return writeInteger(f, math.MinInt64, math.MaxInt64)
	case []float32:
		return writeFloat(f)
	case []float64:
		return writeFloat(f)
	case []float16.Float16:
		return func(i int, v float64) { f[i] = float16.Fromfloat32(float32(v)) }
	}
	exceptions.Panicf("simplego: flat values of type %T not supported", flat)
	return nil
}

// isSupportedFlat returns whether newReader and newWriter accept the flat slice.
func isSupportedFlat(flat any) bool {
	switch flat.(type) {
	case []uint8, []int8, []int32, []int64, []float32, []float64, []float16.Float16:
		return true
	}
	return false
}

// flatLen returns the length of any of the supported flat slices.
func flatLen(flat any) int {
	switch f := flat.(type) {
	case []uint8:
		return len(f)
	case []int8:
		return len(f)
	case []int32:
		return len(f)
	case []int64:
		return len(f)
	case []float32:
		return len(f)
	case []float64:
		return len(f)
	case []float16.Float16:
		return len(f)
	}
	return -1
}
