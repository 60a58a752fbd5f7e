// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package params implements the random parameters that drive the per-sample values of augmentations.
//
// A Parameter is a tagged variant: its Kind tells whether it is a UniformRand (uniform over a range), a
// SingleValue (a constant) or a CustomRand (a discrete distribution over given values with given frequencies).
// Updates for a kind different from the parameter's kind fail with ErrInvalidParameterType and leave the
// parameter untouched.
//
// Parameters are created by a Factory, which holds the seed of a pipeline run: every parameter draws from its
// own random stream derived from the factory seed and the order of creation, so a pipeline built in the same
// order with the same seed generates the same values.
package params

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Number constrains the element types a Parameter can generate.
type Number interface {
	int32 | uint32 | int64 | float32 | float64
}

//go:generate go tool enumer -type=Kind -output=gen_kind_enumer.go params.go

// Kind of the Parameter's generator.
type Kind int

const (
	UniformRand Kind = iota
	SingleValue
	CustomRand
)

var (
	// ErrInvalidParameterType is returned when updating a parameter with the values of a different Kind.
	ErrInvalidParameterType = errors.New("invalid parameter type")

	// ErrUpdateFailed is returned when the values of an update are not valid for the parameter.
	ErrUpdateFailed = errors.New("update parameter failed")
)

// Parameter generates values of type T. See package documentation.
//
// It is not safe for concurrent use.
type Parameter[T Number] struct {
	factory   *Factory
	id        uint64
	kind      Kind
	destroyed bool

	src     *rand.PCG
	rng     *rand.Rand
	current T

	// Only the field matching kind is set.
	uniform *uniformRand[T]
	single  *singleValue[T]
	custom  *customRand[T]
}

type uniformRand[T Number] struct {
	start, end T
}

type singleValue[T Number] struct {
	value T
}

type customRand[T Number] struct {
	values      []T
	frequencies []float64
	dist        distuv.Categorical
}

// isFloat returns whether T is a floating point type.
func isFloat[T Number]() bool {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return true
	}
	return false
}

func newParameter[T Number](f *Factory, kind Kind) *Parameter[T] {
	if f == nil {
		exceptions.Panicf("params: cannot create a %s parameter with a nil Factory", kind)
	}
	id, src := f.newStream()
	return &Parameter[T]{
		factory: f,
		id:      id,
		kind:    kind,
		src:     src,
		rng:     rand.New(src),
	}
}

// NewUniform creates a UniformRand parameter over the range [start, end]. Integer ranges include end.
//
// It panics if start > end.
func NewUniform[T Number](f *Factory, start, end T) *Parameter[T] {
	if start > end {
		exceptions.Panicf("params.NewUniform(%v, %v): start must be <= end", start, end)
	}
	p := newParameter[T](f, UniformRand)
	p.uniform = &uniformRand[T]{start: start, end: end}
	p.Renew()
	return p
}

// NewSingleValue creates a SingleValue parameter that always generates value.
func NewSingleValue[T Number](f *Factory, value T) *Parameter[T] {
	p := newParameter[T](f, SingleValue)
	p.single = &singleValue[T]{value: value}
	p.current = value
	return p
}

// NewCustom creates a CustomRand parameter that generates values[i] with probability proportional
// to frequencies[i].
//
// It returns an error if the values and frequencies are not valid (see UpdateCustom).
func NewCustom[T Number](f *Factory, values []T, frequencies []float64) (*Parameter[T], error) {
	custom, err := newCustomRand(values, frequencies, nil)
	if err != nil {
		return nil, err
	}
	p := newParameter[T](f, CustomRand)
	custom.dist = distuv.NewCategorical(custom.frequencies, p.src)
	p.custom = custom
	p.Renew()
	return p, nil
}

func newCustomRand[T Number](values []T, frequencies []float64, src rand.Source) (*customRand[T], error) {
	if len(values) == 0 {
		return nil, errors.Wrap(ErrUpdateFailed, "custom random parameter requires at least one value")
	}
	if len(values) != len(frequencies) {
		return nil, errors.Wrapf(ErrUpdateFailed, "custom random parameter got %d values but %d frequencies",
			len(values), len(frequencies))
	}
	var total float64
	for ii, freq := range frequencies {
		if freq < 0 {
			return nil, errors.Wrapf(ErrUpdateFailed, "custom random parameter frequency #%d is negative (%g)", ii, freq)
		}
		total += freq
	}
	if total <= 0 {
		return nil, errors.Wrap(ErrUpdateFailed, "custom random parameter frequencies sum to 0")
	}
	c := &customRand[T]{
		values:      append([]T(nil), values...),
		frequencies: append([]float64(nil), frequencies...),
	}
	if src != nil {
		c.dist = distuv.NewCategorical(c.frequencies, src)
	}
	return c, nil
}

// Kind of the parameter.
func (p *Parameter[T]) Kind() Kind { return p.kind }

// ID is the creation index of the parameter within its Factory.
func (p *Parameter[T]) ID() uint64 { return p.id }

// Valid returns whether the parameter is not nil and was not destroyed.
func (p *Parameter[T]) Valid() bool { return p != nil && !p.destroyed }

func (p *Parameter[T]) assertValid() {
	if p == nil {
		exceptions.Panicf("params: using a nil Parameter")
	}
	if p.destroyed {
		exceptions.Panicf("params: using %s parameter #%d after it was destroyed", p.kind, p.id)
	}
}

// Get returns the current value, the one generated by the last Renew.
func (p *Parameter[T]) Get() T {
	p.assertValid()
	return p.current
}

// Renew draws a new value, and returns it.
func (p *Parameter[T]) Renew() T {
	p.assertValid()
	switch p.kind {
	case UniformRand:
		start, end := p.uniform.start, p.uniform.end
		if isFloat[T]() {
			if start == end {
				p.current = start
				break
			}
			dist := distuv.Uniform{Min: float64(start), Max: float64(end), Src: p.src}
			p.current = T(dist.Rand())
		} else {
			p.current = T(int64(start) + int64(p.drawOffset(uint64(int64(end))-uint64(int64(start)))))
		}
	case SingleValue:
		p.current = p.single.value
	case CustomRand:
		p.current = p.custom.values[int(p.custom.dist.Rand())]
	}
	return p.current
}

// drawOffset draws uniformly from [0, span], including the full uint64 range.
func (p *Parameter[T]) drawOffset(span uint64) uint64 {
	if span == math.MaxUint64 {
		return p.rng.Uint64()
	}
	return p.rng.Uint64N(span + 1)
}

// Sample returns n freshly renewed values: the batch materialization of the parameter.
func (p *Parameter[T]) Sample(n int) []T {
	values := make([]T, n)
	for ii := range values {
		values[ii] = p.Renew()
	}
	return values
}

// Default returns the default value of the parameter: the middle of the range for UniformRand,
// the value for SingleValue, and the first value for CustomRand.
func (p *Parameter[T]) Default() T {
	p.assertValid()
	switch p.kind {
	case UniformRand:
		start, end := p.uniform.start, p.uniform.end
		if isFloat[T]() {
			return start/2 + end/2
		}
		s, e := int64(start), int64(end)
		return T(s/2 + e/2 + (s%2+e%2)/2)
	case SingleValue:
		return p.single.value
	default:
		return p.custom.values[0]
	}
}

// Range returns the range of a UniformRand parameter.
func (p *Parameter[T]) Range() (start, end T, err error) {
	p.assertValid()
	if p.kind != UniformRand {
		err = errors.Wrapf(ErrInvalidParameterType, "Range() called on a %s parameter", p.kind)
		return
	}
	return p.uniform.start, p.uniform.end, nil
}

// UpdateUniform changes the range of a UniformRand parameter and renews its current value.
func (p *Parameter[T]) UpdateUniform(start, end T) error {
	p.assertValid()
	if p.kind != UniformRand {
		return errors.Wrapf(ErrInvalidParameterType, "UpdateUniform(%v, %v) called on a %s parameter", start, end, p.kind)
	}
	if start > end {
		return errors.Wrapf(ErrUpdateFailed, "UpdateUniform(%v, %v): start must be <= end", start, end)
	}
	p.uniform.start, p.uniform.end = start, end
	p.Renew()
	return nil
}

// UpdateValue changes the value of a SingleValue parameter.
func (p *Parameter[T]) UpdateValue(value T) error {
	p.assertValid()
	if p.kind != SingleValue {
		return errors.Wrapf(ErrInvalidParameterType, "UpdateValue(%v) called on a %s parameter", value, p.kind)
	}
	p.single.value = value
	p.current = value
	return nil
}

// UpdateCustom changes the values and frequencies of a CustomRand parameter and renews its current value.
// On error the parameter is left unchanged.
func (p *Parameter[T]) UpdateCustom(values []T, frequencies []float64) error {
	p.assertValid()
	if p.kind != CustomRand {
		return errors.Wrapf(ErrInvalidParameterType, "UpdateCustom() called on a %s parameter", p.kind)
	}
	custom, err := newCustomRand(values, frequencies, p.src)
	if err != nil {
		return err
	}
	p.custom = custom
	p.Renew()
	return nil
}

// Destroy releases the parameter from its Factory. Using it afterwards panics.
// It is idempotent.
func (p *Parameter[T]) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.destroyed = true
	p.factory.release()
}

// String implements fmt.Stringer.
func (p *Parameter[T]) String() string {
	if p == nil {
		return "<nil>"
	}
	switch p.kind {
	case UniformRand:
		return fmt.Sprintf("UniformRand[%v, %v]", p.uniform.start, p.uniform.end)
	case SingleValue:
		return fmt.Sprintf("SingleValue(%v)", p.single.value)
	default:
		return fmt.Sprintf("CustomRand(values=%v, frequencies=%v)", p.custom.values, p.custom.frequencies)
	}
}
