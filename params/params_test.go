package params

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform(t *testing.T) {
	f := NewFactory(42)
	p := NewUniform[float32](f, 0.5, 1.5)
	require.Equal(t, UniformRand, p.Kind())
	assert.Equal(t, float32(1.0), p.Default())

	distinct := make(map[float32]bool)
	for range 200 {
		v := p.Renew()
		require.GreaterOrEqual(t, v, float32(0.5))
		require.LessOrEqual(t, v, float32(1.5))
		require.Equal(t, v, p.Get())
		distinct[v] = true
	}
	assert.Greater(t, len(distinct), 1, "uniform parameter generated a constant sequence")

	ints := NewUniform[int32](f, 0, 10)
	seen := make(map[int32]bool)
	for _, v := range ints.Sample(1000) {
		require.GreaterOrEqual(t, v, int32(0))
		require.LessOrEqual(t, v, int32(10))
		seen[v] = true
	}
	assert.Len(t, seen, 11, "inclusive integer range should generate every value")
	assert.Equal(t, int32(5), ints.Default())

	require.Panics(t, func() { NewUniform[int32](f, 3, 1) })
}

func TestUniformWideIntRanges(t *testing.T) {
	f := NewFactory(3)
	full := NewUniform[int64](f, math.MinInt64, math.MaxInt64)
	var negative, positive bool
	require.NotPanics(t, func() {
		for _, v := range full.Sample(100) {
			negative = negative || v < 0
			positive = positive || v > 0
		}
	})
	assert.True(t, negative && positive, "full int64 range should generate values of both signs")
	assert.InDelta(t, 0, float64(full.Default()), 1)

	top := NewUniform[int64](f, math.MaxInt64-2, math.MaxInt64)
	seen := make(map[int64]bool)
	for _, v := range top.Sample(300) {
		require.GreaterOrEqual(t, v, int64(math.MaxInt64-2))
		seen[v] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, int64(math.MaxInt64-1), top.Default())

	full32 := NewUniform[int32](f, math.MinInt32, math.MaxInt32)
	assert.InDelta(t, 0, float64(full32.Default()), 1)
	require.NotPanics(t, func() { full32.Sample(10) })

	fullU32 := NewUniform[uint32](f, 0, math.MaxUint32)
	assert.Equal(t, uint32(math.MaxUint32/2), fullU32.Default())
	require.NotPanics(t, func() { fullU32.Sample(10) })

	huge := NewUniform[float64](f, -math.MaxFloat64, math.MaxFloat64)
	assert.Equal(t, 0.0, huge.Default())
}

func TestSingleValue(t *testing.T) {
	f := NewFactory(0)
	p := NewSingleValue[float32](f, 0.25)
	for _, v := range p.Sample(10) {
		require.Equal(t, float32(0.25), v)
	}
	require.NoError(t, p.UpdateValue(3))
	assert.Equal(t, float32(3), p.Renew())
	assert.Equal(t, float32(3), p.Default())
}

func TestCustom(t *testing.T) {
	f := NewFactory(7)
	p, err := NewCustom[int32](f, []int32{1, 9}, []float64{0, 1})
	require.NoError(t, err)
	for _, v := range p.Sample(50) {
		require.Equal(t, int32(9), v)
	}
	assert.Equal(t, int32(1), p.Default())

	_, err = NewCustom[int32](f, []int32{1, 2}, []float64{1})
	require.ErrorIs(t, err, ErrUpdateFailed)
	_, err = NewCustom[int32](f, []int32{1}, []float64{0})
	require.ErrorIs(t, err, ErrUpdateFailed)

	// Failed update leaves the parameter untouched.
	require.ErrorIs(t, p.UpdateCustom([]int32{4}, []float64{-1}), ErrUpdateFailed)
	assert.Equal(t, int32(9), p.Renew())
	require.NoError(t, p.UpdateCustom([]int32{4}, []float64{2}))
	assert.Equal(t, int32(4), p.Renew())
}


func TestKindMismatch(t *testing.T) {
	f := NewFactory(1)
	uniform := NewUniform[int32](f, 0, 10)
	err := uniform.UpdateValue(3)
	require.True(t, errors.Is(err, ErrInvalidParameterType))
	err = uniform.UpdateCustom([]int32{1}, []float64{1})
	require.ErrorIs(t, err, ErrInvalidParameterType)
	start, end, err := uniform.Range()
	require.NoError(t, err)
	assert.Equal(t, int32(0), start)
	assert.Equal(t, int32(10), end)

	single := NewSingleValue[int32](f, 2)
	require.ErrorIs(t, single.UpdateUniform(0, 1), ErrInvalidParameterType)
	assert.Equal(t, int32(2), single.Get())
	require.ErrorIs(t, uniform.UpdateUniform(5, 1), ErrUpdateFailed)
	start, end, _ = uniform.Range()
	assert.Equal(t, [2]int32{0, 10}, [2]int32{start, end})
}

func TestFactorySeed(t *testing.T) {
	f := NewFactory(11)
	a := NewUniform[float64](f, 0, 1).Sample(20)
	f.SetSeed(11)
	b := NewUniform[float64](f, 0, 1).Sample(20)
	assert.Equal(t, a, b, "same seed and creation order should reproduce the values")

	f.SetSeed(12)
	c := NewUniform[float64](f, 0, 1).Sample(20)
	assert.NotEqual(t, a, c)
	assert.Equal(t, uint64(12), f.Seed())
}

func TestDestroy(t *testing.T) {
	f := NewFactory(3)
	p := NewUniform[float32](f, 0, 1)
	q := NewSingleValue[float32](f, 1)
	require.Equal(t, 2, f.NumLive())
	p.Destroy()
	p.Destroy()
	assert.Equal(t, 1, f.NumLive())
	assert.False(t, p.Valid())
	assert.True(t, q.Valid())
	assert.Panics(t, func() { p.Renew() })
}
