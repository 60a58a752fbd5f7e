package binding

import (
	"testing"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/backends/simplego"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *simplego.Backend {
	b := simplego.New("").(*simplego.Backend)
	t.Cleanup(b.Finalize)
	return b
}

func readFloats(t *testing.T, b *simplego.Backend, handle backends.Buffer) []float32 {
	shape, err := b.BufferShape(handle)
	require.NoError(t, err)
	flat := make([]float32, shape.Size())
	require.NoError(t, b.BufferToFlatData(handle, flat))
	return flat
}

func TestCreateArrayAndTensor(t *testing.T) {
	backend := newBackend(t)
	factory := params.NewFactory(42)
	for batchSize := 1; batchSize <= 8; batchSize++ {
		arrayBinding := New[float32](factory, 0.1, 1.95)
		require.NoError(t, arrayBinding.CreateArray(backend, batchSize))
		assert.Equal(t, Array, arrayBinding.Mode())
		values := readFloats(t, backend, arrayBinding.Handle())
		require.Len(t, values, batchSize)
		assert.Equal(t, arrayBinding.Staged(), values)
		for _, v := range values {
			assert.True(t, v >= 0.1 && v <= 1.95, "value %g out of range", v)
		}

		tensorBinding := New[float32](factory, 0, 25)
		require.NoError(t, tensorBinding.CreateTensorForBatch(backend, batchSize))
		assert.Equal(t, Tensor, tensorBinding.Mode())
		assert.Equal(t, batchSize, tensorBinding.BatchSize())
		values = readFloats(t, backend, tensorBinding.DefaultTensor().Handle())
		require.Len(t, values, batchSize)
		for _, v := range values {
			assert.True(t, v >= 0 && v <= 25, "value %g out of range", v)
		}

		require.NoError(t, arrayBinding.Release())
		require.NoError(t, tensorBinding.Release())
	}
	assert.Equal(t, 0, backend.NumLiveBuffers())
	assert.Equal(t, 0, factory.NumLive())
}

func TestCreateTensorShape(t *testing.T) {
	backend := newBackend(t)
	factory := params.NewFactory(0)
	b := New[float32](factory, 1, 2)
	require.Error(t, b.CreateTensor(backend, shapes.Make(dtypes.Int32, 4, 1)))
	require.NoError(t, b.CreateTensor(backend, shapes.Make(dtypes.Float32, 4, 1)))
	assert.Equal(t, 4, b.BatchSize())
	assert.Len(t, b.Staged(), 4)
	assert.Equal(t, []int{4, 1}, b.Shape().Dimensions)

	// At most once.
	require.Error(t, b.CreateTensorForBatch(backend, 4))
	require.Error(t, b.CreateArray(backend, 4))
}

func TestUpdateResamples(t *testing.T) {
	backend := newBackend(t)
	b := New[float32](params.NewFactory(7), 0, 100)
	require.NoError(t, b.CreateTensorForBatch(backend, 4))
	seen := make(map[float32]bool)
	for range 101 {
		require.NoError(t, b.Update())
		staged := b.Staged()
		assert.Equal(t, staged, readFloats(t, backend, b.Handle()))
		seen[staged[0]] = true
	}
	assert.Greater(t, len(seen), 1)

	arrayBinding := New[int32](params.NewFactory(7), 0, 1000)
	require.NoError(t, arrayBinding.CreateArray(backend, 3))
	before := arrayBinding.Staged()
	require.NoError(t, arrayBinding.UpdateArray())
	require.NoError(t, arrayBinding.UpdateArray())
	assert.NotEqual(t, before, arrayBinding.Staged())
	assert.Error(t, arrayBinding.UpdateTensor())
}

func TestSetValue(t *testing.T) {
	backend := newBackend(t)
	factory := params.NewFactory(1)
	b := New[float32](factory, 0, 1)
	require.NoError(t, b.SetValue(0.75))
	assert.Equal(t, params.SingleValue, b.Param().Kind())
	assert.Equal(t, 1, factory.NumLive(), "the prior generator must be destroyed")
	require.NoError(t, b.CreateTensorForBatch(backend, 5))
	for range 10 {
		require.NoError(t, b.Update())
		assert.Equal(t, []float32{0.75, 0.75, 0.75, 0.75, 0.75}, b.Staged())
	}
	assert.Equal(t, float32(0.75), b.Get())
	assert.Equal(t, float32(0.75), b.Default())
}

func TestSetParamShared(t *testing.T) {
	factory := params.NewFactory(1)
	shared := params.NewUniform[float32](factory, 10, 20)
	b := New[float32](factory, 0, 1)
	require.NoError(t, b.SetParam(nil))
	assert.Equal(t, params.UniformRand, b.Param().Kind())
	assert.True(t, b.OwnsParam())

	require.NoError(t, b.SetParam(shared))
	assert.Same(t, shared, b.Param())
	assert.False(t, b.OwnsParam())
	assert.Equal(t, 1, factory.NumLive())
	require.NoError(t, b.Release())
	assert.True(t, shared.Valid(), "shared generators are not destroyed by the binding")
	require.NoError(t, b.Release())
}

func TestExternal(t *testing.T) {
	backend := newBackend(t)
	factory := params.NewFactory(3)
	external := must.M1(backend.NewTensor(shapes.Make(dtypes.Float32, 4), []float32{1, 2, 3, 4}))

	b := New[float32](factory, 0, 1)
	require.NoError(t, b.CreateTensorForBatch(backend, 4))
	owned := b.Handle()
	require.NoError(t, b.SetTensor(external))
	assert.Equal(t, External, b.Mode())
	assert.True(t, backend.WasReleased(owned), "switching to External releases the owned tensor")
	assert.Nil(t, b.Param())
	assert.Equal(t, 0, factory.NumLive())
	assert.Equal(t, external, b.DefaultTensor().Handle())

	copies := backend.NumCalls(simplego.OpCopyTensorPatch)
	for range 3 {
		require.NoError(t, b.Update())
		require.NoError(t, b.UpdateTensor())
		require.NoError(t, b.UpdateArray())
	}
	assert.Equal(t, copies, backend.NumCalls(simplego.OpCopyTensorPatch))
	assert.Equal(t, []float32{1, 2, 3, 4}, readFloats(t, backend, external))

	// Externally sourced bindings can't be materialized or given a generator.
	assert.Error(t, b.CreateTensorForBatch(backend, 4))
	assert.Error(t, b.SetValue(1))
	assert.Equal(t, float32(0), b.Renew())

	require.NoError(t, b.Release())
	assert.False(t, backend.WasReleased(external))
	assert.Equal(t, []float32{1, 2, 3, 4}, readFloats(t, backend, external))
}

func TestExternalNil(t *testing.T) {
	b := New[float32](params.NewFactory(3), 0, 1)
	require.NoError(t, b.SetTensor(nil))
	assert.Equal(t, External, b.Mode())
	assert.True(t, b.Degraded())
	assert.Nil(t, b.Handle())
	require.NoError(t, b.Update())
	require.NoError(t, b.Release())
}

func TestScalar(t *testing.T) {
	backend := newBackend(t)
	b := New[float32](params.NewFactory(5), 0, 100)
	scalar, err := b.DefaultScalar(backend)
	require.NoError(t, err)
	assert.Equal(t, Scalar, b.Mode())

	// Update before the scalar is resolved from the node fails.
	require.Error(t, b.Update())

	builder := backend.Builder("scalar")
	nhwc := must.M1(backend.NewScalar(dtypes.Int32, int32(tensors.NHWC)))
	ltrb := must.M1(backend.NewScalar(dtypes.Int32, int32(tensors.ROILTRB)))
	images := must.M1(backend.NewTensor(shapes.Make(dtypes.Float32, 1, 1, 1, 1), nil))
	zero := must.M1(backend.NewScalar(dtypes.Float32, float32(0)))
	node := builder.Brightness(images, nil, images, scalar, zero, nhwc, nhwc, ltrb)
	require.Equal(t, backends.StatusSuccess, builder.NodeStatus(node))
	require.NoError(t, b.ResolveScalar(backend, builder, node, 3))
	assert.Equal(t, b.Param().Get(), b.Get())

	for range 5 {
		require.NoError(t, b.Update())
		assert.Equal(t, b.Get(), must.M1(backend.ReadScalar(scalar)))
	}

	// Write failures are tolerated: the device keeps the previous value.
	backend.InjectFailure(simplego.OpWriteScalar, backends.StatusFailure)
	before := b.Get()
	require.NoError(t, b.Update())
	assert.Equal(t, before, b.Get())
	backend.ClearFailures()

	// Resolving to an argument of a different type fails.
	assert.Error(t, b.ResolveScalar(backend, builder, node, 5))

	require.NoError(t, b.Release())
	assert.True(t, backend.WasReleased(scalar))
}

func TestDeviceFailures(t *testing.T) {
	backend := newBackend(t)
	b := New[float32](params.NewFactory(5), 0, 1)
	backend.InjectFailure(simplego.OpAddArrayItems, backends.StatusNoMemory)
	err := b.CreateArray(backend, 4)
	require.Error(t, err)
	assert.Equal(t, backends.StatusNoMemory, backends.StatusOf(err))
	assert.Equal(t, Unmaterialized, b.Mode())
	assert.Equal(t, 0, backend.NumLiveBuffers(), "array allocated before the failure must be released")
	backend.ClearFailures()

	require.NoError(t, b.CreateTensorForBatch(backend, 4))
	backend.InjectFailure(simplego.OpCopyTensorPatch, backends.StatusInvalidReference)
	err = b.Update()
	require.Error(t, err)
	assert.Equal(t, backends.StatusInvalidReference, backends.StatusOf(err))
}
