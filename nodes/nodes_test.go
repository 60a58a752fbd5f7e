package nodes

import (
	"testing"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/backends/simplego"
	"github.com/gomlx/augment/binding"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	*Env
	backend *simplego.Backend
}

func newTestEnv(t *testing.T) *testEnv {
	backend := simplego.New("").(*simplego.Backend)
	t.Cleanup(backend.Finalize)
	return &testEnv{
		Env: &Env{
			Data:    backend,
			Builder: backend.Builder(t.Name()),
			Factory: params.NewFactory(11),
		},
		backend: backend,
	}
}

// allocate creates the device buffers of a tensor, initialized with flat if not nil.
func (e *testEnv) allocate(t *testing.T, name string, info tensors.Info, flat any) *tensors.Tensor {
	tensor := tensors.New(name, info)
	handle, err := e.backend.NewTensor(info.Shape(), flat)
	require.NoError(t, err)
	roi, err := e.backend.NewTensor(shapes.Make(dtypes.Int32, info.BatchSize(), 4), nil)
	require.NoError(t, err)
	tensor.SetHandles(handle, roi)
	return tensor
}

func (e *testEnv) readFloats(t *testing.T, handle backends.Buffer) []float32 {
	shape := must.M1(e.backend.BufferShape(handle))
	flat := make([]float32, shape.Size())
	require.NoError(t, e.backend.BufferToFlatData(handle, flat))
	return flat
}

func assertInRange(t *testing.T, values []float32, start, end float32) {
	for _, v := range values {
		assert.Truef(t, v >= start && v <= end, "value %g not in [%g, %g]", v, start, end)
	}
}

func TestBrightnessDefaultRanges(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 4, 2, 2, 1)
	input := env.allocate(t, "input", info, nil)
	output := env.allocate(t, "output", info, nil)
	node := NewBrightness(env.Factory, input, output)
	assert.Equal(t, Constructed, node.State())
	assert.Equal(t, []string{"alpha", "beta"}, node.ParamNames())

	require.NoError(t, node.CreateNode(env.Env))
	assert.Equal(t, Built, node.State())
	alpha := env.readFloats(t, node.Alpha().Handle())
	beta := env.readFloats(t, node.Beta().Handle())
	require.Len(t, alpha, 4)
	require.Len(t, beta, 4)
	assertInRange(t, alpha, BrightnessAlphaStart, BrightnessAlphaEnd)
	assertInRange(t, beta, BrightnessBetaStart, BrightnessBetaEnd)

	// Idempotent.
	require.NoError(t, node.CreateNode(env.Env))
	assert.Equal(t, 1, env.backend.NumCalls(simplego.OpBrightness))

	require.NoError(t, node.UpdateNode())
	assert.Equal(t, Refreshed, node.State())
	newAlpha := env.readFloats(t, node.Alpha().Handle())
	newBeta := env.readFloats(t, node.Beta().Handle())
	assertInRange(t, newAlpha, BrightnessAlphaStart, BrightnessAlphaEnd)
	assertInRange(t, newBeta, BrightnessBetaStart, BrightnessBetaEnd)
	assert.NotEqual(t, alpha, newAlpha)
	assert.NotEqual(t, beta, newBeta)

	require.NoError(t, node.Release())
	require.NoError(t, node.Release())
	assert.Equal(t, 4, env.backend.NumLiveBuffers(), "only the input and output tensors (and their ROIs) are left")
	assert.Equal(t, 0, env.Factory.NumLive())
}

func TestBrightnessExternalAlpha(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 4, 2, 2, 1)
	input := env.allocate(t, "input", info, nil)
	output := env.allocate(t, "output", info, nil)
	alphaTensor := env.allocate(t, "alpha", tensors.NewInfo(shapes.Make(dtypes.Float32, 4), tensors.LayoutNone, tensors.MemTypeHost),
		[]float32{1, 2, 3, 4})
	alphaTensor.SetExternalSource(true)

	node := NewBrightness(env.Factory, input, output)
	require.NoError(t, node.InitTensors(alphaTensor, nil))
	assert.Equal(t, Configured, node.State())
	assert.Equal(t, binding.External, node.Alpha().Mode())

	allocations := env.backend.NumAllocations()
	require.NoError(t, node.CreateNode(env.Env))
	// Beta tensor plus the 2 layouts and the ROI type scalars: nothing for alpha.
	assert.Equal(t, allocations+4, env.backend.NumAllocations())
	assert.Equal(t, alphaTensor.Handle(), node.Alpha().Handle())
	assert.Equal(t, alphaTensor.Handle(), must.M1(env.Builder.NodeParameter(node.GraphNode(), 3)))

	copies := env.backend.NumCalls(simplego.OpCopyTensorPatch)
	for range 3 {
		require.NoError(t, node.UpdateNode())
	}
	assert.Equal(t, copies+3, env.backend.NumCalls(simplego.OpCopyTensorPatch), "only beta is refreshed")
	assert.Equal(t, []float32{1, 2, 3, 4}, env.readFloats(t, alphaTensor.Handle()))

	require.NoError(t, node.Release())
	assert.False(t, env.backend.WasReleased(alphaTensor.Handle()))
}

func TestBrightnessExecute(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 2, 1, 2, 1)
	input := env.allocate(t, "input", info, []float32{1, 2, 3, 4})
	output := env.allocate(t, "output", info, nil)
	node := NewBrightness(env.Factory, input, output)
	require.NoError(t, node.InitValues(2, 1))
	assert.Error(t, node.InitValues(1), "wrong number of values")
	require.NoError(t, node.CreateNode(env.Env))
	assert.Error(t, node.InitValues(1, 1), "can't change parameters once created")
	require.NoError(t, env.Builder.Verify())
	for range 2 {
		require.NoError(t, node.UpdateNode())
		require.NoError(t, env.Builder.Execute())
		assert.Equal(t, []float32{3, 5, 7, 9}, env.readFloats(t, output.Handle()))
	}
}

func TestContrastExecute(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Uint8, 1, 1, 3, 1)
	input := env.allocate(t, "input", info, []uint8{0, 100, 200})
	output := env.allocate(t, "output", info, nil)
	node := NewContrast(env.Factory, input, output)
	assert.Equal(t, []string{"factor", "center"}, node.ParamNames())
	require.NoError(t, node.InitValues(2, 100))
	require.NoError(t, node.CreateNode(env.Env))
	require.NoError(t, env.Builder.Verify())
	require.NoError(t, env.Builder.Execute())
	got := make([]uint8, 3)
	require.NoError(t, env.backend.BufferToFlatData(output.Handle(), got))
	assert.Equal(t, []uint8{0, 100, 255}, got)
	assertInRange(t, []float32{node.Factor().Get()}, 2, 2)
	assertInRange(t, []float32{node.Center().Default()}, 100, 100)
}

func TestInitTensorsSharedParam(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 2, 1, 1, 1)
	input := env.allocate(t, "input", info, nil)
	output := env.allocate(t, "output", info, nil)
	factorTensor := tensors.New("factor", tensors.NewInfo(shapes.Make(dtypes.Float32, 2, 1), tensors.LayoutNone, tensors.MemTypeHost))
	shared := params.NewUniform[float32](env.Factory, 1, 1.5)
	factorTensor.SetFloatParam(shared)
	intTensor := tensors.New("center", tensors.NewInfo(shapes.Make(dtypes.Int32, 2, 1), tensors.LayoutNone, tensors.MemTypeHost))
	intTensor.SetIntParam(params.NewUniform[int32](env.Factory, 0, 1))

	node := NewContrast(env.Factory, input, output)
	assert.Error(t, node.InitTensors(factorTensor, intTensor))
	node = NewContrast(env.Factory, input, output)
	require.NoError(t, node.InitTensors(factorTensor, nil))
	assert.Same(t, shared, node.Factor().Param())
	require.NoError(t, node.CreateNode(env.Env))
	assertInRange(t, env.readFloats(t, node.Factor().Handle()), 1, 1.5)
	require.NoError(t, node.Release())
	assert.True(t, shared.Valid())
}

func TestCreateNodeFailures(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 2, 1, 1, 1)
	input := env.allocate(t, "input", info, nil)
	unallocated := tensors.New("output", info)
	node := NewBrightness(env.Factory, input, unallocated)
	assert.Error(t, node.CreateNode(env.Env))
	assert.Equal(t, Constructed, node.State())

	output := env.allocate(t, "output", info, nil)
	node = NewBrightness(env.Factory, input, output)
	env.backend.InjectFailure(simplego.OpBrightness, backends.StatusInvalidNode)
	err := node.CreateNode(env.Env)
	require.Error(t, err)
	assert.Equal(t, backends.StatusInvalidNode, backends.StatusOf(err))
	assert.Error(t, node.UpdateNode())
	require.NoError(t, node.Release())

	env.backend.ClearFailures()
	env.backend.InjectFailure(simplego.OpNewTensor, backends.StatusNoMemory)
	node = NewBrightness(env.Factory, input, output)
	err = node.CreateNode(env.Env)
	assert.Equal(t, backends.StatusNoMemory, backends.StatusOf(err))
}

func TestCreateNodeRetries(t *testing.T) {
	env := newTestEnv(t)
	info := tensors.NewImageInfo(dtypes.Float32, 2, 1, 1, 1)
	input := env.allocate(t, "input", info, nil)
	output := env.allocate(t, "output", info, nil)
	node := NewBrightness(env.Factory, input, output)
	env.backend.InjectFailure(simplego.OpBrightness, backends.StatusInvalidNode)
	require.Error(t, node.CreateNode(env.Env))
	live := env.backend.NumLiveBuffers()
	for range 3 {
		require.Error(t, node.CreateNode(env.Env))
	}
	assert.Equal(t, live, env.backend.NumLiveBuffers(), "failed creations must not accumulate staged scalars")

	env.backend.ClearFailures()
	require.NoError(t, node.CreateNode(env.Env))
	assert.Equal(t, live+3, env.backend.NumLiveBuffers(), "layouts and ROI type scalars")
	require.NoError(t, node.Release())
	assert.Equal(t, 4, env.backend.NumLiveBuffers())

	source := NewExternalSource(input, output)
	require.NoError(t, source.InitWithSource("camera-0", "frames", dtypes.Float32))
	env.backend.InjectFailure(simplego.OpExternalSource, backends.StatusInvalidNode)
	for range 3 {
		require.Error(t, source.CreateNode(env.Env))
	}
	assert.Equal(t, 4, env.backend.NumLiveBuffers(), "path, source id and layouts are released on failure")
	require.NoError(t, source.Release())
}

func TestExternalSource(t *testing.T) {
	env := newTestEnv(t)
	output := env.allocate(t, "images", tensors.NewImageInfo(dtypes.Uint8, 2, 1, 2, 1), nil)
	node := NewExternalSource(nil, output)
	assert.True(t, output.Info().IsExternalSource())
	assert.Error(t, node.CreateNode(env.Env), "CreateNode before Init")
	assert.Error(t, node.Init("", dtypes.Uint8))
	require.NoError(t, node.Init("external_source/images", dtypes.Uint8))
	assert.Equal(t, "external_source/images", node.Path())
	require.NoError(t, node.CreateNode(env.Env))
	require.NoError(t, node.CreateNode(env.Env))
	assert.Equal(t, 1, env.backend.NumCalls(simplego.OpExternalSource))

	pathArray := must.M1(env.Builder.NodeParameter(node.GraphNode(), 3))
	assert.Equal(t, []int{len("external_source/images")}, must.M1(env.backend.BufferShape(pathArray)).Dimensions)

	require.NoError(t, env.Builder.Verify())
	require.NoError(t, env.backend.FeedExternalSource("external_source/images", []uint8{1, 2, 3, 4}))
	require.NoError(t, node.UpdateNode())
	require.NoError(t, env.Builder.Execute())
	got := make([]uint8, 4)
	require.NoError(t, env.backend.BufferToFlatData(output.Handle(), got))
	assert.Equal(t, []uint8{1, 2, 3, 4}, got)

	require.NoError(t, node.Release())
	assert.True(t, env.backend.WasReleased(pathArray))
}

func TestExternalSourceWithID(t *testing.T) {
	env := newTestEnv(t)
	input := env.allocate(t, "input", tensors.NewImageInfo(dtypes.Float32, 1, 1, 1, 3), nil)
	output := env.allocate(t, "output", tensors.NewImageInfo(dtypes.Float32, 1, 1, 1, 3), nil)
	node := NewExternalSource(input, output)
	require.NoError(t, node.InitWithSource("camera-0", "frames", dtypes.Float32))
	assert.Equal(t, "camera-0", node.SourceID())
	require.NoError(t, node.CreateNode(env.Env))
	sourceID := must.M1(env.Builder.NodeParameter(node.GraphNode(), 3))
	assert.Equal(t, []int{len("camera-0")}, must.M1(env.backend.BufferShape(sourceID)).Dimensions)
	require.NoError(t, env.Builder.Verify())
	require.NoError(t, env.backend.FeedExternalSource("frames", []float64{0.5, 1.5, 2.5}))
	require.NoError(t, env.Builder.Execute())
	assert.Equal(t, []float32{0.5, 1.5, 2.5}, env.readFloats(t, output.Handle()))
}
