package pipeline

import (
	"io"
	"testing"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/backends/simplego"
	"github.com/gomlx/augment/nodes"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, batchSize int, seed uint64) (*Pipeline, *simplego.Backend) {
	backend := simplego.New("").(*simplego.Backend)
	t.Cleanup(backend.Finalize)
	p, err := New(backend, Config{Name: t.Name(), BatchSize: batchSize, Seed: seed})
	require.NoError(t, err)
	return p, backend
}

func TestNew(t *testing.T) {
	backend := simplego.New("")
	_, err := New(backend, Config{BatchSize: 0})
	require.Error(t, err)
	p, err := New(backend, Config{BatchSize: 2, Seed: 3})
	require.NoError(t, err)
	assert.Contains(t, p.Name(), "pipeline-")
	assert.Equal(t, uint64(3), p.Factory().Seed())
}

func TestRunBrightness(t *testing.T) {
	p, backend := newTestPipeline(t, 2, 0)
	input, err := p.CreateInput("images", tensors.NewImageInfo(dtypes.Uint8, 2, 1, 2, 1))
	require.NoError(t, err)
	_, err = p.CreateInput("wrong", tensors.NewImageInfo(dtypes.Uint8, 3, 1, 2, 1))
	require.Error(t, err)
	output, err := p.CreateTensor("output", tensors.NewImageInfo(dtypes.Float32, 2, 1, 2, 1))
	require.NoError(t, err)
	_, err = p.CreateTensor("output", tensors.NewImageInfo(dtypes.Float32, 2, 1, 2, 1))
	require.Error(t, err, "duplicate name")
	assert.Same(t, output, p.Tensor("output"))

	brightness := nodes.NewBrightness(p.Factory(), input, output)
	require.NoError(t, brightness.InitValues(1, 10))
	require.NoError(t, p.Add(brightness))
	assert.Equal(t, "Brightness#0", brightness.Name())

	// ROI restricted to the first pixel of sample 1.
	require.NoError(t, p.SetInput(input, []uint8{1, 2, 3, 4}, []int32{0, 0, 2, 1, 0, 0, 1, 1}))
	require.NoError(t, p.Run())
	assert.True(t, p.IsBuilt())
	assert.Equal(t, 1, p.BatchCount())
	got := make([]float32, 4)
	require.NoError(t, p.ReadOutput(output, got))
	assert.Equal(t, []float32{11, 12, 13, 4}, got)

	require.Error(t, p.Add(nodes.NewBrightness(p.Factory(), input, output)), "can't add nodes after Build")

	require.NoError(t, p.Release())
	require.NoError(t, p.Release())
	assert.Equal(t, 0, backend.NumLiveBuffers())
	assert.Error(t, p.Run())
}

func TestExternalSources(t *testing.T) {
	const batchSize = 2
	p, backend := newTestPipeline(t, batchSize, 0)
	imageInfo := tensors.NewImageInfo(dtypes.Float32, batchSize, 1, 2, 1)
	var calls int
	images, err := p.ExternalSource(nil, imageInfo, SourceFunc[float32](func(count int) []float32 {
		calls++
		values := make([]float32, count)
		for ii := range values {
			values[ii] = float32(ii + 1)
		}
		return values
	}))
	require.NoError(t, err)
	assert.True(t, images.Info().IsExternalSource())

	alphaInfo := tensors.NewInfo(shapes.Make(dtypes.Float32, batchSize), tensors.LayoutNone, tensors.MemTypeHost)
	alpha, err := p.ExternalSourceWithPath(nil, alphaInfo, NewSliceFeeder([]float32{1, 2, 3, 4}), "alpha")
	require.NoError(t, err)

	beta, err := p.CreateTensor("beta", tensors.NewInfo(shapes.Make(dtypes.Float32, batchSize, 1), tensors.LayoutNone, tensors.MemTypeHost))
	require.NoError(t, err)
	beta.SetFloatParam(params.NewSingleValue[float32](p.Factory(), 0.5))

	output, err := p.CreateTensor("output", imageInfo)
	require.NoError(t, err)
	brightness := nodes.NewBrightness(p.Factory(), images, output)
	require.NoError(t, brightness.InitTensors(alpha, beta))
	require.NoError(t, p.Add(brightness))

	got := make([]float32, 4)
	require.NoError(t, p.Run())
	require.NoError(t, p.ReadOutput(output, got))
	assert.Equal(t, []float32{1.5, 2.5, 6.5, 8.5}, got)
	require.NoError(t, p.Run())
	require.NoError(t, p.ReadOutput(output, got))
	assert.Equal(t, []float32{3.5, 6.5, 12.5, 16.5}, got)
	assert.Equal(t, 2, calls)

	err = p.Run()
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, 2, p.BatchCount())

	require.NoError(t, p.Release())
	assert.Equal(t, 0, backend.NumLiveBuffers())
}

func TestSourceFuncShort(t *testing.T) {
	p, _ := newTestPipeline(t, 2, 0)
	_, err := p.ExternalSource(nil, tensors.NewImageInfo(dtypes.Uint8, 2, 1, 1, 1),
		SourceFunc[uint8](func(count int) []uint8 { return []uint8{1} }))
	require.NoError(t, err)
	require.Error(t, p.Run())
	_, err = p.ExternalSource(nil, tensors.NewImageInfo(dtypes.Uint8, 2, 1, 1, 1), nil)
	require.Error(t, err)
}

// brightnessParams runs one batch, and returns the alpha values used.
func brightnessParams(t *testing.T, seed uint64) []float32 {
	p, _ := newTestPipeline(t, 4, seed)
	info := tensors.NewImageInfo(dtypes.Float32, 4, 1, 1, 1)
	input, err := p.CreateInput("", info)
	require.NoError(t, err)
	output, err := p.CreateTensor("", info)
	require.NoError(t, err)
	brightness := nodes.NewBrightness(p.Factory(), input, output)
	require.NoError(t, p.Add(brightness))
	require.NoError(t, p.Run())
	alpha := brightness.Alpha().Staged()
	require.NoError(t, p.Release())
	return alpha
}

func TestSeedReproducible(t *testing.T) {
	assert.Equal(t, brightnessParams(t, 17), brightnessParams(t, 17))
	assert.NotEqual(t, brightnessParams(t, 17), brightnessParams(t, 18))
}

func TestBuildFailure(t *testing.T) {
	p, backend := newTestPipeline(t, 1, 0)
	info := tensors.NewImageInfo(dtypes.Float32, 1, 1, 1, 1)
	input, err := p.CreateInput("", info)
	require.NoError(t, err)
	output, err := p.CreateTensor("", info)
	require.NoError(t, err)
	require.NoError(t, p.Add(nodes.NewContrast(p.Factory(), input, output)))
	backend.InjectFailure(simplego.OpContrast, backends.StatusInvalidGraph)
	err = p.Build()
	require.Error(t, err)
	assert.Equal(t, backends.StatusInvalidGraph, backends.StatusOf(err))
	assert.False(t, p.IsBuilt())
	require.NoError(t, p.Release())
	assert.Equal(t, 0, backend.NumLiveBuffers())
}
