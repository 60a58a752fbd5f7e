package tensors

import (
	"testing"

	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfo(t *testing.T) {
	info := NewImageInfo(dtypes.Uint8, 4, 16, 8, 3)
	assert.Equal(t, 4, info.BatchSize())
	assert.Equal(t, 16, info.Height())
	assert.Equal(t, 8, info.Width())
	assert.Equal(t, 3, info.Channels())

	nchw := NewInfo(shapes.Make(dtypes.Float32, 2, 3, 10, 20), NCHW, MemTypeDevice).WithROIType(ROIXYWH)
	assert.Equal(t, 10, nchw.Height())
	assert.Equal(t, 20, nchw.Width())
	assert.Equal(t, 3, nchw.Channels())
	assert.Equal(t, ROIXYWH, nchw.ROIType())
	assert.Equal(t, "(Float32)[2 3 10 20]{layout=NCHW, roi=XYWH, mem=device}", nchw.String())

	require.Panics(t, func() { NewInfo(shapes.Make(dtypes.Float32, 2, 3), NHWC, MemTypeHost) })
	require.Panics(t, func() { NewInfo(shapes.Scalar(dtypes.Float32), LayoutNone, MemTypeHost) })

	layout, err := LayoutString("nchw")
	require.NoError(t, err)
	assert.Equal(t, NCHW, layout)
	layout, err = LayoutString("NONE")
	require.NoError(t, err)
	assert.Equal(t, LayoutNone, layout)
	_, err = LayoutString("HWC")
	require.Error(t, err)
	roiType, err := ROITypeString("xywh")
	require.NoError(t, err)
	assert.Equal(t, ROIXYWH, roiType)
	memType, err := MemTypeString("Device")
	require.NoError(t, err)
	assert.Equal(t, MemTypeDevice, memType)
	assert.Equal(t, "host", MemTypeHost.String())
	assert.Equal(t, "Layout(9)", Layout(9).String())

	var decoded Layout
	require.NoError(t, decoded.UnmarshalText([]byte("nfchw")))
	assert.Equal(t, NFCHW, decoded)
	text, err := decoded.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "NFCHW", string(text))
	require.Error(t, decoded.UnmarshalText([]byte("NCWH")))
}

func TestTensorParams(t *testing.T) {
	f := params.NewFactory(0)
	tensor := New("alpha", NewInfo(shapes.Make(dtypes.Float32, 4, 1), LayoutNone, MemTypeHost))
	assert.Equal(t, NoParam, tensor.ParamKind())
	_, ok := tensor.FloatParam()
	assert.False(t, ok)

	tensor.SetFloatParam(params.NewUniform[float32](f, 0, 1))
	p, ok := tensor.FloatParam()
	require.True(t, ok)
	assert.Equal(t, params.UniformRand, p.Kind())
	_, ok = tensor.IntParam()
	assert.False(t, ok)

	tensor.SetIntParam(params.NewSingleValue[int32](f, 3))
	assert.Equal(t, IntParam, tensor.ParamKind())
	_, ok = tensor.FloatParam()
	assert.False(t, ok)

	assert.False(t, tensor.Info().IsExternalSource())
	tensor.SetExternalSource(true)
	assert.True(t, tensor.Info().IsExternalSource())
	assert.False(t, tensor.IsAllocated())
}
