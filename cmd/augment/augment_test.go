package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
pipeline "bright" {
  batch_size = 2

  input "images" {
    dtype    = "uint8"
    height   = 4
    width    = 4
    channels = 3
  }

  augmentation "brightness" "out" {
    input  = "images"
    values = { alpha = 1, beta = var.beta }
  }
}
`

func writeTestImages(t *testing.T, dir string, n int) {
	for ii := range n {
		img := imaging.New(8, 8, color.NRGBA{R: uint8(10 * ii), G: 100, B: 200, A: 255})
		require.NoError(t, imaging.Save(img, filepath.Join(dir, "img"+string(rune('a'+ii))+".png")))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644))
}

// testShape of a batch of 2 images of 2x2 RGB pixels.
func testShape(layout tensors.Layout) shapes.Shape {
	switch layout {
	case tensors.NHWC:
		return shapes.Make(dtypes.Uint8, 2, 2, 2, 3)
	case tensors.NCHW:
		return shapes.Make(dtypes.Uint8, 2, 3, 2, 2)
	}
	return shapes.Make(dtypes.Uint8, 2, 12)
}

func TestImageLayout(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	for _, layout := range []tensors.Layout{tensors.NHWC, tensors.NCHW} {
		info := tensors.NewInfo(testShape(layout), layout, tensors.MemTypeHost)
		l, err := newImageLayout(info)
		require.NoError(t, err)
		flat := make([]float32, 2*l.sampleSize())
		l.encode(img, 1, flat)
		assert.Equal(t, float32(2), flat[l.index(1, 0, 1, 1)])
		decoded := l.decode(flat, 1)
		assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, decoded.NRGBAAt(1, 0))
		assert.Equal(t, color.NRGBA{A: 255}, l.decode(flat, 0).NRGBAAt(1, 0))
	}

	_, err := newImageLayout(tensors.NewInfo(testShape(tensors.LayoutNone), tensors.LayoutNone, tensors.MemTypeHost))
	require.Error(t, err)
}

func TestFlatConversions(t *testing.T) {
	flat, err := toFlat([]float32{-3, 2.6, 300}, dtypes.Uint8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 3, 255}, flat)
	assert.Equal(t, []float32{0, 3, 255}, fromFlat(flat))
	_, err = toFlat([]float32{1}, dtypes.Bool)
	require.Error(t, err)
	_, err = newFlat(dtypes.Bool, 1)
	require.Error(t, err)
}

func TestLoadImages(t *testing.T) {
	dir := t.TempDir()
	writeTestImages(t, dir, 3)
	paths, err := imageFiles(dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	images, err := loadImages(context.Background(), paths, 4, 2)
	require.NoError(t, err)
	for _, img := range images {
		assert.Equal(t, image.Pt(4, 2), img.Bounds().Size())
	}
	_, err = imageFiles(t.TempDir())
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "bright.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o644))
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(imagesDir, 0o755))
	writeTestImages(t, imagesDir, 3)
	outDir := filepath.Join(dir, "out")

	root := newRootCommand()
	root.SetArgs([]string{"run", "--config", configPath, "--set", "beta=5",
		"--images", imagesDir, "--out", outDir, "--batches", "2"})
	require.NoError(t, root.Execute())

	saved, err := imageFiles(outDir)
	require.NoError(t, err)
	require.Len(t, saved, 4)
	img := must.M1(imaging.Open(filepath.Join(outDir, "out_000001.png")))
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{15, 105, 205}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestInspect(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bright.hcl")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o644))
	opts := &options{config: configPath, vars: []string{"beta=1"}}
	var buf bytes.Buffer
	require.NoError(t, opts.inspect(&buf))
	for _, want := range []string{"Variables", "beta", "Brightness", "images", "brightness (output)", "Outputs: out"} {
		assert.Contains(t, buf.String(), want)
	}

	opts = &options{config: configPath}
	require.Error(t, opts.inspect(&buf), "missing variable beta")
}

func TestNewBackend(t *testing.T) {
	backend, err := (&options{backend: "simplego"}).newBackend()
	require.NoError(t, err)
	backend.Finalize()

	_, err = (&options{backend: "tpu:fast"}).newBackend()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registered backends are [simplego]")
}

func TestSampleEnumNames(t *testing.T) {
	opts := &sampleOptions{kind: "CONSTANT", dtype: "Int", value: 2.6, num: 2}
	values, err := opts.sample()
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3}, values)
}

func TestSample(t *testing.T) {
	opts := &sampleOptions{kind: "uniform", dtype: "int", valueRange: []float64{1, 3}, num: 1000, seed: 7}
	values, err := opts.sample()
	require.NoError(t, err)
	stats := newSampleStats(values)
	assert.Equal(t, 1000, stats.count)
	assert.Equal(t, 3, stats.distinct)
	assert.Equal(t, 1.0, stats.min)
	assert.Equal(t, 3.0, stats.max)

	again, err := opts.sample()
	require.NoError(t, err)
	assert.Equal(t, values, again, "same seed should sample the same values")

	opts = &sampleOptions{kind: "custom", dtype: "float", values: []float64{0.5, 2}, frequencies: []float64{0, 1}, num: 10}
	values, err = opts.sample()
	require.NoError(t, err)
	assert.Equal(t, newSampleStats(values).min, 2.0)

	opts = &sampleOptions{kind: "constant", dtype: "float", value: 1.5, num: 3}
	assert.Equal(t, []float64{1.5, 1.5, 1.5}, must.M1(opts.sample()))

	for _, bad := range []*sampleOptions{
		{kind: "uniform", dtype: "float", valueRange: []float64{2, 1}, num: 1},
		{kind: "uniform", dtype: "float", valueRange: []float64{1}, num: 1},
		{kind: "custom", dtype: "int", values: []float64{1}, frequencies: []float64{1, 2}, num: 1},
		{kind: "gaussian", dtype: "float", num: 1},
		{kind: "constant", dtype: "double", num: 1},
		{kind: "constant", dtype: "float", num: 0},
	} {
		_, err = bad.sample()
		require.Error(t, err, "kind=%s dtype=%s", bad.kind, bad.dtype)
	}

	var buf bytes.Buffer
	printStats(&buf, "uniform", newSampleStats([]float64{1, 2, 3}))
	assert.Contains(t, buf.String(), "Median")
	histPath := filepath.Join(t.TempDir(), "hist.png")
	require.NoError(t, writeHistogram(histPath, "uniform", []float64{1, 2, 2, 3}, 3))
	assert.FileExists(t, histPath)
}
