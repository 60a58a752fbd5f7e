package config

import (
	"strings"
	"testing"

	"github.com/gomlx/augment/backends/simplego"
	"github.com/gomlx/augment/nodes"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/augment/types/tensors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const demoFile = `
pipeline "demo" {
  batch_size = 2
  seed       = var.seed

  input "images" {
    dtype    = "float32"
    height   = 1
    width    = 2
    channels = 1
  }

  external_source "gains" {
    dtype  = "float32"
    layout = "NONE"
    size   = 1
    values = [1, 2]
    repeat = true
  }

  parameter "beta" {
    kind  = "constant"
    value = 1
  }

  augmentation "brightness" "bright" {
    input  = "images"
    params = { alpha = "gains", beta = "beta" }
  }

  augmentation "contrast" "out" {
    input  = "bright"
    values = { factor = 2, center = 0 }
  }
}
`

func parseDemo(t *testing.T) *Pipeline {
	vars, err := ParseVars([]string{"seed=7"})
	require.NoError(t, err)
	file, err := Parse("demo.hcl", []byte(demoFile), vars)
	require.NoError(t, err)
	p, err := file.Pipeline("")
	require.NoError(t, err)
	return p
}

func TestParse(t *testing.T) {
	got := parseDemo(t)
	want := &Pipeline{
		Name:      "demo",
		BatchSize: 2,
		Seed:      7,
		Inputs: []*Input{{
			Name: "images",
			Spec: TensorSpec{DType: "float32", Height: 1, Width: 2, Channels: 1},
		}},
		ExternalSources: []*ExternalSource{{
			Name:   "gains",
			Values: []float64{1, 2},
			Repeat: true,
			Spec:   TensorSpec{DType: "float32", Layout: "NONE", Size: 1},
		}},
		Parameters: []*Parameter{{Name: "beta", Kind: "constant", Value: 1}},
		Augmentations: []*Augmentation{
			{Type: "brightness", Name: "bright", Input: "images", Params: map[string]string{"alpha": "gains", "beta": "beta"}},
			{Type: "contrast", Name: "out", Input: "bright", Values: map[string]float64{"factor": 2, "center": 0}},
		},
	}
	ignoreBodies := cmp.Options{
		cmpopts.IgnoreFields(Input{}, "Remain"),
		cmpopts.IgnoreFields(ExternalSource{}, "Remain"),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(want, got, ignoreBodies); diff != "" {
		t.Errorf("decoded pipeline mismatch (-want +got):\n%s", diff)
	}

	info, err := got.Inputs[0].Spec.Info(got.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 2, 1}, info.Dims())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("missing_var.hcl", []byte(demoFile), nil)
	require.Error(t, err)

	_, err = Parse("syntax.hcl", []byte(`pipeline "x" {`), nil)
	require.Error(t, err)

	_, err = Parse("missing.hcl", nil, nil)
	require.Error(t, err)

	file, err := Parse("two.hcl", []byte(`
pipeline "a" { batch_size = 1 }
pipeline "b" { batch_size = 2 }
`), nil)
	require.NoError(t, err)
	_, err = file.Pipeline("")
	require.Error(t, err)
	p, err := file.Pipeline("b")
	require.NoError(t, err)
	assert.Equal(t, 2, p.BatchSize)
	_, err = file.Pipeline("c")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	for name, body := range map[string]string{
		"batch size":     `batch_size = 0`,
		"mem type":       `mem_type = "gpu"`,
		"dtype":          `input "in" { dtype = "quaternion" }`,
		"layout":         `input "in" { layout = "HWC" }`,
		"dimensions":     `input "in" { height = 1 }`,
		"duplicate":      "input \"in\" {\n size = 1\n layout = \"NONE\"\n}\n" + `parameter "in" { kind = "constant" }`,
		"kind":           `parameter "p" { kind = "gaussian" }`,
		"uniform range":  "parameter \"p\" {\n kind = \"uniform\"\n range = [2, 1]\n}",
		"custom":         "parameter \"p\" {\n kind = \"custom\"\n values = [1, 2]\n frequencies = [1]\n}",
		"param dtype":    "parameter \"p\" {\n kind = \"constant\"\n dtype = \"double\"\n}",
		"augmentation":   `augmentation "blur" "out" { input = "in" }`,
		"forward ref":    `augmentation "brightness" "out" { input = "in" }`,
		"param ref":      "input \"in\" {\n height = 1\n width = 1\n channels = 1\n}\n" + `augmentation "brightness" "out" {` + "\n input = \"in\"\n params = { alpha = \"in\" }\n}",
		"unknown param":  "input \"in\" {\n height = 1\n width = 1\n channels = 1\n}\n" + `augmentation "brightness" "out" {` + "\n input = \"in\"\n values = { alpha = 1, beta = 1, gamma = 1 }\n}",
		"partial values": "input \"in\" {\n height = 1\n width = 1\n channels = 1\n}\n" + `augmentation "contrast" "out" {` + "\n input = \"in\"\n values = { factor = 1 }\n}",
		"output":         `outputs = ["nothing"]`,
	} {
		t.Run(name, func(t *testing.T) {
			src := "pipeline \"p\" {\n"
			if name != "batch size" {
				src += "batch_size = 1\n"
			}
			src += body + "\n}\n"
			_, err := Parse(name+".hcl", []byte(src), nil)
			require.Error(t, err)
		})
	}
}

func TestEnumAttributes(t *testing.T) {
	file, err := Parse("enums.hcl", []byte(`
pipeline "enums" {
  batch_size = 1
  mem_type   = "DEVICE"

  input "frames" {
    dtype    = "float32"
    layout   = "nchw"
    roi_type = "Xywh"
    height   = 2
    width    = 2
    channels = 3
  }

  parameter "shift" {
    kind  = "Uniform"
    dtype = "INT"
    range = [1, 4]
  }
}
`), nil)
	require.NoError(t, err)
	p, err := file.Pipeline("")
	require.NoError(t, err)
	memType, err := p.memType()
	require.NoError(t, err)
	assert.Equal(t, tensors.MemTypeDevice, memType)

	info, err := p.Inputs[0].Spec.Info(p.BatchSize)
	require.NoError(t, err)
	assert.Equal(t, tensors.NCHW, info.Layout())
	assert.Equal(t, tensors.ROIXYWH, info.ROIType())
	assert.Equal(t, []int{1, 3, 2, 2}, info.Dims())

	kind, err := p.Parameters[0].kind()
	require.NoError(t, err)
	assert.Equal(t, KindUniform, kind)
	isInt, err := p.Parameters[0].isInt()
	require.NoError(t, err)
	assert.True(t, isInt)

	isInt, err = (&Parameter{Kind: "constant"}).isInt()
	require.NoError(t, err)
	assert.False(t, isInt, "dtype defaults to float")
	_, err = (&Parameter{Kind: "constant", DType: "double"}).isInt()
	require.ErrorContains(t, err, "[float int]")
	_, err = (&Parameter{Kind: "gaussian"}).kind()
	require.ErrorContains(t, err, "[uniform constant custom]")
}

func TestParseVars(t *testing.T) {
	vars, err := ParseVars([]string{"seed=7", `name="x"`, "word=abc", "flag=true"})
	require.NoError(t, err)
	assert.Equal(t, cty.Number, vars["seed"].Type())
	assert.Equal(t, "x", vars["name"].AsString())
	assert.Equal(t, "abc", vars["word"].AsString())
	assert.True(t, vars["flag"].True())

	_, err = ParseVars([]string{"novalue"})
	require.Error(t, err)
	_, err = ParseVars([]string{"1x=2"})
	require.Error(t, err)
}

func TestInstantiate(t *testing.T) {
	config := parseDemo(t)
	backend := simplego.New("").(*simplego.Backend)
	defer backend.Finalize()

	inst, err := Instantiate(backend, config, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, inst.Outputs.Len())
	_, found := inst.Outputs.Get("out")
	assert.True(t, found)
	got := make([]float32, 4)
	for range 2 {
		require.NoError(t, inst.SetInput("images", []float32{1, 2, 3, 4}, nil))
		require.NoError(t, inst.Run())
		require.NoError(t, inst.ReadOutput("out", got))
		// alpha = [1, 2] per sample, beta = 1, then doubled.
		assert.Equal(t, []float32{4, 6, 14, 18}, got)
	}
	require.Error(t, inst.SetInput("nothing", []float32{}, nil))
	require.Error(t, inst.ReadOutput("bright", got))
	require.NoError(t, inst.Release())
	assert.Equal(t, 0, backend.NumLiveBuffers())
}

func TestInstantiateFeeders(t *testing.T) {
	config := parseDemo(t)
	backend := simplego.New("").(*simplego.Backend)
	defer backend.Finalize()

	inst, err := Instantiate(backend, config, map[string]pipeline.Feeder{
		"gains": pipeline.NewSliceFeeder([]float32{3, 3}),
	})
	require.NoError(t, err)
	require.NoError(t, inst.SetInput("images", []float32{1, 2, 3, 4}, nil))
	require.NoError(t, inst.Run())
	got := make([]float32, 4)
	require.NoError(t, inst.ReadOutput("out", got))
	assert.Equal(t, []float32{8, 14, 20, 26}, got)
	require.Error(t, inst.Run(), "feeder exhausted")
	require.NoError(t, inst.Release())
}

func TestInstantiateSourceID(t *testing.T) {
	config := parseDemo(t)
	config.ExternalSources[0].SourceID = "gains-0"
	backend := simplego.New("").(*simplego.Backend)
	defer backend.Finalize()

	inst, err := Instantiate(backend, config, nil)
	require.NoError(t, err)
	var source *nodes.ExternalSource
	for _, node := range inst.Context.Pipeline().Nodes() {
		if es, ok := node.(*nodes.ExternalSource); ok {
			source = es
		}
	}
	require.NotNil(t, source)
	assert.Equal(t, "gains-0", source.SourceID())
	assert.True(t, strings.HasPrefix(source.Path(), pipeline.ExternalSourcePrefix), "generated path %q", source.Path())

	require.NoError(t, inst.SetInput("images", []float32{1, 2, 3, 4}, nil))
	require.NoError(t, inst.Run())
	got := make([]float32, 4)
	require.NoError(t, inst.ReadOutput("out", got))
	assert.Equal(t, []float32{4, 6, 14, 18}, got)
	require.NoError(t, inst.Release())
	assert.Equal(t, 0, backend.NumLiveBuffers())
}

func TestInstantiateFailure(t *testing.T) {
	config := parseDemo(t)
	config.ExternalSources[0].Values = nil
	backend := simplego.New("").(*simplego.Backend)
	defer backend.Finalize()
	_, err := Instantiate(backend, config, nil)
	require.Error(t, err)
	assert.Equal(t, 0, backend.NumLiveBuffers())
}
