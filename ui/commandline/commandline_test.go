package commandline

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gomlx/augment/backends/simplego"
	"github.com/gomlx/augment/nodes"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestParseSettings(t *testing.T) {
	settingsFile := filepath.Join(t.TempDir(), "settings.txt")
	require.NoError(t, os.WriteFile(settingsFile, []byte("# comment\nalpha=1.5;beta=2\n\n  gamma=\"x\"\n"), 0o644))

	defs, err := ParseSettings("seed=3; file:" + settingsFile + ";;last=true")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed=3", "alpha=1.5", "beta=2", `gamma="x"`, "last=true"}, defs)

	_, err = ParseSettings("seed")
	require.Error(t, err)
	_, err = ParseSettings("=3")
	require.Error(t, err)
	_, err = ParseSettings("file:" + filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestSprintSettings(t *testing.T) {
	got := SprintSettings(map[string]cty.Value{
		"seed": cty.NumberIntVal(3),
		"name": cty.StringVal("x"),
		"flag": cty.True,
	})
	assert.Equal(t, "\t\"flag\": (bool) true\n\t\"name\": (string) x\n\t\"seed\": (number) 3", got)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.23ms", FormatDuration(1234567*time.Nanosecond))
	assert.Equal(t, "2.00s", FormatDuration(2*time.Second))
	assert.Equal(t, "1.50m", FormatDuration(90*time.Second))
	assert.Equal(t, "12ns", FormatDuration(12))
}

func captureOutput(t *testing.T) *bytes.Buffer {
	buf := &bytes.Buffer{}
	previous := Output
	Output = buf
	t.Cleanup(func() { Output = previous })
	return buf
}

func TestRunBatches(t *testing.T) {
	buf := captureOutput(t)
	var batches []int
	err := RunBatches(3, 8, func(batch int) error {
		batches = append(batches, batch)
		return nil
	}, func() (string, string) { return "Extra", "42" })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, batches)
	assert.Contains(t, buf.String(), "Median batch duration")
	assert.Contains(t, buf.String(), "Extra")

	err = RunBatches(3, 8, func(batch int) error {
		if batch == 1 {
			return errors.New("boom")
		}
		return nil
	})
	require.ErrorContains(t, err, "boom")
	require.Error(t, RunBatches(0, 8, func(int) error { return nil }))
}

func TestSprintPipeline(t *testing.T) {
	backend := simplego.New("")
	defer backend.Finalize()
	p, err := pipeline.New(backend, pipeline.Config{Name: "summary", BatchSize: 2})
	require.NoError(t, err)
	info := tensors.NewImageInfo(dtypes.Uint8, 2, 4, 4, 3)
	input, err := p.CreateInput("images", info)
	require.NoError(t, err)
	output, err := p.CreateTensor("bright", info)
	require.NoError(t, err)
	require.NoError(t, p.Add(nodes.NewBrightness(p.Factory(), input, output)))

	got := SprintPipeline(p)
	for _, want := range []string{"summary", "Brightness#0", "images", "bright", "NHWC", "96 B"} {
		assert.Contains(t, got, want)
	}
	require.NoError(t, p.Release())
}
