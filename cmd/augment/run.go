// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/augment/config"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/augment/ui/commandline"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

type runOptions struct {
	*options
	images  string
	out     string
	input   string
	format  string
	batches int
}

func newRunCommand(opts *options) *cobra.Command {
	runOpts := &runOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline over a directory of images, optionally saving the augmented images",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpts.run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&runOpts.images, "images", "", "Directory with the images to feed the pipeline input.")
	flags.StringVar(&runOpts.out, "out", "", "Directory where to save the outputs of the pipeline. If empty, outputs are not saved.")
	flags.StringVar(&runOpts.input, "input", "", "Name of the input fed with the images. Required if the pipeline has more than one input.")
	flags.StringVar(&runOpts.format, "format", "png", "Image format of the saved outputs, e.g. \"png\" or \"jpg\".")
	flags.IntVar(&runOpts.batches, "batches", 1, "Number of batches to run. Images are reused in order if there are not enough.")
	_ = cmd.MarkFlagRequired("images")
	return cmd
}

// batchRunner feeds the images to the input of an instance, and saves its outputs.
type batchRunner struct {
	ctx      context.Context
	inst     *config.Instance
	input    string
	layout   imageLayout
	dtype    dtypes.DType
	images   []*image.NRGBA
	out      string
	format   string
	numSaved int
}

func (r *runOptions) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, _, err := r.loadPipeline()
	if err != nil {
		return err
	}
	backend, err := r.newBackend()
	if err != nil {
		return err
	}
	defer backend.Finalize()
	inst, err := config.Instantiate(backend, cfg, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := inst.Release(); err != nil {
			klog.Errorf("releasing pipeline: %+v", err)
		}
	}()

	inputName, input, err := selectInput(inst, r.input)
	if err != nil {
		return err
	}
	layout, err := newImageLayout(input.Info())
	if err != nil {
		return errors.WithMessagef(err, "input %q", inputName)
	}
	paths, err := imageFiles(r.images)
	if err != nil {
		return err
	}
	images, err := loadImages(ctx, paths, layout.width, layout.height)
	if err != nil {
		return err
	}
	klog.V(1).Infof("loaded %d images from %q", len(images), r.images)
	if r.out != "" {
		if err = os.MkdirAll(r.out, 0o755); err != nil {
			return errors.Wrapf(err, "creating output directory")
		}
	}

	runner := &batchRunner{
		ctx:    ctx,
		inst:   inst,
		input:  inputName,
		layout: layout,
		dtype:  input.Info().DType(),
		images: images,
		out:    r.out,
		format: r.format,
	}
	err = commandline.RunBatches(r.batches, cfg.BatchSize, runner.runBatch, func() (string, string) {
		return "Images saved", humanize.Comma(int64(runner.numSaved))
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Pipeline %q", cfg.Name)))
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("Images loaded", humanize.Comma(int64(len(images))))
	table.Row("Batches", humanize.Comma(int64(r.batches)))
	table.Row("Samples", humanize.Comma(int64(r.batches*cfg.BatchSize)))
	table.Row("Images saved", humanize.Comma(int64(runner.numSaved)))
	if r.out != "" {
		table.Row("Output directory", r.out)
	}
	fmt.Println(table.Render())
	return nil
}

// selectInput returns the input with the given name or, if name is empty, the only input of the pipeline.
func selectInput(inst *config.Instance, name string) (string, *tensors.Tensor, error) {
	if name != "" {
		input, found := inst.Inputs.Get(name)
		if !found {
			return "", nil, errors.Errorf("pipeline %q has no input %q", inst.Config.Name, name)
		}
		return name, input, nil
	}
	if inst.Inputs.Len() != 1 {
		return "", nil, errors.Errorf("pipeline %q has %d inputs, select one with --input", inst.Config.Name, inst.Inputs.Len())
	}
	pair := inst.Inputs.Oldest()
	return pair.Key, pair.Value, nil
}

func (r *batchRunner) runBatch(batch int) error {
	batchSize := r.inst.Config.BatchSize
	values := make([]float32, batchSize*r.layout.sampleSize())
	for sample := range batchSize {
		img := r.images[(batch*batchSize+sample)%len(r.images)]
		r.layout.encode(img, sample, values)
	}
	flat, err := toFlat(values, r.dtype)
	if err != nil {
		return err
	}
	if err = r.inst.SetInput(r.input, flat, nil); err != nil {
		return err
	}
	if err = r.inst.Run(); err != nil {
		return err
	}
	for pair := r.inst.Outputs.Oldest(); pair != nil; pair = pair.Next() {
		if err = r.saveOutput(batch, pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}

// saveOutput reads the output and saves each sample as an image. Outputs that are not images are only read.
func (r *batchRunner) saveOutput(batch int, name string, output *tensors.Tensor) error {
	info := output.Info()
	flat, err := newFlat(info.DType(), info.Shape().Size())
	if err != nil {
		return errors.WithMessagef(err, "output %q", name)
	}
	if err = r.inst.ReadOutput(name, flat); err != nil {
		return err
	}
	if r.out == "" {
		return nil
	}
	layout, err := newImageLayout(info)
	if err != nil {
		klog.V(1).Infof("output %q is not saved: %v", name, err)
		return nil
	}
	values := fromFlat(flat)
	batchSize := info.BatchSize()
	images := make([]*image.NRGBA, batchSize)
	paths := make([]string, batchSize)
	for sample := range batchSize {
		images[sample] = layout.decode(values, sample)
		paths[sample] = filepath.Join(r.out, fmt.Sprintf("%s_%06d.%s", name, batch*batchSize+sample, r.format))
	}
	if err = saveImages(r.ctx, images, paths); err != nil {
		return err
	}
	r.numSaved += batchSize
	return nil
}
