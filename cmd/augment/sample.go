// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/augment/config"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type sampleOptions struct {
	kind        string
	dtype       string
	valueRange  []float64
	value       float64
	values      []float64
	frequencies []float64
	num         int
	seed        uint64
	plot        string
	bins        int
}

func newSampleCommand() *cobra.Command {
	opts := &sampleOptions{}
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample a randomized parameter and print the statistics of its values",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := opts.sample()
			if err != nil {
				return err
			}
			printStats(os.Stdout, opts.title(), newSampleStats(values))
			if opts.plot != "" {
				return writeHistogram(opts.plot, opts.title(), values, opts.bins)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.kind, "kind", "uniform", "Kind of parameter: \"uniform\", \"custom\" or \"constant\".")
	flags.StringVar(&opts.dtype, "dtype", "float", "Type of the parameter: \"float\" or \"int\".")
	flags.Float64SliceVar(&opts.valueRange, "range", []float64{0, 1}, "Range [start, end] of a uniform parameter. Integer ranges include end.")
	flags.Float64Var(&opts.value, "value", 0, "Value of a constant parameter.")
	flags.Float64SliceVar(&opts.values, "values", nil, "Values of a custom parameter.")
	flags.Float64SliceVar(&opts.frequencies, "frequencies", nil, "Relative frequencies of the values of a custom parameter.")
	flags.IntVar(&opts.num, "num", 1000, "Number of values to sample.")
	flags.Uint64Var(&opts.seed, "seed", 0, "Seed of the random number generators.")
	flags.StringVar(&opts.plot, "plot", "", "If set, saves a histogram of the sampled values to this file. The format is given by the extension, e.g. \".png\" or \".svg\".")
	flags.IntVar(&opts.bins, "bins", 20, "Number of bins of the histogram.")
	return cmd
}

func (opts *sampleOptions) title() string {
	return fmt.Sprintf("%s %s parameter", opts.kind, opts.dtype)
}

// sample creates the parameter described by the options and samples opts.num values.
func (opts *sampleOptions) sample() ([]float64, error) {
	if opts.num < 1 {
		return nil, errors.Errorf("invalid number of samples %d", opts.num)
	}
	kind, err := config.ParameterKindString(opts.kind)
	if err != nil {
		return nil, errors.Errorf("invalid kind %q, valid values are %v", opts.kind, config.ParameterKindStrings())
	}
	dtype, err := config.ParameterDTypeString(opts.dtype)
	if err != nil {
		return nil, errors.Errorf("invalid dtype %q, valid values are %v", opts.dtype, config.ParameterDTypeStrings())
	}
	f := params.NewFactory(opts.seed)
	if dtype == config.DTypeInt {
		return sampleParameter(f, kind, opts, func(v float64) int32 { return int32(math.Round(v)) })
	}
	return sampleParameter(f, kind, opts, func(v float64) float32 { return float32(v) })
}

func sampleParameter[T int32 | float32](f *params.Factory, kind config.ParameterKind, opts *sampleOptions, convert func(float64) T) (values []float64, err error) {
	var p *params.Parameter[T]
	err = exceptions.TryCatch[error](func() {
		switch kind {
		case config.KindUniform:
			if len(opts.valueRange) != 2 {
				exceptions.Panicf("--range requires 2 values, got %v", opts.valueRange)
			}
			p = params.NewUniform(f, convert(opts.valueRange[0]), convert(opts.valueRange[1]))
		case config.KindConstant:
			p = params.NewSingleValue(f, convert(opts.value))
		case config.KindCustom:
			custom := make([]T, len(opts.values))
			for ii, v := range opts.values {
				custom[ii] = convert(v)
			}
			var customErr error
			p, customErr = params.NewCustom(f, custom, opts.frequencies)
			if customErr != nil {
				panic(customErr)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	defer p.Destroy()
	sampled := p.Sample(opts.num)
	values = make([]float64, len(sampled))
	for ii, v := range sampled {
		values[ii] = float64(v)
	}
	return values, nil
}

// sampleStats summarizes sampled values.
type sampleStats struct {
	count, distinct        int
	min, max, mean, stdDev float64
	p05, median, p95       float64
}

func newSampleStats(values []float64) sampleStats {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	s := sampleStats{
		count:    len(sorted),
		distinct: len(slices.Compact(slices.Clone(sorted))),
		min:      floats.Min(sorted),
		max:      floats.Max(sorted),
		p05:      stat.Quantile(0.05, stat.Empirical, sorted, nil),
		median:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		p95:      stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	s.mean, s.stdDev = stat.MeanStdDev(sorted, nil)
	return s
}

func printStats(w io.Writer, title string, s sampleStats) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))
	table := newPlainTable(lipgloss.Right, lipgloss.Left)
	table.Row("Samples", humanize.Comma(int64(s.count)))
	table.Row("Distinct values", humanize.Comma(int64(s.distinct)))
	for _, row := range []struct {
		name  string
		value float64
	}{
		{"Min", s.min}, {"5th percentile", s.p05}, {"Median", s.median},
		{"95th percentile", s.p95}, {"Max", s.max}, {"Mean", s.mean}, {"Std. deviation", s.stdDev},
	} {
		table.Row(row.name, humanize.FtoaWithDigits(row.value, 4))
	}
	_, _ = fmt.Fprintln(w, table.Render())
}

// writeHistogram of the values to path, the image format is given by its extension.
func writeHistogram(path, title string, values []float64, bins int) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Value"
	p.Y.Label.Text = "Count"
	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return errors.Wrapf(err, "creating histogram")
	}
	p.Add(hist)
	if err = p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving histogram to %q", path)
	}
	return nil
}
