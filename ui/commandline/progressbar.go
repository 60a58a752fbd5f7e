// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// ExtraMetricFn is any function that will give extra values to display along the progress bar.
// It is called at each time the progress bar is updated, and it should return a name and the current value when it is called.
type ExtraMetricFn func() (name, value string)

// Output where the progress bar is displayed.
var Output io.Writer = os.Stdout

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

var (
	normalStyle       = lipgloss.NewStyle().Padding(0, 1)
	rightAlignedStyle = lipgloss.NewStyle().Align(lipgloss.Right).Padding(0, 1)
	tableBorderColor  = "#705090"
)

// maxUpdateFrequency is the time between updates to the commandline display of stats.
const maxUpdateFrequency = time.Millisecond * 200

// progressBar holds a progressbar being displayed.
type progressBar struct {
	numBatches, batchSize int
	bar                   *progressbar.ProgressBar

	// lipgloss-based rich and asynchronous display for the command-line.
	termenv          *termenv.Output
	statsStyle       lipgloss.Style
	statsTable       *lgtable.Table
	isFirstOutput    bool
	updates          chan progressBarUpdate
	asyncUpdatesDone sync.WaitGroup

	extraMetricFns []ExtraMetricFn
}

type progressBarUpdate struct {
	amount int
	// batch is the number of batches done.
	batch          int
	medianDuration time.Duration
	samplesPerSec  float64
}

// RunBatches calls runBatch numBatches times, displaying a progress bar with the batches processed, the median
// duration of a batch and the throughput in samples per second.
//
// Optionally, one can provide extraMetrics: functions that are called at every update of
// the progress bar and should return a name (title) and a value to be included in the
// updated print-out.
//
// It stops at the first error returned by runBatch, and returns it.
func RunBatches(numBatches, batchSize int, runBatch func(batch int) error, extraMetrics ...ExtraMetricFn) error {
	if numBatches < 1 {
		return errors.Errorf("RunBatches: invalid number of batches %d", numBatches)
	}
	pBar := newProgressBar(numBatches, batchSize, extraMetrics)
	defer pBar.finish()

	durations := make([]time.Duration, 0, numBatches)
	start := time.Now()
	for batch := range numBatches {
		batchStart := time.Now()
		if err := runBatch(batch); err != nil {
			return errors.WithMessagef(err, "batch %d of %d", batch, numBatches)
		}
		durations = append(durations, time.Since(batchStart))
		var samplesPerSec float64
		if elapsed := time.Since(start).Seconds(); elapsed > 0 {
			samplesPerSec = float64((batch+1)*batchSize) / elapsed
		}
		pBar.updates <- progressBarUpdate{
			amount:         1,
			batch:          batch + 1,
			medianDuration: median(durations),
			samplesPerSec:  samplesPerSec,
		}
	}
	return nil
}

func median(durations []time.Duration) time.Duration {
	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	return sorted[len(sorted)/2]
}

func newProgressBar(numBatches, batchSize int, extraMetrics []ExtraMetricFn) *progressBar {
	pBar := &progressBar{
		numBatches:     numBatches,
		batchSize:      batchSize,
		extraMetricFns: extraMetrics,
		isFirstOutput:  true,
		termenv:        termenv.NewOutput(Output),
		statsStyle:     lipgloss.NewStyle().PaddingLeft(8),
	}
	pBar.bar = progressbar.NewOptions(numBatches,
		progressbar.OptionSetDescription("      [bold]"),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("batches"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(Output),
	)
	pBar.statsTable = lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return rightAlignedStyle
			}
			return normalStyle
		})
	pBar.updates = make(chan progressBarUpdate, 100) // Large buffer so things are not blocked.
	pBar.asyncUpdatesDone.Add(1)
	go pBar.drawUpdates()
	return pBar
}

// drawUpdates asynchronously, so a slow terminal doesn't slow down the pipeline.
func (pBar *progressBar) drawUpdates() {
	defer pBar.asyncUpdatesDone.Done()
	for update := range pBar.updates {
		// Exhaust the updates in the buffer:
		amount := update.amount
	exhaust:
		for {
			select {
			case newUpdate, ok := <-pBar.updates:
				if !ok {
					break exhaust
				}
				amount += newUpdate.amount
				update = newUpdate
			default:
				break exhaust
			}
		}

		// Create the table to be printed.
		pBar.statsTable.Data(lgtable.NewStringData())
		pBar.statsTable.Row("Batches", fmt.Sprintf("%s of %s", humanize.Comma(int64(update.batch)), humanize.Comma(int64(pBar.numBatches))))
		pBar.statsTable.Row("Median batch duration", FormatDuration(update.medianDuration))
		pBar.statsTable.Row("Throughput", humanize.SIWithDigits(update.samplesPerSec, 1, "samples/s"))
		for _, extraMetric := range pBar.extraMetricFns {
			name, value := extraMetric()
			pBar.statsTable.Row(name, value)
		}

		// For command-line, we clear the previous lines that will be overwritten.
		pBar.termenv.HideCursor()
		if !pBar.isFirstOutput {
			numLinesToBackup := 3 + 2 + 2 + len(pBar.extraMetricFns)
			pBar.termenv.CursorPrevLine(numLinesToBackup)
		}
		pBar.isFirstOutput = false

		// Print update.
		_, _ = fmt.Fprintln(Output, pBar.statsStyle.Render(pBar.statsTable.String()))
		_ = pBar.bar.Add(amount) // Prints progress bar line.
		_, _ = fmt.Fprintln(Output)
		pBar.termenv.ShowCursor()
		if update.batch < pBar.numBatches {
			time.Sleep(maxUpdateFrequency)
		}
	}
}

func (pBar *progressBar) finish() {
	close(pBar.updates)
	pBar.asyncUpdatesDone.Wait()
	pBar.termenv.ShowCursor()
	_, _ = fmt.Fprintln(Output)
}
