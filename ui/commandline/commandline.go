// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience UI tools to run and inspect pipelines on the command line.
package commandline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/augment/types/tensors"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func newTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(tableBorderColor))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return normalStyle
		})
}

func tensorNames(ts []*tensors.Tensor) string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, t.Name())
	}
	return strings.Join(names, ", ")
}

// SprintPipeline returns two tables describing the nodes and the tensors of the pipeline.
func SprintPipeline(p *pipeline.Pipeline) string {
	nodesTable := newTable("Node", "Inputs", "Outputs", "State")
	for _, node := range p.Nodes() {
		nodesTable.Row(node.Name(), tensorNames(node.Inputs()), tensorNames(node.Outputs()), node.State().String())
	}

	tensorsTable := newTable("Tensor", "Shape", "Layout", "ROI", "Parameter", "Memory")
	var total uint64
	for _, t := range p.Tensors() {
		info := t.Info()
		var param string
		switch t.ParamKind() {
		case tensors.IntParam:
			p, _ := t.IntParam()
			param = p.String()
		case tensors.FloatParam:
			p, _ := t.FloatParam()
			param = p.String()
		default:
			if info.IsExternalSource() {
				param = "external"
			}
		}
		memory := uint64(info.Shape().Memory())
		total += memory
		tensorsTable.Row(t.Name(), info.Shape().String(), info.Layout().String(), info.ROIType().String(), param,
			humanize.Bytes(memory))
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(p.Name()))
	sb.WriteString("\n")
	sb.WriteString(nodesTable.String())
	sb.WriteString("\n")
	sb.WriteString(tensorsTable.String())
	sb.WriteString("\n")
	sb.WriteString(normalStyle.Render("Batch size " + humanize.Comma(int64(p.BatchSize())) +
		", tensors memory " + humanize.Bytes(total)))
	sb.WriteString("\n")
	return sb.String()
}
