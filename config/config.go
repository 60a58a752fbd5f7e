// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package config decodes augmentation pipelines described in HCL files, and instantiates them.
//
// A pipeline file looks like:
//
//	pipeline "demo" {
//	  batch_size = 4
//	  seed       = var.seed
//
//	  input "images" {
//	    dtype    = "uint8"
//	    height   = 224
//	    width    = 224
//	    channels = 3
//	  }
//
//	  parameter "alpha" {
//	    kind  = "uniform"
//	    range = [0.5, 1.5]
//	  }
//
//	  augmentation "brightness" "bright" {
//	    input  = "images"
//	    params = { alpha = "alpha" }
//	  }
//
//	  augmentation "contrast" "out" {
//	    input  = "bright"
//	    values = { factor = 1.2, center = 128 }
//	  }
//
//	  outputs = ["out"]
//	}
//
// Variables are referenced as var.<name>, and given with Parse (see ParseVars).
package config

import (
	"strings"

	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"k8s.io/klog/v2"
)

// File is the top-level structure of a pipeline file.
type File struct {
	Pipelines []*Pipeline `hcl:"pipeline,block"`
}

// Pipeline block: the configuration of one pipeline.
type Pipeline struct {
	Name      string `hcl:"name,label"`
	BatchSize int    `hcl:"batch_size"`
	Seed      uint64 `hcl:"seed,optional"`
	// MemType is "host" (default) or "device".
	MemType string `hcl:"mem_type,optional"`

	Inputs          []*Input          `hcl:"input,block"`
	ExternalSources []*ExternalSource `hcl:"external_source,block"`
	Parameters      []*Parameter      `hcl:"parameter,block"`
	Augmentations   []*Augmentation   `hcl:"augmentation,block"`

	// Outputs are the names of the tensors read after each batch. If empty, the output of the last
	// augmentation.
	Outputs []string `hcl:"outputs,optional"`
}

// TensorSpec describes the tensors of inputs and external sources. The batch axis is given by the pipeline.
type TensorSpec struct {
	// DType name, e.g. "uint8" (default) or "float32".
	DType string `hcl:"dtype,optional"`
	// Layout is one of "NHWC" (default), "NCHW", "NFHWC", "NFCHW" or "None", in any case.
	Layout  string `hcl:"layout,optional"`
	ROIType string `hcl:"roi_type,optional"`

	Frames   int `hcl:"frames,optional"`
	Height   int `hcl:"height,optional"`
	Width    int `hcl:"width,optional"`
	Channels int `hcl:"channels,optional"`
	// Size is the number of values per sample, for layout "NONE".
	Size int `hcl:"size,optional"`
}

// Input block: an images tensor whose values are set before each batch.
type Input struct {
	Name string `hcl:"name,label"`
	// Remain holds the TensorSpec attributes, decoded into Spec.
	Remain hcl.Body `hcl:",remain"`
	Spec   TensorSpec
}

// ExternalSource block: a tensor fed each batch from values listed in the file, or from a feeder given on
// instantiation.
type ExternalSource struct {
	Name string `hcl:"name,label"`
	// Path of the source, by default generated.
	Path string `hcl:"path,optional"`
	// SourceID, if given, is registered with the graph along with the path, and the node carries the
	// layout and ROI type of its tensors.
	SourceID string `hcl:"source_id,optional"`
	// Values fed in order, one batch at a time.
	Values []float64 `hcl:"values,optional"`
	// Repeat restarts Values from the beginning once exhausted.
	Repeat bool `hcl:"repeat,optional"`
	// Remain holds the TensorSpec attributes, decoded into Spec.
	Remain hcl.Body `hcl:",remain"`
	Spec   TensorSpec
}

// Parameter block: a parameter tensor that can drive the parameters of augmentations.
type Parameter struct {
	Name string `hcl:"name,label"`
	// Kind is "uniform", "constant" or "custom", see ParameterKind.
	Kind string `hcl:"kind"`
	// DType is "float" (default) or "int", see ParameterDType.
	DType       string    `hcl:"dtype,optional"`
	Range       []float64 `hcl:"range,optional"`
	Value       float64   `hcl:"value,optional"`
	Values      []float64 `hcl:"values,optional"`
	Frequencies []float64 `hcl:"frequencies,optional"`
}

// Augmentation block. Type is "brightness" or "contrast".
//
// The parameters are either driven by the tensors named in Params, parameters or external sources (a missing
// one uses its default random range), or fixed by Values, which must then give all of them.
type Augmentation struct {
	Type   string             `hcl:"type,label"`
	Name   string             `hcl:"name,label"`
	Input  string             `hcl:"input"`
	Params map[string]string  `hcl:"params,optional"`
	Values map[string]float64 `hcl:"values,optional"`
}

// Parse parses and decodes a pipeline file. The contents are read from filename unless src is not nil.
// vars are exposed to the file as var.<name>.
func Parse(filename string, src []byte, vars map[string]cty.Value) (*File, error) {
	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if src == nil {
		file, diags = parser.ParseHCLFile(filename)
	} else {
		file, diags = parser.ParseHCL(src, filename)
	}
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse pipeline file %s", filename)
	}
	if vars == nil {
		vars = map[string]cty.Value{}
	}
	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{"var": cty.ObjectVal(vars)}}
	var config File
	diags = gohcl.DecodeBody(file.Body, evalCtx, &config)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to decode pipeline file %s", filename)
	}
	for _, p := range config.Pipelines {
		for _, in := range p.Inputs {
			if diags = gohcl.DecodeBody(in.Remain, evalCtx, &in.Spec); diags.HasErrors() {
				return nil, errors.Wrapf(diags, "failed to decode input %q of pipeline %q", in.Name, p.Name)
			}
		}
		for _, src := range p.ExternalSources {
			if diags = gohcl.DecodeBody(src.Remain, evalCtx, &src.Spec); diags.HasErrors() {
				return nil, errors.Wrapf(diags, "failed to decode external_source %q of pipeline %q", src.Name, p.Name)
			}
		}
		if err := p.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "pipeline file %s", filename)
		}
	}
	klog.V(1).Infof("decoded %d pipeline(s) from %s", len(config.Pipelines), filename)
	return &config, nil
}

// ParseVars converts "name=value" definitions to variables for Parse. Values are HCL expressions without
// references (numbers, booleans, quoted strings, lists); anything else is taken as a plain string.
func ParseVars(definitions []string) (map[string]cty.Value, error) {
	vars := make(map[string]cty.Value, len(definitions))
	for _, def := range definitions {
		name, value, found := strings.Cut(def, "=")
		name = strings.TrimSpace(name)
		if !found || !hclsyntax.ValidIdentifier(name) {
			return nil, errors.Errorf("invalid variable definition %q, expected name=value", def)
		}
		expr, diags := hclsyntax.ParseExpression([]byte(value), name, hcl.InitialPos)
		if !diags.HasErrors() {
			if v, diags := expr.Value(nil); !diags.HasErrors() {
				vars[name] = v
				continue
			}
		}
		vars[name] = cty.StringVal(value)
	}
	return vars, nil
}

// Pipeline returns the pipeline with the given name, or the only one if name is empty.
func (f *File) Pipeline(name string) (*Pipeline, error) {
	if name == "" {
		if len(f.Pipelines) != 1 {
			return nil, errors.Errorf("file defines %d pipelines, a name must be given", len(f.Pipelines))
		}
		return f.Pipelines[0], nil
	}
	for _, p := range f.Pipelines {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, errors.Errorf("pipeline %q not defined", name)
}

// Validate checks the consistency of the pipeline configuration: names are unique, references are defined
// before being used, and the values of every block are valid.
func (p *Pipeline) Validate() error {
	if p.BatchSize < 1 {
		return errors.Errorf("pipeline %q: invalid batch_size %d", p.Name, p.BatchSize)
	}
	if _, err := p.memType(); err != nil {
		return errors.WithMessagef(err, "pipeline %q", p.Name)
	}
	defined := make(map[string]string)
	define := func(kind, name string) error {
		if previous, found := defined[name]; found {
			return errors.Errorf("pipeline %q: %s %q already defined as %s", p.Name, kind, name, previous)
		}
		defined[name] = kind
		return nil
	}
	for _, in := range p.Inputs {
		if err := define("input", in.Name); err != nil {
			return err
		}
		if _, err := in.Spec.Info(p.BatchSize); err != nil {
			return errors.WithMessagef(err, "pipeline %q input %q", p.Name, in.Name)
		}
	}
	for _, src := range p.ExternalSources {
		if err := define("external_source", src.Name); err != nil {
			return err
		}
		if _, err := src.Spec.Info(p.BatchSize); err != nil {
			return errors.WithMessagef(err, "pipeline %q external_source %q", p.Name, src.Name)
		}
	}
	for _, param := range p.Parameters {
		if err := define("parameter", param.Name); err != nil {
			return err
		}
		if err := param.validate(); err != nil {
			return errors.WithMessagef(err, "pipeline %q parameter %q", p.Name, param.Name)
		}
	}
	for _, aug := range p.Augmentations {
		if err := aug.validate(defined); err != nil {
			return errors.WithMessagef(err, "pipeline %q augmentation %q", p.Name, aug.Name)
		}
		if err := define("augmentation", aug.Name); err != nil {
			return err
		}
	}
	for _, name := range p.Outputs {
		if kind, found := defined[name]; !found || kind == "parameter" {
			return errors.Errorf("pipeline %q: output %q is not a defined tensor", p.Name, name)
		}
	}
	return nil
}

func (p *Pipeline) memType() (tensors.MemType, error) {
	if p.MemType == "" {
		return tensors.MemTypeHost, nil
	}
	memType, err := tensors.MemTypeString(p.MemType)
	if err != nil {
		return tensors.MemTypeHost, errors.Errorf("invalid mem_type %q, valid values are %v", p.MemType, tensors.MemTypeStrings())
	}
	return memType, nil
}

// parseDType accepts the names of gopjrt dtypes, in any case.
func parseDType(name string) (dtypes.DType, error) {
	if name == "" {
		return dtypes.Uint8, nil
	}
	if dtype, found := dtypes.MapOfNames[name]; found {
		return dtype, nil
	}
	if dtype, found := dtypes.MapOfNames[strings.ToLower(name)]; found {
		return dtype, nil
	}
	return dtypes.InvalidDType, errors.Errorf("unknown dtype %q", name)
}

// Info returns the tensors.Info described by s, for the given batch size.
func (s *TensorSpec) Info(batchSize int) (tensors.Info, error) {
	dtype, err := parseDType(s.DType)
	if err != nil {
		return tensors.Info{}, err
	}
	layout := tensors.NHWC
	if s.Layout != "" {
		if layout, err = tensors.LayoutString(s.Layout); err != nil {
			return tensors.Info{}, errors.Errorf("unknown tensor layout %q, valid values are %v", s.Layout, tensors.LayoutStrings())
		}
	}
	var roiType tensors.ROIType
	if s.ROIType != "" {
		if roiType, err = tensors.ROITypeString(s.ROIType); err != nil {
			return tensors.Info{}, errors.Errorf("unknown ROI type %q, valid values are %v", s.ROIType, tensors.ROITypeStrings())
		}
	}
	var dims []int
	switch layout {
	case tensors.LayoutNone:
		dims = []int{batchSize, s.Size}
	case tensors.NHWC:
		dims = []int{batchSize, s.Height, s.Width, s.Channels}
	case tensors.NCHW:
		dims = []int{batchSize, s.Channels, s.Height, s.Width}
	case tensors.NFHWC:
		dims = []int{batchSize, s.Frames, s.Height, s.Width, s.Channels}
	case tensors.NFCHW:
		dims = []int{batchSize, s.Frames, s.Channels, s.Height, s.Width}
	}
	for _, dim := range dims {
		if dim < 1 {
			return tensors.Info{}, errors.Errorf("layout %s requires positive dimensions, got %v", layout, dims)
		}
	}
	return tensors.NewInfo(shapes.Make(dtype, dims...), layout, tensors.MemTypeHost).WithROIType(roiType), nil
}

func (param *Parameter) isInt() (bool, error) {
	if param.DType == "" {
		return false, nil
	}
	dtype, err := ParameterDTypeString(param.DType)
	if err != nil {
		return false, errors.Errorf("invalid dtype %q, valid values are %v", param.DType, ParameterDTypeStrings())
	}
	return dtype == DTypeInt, nil
}

func (param *Parameter) kind() (ParameterKind, error) {
	kind, err := ParameterKindString(param.Kind)
	if err != nil {
		return kind, errors.Errorf("invalid kind %q, valid values are %v", param.Kind, ParameterKindStrings())
	}
	return kind, nil
}

func (param *Parameter) validate() error {
	if _, err := param.isInt(); err != nil {
		return err
	}
	kind, err := param.kind()
	if err != nil {
		return err
	}
	switch kind {
	case KindUniform:
		if len(param.Range) != 2 || param.Range[0] > param.Range[1] {
			return errors.Errorf("uniform parameters require range = [start, end], with start <= end, got %v", param.Range)
		}
	case KindCustom:
		if len(param.Values) == 0 || len(param.Values) != len(param.Frequencies) {
			return errors.Errorf("custom parameters require the same number of values and frequencies, got %d and %d",
				len(param.Values), len(param.Frequencies))
		}
	}
	return nil
}

func (aug *Augmentation) validate(defined map[string]string) error {
	def, found := augmentationTypes[aug.Type]
	if !found {
		return errors.Errorf("unknown augmentation type %q", aug.Type)
	}
	if kind, found := defined[aug.Input]; !found || kind == "parameter" {
		return errors.Errorf("input %q is not a tensor defined before the augmentation", aug.Input)
	}
	if len(aug.Params) > 0 && len(aug.Values) > 0 {
		return errors.New("params and values are mutually exclusive")
	}
	known := make(map[string]bool, len(def.params))
	for _, name := range def.params {
		known[name] = true
	}
	for name, ref := range aug.Params {
		if !known[name] {
			return errors.Errorf("%s has no parameter %q, valid parameters are %v", aug.Type, name, def.params)
		}
		if kind := defined[ref]; kind != "parameter" && kind != "external_source" {
			return errors.Errorf("parameter %q references %q, which is not a defined parameter or external_source", name, ref)
		}
	}
	if len(aug.Values) > 0 {
		for _, name := range def.params {
			if _, found := aug.Values[name]; !found {
				return errors.Errorf("values must give all parameters %v, %q missing", def.params, name)
			}
		}
		for name := range aug.Values {
			if !known[name] {
				return errors.Errorf("%s has no parameter %q, valid parameters are %v", aug.Type, name, def.params)
			}
		}
	}
	return nil
}
