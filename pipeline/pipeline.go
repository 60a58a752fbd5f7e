// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package pipeline hosts an augmentation graph: it allocates the device buffers of the tensors, creates the
// nodes in insertion order, and runs the graph once per batch, feeding the external sources and refreshing the
// randomized parameters of every node before each execution.
//
// A Pipeline is not safe for concurrent use.
package pipeline

import (
	"fmt"

	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/binding"
	"github.com/gomlx/augment/nodes"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/types/shapes"
	"github.com/gomlx/augment/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"k8s.io/klog/v2"
)

// ExternalSourcePrefix is the prefix of the paths generated for external sources.
const ExternalSourcePrefix = "external_source/"

// Config of a Pipeline.
type Config struct {
	// Name of the pipeline and its graph. If empty, one is generated.
	Name string

	// BatchSize is the number of samples processed per execution.
	BatchSize int

	// Seed of the random parameters created by the pipeline.
	Seed uint64

	// MemType of the tensors created by the pipeline.
	MemType tensors.MemType
}

// Pipeline of augmentation nodes. See package documentation.
type Pipeline struct {
	config  Config
	backend backends.Backend
	factory *params.Factory
	builder backends.Builder

	tensors *orderedmap.OrderedMap[string, *tensors.Tensor]
	inputs  []*tensors.Tensor
	// owned are the device buffers of the tensors.
	owned []*binding.OwnedBuffer

	nodes []nodes.Node
	feeds []*feed

	built, released bool
	batchCount      int
}

// feed connects a Feeder to the path of an external source node.
type feed struct {
	node   *nodes.ExternalSource
	output *tensors.Tensor
	feeder Feeder
}

// New creates an empty Pipeline running on backend.
func New(backend backends.Backend, config Config) (*Pipeline, error) {
	if backend == nil {
		return nil, errors.New("pipeline.New: nil backend")
	}
	if config.BatchSize < 1 {
		return nil, errors.Errorf("pipeline.New: invalid batch size %d", config.BatchSize)
	}
	if config.Name == "" {
		config.Name = "pipeline-" + uuid.NewString()
	}
	p := &Pipeline{
		config:  config,
		backend: backend,
		factory: params.NewFactory(config.Seed),
		tensors: orderedmap.New[string, *tensors.Tensor](),
	}
	klog.V(1).Infof("pipeline %q created on backend %q, batch size %d, seed %d", config.Name, backend.Name(),
		config.BatchSize, config.Seed)
	return p, nil
}

// Name of the pipeline.
func (p *Pipeline) Name() string { return p.config.Name }

// Config returns the configuration of the pipeline. The Name is filled in if it was generated.
func (p *Pipeline) Config() Config { return p.config }

// BatchSize of the pipeline.
func (p *Pipeline) BatchSize() int { return p.config.BatchSize }

// Backend the pipeline runs on.
func (p *Pipeline) Backend() backends.Backend { return p.backend }

// Factory of the random parameters of the pipeline.
func (p *Pipeline) Factory() *params.Factory { return p.factory }

// Builder of the accelerator graph, nil before Build.
func (p *Pipeline) Builder() backends.Builder { return p.builder }

// IsBuilt returns whether Build succeeded.
func (p *Pipeline) IsBuilt() bool { return p.built }

// BatchCount is the number of batches processed by Run.
func (p *Pipeline) BatchCount() int { return p.batchCount }

// Nodes of the pipeline, in insertion order.
func (p *Pipeline) Nodes() []nodes.Node { return p.nodes }

// Inputs returns the tensors created with CreateInput.
func (p *Pipeline) Inputs() []*tensors.Tensor { return p.inputs }

// Tensor returns the tensor with the given name, or nil.
func (p *Pipeline) Tensor(name string) *tensors.Tensor {
	t, _ := p.tensors.Get(name)
	return t
}

// Tensors returns all tensors of the pipeline, in creation order.
func (p *Pipeline) Tensors() []*tensors.Tensor {
	all := make([]*tensors.Tensor, 0, p.tensors.Len())
	for pair := p.tensors.Oldest(); pair != nil; pair = pair.Next() {
		all = append(all, pair.Value)
	}
	return all
}

func (p *Pipeline) checkNotReleased(op string) error {
	if p.released {
		return errors.Errorf("pipeline %q: %s called after Release", p.config.Name, op)
	}
	return nil
}

// CreateTensor creates a tensor and allocates its device buffer (zeros) and its ROI buffer (int32 with shape
// [batch, 4], initialized to the full image). If name is empty, one is generated.
func (p *Pipeline) CreateTensor(name string, info tensors.Info) (*tensors.Tensor, error) {
	if err := p.checkNotReleased("CreateTensor"); err != nil {
		return nil, err
	}
	if name == "" {
		name = fmt.Sprintf("tensor#%d", p.tensors.Len())
	}
	if _, found := p.tensors.Get(name); found {
		return nil, errors.Errorf("pipeline %q: tensor %q already exists", p.config.Name, name)
	}
	handle, err := p.backend.NewTensor(info.Shape(), nil)
	if err != nil {
		return nil, errors.WithMessagef(err, "pipeline %q: allocating tensor %q %s", p.config.Name, name, info)
	}
	p.owned = append(p.owned, binding.Own(p.backend, handle))
	batchSize := info.BatchSize()
	rois := make([]int32, 4*batchSize)
	if info.Layout() != tensors.LayoutNone {
		for ii := range batchSize {
			rois[4*ii+2], rois[4*ii+3] = int32(info.Width()), int32(info.Height())
		}
	}
	roi, err := p.backend.NewTensor(shapes.Make(dtypes.Int32, batchSize, 4), rois)
	if err != nil {
		return nil, errors.WithMessagef(err, "pipeline %q: allocating ROI of tensor %q", p.config.Name, name)
	}
	p.owned = append(p.owned, binding.Own(p.backend, roi))
	t := tensors.New(name, info)
	t.SetHandles(handle, roi)
	p.tensors.Set(name, t)
	klog.V(2).Infof("pipeline %q: created tensor %s", p.config.Name, t)
	return t, nil
}

// CreateInput creates an images input tensor, whose values are set with SetInput.
// The batch dimension of info must match the pipeline batch size.
func (p *Pipeline) CreateInput(name string, info tensors.Info) (*tensors.Tensor, error) {
	if info.BatchSize() != p.config.BatchSize {
		return nil, errors.Errorf("pipeline %q: input %s batch dimension doesn't match batch size %d",
			p.config.Name, info, p.config.BatchSize)
	}
	t, err := p.CreateTensor(name, info)
	if err != nil {
		return nil, err
	}
	p.inputs = append(p.inputs, t)
	return t, nil
}

// SetInput copies the flat values to the device buffer of t and, if rois is not nil, the ROIs (4 values per
// sample, interpreted according to the tensor ROI type).
func (p *Pipeline) SetInput(t *tensors.Tensor, flat any, rois []int32) error {
	if err := p.checkNotReleased("SetInput"); err != nil {
		return err
	}
	if err := p.backend.CopyTensorPatch(t.Handle(), flat); err != nil {
		return errors.WithMessagef(err, "pipeline %q: setting tensor %q", p.config.Name, t.Name())
	}
	if rois != nil {
		if err := p.backend.CopyTensorPatch(t.ROI(), rois); err != nil {
			return errors.WithMessagef(err, "pipeline %q: setting ROIs of tensor %q", p.config.Name, t.Name())
		}
	}
	return nil
}

// ReadOutput copies the values of the device buffer of t to flat, which must have the exact size of t.
func (p *Pipeline) ReadOutput(t *tensors.Tensor, flat any) error {
	if err := p.checkNotReleased("ReadOutput"); err != nil {
		return err
	}
	if err := p.backend.BufferToFlatData(t.Handle(), flat); err != nil {
		return errors.WithMessagef(err, "pipeline %q: reading tensor %q", p.config.Name, t.Name())
	}
	return nil
}

// Add a node to the pipeline. Nodes are created and executed in insertion order.
func (p *Pipeline) Add(node nodes.Node) error {
	if err := p.checkNotReleased("Add"); err != nil {
		return err
	}
	if p.built {
		return errors.Errorf("pipeline %q: nodes can't be added after Build", p.config.Name)
	}
	if named, ok := node.(interface{ SetName(string) }); ok {
		named.SetName(fmt.Sprintf("%s#%d", node.OpType(), len(p.nodes)))
	}
	p.nodes = append(p.nodes, node)
	return nil
}

// ExternalSource adds an external source node whose output (created with info, and returned) is filled each
// batch with the values provided by source. The input is optional, and may be nil.
// The path of the source is generated as ExternalSourcePrefix + a UUID.
func (p *Pipeline) ExternalSource(input *tensors.Tensor, info tensors.Info, source Feeder) (*tensors.Tensor, error) {
	return p.ExternalSourceWithPath(input, info, source, ExternalSourcePrefix+uuid.NewString())
}

// ExternalSourceWithPath is like ExternalSource, with the given path.
func (p *Pipeline) ExternalSourceWithPath(input *tensors.Tensor, info tensors.Info, source Feeder, path string) (*tensors.Tensor, error) {
	return p.ExternalSourceWithID(input, info, source, "", path)
}

// ExternalSourceWithID is like ExternalSourceWithPath, and also registers the source identifier sourceID with
// the graph, along with the layouts and ROI type of the tensors. If path is empty it is generated as in
// ExternalSource.
func (p *Pipeline) ExternalSourceWithID(input *tensors.Tensor, info tensors.Info, source Feeder, sourceID, path string) (*tensors.Tensor, error) {
	if path == "" {
		path = ExternalSourcePrefix + uuid.NewString()
	}
	if source == nil {
		return nil, errors.Errorf("pipeline %q: external source %q requires a Feeder", p.config.Name, path)
	}
	output, err := p.CreateTensor("", info)
	if err != nil {
		return nil, err
	}
	node := nodes.NewExternalSource(input, output)
	if sourceID == "" {
		err = node.Init(path, info.DType())
	} else {
		err = node.InitWithSource(sourceID, path, info.DType())
	}
	if err != nil {
		return nil, err
	}
	if err = p.Add(node); err != nil {
		return nil, err
	}
	p.feeds = append(p.feeds, &feed{node: node, output: output, feeder: source})
	return output, nil
}

// Env returns the environment given to the nodes on creation. Only valid after Build.
func (p *Pipeline) Env() *nodes.Env {
	return &nodes.Env{Data: p.backend, Builder: p.builder, Factory: p.factory}
}

// Build creates every node, in insertion order, and verifies the graph. It is idempotent.
//
// A failure is fatal: the pipeline should be released.
func (p *Pipeline) Build() error {
	if err := p.checkNotReleased("Build"); err != nil {
		return err
	}
	if p.built {
		return nil
	}
	if p.builder == nil {
		p.builder = p.backend.Builder(p.config.Name)
	}
	env := p.Env()
	for _, node := range p.nodes {
		if err := node.CreateNode(env); err != nil {
			return errors.WithMessagef(err, "pipeline %q: building", p.config.Name)
		}
	}
	if err := p.builder.Verify(); err != nil {
		return errors.WithMessagef(err, "pipeline %q: verifying graph", p.config.Name)
	}
	p.built = true
	klog.V(1).Infof("pipeline %q built with %d nodes and %d tensors", p.config.Name, len(p.nodes), p.tensors.Len())
	return nil
}

// Run processes one batch: it feeds the external sources, refreshes the parameters of every node, and
// executes the graph. It builds the pipeline if needed.
//
// When a feeder runs out of data, the returned error wraps io.EOF.
func (p *Pipeline) Run() error {
	if err := p.Build(); err != nil {
		return err
	}
	for _, f := range p.feeds {
		flat, err := f.feeder.Next(f.output.Info().Shape().Size())
		if err != nil {
			return errors.WithMessagef(err, "pipeline %q: external source %q", p.config.Name, f.node.Path())
		}
		if err = p.backend.FeedExternalSource(f.node.Path(), flat); err != nil {
			return errors.WithMessagef(err, "pipeline %q: feeding external source %q", p.config.Name, f.node.Path())
		}
	}
	for _, node := range p.nodes {
		if err := node.UpdateNode(); err != nil {
			return errors.WithMessagef(err, "pipeline %q: batch %d", p.config.Name, p.batchCount)
		}
	}
	if err := p.builder.Execute(); err != nil {
		return errors.WithMessagef(err, "pipeline %q: batch %d", p.config.Name, p.batchCount)
	}
	p.batchCount++
	klog.V(2).Infof("pipeline %q: batch %d done", p.config.Name, p.batchCount)
	return nil
}

// Release the nodes, the graph and the device buffers of the tensors. It is idempotent, and returns the first
// error found, after releasing everything.
func (p *Pipeline) Release() error {
	if p.released {
		return nil
	}
	p.released = true
	var firstErr error
	for _, node := range p.nodes {
		if err := node.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if p.builder != nil {
		p.builder.Finalize()
	}
	for _, buf := range p.owned {
		if err := buf.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.owned = nil
	if firstErr != nil {
		return errors.WithMessagef(firstErr, "pipeline %q: release", p.config.Name)
	}
	klog.V(1).Infof("pipeline %q released after %d batches", p.config.Name, p.batchCount)
	return nil
}
