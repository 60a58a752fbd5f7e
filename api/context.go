// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package api is the status-code surface of augment: functions that create parameter tensors (a batch-shaped
// tensor with an attached random parameter), update their generators, add augmentations to a pipeline and
// run it.
//
// Errors never escape as panics: every function runs under exceptions.TryCatch, and failures are captured in
// the Context (see Context.Error) and reported as a Status.
//
// Example:
//
//	ctx := api.NewContext(simplego.New(""), pipeline.Config{BatchSize: 8, Seed: 42})
//	defer api.Release(ctx)
//	images := api.CreateInput(ctx, tensors.NewImageInfo(dtypes.Uint8, 8, 224, 224, 3))
//	alpha := api.CreateFloatUniformRand(ctx, 0.5, 1.5, 1)
//	output := api.Brightness(ctx, images, alpha, nil)
//	if status := api.Run(ctx); status != api.StatusOK {
//		log.Fatalf("%s: %s", status, ctx.ErrorMessage())
//	}
package api

import (
	"github.com/gomlx/augment/backends"
	"github.com/gomlx/augment/params"
	"github.com/gomlx/augment/pipeline"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

//go:generate go tool enumer -type=Status -trimprefix=Status -output=gen_status_enumer.go context.go

// Status returned by the functions of the package.
type Status int

const (
	StatusOK Status = iota
	StatusContextInvalid
	StatusRuntimeError
	StatusInvalidParameterType
	StatusUpdateParameterFailed
)

// statusOf maps an error to the Status reported to the caller.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, params.ErrInvalidParameterType):
		return StatusInvalidParameterType
	case errors.Is(err, params.ErrUpdateFailed):
		return StatusUpdateParameterFailed
	}
	return StatusRuntimeError
}

// Context hosts a pipeline, the parameters created for it, and the last error captured.
//
// It is not safe for concurrent use.
type Context struct {
	pipeline *pipeline.Pipeline
	err      error

	// destroyers of the parameters created through the context.
	destroyers []func()
	released   bool
}

// NewContext creates a Context with a new pipeline on backend. If the pipeline can't be created, the returned
// Context is invalid: its Error is set and every function given it returns StatusContextInvalid.
func NewContext(backend backends.Backend, config pipeline.Config) *Context {
	ctx := &Context{}
	p, err := pipeline.New(backend, config)
	if err != nil {
		ctx.capture(err)
		return ctx
	}
	ctx.pipeline = p
	return ctx
}

// Pipeline hosted by the context, nil if the context is invalid.
func (ctx *Context) Pipeline() *pipeline.Pipeline { return ctx.pipeline }

// Error returns the last error captured, or nil.
func (ctx *Context) Error() error { return ctx.err }

// ErrorMessage returns the message of the last error captured, or "" if there was none.
func (ctx *Context) ErrorMessage() string {
	if ctx == nil || ctx.err == nil {
		return ""
	}
	return ctx.err.Error()
}

// Status of the context: StatusContextInvalid if it holds no pipeline, the status of the last captured error
// otherwise.
func (ctx *Context) Status() Status {
	if !ctx.valid() {
		return StatusContextInvalid
	}
	return statusOf(ctx.err)
}

func (ctx *Context) valid() bool {
	return ctx != nil && ctx.pipeline != nil && !ctx.released
}

func (ctx *Context) capture(err error) {
	ctx.err = err
	klog.Errorf("augment: %+v", err)
}

// try runs fn, converting panics to errors, and captures the error, if any.
func (ctx *Context) try(op string, fn func() error) Status {
	if !ctx.valid() {
		return StatusContextInvalid
	}
	var err error
	if panicErr := exceptions.TryCatch[error](func() { err = fn() }); panicErr != nil {
		err = panicErr
	}
	if err == nil {
		return StatusOK
	}
	ctx.capture(errors.WithMessage(err, op))
	return statusOf(err)
}

// SetSeed sets the seed of the parameters created afterwards.
func SetSeed(ctx *Context, seed uint64) Status {
	return ctx.try("SetSeed", func() error {
		ctx.pipeline.Factory().SetSeed(seed)
		return nil
	})
}

// GetSeed returns the seed of the context, or 0 if the context is invalid.
func GetSeed(ctx *Context) uint64 {
	if !ctx.valid() {
		return 0
	}
	return ctx.pipeline.Factory().Seed()
}

// Build creates the nodes of the pipeline and verifies its graph.
func Build(ctx *Context) Status {
	return ctx.try("Build", func() error { return ctx.pipeline.Build() })
}

// Run processes one batch, building the pipeline first if needed.
func Run(ctx *Context) Status {
	return ctx.try("Run", func() error { return ctx.pipeline.Run() })
}

// Release the pipeline and destroy the parameters created through the context. The context becomes invalid.
func Release(ctx *Context) Status {
	status := ctx.try("Release", func() error { return ctx.pipeline.Release() })
	if status == StatusContextInvalid {
		return status
	}
	for _, destroy := range ctx.destroyers {
		destroy()
	}
	ctx.destroyers = nil
	ctx.released = true
	return status
}
