// Copyright 2026 The JazzPetri Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rctx

import (
	"context"

	"github.com/serialcheck/engine/clock"
)

// QueryContext carries one serializability query's cancellation, clock, and
// observability through every pipeline stage. A child query (e.g. one
// spawned by the optimizer to check a candidate reordering in isolation,
// spec.md §5) inherits its parent's observability and error handling via
// WithParent while keeping its own Go context for independent cancellation.
type QueryContext struct {
	Context context.Context
	Clock   clock.Clock

	Tracer        Tracer
	Metrics       MetricsCollector
	Logger        Logger
	ErrorHandler  ErrorHandler
	ErrorRecorder ErrorRecorder

	parent *QueryContext
}

// New builds a QueryContext with NoOp observability and error handling.
func New(ctx context.Context, clk clock.Clock) *QueryContext {
	qc := &QueryContext{
		Context:       ctx,
		Clock:         clk,
		Tracer:        NoOpTracer{},
		Metrics:       NoOpMetrics{},
		Logger:        NoOpLogger{},
		ErrorHandler:  NoOpErrorHandler{},
		ErrorRecorder: NoOpErrorRecorder{},
	}
	qc.ensureDefaults()
	return qc
}

func (qc *QueryContext) ensureDefaults() {
	if qc.Tracer == nil {
		qc.Tracer = NoOpTracer{}
	}
	if qc.Metrics == nil {
		qc.Metrics = NoOpMetrics{}
	}
	if qc.Logger == nil {
		qc.Logger = NoOpLogger{}
	}
	if qc.ErrorHandler == nil {
		qc.ErrorHandler = NoOpErrorHandler{}
	}
	if qc.ErrorRecorder == nil {
		qc.ErrorRecorder = NoOpErrorRecorder{}
	}
}

// WithParent returns a child context sharing parent's observability and
// error handling, carrying its own Go context for independent cancellation.
func (qc *QueryContext) WithParent(parent *QueryContext) *QueryContext {
	child := *qc
	child.parent = parent
	child.Tracer = parent.Tracer
	child.Metrics = parent.Metrics
	child.Logger = parent.Logger
	child.ErrorHandler = parent.ErrorHandler
	child.ErrorRecorder = parent.ErrorRecorder
	return &child
}

// Parent returns the parent QueryContext, or nil at the root.
func (qc *QueryContext) Parent() *QueryContext { return qc.parent }

// WithLogger returns a copy of qc using logger.
func (qc *QueryContext) WithLogger(logger Logger) *QueryContext {
	c := *qc
	c.Logger = logger
	c.ensureDefaults()
	return &c
}

// WithMetrics returns a copy of qc using metrics.
func (qc *QueryContext) WithMetrics(metrics MetricsCollector) *QueryContext {
	c := *qc
	c.Metrics = metrics
	c.ensureDefaults()
	return &c
}

// WithTracer returns a copy of qc using tracer.
func (qc *QueryContext) WithTracer(tracer Tracer) *QueryContext {
	c := *qc
	c.Tracer = tracer
	c.ensureDefaults()
	return &c
}

// Done reports whether the underlying Go context has been cancelled or its
// deadline exceeded, matching spec.md §5's wall-clock budget mechanism.
func (qc *QueryContext) Done() bool {
	select {
	case <-qc.Context.Done():
		return true
	default:
		return false
	}
}
