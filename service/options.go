//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package service

import (
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	evalsetinmemory "trpc.group/trpc-go/trpc-agent-eval/evalset/inmemory"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/exactmatch"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/registry"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry/metric"
)

const (
	// DefaultExactMatchThreshold is the pass threshold of trajectory_exact_match.
	DefaultExactMatchThreshold = 1.0
	// DefaultThreshold is the pass threshold of every other metric.
	DefaultThreshold = 0.7
)

// DefaultThresholdFor returns the default pass threshold of a metric.
func DefaultThresholdFor(metricName string) float64 {
	if metricName == exactmatch.Name {
		return DefaultExactMatchThreshold
	}
	return DefaultThreshold
}

// Options holds the options for the evaluation service.
type Options struct {
	Registry        registry.Registry  // Registry resolves metric names to evaluators.
	Metrics         []string           // Metrics are applied to every row in this order.
	Thresholds      map[string]float64 // Thresholds override DefaultThresholdFor per metric.
	Parallelism     int                // Parallelism is the number of rows evaluated at once.
	ContinueOnError bool               // ContinueOnError records runner failures instead of aborting.
	EvalSetManager  evalset.Manager    // EvalSetManager loads sets for EvaluateByID.
	ResultManager   evalresult.Manager // ResultManager stores reports when set.
	Tracer          trace.Tracer       // Tracer overrides telemetry/trace.Tracer.
	MetricRecorder  *metric.Recorder   // MetricRecorder receives row counts and scores.
}

// Option defines a function type for configuring the evaluation service.
type Option func(*Options)

// NewOptions creates a new Options with the default values.
func NewOptions(opt ...Option) *Options {
	opts := &Options{
		Registry:       registry.New(),
		Metrics:        append([]string(nil), registry.DefaultMetrics...),
		Thresholds:     make(map[string]float64),
		Parallelism:    1,
		EvalSetManager: evalsetinmemory.New(),
		MetricRecorder: metric.NewNoopRecorder(),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// WithRegistry sets the evaluator registry.
func WithRegistry(r registry.Registry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithMetrics sets the metrics applied to every row, in report column order.
func WithMetrics(names ...string) Option {
	return func(o *Options) {
		o.Metrics = append([]string(nil), names...)
	}
}

// WithThreshold sets the pass threshold of one metric.
func WithThreshold(metricName string, threshold float64) Option {
	return func(o *Options) {
		o.Thresholds[metricName] = threshold
	}
}

// WithParallelism evaluates up to n rows at once on a worker pool.
// Rows run one at a time by default.
func WithParallelism(n int) Option {
	return func(o *Options) {
		o.Parallelism = n
	}
}

// WithContinueOnError records rows whose agent run failed and keeps going.
// The run errors are returned together after the report is built.
func WithContinueOnError(b bool) Option {
	return func(o *Options) {
		o.ContinueOnError = b
	}
}

// WithEvalSetManager sets the eval set manager used by EvaluateByID.
func WithEvalSetManager(m evalset.Manager) Option {
	return func(o *Options) {
		o.EvalSetManager = m
	}
}

// WithResultManager stores every finished report.
func WithResultManager(m evalresult.Manager) Option {
	return func(o *Options) {
		o.ResultManager = m
	}
}

// WithTracer sets the tracer for evaluation spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = t
	}
}

// WithMetricRecorder sets the recorder of evaluation metrics.
func WithMetricRecorder(r *metric.Recorder) Option {
	return func(o *Options) {
		o.MetricRecorder = r
	}
}
