//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package metric provides OpenTelemetry metrics for evaluation runs.
package metric

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"trpc.group/trpc-go/trpc-agent-eval/status"
)

// Meter and instrument names.
const (
	MeterName        = "trpc.agent.eval"
	MetricRows       = "trpc_agent_eval.rows"
	MetricScore      = "trpc_agent_eval.score"
	KeyEvalSetID     = "trpc_agent_eval.eval_set_id"
	KeyMetricName    = "trpc_agent_eval.metric"
	KeyStatus        = "trpc_agent_eval.status"
	ProtocolGRPC     = "grpc"
	ProtocolHTTP     = "http"
	defaultService   = "trpc-agent-eval"
	defaultNamespace = "trpc-go-agent"
)

// scoreBuckets covers [0, 1] in tenths.
var scoreBuckets = []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}

// Recorder records evaluation counters and score distributions.
type Recorder struct {
	rows  metric.Int64Counter
	score metric.Float64Histogram
}

// NewRecorder creates a Recorder on the given meter provider.
func NewRecorder(mp metric.MeterProvider) (*Recorder, error) {
	meter := mp.Meter(MeterName)
	rows, err := meter.Int64Counter(MetricRows,
		metric.WithDescription("Number of evaluated dataset rows"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric %s: %w", MetricRows, err)
	}
	score, err := meter.Float64Histogram(MetricScore,
		metric.WithDescription("Distribution of evaluator scores"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(scoreBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric %s: %w", MetricScore, err)
	}
	return &Recorder{rows: rows, score: score}, nil
}

// NewNoopRecorder creates a Recorder that discards everything.
func NewNoopRecorder() *Recorder {
	r, err := NewRecorder(noop.NewMeterProvider())
	if err != nil {
		// The noop provider never fails to create instruments.
		panic(err)
	}
	return r
}

// RecordRow counts one evaluated row.
func (r *Recorder) RecordRow(ctx context.Context, evalSetID string, st status.EvalStatus) {
	r.rows.Add(ctx, 1, metric.WithAttributes(
		attribute.String(KeyEvalSetID, evalSetID),
		attribute.String(KeyStatus, st.String()),
	))
}

// RecordScore records one evaluator score.
func (r *Recorder) RecordScore(ctx context.Context, evalSetID, metricName string, score float64) {
	r.score.Record(ctx, score, metric.WithAttributes(
		attribute.String(KeyEvalSetID, evalSetID),
		attribute.String(KeyMetricName, metricName),
	))
}

// NewMeterProvider creates a meter provider exporting over OTLP.
// The environment variables described below can be used for Endpoint configuration.
// OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_METRICS_ENDPOINT (default: "localhost:4317")
func NewMeterProvider(ctx context.Context, opts ...Option) (*sdkmetric.MeterProvider, error) {
	options := &options{
		serviceName:      defaultService,
		serviceNamespace: defaultNamespace,
		protocol:         ProtocolGRPC,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.endpoint == "" {
		options.endpoint = metricsEndpoint(options.protocol)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNamespace(options.serviceNamespace),
			semconv.ServiceName(options.serviceName),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdkmetric.Exporter
	switch options.protocol {
	case ProtocolHTTP:
		exporter, err = otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(options.endpoint),
			otlpmetrichttp.WithInsecure())
	default:
		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(options.endpoint),
			otlpmetricgrpc.WithInsecure())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

func metricsEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	switch protocol {
	case ProtocolHTTP:
		return "localhost:4318" // otlpmetrichttp adds /v1/metrics
	default:
		return "localhost:4317"
	}
}

// Option is a function that configures meter options.
type Option func(*options)

type options struct {
	endpoint         string
	serviceName      string
	serviceNamespace string
	protocol         string
}

// WithEndpoint sets the metrics endpoint (host and port) the exporter connects to.
func WithEndpoint(endpoint string) Option {
	return func(opts *options) {
		opts.endpoint = endpoint
	}
}

// WithProtocol sets the protocol to use for metrics export.
// Supported protocols are "grpc" (default) and "http".
func WithProtocol(protocol string) Option {
	return func(opts *options) {
		opts.protocol = protocol
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(serviceName string) Option {
	return func(opts *options) {
		opts.serviceName = serviceName
	}
}
