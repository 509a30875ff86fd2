//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package trace provides OpenTelemetry tracing for evaluation runs.
package trace

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// telemetry service constants.
const (
	ServiceName      = "trpc-agent-eval"
	ServiceVersion   = "v0.1.0"
	ServiceNamespace = "trpc-go-agent"
	InstrumentName   = "trpc.agent.eval"

	// ProtocolGRPC uses gRPC protocol for OTLP exporter.
	ProtocolGRPC = "grpc"
	// ProtocolHTTP uses HTTP protocol for OTLP exporter.
	ProtocolHTTP = "http"

	defaultShutdownTimeout = 5 * time.Second
)

// Tracer is the tracer used by evaluation runs.
// It delegates to the global tracer provider until Start installs one.
var Tracer trace.Tracer = otel.Tracer(InstrumentName)

// Start installs an OTLP tracer provider as the global provider and updates Tracer.
// The returned function flushes and shuts the provider down.
func Start(ctx context.Context, opts ...Option) (func() error, error) {
	o := &options{
		serviceName:      ServiceName,
		serviceVersion:   ServiceVersion,
		serviceNamespace: ServiceNamespace,
		protocol:         ProtocolGRPC,
		shutdownTimeout:  defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.endpoint == "" {
		o.endpoint = tracesEndpoint(o.protocol)
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch o.protocol {
	case ProtocolHTTP:
		exporter, err = newHTTPExporter(ctx, o)
	default:
		exporter, err = otlptracegrpc.New(ctx, grpcOptions(o)...)
	}
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNamespace(o.serviceNamespace),
			semconv.ServiceName(o.serviceName),
			semconv.ServiceVersion(o.serviceVersion),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(InstrumentName)
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

func grpcOptions(o *options) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(o.endpoint),
		otlptracegrpc.WithInsecure(),
	}
	if len(o.headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(o.headers))
	}
	return opts
}

func newHTTPExporter(ctx context.Context, o *options) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
	if o.endpointURL != "" {
		endpoint, path, err := parseEndpointURL(o.endpointURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithURLPath(path))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(o.endpoint))
	}
	if len(o.headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(o.headers))
	}
	return otlptracehttp.New(ctx, opts...)
}

// parseEndpointURL splits a collector URL into host:port and path.
// The scheme is optional.
func parseEndpointURL(raw string) (string, string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse endpoint url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", "", fmt.Errorf("endpoint url %q has no host", raw)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return u.Host, path, nil
}

func tracesEndpoint(protocol string) string {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		return endpoint
	}
	switch protocol {
	case ProtocolHTTP:
		return "localhost:4318"
	default:
		return "localhost:4317"
	}
}

// Option configures Start.
type Option func(*options)

type options struct {
	endpoint         string
	endpointURL      string
	protocol         string
	headers          map[string]string
	serviceName      string
	serviceVersion   string
	serviceNamespace string
	shutdownTimeout  time.Duration
}

// WithEndpoint sets the collector host:port.
// OTEL_EXPORTER_OTLP_TRACES_ENDPOINT and OTEL_EXPORTER_OTLP_ENDPOINT are used when unset.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithEndpointURL sets a full collector URL for the HTTP protocol, overriding WithEndpoint.
func WithEndpointURL(endpointURL string) Option {
	return func(o *options) {
		o.endpointURL = endpointURL
	}
}

// WithProtocol sets the export protocol, "grpc" (default) or "http".
func WithProtocol(protocol string) Option {
	return func(o *options) {
		o.protocol = protocol
	}
}

// WithHeaders sets headers sent with every export request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithServiceName overrides the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(o *options) {
		o.serviceName = name
	}
}

// WithShutdownTimeout bounds how long the cleanup function waits for pending spans.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}
