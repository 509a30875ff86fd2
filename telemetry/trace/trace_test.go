//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package trace

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
)

func TestTracesEndpoint(t *testing.T) {
	const (
		customEndpoint  = "custom-trace:4317"
		genericEndpoint = "generic-endpoint:4317"
	)

	// Case 1: specific variable has precedence over generic.
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", customEndpoint)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", genericEndpoint)
	if ep := tracesEndpoint(ProtocolGRPC); ep != customEndpoint {
		t.Fatalf("expected %s, got %s", customEndpoint, ep)
	}

	// Case 2: fallback to generic when specific is empty.
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
	if ep := tracesEndpoint(ProtocolGRPC); ep != genericEndpoint {
		t.Fatalf("expected %s, got %s", genericEndpoint, ep)
	}

	// Case 3: protocol defaults when none set.
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	if ep := tracesEndpoint(ProtocolGRPC); ep != "localhost:4317" {
		t.Fatalf("unexpected grpc default %s", ep)
	}
	if ep := tracesEndpoint(ProtocolHTTP); ep != "localhost:4318" {
		t.Fatalf("unexpected http default %s", ep)
	}
}

func TestParseEndpointURL(t *testing.T) {
	cases := []struct {
		name      string
		in        string
		endpoint  string
		urlPath   string
		wantError bool
	}{
		{"with scheme and path", "http://localhost:6006/v1/traces", "localhost:6006", "/v1/traces", false},
		{"without scheme", "collector:4318/otlp/v1/traces", "collector:4318", "/otlp/v1/traces", false},
		{"no path implies slash", "example.com", "example.com", "/", false},
		{"no host error", "http:///missing-host", "", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			endp, path, err := parseEndpointURL(tc.in)
			if tc.wantError {
				if err == nil {
					t.Fatalf("expected error, got none (endpoint=%q, path=%q)", endp, path)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if endp != tc.endpoint || path != tc.urlPath {
				t.Fatalf("expected (%q,%q), got (%q,%q)", tc.endpoint, tc.urlPath, endp, path)
			}
		})
	}
}

// TestStartInstallsProvider checks Start for both protocols.
// Cleanup errors are ignored as no collector runs in tests.
func TestStartInstallsProvider(t *testing.T) {
	oldTracer := Tracer
	oldProvider := otel.GetTracerProvider()
	t.Cleanup(func() {
		Tracer = oldTracer
		otel.SetTracerProvider(oldProvider)
	})

	ctx := context.Background()
	for _, protocol := range []string{ProtocolGRPC, ProtocolHTTP} {
		clean, err := Start(ctx,
			WithProtocol(protocol),
			WithEndpoint("localhost:4317"),
			WithHeaders(map[string]string{"k": "v"}),
			WithServiceName("trajeval-test"),
			WithShutdownTimeout(100*time.Millisecond),
		)
		if err != nil {
			t.Fatalf("Start(%s) returned error: %v", protocol, err)
		}
		_, span := Tracer.Start(ctx, "test-span")
		if !span.SpanContext().IsValid() {
			t.Fatalf("expected a recording span from the installed provider")
		}
		span.End()
		_ = clean()
	}
}

func TestStartHTTP_InvalidEndpointURL(t *testing.T) {
	_, err := Start(context.Background(),
		WithProtocol(ProtocolHTTP),
		WithEndpointURL("http:///bad"),
	)
	if err == nil {
		t.Fatalf("expected error from invalid endpoint URL")
	}
}
