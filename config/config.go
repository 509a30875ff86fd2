//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package config loads the trajeval command configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/report"
)

// Store types.
const (
	StoreLocal    = "local"
	StoreInMemory = "inmemory"
	StoreMySQL    = "mysql"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvBaseURL      = "OPENAI_BASE_URL"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

// DefaultBaseURL is the local OpenAI-compatible endpoint used when none is configured.
const DefaultBaseURL = "http://localhost:11434/v1"

// Config is the trajeval configuration.
type Config struct {
	// DataDir holds evaluation set files.
	DataDir string `yaml:"data_dir"`
	// EvalSet is the evaluation set ID to run.
	EvalSet string `yaml:"eval_set"`
	// RunsFile selects the replay runner when set.
	RunsFile string `yaml:"runs_file"`
	// DocsDir is the root of the retrieval tool documents.
	DocsDir         string             `yaml:"docs_dir"`
	Model           ModelConfig        `yaml:"model"`
	Output          OutputConfig       `yaml:"output"`
	Parallelism     int                `yaml:"parallelism"`
	ContinueOnError bool               `yaml:"continue_on_error"`
	Metrics         []string           `yaml:"metrics"`
	Thresholds      map[string]float64 `yaml:"thresholds"`
	Store           StoreConfig        `yaml:"store"`
	Telemetry       TelemetryConfig    `yaml:"telemetry"`
	LogLevel        string             `yaml:"log_level"`
	// Serve starts the HTTP server on this address instead of running once.
	Serve string `yaml:"serve"`
}

// ModelConfig configures the OpenAI-compatible runner.
type ModelConfig struct {
	Name          string `yaml:"name"`
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key"`
	SystemPrompt  string `yaml:"system_prompt"`
	MaxIterations int    `yaml:"max_iterations"`
}

// OutputConfig configures report output.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// StoreConfig selects the result store.
type StoreConfig struct {
	Type        string `yaml:"type"`
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`
}

// TelemetryConfig configures OTLP export.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
	Protocol string `yaml:"protocol"`
	Traces   bool   `yaml:"traces"`
	Metrics  bool   `yaml:"metrics"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir: "data",
		EvalSet: "conversation",
		Model: ModelConfig{
			Name:    "gpt-oss:20b",
			BaseURL: DefaultBaseURL,
		},
		Output: OutputConfig{
			Dir:    "output",
			Format: report.FormatText,
		},
		Parallelism: 1,
		Store:       StoreConfig{Type: StoreLocal},
		Telemetry:   TelemetryConfig{Protocol: "grpc"},
		LogLevel:    "info",
	}
}

// Load reads path over Default. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv fills unset secrets and endpoints from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" && (c.Model.BaseURL == "" || c.Model.BaseURL == DefaultBaseURL) {
		c.Model.BaseURL = v
	}
	if v := os.Getenv(EnvOTLPEndpoint); v != "" && c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = v
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Serve == "" && c.EvalSet == "" {
		errs = append(errs, errors.New("eval_set is required"))
	}
	if c.RunsFile == "" && c.Model.Name == "" && c.Serve == "" {
		errs = append(errs, errors.New("model.name is required without runs_file"))
	}
	if c.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism))
	}
	switch c.Output.Format {
	case "", report.FormatText, report.FormatCSV, report.FormatMarkdown, report.FormatHTML, report.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}
	switch c.Store.Type {
	case StoreLocal, StoreInMemory:
	case StoreMySQL:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store type %q", c.Store.Type))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for name, t := range c.Thresholds {
		if t < 0 || t > 1 {
			errs = append(errs, fmt.Errorf("threshold for %s must be within [0, 1], got %v", name, t))
		}
	}
	return errors.Join(errs...)
}
