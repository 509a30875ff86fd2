//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trajeval.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, StoreLocal, cfg.Store.Type)
	assert.Equal(t, DefaultBaseURL, cfg.Model.BaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
data_dir: testdata
eval_set: conversation.1
runs_file: runs.json
parallelism: 4
continue_on_error: true
metrics: [trajectory_exact_match, tool_name_match]
thresholds:
  tool_name_match: 0.5
output:
  format: markdown
store:
  type: mysql
  dsn: "user:pass@tcp(localhost:3306)/eval?parseTime=true"
  table_prefix: trpc_
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "testdata", cfg.DataDir)
	assert.Equal(t, "conversation.1", cfg.EvalSet)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, []string{"trajectory_exact_match", "tool_name_match"}, cfg.Metrics)
	assert.Equal(t, 0.5, cfg.Thresholds["tool_name_match"])
	assert.Equal(t, "markdown", cfg.Output.Format)
	// Unset keys keep their defaults.
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, StoreMySQL, cfg.Store.Type)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "unknown_key: 1\n"))
	assert.Error(t, err)

	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvBaseURL, "http://proxy:8000/v1")
	t.Setenv(EnvOTLPEndpoint, "collector:4317")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "sk-test", cfg.Model.APIKey)
	assert.Equal(t, "http://proxy:8000/v1", cfg.Model.BaseURL)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)

	cfg = Default()
	cfg.Model.APIKey = "from-file"
	cfg.Model.BaseURL = "http://file:9000/v1"
	cfg.ApplyEnv()
	assert.Equal(t, "from-file", cfg.Model.APIKey)
	assert.Equal(t, "http://file:9000/v1", cfg.Model.BaseURL)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.EvalSet = ""
	cfg.Parallelism = 0
	cfg.Output.Format = "pdf"
	cfg.Store = StoreConfig{Type: StoreMySQL}
	cfg.Thresholds = map[string]float64{"tool_name_match": 1.5}
	cfg.LogLevel = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"eval_set", "parallelism", "pdf", "store.dsn", "tool_name_match", "verbose"} {
		assert.Contains(t, err.Error(), want)
	}

	cfg = Default()
	cfg.Store.Type = "redis"
	assert.ErrorContains(t, cfg.Validate(), "redis")

	cfg = Default()
	cfg.EvalSet = ""
	cfg.Serve = ":8080"
	assert.NoError(t, cfg.Validate())
}
