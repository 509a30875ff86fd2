//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/config"
	"trpc.group/trpc-go/trpc-agent-eval/runner/openai"
	"trpc.group/trpc-go/trpc-agent-eval/runner/replay"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

const evalSetJSON = `[
  {"eval_id": "search", "query": "find revenue", "expected_tool_use": "[{\"tool_name\": \"search\", \"tool_input\": \"revenue\"}]"},
  {"eval_id": "none", "query": "say hi", "expected_tool_use": []}
]`

const runsJSON = `[
  {"query": "find revenue", "response": "Revenue grew.", "tool_calls": [{"tool_name": "search", "tool_input": "revenue"}]},
  {"query": "say hi", "response": "hi", "tool_calls": []}
]`

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "conversation.test.json"), []byte(evalSetJSON), 0o644))
	runs := filepath.Join(dir, "runs.json")
	require.NoError(t, os.WriteFile(runs, []byte(runsJSON), 0o644))

	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.RunsFile = runs
	cfg.Output.Dir = filepath.Join(dir, "output")
	cfg.Output.Format = "csv"
	return cfg
}

func TestRun_Replay(t *testing.T) {
	cfg := newTestConfig(t)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "eval_id,query,trajectory_exact_match_score"))
	assert.Contains(t, lines[1], "search,find revenue,1.00")
	assert.Contains(t, lines[2], "none,say hi")

	matches, err := filepath.Glob(filepath.Join(cfg.Output.Dir, "conversation_*.evalresult.json"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRun_InMemoryMarkdown(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Store.Type = config.StoreInMemory
	cfg.Output.Format = "markdown"
	cfg.Parallelism = 2
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &out))
	assert.Contains(t, out.String(), "| eval_id |")
	_, err := os.Stat(cfg.Output.Dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_Errors(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.EvalSet = "missing"
	err := run(context.Background(), cfg, &bytes.Buffer{})
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg = newTestConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "conversation.test.json"),
		[]byte(`[{"query": "find revenue", "expected_tool_use": "[{not json"}]`), 0o644))
	err = run(context.Background(), cfg, &bytes.Buffer{})
	var parseErr *toolcall.ParseError
	assert.ErrorAs(t, err, &parseErr)

	cfg = newTestConfig(t)
	cfg.RunsFile = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, run(context.Background(), cfg, &bytes.Buffer{}))
}

func TestNewRunner(t *testing.T) {
	cfg := newTestConfig(t)
	r, err := newRunner(cfg)
	require.NoError(t, err)
	assert.IsType(t, &replay.Runner{}, r)

	cfg.RunsFile = ""
	cfg.DocsDir = t.TempDir()
	cfg.Model.MaxIterations = 3
	r, err = newRunner(cfg)
	require.NoError(t, err)
	assert.IsType(t, &openai.Runner{}, r)
}

func TestNewResultManager(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	m, err := newResultManager(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	cfg.Store.Type = config.StoreInMemory
	m, err = newResultManager(cfg)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	cfg.Store = config.StoreConfig{Type: config.StoreMySQL, DSN: "root@tcp(127.0.0.1:3306)/db", TablePrefix: "bad-prefix"}
	_, err = newResultManager(cfg)
	assert.ErrorContains(t, err, "invalid table prefix")
}

func TestStartTelemetry_Disabled(t *testing.T) {
	cleanup, recorder, err := startTelemetry(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NotNil(t, recorder)
	assert.NoError(t, cleanup())
}
