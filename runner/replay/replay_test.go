//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

const runsFile = `[
  {"query": "weather in paris", "response": "Sunny.", "tool_calls": [{"tool_name": "search", "tool_input": {"q": "paris weather"}}]},
  {"query": "hello", "response": "Hi!", "tool_calls": []}
]`

func TestLoadAndRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	require.NoError(t, os.WriteFile(path, []byte(runsFile), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	run, err := r.Run(context.Background(), "weather in paris")
	require.NoError(t, err)
	assert.Equal(t, "Sunny.", run.Response)
	assert.Equal(t, []*toolcall.ToolCall{{ToolName: "search", ToolInput: `{"q":"paris weather"}`}}, run.ToolCalls)

	run, err = r.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, run.ToolCalls)

	_, err = r.Run(context.Background(), "unknown")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"query":`), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestRunner_AddAndCancel(t *testing.T) {
	r := New()
	r.Add("q", &runner.Run{Response: "a", ToolCalls: []*toolcall.ToolCall{{ToolName: "calc"}}})
	run, err := r.Run(context.Background(), "q")
	require.NoError(t, err)
	run.ToolCalls[0].ToolName = "mutated"

	again, err := r.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "calc", again.ToolCalls[0].ToolName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx, "q")
	assert.ErrorIs(t, err, context.Canceled)
}
