//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package retrieve

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "filings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filings", "10k.md"), []byte(
		"Alphabet revenue grew in 2023.\n\nCloud revenue and operating income improved.\n\nHeadcount was reduced."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("Revenue notes for the cloud segment."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.json"), []byte(`{"revenue": 1}`), 0o644))
	return dir
}

func TestRetrieve(t *testing.T) {
	tl, err := New(writeDocs(t), WithTopK(2))
	require.NoError(t, err)
	assert.Equal(t, DefaultName, tl.Declaration().Name)
	assert.Contains(t, tl.Declaration().Parameters, "properties")

	out, err := tl.Call(context.Background(), []byte(`{"query_text":"cloud revenue"}`))
	require.NoError(t, err)
	var results []string
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Contains(t, results[0], "Source: filings/10k.md (Chunk ID: 1)")
	assert.Contains(t, results[0], "Cloud revenue and operating income")
	assert.Contains(t, results[1], "notes.txt")
}

func TestRetrieve_NoMatch(t *testing.T) {
	tl, err := New(writeDocs(t), WithName("ask_docs"))
	require.NoError(t, err)
	assert.Equal(t, "ask_docs", tl.Declaration().Name)

	out, err := tl.Call(context.Background(), []byte(`{"query_text":"zebra"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	out, err = tl.Call(context.Background(), []byte(`{"query_text":"a"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}

func TestRetrieve_EmptyDir(t *testing.T) {
	tl, err := New(filepath.Join(t.TempDir(), "missing"), WithPattern("**/*.md"))
	require.NoError(t, err)
	out, err := tl.Call(context.Background(), []byte(`{"query_text":"revenue"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)
}
