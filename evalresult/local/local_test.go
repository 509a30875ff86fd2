//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/report"
	"trpc.group/trpc-go/trpc-agent-eval/status"
)

func sampleReport() *report.Report {
	return &report.Report{
		EvalSetID: "rag",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics:   []string{"tool_name_match"},
		Rows: []*report.Row{{
			EvalID: "rag_1",
			Query:  "weather",
			Metrics: []*report.MetricResult{{
				Name:      "tool_name_match",
				Result:    evaluator.MustResult(0.5, "partial_match", "Tool name coverage: 1/2 = 0.50"),
				Threshold: 0.7,
				Status:    status.EvalStatusFailed,
			}},
			Status: status.EvalStatusFailed,
		}},
		Status: status.EvalStatusFailed,
	}
}

func TestManager_SaveGetList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(evalresult.WithBaseDir(filepath.Join(dir, "results")))
	defer m.Close()

	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	id, err := m.Save(ctx, sampleReport())
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "results", id+FileSuffix))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "results", id+FileSuffix+".tmp"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ResultID)
	assert.Equal(t, status.EvalStatusFailed, got.Status)
	require.Len(t, got.Rows, 1)
	res := got.Rows[0].Metrics[0].Result
	assert.Equal(t, 0.5, res.Score())
	assert.Equal(t, "partial_match", res.Label())

	rep := sampleReport()
	rep.ResultID = "a_first"
	_, err = m.Save(ctx, rep)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "results", "ignored.txt"), []byte("x"), 0o644))

	ids, err = m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a_first", id}, ids)
}

func TestManager_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := New(evalresult.WithBaseDir(dir))

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = m.Get(ctx, "../etc/passwd")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken"+FileSuffix), []byte("{"), 0o644))
	_, err = m.Get(ctx, "broken")
	assert.Error(t, err)

	_, err = m.Save(ctx, nil)
	assert.Error(t, err)
}
