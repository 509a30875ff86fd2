//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/report"
	"trpc.group/trpc-go/trpc-agent-eval/status"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

func sampleReport() *report.Report {
	return &report.Report{
		EvalSetID: "rag",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics:   []string{"trajectory_precision"},
		Rows: []*report.Row{{
			EvalID:    "rag_1",
			Query:     "q",
			ToolCalls: []*toolcall.ToolCall{{ToolName: "search"}},
			Metrics: []*report.MetricResult{{
				Name:      "trajectory_precision",
				Result:    evaluator.MustResult(1, "perfect", "Precision: 1/1 = 1.00"),
				Threshold: 0.7,
				Status:    status.EvalStatusPassed,
			}},
			Status: status.EvalStatusPassed,
		}},
		Status: status.EvalStatusPassed,
	}
}

func TestManager_SaveGetList(t *testing.T) {
	ctx := context.Background()
	m := New()
	defer m.Close()

	rep := sampleReport()
	id, err := m.Save(ctx, rep)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "rag_"))
	assert.Empty(t, rep.ResultID, "input report is not modified")

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ResultID)
	assert.True(t, rep.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, 1.0, got.Rows[0].Metrics[0].Result.Score())

	got.Rows[0].Query = "mutated"
	again, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "q", again.Rows[0].Query)

	rep.ResultID = "fixed"
	_, err = m.Save(ctx, rep)
	require.NoError(t, err)
	ids, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fixed", id}, ids)
}

func TestManager_Errors(t *testing.T) {
	ctx := context.Background()
	m := New()
	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = m.Save(ctx, nil)
	assert.Error(t, err)
	_, err = m.Save(ctx, &report.Report{})
	assert.Error(t, err)
}
