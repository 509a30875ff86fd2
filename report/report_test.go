//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/status"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

func sampleReport() *Report {
	r := &Report{
		EvalSetID: "conversation",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Metrics:   []string{"exact", "precision"},
		Rows: []*Row{
			{
				EvalID:    "conversation_1",
				Query:     "What | is revenue?",
				Response:  "According to the filing...",
				ToolCalls: []*toolcall.ToolCall{{ToolName: "search"}},
				Metrics: []*MetricResult{
					{Name: "exact", Result: evaluator.MustResult(1, "exact_match", "ok"), Threshold: 1, Status: status.EvalStatusPassed},
					{Name: "precision", Result: evaluator.MustResult(1, "high_precision", "ok"), Threshold: 0.7, Status: status.EvalStatusPassed},
				},
				Status: status.EvalStatusPassed,
			},
			{
				EvalID:    "conversation_2",
				Query:     "Hello",
				ToolCalls: []*toolcall.ToolCall{{ToolName: "search"}, {ToolName: "calc"}},
				Metrics: []*MetricResult{
					{Name: "exact", Result: evaluator.MustResult(0, "no_exact_match", "len"), Threshold: 1, Status: status.EvalStatusFailed},
					{Name: "precision", Result: evaluator.MustResult(0.5, "low_precision", "half"), Threshold: 0.7, Status: status.EvalStatusFailed},
				},
				Status: status.EvalStatusFailed,
			},
			{
				EvalID: "conversation_3",
				Query:  "Broken",
				Status: status.EvalStatusNotEvaluated,
				Error:  "agent unavailable",
			},
		},
	}
	r.Summarize()
	return r
}

func TestSummarize(t *testing.T) {
	r := sampleReport()
	require.Len(t, r.Summary, 2)
	assert.Equal(t, "exact", r.Summary[0].Name)
	assert.InDelta(t, 0.5, r.Summary[0].MeanScore, 1e-9)
	assert.Equal(t, 1, r.Summary[0].Passed)
	assert.Equal(t, 2, r.Summary[0].Evaluated)
	assert.InDelta(t, 0.75, r.Summary[1].MeanScore, 1e-9)
	assert.Equal(t, status.EvalStatusFailed, r.Status)
}

func TestSummarize_Empty(t *testing.T) {
	r := &Report{Metrics: []string{"exact"}}
	r.Summarize()
	require.Len(t, r.Summary, 1)
	assert.Equal(t, 0.0, r.Summary[0].MeanScore)
	assert.Equal(t, status.EvalStatusNotEvaluated, r.Status)
}

func TestHeaderAndRecords(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, []string{"eval_id", "query", "exact_score", "exact_label", "precision_score", "precision_label", "status"}, r.Header())
	records := r.Records()
	require.Len(t, records, 3)
	assert.Equal(t, []string{"conversation_2", "Hello", "0.00", "no_exact_match", "0.50", "low_precision", "failed"}, records[1])
	assert.Equal(t, []string{"conversation_3", "Broken", "", "", "", "", "not_evaluated"}, records[2])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "What | is revenue?", rows[1][1])
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, "eval_id")
	assert.Contains(t, out, "low_precision")
	assert.Contains(t, out, "Eval set: conversation  Status: failed")
	assert.Contains(t, out, "precision: mean 0.75, passed 1/2")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteMarkdown(&buf))
	out := buf.String()
	assert.Contains(t, out, "| eval_id | query |")
	assert.Contains(t, out, `What \| is revenue?`)
	assert.Contains(t, out, "## Summary")
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().RenderHTML(&buf))
	out := buf.String()
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "eval_id")
	assert.Contains(t, out, "<h1>")
}

func TestWrite_Formats(t *testing.T) {
	r := sampleReport()
	for _, format := range []string{"", FormatText, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, r.Write(&buf, format), format)
		assert.NotEmpty(t, buf.String(), format)
	}
	assert.Error(t, r.Write(&bytes.Buffer{}, "yaml"))
}

func TestReport_JSONRoundTrip(t *testing.T) {
	r := sampleReport()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"status":"failed"`))

	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, r.EvalSetID, decoded.EvalSetID)
	require.Len(t, decoded.Rows, 3)
	m := decoded.Rows[1].Metric("precision")
	require.NotNil(t, m)
	assert.Equal(t, 0.5, m.Result.Score())
	assert.Equal(t, "low_precision", m.Result.Label())
	assert.Nil(t, decoded.Rows[1].Metric("missing"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
	assert.Equal(t, "a b c", truncate("a\tb\r\nc", 10))
}

func TestWriteText_TabsStayInCell(t *testing.T) {
	r := &Report{
		EvalSetID: "tabs",
		Rows: []*Row{
			{EvalID: "id\t1", Query: "what\tis\trevenue", Status: status.EvalStatusPassed},
			{EvalID: "id_2", Query: "plain", Status: status.EvalStatusFailed},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	col := strings.Index(lines[0], "status")
	require.Positive(t, col)
	assert.Equal(t, col, strings.Index(lines[1], "passed"), buf.String())
	assert.Equal(t, col, strings.Index(lines[2], "failed"), buf.String())
	assert.Contains(t, lines[1], "what is revenue")
	assert.Contains(t, lines[1], "id 1")
}
