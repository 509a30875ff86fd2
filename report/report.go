//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package report holds the tabular outcome of an evaluation run.
package report

import (
	"time"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/status"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Report is the result of evaluating one evaluation set.
type Report struct {
	// ResultID identifies the stored report. Assigned on save when empty.
	ResultID string `json:"result_id,omitempty"`
	// EvalSetID identifies the evaluated set.
	EvalSetID string `json:"eval_set_id"`
	// CreatedAt is when the evaluation finished.
	CreatedAt time.Time `json:"created_at"`
	// Metrics lists the metric names in column order.
	Metrics []string `json:"metrics"`
	// Rows holds one entry per dataset row, in dataset order.
	Rows []*Row `json:"rows"`
	// Summary aggregates scores per metric.
	Summary []*MetricSummary `json:"summary,omitempty"`
	// Status is passed when every evaluated row passed.
	Status status.EvalStatus `json:"status"`
}

// Row is the outcome of a single dataset row.
type Row struct {
	EvalID    string               `json:"eval_id"`
	Query     string               `json:"query"`
	Response  string               `json:"response"`
	Reference string               `json:"reference,omitempty"`
	ToolCalls []*toolcall.ToolCall `json:"tool_calls"`
	Metrics   []*MetricResult      `json:"metrics"`
	Status    status.EvalStatus    `json:"status"`
	// Error holds the agent run error when the row could not be scored.
	Error string `json:"error,omitempty"`
}

// MetricResult is one evaluator's result on one row.
type MetricResult struct {
	Name      string                      `json:"name"`
	Result    *evaluator.EvaluationResult `json:"result"`
	Threshold float64                     `json:"threshold"`
	Status    status.EvalStatus           `json:"status"`
}

// MetricSummary aggregates one metric across rows.
type MetricSummary struct {
	Name      string  `json:"name"`
	MeanScore float64 `json:"mean_score"`
	Passed    int     `json:"passed"`
	Evaluated int     `json:"evaluated"`
}

// Metric returns the named metric result of the row, or nil.
func (r *Row) Metric(name string) *MetricResult {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Summarize recomputes Summary and Status from Rows.
func (r *Report) Summarize() {
	summaries := make([]*MetricSummary, 0, len(r.Metrics))
	for _, name := range r.Metrics {
		s := &MetricSummary{Name: name}
		var total float64
		for _, row := range r.Rows {
			m := row.Metric(name)
			if m == nil || m.Result == nil {
				continue
			}
			s.Evaluated++
			total += m.Result.Score()
			if m.Status == status.EvalStatusPassed {
				s.Passed++
			}
		}
		if s.Evaluated > 0 {
			s.MeanScore = total / float64(s.Evaluated)
		}
		summaries = append(summaries, s)
	}
	r.Summary = summaries

	statuses := make([]status.EvalStatus, 0, len(r.Rows))
	for _, row := range r.Rows {
		statuses = append(statuses, row.Status)
	}
	r.Status = status.Combine(statuses...)
}
