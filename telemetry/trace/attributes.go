//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package trace

// Span names.
const (
	SpanEvaluateEvalSet = "evaluate_eval_set"
	SpanEvaluateCase    = "evaluate_case"
	SpanEvaluateMetric  = "evaluate_metric"
)

// Span attribute keys.
const (
	KeyEvalSetID   = "trpc_agent_eval.eval_set_id"
	KeyEvalID      = "trpc_agent_eval.eval_id"
	KeyCaseCount   = "trpc_agent_eval.case_count"
	KeyQuery       = "trpc_agent_eval.query"
	KeyToolCount   = "trpc_agent_eval.tool_count"
	KeyMetricName  = "trpc_agent_eval.metric"
	KeyScore       = "trpc_agent_eval.score"
	KeyLabel       = "trpc_agent_eval.label"
	KeyEvalStatus  = "trpc_agent_eval.status"
	KeyParallelism = "trpc_agent_eval.parallelism"
)
