//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package precision provides the tool precision evaluator.
//
// Precision is the fraction of distinct tools the agent used that were
// expected. Using extra tools lowers the score; missing expected tools
// does not.
package precision

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Name is the metric name of the precision evaluator.
const Name = "trajectory_precision"

// Labels produced by the evaluator.
const (
	LabelPerfect         = "perfect"
	LabelUnexpectedTools = "unexpected_tools"
	LabelNoToolsUsed     = "no_tools_used"
	LabelHighPrecision   = "high_precision"
	LabelMediumPrecision = "medium_precision"
	LabelLowPrecision    = "low_precision"
)

const (
	highThreshold   = 0.9
	mediumThreshold = 0.7
)

type precisionEvaluator struct{}

// New creates a precision evaluator.
func New() evaluator.Evaluator {
	return &precisionEvaluator{}
}

// Name returns the name of this evaluator.
func (e *precisionEvaluator) Name() string {
	return Name
}

// Description returns a description of what this evaluator does.
func (e *precisionEvaluator) Description() string {
	return "Measures the fraction of distinct tools used that were expected"
}

// Evaluate computes |used ∩ expected| / |used| over tool name sets.
func (e *precisionEvaluator) Evaluate(_ context.Context, actual,
	expected []*toolcall.ToolCall) (*evaluator.EvaluationResult, error) {
	if len(expected) == 0 {
		if len(actual) == 0 {
			return evaluator.NewResult(1, LabelPerfect, "No tools expected")
		}
		return evaluator.NewResult(0, LabelUnexpectedTools,
			fmt.Sprintf("No tools expected, but got %d tools", len(actual)))
	}
	actualNames := toolcall.NameSet(actual, false)
	expectedNames := toolcall.NameSet(expected, false)
	if len(actualNames) == 0 {
		return evaluator.NewResult(0, LabelNoToolsUsed, "No tools used when tools were expected")
	}
	hits := toolcall.Intersect(actualNames, expectedNames)
	score := float64(hits) / float64(len(actualNames))
	return evaluator.NewResult(score, labelFor(score), fmt.Sprintf("Precision: %d/%d = %.2f. Expected: %s, Used: %s",
		hits, len(actualNames), score,
		toolcall.FormatNames(toolcall.Sorted(expectedNames)),
		toolcall.FormatNames(toolcall.Sorted(actualNames))))
}

func labelFor(score float64) string {
	switch {
	case score >= highThreshold:
		return LabelHighPrecision
	case score >= mediumThreshold:
		return LabelMediumPrecision
	default:
		return LabelLowPrecision
	}
}
