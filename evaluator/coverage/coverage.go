//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package coverage provides the tool name coverage evaluator.
package coverage

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Name is the metric name of the coverage evaluator.
const Name = "tool_name_match"

// Labels produced by the evaluator.
const (
	LabelCorrectNoTools  = "correct_no_tools"
	LabelUnexpectedTools = "unexpected_tools"
	LabelPerfectMatch    = "perfect_match"
	LabelGoodMatch       = "good_match"
	LabelPartialMatch    = "partial_match"
	LabelNoMatch         = "no_match"
)

const goodThreshold = 0.7

type coverageEvaluator struct{}

// New creates a tool name coverage evaluator.
func New() evaluator.Evaluator {
	return &coverageEvaluator{}
}

// Name returns the name of this evaluator.
func (e *coverageEvaluator) Name() string {
	return Name
}

// Description returns a description of what this evaluator does.
func (e *coverageEvaluator) Description() string {
	return "Measures the fraction of distinct expected tools that the agent used"
}

// Evaluate computes |used ∩ expected| / |expected| over tool name sets.
// Nil entries, which stand for non-object dataset entries, are ignored on both sides.
func (e *coverageEvaluator) Evaluate(_ context.Context, actual,
	expected []*toolcall.ToolCall) (*evaluator.EvaluationResult, error) {
	actualNames := toolcall.NameSet(actual, true)
	expectedNames := toolcall.NameSet(expected, true)
	if len(expectedNames) == 0 {
		if len(actualNames) == 0 {
			return evaluator.NewResult(1, LabelCorrectNoTools, "No tools expected. Got: none")
		}
		return evaluator.NewResult(0, LabelUnexpectedTools,
			fmt.Sprintf("No tools expected. Got: %s", toolcall.FormatNames(toolcall.Sorted(actualNames))))
	}
	hits := toolcall.Intersect(actualNames, expectedNames)
	score := float64(hits) / float64(len(expectedNames))
	return evaluator.NewResult(score, labelFor(score), fmt.Sprintf("Tool name coverage: %d/%d = %.2f. Expected: %s, Got: %s",
		hits, len(expectedNames), score,
		toolcall.FormatNames(toolcall.Sorted(expectedNames)),
		toolcall.FormatNames(toolcall.Sorted(actualNames))))
}

func labelFor(score float64) string {
	switch {
	case score == 1:
		return LabelPerfectMatch
	case score >= goodThreshold:
		return LabelGoodMatch
	case score > 0:
		return LabelPartialMatch
	default:
		return LabelNoMatch
	}
}
