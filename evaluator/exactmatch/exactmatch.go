//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package exactmatch provides the ordered tool sequence evaluator.
package exactmatch

import (
	"context"
	"fmt"
	"slices"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Name is the metric name of the exact match evaluator.
const Name = "trajectory_exact_match"

// Labels produced by the evaluator.
const (
	LabelExactMatch   = "exact_match"
	LabelNoExactMatch = "no_exact_match"
)

type exactMatchEvaluator struct{}

// New creates an exact match evaluator.
func New() evaluator.Evaluator {
	return &exactMatchEvaluator{}
}

// Name returns the name of this evaluator.
func (e *exactMatchEvaluator) Name() string {
	return Name
}

// Description returns a description of what this evaluator does.
func (e *exactMatchEvaluator) Description() string {
	return "Checks that the agent called exactly the expected tools in the expected order"
}

// Evaluate compares the ordered tool name sequences of actual and expected.
// Order matters: the same tools in a different order do not match.
func (e *exactMatchEvaluator) Evaluate(_ context.Context, actual,
	expected []*toolcall.ToolCall) (*evaluator.EvaluationResult, error) {
	if len(actual) != len(expected) {
		return evaluator.NewResult(0, LabelNoExactMatch,
			fmt.Sprintf("Length mismatch: expected %d, got %d", len(expected), len(actual)))
	}
	actualNames := toolcall.Names(actual)
	expectedNames := toolcall.Names(expected)
	score, label := 0.0, LabelNoExactMatch
	if slices.Equal(actualNames, expectedNames) {
		score, label = 1.0, LabelExactMatch
	}
	return evaluator.NewResult(score, label, fmt.Sprintf("Tool sequence match: expected %s, got %s",
		toolcall.FormatNames(expectedNames), toolcall.FormatNames(actualNames)))
}
