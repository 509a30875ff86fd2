//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package evaluator defines the trajectory evaluator contract and its result value.
package evaluator

import (
	"context"

	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Evaluator scores the tool calls an agent made against the tool calls a dataset row expects.
// Implementations are pure and safe for concurrent use.
type Evaluator interface {
	// Name returns the metric name of the evaluator.
	Name() string
	// Description returns a description of what the evaluator measures.
	Description() string
	// Evaluate compares actual against expected and returns the result.
	Evaluate(ctx context.Context, actual, expected []*toolcall.ToolCall) (*EvaluationResult, error)
}
