//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package evalset provides evaluation datasets and their managers.
package evalset

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// EvalSet is an ordered collection of dataset rows.
type EvalSet struct {
	// EvalSetID uniquely identifies this evaluation set.
	EvalSetID string `json:"eval_set_id,omitempty"`
	// EvalCases are the dataset rows in order.
	EvalCases []*EvalCase `json:"eval_cases"`
}

// EvalCase is a single dataset row.
type EvalCase struct {
	// EvalID identifies the row. Filled from the row position when absent.
	EvalID string `json:"eval_id,omitempty"`
	// Query is the user query sent to the agent.
	Query string `json:"query"`
	// ExpectedToolUse is the raw expected tool use, a JSON string or a JSON list.
	// It is parsed when the row is scored, so malformed values fail then.
	ExpectedToolUse toolcall.RawExpected `json:"expected_tool_use,omitempty"`
	// Reference is the reference answer.
	Reference string `json:"reference,omitempty"`
}

// Expected parses the expected tool use of the row.
func (c *EvalCase) Expected() ([]*toolcall.ToolCall, error) {
	return toolcall.ParseExpected(c.ExpectedToolUse)
}

// AssignIDs fills missing EvalIDs as <evalSetID>_<index>, starting at 1.
func (s *EvalSet) AssignIDs() {
	for i, c := range s.EvalCases {
		if c != nil && c.EvalID == "" {
			c.EvalID = fmt.Sprintf("%s_%d", s.EvalSetID, i+1)
		}
	}
}

// Manager loads evaluation sets.
type Manager interface {
	// Get gets an EvalSet identified by evalSetID.
	// Returns an error wrapping os.ErrNotExist when the set does not exist.
	Get(ctx context.Context, evalSetID string) (*EvalSet, error)
	// List lists all EvalSet IDs sorted lexicographically.
	List(ctx context.Context) ([]string, error)
}
