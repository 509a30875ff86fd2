//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package runner defines how an agent under evaluation is driven.
package runner

import (
	"context"

	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Run is the outcome of one agent run.
type Run struct {
	// Response is the final answer text.
	Response string `json:"response"`
	// ToolCalls are the tools the agent invoked, in invocation order.
	ToolCalls []*toolcall.ToolCall `json:"tool_calls"`
}

// Runner runs an agent on a single query.
type Runner interface {
	Run(ctx context.Context, query string) (*Run, error)
}

// Func adapts a plain function to Runner.
type Func func(ctx context.Context, query string) (*Run, error)

// Run calls f.
func (f Func) Run(ctx context.Context, query string) (*Run, error) {
	return f(ctx, query)
}
