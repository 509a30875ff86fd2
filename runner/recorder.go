//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package runner

import (
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Recorder collects tool invocations as the runtime dispatches them.
// It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []*toolcall.ToolCall
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one invocation.
func (r *Recorder) Record(name, input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, &toolcall.ToolCall{ToolName: name, ToolInput: input})
}

// Calls returns a copy of the recorded invocations.
func (r *Recorder) Calls() []*toolcall.ToolCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*toolcall.ToolCall, len(r.calls))
	for i, c := range r.calls {
		cp := *c
		out[i] = &cp
	}
	return out
}
