//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package replay answers queries from previously recorded agent runs.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// Record is one recorded run as stored on disk.
type Record struct {
	Query     string               `json:"query"`
	Response  string               `json:"response"`
	ToolCalls []*toolcall.ToolCall `json:"tool_calls"`
}

// Runner replays recorded runs keyed by query.
type Runner struct {
	mu   sync.RWMutex
	runs map[string]*Record
}

var _ runner.Runner = (*Runner)(nil)

// New creates a Runner from records. Later records win on duplicate queries.
func New(records ...*Record) *Runner {
	r := &Runner{runs: make(map[string]*Record, len(records))}
	for _, rec := range records {
		if rec != nil {
			r.runs[rec.Query] = rec
		}
	}
	return r
}

// Load reads a JSON array of records from path.
func Load(path string) (*Runner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read runs file %s: %w", path, err)
	}
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal runs file %s: %w", path, err)
	}
	return New(records...), nil
}

// Add records run as the answer to query.
func (r *Runner) Add(query string, run *runner.Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[query] = &Record{Query: query, Response: run.Response, ToolCalls: run.ToolCalls}
}

// Run returns the recorded run for query.
func (r *Runner) Run(ctx context.Context, query string) (*runner.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	rec, ok := r.runs[query]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no recorded run for query %q: %w", query, os.ErrNotExist)
	}
	calls := make([]*toolcall.ToolCall, 0, len(rec.ToolCalls))
	for _, c := range rec.ToolCalls {
		if c == nil {
			continue
		}
		cp := *c
		calls = append(calls, &cp)
	}
	return &runner.Run{Response: rec.Response, ToolCalls: calls}, nil
}
