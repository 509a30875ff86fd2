//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package registry maps metric names to trajectory evaluators.
package registry

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/coverage"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/exactmatch"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/precision"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// DefaultMetrics lists the trajectory metrics in report order.
var DefaultMetrics = []string{exactmatch.Name, precision.Name, coverage.Name}

// Registry holds evaluators by metric name.
type Registry interface {
	// Register adds e under name, or under e.Name() when name is empty.
	// An existing entry is replaced.
	Register(name string, e evaluator.Evaluator) error
	// Get returns the evaluator for name. Missing names wrap os.ErrNotExist.
	Get(name string) (evaluator.Evaluator, error)
	// Resolve returns the evaluators for names in the given order.
	Resolve(names ...string) ([]evaluator.Evaluator, error)
	// List returns the registered names, sorted.
	List() []string
}

type registry struct {
	mu     sync.RWMutex
	byName map[string]evaluator.Evaluator
}

// New returns a registry preloaded with the trajectory evaluators.
func New() Registry {
	r := &registry{byName: make(map[string]evaluator.Evaluator, len(DefaultMetrics))}
	for _, e := range []evaluator.Evaluator{exactmatch.New(), precision.New(), coverage.New()} {
		r.byName[e.Name()] = e
	}
	return r
}

func (r *registry) Register(name string, e evaluator.Evaluator) error {
	if e == nil {
		return fmt.Errorf("register %q: evaluator is nil", name)
	}
	if name == "" {
		if name = e.Name(); name == "" {
			return fmt.Errorf("register: evaluator has no name")
		}
	}
	r.mu.Lock()
	r.byName[name] = e
	r.mu.Unlock()
	return nil
}

func (r *registry) Get(name string) (evaluator.Evaluator, error) {
	r.mu.RLock()
	e, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get evaluator %s: %w", name, os.ErrNotExist)
	}
	return e, nil
}

// Resolve reports every unknown name in one error.
func (r *registry) Resolve(names ...string) ([]evaluator.Evaluator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]evaluator.Evaluator, 0, len(names))
	var missing []string
	for _, name := range names {
		e, ok := r.byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		out = append(out, e)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("resolve evaluators %s: %w", strings.Join(missing, ", "), os.ErrNotExist)
	}
	return out, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// EvaluateAll scores one trajectory with every evaluator, keyed by evaluator name.
func EvaluateAll(ctx context.Context, evaluators []evaluator.Evaluator,
	actual, expected []*toolcall.ToolCall) (map[string]*evaluator.EvaluationResult, error) {
	out := make(map[string]*evaluator.EvaluationResult, len(evaluators))
	for _, e := range evaluators {
		res, err := e.Evaluate(ctx, actual, expected)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", e.Name(), err)
		}
		out[e.Name()] = res
	}
	return out, nil
}
