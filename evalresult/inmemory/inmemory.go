//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for evaluation reports.
package inmemory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/internal/clone"
	"trpc.group/trpc-go/trpc-agent-eval/report"
)

// Manager implements evalresult.Manager in memory. Reports are deep copied
// on the way in and out.
type Manager struct {
	mu      sync.RWMutex
	reports map[string]*report.Report
}

var _ evalresult.Manager = (*Manager)(nil)

// New creates an empty in-memory manager.
func New() *Manager {
	return &Manager{reports: make(map[string]*report.Report)}
}

// Save stores a copy of rep.
func (m *Manager) Save(_ context.Context, rep *report.Report) (string, error) {
	id, err := evalresult.ResolveID(rep)
	if err != nil {
		return "", err
	}
	cp, err := clone.Clone(rep)
	if err != nil {
		return "", fmt.Errorf("clone report: %w", err)
	}
	cp.ResultID = id
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[id] = cp
	return id, nil
}

// Get returns a copy of the stored report.
func (m *Manager) Get(_ context.Context, resultID string) (*report.Report, error) {
	m.mu.RLock()
	rep, ok := m.reports[resultID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("eval result %s not found: %w", resultID, os.ErrNotExist)
	}
	return clone.Clone(rep)
}

// List returns the stored IDs sorted lexicographically.
func (m *Manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.reports))
	for id := range m.reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (m *Manager) Close() error {
	return nil
}
