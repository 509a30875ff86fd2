//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory manager for evaluation sets.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	"trpc.group/trpc-go/trpc-agent-eval/internal/clone"
)

// Manager is an in-memory evalset.Manager that also accepts new sets.
type Manager struct {
	mu   sync.RWMutex
	sets map[string]*evalset.EvalSet
}

var _ evalset.Manager = (*Manager)(nil)

// New creates an empty in-memory manager.
func New() *Manager {
	return &Manager{sets: make(map[string]*evalset.EvalSet)}
}

// Add stores a copy of set, replacing any set with the same ID.
func (m *Manager) Add(set *evalset.EvalSet) error {
	if set == nil {
		return errors.New("eval set is nil")
	}
	if set.EvalSetID == "" {
		return errors.New("eval set id is empty")
	}
	cloned, err := clone.Clone(set)
	if err != nil {
		return fmt.Errorf("clone eval set %s: %w", set.EvalSetID, err)
	}
	cloned.AssignIDs()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[set.EvalSetID] = cloned
	return nil
}

// Get returns a copy of the set identified by evalSetID.
func (m *Manager) Get(_ context.Context, evalSetID string) (*evalset.EvalSet, error) {
	m.mu.RLock()
	set, ok := m.sets[evalSetID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("eval set %s: %w", evalSetID, os.ErrNotExist)
	}
	cloned, err := clone.Clone(set)
	if err != nil {
		return nil, fmt.Errorf("clone eval set %s: %w", evalSetID, err)
	}
	return cloned, nil
}

// List returns the IDs of all stored sets sorted lexicographically.
func (m *Manager) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sets))
	for id := range m.sets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
