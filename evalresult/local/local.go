//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage implementation for evaluation reports.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/report"
)

// FileSuffix is appended to the result ID to form the file name.
const FileSuffix = ".evalresult.json"

// manager implements the evalresult.Manager interface using local file storage.
type manager struct {
	baseDir string
	mu      sync.Mutex
}

// New creates a local file evaluation result manager.
func New(opt ...evalresult.Option) evalresult.Manager {
	opts := evalresult.NewOptions(opt...)
	return &manager{baseDir: opts.BaseDir}
}

// Save writes rep to <baseDir>/<id>.evalresult.json through a temp file.
func (m *manager) Save(_ context.Context, rep *report.Report) (string, error) {
	id, err := evalresult.ResolveID(rep)
	if err != nil {
		return "", err
	}
	stored := *rep
	stored.ResultID = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := os.MkdirAll(m.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create result dir: %w", err)
	}
	path := m.resultPath(id)
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open temp file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&stored); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("encode report %s: %w", id, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename report %s: %w", id, err)
	}
	return id, nil
}

// Get loads a report from its file.
func (m *manager) Get(_ context.Context, resultID string) (*report.Report, error) {
	if err := evalresult.ValidateID(resultID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(resultID)
}

// List returns the IDs of all result files sorted lexicographically.
func (m *manager) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read result dir: %w", err)
	}
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), FileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op.
func (m *manager) Close() error {
	return nil
}

func (m *manager) resultPath(resultID string) string {
	return filepath.Join(m.baseDir, resultID+FileSuffix)
}

func (m *manager) load(resultID string) (*report.Report, error) {
	f, err := os.Open(m.resultPath(resultID))
	if err != nil {
		return nil, fmt.Errorf("open eval result %s: %w", resultID, err)
	}
	defer f.Close()
	var rep report.Report
	if err := json.NewDecoder(f).Decode(&rep); err != nil {
		return nil, fmt.Errorf("decode eval result %s: %w", resultID, err)
	}
	return &rep, nil
}
