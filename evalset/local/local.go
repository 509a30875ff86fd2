//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file manager for evaluation sets.
//
// An evaluation set is a JSON array of rows stored as
// <baseDir>/<evalSetID><suffix>. IDs may contain slashes to address
// nested directories.
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

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	"trpc.group/trpc-go/trpc-agent-eval/log"
)

type manager struct {
	baseDir string
	suffix  string
}

// New creates a local file evaluation set manager.
func New(opt ...evalset.Option) evalset.Manager {
	opts := evalset.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		suffix:  opts.FileSuffix,
	}
}

// Get loads the evaluation set identified by evalSetID.
func (m *manager) Get(_ context.Context, evalSetID string) (*evalset.EvalSet, error) {
	if evalSetID == "" {
		return nil, errors.New("eval set id is empty")
	}
	path := m.path(evalSetID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load eval set %s: %w", evalSetID, err)
	}
	var cases []*evalset.EvalCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("unmarshal eval set %s: %w", evalSetID, err)
	}
	set := &evalset.EvalSet{EvalSetID: evalSetID, EvalCases: make([]*evalset.EvalCase, 0, len(cases))}
	for i, c := range cases {
		if c == nil {
			log.Warnf("eval set %s: skip null row %d", evalSetID, i)
			continue
		}
		set.EvalCases = append(set.EvalCases, c)
	}
	set.AssignIDs()
	log.Debugf("loaded eval set %s with %d rows from %s", evalSetID, len(set.EvalCases), path)
	return set, nil
}

// List returns the IDs of all evaluation set files under the base directory.
func (m *manager) List(_ context.Context) ([]string, error) {
	if _, err := os.Stat(m.baseDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("stat eval set dir %s: %w", m.baseDir, err)
	}
	matches, err := doublestar.Glob(os.DirFS(m.baseDir), "**/*"+m.suffix)
	if err != nil {
		return nil, fmt.Errorf("list eval sets in %s: %w", m.baseDir, err)
	}
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, strings.TrimSuffix(match, m.suffix))
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *manager) path(evalSetID string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(evalSetID)+m.suffix)
}
