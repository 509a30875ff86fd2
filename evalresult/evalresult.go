//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package evalresult stores evaluation reports.
package evalresult

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-agent-eval/report"
)

// Manager defines the interface for managing evaluation reports.
type Manager interface {
	// Save stores a report and returns its result ID.
	// A report without ResultID gets a new one from NewID.
	Save(ctx context.Context, rep *report.Report) (string, error)
	// Get retrieves a report by result ID.
	// Returns an error wrapping os.ErrNotExist when it does not exist.
	Get(ctx context.Context, resultID string) (*report.Report, error)
	// List returns all stored result IDs.
	List(ctx context.Context) ([]string, error)
	// Close releases the resources held by the manager.
	Close() error
}

// NewID returns <evalSetID>_<uuid>.
func NewID(evalSetID string) string {
	return fmt.Sprintf("%s_%s", evalSetID, uuid.New().String())
}

// ResolveID returns the ID a report is stored under, validating it.
func ResolveID(rep *report.Report) (string, error) {
	if rep == nil {
		return "", errors.New("report is nil")
	}
	id := rep.ResultID
	if id == "" {
		if rep.EvalSetID == "" {
			return "", errors.New("the eval set id of report is empty")
		}
		id = NewID(rep.EvalSetID)
	}
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return id, nil
}

// ValidateID rejects IDs that are empty or could escape a storage directory.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("result id is empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("invalid result id %q", id)
	}
	return nil
}
