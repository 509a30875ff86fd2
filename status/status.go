//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package status provides the pass/fail status of an evaluation.
package status

import "fmt"

// EvalStatus represents the status of an evaluation.
type EvalStatus int

const (
	// EvalStatusUnknown represents an unknown evaluation status.
	EvalStatusUnknown EvalStatus = iota
	// EvalStatusPassed represents a passed evaluation status.
	EvalStatusPassed
	// EvalStatusFailed represents a failed evaluation status.
	EvalStatusFailed
	// EvalStatusNotEvaluated represents a not evaluated evaluation status.
	EvalStatusNotEvaluated
)

// String returns the string representation of the evaluation status.
func (s EvalStatus) String() string {
	switch s {
	case EvalStatusPassed:
		return "passed"
	case EvalStatusFailed:
		return "failed"
	case EvalStatusNotEvaluated:
		return "not_evaluated"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its string form.
func (s EvalStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status from its string form.
func (s *EvalStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "passed":
		*s = EvalStatusPassed
	case "failed":
		*s = EvalStatusFailed
	case "not_evaluated":
		*s = EvalStatusNotEvaluated
	case "unknown", "":
		*s = EvalStatusUnknown
	default:
		return fmt.Errorf("unknown eval status %q", text)
	}
	return nil
}

// ForScore returns passed when score reaches threshold, failed otherwise.
func ForScore(score, threshold float64) EvalStatus {
	if score >= threshold {
		return EvalStatusPassed
	}
	return EvalStatusFailed
}

// Combine folds per-metric statuses into an overall status.
// Any failure fails the whole; all not_evaluated yields not_evaluated.
func Combine(statuses ...EvalStatus) EvalStatus {
	if len(statuses) == 0 {
		return EvalStatusNotEvaluated
	}
	evaluated := false
	for _, s := range statuses {
		switch s {
		case EvalStatusFailed:
			return EvalStatusFailed
		case EvalStatusPassed:
			evaluated = true
		case EvalStatusUnknown:
			return EvalStatusUnknown
		}
	}
	if !evaluated {
		return EvalStatusNotEvaluated
	}
	return EvalStatusPassed
}
