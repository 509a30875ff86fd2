//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ValidationError reports an EvaluationResult that cannot be constructed.
type ValidationError struct {
	// Field is the offending field name.
	Field string
	// Reason describes the violation.
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid evaluation result %s: %s", e.Field, e.Reason)
}

// EvaluationResult is the immutable outcome of a single evaluator on a single row.
type EvaluationResult struct {
	score       float64
	label       string
	explanation string
}

// NewResult creates an EvaluationResult.
// Returns a *ValidationError when score is NaN or outside [0, 1].
func NewResult(score float64, label, explanation string) (*EvaluationResult, error) {
	if math.IsNaN(score) {
		return nil, &ValidationError{Field: "score", Reason: "score is NaN"}
	}
	if score < 0 || score > 1 {
		return nil, &ValidationError{Field: "score", Reason: fmt.Sprintf("score must be between 0 and 1, got %v", score)}
	}
	return &EvaluationResult{score: score, label: label, explanation: explanation}, nil
}

// MustResult is like NewResult but panics on invalid input.
func MustResult(score float64, label, explanation string) *EvaluationResult {
	r, err := NewResult(score, label, explanation)
	if err != nil {
		panic(err)
	}
	return r
}

// Score returns the score in [0, 1].
func (r *EvaluationResult) Score() float64 { return r.score }

// Label returns the qualitative label.
func (r *EvaluationResult) Label() string { return r.label }

// Explanation returns the human-readable explanation.
func (r *EvaluationResult) Explanation() string { return r.explanation }

// String renders the result for logs.
func (r *EvaluationResult) String() string {
	return fmt.Sprintf("%s (%.2f): %s", r.label, r.score, r.explanation)
}

type evaluationResultJSON struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Explanation string  `json:"explanation"`
}

// MarshalJSON encodes the result as {"score","label","explanation"}.
func (r *EvaluationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(evaluationResultJSON{Score: r.score, Label: r.label, Explanation: r.explanation})
}

// UnmarshalJSON decodes and validates a result.
// Fields of the wrong JSON type and out-of-range scores fail with a *ValidationError.
func (r *EvaluationResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ValidationError{Field: "result", Reason: err.Error()}
	}
	var out evaluationResultJSON
	fields := []struct {
		name string
		dst  any
	}{
		{"score", &out.Score},
		{"label", &out.Label},
		{"explanation", &out.Explanation},
	}
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			return &ValidationError{Field: f.name, Reason: "missing"}
		}
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return &ValidationError{Field: f.name, Reason: "wrong type: null"}
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("wrong type: %s", v)}
		}
	}
	res, err := NewResult(out.Score, out.Label, out.Explanation)
	if err != nil {
		return err
	}
	*r = *res
	return nil
}
