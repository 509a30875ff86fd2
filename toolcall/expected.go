//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package toolcall

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawExpected is the raw expected_tool_use field of a dataset row.
// It holds either a JSON-encoded string containing a list or a native JSON list.
type RawExpected json.RawMessage

// MarshalJSON returns the raw value, or null when empty.
func (r RawExpected) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// UnmarshalJSON stores a copy of data without interpreting it.
func (r *RawExpected) UnmarshalJSON(data []byte) error {
	if r == nil {
		return fmt.Errorf("toolcall: UnmarshalJSON on nil RawExpected")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// ParseError reports a malformed expected_tool_use value.
type ParseError struct {
	// Raw is the offending input, truncated for display.
	Raw string
	// Err is the underlying decoding error.
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("parse expected tool use: %v", e.Err)
	}
	return fmt.Sprintf("parse expected tool use %q: %v", e.Raw, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

const maxRawInError = 64

func newParseError(raw []byte, err error) *ParseError {
	s := string(raw)
	if len(s) > maxRawInError {
		s = s[:maxRawInError] + "..."
	}
	return &ParseError{Raw: s, Err: err}
}

// ParseExpected normalizes raw into a list of tool calls.
//
// An empty or null value yields an empty list. A JSON string is decoded
// once more as JSON. List entries that are not JSON objects are returned
// as nil so callers can decide whether to ignore them.
func ParseExpected(raw RawExpected) ([]*ToolCall, error) {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []*ToolCall{}, nil
	}
	if data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return nil, newParseError(data, err)
		}
		data = bytes.TrimSpace([]byte(encoded))
		if len(data) == 0 {
			return nil, newParseError(data, fmt.Errorf("empty JSON string"))
		}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, newParseError(data, err)
	}
	calls := make([]*ToolCall, 0, len(entries))
	for i, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			calls = append(calls, nil)
			continue
		}
		var c ToolCall
		if err := json.Unmarshal(entry, &c); err != nil {
			return nil, newParseError(data, fmt.Errorf("entry %d: %w", i, err))
		}
		calls = append(calls, &c)
	}
	return calls, nil
}

// FromCalls encodes calls as a native JSON list.
func FromCalls(calls []*ToolCall) (RawExpected, error) {
	if calls == nil {
		calls = []*ToolCall{}
	}
	data, err := json.Marshal(calls)
	if err != nil {
		return nil, fmt.Errorf("marshal tool calls: %w", err)
	}
	return RawExpected(data), nil
}
