//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package toolcall defines the tool invocation records compared by trajectory evaluators.
package toolcall

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ToolCall is a single tool invocation, either made by an agent or expected by a dataset row.
type ToolCall struct {
	// ToolName is the name of the invoked tool.
	ToolName string `json:"tool_name"`
	// ToolInput is the input passed to the tool.
	// Non-string JSON inputs are kept as their compact JSON text.
	ToolInput string `json:"tool_input,omitempty"`
}

// UnmarshalJSON accepts tool_input as a JSON string or as any other JSON value.
func (c *ToolCall) UnmarshalJSON(data []byte) error {
	var raw struct {
		ToolName  string          `json:"tool_name"`
		ToolInput json.RawMessage `json:"tool_input"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ToolName = raw.ToolName
	c.ToolInput = ""
	input := bytes.TrimSpace(raw.ToolInput)
	if len(input) == 0 || bytes.Equal(input, []byte("null")) {
		return nil
	}
	if input[0] == '"' {
		return json.Unmarshal(input, &c.ToolInput)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, input); err != nil {
		return err
	}
	c.ToolInput = buf.String()
	return nil
}

// Names returns the tool names of calls in order.
// Nil entries contribute an empty name.
func Names(calls []*ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, c := range calls {
		if c == nil {
			names = append(names, "")
			continue
		}
		names = append(names, c.ToolName)
	}
	return names
}

// NameSet returns the distinct tool names of calls.
// Nil entries are skipped when skipNil is set, otherwise they count as an empty name.
func NameSet(calls []*ToolCall, skipNil bool) map[string]struct{} {
	set := make(map[string]struct{}, len(calls))
	for _, c := range calls {
		if c == nil {
			if !skipNil {
				set[""] = struct{}{}
			}
			continue
		}
		set[c.ToolName] = struct{}{}
	}
	return set
}

// Sorted returns the members of set sorted lexicographically.
func Sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the number of names present in both sets.
func Intersect(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for name := range a {
		if _, ok := b[name]; ok {
			n++
		}
	}
	return n
}

// FormatNames renders names as a bracketed, quoted list, e.g. ['search', 'calc'].
func FormatNames(names []string) string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "'%s'", name)
	}
	buf.WriteByte(']')
	return buf.String()
}
