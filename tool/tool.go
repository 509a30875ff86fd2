//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package tool defines the tools an agent under evaluation may call.
package tool

import (
	"context"
	"sort"
)

// Declaration describes a tool to the model.
type Declaration struct {
	// Name is the tool name the model refers to.
	Name string `json:"name"`
	// Description explains what the tool does.
	Description string `json:"description,omitempty"`
	// Parameters is the JSON schema of the tool arguments.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Tool is a callable tool.
type Tool interface {
	// Declaration returns the tool metadata.
	Declaration() *Declaration
	// Call runs the tool with JSON encoded arguments and returns the
	// text handed back to the model.
	Call(ctx context.Context, args []byte) (string, error)
}

// Set indexes tools by declared name.
type Set map[string]Tool

// NewSet builds a Set from tools. Later tools win on duplicate names.
func NewSet(tools ...Tool) Set {
	s := make(Set, len(tools))
	for _, t := range tools {
		s[t.Declaration().Name] = t
	}
	return s
}

// Names returns the tool names in the set, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns the declarations of all tools in the set, sorted by name.
func (s Set) Declarations() []*Declaration {
	decls := make([]*Declaration, 0, len(s))
	for _, name := range s.Names() {
		decls = append(decls, s[name].Declaration())
	}
	return decls
}
