//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package function wraps Go functions as tools.
package function

import (
	"context"
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/tool"
)

// FunctionTool calls a typed Go function with JSON arguments.
type FunctionTool[I, O any] struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(context.Context, I) (O, error)
}

var _ tool.Tool = (*FunctionTool[struct{}, string])(nil)

// Option is a function that configures a FunctionTool.
type Option func(*functionToolOptions)

type functionToolOptions struct {
	name        string
	description string
	parameters  map[string]any
}

// WithName sets the name of the function tool.
//
// Note: tool names must match ^[a-zA-Z0-9_-]+$ for most chat APIs.
func WithName(name string) Option {
	return func(opts *functionToolOptions) {
		opts.name = name
	}
}

// WithDescription sets the description of the function tool.
func WithDescription(description string) Option {
	return func(opts *functionToolOptions) {
		opts.description = description
	}
}

// WithInputSchema sets the JSON schema of the arguments.
// Without it the tool declares an object with no fixed properties.
func WithInputSchema(schema map[string]any) Option {
	return func(opts *functionToolOptions) {
		opts.parameters = schema
	}
}

// NewFunctionTool creates a tool around fn.
func NewFunctionTool[I, O any](fn func(context.Context, I) (O, error), opts ...Option) *FunctionTool[I, O] {
	options := &functionToolOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.name == "" {
		log.Warnf("FunctionTool: name is empty")
	}
	if options.parameters == nil {
		options.parameters = map[string]any{"type": "object"}
	}
	return &FunctionTool[I, O]{
		name:        options.name,
		description: options.description,
		parameters:  options.parameters,
		fn:          fn,
	}
}

// Declaration returns the tool's declaration.
func (ft *FunctionTool[I, O]) Declaration() *tool.Declaration {
	return &tool.Declaration{
		Name:        ft.name,
		Description: ft.description,
		Parameters:  ft.parameters,
	}
}

// Call unmarshals args into I, runs the function and encodes O.
// A string result is returned as is, anything else as JSON.
func (ft *FunctionTool[I, O]) Call(ctx context.Context, args []byte) (string, error) {
	var input I
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return "", fmt.Errorf("tool %s: unmarshal arguments: %w", ft.name, err)
		}
	}
	out, err := ft.fn(ctx, input)
	if err != nil {
		return "", err
	}
	if s, ok := any(out).(string); ok {
		return s, nil
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("tool %s: marshal result: %w", ft.name, err)
	}
	return string(b), nil
}
