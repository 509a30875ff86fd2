//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package function

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-agent-eval/tool"
)

type calcInput struct {
	A int `json:"a"`
	B int `json:"b"`
}

type calcOutput struct {
	Sum int `json:"sum"`
}

func TestFunctionTool_Call(t *testing.T) {
	calc := NewFunctionTool(func(_ context.Context, in calcInput) (calcOutput, error) {
		return calcOutput{Sum: in.A + in.B}, nil
	}, WithName("calculator"), WithDescription("adds numbers"))

	decl := calc.Declaration()
	assert.Equal(t, "calculator", decl.Name)
	assert.Equal(t, "adds numbers", decl.Description)
	assert.Equal(t, map[string]any{"type": "object"}, decl.Parameters)

	out, err := calc.Call(context.Background(), []byte(`{"a":1,"b":2}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sum":3}`, out)

	_, err = calc.Call(context.Background(), []byte(`{"a":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "calculator")
}

func TestFunctionTool_StringResult(t *testing.T) {
	search := NewFunctionTool(func(_ context.Context, in map[string]string) (string, error) {
		return "results for " + in["query"], nil
	}, WithName("search"), WithInputSchema(map[string]any{
		"type":       "object",
		"properties": map[string]any{"query": map[string]any{"type": "string"}},
	}))

	out, err := search.Call(context.Background(), []byte(`{"query":"go"}`))
	require.NoError(t, err)
	assert.Equal(t, "results for go", out)

	out, err = search.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "results for ", out)
	assert.Contains(t, search.Declaration().Parameters, "properties")
}

func TestFunctionTool_Error(t *testing.T) {
	boom := errors.New("boom")
	ft := NewFunctionTool(func(context.Context, struct{}) (string, error) {
		return "", boom
	}, WithName("fail"))
	_, err := ft.Call(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, boom)
}

func TestSet(t *testing.T) {
	a := NewFunctionTool(func(context.Context, struct{}) (string, error) { return "a", nil }, WithName("a"))
	b := NewFunctionTool(func(context.Context, struct{}) (string, error) { return "b", nil }, WithName("b"))
	set := tool.NewSet(a, b)
	require.Len(t, set, 2)
	assert.Len(t, set.Declarations(), 2)
	assert.Same(t, a, set["a"].(*FunctionTool[struct{}, string]))
}
