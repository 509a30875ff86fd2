//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubTool struct{ name string }

func (s *stubTool) Declaration() *Declaration { return &Declaration{Name: s.name} }

func (s *stubTool) Call(context.Context, []byte) (string, error) { return s.name, nil }

func TestSet_SortedByName(t *testing.T) {
	set := NewSet(&stubTool{"search"}, &stubTool{"calc"}, &stubTool{"fetch"}, &stubTool{"calc"})
	assert.Equal(t, []string{"calc", "fetch", "search"}, set.Names())
	for i := 0; i < 20; i++ {
		decls := set.Declarations()
		names := make([]string, len(decls))
		for j, d := range decls {
			names[j] = d.Name
		}
		assert.Equal(t, []string{"calc", "fetch", "search"}, names)
	}
	assert.Empty(t, NewSet().Declarations())
}
