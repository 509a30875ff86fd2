//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package retrieve provides a keyword retrieval tool over local documents.
package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/tool"
	"trpc.group/trpc-go/trpc-agent-eval/tool/function"
)

const (
	// DefaultName is the tool name declared to the model.
	DefaultName = "retrieve_documents"
	// DefaultPattern selects the documents under the root directory.
	DefaultPattern = "**/*.{md,txt}"
	defaultTopK    = 3
	minTermLength  = 3
)

// Input is the tool argument.
type Input struct {
	QueryText string `json:"query_text"`
}

type chunk struct {
	source  string
	id      int
	content string
	terms   map[string]struct{}
}

type options struct {
	name    string
	pattern string
	topK    int
}

// Option configures the retrieval tool.
type Option func(*options)

// WithName overrides DefaultName.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithPattern sets the doublestar pattern of indexed files.
func WithPattern(pattern string) Option {
	return func(o *options) { o.pattern = pattern }
}

// WithTopK sets how many chunks are returned.
func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

// New indexes the documents under dir and returns the tool.
// Documents are split into paragraph chunks.
func New(dir string, opts ...Option) (tool.Tool, error) {
	o := &options{name: DefaultName, pattern: DefaultPattern, topK: defaultTopK}
	for _, opt := range opts {
		opt(o)
	}
	var chunks []*chunk
	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		log.Warnf("retrieve: document root %s does not exist", dir)
	} else if chunks, err = loadChunks(os.DirFS(dir), o.pattern); err != nil {
		return nil, err
	}
	log.Infof("retrieve: indexed %d chunks from %s", len(chunks), dir)
	idx := &index{chunks: chunks, topK: o.topK}
	return function.NewFunctionTool(idx.query,
		function.WithName(o.name),
		function.WithDescription("Retrieves relevant document chunks from the local knowledge base for a query."),
		function.WithInputSchema(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query_text": map[string]any{
					"type":        "string",
					"description": "The question or query to search for in the knowledge base.",
				},
			},
			"required": []string{"query_text"},
		}),
	), nil
}

func loadChunks(fsys fs.FS, pattern string) ([]*chunk, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(matches)
	var chunks []*chunk
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		id := 0
		for _, para := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			chunks = append(chunks, &chunk{source: name, id: id, content: para, terms: termSet(para)})
			id++
		}
	}
	return chunks, nil
}

type index struct {
	chunks []*chunk
	topK   int
}

type scored struct {
	c     *chunk
	score int
}

func (idx *index) query(_ context.Context, in Input) ([]string, error) {
	terms := termSet(in.QueryText)
	if len(terms) == 0 {
		return []string{}, nil
	}
	var hits []scored
	for _, c := range idx.chunks {
		n := 0
		for t := range terms {
			if _, ok := c.terms[t]; ok {
				n++
			}
		}
		if n > 0 {
			hits = append(hits, scored{c: c, score: n})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > idx.topK {
		hits = hits[:idx.topK]
	}
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, fmt.Sprintf("Source: %s (Chunk ID: %d)\nContent: %s\n---", h.c.source, h.c.id, h.c.content))
	}
	return out, nil
}

func termSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len([]rune(w)) >= minTermLength {
			set[w] = struct{}{}
		}
	}
	return set
}
