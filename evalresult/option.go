//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package evalresult

// defaultBaseDir is the default base directory for local results.
const defaultBaseDir = "output"

// Options configure result managers.
type Options struct {
	// BaseDir is the base directory of file backed managers.
	BaseDir string
}

// NewOptions creates Options with defaults applied.
func NewOptions(opt ...Option) *Options {
	opts := &Options{BaseDir: defaultBaseDir}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option configures a result manager.
type Option func(*Options)

// WithBaseDir overrides the default base directory used to store results.
func WithBaseDir(dir string) Option {
	return func(m *Options) {
		m.BaseDir = dir
	}
}
