//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package evalset

// DefaultFileSuffix is the file suffix of evaluation set files.
const DefaultFileSuffix = ".test.json"

// Options configures a file-backed evaluation set manager.
type Options struct {
	// BaseDir is the directory holding evaluation set files.
	BaseDir string
	// FileSuffix is the evaluation set file suffix.
	FileSuffix string
}

// NewOptions creates Options with defaults applied.
func NewOptions(opt ...Option) *Options {
	opts := &Options{
		BaseDir:    "data",
		FileSuffix: DefaultFileSuffix,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option configures Options.
type Option func(*Options)

// WithBaseDir overrides the directory holding evaluation set files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithFileSuffix overrides the evaluation set file suffix.
func WithFileSuffix(suffix string) Option {
	return func(o *Options) {
		o.FileSuffix = suffix
	}
}
