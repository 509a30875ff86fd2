//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package mysql

import "time"

const (
	defaultInitTimeout = 30 * time.Second
	// TableNameReports is the base table name for reports.
	TableNameReports = "eval_reports"
)

type options struct {
	dsn          string
	instanceName string
	tablePrefix  string
	skipDBInit   bool
	initTimeout  time.Duration
}

// Option configures the MySQL result manager.
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{initTimeout: defaultInitTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithMySQLClientDSN sets the MySQL DSN connection string directly (recommended).
func WithMySQLClientDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithMySQLInstance uses connection options registered with
// storage/mysql.RegisterMySQLInstance. The DSN wins when both are set.
func WithMySQLInstance(name string) Option {
	return func(o *options) {
		o.instanceName = name
	}
}

// WithSkipDBInit skips creating the table on New.
func WithSkipDBInit(skip bool) Option {
	return func(o *options) {
		o.skipDBInit = skip
	}
}

// WithTablePrefix sets a prefix for the table name.
// Only letters, digits and underscores are accepted.
func WithTablePrefix(prefix string) Option {
	return func(o *options) {
		o.tablePrefix = prefix
	}
}

// WithInitTimeout sets the timeout of the schema creation. Non-positive values are ignored.
func WithInitTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.initTimeout = timeout
		}
	}
}
