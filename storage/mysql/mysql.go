//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package mysql builds MySQL connections for the stores in this module.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Client is the subset of *sql.DB the stores use.
type Client interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// ClientBuilder opens a Client.
type ClientBuilder func(builderOpts ...ClientBuilderOpt) (Client, error)

var (
	builderMu     sync.RWMutex
	globalBuilder ClientBuilder = DefaultClientBuilder

	registryMu    sync.RWMutex
	mysqlRegistry = make(map[string][]ClientBuilderOpt)
)

// SetClientBuilder replaces the builder used by GetClientBuilder.
func SetClientBuilder(builder ClientBuilder) {
	builderMu.Lock()
	defer builderMu.Unlock()
	globalBuilder = builder
}

// GetClientBuilder returns the current builder.
func GetClientBuilder() ClientBuilder {
	builderMu.RLock()
	defer builderMu.RUnlock()
	return globalBuilder
}

// DefaultClientBuilder opens a *sql.DB with the mysql driver and pings it.
func DefaultClientBuilder(builderOpts ...ClientBuilderOpt) (Client, error) {
	o := &ClientBuilderOpts{}
	for _, opt := range builderOpts {
		opt(o)
	}
	if o.DSN == "" {
		return nil, errors.New("mysql: dsn is empty")
	}
	db, err := sql.Open("mysql", o.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open connection: %w", err)
	}
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping failed: %w", err)
	}
	return db, nil
}

// ClientBuilderOpt is the option for the mysql client.
type ClientBuilderOpt func(*ClientBuilderOpts)

// ClientBuilderOpts is the options for the mysql client.
type ClientBuilderOpts struct {
	// DSN is the data source name, for example
	// user:password@tcp(localhost:3306)/dbname?parseTime=true
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// WithClientBuilderDSN sets the DSN.
func WithClientBuilderDSN(dsn string) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.DSN = dsn
	}
}

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.MaxOpenConns = n
	}
}

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.MaxIdleConns = n
	}
}

// WithConnMaxLifetime sets how long a connection may be reused.
func WithConnMaxLifetime(d time.Duration) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.ConnMaxLifetime = d
	}
}

// RegisterMySQLInstance registers named connection options.
func RegisterMySQLInstance(name string, opts ...ClientBuilderOpt) {
	registryMu.Lock()
	defer registryMu.Unlock()
	mysqlRegistry[name] = append(mysqlRegistry[name], opts...)
}

// GetMySQLInstance returns the options registered under name.
func GetMySQLInstance(name string) ([]ClientBuilderOpt, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	opts, ok := mysqlRegistry[name]
	return opts, ok
}

// BuildClient builds a client from a DSN or, when dsn is empty, a registered instance name.
func BuildClient(dsn, instanceName string) (Client, error) {
	builderOpts := []ClientBuilderOpt{WithClientBuilderDSN(dsn)}
	if dsn == "" && instanceName != "" {
		var ok bool
		if builderOpts, ok = GetMySQLInstance(instanceName); !ok {
			return nil, fmt.Errorf("mysql instance %s not found", instanceName)
		}
	}
	return GetClientBuilder()(builderOpts...)
}
