//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package mysql provides a MySQL storage implementation for evaluation reports.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/report"
	storage "trpc.group/trpc-go/trpc-agent-eval/storage/mysql"
)

const sqlCreateReportsTable = `CREATE TABLE IF NOT EXISTS %s (
  result_id VARCHAR(255) NOT NULL,
  eval_set_id VARCHAR(255) NOT NULL,
  payload JSON NOT NULL,
  created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
  updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
  PRIMARY KEY (result_id),
  KEY idx_eval_set_created (eval_set_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

var _ evalresult.Manager = (*manager)(nil)

type manager struct {
	db    storage.Client
	table string
}

// New creates a MySQL-backed result manager. The returned manager owns
// the connection and must be closed.
func New(opts ...Option) (evalresult.Manager, error) {
	options := newOptions(opts...)
	if !tablePrefixPattern.MatchString(options.tablePrefix) {
		return nil, fmt.Errorf("invalid table prefix %q", options.tablePrefix)
	}
	db, err := storage.BuildClient(options.dsn, options.instanceName)
	if err != nil {
		return nil, fmt.Errorf("create mysql client failed: %w", err)
	}
	m := &manager{db: db, table: options.tablePrefix + TableNameReports}
	if !options.skipDBInit {
		ctx, cancel := context.WithTimeout(context.Background(), options.initTimeout)
		defer cancel()
		if err := m.ensureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

func (m *manager) ensureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, fmt.Sprintf(sqlCreateReportsTable, m.table)); err != nil {
		return fmt.Errorf("create table %s: %w", m.table, err)
	}
	return nil
}

// Close implements evalresult.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Save upserts a report.
func (m *manager) Save(ctx context.Context, rep *report.Report) (string, error) {
	id, err := evalresult.ResolveID(rep)
	if err != nil {
		return "", err
	}
	stored := *rep
	stored.ResultID = id
	payload, err := json.Marshal(&stored)
	if err != nil {
		return "", fmt.Errorf("marshal report %s: %w", id, err)
	}
	createdAt := rep.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (result_id, eval_set_id, payload, created_at)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   eval_set_id = VALUES(eval_set_id),
		   payload = VALUES(payload)`,
		m.table,
	)
	if _, err := m.db.ExecContext(ctx, query, id, rep.EvalSetID, payload, createdAt.UTC()); err != nil {
		return "", fmt.Errorf("store report %s: %w", id, err)
	}
	return id, nil
}

// Get loads a report.
func (m *manager) Get(ctx context.Context, resultID string) (*report.Report, error) {
	if resultID == "" {
		return nil, errors.New("result id is empty")
	}
	var payload []byte
	query := fmt.Sprintf("SELECT payload FROM %s WHERE result_id = ?", m.table)
	if err := m.db.QueryRowContext(ctx, query, resultID).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("eval result %s not found: %w", resultID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("load report %s: %w", resultID, err)
	}
	var rep report.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", resultID, err)
	}
	rep.ResultID = resultID
	return &rep, nil
}

// List returns all result IDs sorted lexicographically.
func (m *manager) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT result_id FROM %s ORDER BY result_id", m.table)
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan result id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return ids, nil
}
