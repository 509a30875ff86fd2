//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package service runs an agent over an evaluation set and scores every row.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/report"
	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/status"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry/metric"
	itrace "trpc.group/trpc-go/trpc-agent-eval/telemetry/trace"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

type metricEvaluator struct {
	name      string
	threshold float64
	evaluator evaluator.Evaluator
}

// ErrEvalSetNotFound is wrapped by EvaluateByID when the eval set does not exist.
// Errors from the runner never wrap it, even when they wrap os.ErrNotExist.
var ErrEvalSetNotFound = errors.New("eval set not found")

// Service evaluates eval sets with a runner.
type Service struct {
	runner          runner.Runner
	metrics         []*metricEvaluator
	parallelism     int
	continueOnError bool
	evalSetManager  evalset.Manager
	resultManager   evalresult.Manager
	tracer          trace.Tracer
	recorder        *metric.Recorder
	pool            *ants.PoolWithFunc
}

// New returns a new evaluation service.
// If no Option is provided, the service uses the default options.
func New(r runner.Runner, opt ...Option) (*Service, error) {
	if r == nil {
		return nil, errors.New("runner is nil")
	}
	opts := NewOptions(opt...)
	if opts.Registry == nil {
		return nil, errors.New("registry is nil")
	}
	if opts.Parallelism <= 0 {
		return nil, errors.New("parallelism must be greater than 0")
	}
	if len(opts.Metrics) == 0 {
		return nil, errors.New("no metrics configured")
	}
	if opts.MetricRecorder == nil {
		opts.MetricRecorder = metric.NewNoopRecorder()
	}
	s := &Service{
		runner:          r,
		parallelism:     opts.Parallelism,
		continueOnError: opts.ContinueOnError,
		evalSetManager:  opts.EvalSetManager,
		resultManager:   opts.ResultManager,
		tracer:          opts.Tracer,
		recorder:        opts.MetricRecorder,
	}
	evaluators, err := opts.Registry.Resolve(opts.Metrics...)
	if err != nil {
		return nil, err
	}
	for i, name := range opts.Metrics {
		e := evaluators[i]
		threshold, ok := opts.Thresholds[name]
		if !ok {
			threshold = DefaultThresholdFor(name)
		}
		if threshold < 0 || threshold > 1 {
			return nil, fmt.Errorf("threshold of metric %s must be in [0, 1], got %v", name, threshold)
		}
		s.metrics = append(s.metrics, &metricEvaluator{name: name, threshold: threshold, evaluator: e})
	}
	if s.parallelism > 1 {
		pool, err := createEvalCasePool(s.parallelism)
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	return s, nil
}

// Close releases the worker pool. It does not close the result manager.
func (s *Service) Close() error {
	if s.pool != nil {
		s.pool.Release()
	}
	return nil
}

// Metrics returns the configured metric names in report order.
func (s *Service) Metrics() []string {
	names := make([]string, len(s.metrics))
	for i, m := range s.metrics {
		names[i] = m.name
	}
	return names
}

// EvaluateByID loads the eval set from the eval set manager and evaluates it.
func (s *Service) EvaluateByID(ctx context.Context, evalSetID string) (*report.Report, error) {
	if s.evalSetManager == nil {
		return nil, errors.New("eval set manager is nil")
	}
	set, err := s.evalSetManager.Get(ctx, evalSetID)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("get eval set %s: %w: %w", evalSetID, ErrEvalSetNotFound, err)
		}
		return nil, fmt.Errorf("get eval set %s: %w", evalSetID, err)
	}
	return s.Evaluate(ctx, set)
}

// Evaluate runs every row of set through the runner and the configured
// metrics. Rows keep their dataset order in the report.
//
// A malformed expected_tool_use aborts the evaluation with an error
// wrapping *toolcall.ParseError. Runner failures abort too, unless
// ContinueOnError is set; then the report is returned together with all
// runner errors combined.
func (s *Service) Evaluate(ctx context.Context, set *evalset.EvalSet) (rep *report.Report, err error) {
	if set == nil {
		return nil, errors.New("eval set is nil")
	}
	ctx, span := s.getTracer().Start(ctx, itrace.SpanEvaluateEvalSet, trace.WithAttributes(
		attribute.String(itrace.KeyEvalSetID, set.EvalSetID),
		attribute.Int(itrace.KeyCaseCount, len(set.EvalCases)),
		attribute.Int(itrace.KeyParallelism, s.parallelism),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var outcomes []*caseOutcome
	if s.pool != nil {
		outcomes = s.evaluateParallel(ctx, set)
	} else {
		outcomes, err = s.evaluateSequential(ctx, set)
		if err != nil {
			return nil, err
		}
	}

	var runErrs *multierror.Error
	rows := make([]*report.Row, 0, len(outcomes))
	var canceled error
	for _, o := range outcomes {
		switch {
		case o.canceled:
			if canceled == nil {
				canceled = o.err
			}
		case o.fatal:
			return nil, o.err
		case o.err != nil:
			runErrs = multierror.Append(runErrs, o.err)
		}
		rows = append(rows, o.row)
	}
	if canceled != nil {
		return nil, fmt.Errorf("evaluate eval set %s: %w", set.EvalSetID, canceled)
	}

	rep = &report.Report{
		EvalSetID: set.EvalSetID,
		CreatedAt: time.Now(),
		Metrics:   s.Metrics(),
		Rows:      rows,
	}
	rep.Summarize()
	span.SetAttributes(attribute.String(itrace.KeyEvalStatus, rep.Status.String()))

	if s.resultManager != nil {
		id, saveErr := s.resultManager.Save(ctx, rep)
		if saveErr != nil {
			return nil, multierror.Append(runErrs, fmt.Errorf("save report: %w", saveErr)).ErrorOrNil()
		}
		rep.ResultID = id
		log.Infof("saved eval result %s", id)
	}
	return rep, runErrs.ErrorOrNil()
}

// caseOutcome is the result of one row. fatal outcomes abort the evaluation.
type caseOutcome struct {
	row      *report.Row
	err      error
	fatal    bool
	canceled bool
}

func (s *Service) evaluateSequential(ctx context.Context, set *evalset.EvalSet) ([]*caseOutcome, error) {
	outcomes := make([]*caseOutcome, 0, len(set.EvalCases))
	for idx, c := range set.EvalCases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("evaluate eval set %s: %w", set.EvalSetID, err)
		}
		o := s.evaluateCase(ctx, set.EvalSetID, idx, c)
		if o.fatal {
			return nil, o.err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (s *Service) evaluateCase(ctx context.Context, evalSetID string, idx int, c *evalset.EvalCase) *caseOutcome {
	if err := ctx.Err(); err != nil {
		return &caseOutcome{err: err, fatal: true, canceled: true}
	}
	if c == nil {
		return &caseOutcome{err: fmt.Errorf("eval case at index %d is nil", idx), fatal: true}
	}
	ctx, span := s.getTracer().Start(ctx, itrace.SpanEvaluateCase, trace.WithAttributes(
		attribute.String(itrace.KeyEvalSetID, evalSetID),
		attribute.String(itrace.KeyEvalID, c.EvalID),
		attribute.String(itrace.KeyQuery, c.Query),
	))
	defer span.End()

	row := &report.Row{EvalID: c.EvalID, Query: c.Query, Reference: c.Reference}
	run, err := s.runner.Run(ctx, c.Query)
	if err != nil {
		err = fmt.Errorf("eval case %s: run agent: %w", c.EvalID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() != nil {
			return &caseOutcome{err: err, fatal: true, canceled: true}
		}
		log.With("eval_set_id", evalSetID, "eval_id", c.EvalID).Warnf("agent run failed: %v", err)
		row.Error = err.Error()
		row.Status = status.EvalStatusFailed
		row.ToolCalls = []*toolcall.ToolCall{}
		row.Metrics = []*report.MetricResult{}
		s.recorder.RecordRow(ctx, evalSetID, row.Status)
		return &caseOutcome{row: row, err: err, fatal: !s.continueOnError}
	}
	if run == nil {
		run = &runner.Run{}
	}
	row.Response = run.Response
	row.ToolCalls = run.ToolCalls
	if row.ToolCalls == nil {
		row.ToolCalls = []*toolcall.ToolCall{}
	}
	span.SetAttributes(attribute.Int(itrace.KeyToolCount, len(row.ToolCalls)))

	expected, err := c.Expected()
	if err != nil {
		err = fmt.Errorf("eval case %s: %w", c.EvalID, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &caseOutcome{err: err, fatal: true}
	}

	statuses := make([]status.EvalStatus, 0, len(s.metrics))
	row.Metrics = make([]*report.MetricResult, 0, len(s.metrics))
	for _, m := range s.metrics {
		mr, err := s.evaluateMetric(ctx, evalSetID, m, row.ToolCalls, expected)
		if err != nil {
			err = fmt.Errorf("eval case %s: metric %s: %w", c.EvalID, m.name, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return &caseOutcome{err: err, fatal: true}
		}
		row.Metrics = append(row.Metrics, mr)
		statuses = append(statuses, mr.Status)
	}
	row.Status = status.Combine(statuses...)
	span.SetAttributes(attribute.String(itrace.KeyEvalStatus, row.Status.String()))
	s.recorder.RecordRow(ctx, evalSetID, row.Status)
	log.With("eval_set_id", evalSetID, "eval_id", c.EvalID).Debugf("row %s", row.Status)
	return &caseOutcome{row: row}
}

func (s *Service) evaluateMetric(ctx context.Context, evalSetID string, m *metricEvaluator,
	actual, expected []*toolcall.ToolCall) (*report.MetricResult, error) {
	ctx, span := s.getTracer().Start(ctx, itrace.SpanEvaluateMetric,
		trace.WithAttributes(attribute.String(itrace.KeyMetricName, m.name)))
	defer span.End()

	result, err := m.evaluator.Evaluate(ctx, actual, expected)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if result == nil {
		return nil, errors.New("evaluator returned nil result")
	}
	st := status.ForScore(result.Score(), m.threshold)
	span.SetAttributes(
		attribute.Float64(itrace.KeyScore, result.Score()),
		attribute.String(itrace.KeyLabel, result.Label()),
		attribute.String(itrace.KeyEvalStatus, st.String()),
	)
	s.recorder.RecordScore(ctx, evalSetID, m.name, result.Score())
	return &report.MetricResult{
		Name:      m.name,
		Result:    result,
		Threshold: m.threshold,
		Status:    st,
	}, nil
}

func (s *Service) getTracer() trace.Tracer {
	if s.tracer != nil {
		return s.tracer
	}
	return itrace.Tracer
}
