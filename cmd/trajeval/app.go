//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"

	"trpc.group/trpc-go/trpc-agent-eval/config"
	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	evalresultinmemory "trpc.group/trpc-go/trpc-agent-eval/evalresult/inmemory"
	evalresultlocal "trpc.group/trpc-go/trpc-agent-eval/evalresult/local"
	evalresultmysql "trpc.group/trpc-go/trpc-agent-eval/evalresult/mysql"
	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	evalsetlocal "trpc.group/trpc-go/trpc-agent-eval/evalset/local"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/runner/openai"
	"trpc.group/trpc-go/trpc-agent-eval/runner/replay"
	"trpc.group/trpc-go/trpc-agent-eval/server"
	"trpc.group/trpc-go/trpc-agent-eval/service"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry/metric"
	"trpc.group/trpc-go/trpc-agent-eval/telemetry/trace"
	"trpc.group/trpc-go/trpc-agent-eval/tool/retrieve"
)

const shutdownTimeout = 5 * time.Second

// run evaluates the configured set once, or serves the HTTP API when cfg.Serve is set.
func run(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	cleanup, recorder, err := startTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cleanup(); cerr != nil {
			log.Warnf("telemetry shutdown: %v", cerr)
		}
	}()

	r, err := newRunner(cfg)
	if err != nil {
		return err
	}
	results, err := newResultManager(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := results.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close result store: %w", cerr))
		}
	}()
	sets := evalsetlocal.New(evalset.WithBaseDir(cfg.DataDir))

	opts := []service.Option{
		service.WithEvalSetManager(sets),
		service.WithResultManager(results),
		service.WithParallelism(cfg.Parallelism),
		service.WithContinueOnError(cfg.ContinueOnError),
		service.WithMetricRecorder(recorder),
	}
	if len(cfg.Metrics) > 0 {
		opts = append(opts, service.WithMetrics(cfg.Metrics...))
	}
	for name, t := range cfg.Thresholds {
		opts = append(opts, service.WithThreshold(name, t))
	}
	svc, err := service.New(r, opts...)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close service: %w", cerr))
		}
	}()

	if cfg.Serve != "" {
		return serveHTTP(ctx, cfg.Serve, server.New(
			server.WithService(svc),
			server.WithEvalSetManager(sets),
			server.WithResultManager(results),
		))
	}

	rep, err := svc.EvaluateByID(ctx, cfg.EvalSet)
	if rep == nil {
		return fmt.Errorf("evaluate %s: %w", cfg.EvalSet, err)
	}
	if werr := rep.Write(out, cfg.Output.Format); werr != nil {
		return multierror.Append(err, werr).ErrorOrNil()
	}
	log.Infof("eval set %s: %d rows, result %s", rep.EvalSetID, len(rep.Rows), rep.ResultID)
	return err
}

func startTelemetry(ctx context.Context, cfg config.TelemetryConfig) (func() error, *metric.Recorder, error) {
	var cleanups []func() error
	cleanup := func() error {
		var result *multierror.Error
		for _, c := range cleanups {
			if err := c(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		return result.ErrorOrNil()
	}
	if cfg.Traces {
		opts := []trace.Option{trace.WithProtocol(cfg.Protocol)}
		if cfg.Endpoint != "" {
			opts = append(opts, trace.WithEndpoint(cfg.Endpoint))
		}
		c, err := trace.Start(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("start tracing: %w", err)
		}
		cleanups = append(cleanups, c)
	}
	if !cfg.Metrics {
		return cleanup, metric.NewNoopRecorder(), nil
	}
	opts := []metric.Option{metric.WithProtocol(cfg.Protocol)}
	if cfg.Endpoint != "" {
		opts = append(opts, metric.WithEndpoint(cfg.Endpoint))
	}
	mp, err := metric.NewMeterProvider(ctx, opts...)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("start metrics: %w", err)
	}
	cleanups = append(cleanups, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return mp.Shutdown(ctx)
	})
	recorder, err := metric.NewRecorder(mp)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	return cleanup, recorder, nil
}

// newRunner returns the replay runner when a runs file is configured, the OpenAI runner otherwise.
func newRunner(cfg *config.Config) (runner.Runner, error) {
	if cfg.RunsFile != "" {
		return replay.Load(cfg.RunsFile)
	}
	opts := []openai.Option{
		openai.WithBaseURL(cfg.Model.BaseURL),
		openai.WithSystemPrompt(cfg.Model.SystemPrompt),
	}
	if cfg.Model.APIKey != "" {
		opts = append(opts, openai.WithAPIKey(cfg.Model.APIKey))
	}
	if cfg.Model.MaxIterations > 0 {
		opts = append(opts, openai.WithMaxIterations(cfg.Model.MaxIterations))
	}
	if cfg.DocsDir != "" {
		t, err := retrieve.New(cfg.DocsDir)
		if err != nil {
			return nil, fmt.Errorf("create retrieval tool: %w", err)
		}
		opts = append(opts, openai.WithTools(t))
	}
	return openai.New(cfg.Model.Name, opts...), nil
}

func newResultManager(cfg *config.Config) (evalresult.Manager, error) {
	switch cfg.Store.Type {
	case config.StoreInMemory:
		return evalresultinmemory.New(), nil
	case config.StoreMySQL:
		return evalresultmysql.New(
			evalresultmysql.WithMySQLClientDSN(cfg.Store.DSN),
			evalresultmysql.WithTablePrefix(cfg.Store.TablePrefix),
		)
	default:
		return evalresultlocal.New(evalresult.WithBaseDir(cfg.Output.Dir)), nil
	}
}

func serveHTTP(ctx context.Context, addr string, s *server.Server) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("trajeval: serving on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
