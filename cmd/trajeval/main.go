//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Command trajeval scores agent tool-call trajectories against an evaluation set.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"trpc.group/trpc-go/trpc-agent-eval/config"
	"trpc.group/trpc-go/trpc-agent-eval/log"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML configuration file")
	dataDir     = flag.String("data-dir", "", "Directory containing evaluation set files")
	evalSetID   = flag.String("eval-set", "", "Evaluation set identifier to execute")
	runsFile    = flag.String("runs-file", "", "JSON file of recorded runs; selects the offline replay runner")
	modelName   = flag.String("model", "", "Model served by the OpenAI-compatible endpoint")
	baseURL     = flag.String("base-url", "", "Base URL of the OpenAI-compatible endpoint")
	docsDir     = flag.String("docs-dir", "", "Document root exposed to the model through the retrieval tool")
	outputDir   = flag.String("output-dir", "", "Directory where evaluation results are stored")
	format      = flag.String("format", "", "Report format: text, csv, markdown, html or json")
	parallelism = flag.Int("parallelism", 0, "Number of rows evaluated concurrently")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn or error")
	serve       = flag.String("serve", "", "Serve the HTTP API on this address instead of running once")
)

func main() {
	flag.Parse()
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Errorf("trajeval: %v", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data-dir":
			cfg.DataDir = *dataDir
		case "eval-set":
			cfg.EvalSet = *evalSetID
		case "runs-file":
			cfg.RunsFile = *runsFile
		case "model":
			cfg.Model.Name = *modelName
		case "base-url":
			cfg.Model.BaseURL = *baseURL
		case "docs-dir":
			cfg.DocsDir = *docsDir
		case "output-dir":
			cfg.Output.Dir = *outputDir
		case "format":
			cfg.Output.Format = *format
		case "parallelism":
			cfg.Parallelism = *parallelism
		case "log-level":
			cfg.LogLevel = *logLevel
		case "serve":
			cfg.Serve = *serve
		}
	})
}
