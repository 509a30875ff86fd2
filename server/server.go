//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes trajectory scoring and stored reports over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-agent-eval/evalresult"
	evalresultinmemory "trpc.group/trpc-go/trpc-agent-eval/evalresult/inmemory"
	"trpc.group/trpc-go/trpc-agent-eval/evalset"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/coverage"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/exactmatch"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/precision"
	"trpc.group/trpc-go/trpc-agent-eval/evaluator/registry"
	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/report"
	"trpc.group/trpc-go/trpc-agent-eval/service"
	"trpc.group/trpc-go/trpc-agent-eval/toolcall"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// ScoreRequest is the body of POST /v1/trajectory/score.
type ScoreRequest struct {
	ToolCalls       []*toolcall.ToolCall `json:"tool_calls"`
	ExpectedToolUse toolcall.RawExpected `json:"expected_tool_use"`
}

// ScoreResponse holds one result per trajectory metric.
type ScoreResponse struct {
	ExactMatch    *evaluator.EvaluationResult `json:"exact_match"`
	Precision     *evaluator.EvaluationResult `json:"precision"`
	ToolNameMatch *evaluator.EvaluationResult `json:"tool_name_match"`
}

// ListResponse lists IDs.
type ListResponse struct {
	IDs []string `json:"ids"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the HTTP API.
type Server struct {
	router         *mux.Router
	handler        http.Handler
	resultManager  evalresult.Manager
	evalSetManager evalset.Manager
	service        *service.Service
	evaluators     []evaluator.Evaluator
}

// Option configures a Server.
type Option func(*Server)

// WithResultManager sets the store behind /v1/results.
func WithResultManager(m evalresult.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.resultManager = m
		}
	}
}

// WithEvalSetManager enables GET /v1/eval_sets.
func WithEvalSetManager(m evalset.Manager) Option {
	return func(s *Server) {
		s.evalSetManager = m
	}
}

// WithService enables POST /v1/eval_sets/{evalSetId}/run.
func WithService(svc *service.Service) Option {
	return func(s *Server) {
		s.service = svc
	}
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		resultManager: evalresultinmemory.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	evaluators, err := registry.New().Resolve(registry.DefaultMetrics...)
	if err != nil {
		// The default registry always holds the trajectory metrics.
		panic(err)
	}
	s.evaluators = evaluators
	s.registerRoutes()
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Length", "Content-Type"},
	})
	s.handler = c.Handler(s.router)
	return s
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/trajectory/score", s.handleScore).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/results", s.handleListResults).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/results/{resultId}", s.handleGetResult).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/eval_sets", s.handleListEvalSets).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/eval_sets/{evalSetId}/run", s.handleRunEvalSet).Methods(http.MethodPost)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req ScoreRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	expected, err := toolcall.ParseExpected(req.ExpectedToolUse)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := registry.EvaluateAll(r.Context(), s.evaluators, req.ToolCalls, expected)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, &ScoreResponse{
		ExactMatch:    results[exactmatch.Name],
		Precision:     results[precision.Name],
		ToolNameMatch: results[coverage.Name],
	})
}

func (s *Server) handleListResults(w http.ResponseWriter, r *http.Request) {
	ids, err := s.resultManager.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, &ListResponse{IDs: ids})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["resultId"]
	rep, err := s.resultManager.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, fmt.Errorf("eval result %s not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeReport(w, r, rep)
}

func (s *Server) handleListEvalSets(w http.ResponseWriter, r *http.Request) {
	if s.evalSetManager == nil {
		writeError(w, http.StatusNotFound, errors.New("eval sets are not available"))
		return
	}
	ids, err := s.evalSetManager.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, &ListResponse{IDs: ids})
}

func (s *Server) handleRunEvalSet(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		writeError(w, http.StatusNotFound, errors.New("evaluation is not available"))
		return
	}
	id := mux.Vars(r)["evalSetId"]
	log.Infof("handleRunEvalSet called: eval set %s", id)
	rep, err := s.service.EvaluateByID(r.Context(), id)
	var perr *toolcall.ParseError
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEvalSetNotFound):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.As(err, &perr):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case rep == nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	default:
		// Partial report: some agent runs failed.
		log.Warnf("eval set %s finished with errors: %v", id, err)
	}
	if rep.ResultID == "" {
		resultID, err := s.resultManager.Save(r.Context(), rep)
		if err != nil {
			log.Errorf("save eval result for %s: %v", id, err)
		}
		rep.ResultID = resultID
	}
	writeReport(w, r, rep)
}

// writeReport writes rep as HTML when the client asks for it, JSON otherwise.
func writeReport(w http.ResponseWriter, r *http.Request, rep *report.Report) {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := rep.RenderHTML(w); err != nil {
			log.Errorf("render report %s: %v", rep.ResultID, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("write json response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, &errorResponse{Error: err.Error()})
}
