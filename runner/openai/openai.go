//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package openai drives an agent through an OpenAI compatible chat
// completions endpoint and records the tools the model calls.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-agent-eval/log"
	"trpc.group/trpc-go/trpc-agent-eval/runner"
	"trpc.group/trpc-go/trpc-agent-eval/tool"
)

// DefaultMaxIterations bounds the model/tool round trips of one run.
const DefaultMaxIterations = 10

// ErrMaxIterations is returned when the model keeps calling tools past the limit.
var ErrMaxIterations = errors.New("openai runner: max iterations reached")

// Runner runs queries against a chat model with a set of tools.
type Runner struct {
	client        openai.Client
	model         string
	tools         tool.Set
	systemPrompt  string
	maxIterations int
}

var _ runner.Runner = (*Runner)(nil)

type options struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	tools         []tool.Tool
	systemPrompt  string
	maxIterations int
}

// Option configures a Runner.
type Option func(*options)

// WithAPIKey sets the API key. Without it the client reads OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at another OpenAI compatible endpoint,
// for example a local http://localhost:11434/v1.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTools declares tools the model may call.
func WithTools(tools ...tool.Tool) Option {
	return func(o *options) { o.tools = append(o.tools, tools...) }
}

// WithSystemPrompt sets the system message sent before the query.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithMaxIterations sets the maximum number of model calls per run.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// New creates a Runner for model.
func New(model string, opts ...Option) *Runner {
	o := &options{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(o)
	}
	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, openaiopt.WithHTTPClient(o.httpClient))
	}
	return &Runner{
		client:        openai.NewClient(clientOpts...),
		model:         model,
		tools:         tool.NewSet(o.tools...),
		systemPrompt:  o.systemPrompt,
		maxIterations: o.maxIterations,
	}
}

// Run sends query to the model and dispatches every tool call it emits
// until the model answers without tool calls.
func (r *Runner) Run(ctx context.Context, query string) (*runner.Run, error) {
	rec := runner.NewRecorder()
	var messages []openai.ChatCompletionMessageParamUnion
	if r.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(r.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(query))
	tools := r.convertTools()

	for i := 0; i < r.maxIterations; i++ {
		params := openai.ChatCompletionNewParams{
			Model:    shared.ChatModel(r.model),
			Messages: messages,
		}
		if len(tools) > 0 {
			params.Tools = tools
		}
		completion, err := r.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("openai runner: chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, errors.New("openai runner: empty choices in response")
		}
		msg := completion.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &runner.Run{Response: msg.Content, ToolCalls: rec.Calls()}, nil
		}
		messages = append(messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			rec.Record(tc.Function.Name, tc.Function.Arguments)
			result := r.dispatch(ctx, tc.Function.Name, tc.Function.Arguments)
			messages = append(messages, openai.ToolMessage(result, tc.ID))
		}
	}
	return &runner.Run{ToolCalls: rec.Calls()}, ErrMaxIterations
}

// dispatch runs the named tool. Failures are reported back to the model
// as the tool result so that the run can continue.
func (r *Runner) dispatch(ctx context.Context, name, args string) string {
	t, ok := r.tools[name]
	if !ok {
		log.Warnf("openai runner: model called unknown tool %q", name)
		return fmt.Sprintf("error: unknown tool %q", name)
	}
	out, err := t.Call(ctx, []byte(args))
	if err != nil {
		log.Debugf("openai runner: tool %s failed: %v", name, err)
		return "error: " + err.Error()
	}
	return out
}

func (r *Runner) convertTools() []openai.ChatCompletionToolParam {
	var result []openai.ChatCompletionToolParam
	for _, decl := range r.tools.Declarations() {
		schemaBytes, err := json.Marshal(decl.Parameters)
		if err != nil {
			log.Errorf("failed to marshal tool schema for %s: %v", decl.Name, err)
			continue
		}
		var parameters shared.FunctionParameters
		if err := json.Unmarshal(schemaBytes, &parameters); err != nil {
			log.Errorf("failed to unmarshal tool schema for %s: %v", decl.Name, err)
			continue
		}
		result = append(result, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        decl.Name,
				Description: openai.String(decl.Description),
				Parameters:  parameters,
			},
		})
	}
	return result
}
