//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"trpc.group/trpc-go/trpc-agent-eval/evalset"
)

type evalCaseParam struct {
	idx       int
	ctx       context.Context
	cancel    context.CancelFunc
	evalSetID string
	evalCase  *evalset.EvalCase
	svc       *Service
	outcomes  []*caseOutcome
	wg        *sync.WaitGroup
}

func (p *evalCaseParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.cancel = nil
	p.evalSetID = ""
	p.evalCase = nil
	p.svc = nil
	p.outcomes = nil
	p.wg = nil
}

var evalCaseParamPool = &sync.Pool{
	New: func() any { return new(evalCaseParam) },
}

func createEvalCasePool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*evalCaseParam)
		if !ok {
			panic("eval case pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			evalCaseParamPool.Put(param)
		}()
		o := param.svc.evaluateCase(param.ctx, param.evalSetID, param.idx, param.evalCase)
		if o.fatal && !o.canceled {
			// Stop rows that have not started yet.
			param.cancel()
		}
		param.outcomes[param.idx] = o
	})
	if err != nil {
		return nil, fmt.Errorf("create eval case pool: %w", err)
	}
	return pool, nil
}

// evaluateParallel evaluates the rows on the worker pool. outcomes[i]
// belongs to set.EvalCases[i].
func (s *Service) evaluateParallel(ctx context.Context, set *evalset.EvalSet) []*caseOutcome {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([]*caseOutcome, len(set.EvalCases))
	var wg sync.WaitGroup
	for idx, c := range set.EvalCases {
		wg.Add(1)
		param := evalCaseParamPool.Get().(*evalCaseParam)
		param.idx = idx
		param.ctx = ctx
		param.cancel = cancel
		param.evalSetID = set.EvalSetID
		param.evalCase = c
		param.svc = s
		param.outcomes = outcomes
		param.wg = &wg
		if err := s.pool.Invoke(param); err != nil {
			wg.Done()
			outcomes[idx] = &caseOutcome{
				err:   fmt.Errorf("submit eval case %d: %w", idx, err),
				fatal: true,
			}
			param.reset()
			evalCaseParamPool.Put(param)
		}
	}
	wg.Wait()
	return outcomes
}
