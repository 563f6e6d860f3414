// Package scanner applies an evaluator across a universe of instruments.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ReversalScanner/internal/collector"
	"ReversalScanner/internal/logger"
	"ReversalScanner/internal/model"
	"ReversalScanner/internal/strategy"
)

// Reason strings attached to non-matching outcomes.
const (
	ReasonInsufficient = "insufficient history"
	ReasonCancelled    = "cancelled"
)

// Orchestrator evaluates every instrument of a universe on a bounded worker pool.
type Orchestrator struct {
	Loader  collector.Loader
	Workers int
}

// NewOrchestrator creates an Orchestrator. workers <= 0 means one per CPU.
func NewOrchestrator(loader collector.Loader, workers int) *Orchestrator {
	return &Orchestrator{Loader: loader, Workers: workers}
}

func (o *Orchestrator) poolSize(n int) int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Run evaluates each instrument and returns one outcome per universe position.
// Once ctx is done no new instrument is dispatched; the rest are marked skipped.
func (o *Orchestrator) Run(ctx context.Context, eval strategy.Evaluator, universe []model.Instrument) []model.Outcome {
	outcomes := make([]model.Outcome, len(universe))
	if len(universe) == 0 {
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(o.poolSize(len(universe)))

	var done atomic.Int64
	for i, inst := range universe {
		if ctx.Err() != nil {
			outcomes[i] = model.Outcome{Code: inst.Code, Status: model.OutcomeSkipped, Reason: ReasonCancelled}
			continue
		}
		g.Go(func() error {
			outcomes[i] = o.evaluateOne(eval, inst.Code)
			if n := done.Add(1); n%500 == 0 {
				logger.Debug("scan progress",
					zap.String("kind", string(eval.Kind())),
					zap.Int64("done", n),
					zap.Int("total", len(universe)))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// evaluateOne is the per-instrument fault boundary.
func (o *Orchestrator) evaluateOne(eval strategy.Evaluator, code string) (out model.Outcome) {
	out.Code = code
	defer func() {
		if r := recover(); r != nil {
			out = model.Outcome{Code: code, Status: model.OutcomeSkipped, Reason: fmt.Sprintf("panic: %v", r)}
			logger.Warn("evaluation panicked", zap.String("code", code), zap.Any("panic", r))
		}
	}()

	series, err := o.Loader.LoadSeries(code)
	if err != nil {
		reason := "load: " + err.Error()
		if errors.Is(err, model.ErrMalformed) {
			reason = "malformed: " + err.Error()
		}
		logger.Debug("instrument skipped", zap.String("code", code), zap.Error(err))
		return model.Outcome{Code: code, Status: model.OutcomeSkipped, Reason: reason}
	}

	match, err := eval.Evaluate(series)
	switch {
	case strategy.IsInsufficient(err):
		return model.Outcome{Code: code, Status: model.OutcomeNoMatch, Reason: ReasonInsufficient}
	case err != nil:
		logger.Debug("instrument skipped", zap.String("code", code), zap.Error(err))
		return model.Outcome{Code: code, Status: model.OutcomeSkipped, Reason: "evaluate: " + err.Error()}
	case match == nil:
		return model.Outcome{Code: code, Status: model.OutcomeNoMatch}
	}
	return model.Outcome{Code: code, Status: model.OutcomeMatched, Match: match}
}
