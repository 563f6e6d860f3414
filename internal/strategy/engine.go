package strategy

import (
	"errors"
	"fmt"

	"ReversalScanner/internal/calculator"
	"ReversalScanner/internal/model"
)

// Evaluator classifies one instrument's bar series.
// It returns (nil, nil) when nothing fires and wraps calculator.ErrInsufficientData
// when the series is too short to be evaluated.
type Evaluator interface {
	Kind() model.ScanKind
	MinBars() int
	Evaluate(series *model.BarSeries) (*model.PatternMatch, error)
}

// Rule is one candlestick pattern detector. Rules never mutate their inputs.
type Rule interface {
	Label() model.Label
	MinBars() int
	Match(series *model.BarSeries, ind *model.IndicatorSet) bool
}

// IsInsufficient reports whether err means the series was too short.
func IsInsufficient(err error) bool {
	return errors.Is(err, calculator.ErrInsufficientData)
}

// Chain applies its rules in order and reports the first one that fires.
type Chain struct {
	kind    model.ScanKind
	minBars int
	Rules   []Rule
}

// NewChain builds a chain. minBars is raised to the largest rule minimum if needed.
func NewChain(kind model.ScanKind, minBars int, rules ...Rule) *Chain {
	for _, r := range rules {
		if r.MinBars() > minBars {
			minBars = r.MinBars()
		}
	}
	return &Chain{kind: kind, minBars: minBars, Rules: rules}
}

// CandlestickMinBars is the history the combined scan requires.
const CandlestickMinBars = 65

// NewCandlestickChain returns the combined scanner: A → B → C → D.
func NewCandlestickChain(policy ShrinkPolicy) *Chain {
	return NewChain(model.ScanCandlestick, CandlestickMinBars,
		ShadowMountain{Policy: policy},
		SupportHold{},
		AlignmentLaunch{},
		AlignmentPullback{},
	)
}

// NewShadowChain returns the single-rule scanner running only the shadow mountain rule.
func NewShadowChain(policy ShrinkPolicy) *Chain {
	return NewChain(model.ScanShadow, 0, ShadowMountain{Policy: policy})
}

func (c *Chain) Kind() model.ScanKind { return c.kind }
func (c *Chain) MinBars() int         { return c.minBars }

// Evaluate computes indicators and applies the chain.
func (c *Chain) Evaluate(series *model.BarSeries) (*model.PatternMatch, error) {
	ind, err := calculator.Compute(series, c.minBars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Code, err)
	}
	return c.Apply(series, ind), nil
}

// Apply runs the rules against precomputed indicators.
func (c *Chain) Apply(series *model.BarSeries, ind *model.IndicatorSet) *model.PatternMatch {
	for _, r := range c.Rules {
		if series.Len() < r.MinBars() {
			continue
		}
		if r.Match(series, ind) {
			return &model.PatternMatch{
				Code:     series.Code,
				Label:    r.Label(),
				Snapshot: ind.SnapshotAt(series, series.Len()-1),
			}
		}
	}
	return nil
}
