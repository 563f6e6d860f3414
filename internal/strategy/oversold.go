package strategy

import (
	"fmt"

	"ReversalScanner/internal/calculator"
	"ReversalScanner/internal/model"
)

var LabelOversold = model.Label{Name: "Extreme Shrink Oversold", Note: "极致缩量超跌"}

// OversoldConfig holds the thresholds of the composite oversold filter.
type OversoldConfig struct {
	MinPrice           float64 `yaml:"min_price" validate:"gte=0"`
	MaxAvgTurnover30   float64 `yaml:"max_avg_turnover_30" validate:"gt=0"`
	MinVolumeRatio     float64 `yaml:"min_volume_ratio" validate:"gte=0"`
	MaxVolumeRatio     float64 `yaml:"max_volume_ratio" validate:"gtfield=MinVolumeRatio"`
	MaxRSI6            float64 `yaml:"max_rsi6" validate:"gt=0,lte=100"`
	MaxKDJK            float64 `yaml:"max_kdj_k" validate:"gt=0,lte=100"`
	MinProfitPotential float64 `yaml:"min_profit_potential"`
	MaxTodayChange     float64 `yaml:"max_today_change"`
}

// DefaultOversoldConfig returns the desk defaults.
func DefaultOversoldConfig() OversoldConfig {
	return OversoldConfig{
		MinPrice:           5.0,
		MaxAvgTurnover30:   2.5,
		MinVolumeRatio:     0.2,
		MaxVolumeRatio:     1.2,
		MaxRSI6:            30,
		MaxKDJK:            30,
		MinProfitPotential: 10,
		MaxTodayChange:     1.5,
	}
}

// Passes reports whether every threshold holds. Any undefined input rejects.
func (c OversoldConfig) Passes(d *model.OversoldDetail) bool {
	if model.Undefined(d.Price, d.MA5, d.AvgTurnover30, d.VolRatio, d.RSI6, d.KDJK, d.Potential, d.Change) {
		return false
	}
	switch {
	case d.Price < c.MinPrice:
		return false
	case d.AvgTurnover30 > c.MaxAvgTurnover30:
		return false
	case d.Potential < c.MinProfitPotential:
		return false
	case d.Change > c.MaxTodayChange:
		return false
	case d.RSI6 > c.MaxRSI6 || d.KDJK > c.MaxKDJK:
		return false
	case d.Price < d.MA5:
		// still sliding below the 5-day line
		return false
	case d.VolRatio < c.MinVolumeRatio || d.VolRatio > c.MaxVolumeRatio:
		return false
	}
	return true
}

const (
	oversoldMinBars     = 60
	breakoutLookback    = 3
	volumeSurgeMultiple = 1.4
)

// OversoldFilter is the composite oversold evaluator.
type OversoldFilter struct {
	Config OversoldConfig
}

func NewOversoldFilter(cfg OversoldConfig) *OversoldFilter {
	return &OversoldFilter{Config: cfg}
}

func (f *OversoldFilter) Kind() model.ScanKind { return model.ScanOversold }
func (f *OversoldFilter) MinBars() int         { return oversoldMinBars }

func (f *OversoldFilter) Evaluate(series *model.BarSeries) (*model.PatternMatch, error) {
	ind, err := calculator.Compute(series, oversoldMinBars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", series.Code, err)
	}
	d := Describe(series, ind)
	if !f.Config.Passes(d) {
		return nil, nil
	}
	return &model.PatternMatch{
		Code:     series.Code,
		Label:    LabelOversold,
		Snapshot: ind.SnapshotAt(series, series.Len()-1),
		Oversold: d,
	}, nil
}

// Describe collects the filter inputs and the descriptive fields at the final bar.
func Describe(series *model.BarSeries, ind *model.IndicatorSet) *model.OversoldDetail {
	n := series.Len()
	last := series.Last()
	t := n - 1

	change := last.PctChg
	if model.Undefined(change) {
		change = 0
	}
	d := &model.OversoldDetail{
		Price:            last.Close,
		MA5:              ind.MAAt(5, t),
		MA60:             ind.MAAt(60, t),
		AvgTurnover30:    ind.TurnoverMA30[t],
		VolRatio:         ind.VolRatio[t],
		RSI6:             ind.RSI6[t],
		KDJK:             ind.KDJK[t],
		Change:           change,
		ConsecutiveDrops: ConsecutiveDrops(series),
		Breakout:         breakout(series),
		VolumeSurge:      volumeSurge(series),
	}
	d.Potential = (d.MA60 - last.Close) / last.Close * 100
	return d
}

// ConsecutiveDrops counts down closes in a row ending the day before the latest bar.
func ConsecutiveDrops(series *model.BarSeries) int {
	bars := series.Bars
	count := 0
	for k := len(bars) - 2; k >= 1; k-- {
		if bars[k].Close >= bars[k-1].Close {
			break
		}
		count++
	}
	return count
}

func breakout(series *model.BarSeries) bool {
	n := series.Len()
	if n < breakoutLookback+1 {
		return false
	}
	high, _, err := calculator.WindowRange(series.Highs(), n-1-breakoutLookback, n-2)
	if err != nil {
		return false
	}
	return series.Bars[n-1].Close > high
}

func volumeSurge(series *model.BarSeries) bool {
	n := series.Len()
	if n < 2 {
		return false
	}
	today, yesterday := series.Bars[n-1].Volume, series.Bars[n-2].Volume
	if yesterday == 0 {
		return today > 0
	}
	return today/yesterday > volumeSurgeMultiple
}
