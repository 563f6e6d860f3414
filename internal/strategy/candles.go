package strategy

import (
	"fmt"

	"ReversalScanner/internal/calculator"
	"ReversalScanner/internal/model"
)

var (
	LabelShadowMountain    = model.Label{Name: "Shadow Mountain Reversal", Note: "隔山打牛: 假阴洗盘结束，连板启动"}
	LabelSupportHold       = model.Label{Name: "High-Volume Support Hold", Note: "高量不破: 回踩守住底线，必火信号"}
	LabelAlignmentLaunch   = model.Label{Name: "Triple Alignment Launch", Note: "三位一体: 步入起飞线，有理操作区"}
	LabelAlignmentPullback = model.Label{Name: "Bullish Alignment Pullback", Note: "草上飞: 机构控盘波段，持股待涨"}
)

// ShrinkPolicy selects which shrink-volume candle after a peak sets the breakout level.
type ShrinkPolicy string

const (
	ShrinkLast  ShrinkPolicy = "last"
	ShrinkFirst ShrinkPolicy = "first"
)

// ParseShrinkPolicy maps a config value to a policy. Empty means ShrinkLast.
func ParseShrinkPolicy(s string) (ShrinkPolicy, error) {
	switch ShrinkPolicy(s) {
	case "", ShrinkLast:
		return ShrinkLast, nil
	case ShrinkFirst:
		return ShrinkFirst, nil
	default:
		return "", fmt.Errorf("unknown shrink policy %q (use: last, first)", s)
	}
}

const (
	limitUpPct         = 9.5
	peakVolumeLookback = 20 // bars before the peak in its volume window
	shrinkVolumeRatio  = 0.5
	shadowNearest      = 2
	shadowFarthest     = 14
	supportNearest     = 1
	supportFarthest    = 9
	supportVolumeMult  = 2.0
)

// ShadowMountain fires when a limit-up follow-through peak (a bearish candle on the
// highest volume of 21 days) holds its low and price breaks above the high of a later
// shrink-volume bearish candle.
type ShadowMountain struct {
	Policy ShrinkPolicy
}

func (ShadowMountain) Label() model.Label { return LabelShadowMountain }
func (ShadowMountain) MinBars() int       { return 30 }

func (r ShadowMountain) Match(series *model.BarSeries, _ *model.IndicatorSet) bool {
	bars := series.Bars
	n := len(bars)
	if n < r.MinBars() {
		return false
	}
	volumes := series.Volumes()
	for i := shadowNearest; i <= shadowFarthest; i++ {
		idx := n - i
		if idx < peakVolumeLookback {
			break
		}
		if !isVolumePeak(bars, volumes, idx) || !supportHolds(bars, idx) {
			continue
		}
		j, ok := r.shrinkCandle(bars, idx)
		if !ok {
			continue
		}
		if bars[n-1].Close > bars[j].High {
			return true
		}
	}
	return false
}

func isVolumePeak(bars []model.Bar, volumes []float64, idx int) bool {
	prev := bars[idx-1].PctChg
	if model.Undefined(prev) || prev <= limitUpPct || !bars[idx].Bearish() {
		return false
	}
	high, _, err := calculator.WindowRange(volumes, idx-peakVolumeLookback, idx)
	if err != nil {
		return false
	}
	return volumes[idx] == high
}

// shrinkCandle finds a bearish candle with less than half the peak volume that follows
// at least one bullish candle after idx. The candle must precede the final bar.
func (r ShadowMountain) shrinkCandle(bars []model.Bar, idx int) (int, bool) {
	limit := bars[idx].Volume * shrinkVolumeRatio
	hasYang := false
	j := -1
	for k := idx + 1; k < len(bars); k++ {
		if bars[k].Bullish() {
			hasYang = true
		}
		if hasYang && bars[k].Bearish() && bars[k].Volume < limit {
			j = k
			if r.Policy == ShrinkFirst {
				break
			}
		}
	}
	if j == -1 || j >= len(bars)-1 {
		return 0, false
	}
	return j, true
}

// supportHolds reports whether no bar after idx trades below bars[idx].Low.
func supportHolds(bars []model.Bar, idx int) bool {
	for k := idx + 1; k < len(bars); k++ {
		if bars[k].Low < bars[idx].Low {
			return false
		}
	}
	return true
}

// SupportHold fires when a bullish candle on more than twice its 5-day average volume
// has not been undercut and the final close clears its high.
type SupportHold struct{}

func (SupportHold) Label() model.Label { return LabelSupportHold }
func (SupportHold) MinBars() int       { return 15 }

func (r SupportHold) Match(series *model.BarSeries, ind *model.IndicatorSet) bool {
	bars := series.Bars
	n := len(bars)
	if n < r.MinBars() {
		return false
	}
	last := bars[n-1]
	for i := supportNearest; i <= supportFarthest; i++ {
		idx := n - 1 - i
		vma := ind.VolMA5[idx]
		if model.Undefined(vma) {
			continue
		}
		if bars[idx].Volume > vma*supportVolumeMult && bars[idx].Bullish() &&
			supportHolds(bars, idx) && last.Close > bars[idx].High {
			return true
		}
	}
	return false
}

// AlignmentLaunch fires when the close crosses above MA60 on above-average volume.
type AlignmentLaunch struct{}

func (AlignmentLaunch) Label() model.Label { return LabelAlignmentLaunch }
func (AlignmentLaunch) MinBars() int       { return 61 }

func (r AlignmentLaunch) Match(series *model.BarSeries, ind *model.IndicatorSet) bool {
	n := series.Len()
	if n < r.MinBars() {
		return false
	}
	last, prev := series.Bars[n-1], series.Bars[n-2]
	ma60, prevMA60 := ind.MAAt(60, n-1), ind.MAAt(60, n-2)
	vma := ind.VolMA5[n-1]
	if model.Undefined(ma60, prevMA60, vma) {
		return false
	}
	return last.Close > ma60 && prev.Close <= prevMA60 && last.Volume > vma
}

// AlignmentPullback fires when MA5 > MA13 > MA21, the day's low held MA13, and the
// close finished above MA5.
type AlignmentPullback struct{}

func (AlignmentPullback) Label() model.Label { return LabelAlignmentPullback }
func (AlignmentPullback) MinBars() int       { return 21 }

func (r AlignmentPullback) Match(series *model.BarSeries, ind *model.IndicatorSet) bool {
	n := series.Len()
	if n < r.MinBars() {
		return false
	}
	last := series.Bars[n-1]
	ma5, ma13, ma21 := ind.MAAt(5, n-1), ind.MAAt(13, n-1), ind.MAAt(21, n-1)
	if model.Undefined(ma5, ma13, ma21) {
		return false
	}
	return ma5 > ma13 && ma13 > ma21 && last.Low >= ma13 && last.Close > ma5
}
