package model

import "math"

// IndicatorSet holds indicator arrays aligned index-for-index with a BarSeries.
// Positions without enough history are NaN.
type IndicatorSet struct {
	MA           map[int][]float64 // close moving averages keyed by window
	VolMA5       []float64         // 5-day volume mean, today included
	TurnoverMA30 []float64
	VolRatio     []float64 // volume[t] / mean(volume[t-5..t-1])
	RSI6         []float64
	KDJK         []float64
}

// MAAt returns the moving average of the given window at index t, NaN if unknown.
func (s *IndicatorSet) MAAt(window, t int) float64 {
	return at(s.MA[window], t)
}

func at(arr []float64, t int) float64 {
	if t < 0 || t >= len(arr) {
		return math.NaN()
	}
	return arr[t]
}

// Undefined reports whether any of the values is undefined.
func Undefined(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// IndicatorSnapshot captures the indicator values at the bar that triggered a rule.
type IndicatorSnapshot struct {
	Close        float64
	MA5          float64
	MA13         float64
	MA21         float64
	MA60         float64
	VolMA5       float64
	TurnoverMA30 float64
	VolRatio     float64
	RSI6         float64
	KDJK         float64
}

// SnapshotAt collects the values at index t.
func (s *IndicatorSet) SnapshotAt(series *BarSeries, t int) *IndicatorSnapshot {
	return &IndicatorSnapshot{
		Close:        series.Bars[t].Close,
		MA5:          s.MAAt(5, t),
		MA13:         s.MAAt(13, t),
		MA21:         s.MAAt(21, t),
		MA60:         s.MAAt(60, t),
		VolMA5:       at(s.VolMA5, t),
		TurnoverMA30: at(s.TurnoverMA30, t),
		VolRatio:     at(s.VolRatio, t),
		RSI6:         at(s.RSI6, t),
		KDJK:         at(s.KDJK, t),
	}
}
