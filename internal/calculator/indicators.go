package calculator

import (
	"errors"
	"fmt"

	"ReversalScanner/internal/model"
)

// ErrInsufficientData is returned when a series is shorter than the requested minimum.
var ErrInsufficientData = errors.New("insufficient data")

// MAWindows are the close moving averages every scan computes.
var MAWindows = []int{5, 13, 21, 60}

const (
	VolumeWindow    = 5
	TurnoverWindow  = 30
	RSIPeriod       = 6
	KDJPeriod       = 9
	KDJCenterOfMass = 2.0
)

// Compute derives the full IndicatorSet for a series of at least minBars bars.
func Compute(series *model.BarSeries, minBars int) (*model.IndicatorSet, error) {
	if series == nil || series.Len() == 0 || series.Len() < minBars {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, n, minBars)
	}

	closes := series.Closes()
	volumes := series.Volumes()

	set := &model.IndicatorSet{MA: make(map[int][]float64, len(MAWindows))}
	for _, w := range MAWindows {
		set.MA[w] = RollingSMA(closes, w)
	}
	set.VolMA5 = RollingSMA(volumes, VolumeWindow)
	set.TurnoverMA30 = RollingSMA(series.Turnovers(), TurnoverWindow)
	set.VolRatio = VolumeRatio(volumes, VolumeWindow)
	set.RSI6 = RollingRSI(closes, RSIPeriod)
	set.KDJK = RollingKDJK(series.Highs(), series.Lows(), closes, KDJPeriod, KDJCenterOfMass)
	return set, nil
}
