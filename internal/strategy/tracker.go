package strategy

import (
	"fmt"
	"math"

	"ReversalScanner/internal/calculator"
	"ReversalScanner/internal/model"
)

var LabelPullbackConfirmed = model.Label{Name: "MA13 Pullback Confirmed", Note: "回踩13日线买点确认"}

// TrackerConfig holds the entry-confirmation thresholds applied to a shortlist.
type TrackerConfig struct {
	MaxDistToMA13   float64 `yaml:"max_dist_to_ma13" validate:"gt=0"`
	MaxVolumeToPeak float64 `yaml:"max_volume_to_peak" validate:"gt=0,lte=1"`
	VolumeLookback  int     `yaml:"volume_lookback" validate:"gte=2"`
}

func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxDistToMA13:   0.02,
		MaxVolumeToPeak: 0.4,
		VolumeLookback:  5,
	}
}

const (
	trackerMAWindow = 13
	trackerMinBars  = trackerMAWindow + 1
)

// Tracker re-scores a prior shortlist: price back at MA13 on dried-up volume with a
// stop-falling candle.
type Tracker struct {
	Config TrackerConfig
}

func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{Config: cfg}
}

func (t *Tracker) Kind() model.ScanKind { return model.ScanTrack }
func (t *Tracker) MinBars() int         { return trackerMinBars }

func (t *Tracker) Evaluate(series *model.BarSeries) (*model.PatternMatch, error) {
	if series.Len() < trackerMinBars {
		return nil, fmt.Errorf("%s: %w: %d bars, need %d",
			series.Code, calculator.ErrInsufficientData, series.Len(), trackerMinBars)
	}
	ma13, err := calculator.CalculateSMA(series.Closes(), trackerMAWindow)
	if err != nil {
		return nil, fmt.Errorf("%s: ma13: %w", series.Code, err)
	}
	volPeak, err := calculator.TrailingMax(series.Volumes(), t.Config.VolumeLookback)
	if err != nil {
		return nil, fmt.Errorf("%s: volume peak: %w", series.Code, err)
	}
	if ma13 == 0 {
		return nil, nil
	}

	n := series.Len()
	curr, prev := series.Bars[n-1], series.Bars[n-2]

	dist := math.Abs(curr.Close-ma13) / ma13
	nearMA13 := dist <= t.Config.MaxDistToMA13
	quiet := curr.Volume <= volPeak*t.Config.MaxVolumeToPeak
	stopFalling := curr.Close >= prev.Low || curr.Bullish()

	if !nearMA13 || !quiet || !stopFalling {
		return nil, nil
	}
	return &model.PatternMatch{
		Code:  series.Code,
		Label: LabelPullbackConfirmed,
		Track: &model.TrackDetail{DistToMA13: dist * 100, Close: curr.Close},
	}, nil
}
