package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformed marks a bar series that cannot be evaluated because its records are invalid.
var ErrMalformed = errors.New("malformed bar series")

// Bar represents one trading day for one instrument.
// PctChg and Turnover are NaN when the source file does not carry them.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	PctChg   float64 // percent vs prior close
	Turnover float64 // percent of float traded
}

// Bullish reports whether the candle closed above its open.
func (b Bar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the candle closed below its open.
func (b Bar) Bearish() bool { return b.Close < b.Open }

// BarSeries holds the daily bars of one instrument in ascending date order.
// It is shared read-only between the calculator and every rule during a scan.
type BarSeries struct {
	Code string
	Bars []Bar
}

// NewBarSeries validates ordering and prices and returns the series.
func NewBarSeries(code string, bars []Bar) (*BarSeries, error) {
	for i, b := range bars {
		if !finite(b.Open, b.High, b.Low, b.Close) {
			return nil, fmt.Errorf("%w: %s bar %d has non-finite price", ErrMalformed, code, i)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return nil, fmt.Errorf("%w: %s bar %d has non-positive price", ErrMalformed, code, i)
		}
		if b.Volume < 0 || !finite(b.Volume) {
			return nil, fmt.Errorf("%w: %s bar %d has invalid volume", ErrMalformed, code, i)
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("%w: %s date %s not after %s", ErrMalformed, code,
				b.Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	return &BarSeries{Code: code, Bars: bars}, nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Len returns the number of bars.
func (s *BarSeries) Len() int { return len(s.Bars) }

// Last returns the final bar. The series must not be empty.
func (s *BarSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes extracts the close column.
func (s *BarSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

func (s *BarSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

func (s *BarSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

func (s *BarSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}
	return out
}

func (s *BarSeries) Turnovers() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Turnover
	}
	return out
}

// Instrument maps a code to its display name.
type Instrument struct {
	Code string
	Name string
}
