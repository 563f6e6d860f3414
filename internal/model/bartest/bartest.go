// Package bartest builds synthetic bar series for tests.
package bartest

import (
	"math"
	"time"

	"ReversalScanner/internal/model"
)

var start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// Flat returns n doji bars at price with a one-percent range and constant volume.
func Flat(n int, price, volume float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{
			Date:     start.AddDate(0, 0, i),
			Open:     price,
			High:     price * 1.01,
			Low:      price * 0.99,
			Close:    price,
			Volume:   volume,
			PctChg:   0,
			Turnover: 1.0,
		}
	}
	return bars
}

// FromCloses returns bars whose open equals the previous close.
func FromCloses(closes []float64, volume float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		open := c
		pct := 0.0
		if i > 0 {
			open = closes[i-1]
			pct = (c - closes[i-1]) / closes[i-1] * 100
		}
		bars[i] = model.Bar{
			Date:     start.AddDate(0, 0, i),
			Open:     open,
			High:     math.Max(open, c) * 1.005,
			Low:      math.Min(open, c) * 0.995,
			Close:    c,
			Volume:   volume,
			PctChg:   pct,
			Turnover: 1.0,
		}
	}
	return bars
}

// Series wraps bars into a validated series and panics on invalid input.
func Series(code string, bars []model.Bar) *model.BarSeries {
	s, err := model.NewBarSeries(code, bars)
	if err != nil {
		panic(err)
	}
	return s
}
