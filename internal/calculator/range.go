package calculator

import (
	"errors"
	"math"
)

// WindowRange returns the max and min of values[start..end] inclusive.
func WindowRange(values []float64, start, end int) (high, low float64, err error) {
	if start < 0 || end >= len(values) || start > end {
		return 0, 0, errors.New("window out of range")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i <= end; i++ {
		if values[i] > high {
			high = values[i]
		}
		if values[i] < low {
			low = values[i]
		}
	}
	return high, low, nil
}

// TrailingMax returns the max of the last n values, or of all values when fewer exist.
func TrailingMax(values []float64, n int) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	high, _, err := WindowRange(values, start, len(values)-1)
	return high, err
}
