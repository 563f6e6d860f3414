package calculator

import "github.com/markcheno/go-talib"

// RollingKDJK computes the K line of KDJ(period,3,3): the raw stochastic value
// smoothed by an adjusted exponentially weighted mean with the given center of mass.
//
// A zero high-low range leaves that day's K undefined; the smoothing weights keep
// decaying by position across such gaps.
func RollingKDJK(highs, lows, closes []float64, period int, com float64) []float64 {
	n := len(closes)
	out := nanSlice(n)
	if period <= 0 || n < period || len(highs) != n || len(lows) != n {
		return out
	}
	highest := talib.Max(highs, period)
	lowest := talib.Min(lows, period)

	decay := 1 - 1/(1+com)
	var num, den float64
	for t := 0; t < n; t++ {
		num *= decay
		den *= decay
		if t < period-1 {
			continue
		}
		rng := highest[t] - lowest[t]
		if rng == 0 {
			continue
		}
		rsv := (closes[t] - lowest[t]) / rng * 100
		num += rsv
		den++
		out[t] = num / den
	}
	return out
}
