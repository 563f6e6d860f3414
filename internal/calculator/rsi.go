package calculator

// RollingRSI computes a simple-mean RSI over the trailing period close deltas.
// The value saturates at 100 when the trailing loss mean is zero.
// Positions before the first full window of deltas are NaN.
func RollingRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 {
		return out
	}
	for t := period; t < len(closes); t++ {
		var avgGain, avgLoss float64
		for i := t - period + 1; i <= t; i++ {
			change := closes[i] - closes[i-1]
			if change > 0 {
				avgGain += change
			} else {
				avgLoss -= change // make positive
			}
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		if avgLoss == 0 {
			out[t] = 100.0
			continue
		}
		rs := avgGain / avgLoss
		out[t] = 100.0 - 100.0/(1.0+rs)
	}
	return out
}
