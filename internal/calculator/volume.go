package calculator

// VolumeRatio divides each day's volume by the mean of the previous period days.
// Today is excluded from the denominator; a zero denominator is NaN.
func VolumeRatio(volumes []float64, period int) []float64 {
	out := nanSlice(len(volumes))
	prev := RollingSMA(volumes, period)
	for t := period; t < len(volumes); t++ {
		base := prev[t-1]
		if base == 0 {
			continue
		}
		out[t] = volumes[t] / base
	}
	return out
}
