package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReversalScanner/internal/model/bartest"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = CalculateSMA([]float64{1, 2}, 5)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestRollingSMA_ConstantSeries(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 12.34
	}
	for _, w := range MAWindows {
		ma := RollingSMA(closes, w)
		require.Len(t, ma, len(closes))
		for i, v := range ma {
			if i < w-1 {
				assert.True(t, math.IsNaN(v), "window %d index %d should be undefined", w, i)
				continue
			}
			assert.InDelta(t, 12.34, v, 1e-9, "window %d index %d", w, i)
		}
	}
}

func TestRollingSMA_ShortInput(t *testing.T) {
	ma := RollingSMA([]float64{1, 2, 3}, 5)
	require.Len(t, ma, 3)
	for _, v := range ma {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingSMA_MissingValues(t *testing.T) {
	vals := []float64{1, math.NaN(), 3, 4, 5, 6}
	ma := RollingSMA(vals, 3)
	assert.True(t, math.IsNaN(ma[2]))
	assert.True(t, math.IsNaN(ma[3]))
	assert.InDelta(t, 4.0, ma[4], 1e-12)
	assert.InDelta(t, 5.0, ma[5], 1e-12)
}

func TestRollingRSI_SaturatesOnStraightRise(t *testing.T) {
	closes := []float64{10, 10.1, 10.2, 10.3, 10.4, 10.5, 10.6, 10.7}
	rsi := RollingRSI(closes, 6)
	for i := 0; i < 6; i++ {
		assert.True(t, math.IsNaN(rsi[i]))
	}
	assert.Equal(t, 100.0, rsi[6])
	assert.Equal(t, 100.0, rsi[7])
}

func TestRollingRSI_Mixed(t *testing.T) {
	// deltas: +1 -1 +1 -1 +1 -1 → gains 3/6, losses 3/6 → RSI 50
	closes := []float64{10, 11, 10, 11, 10, 11, 10}
	rsi := RollingRSI(closes, 6)
	assert.InDelta(t, 50.0, rsi[6], 1e-9)

	// deltas: +2 -1 -1 -1 -1 -1 → gain 2/6, loss 5/6 → rs 0.4 → RSI 28.571
	closes = []float64{10, 12, 11, 10, 9, 8, 7}
	rsi = RollingRSI(closes, 6)
	assert.InDelta(t, 100-100/1.4, rsi[6], 1e-9)
}

func TestRollingKDJK(t *testing.T) {
	bars := bartest.FromCloses([]float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}, 1000)
	s := bartest.Series("000001", bars)
	k := RollingKDJK(s.Highs(), s.Lows(), s.Closes(), 9, 2)
	for i := 0; i < 8; i++ {
		assert.True(t, math.IsNaN(k[i]))
	}
	for i := 8; i < len(k); i++ {
		assert.False(t, math.IsNaN(k[i]))
		assert.True(t, k[i] >= 0 && k[i] <= 100, "K out of range: %f", k[i])
	}
	// first defined value equals the raw stochastic value
	hh, _, err := WindowRange(s.Highs(), 0, 8)
	require.NoError(t, err)
	_, ll, err := WindowRange(s.Lows(), 0, 8)
	require.NoError(t, err)
	assert.InDelta(t, (s.Bars[8].Close-ll)/(hh-ll)*100, k[8], 1e-9)
}

func TestRollingKDJK_ZeroRangeUndefined(t *testing.T) {
	n := 12
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range closes {
		highs[i], lows[i], closes[i] = 10, 10, 10
	}
	k := RollingKDJK(highs, lows, closes, 9, 2)
	for _, v := range k {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingKDJK_DefinedAgainAfterZeroRange(t *testing.T) {
	// bar 8 spans 10..12; bars 9..17 are flat at 10 so the window ending at 17 has
	// zero range; bar 18 spans 10..12 and closes at the top.
	n := 19
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range closes {
		highs[i], lows[i], closes[i] = 10, 10, 10
	}
	highs[8], closes[8] = 12, 11
	highs[18], closes[18] = 12, 12

	k := RollingKDJK(highs, lows, closes, 9, 2)
	assert.InDelta(t, 50.0, k[8], 1e-9)
	assert.False(t, math.IsNaN(k[16]))
	assert.True(t, math.IsNaN(k[17]))
	require.False(t, math.IsNaN(k[18]))

	// raw values: 50 at bar 8, 0 on bars 9..16, undefined at 17, 100 at 18
	decay := 2.0 / 3
	num, den := 100.0, 1.0
	for i := 8; i <= 16; i++ {
		w := math.Pow(decay, float64(18-i))
		den += w
		if i == 8 {
			num += 50 * w
		}
	}
	assert.InDelta(t, num/den, k[18], 1e-9)
}

func TestRollingKDJK_Smoothing(t *testing.T) {
	// Fixed range 0..10, closes alternate 10 and 0 once the window fills.
	n := 11
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range closes {
		highs[i], lows[i], closes[i] = 10, 0, 5
	}
	closes[8], closes[9], closes[10] = 10, 0, 10
	k := RollingKDJK(highs, lows, closes, 9, 2)
	assert.InDelta(t, 100.0, k[8], 1e-9)
	// adjusted weights: (2/3*100 + 0) / (2/3 + 1)
	assert.InDelta(t, (2.0/3*100)/(2.0/3+1), k[9], 1e-9)
	w := []float64{4.0 / 9, 2.0 / 3, 1}
	assert.InDelta(t, (w[0]*100+w[2]*100)/(w[0]+w[1]+w[2]), k[10], 1e-9)
}

func TestVolumeRatio_ExcludesToday(t *testing.T) {
	vols := []float64{100, 100, 100, 100, 100, 300, 50}
	r := VolumeRatio(vols, 5)
	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(r[i]))
	}
	assert.InDelta(t, 3.0, r[5], 1e-12)
	// previous five: 100,100,100,100,300 → mean 140
	assert.InDelta(t, 50.0/140.0, r[6], 1e-12)
}

func TestVolumeRatio_ZeroBase(t *testing.T) {
	r := VolumeRatio([]float64{0, 0, 0, 0, 0, 10}, 5)
	assert.True(t, math.IsNaN(r[5]))
}

func TestWindowRange(t *testing.T) {
	h, l, err := WindowRange([]float64{3, 1, 4, 1, 5}, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 4.0, h)
	assert.Equal(t, 1.0, l)

	_, _, err = WindowRange([]float64{1}, 0, 3)
	assert.Error(t, err)

	m, err := TrailingMax([]float64{9, 1, 2, 3}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, m)
}

func TestCompute_InsufficientData(t *testing.T) {
	s := bartest.Series("000001", bartest.Flat(20, 10, 1000))
	_, err := Compute(s, 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestCompute_Aligned(t *testing.T) {
	s := bartest.Series("000001", bartest.Flat(70, 10, 1000))
	set, err := Compute(s, 65)
	require.NoError(t, err)
	for _, w := range MAWindows {
		assert.Len(t, set.MA[w], 70)
		assert.InDelta(t, 10.0, set.MAAt(w, 69), 1e-9)
	}
	assert.Len(t, set.RSI6, 70)
	assert.Len(t, set.KDJK, 70)
	assert.InDelta(t, 1.0, set.VolRatio[69], 1e-12)
	assert.InDelta(t, 1.0, set.TurnoverMA30[69], 1e-12)
	assert.True(t, math.IsNaN(set.TurnoverMA30[28]))
	// flat closes: no losses → saturated
	assert.Equal(t, 100.0, set.RSI6[69])
}

func TestCompute_Idempotent(t *testing.T) {
	s := bartest.Series("000001", bartest.FromCloses([]float64{
		10, 10.2, 10.1, 10.4, 10.3, 10.6, 10.5, 10.9, 10.8, 11.0, 11.2, 11.1,
	}, 1000))
	a, err := Compute(s, 10)
	require.NoError(t, err)
	b, err := Compute(s, 10)
	require.NoError(t, err)
	for i := range a.KDJK {
		if math.IsNaN(a.KDJK[i]) {
			assert.True(t, math.IsNaN(b.KDJK[i]))
			continue
		}
		assert.Equal(t, a.KDJK[i], b.KDJK[i])
	}
}
