package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReversalScanner/internal/calculator"
	"ReversalScanner/internal/model"
	"ReversalScanner/internal/model/bartest"
)

func candle(o, h, l, c, v float64) model.Bar {
	return model.Bar{Open: o, High: h, Low: l, Close: c, Volume: v}
}

func doji(p, v float64) model.Bar {
	return candle(p, p+0.1, p-0.1, p, v)
}

// shadowBars lays out a 30-bar mountain: limit-up on bar 19, volume-spike bearish peak
// on bar 20, a bullish bar 23, a shrink-volume bearish bar 25 and a breakout on bar 29.
func shadowBars() []model.Bar {
	bars := bartest.Flat(30, 10, 1000)
	set := func(i int, b model.Bar) {
		b.Date = bars[i].Date
		b.Turnover = 1.0
		bars[i] = b
	}
	limitUp := candle(10, 11, 10, 11, 3000)
	limitUp.PctChg = 10.0
	set(19, limitUp)
	set(20, candle(12, 12.2, 11.0, 11.2, 5000))
	set(21, candle(11.5, 11.6, 11.3, 11.5, 2000))
	set(22, doji(11.5, 2000))
	set(23, candle(11.4, 11.7, 11.3, 11.6, 2000))
	set(24, doji(11.6, 2000))
	set(25, candle(11.6, 11.65, 11.3, 11.4, 1500))
	set(26, doji(11.5, 2000))
	set(27, doji(11.5, 2000))
	set(28, doji(11.5, 2000))
	set(29, candle(11.5, 11.9, 11.45, 11.8, 3000))
	return bars
}

func TestShadowMountain_Scenario(t *testing.T) {
	s := bartest.Series("600001", shadowBars())
	for _, p := range []ShrinkPolicy{ShrinkLast, ShrinkFirst} {
		assert.True(t, ShadowMountain{Policy: p}.Match(s, nil), "policy %s", p)
	}

	m, err := NewShadowChain(ShrinkLast).Evaluate(s)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Shadow Mountain Reversal", m.Label.Name)
	assert.Equal(t, "600001", m.Code)
}

func TestShadowMountain_ShrinkPolicy(t *testing.T) {
	bars := shadowBars()
	// a later, taller shrink-volume candle that the final close does not clear
	second := candle(11.9, 12.0, 11.6, 11.7, 1000)
	second.Date, second.Turnover = bars[27].Date, 1.0
	bars[27] = second
	s := bartest.Series("600001", bars)

	assert.True(t, ShadowMountain{Policy: ShrinkFirst}.Match(s, nil))
	assert.False(t, ShadowMountain{Policy: ShrinkLast}.Match(s, nil))
}

func TestShadowMountain_SupportBroken(t *testing.T) {
	bars := shadowBars()
	bars[26].Low = 10.9
	s := bartest.Series("600001", bars)
	assert.False(t, ShadowMountain{Policy: ShrinkLast}.Match(s, nil))
}

func TestShadowMountain_NoBullishBeforeShrink(t *testing.T) {
	bars := shadowBars()
	bars[23].Open, bars[23].Close = 11.5, 11.5
	s := bartest.Series("600001", bars)
	assert.False(t, ShadowMountain{Policy: ShrinkLast}.Match(s, nil))
}

func TestShadowMountain_NearerPeakWithoutBreakout(t *testing.T) {
	bars := shadowBars()
	bars[26].PctChg = 10.0
	nearer := candle(11.8, 11.9, 11.3, 11.6, 6000)
	nearer.Date, nearer.Turnover = bars[27].Date, 1.0
	bars[27] = nearer
	s := bartest.Series("600001", bars)
	assert.True(t, ShadowMountain{Policy: ShrinkLast}.Match(s, nil))
}

func TestShadowMountain_ShortSeries(t *testing.T) {
	s := bartest.Series("600001", shadowBars()[1:])
	assert.False(t, ShadowMountain{Policy: ShrinkLast}.Match(s, nil))

	_, err := NewShadowChain(ShrinkLast).Evaluate(s)
	require.Error(t, err)
	assert.True(t, IsInsufficient(err))
}

func TestSupportHold(t *testing.T) {
	bars := bartest.Flat(30, 10, 1000)
	set := func(i int, b model.Bar) {
		b.Date = bars[i].Date
		bars[i] = b
	}
	set(25, candle(10, 10.5, 9.95, 10.4, 5000))
	for i := 26; i < 29; i++ {
		set(i, doji(10.3, 1000))
	}
	set(29, candle(10.3, 10.7, 10.25, 10.6, 1200))
	s := bartest.Series("000002", bars)
	ind, err := calculator.Compute(s, 15)
	require.NoError(t, err)

	assert.True(t, SupportHold{}.Match(s, ind))

	// undercut the spike's low
	bars[27].Low = 9.9
	s = bartest.Series("000002", bars)
	assert.False(t, SupportHold{}.Match(s, ind))
}

// supportSeries lays bars over a flat 30-bar base, keeping the base dates.
func supportSeries(t *testing.T, over map[int]model.Bar) (*model.BarSeries, *model.IndicatorSet) {
	t.Helper()
	bars := bartest.Flat(30, 10, 1000)
	for i, b := range over {
		b.Date = bars[i].Date
		bars[i] = b
	}
	s := bartest.Series("000002", bars)
	ind, err := calculator.Compute(s, 15)
	require.NoError(t, err)
	return s, ind
}

func TestSupportHold_OlderSpikeAfterNearerUndercut(t *testing.T) {
	over := map[int]model.Bar{
		22: candle(10, 10.5, 9.95, 10.4, 5000),
		23: doji(10.3, 1000),
		24: doji(10.3, 1000),
		25: doji(10.3, 1000),
		26: candle(10.3, 10.6, 10.25, 10.5, 12000),
		27: doji(10.3, 1000), // undercuts bar 26
		28: doji(10.3, 1000),
		29: candle(10.3, 10.7, 10.25, 10.65, 1200),
	}
	s, ind := supportSeries(t, over)
	assert.True(t, SupportHold{}.Match(s, ind))

	// without the older spike only the undercut one is left
	over[22] = doji(10.3, 1000)
	s, ind = supportSeries(t, over)
	assert.False(t, SupportHold{}.Match(s, ind))
}

func TestSupportHold_NearestSpikeFirst(t *testing.T) {
	over := map[int]model.Bar{
		22: candle(10.3, 10.5, 10.25, 10.4, 5000),
		23: doji(10.3, 1000), // undercuts bar 22
		24: doji(10.3, 1000),
		25: doji(10.3, 1000),
		26: candle(10.3, 10.6, 10.25, 10.5, 12000),
		27: doji(10.4, 1000),
		28: doji(10.4, 1000),
		29: candle(10.4, 10.7, 10.35, 10.65, 1200),
	}
	s, ind := supportSeries(t, over)
	assert.True(t, SupportHold{}.Match(s, ind))

	over[28] = doji(10.3, 1000)
	s, ind = supportSeries(t, over)
	assert.False(t, SupportHold{}.Match(s, ind))
}

func TestAlignmentLaunch_Scenario(t *testing.T) {
	n := 61
	bars := bartest.Flat(n, 100, 1000)
	bars[n-2].Close, bars[n-2].Low = 99, 98.9
	bars[n-1].Close, bars[n-1].High = 105, 105.5
	bars[n-1].Volume = 1500

	ma60 := make([]float64, n)
	volMA5 := make([]float64, n)
	for i := range ma60 {
		ma60[i] = 100
		volMA5[i] = 1000
	}
	ind := &model.IndicatorSet{MA: map[int][]float64{60: ma60}, VolMA5: volMA5}
	assert.True(t, AlignmentLaunch{}.Match(bartest.Series("600002", bars), ind))

	// no crossing: prior close already above MA60
	bars[n-2].Close = 101
	assert.False(t, AlignmentLaunch{}.Match(bartest.Series("600002", bars), ind))

	// volume does not confirm
	bars[n-2].Close = 99
	bars[n-1].Volume = 900
	assert.False(t, AlignmentLaunch{}.Match(bartest.Series("600002", bars), ind))
}

func TestAlignmentLaunch_Series(t *testing.T) {
	closes := make([]float64, 65)
	for i := range closes {
		closes[i] = 100
	}
	closes[63], closes[64] = 99, 105
	bars := bartest.FromCloses(closes, 1000)
	bars[64].Volume = 1500
	s := bartest.Series("600002", bars)

	m, err := NewCandlestickChain(ShrinkLast).Evaluate(s)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, LabelAlignmentLaunch, m.Label)
	assert.InDelta(t, 105.0, m.Snapshot.Close, 1e-9)
}

// launchAndPullback rises from a deep base and jumps through MA60 on the final bar,
// satisfying both the launch and the pullback rules.
func launchAndPullback() *model.BarSeries {
	var closes []float64
	for i := 0; i < 40; i++ {
		closes = append(closes, 200)
	}
	for p := 100.0; p <= 123; p++ {
		closes = append(closes, p)
	}
	closes = append(closes, 170)
	bars := bartest.FromCloses(closes, 1000)
	bars[len(bars)-1].Volume = 2000
	return bartest.Series("600003", bars)
}

func TestChain_PriorityLaunchBeforePullback(t *testing.T) {
	s := launchAndPullback()
	require.Equal(t, 65, s.Len())
	ind, err := calculator.Compute(s, CandlestickMinBars)
	require.NoError(t, err)

	assert.True(t, AlignmentLaunch{}.Match(s, ind))
	assert.True(t, AlignmentPullback{}.Match(s, ind))

	m := NewCandlestickChain(ShrinkLast).Apply(s, ind)
	require.NotNil(t, m)
	assert.Equal(t, LabelAlignmentLaunch, m.Label)
}

func TestChain_PullbackOnly(t *testing.T) {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	s := bartest.Series("600004", bartest.FromCloses(closes, 1000))

	m, err := NewCandlestickChain(ShrinkLast).Evaluate(s)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, LabelAlignmentPullback, m.Label)
}

func TestChain_NoMatchOnFlat(t *testing.T) {
	s := bartest.Series("600005", bartest.Flat(80, 10, 1000))
	m, err := NewCandlestickChain(ShrinkLast).Evaluate(s)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestChain_ShortSeriesIsNotAnError(t *testing.T) {
	s := bartest.Series("600006", bartest.Flat(64, 10, 1000))
	_, err := NewCandlestickChain(ShrinkLast).Evaluate(s)
	require.Error(t, err)
	assert.True(t, IsInsufficient(err))

	short := bartest.Series("600006", bartest.Flat(20, 10, 1000))
	shortInd, err := calculator.Compute(short, 1)
	require.NoError(t, err)
	for _, r := range NewCandlestickChain(ShrinkLast).Rules {
		assert.False(t, r.Match(short, shortInd), r.Label().Name)
	}
}

func TestChain_Idempotent(t *testing.T) {
	s := launchAndPullback()
	c := NewCandlestickChain(ShrinkLast)
	a, err := c.Evaluate(s)
	require.NoError(t, err)
	b, err := c.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestChain_MinBarsRaisedToRules(t *testing.T) {
	c := NewChain(model.ScanCandlestick, 10, AlignmentLaunch{})
	assert.Equal(t, 61, c.MinBars())
	assert.Equal(t, 30, NewShadowChain(ShrinkFirst).MinBars())
	assert.Equal(t, CandlestickMinBars, NewCandlestickChain(ShrinkLast).MinBars())
}

func TestParseShrinkPolicy(t *testing.T) {
	p, err := ParseShrinkPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ShrinkLast, p)
	p, err = ParseShrinkPolicy("first")
	require.NoError(t, err)
	assert.Equal(t, ShrinkFirst, p)
	_, err = ParseShrinkPolicy("middle")
	assert.Error(t, err)
}
