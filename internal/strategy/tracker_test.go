package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReversalScanner/internal/model"
	"ReversalScanner/internal/model/bartest"
)

func trackerBars(close, open, volume float64) []model.Bar {
	bars := bartest.Flat(20, 10, 1000)
	last := &bars[len(bars)-1]
	last.Open, last.Close, last.Volume = open, close, volume
	last.High = max(open, close) + 0.05
	last.Low = min(open, close) - 0.05
	return bars
}

func TestTracker_Scenario(t *testing.T) {
	tr := NewTracker(DefaultTrackerConfig())
	m, err := tr.Evaluate(bartest.Series("600010", trackerBars(10.05, 10.0, 300)))
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, LabelPullbackConfirmed, m.Label)
	require.NotNil(t, m.Track)
	ma13 := (12*10.0 + 10.05) / 13
	assert.InDelta(t, (10.05-ma13)/ma13*100, m.Track.DistToMA13, 1e-9)
	assert.Equal(t, 10.05, m.Track.Close)
}

func TestTracker_Rejections(t *testing.T) {
	tr := NewTracker(DefaultTrackerConfig())
	tests := []struct {
		name             string
		close, open, vol float64
	}{
		{"volume not dried up", 10.05, 10.0, 500},
		{"too far above ma13", 10.5, 10.0, 300},
		{"still falling", 9.85, 10.0, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tr.Evaluate(bartest.Series("600010", trackerBars(tt.close, tt.open, tt.vol)))
			require.NoError(t, err)
			assert.Nil(t, m)
		})
	}
}

func TestTracker_BullishCandleStopsFall(t *testing.T) {
	// close below yesterday's low but the candle itself is green
	tr := NewTracker(DefaultTrackerConfig())
	m, err := tr.Evaluate(bartest.Series("600010", trackerBars(9.88, 9.8, 300)))
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestTracker_ShortSeries(t *testing.T) {
	_, err := NewTracker(DefaultTrackerConfig()).Evaluate(bartest.Series("600010", bartest.Flat(10, 10, 1000)))
	require.Error(t, err)
	assert.True(t, IsInsufficient(err))
}
