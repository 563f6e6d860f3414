package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReversalScanner/internal/strategy"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "stock_data", cfg.Data.Dir)
	assert.Equal(t, "ST", cfg.Scan.RiskMarker)
	assert.Equal(t, []string{"30", "68"}, cfg.Scan.CandlestickExcludePrefixes)
	assert.Equal(t, strategy.DefaultOversoldConfig(), cfg.Oversold)
	assert.Equal(t, 0.02, cfg.Tracker.MaxDistToMA13)
	assert.Equal(t, strategy.ShrinkLast, cfg.Policy())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
data:
  dir: /srv/bars
output:
  format: parquet
scan:
  workers: 4
  shrink_policy: first
oversold:
  max_rsi6: 25
tracker:
  max_volume_to_peak: 0.3
  source_prefix: oversold
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/bars", cfg.Data.Dir)
	assert.Equal(t, "stock_names.csv", cfg.Data.NamesFile)
	assert.Equal(t, "parquet", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, strategy.ShrinkFirst, cfg.Policy())
	assert.Equal(t, 25.0, cfg.Oversold.MaxRSI6)
	assert.Equal(t, 2.5, cfg.Oversold.MaxAvgTurnover30)
	assert.Equal(t, 0.3, cfg.Tracker.MaxVolumeToPeak)
	assert.Equal(t, 5, cfg.Tracker.VolumeLookback)
	assert.Equal(t, "oversold", cfg.Tracker.SourcePrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/env/bars")
	t.Setenv("SCAN_WORKERS", "2")
	t.Setenv("SAVE_FORMAT", "JSON")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/bars", cfg.Data.Dir)
	assert.Equal(t, 2, cfg.Scan.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "xlsx" }},
		{"bad policy", func(c *Config) { c.Scan.ShrinkPolicy = "middle" }},
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }},
		{"inverted volume ratio bounds", func(c *Config) { c.Oversold.MinVolumeRatio = 2 }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
		{"no data dir", func(c *Config) { c.Data.Dir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
