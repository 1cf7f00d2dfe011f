package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyagent/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
agent:
  interval_seconds: 60
  bankroll: 500
  auto_execute: true
  live_trading: true
  top_n: 5
  max_trades_per_cycle: 3
scorer:
  undervalued_threshold: 0.25
  overvalued_threshold: 0.80
  min_edge: 0.05
  batch_delay_millis: 1500
limits:
  max_bet_size: 20
  max_daily_loss: 100
storage:
  dsn: ":memory:"
log:
  level: debug
  format: json
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.CycleInterval())
	assert.Equal(t, 500.0, cfg.Agent.Bankroll)
	assert.True(t, cfg.Agent.AutoExecute)
	assert.True(t, cfg.Agent.LiveTrading)
	assert.Equal(t, 5, cfg.Agent.TopN)
	assert.Equal(t, 3, cfg.Agent.MaxTradesPerCycle)

	assert.Equal(t, 0.25, cfg.Scorer.UndervaluedThreshold)
	assert.Equal(t, 0.80, cfg.Scorer.OvervaluedThreshold)
	assert.Equal(t, 0.05, cfg.Scorer.MinEdge)
	assert.Equal(t, 1500*time.Millisecond, cfg.BatchDelay())

	assert.Equal(t, 20.0, cfg.Limits.MaxBetSize)
	assert.Equal(t, 100.0, cfg.Limits.MaxDailyLoss)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "agent: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, 25*time.Second, cfg.CycleInterval())
	assert.Equal(t, 1000.0, cfg.Agent.Bankroll)
	assert.Equal(t, 10, cfg.Agent.TopN)
	assert.Equal(t, 2, cfg.Agent.MaxTradesPerCycle)
	assert.Equal(t, 100, cfg.Agent.MarketLimit)

	assert.Equal(t, 0.30, cfg.Scorer.UndervaluedThreshold)
	assert.Equal(t, 0.75, cfg.Scorer.OvervaluedThreshold)
	assert.Equal(t, 0.03, cfg.Scorer.MinEdge)
	assert.Equal(t, 3, cfg.Scorer.ScoreWorkers)

	assert.Equal(t, 10.0, cfg.Limits.MaxBetSize)
	assert.Equal(t, 50.0, cfg.Limits.MaxDailyLoss)
	assert.Equal(t, 200.0, cfg.Limits.MaxTotalExposure)
	assert.Equal(t, 0.1, cfg.Limits.MaxPositionPercent)
	assert.Equal(t, 1000.0, cfg.Limits.MinLiquidity)

	assert.Equal(t, "https://clob.polymarket.com", cfg.API.CLOBBase)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.API.GammaBase)
	assert.Equal(t, "polyagent.db", cfg.Storage.DSN)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: info\n  format: text\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "agent: [not a map"))
	assert.Error(t, err)
}
