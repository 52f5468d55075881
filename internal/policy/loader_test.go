package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validPolicyYAML = `
scoring:
  risk_free_rate: 0.025
  trading_days_per_year: 252
  min_trading_days: 5
  performance:
    return: {best: 0.15, worst: -0.05, cap: 40}
    sharpe: {best: 2.0, worst: 0.0, cap: 30}
    drawdown: {best: 0.0, worst: 0.20, cap: 20}
    win_rate: {best: 1.0, worst: 0.0, cap: 10}
  risk:
    margin: {best: 0.0, worst: 0.50, cap: 40}
    volatility: {best: 0.0, worst: 0.50, cap: 30}
    drawdown: {best: 0.0, worst: 0.20, cap: 30}
severity:
  loss_ratio_high: 0.05
  loss_ratio_medium: 0.02
  change_pct_high: 0.03
  change_pct_medium: 0.015
behavior:
  floating_loss_weight: 5
  counter_trend_weight: 3
  high_severity_weight: 10
  max_score: 100
  recent_alert_limit: 5
alerts:
  margin_ratio: {warning: 0.60, danger: 0.80}
  gross_exposure: {warning: 2.0, danger: 3.0}
  top1_concentration: {warning: 0.50, danger: 0.70}
  max_drawdown: {warning: 0.10, danger: 0.20}
`

func TestLoad_Valid(t *testing.T) {
	path := writePolicy(t, validPolicyYAML)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.025, p.Scoring.RiskFreeRate)
	assert.Equal(t, 5, p.Scoring.MinTradingDays)
	assert.Equal(t, 40.0, p.Scoring.Performance.Return.Cap)
	assert.Equal(t, 0.80, p.Alerts.MarginRatio.Danger)
}

func TestLoad_UnknownFieldFails(t *testing.T) {
	path := writePolicy(t, validPolicyYAML+"\nextra_knob: 1\n")

	_, err := Load(path)
	require.Error(t, err, "a typo must not silently fall back to defaults")
}

func TestLoad_InvalidPolicyFails(t *testing.T) {
	bad := writePolicy(t, `
scoring:
  trading_days_per_year: 0
`)

	_, err := Load(bad)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	p, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestHash_Deterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Alerts.MaxDrawdown.Danger = 0.25
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
