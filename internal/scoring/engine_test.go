package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/pkg/config"
	"github.com/jayliu/stratwatch/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine(policy.Default(), testLogger())

	// Two flat-margin up days: every sub-score lands on an exact breakpoint.
	//   performance: return 12 + sharpe 0 + drawdown 20 + win rate 10 = 42
	//   risk:        margin 40 + volatility 30 + drawdown 30       = 100
	series := derivedSeries(0, 1_000_000, 1_010_000)

	score := engine.Evaluate("CTA-01", calcDate, series)

	require.True(t, score.Scored())
	assert.InDelta(t, 42.0, *score.PerformanceScore, 1e-9)
	assert.InDelta(t, 100.0, *score.RiskScore, 1e-9)
	assert.InDelta(t, 71.0, *score.TotalScore, 1e-9)
	assert.Nil(t, score.Rank, "rank is assigned by the cohort barrier, not here")
}

func TestEngine_Evaluate_TooShort(t *testing.T) {
	engine := NewEngine(policy.Default(), testLogger())

	score := engine.Evaluate("CTA-02", calcDate, derivedSeries(0, 1_000_000))

	assert.False(t, score.Scored())
	assert.Nil(t, score.PerformanceScore)
	assert.Nil(t, score.RiskScore)
	assert.Nil(t, score.TotalScore)
	assert.Nil(t, score.Rank)

	// Stats still carried for reporting.
	assert.Equal(t, 1, score.Stats.TradingDays)
}

func TestEngine_Evaluate_ScoresBounded(t *testing.T) {
	engine := NewEngine(policy.Default(), testLogger())

	tests := []struct {
		name     string
		equities []float64
	}{
		{"steep loss", []float64{1_000_000, 700_000, 500_000}},
		{"steep gain", []float64{1_000_000, 1_500_000, 2_000_000}},
		{"choppy", []float64{1_000_000, 900_000, 1_100_000, 950_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := engine.Evaluate("CTA-01", calcDate, derivedSeries(300_000, tt.equities...))
			require.True(t, score.Scored())

			assert.GreaterOrEqual(t, *score.PerformanceScore, 0.0)
			assert.LessOrEqual(t, *score.PerformanceScore, 100.0)
			assert.GreaterOrEqual(t, *score.RiskScore, 0.0)
			assert.LessOrEqual(t, *score.RiskScore, 100.0)
			assert.InDelta(t, (*score.PerformanceScore+*score.RiskScore)/2, *score.TotalScore, 1e-12)
		})
	}
}
