package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/internal/timeseries"
)

var calcDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

// derivedSeries builds a series with returns and drawdowns already
// applied, the shape ComputeStats expects.
func derivedSeries(marginUsed float64, equities ...float64) []contracts.DailyEquityRecord {
	out := make([]contracts.DailyEquityRecord, len(equities))
	base := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	for i, eq := range equities {
		out[i] = contracts.DailyEquityRecord{
			StrategyCode: "CTA-01",
			TradeDate:    base.AddDate(0, 0, i),
			Equity:       eq,
			MarginUsed:   marginUsed,
		}
	}
	out = timeseries.ApplyReturns(out)
	out = timeseries.ApplyDrawdowns(out)
	return out
}

func TestComputeStats_RoundTrip(t *testing.T) {
	cfg := policy.Default().Scoring
	series := derivedSeries(100_000, 1_000_000, 1_010_000, 1_000_000)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.NoError(t, err)

	assert.Equal(t, "CTA-01", stats.StrategyCode)
	assert.Equal(t, 3, stats.TradingDays)
	assert.InDelta(t, 0.0, stats.TotalReturn, 1e-12)
	assert.InDelta(t, 0.0, stats.AnnualizedReturn, 1e-12)
	assert.InDelta(t, 10_000.0/1_010_000.0, stats.MaxDrawdown, 1e-12)

	// One winning day out of two computable returns.
	require.NotNil(t, stats.WinRate)
	assert.InDelta(t, 0.5, *stats.WinRate, 1e-12)

	// Sample stddev of [0.01, -0.009901] scaled by sqrt(252).
	require.NotNil(t, stats.Volatility)
	assert.InDelta(t, 0.2234, *stats.Volatility, 1e-3)

	require.NotNil(t, stats.SharpeRatio)
	assert.InDelta(t, (0.0-cfg.RiskFreeRate)/ *stats.Volatility, *stats.SharpeRatio, 1e-12)

	// Calmar = annualized / max drawdown.
	require.NotNil(t, stats.CalmarRatio)
	assert.InDelta(t, 0.0, *stats.CalmarRatio, 1e-12)

	// Mean of 0.1, 0.099010, 0.1.
	require.NotNil(t, stats.AvgMarginRatio)
	assert.InDelta(t, 0.09967, *stats.AvgMarginRatio, 1e-4)
}

func TestComputeStats_AnnualizedIsLinear(t *testing.T) {
	cfg := policy.Default().Scoring

	// 100 trading days, +10% total scales linearly to +25.2%.
	equities := make([]float64, 100)
	for i := range equities {
		equities[i] = 1_000_000 + float64(i)*1_010.10101
	}
	equities[99] = 1_100_000
	series := derivedSeries(0, equities...)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 0.10, stats.TotalReturn, 1e-9)
	assert.InDelta(t, 0.10*252.0/100.0, stats.AnnualizedReturn, 1e-9)
}

func TestComputeStats_TooShort(t *testing.T) {
	cfg := policy.Default().Scoring
	series := derivedSeries(0, 1_000_000)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.ErrorIs(t, err, contracts.ErrScoringInputIncomplete)
	assert.Equal(t, 1, stats.TradingDays)
}

func TestComputeStats_SingleReturnHasNoVolatility(t *testing.T) {
	cfg := policy.Default().Scoring
	series := derivedSeries(0, 1_000_000, 1_010_000)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.NoError(t, err)

	// One computable return: win rate exists, volatility and Sharpe do not.
	require.NotNil(t, stats.WinRate)
	assert.Equal(t, 1.0, *stats.WinRate)
	assert.Nil(t, stats.Volatility)
	assert.Nil(t, stats.SharpeRatio)
}

func TestComputeStats_FlatSeriesHasNoSharpe(t *testing.T) {
	cfg := policy.Default().Scoring
	series := derivedSeries(0, 1_000_000, 1_000_000, 1_000_000)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.NoError(t, err)

	// Zero volatility: Sharpe undefined, not infinite.
	require.NotNil(t, stats.Volatility)
	assert.Equal(t, 0.0, *stats.Volatility)
	assert.Nil(t, stats.SharpeRatio)

	// Flat series never drew down: Calmar undefined.
	assert.Nil(t, stats.CalmarRatio)
}

func TestComputeStats_ZeroEquityDaysSkipMarginAverage(t *testing.T) {
	cfg := policy.Default().Scoring
	series := derivedSeries(100_000, 0, 0)

	stats, err := ComputeStats("CTA-01", calcDate, series, cfg)
	require.NoError(t, err)
	assert.Nil(t, stats.AvgMarginRatio)
	assert.Nil(t, stats.WinRate, "no computable returns at all")
}
