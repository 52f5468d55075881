package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayliu/stratwatch/internal/contracts"
)

func series(equities ...float64) []contracts.DailyEquityRecord {
	out := make([]contracts.DailyEquityRecord, len(equities))
	base := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	for i, eq := range equities {
		out[i] = contracts.DailyEquityRecord{
			StrategyCode: "CTA-01",
			TradeDate:    base.AddDate(0, 0, i),
			Equity:       eq,
		}
	}
	return out
}

func TestApplyReturns_Basic(t *testing.T) {
	s := ApplyReturns(series(1_000_000, 1_010_000, 1_000_000))

	// First day has no baseline.
	assert.Nil(t, s[0].DailyReturn)
	require.NotNil(t, s[0].CumulativeReturn)
	assert.Equal(t, 0.0, *s[0].CumulativeReturn)

	require.NotNil(t, s[1].DailyReturn)
	assert.InDelta(t, 0.01, *s[1].DailyReturn, 1e-12)
	assert.InDelta(t, 0.01, *s[1].CumulativeReturn, 1e-12)

	require.NotNil(t, s[2].DailyReturn)
	assert.InDelta(t, -0.00990099, *s[2].DailyReturn, 1e-8)
	// Compounded back to flat.
	assert.InDelta(t, 0.0, *s[2].CumulativeReturn, 1e-12)
}

func TestApplyReturns_DepositNeutralized(t *testing.T) {
	s := series(1_000_000, 1_210_000)
	s[1].DepositWithdraw = 200_000 // inflow, not performance

	s = ApplyReturns(s)

	require.NotNil(t, s[1].DailyReturn)
	assert.InDelta(t, 0.01, *s[1].DailyReturn, 1e-12)
}

func TestApplyReturns_WithdrawalNeutralized(t *testing.T) {
	s := series(1_000_000, 910_000)
	s[1].DepositWithdraw = -100_000

	s = ApplyReturns(s)

	require.NotNil(t, s[1].DailyReturn)
	assert.InDelta(t, 0.01, *s[1].DailyReturn, 1e-12)
}

func TestApplyReturns_ZeroPrevEquity(t *testing.T) {
	s := ApplyReturns(series(0, 500_000, 505_000))

	assert.Nil(t, s[0].DailyReturn)
	// Previous equity was zero: not computable, not infinite.
	assert.Nil(t, s[1].DailyReturn)

	require.NotNil(t, s[2].DailyReturn)
	assert.InDelta(t, 0.01, *s[2].DailyReturn, 1e-12)
}

func TestApplyReturns_CumulativeCarriesThroughNilDays(t *testing.T) {
	s := series(1_000_000, 1_020_000, 0, 500_000)
	s = ApplyReturns(s)

	require.NotNil(t, s[1].CumulativeReturn)
	assert.InDelta(t, 0.02, *s[1].CumulativeReturn, 1e-12)

	// Day with zero equity: daily return computable against prev=1.02M.
	require.NotNil(t, s[2].DailyReturn)

	// Next day's prev equity is zero, so daily is nil and cumulative
	// carries unchanged.
	assert.Nil(t, s[3].DailyReturn)
	require.NotNil(t, s[3].CumulativeReturn)
	assert.Equal(t, *s[2].CumulativeReturn, *s[3].CumulativeReturn)
}

func TestAnnualizedReturn(t *testing.T) {
	tests := []struct {
		name        string
		totalReturn float64
		tradingDays int
		want        float64
	}{
		{"hundred days", 0.10, 100, 0.252},
		{"full year", 0.10, 252, 0.10},
		{"short history", 0.02, 10, 0.504},
		{"negative", -0.05, 126, -0.10},
		{"zero days", 0.10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnualizedReturn(tt.totalReturn, tt.tradingDays, 252)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}
