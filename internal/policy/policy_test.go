package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBand_Score(t *testing.T) {
	tests := []struct {
		name string
		band Band
		x    float64
		want float64
	}{
		// Higher is better: total return -5%..15% onto 0..40.
		{"return at worst", Band{Best: 0.15, Worst: -0.05, Cap: 40}, -0.05, 0},
		{"return at best", Band{Best: 0.15, Worst: -0.05, Cap: 40}, 0.15, 40},
		{"return midpoint", Band{Best: 0.15, Worst: -0.05, Cap: 40}, 0.05, 20},
		{"return clipped low", Band{Best: 0.15, Worst: -0.05, Cap: 40}, -0.50, 0},
		{"return clipped high", Band{Best: 0.15, Worst: -0.05, Cap: 40}, 0.80, 40},

		// Lower is better: margin ratio 50%..0% onto 0..40.
		{"margin flat", Band{Best: 0, Worst: 0.5, Cap: 40}, 0, 40},
		{"margin half", Band{Best: 0, Worst: 0.5, Cap: 40}, 0.25, 20},
		{"margin at worst", Band{Best: 0, Worst: 0.5, Cap: 40}, 0.5, 0},
		{"margin beyond worst", Band{Best: 0, Worst: 0.5, Cap: 40}, 0.9, 0},

		// Drawdown 20%..0% onto 0..20.
		{"drawdown zero", Band{Best: 0, Worst: 0.2, Cap: 20}, 0, 20},
		{"drawdown ten pct", Band{Best: 0, Worst: 0.2, Cap: 20}, 0.1, 10},

		{"degenerate band", Band{Best: 1, Worst: 1, Cap: 10}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.band.Score(tt.x), 1e-12)
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate_CapSum(t *testing.T) {
	p := Default()
	p.Scoring.Performance.Return.Cap = 50 // breaks the 100-point sum

	err := Validate(p)
	require.Error(t, err)

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scoring.performance", verr.Field)
}

func TestValidate_SeverityOrdering(t *testing.T) {
	p := Default()
	p.Severity.LossRatioHigh = 0.01 // below medium

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "severity.loss_ratio")
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	p := Default()
	p.Alerts.MarginRatio = Thresholds{Warning: 0.8, Danger: 0.6}

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alerts.margin_ratio")
}

func TestValidate_MinTradingDays(t *testing.T) {
	p := Default()
	p.Scoring.MinTradingDays = 1

	err := Validate(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_trading_days")
}
