package timeseries

import "github.com/jayliu/stratwatch/internal/contracts"

// ApplyDrawdowns derives the running drawdown and max drawdown over a
// normalized series, modifying the records in place and returning the
// slice.
//
// Fold state is the running peak equity, seeded with the first record's
// equity. Invariants: max_drawdown never decreases along the series and
// drawdown_t <= max_drawdown_t at every t.
func ApplyDrawdowns(series []contracts.DailyEquityRecord) []contracts.DailyEquityRecord {
	var (
		runningPeak float64
		maxDrawdown float64
	)

	for i := range series {
		rec := &series[i]

		if i == 0 || rec.Equity > runningPeak {
			runningPeak = rec.Equity
		}

		drawdown := 0.0
		if runningPeak > 0 {
			drawdown = (runningPeak - rec.Equity) / runningPeak
		}
		if drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}

		rec.Drawdown = contracts.Float64(drawdown)
		rec.MaxDrawdown = contracts.Float64(maxDrawdown)
	}

	return series
}
