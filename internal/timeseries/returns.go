package timeseries

import "github.com/jayliu/stratwatch/internal/contracts"

// ApplyReturns derives daily and cumulative returns over a normalized
// series, modifying the records in place and returning the slice.
//
// The scan carries prev_equity as explicit fold state. The first record,
// and any record whose previous equity is zero, gets a nil daily return:
// missing data, not zero, so it never enters averages or win-rate counts.
// Cumulative return compounds across computable days and carries through
// the gaps unchanged.
func ApplyReturns(series []contracts.DailyEquityRecord) []contracts.DailyEquityRecord {
	var (
		prevEquity float64
		hasPrev    bool
		cumulative float64
	)

	for i := range series {
		rec := &series[i]

		if !hasPrev || prevEquity == 0 {
			rec.DailyReturn = nil
		} else {
			r := (rec.Equity - prevEquity - rec.DepositWithdraw) / prevEquity
			rec.DailyReturn = contracts.Float64(r)
			cumulative = (1+cumulative)*(1+r) - 1
		}
		rec.CumulativeReturn = contracts.Float64(cumulative)

		prevEquity = rec.Equity
		hasPrev = true
	}

	return series
}

// AnnualizedReturn scales a total return linearly by trading-day count.
// Intentionally not a geometric annualization; the score bands are
// calibrated to the linear scale and must stay on it.
func AnnualizedReturn(totalReturn float64, tradingDays, daysPerYear int) float64 {
	if tradingDays <= 0 {
		return 0
	}
	return totalReturn * (float64(daysPerYear) / float64(tradingDays))
}
