// Package scoring turns one strategy's derived equity series into
// performance statistics and a cohort-relative composite score and rank.
package scoring

import (
	"math"
	"time"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/internal/timeseries"
)

// ComputeStats derives the full-series statistics for one strategy.
// The series must already be normalized with returns and drawdowns
// applied. Fails with ErrScoringInputIncomplete when the series is too
// short to score.
func ComputeStats(
	code string,
	calcDate time.Time,
	series []contracts.DailyEquityRecord,
	cfg policy.Scoring,
) (contracts.StrategyStats, error) {
	stats := contracts.StrategyStats{
		StrategyCode: code,
		CalcDate:     calcDate,
		TradingDays:  len(series),
	}

	if len(series) < cfg.MinTradingDays {
		return stats, contracts.ErrScoringInputIncomplete
	}

	last := series[len(series)-1]
	if last.CumulativeReturn != nil {
		stats.TotalReturn = *last.CumulativeReturn
	}
	if last.MaxDrawdown != nil {
		stats.MaxDrawdown = *last.MaxDrawdown
	}

	stats.AnnualizedReturn = timeseries.AnnualizedReturn(
		stats.TotalReturn, stats.TradingDays, cfg.TradingDaysPerYear)

	// Collect computable daily returns; nil days stay out of every count.
	var (
		returns    []float64
		winDays    int
		marginSum  float64
		marginDays int
	)
	for _, rec := range series {
		if rec.DailyReturn != nil {
			returns = append(returns, *rec.DailyReturn)
			if *rec.DailyReturn > 0 {
				winDays++
			}
		}
		if rec.Equity > 0 {
			marginSum += rec.MarginUsed / rec.Equity
			marginDays++
		}
	}

	if len(returns) > 0 {
		stats.WinRate = contracts.Float64(float64(winDays) / float64(len(returns)))
	}
	if marginDays > 0 {
		stats.AvgMarginRatio = contracts.Float64(marginSum / float64(marginDays))
	}

	if vol, ok := annualizedVolatility(returns, cfg.TradingDaysPerYear); ok {
		stats.Volatility = contracts.Float64(vol)
		if vol > 0 {
			stats.SharpeRatio = contracts.Float64((stats.AnnualizedReturn - cfg.RiskFreeRate) / vol)
		}
	}

	if stats.MaxDrawdown > 0 {
		stats.CalmarRatio = contracts.Float64(stats.AnnualizedReturn / stats.MaxDrawdown)
	}

	return stats, nil
}

// annualizedVolatility is the sample standard deviation of daily returns
// scaled by sqrt(days per year). Needs at least two computable returns.
func annualizedVolatility(returns []float64, daysPerYear int) (float64, bool) {
	if len(returns) < 2 {
		return 0, false
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(float64(daysPerYear)), true
}
