// Package riskmetrics derives the per-day risk profile of a strategy from
// its position snapshots, trades and the matching equity record.
package riskmetrics

import (
	"math"
	"sort"
	"strings"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// Calculator computes DailyRiskMetrics rows.
type Calculator struct {
	log *logger.Logger
}

// NewCalculator creates a new risk metrics calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{log: log.WithComponent("riskmetrics")}
}

// Calculate derives one DailyRiskMetrics row for the equity record's
// (strategy, trade_date). positions and trades may span other dates; only
// the matching day is used. Every ratio whose denominator is zero comes
// back nil, never zero: a flat book is "no data", not "no risk".
func (c *Calculator) Calculate(
	equity contracts.DailyEquityRecord,
	positions []contracts.PositionSnapshot,
	trades []contracts.TradeRecord,
) contracts.DailyRiskMetrics {
	m := contracts.DailyRiskMetrics{
		StrategyCode: equity.StrategyCode,
		TradeDate:    equity.TradeDate,
	}

	var (
		longExposure  float64
		shortExposure float64
		totalValue    float64
		byRoot        = map[string]float64{}
	)

	for _, pos := range positions {
		if !pos.TradeDate.Equal(equity.TradeDate) {
			continue
		}

		longExposure += float64(pos.LongQty) * pos.Settlement
		shortExposure += float64(pos.ShortQty) * pos.Settlement
		totalValue += math.Abs(pos.PositionValue)
		byRoot[rootSymbol(pos.Contract)] += math.Abs(pos.PositionValue)
	}

	m.LongExposure = longExposure
	m.ShortExposure = shortExposure
	m.TotalPositionValue = totalValue
	m.PositionCount = len(byRoot)

	if equity.Equity > 0 {
		m.MarginRatio = contracts.Float64(equity.MarginUsed / equity.Equity)
		m.NetExposure = contracts.Float64((longExposure - shortExposure) / equity.Equity)
		m.GrossExposure = contracts.Float64((longExposure + shortExposure) / equity.Equity)
	} else {
		c.log.WithFields(map[string]interface{}{
			"strategy": equity.StrategyCode,
			"date":     equity.TradeDate.Format("2006-01-02"),
		}).Warn("Non-positive equity, exposure ratios unavailable")
	}

	if totalValue > 0 && len(byRoot) > 0 {
		values := make([]float64, 0, len(byRoot))
		for _, v := range byRoot {
			values = append(values, v)
		}
		sort.Sort(sort.Reverse(sort.Float64Slice(values)))

		m.Top1Concentration = contracts.Float64(values[0] / totalValue)

		top3 := 0.0
		for i := 0; i < len(values) && i < 3; i++ {
			top3 += values[i]
		}
		m.Top3Concentration = contracts.Float64(top3 / totalValue)
	}

	for _, t := range trades {
		if !t.TradeDate.Equal(equity.TradeDate) {
			continue
		}
		m.TradeCount++
		m.Turnover += t.Amount
	}

	return m
}

// rootSymbol reduces a contract code to its product root: the letters of
// the code, uppercased (rb2405 -> RB). Concentration aggregates per root
// so two expiries of the same product count as one exposure.
func rootSymbol(contract string) string {
	var b strings.Builder
	for _, r := range contract {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return contract
	}
	return strings.ToUpper(b.String())
}
