// Package timeseries holds the pure sequential-scan calculators for one
// strategy's daily equity series: normalization, returns and drawdowns.
// Data access and persistence are assembled by the pipeline layer.
package timeseries

import (
	"math"
	"sort"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// equityTolerance is the largest equity difference still treated as the
// same value when two ingestions report the same trade date.
const equityTolerance = 1e-6

// Normalize validates and orders one strategy's equity records: ascending
// by trade date, at most one record per date. When the same date was
// ingested twice with agreeing equity the most recently ingested record
// wins silently; disagreeing equity is an upstream defect and returns a
// DuplicateDateError. Calendar gaps are preserved, never filled.
func Normalize(records []contracts.DailyEquityRecord) ([]contracts.DailyEquityRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	sorted := make([]contracts.DailyEquityRecord, len(records))
	copy(sorted, records)

	// Stable sort so equal (date, ingested_at) pairs keep input order.
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TradeDate.Equal(sorted[j].TradeDate) {
			return sorted[i].TradeDate.Before(sorted[j].TradeDate)
		}
		return sorted[i].IngestedAt.Before(sorted[j].IngestedAt)
	})

	out := sorted[:0]
	for _, rec := range sorted {
		if len(out) > 0 && out[len(out)-1].TradeDate.Equal(rec.TradeDate) {
			prev := out[len(out)-1]
			if math.Abs(prev.Equity-rec.Equity) > equityTolerance {
				return nil, &contracts.DuplicateDateError{
					StrategyCode: rec.StrategyCode,
					TradeDate:    rec.TradeDate,
					EquityA:      prev.Equity,
					EquityB:      rec.Equity,
				}
			}
			// Same equity: keep the latest ingestion.
			out[len(out)-1] = rec
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}
