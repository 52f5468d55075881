package behavior

import (
	"sort"
	"time"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Summarize aggregates one strategy's alerts into the daily behavior
// summary: per-type counts, high-severity count and a bounded risk score
// from the policy's weight table.
func (d *Detector) Summarize(
	code string,
	calcDate time.Time,
	alerts []contracts.BehaviorAlert,
) contracts.BehaviorSummary {
	summary := contracts.BehaviorSummary{
		StrategyCode: code,
		CalcDate:     calcDate,
		TotalAlerts:  len(alerts),
	}

	for _, a := range alerts {
		switch a.AlertType {
		case contracts.AlertFloatingLossAdd:
			summary.FloatingLossAddCount++
		case contracts.AlertCounterTrendAdd:
			summary.CounterTrendAddCount++
		}
		if a.Severity == contracts.SeverityHigh {
			summary.HighSeverityCount++
		}
	}

	w := d.pol.Behavior
	score := float64(summary.FloatingLossAddCount)*w.FloatingLossWeight +
		float64(summary.CounterTrendAddCount)*w.CounterTrendWeight +
		float64(summary.HighSeverityCount)*w.HighSeverityWeight
	if score > w.MaxScore {
		score = w.MaxScore
	}
	summary.BehaviorRiskScore = score

	summary.RecentAlerts = recentAlerts(alerts, w.RecentAlertLimit)

	return summary
}

// recentAlerts orders alerts newest first, worst severity first within a
// day, and keeps at most limit of them for the dashboard.
func recentAlerts(alerts []contracts.BehaviorAlert, limit int) []contracts.BehaviorAlert {
	if limit <= 0 || len(alerts) == 0 {
		return nil
	}

	sorted := make([]contracts.BehaviorAlert, len(alerts))
	copy(sorted, alerts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TradeDate.Equal(sorted[j].TradeDate) {
			return sorted[i].TradeDate.After(sorted[j].TradeDate)
		}
		return contracts.SeverityRank(sorted[i].Severity) < contracts.SeverityRank(sorted[j].Severity)
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
