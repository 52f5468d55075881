package scoring

import (
	"errors"
	"time"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// Engine computes per-strategy composite scores from the policy's banded
// sub-score mappings.
type Engine struct {
	pol *policy.Policy
	log *logger.Logger
}

// NewEngine creates a new score engine.
func NewEngine(pol *policy.Policy, log *logger.Logger) *Engine {
	return &Engine{
		pol: pol,
		log: log.WithComponent("scoring"),
	}
}

// Evaluate scores one strategy's derived equity series. A strategy with
// too little history is still returned, carrying its stats but nil score
// fields, so the caller can keep it in the output while excluding it from
// ranking.
func (e *Engine) Evaluate(
	code string,
	calcDate time.Time,
	series []contracts.DailyEquityRecord,
) contracts.StrategyScore {
	stats, err := ComputeStats(code, calcDate, series, e.pol.Scoring)

	score := contracts.StrategyScore{
		StrategyCode: code,
		CalcDate:     calcDate,
		Stats:        stats,
	}

	if err != nil {
		if errors.Is(err, contracts.ErrScoringInputIncomplete) {
			e.log.WithFields(map[string]interface{}{
				"strategy":     code,
				"trading_days": stats.TradingDays,
			}).Warn("Not enough history to score strategy")
		}
		return score
	}

	perf := e.performanceScore(stats)
	risk := e.riskScore(stats)
	total := perf*0.5 + risk*0.5

	score.PerformanceScore = contracts.Float64(perf)
	score.RiskScore = contracts.Float64(risk)
	score.TotalScore = contracts.Float64(total)

	return score
}

// performanceScore sums the four performance sub-score bands. A missing
// Sharpe or win rate contributes the band's worst end.
func (e *Engine) performanceScore(stats contracts.StrategyStats) float64 {
	bands := e.pol.Scoring.Performance

	score := bands.Return.Score(stats.TotalReturn)
	score += bands.Sharpe.Score(deref(stats.SharpeRatio))
	score += bands.Drawdown.Score(stats.MaxDrawdown)
	score += bands.WinRate.Score(deref(stats.WinRate))

	return score
}

// riskScore sums the three risk sub-score bands; higher means safer.
func (e *Engine) riskScore(stats contracts.StrategyStats) float64 {
	bands := e.pol.Scoring.Risk

	score := bands.Margin.Score(deref(stats.AvgMarginRatio))
	score += bands.Volatility.Score(deref(stats.Volatility))
	score += bands.Drawdown.Score(stats.MaxDrawdown)

	return score
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
