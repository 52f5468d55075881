package contracts

import "time"

// DailyRiskMetrics is the per-day risk profile derived from one day's
// position snapshots and the matching equity record.
// Unique per (strategy, trade_date); recomputed and upserted every run.
// Ratio fields are nil when the denominator is zero or the day is flat.
type DailyRiskMetrics struct {
	StrategyCode string    `json:"strategy_code"`
	TradeDate    time.Time `json:"trade_date"`

	MarginRatio        *float64 `json:"margin_ratio"`
	LongExposure       float64  `json:"long_exposure"`
	ShortExposure      float64  `json:"short_exposure"`
	NetExposure        *float64 `json:"net_exposure"`
	GrossExposure      *float64 `json:"gross_exposure"`
	TotalPositionValue float64  `json:"total_position_value"`
	Top1Concentration  *float64 `json:"top1_concentration"`
	Top3Concentration  *float64 `json:"top3_concentration"`
	PositionCount      int      `json:"position_count"`
	TradeCount         int      `json:"trade_count"`
	Turnover           float64  `json:"turnover"`
}

// StrategyStats are the per-strategy series statistics feeding the score
// engine. Averages count only days with a computable daily return.
type StrategyStats struct {
	StrategyCode string    `json:"strategy_code"`
	CalcDate     time.Time `json:"calc_date"`

	TradingDays      int      `json:"trading_days"`
	TotalReturn      float64  `json:"total_return"`
	AnnualizedReturn float64  `json:"annualized_return"`
	Volatility       *float64 `json:"volatility"`
	SharpeRatio      *float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64  `json:"max_drawdown"`
	CalmarRatio      *float64 `json:"calmar_ratio"`
	WinRate          *float64 `json:"win_rate"`
	AvgMarginRatio   *float64 `json:"avg_margin_ratio"`
}

// StrategyScore is the cohort-relative composite score.
// Unique per (strategy, calc_date). Rank is nil for strategies excluded
// from ranking for lack of history; score fields are nil with it.
type StrategyScore struct {
	StrategyCode string    `json:"strategy_code"`
	CalcDate     time.Time `json:"calc_date"`

	Stats StrategyStats `json:"stats"`

	PerformanceScore *float64 `json:"performance_score"`
	RiskScore        *float64 `json:"risk_score"`
	TotalScore       *float64 `json:"total_score"`
	Rank             *int     `json:"rank"`
}

// Scored reports whether the strategy received a composite score.
func (s *StrategyScore) Scored() bool {
	return s.TotalScore != nil
}
