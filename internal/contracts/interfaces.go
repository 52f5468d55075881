package contracts

import (
	"context"
	"time"
)

// StatementRepository reads the validated statement records produced by
// ingestion and maintains the strategy registry.
type StatementRepository interface {
	// EnsureStrategies upserts StrategyAccount rows for every code seen
	// in the inputs. Existing rows are left untouched.
	EnsureStrategies(ctx context.Context, codes []string) error

	// ListInputCodes returns the distinct strategy codes present in the
	// ingested equity data, whether or not they are registered yet.
	ListInputCodes(ctx context.Context) ([]string, error)

	ListStrategies(ctx context.Context) ([]StrategyAccount, error)
	GetEquitySeries(ctx context.Context, strategyCode string) ([]DailyEquityRecord, error)
	GetPositions(ctx context.Context, strategyCode string) ([]PositionSnapshot, error)
	GetTrades(ctx context.Context, strategyCode string) ([]TradeRecord, error)
}

// MetricsRepository persists derived per-day risk metrics and the equity
// series derived fields. All writes are upserts by natural key.
type MetricsRepository interface {
	SaveDailyMetrics(ctx context.Context, metrics []DailyRiskMetrics) error
	SaveDerivedEquity(ctx context.Context, records []DailyEquityRecord) error
	GetLatestMetrics(ctx context.Context) ([]DailyRiskMetrics, error)
}

// ScoreRepository persists cohort scores and ranks.
type ScoreRepository interface {
	SaveScores(ctx context.Context, scores []StrategyScore) error
	GetScores(ctx context.Context, calcDate time.Time) ([]StrategyScore, error)
	GetLatestScores(ctx context.Context) ([]StrategyScore, error)
}

// BehaviorRepository persists behavior alerts and summaries.
type BehaviorRepository interface {
	SaveAlerts(ctx context.Context, alerts []BehaviorAlert) error
	SaveSummaries(ctx context.Context, summaries []BehaviorSummary) error
	GetSummary(ctx context.Context, strategyCode string) (*BehaviorSummary, error)
	GetLatestSummaries(ctx context.Context) ([]BehaviorSummary, error)
}

// AlertRepository persists threshold-breach alerts.
type AlertRepository interface {
	SaveAlerts(ctx context.Context, alerts []Alert) error
	GetAlerts(ctx context.Context, strategyCode string, from time.Time) ([]Alert, error)
}
