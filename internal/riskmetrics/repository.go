package riskmetrics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Repository implements contracts.MetricsRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new metrics repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveDailyMetrics upserts derived risk metrics keyed by (strategy, date).
func (r *Repository) SaveDailyMetrics(ctx context.Context, metrics []contracts.DailyRiskMetrics) error {
	query := `
		INSERT INTO daily_metrics (
			strategy_code, trade_date, margin_ratio, long_exposure, short_exposure,
			net_exposure, gross_exposure, total_position_value,
			top1_concentration, top3_concentration, position_count, trade_count, turnover
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (strategy_code, trade_date) DO UPDATE SET
			margin_ratio = EXCLUDED.margin_ratio,
			long_exposure = EXCLUDED.long_exposure,
			short_exposure = EXCLUDED.short_exposure,
			net_exposure = EXCLUDED.net_exposure,
			gross_exposure = EXCLUDED.gross_exposure,
			total_position_value = EXCLUDED.total_position_value,
			top1_concentration = EXCLUDED.top1_concentration,
			top3_concentration = EXCLUDED.top3_concentration,
			position_count = EXCLUDED.position_count,
			trade_count = EXCLUDED.trade_count,
			turnover = EXCLUDED.turnover
	`

	for _, m := range metrics {
		_, err := r.pool.Exec(ctx, query,
			m.StrategyCode, m.TradeDate, m.MarginRatio, m.LongExposure, m.ShortExposure,
			m.NetExposure, m.GrossExposure, m.TotalPositionValue,
			m.Top1Concentration, m.Top3Concentration, m.PositionCount, m.TradeCount, m.Turnover,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveDerivedEquity writes the derived return/drawdown columns back onto
// the equity rows. Raw statement columns are never touched here.
func (r *Repository) SaveDerivedEquity(ctx context.Context, records []contracts.DailyEquityRecord) error {
	query := `
		UPDATE daily_equity SET
			daily_return = $3,
			cumulative_return = $4,
			drawdown = $5,
			max_drawdown = $6
		WHERE strategy_code = $1 AND trade_date = $2
	`

	for _, rec := range records {
		_, err := r.pool.Exec(ctx, query,
			rec.StrategyCode, rec.TradeDate,
			rec.DailyReturn, rec.CumulativeReturn, rec.Drawdown, rec.MaxDrawdown,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetLatestMetrics returns each strategy's most recent daily metrics row.
func (r *Repository) GetLatestMetrics(ctx context.Context) ([]contracts.DailyRiskMetrics, error) {
	query := `
		SELECT DISTINCT ON (strategy_code)
			strategy_code, trade_date, margin_ratio, long_exposure, short_exposure,
			net_exposure, gross_exposure, total_position_value,
			top1_concentration, top3_concentration, position_count, trade_count, turnover
		FROM daily_metrics
		ORDER BY strategy_code, trade_date DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.DailyRiskMetrics
	for rows.Next() {
		var m contracts.DailyRiskMetrics
		if err := rows.Scan(
			&m.StrategyCode, &m.TradeDate, &m.MarginRatio, &m.LongExposure, &m.ShortExposure,
			&m.NetExposure, &m.GrossExposure, &m.TotalPositionValue,
			&m.Top1Concentration, &m.Top3Concentration, &m.PositionCount, &m.TradeCount, &m.Turnover,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
