package alerting

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Repository implements contracts.AlertRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new alert repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAlerts upserts alerts keyed by (strategy, trade_date, alert_type).
func (r *Repository) SaveAlerts(ctx context.Context, alerts []contracts.Alert) error {
	query := `
		INSERT INTO alerts (
			strategy_code, trade_date, alert_type, alert_level,
			metric_value, threshold_value, message
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (strategy_code, trade_date, alert_type) DO UPDATE SET
			alert_level = EXCLUDED.alert_level,
			metric_value = EXCLUDED.metric_value,
			threshold_value = EXCLUDED.threshold_value,
			message = EXCLUDED.message
	`

	for _, a := range alerts {
		_, err := r.pool.Exec(ctx, query,
			a.StrategyCode, a.TradeDate, a.AlertType, a.AlertLevel,
			a.MetricValue, a.ThresholdValue, a.Message,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetAlerts returns one strategy's alerts from a date onwards, newest
// first.
func (r *Repository) GetAlerts(ctx context.Context, strategyCode string, from time.Time) ([]contracts.Alert, error) {
	query := `
		SELECT strategy_code, trade_date, alert_type, alert_level,
			metric_value, threshold_value, message
		FROM alerts
		WHERE strategy_code = $1 AND trade_date >= $2
		ORDER BY trade_date DESC, alert_type
	`

	rows, err := r.pool.Query(ctx, query, strategyCode, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.Alert
	for rows.Next() {
		var a contracts.Alert
		if err := rows.Scan(
			&a.StrategyCode, &a.TradeDate, &a.AlertType, &a.AlertLevel,
			&a.MetricValue, &a.ThresholdValue, &a.Message,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
