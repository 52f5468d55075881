package behavior

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Repository implements contracts.BehaviorRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new behavior repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAlerts upserts behavior alerts keyed by
// (strategy, trade_date, contract, alert_type).
func (r *Repository) SaveAlerts(ctx context.Context, alerts []contracts.BehaviorAlert) error {
	query := `
		INSERT INTO behavior_alerts (
			strategy_code, trade_date, contract, alert_type,
			severity, description, details
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (strategy_code, trade_date, contract, alert_type) DO UPDATE SET
			severity = EXCLUDED.severity,
			description = EXCLUDED.description,
			details = EXCLUDED.details
	`

	for _, a := range alerts {
		details, err := json.Marshal(a.Details)
		if err != nil {
			return fmt.Errorf("marshal alert details: %w", err)
		}

		_, err = r.pool.Exec(ctx, query,
			a.StrategyCode, a.TradeDate, a.Contract, a.AlertType,
			a.Severity, a.Description, details,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveSummaries upserts behavior summaries keyed by (strategy, calc_date).
func (r *Repository) SaveSummaries(ctx context.Context, summaries []contracts.BehaviorSummary) error {
	query := `
		INSERT INTO behavior_summary (
			strategy_code, calc_date, total_alerts, floating_loss_add_count,
			counter_trend_add_count, high_severity_count, behavior_risk_score,
			recent_alerts
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (strategy_code, calc_date) DO UPDATE SET
			total_alerts = EXCLUDED.total_alerts,
			floating_loss_add_count = EXCLUDED.floating_loss_add_count,
			counter_trend_add_count = EXCLUDED.counter_trend_add_count,
			high_severity_count = EXCLUDED.high_severity_count,
			behavior_risk_score = EXCLUDED.behavior_risk_score,
			recent_alerts = EXCLUDED.recent_alerts
	`

	for _, s := range summaries {
		recent, err := json.Marshal(s.RecentAlerts)
		if err != nil {
			return fmt.Errorf("marshal recent alerts: %w", err)
		}

		_, err = r.pool.Exec(ctx, query,
			s.StrategyCode, s.CalcDate, s.TotalAlerts, s.FloatingLossAddCount,
			s.CounterTrendAddCount, s.HighSeverityCount, s.BehaviorRiskScore,
			recent,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const summaryColumns = `
	strategy_code, calc_date, total_alerts, floating_loss_add_count,
	counter_trend_add_count, high_severity_count, behavior_risk_score,
	recent_alerts
`

// GetSummary returns one strategy's most recent behavior summary.
func (r *Repository) GetSummary(ctx context.Context, strategyCode string) (*contracts.BehaviorSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM behavior_summary
		WHERE strategy_code = $1
		ORDER BY calc_date DESC
		LIMIT 1
	`

	row := r.pool.QueryRow(ctx, query, strategyCode)
	s, err := scanSummary(row)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetLatestSummaries returns each strategy's most recent summary.
func (r *Repository) GetLatestSummaries(ctx context.Context) ([]contracts.BehaviorSummary, error) {
	query := `
		SELECT DISTINCT ON (strategy_code) ` + summaryColumns + `
		FROM behavior_summary
		ORDER BY strategy_code, calc_date DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.BehaviorSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanSummary(row pgx.Row) (*contracts.BehaviorSummary, error) {
	var (
		s      contracts.BehaviorSummary
		recent []byte
	)
	if err := row.Scan(
		&s.StrategyCode, &s.CalcDate, &s.TotalAlerts, &s.FloatingLossAddCount,
		&s.CounterTrendAddCount, &s.HighSeverityCount, &s.BehaviorRiskScore,
		&recent,
	); err != nil {
		return nil, err
	}

	if len(recent) > 0 {
		if err := json.Unmarshal(recent, &s.RecentAlerts); err != nil {
			return nil, fmt.Errorf("unmarshal recent alerts: %w", err)
		}
	}
	return &s, nil
}
