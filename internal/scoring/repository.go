package scoring

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Repository implements contracts.ScoreRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new score repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const scoreColumns = `
	strategy_code, calc_date, trading_days, total_return, annualized_return,
	volatility, sharpe_ratio, max_drawdown, calmar_ratio, win_rate,
	avg_margin_ratio, performance_score, risk_score, total_score, rank
`

// SaveScores upserts cohort scores keyed by (strategy, calc_date).
func (r *Repository) SaveScores(ctx context.Context, scores []contracts.StrategyScore) error {
	query := `
		INSERT INTO strategy_scores (` + scoreColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (strategy_code, calc_date) DO UPDATE SET
			trading_days = EXCLUDED.trading_days,
			total_return = EXCLUDED.total_return,
			annualized_return = EXCLUDED.annualized_return,
			volatility = EXCLUDED.volatility,
			sharpe_ratio = EXCLUDED.sharpe_ratio,
			max_drawdown = EXCLUDED.max_drawdown,
			calmar_ratio = EXCLUDED.calmar_ratio,
			win_rate = EXCLUDED.win_rate,
			avg_margin_ratio = EXCLUDED.avg_margin_ratio,
			performance_score = EXCLUDED.performance_score,
			risk_score = EXCLUDED.risk_score,
			total_score = EXCLUDED.total_score,
			rank = EXCLUDED.rank
	`

	for _, s := range scores {
		_, err := r.pool.Exec(ctx, query,
			s.StrategyCode, s.CalcDate, s.Stats.TradingDays,
			s.Stats.TotalReturn, s.Stats.AnnualizedReturn,
			s.Stats.Volatility, s.Stats.SharpeRatio, s.Stats.MaxDrawdown,
			s.Stats.CalmarRatio, s.Stats.WinRate, s.Stats.AvgMarginRatio,
			s.PerformanceScore, s.RiskScore, s.TotalScore, s.Rank,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetScores returns the cohort's scores for one calc date.
func (r *Repository) GetScores(ctx context.Context, calcDate time.Time) ([]contracts.StrategyScore, error) {
	query := `
		SELECT ` + scoreColumns + `
		FROM strategy_scores
		WHERE calc_date = $1
		ORDER BY rank NULLS LAST, strategy_code
	`
	rows, err := r.pool.Query(ctx, query, calcDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScores(rows)
}

// GetLatestScores returns each strategy's most recent score row.
func (r *Repository) GetLatestScores(ctx context.Context) ([]contracts.StrategyScore, error) {
	query := `
		SELECT DISTINCT ON (strategy_code) ` + scoreColumns + `
		FROM strategy_scores
		ORDER BY strategy_code, calc_date DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScores(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanScores(rows pgxRows) ([]contracts.StrategyScore, error) {
	var out []contracts.StrategyScore
	for rows.Next() {
		var s contracts.StrategyScore
		if err := rows.Scan(
			&s.StrategyCode, &s.CalcDate, &s.Stats.TradingDays,
			&s.Stats.TotalReturn, &s.Stats.AnnualizedReturn,
			&s.Stats.Volatility, &s.Stats.SharpeRatio, &s.Stats.MaxDrawdown,
			&s.Stats.CalmarRatio, &s.Stats.WinRate, &s.Stats.AvgMarginRatio,
			&s.PerformanceScore, &s.RiskScore, &s.TotalScore, &s.Rank,
		); err != nil {
			return nil, err
		}
		s.Stats.StrategyCode = s.StrategyCode
		s.Stats.CalcDate = s.CalcDate
		out = append(out, s)
	}
	return out, rows.Err()
}
