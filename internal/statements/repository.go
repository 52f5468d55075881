// Package statements is the read side of the ingestion boundary: the
// validated per-day statement records the pipeline consumes, plus the
// strategy registry.
package statements

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Repository implements contracts.StatementRepository on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new statement repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureStrategies upserts StrategyAccount rows for every code. Existing
// rows keep their display name; the registry is append-only.
func (r *Repository) EnsureStrategies(ctx context.Context, codes []string) error {
	query := `
		INSERT INTO strategies (strategy_code, strategy_name)
		VALUES ($1, $1)
		ON CONFLICT (strategy_code) DO NOTHING
	`

	for _, code := range codes {
		if _, err := r.pool.Exec(ctx, query, code); err != nil {
			return err
		}
	}
	return nil
}

// ListInputCodes returns the distinct strategy codes present in the
// ingested equity data.
func (r *Repository) ListInputCodes(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT strategy_code
		FROM daily_equity
		ORDER BY strategy_code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// ListStrategies returns the full strategy registry.
func (r *Repository) ListStrategies(ctx context.Context) ([]contracts.StrategyAccount, error) {
	query := `
		SELECT strategy_code, strategy_name
		FROM strategies
		ORDER BY strategy_code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.StrategyAccount
	for rows.Next() {
		var s contracts.StrategyAccount
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetEquitySeries returns one strategy's raw equity records, unordered.
// Normalization owns ordering and dedup.
func (r *Repository) GetEquitySeries(ctx context.Context, strategyCode string) ([]contracts.DailyEquityRecord, error) {
	query := `
		SELECT strategy_code, trade_date, prev_balance, deposit_withdraw,
			realized_pnl, commission, current_balance, floating_pnl,
			equity, margin_used, available_funds, risk_degree,
			daily_return, cumulative_return, drawdown, max_drawdown,
			ingested_at
		FROM daily_equity
		WHERE strategy_code = $1
	`

	rows, err := r.pool.Query(ctx, query, strategyCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.DailyEquityRecord
	for rows.Next() {
		var rec contracts.DailyEquityRecord
		if err := rows.Scan(
			&rec.StrategyCode, &rec.TradeDate, &rec.PrevBalance, &rec.DepositWithdraw,
			&rec.RealizedPnL, &rec.Commission, &rec.CurrentBalance, &rec.FloatingPnL,
			&rec.Equity, &rec.MarginUsed, &rec.AvailableFunds, &rec.RiskDegree,
			&rec.DailyReturn, &rec.CumulativeReturn, &rec.Drawdown, &rec.MaxDrawdown,
			&rec.IngestedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetPositions returns one strategy's full position snapshot history.
func (r *Repository) GetPositions(ctx context.Context, strategyCode string) ([]contracts.PositionSnapshot, error) {
	query := `
		SELECT strategy_code, trade_date, contract, long_qty, long_price,
			short_qty, short_price, prev_settlement, settlement,
			floating_pnl, position_value, margin, exchange, open_date
		FROM positions
		WHERE strategy_code = $1
		ORDER BY trade_date, contract
	`

	rows, err := r.pool.Query(ctx, query, strategyCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.PositionSnapshot
	for rows.Next() {
		var p contracts.PositionSnapshot
		if err := rows.Scan(
			&p.StrategyCode, &p.TradeDate, &p.Contract, &p.LongQty, &p.LongPrice,
			&p.ShortQty, &p.ShortPrice, &p.PrevSettlement, &p.Settlement,
			&p.FloatingPnL, &p.PositionValue, &p.Margin, &p.Exchange, &p.OpenDate,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTrades returns one strategy's full trade history.
func (r *Repository) GetTrades(ctx context.Context, strategyCode string) ([]contracts.TradeRecord, error) {
	query := `
		SELECT strategy_code, trade_date, contract, trade_id, trade_time,
			direction, offset_flag, price, quantity, amount,
			commission, realized_pnl, exchange
		FROM trades
		WHERE strategy_code = $1
		ORDER BY trade_date, trade_time, trade_id
	`

	rows, err := r.pool.Query(ctx, query, strategyCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.TradeRecord
	for rows.Next() {
		var t contracts.TradeRecord
		if err := rows.Scan(
			&t.StrategyCode, &t.TradeDate, &t.Contract, &t.TradeID, &t.TradeTime,
			&t.Direction, &t.OffsetFlag, &t.Price, &t.Quantity, &t.Amount,
			&t.Commission, &t.RealizedPnL, &t.Exchange,
		); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
