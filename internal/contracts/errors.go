package contracts

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the computation pipeline.
var (
	// ErrMissingBaseline means no prior-day record exists for a derived
	// metric (first day or gap). Handled by emitting nil, never by failing
	// the strategy.
	ErrMissingBaseline = errors.New("missing baseline record")

	// ErrDivisionGuard means a denominator (equity, margin base, total
	// position value) is zero or missing. Handled by emitting nil.
	ErrDivisionGuard = errors.New("zero or missing denominator")

	// ErrScoringInputIncomplete means a strategy lacks enough valid return
	// history for Sharpe/Calmar. The strategy is excluded from ranking but
	// stays in the output with nil score fields.
	ErrScoringInputIncomplete = errors.New("insufficient return history for scoring")
)

// DuplicateDateError reports two disagreeing equity records for the same
// (strategy, trade_date). It is a data-quality defect of one strategy:
// that strategy is excluded from the run, the rest of the cohort proceeds.
type DuplicateDateError struct {
	StrategyCode string
	TradeDate    time.Time
	EquityA      float64
	EquityB      float64
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("duplicate equity records disagree for %s on %s: %.2f vs %.2f",
		e.StrategyCode, e.TradeDate.Format("2006-01-02"), e.EquityA, e.EquityB)
}

// IsDuplicateDate reports whether err is a DuplicateDateError.
func IsDuplicateDate(err error) bool {
	var dup *DuplicateDateError
	return errors.As(err, &dup)
}
