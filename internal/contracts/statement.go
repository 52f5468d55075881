package contracts

import "time"

// StrategyAccount identifies one managed trading account.
// Immutable once created; every other entity references it by code.
type StrategyAccount struct {
	Code string `json:"strategy_code"`
	Name string `json:"strategy_name"`
}

// DailyEquityRecord is one day of a strategy's statement summary.
// Unique per (strategy, trade_date). Raw fields come from the statement;
// derived fields are filled by the pipeline and start out nil.
type DailyEquityRecord struct {
	StrategyCode string    `json:"strategy_code"`
	TradeDate    time.Time `json:"trade_date"`

	// Raw statement fields
	PrevBalance     float64 `json:"prev_balance"`
	DepositWithdraw float64 `json:"deposit_withdraw"`
	RealizedPnL     float64 `json:"realized_pnl"`
	Commission      float64 `json:"commission"`
	CurrentBalance  float64 `json:"current_balance"`
	FloatingPnL     float64 `json:"floating_pnl"`
	Equity          float64 `json:"equity"`
	MarginUsed      float64 `json:"margin_used"`
	AvailableFunds  float64 `json:"available_funds"`
	RiskDegree      float64 `json:"risk_degree"`

	// Derived fields. Nil means "not computable", never zero.
	DailyReturn      *float64 `json:"daily_return"`
	CumulativeReturn *float64 `json:"cumulative_return"`
	Drawdown         *float64 `json:"drawdown"`
	MaxDrawdown      *float64 `json:"max_drawdown"`

	// IngestedAt orders re-ingestions of the same trade date.
	IngestedAt time.Time `json:"ingested_at"`
}

// PositionSnapshot is one held contract on one day.
// Multiple rows per (strategy, trade_date), one per contract.
type PositionSnapshot struct {
	StrategyCode string    `json:"strategy_code"`
	TradeDate    time.Time `json:"trade_date"`
	Contract     string    `json:"contract"`

	LongQty        int     `json:"long_qty"`
	LongPrice      float64 `json:"long_price"`
	ShortQty       int     `json:"short_qty"`
	ShortPrice     float64 `json:"short_price"`
	PrevSettlement float64 `json:"prev_settlement"`
	Settlement     float64 `json:"settlement"`
	FloatingPnL    float64 `json:"floating_pnl"`
	PositionValue  float64 `json:"position_value"`
	Margin         float64 `json:"margin"`
	Exchange       string  `json:"exchange"`
	OpenDate       string  `json:"open_date"`
}

// TradeRecord is one fill from the statement's trade blotter.
type TradeRecord struct {
	StrategyCode string    `json:"strategy_code"`
	TradeDate    time.Time `json:"trade_date"`
	Contract     string    `json:"contract"`
	TradeID      string    `json:"trade_id"`
	TradeTime    string    `json:"trade_time"`
	Direction    string    `json:"direction"`   // buy, sell
	OffsetFlag   string    `json:"offset_flag"` // open, close
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	Amount       float64   `json:"amount"`
	Commission   float64   `json:"commission"`
	RealizedPnL  float64   `json:"realized_pnl"`
	Exchange     string    `json:"exchange"`
}

// Trade direction and offset values as normalized by ingestion.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"

	OffsetOpen  = "open"
	OffsetClose = "close"
)

// IsOpen reports whether the trade opened (added to) a position.
func (t *TradeRecord) IsOpen() bool {
	return t.OffsetFlag == OffsetOpen
}

// Float64 returns a pointer to v. Convenience for derived nullable fields.
func Float64(v float64) *float64 {
	return &v
}
