package contracts

import "time"

// Behavior alert types.
const (
	AlertFloatingLossAdd = "floating_loss_add"
	AlertCounterTrendAdd = "counter_trend_add"
)

// Severity levels, ordered from worst to mildest.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// SeverityRank orders severities for sorting (high first).
func SeverityRank(severity string) int {
	switch severity {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// BehaviorAlert is one detected risky trading behavior.
// Unique per (strategy, trade_date, contract, alert_type); immutable.
type BehaviorAlert struct {
	StrategyCode string         `json:"strategy_code"`
	TradeDate    time.Time      `json:"trade_date"`
	AlertType    string         `json:"alert_type"`
	Severity     string         `json:"severity"`
	Contract     string         `json:"contract"`
	Description  string         `json:"description"`
	Details      BehaviorDetail `json:"details"`
}

// BehaviorDetail is the structured payload attached to a BehaviorAlert.
// Which fields are set depends on the alert type.
type BehaviorDetail struct {
	// floating_loss_add
	FloatingPnL   *float64 `json:"floating_pnl,omitempty"`
	LossRatio     *float64 `json:"loss_ratio,omitempty"`
	AddQuantity   *int     `json:"add_quantity,omitempty"`
	AddDirection  string   `json:"add_direction,omitempty"`
	PositionValue *float64 `json:"position_value,omitempty"`

	// counter_trend_add
	Direction      string   `json:"direction,omitempty"`
	PriceChange    *float64 `json:"price_change,omitempty"`
	ChangePct      *float64 `json:"change_pct,omitempty"`
	Quantity       *int     `json:"quantity,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	Settlement     *float64 `json:"settlement,omitempty"`
	PrevSettlement *float64 `json:"prev_settlement,omitempty"`
}

// BehaviorSummary aggregates one strategy's behavior alerts for a calc date.
// Unique per (strategy, calc_date); overwritten every run.
type BehaviorSummary struct {
	StrategyCode string    `json:"strategy_code"`
	CalcDate     time.Time `json:"calc_date"`

	TotalAlerts          int `json:"total_alerts"`
	FloatingLossAddCount int `json:"floating_loss_add_count"`
	CounterTrendAddCount int `json:"counter_trend_add_count"`
	HighSeverityCount    int `json:"high_severity_count"`

	// BehaviorRiskScore is 0-100, higher means riskier behavior.
	BehaviorRiskScore float64 `json:"behavior_risk_score"`

	// RecentAlerts is a small bounded list for the dashboard.
	RecentAlerts []BehaviorAlert `json:"recent_alerts"`
}
