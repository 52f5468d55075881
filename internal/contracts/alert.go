package contracts

import "time"

// Alert levels for threshold-breach alerts.
const (
	AlertLevelWarning = "warning"
	AlertLevelDanger  = "danger"
)

// Alert is a threshold-breach record from the rule evaluator,
// independent of BehaviorAlert.
// Unique per (strategy, trade_date, alert_type). A strategy within the
// normal band produces no record at all.
type Alert struct {
	StrategyCode string    `json:"strategy_code"`
	TradeDate    time.Time `json:"trade_date"`
	AlertType    string    `json:"alert_type"` // monitored metric name
	AlertLevel   string    `json:"alert_level"`

	// The literal values that triggered the breach.
	MetricValue    float64 `json:"metric_value"`
	ThresholdValue float64 `json:"threshold_value"`

	Message string `json:"message"`
}
