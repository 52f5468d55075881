package policy

import "fmt"

// ValidationError reports an invalid policy field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all policy constraints. The sub-score caps must sum to
// 100 per group and every mapping must stay monotonic.
func Validate(p *Policy) error {
	// === Scoring ===
	if p.Scoring.TradingDaysPerYear <= 0 {
		return ValidationError{"scoring.trading_days_per_year", "must be > 0"}
	}
	if p.Scoring.MinTradingDays < 2 {
		return ValidationError{"scoring.min_trading_days", "must be >= 2"}
	}
	if p.Scoring.RiskFreeRate < 0 || p.Scoring.RiskFreeRate > 0.2 {
		return ValidationError{"scoring.risk_free_rate", "must be in [0, 0.2]"}
	}

	perfBands := map[string]Band{
		"scoring.performance.return":   p.Scoring.Performance.Return,
		"scoring.performance.sharpe":   p.Scoring.Performance.Sharpe,
		"scoring.performance.drawdown": p.Scoring.Performance.Drawdown,
		"scoring.performance.win_rate": p.Scoring.Performance.WinRate,
	}
	riskBands := map[string]Band{
		"scoring.risk.margin":     p.Scoring.Risk.Margin,
		"scoring.risk.volatility": p.Scoring.Risk.Volatility,
		"scoring.risk.drawdown":   p.Scoring.Risk.Drawdown,
	}

	perfTotal := 0.0
	for field, b := range perfBands {
		if err := validateBand(field, b); err != nil {
			return err
		}
		perfTotal += b.Cap
	}
	if perfTotal != 100 {
		return ValidationError{"scoring.performance", "caps must sum to 100"}
	}

	riskTotal := 0.0
	for field, b := range riskBands {
		if err := validateBand(field, b); err != nil {
			return err
		}
		riskTotal += b.Cap
	}
	if riskTotal != 100 {
		return ValidationError{"scoring.risk", "caps must sum to 100"}
	}

	// === Severity ===
	if p.Severity.LossRatioMedium <= 0 || p.Severity.LossRatioHigh <= p.Severity.LossRatioMedium {
		return ValidationError{"severity.loss_ratio", "need 0 < medium < high"}
	}
	if p.Severity.ChangePctMedium <= 0 || p.Severity.ChangePctHigh <= p.Severity.ChangePctMedium {
		return ValidationError{"severity.change_pct", "need 0 < medium < high"}
	}

	// === Behavior ===
	if p.Behavior.MaxScore <= 0 {
		return ValidationError{"behavior.max_score", "must be > 0"}
	}
	if p.Behavior.FloatingLossWeight < 0 || p.Behavior.CounterTrendWeight < 0 || p.Behavior.HighSeverityWeight < 0 {
		return ValidationError{"behavior", "weights must be >= 0"}
	}
	if p.Behavior.RecentAlertLimit < 0 {
		return ValidationError{"behavior.recent_alert_limit", "must be >= 0"}
	}

	// === Alerts ===
	alertRules := map[string]Thresholds{
		"alerts.margin_ratio":       p.Alerts.MarginRatio,
		"alerts.gross_exposure":     p.Alerts.GrossExposure,
		"alerts.top1_concentration": p.Alerts.Top1Concentration,
		"alerts.max_drawdown":       p.Alerts.MaxDrawdown,
	}
	for field, t := range alertRules {
		if t.Warning <= 0 || t.Danger <= t.Warning {
			return ValidationError{field, "need 0 < warning < danger"}
		}
	}

	return nil
}

func validateBand(field string, b Band) error {
	if b.Cap <= 0 {
		return ValidationError{field + ".cap", "must be > 0"}
	}
	if b.Best == b.Worst {
		return ValidationError{field, "best and worst must differ"}
	}
	return nil
}
