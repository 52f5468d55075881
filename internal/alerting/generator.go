// Package alerting evaluates threshold rules over derived metrics and
// emits breach records for the risk dashboard.
package alerting

import (
	"fmt"
	"time"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// Generator is a stateless rule evaluator. A metric inside its normal
// band produces no record at all; absence of an Alert is the "normal"
// signal.
type Generator struct {
	pol *policy.Policy
	log *logger.Logger
}

// NewGenerator creates a new alert generator.
func NewGenerator(pol *policy.Policy, log *logger.Logger) *Generator {
	return &Generator{
		pol: pol,
		log: log.WithComponent("alerting"),
	}
}

// Evaluate checks one strategy's latest risk metrics and score against the
// policy thresholds. score may be nil for strategies excluded from
// scoring; nil metric values are skipped, not treated as breaches.
func (g *Generator) Evaluate(
	metrics contracts.DailyRiskMetrics,
	score *contracts.StrategyScore,
) []contracts.Alert {
	var alerts []contracts.Alert

	emit := func(metricName string, value *float64, t policy.Thresholds) {
		if value == nil {
			return
		}
		a := breach(metrics.StrategyCode, metrics.TradeDate, metricName, *value, t)
		if a != nil {
			alerts = append(alerts, *a)
		}
	}

	emit("margin_ratio", metrics.MarginRatio, g.pol.Alerts.MarginRatio)
	emit("gross_exposure", metrics.GrossExposure, g.pol.Alerts.GrossExposure)
	emit("top1_concentration", metrics.Top1Concentration, g.pol.Alerts.Top1Concentration)

	if score != nil && score.Scored() {
		emit("max_drawdown", contracts.Float64(score.Stats.MaxDrawdown), g.pol.Alerts.MaxDrawdown)
	}

	for _, a := range alerts {
		g.log.WithFields(map[string]interface{}{
			"strategy": a.StrategyCode,
			"metric":   a.AlertType,
			"level":    a.AlertLevel,
			"value":    a.MetricValue,
		}).Warn("Threshold breached")
	}

	return alerts
}

// breach builds the alert for one metric, danger winning over warning.
// Returns nil inside the normal band.
func breach(code string, date time.Time, metricName string, value float64, t policy.Thresholds) *contracts.Alert {
	var (
		level     string
		threshold float64
	)
	switch {
	case value >= t.Danger:
		level = contracts.AlertLevelDanger
		threshold = t.Danger
	case value >= t.Warning:
		level = contracts.AlertLevelWarning
		threshold = t.Warning
	default:
		return nil
	}

	return &contracts.Alert{
		StrategyCode:   code,
		TradeDate:      date,
		AlertType:      metricName,
		AlertLevel:     level,
		MetricValue:    value,
		ThresholdValue: threshold,
		Message: fmt.Sprintf("%s %s: %.4f breaches %s threshold %.4f",
			code, metricName, value, level, threshold),
	}
}
