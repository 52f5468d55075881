package policy

// Policy is the full threshold/weight table for the analytics pipeline.
// Every breakpoint used by scoring, behavior detection and alerting lives
// here so it can be tuned and tested without touching computation code.
type Policy struct {
	Scoring  Scoring         `yaml:"scoring" json:"scoring"`
	Severity Severity        `yaml:"severity" json:"severity"`
	Behavior BehaviorWeights `yaml:"behavior" json:"behavior"`
	Alerts   AlertRules      `yaml:"alerts" json:"alerts"`
}

// Scoring holds the score-engine constants and sub-score bands.
type Scoring struct {
	RiskFreeRate       float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	TradingDaysPerYear int     `yaml:"trading_days_per_year" json:"trading_days_per_year"`

	// MinTradingDays is the minimum series length for a strategy to be
	// scored at all. Below it the strategy is reported with nil scores.
	MinTradingDays int `yaml:"min_trading_days" json:"min_trading_days"`

	Performance PerformanceBands `yaml:"performance" json:"performance"`
	Risk        RiskBands        `yaml:"risk" json:"risk"`
}

// Band is a monotonic, clipped linear mapping from a raw metric to a
// sub-score in [0, Cap]. Worst maps to 0 and Best maps to Cap; Best may be
// below Worst for metrics where smaller is better.
type Band struct {
	Best  float64 `yaml:"best" json:"best"`
	Worst float64 `yaml:"worst" json:"worst"`
	Cap   float64 `yaml:"cap" json:"cap"`
}

// Score maps a raw metric value onto the band.
func (b Band) Score(x float64) float64 {
	span := b.Best - b.Worst
	if span == 0 {
		return 0
	}
	frac := (x - b.Worst) / span
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return frac * b.Cap
}

// PerformanceBands decompose the performance score (sums to 100 caps).
type PerformanceBands struct {
	Return   Band `yaml:"return" json:"return"`
	Sharpe   Band `yaml:"sharpe" json:"sharpe"`
	Drawdown Band `yaml:"drawdown" json:"drawdown"`
	WinRate  Band `yaml:"win_rate" json:"win_rate"`
}

// RiskBands decompose the risk score (sums to 100 caps, higher = safer).
type RiskBands struct {
	Margin     Band `yaml:"margin" json:"margin"`
	Volatility Band `yaml:"volatility" json:"volatility"`
	Drawdown   Band `yaml:"drawdown" json:"drawdown"`
}

// Severity holds the three-band severity thresholds for behavior alerts.
// A value above High classifies as high, above Medium as medium, else low.
type Severity struct {
	LossRatioHigh   float64 `yaml:"loss_ratio_high" json:"loss_ratio_high"`
	LossRatioMedium float64 `yaml:"loss_ratio_medium" json:"loss_ratio_medium"`
	ChangePctHigh   float64 `yaml:"change_pct_high" json:"change_pct_high"`
	ChangePctMedium float64 `yaml:"change_pct_medium" json:"change_pct_medium"`
}

// BehaviorWeights define the 0-100 behavior risk score.
type BehaviorWeights struct {
	FloatingLossWeight float64 `yaml:"floating_loss_weight" json:"floating_loss_weight"`
	CounterTrendWeight float64 `yaml:"counter_trend_weight" json:"counter_trend_weight"`
	HighSeverityWeight float64 `yaml:"high_severity_weight" json:"high_severity_weight"`
	MaxScore           float64 `yaml:"max_score" json:"max_score"`

	// RecentAlertLimit bounds the per-strategy alert list in summaries.
	RecentAlertLimit int `yaml:"recent_alert_limit" json:"recent_alert_limit"`
}

// AlertRules holds (warning, danger) threshold pairs per monitored metric.
type AlertRules struct {
	MarginRatio       Thresholds `yaml:"margin_ratio" json:"margin_ratio"`
	GrossExposure     Thresholds `yaml:"gross_exposure" json:"gross_exposure"`
	Top1Concentration Thresholds `yaml:"top1_concentration" json:"top1_concentration"`
	MaxDrawdown       Thresholds `yaml:"max_drawdown" json:"max_drawdown"`
}

// Thresholds is a (warning, danger) pair for one metric. Breaching Danger
// wins over Warning.
type Thresholds struct {
	Warning float64 `yaml:"warning" json:"warning"`
	Danger  float64 `yaml:"danger" json:"danger"`
}

// Default returns the shipped policy: total return -5%..15% maps onto
// 0..40, margin ratio 50%..0% onto 0..40, and so on for the other bands.
func Default() *Policy {
	return &Policy{
		Scoring: Scoring{
			RiskFreeRate:       0.03,
			TradingDaysPerYear: 252,
			MinTradingDays:     2,
			Performance: PerformanceBands{
				Return:   Band{Best: 0.15, Worst: -0.05, Cap: 40},
				Sharpe:   Band{Best: 2.0, Worst: 0.0, Cap: 30},
				Drawdown: Band{Best: 0.0, Worst: 0.20, Cap: 20},
				WinRate:  Band{Best: 1.0, Worst: 0.0, Cap: 10},
			},
			Risk: RiskBands{
				Margin:     Band{Best: 0.0, Worst: 0.50, Cap: 40},
				Volatility: Band{Best: 0.0, Worst: 0.50, Cap: 30},
				Drawdown:   Band{Best: 0.0, Worst: 0.20, Cap: 30},
			},
		},
		Severity: Severity{
			LossRatioHigh:   0.05,
			LossRatioMedium: 0.02,
			ChangePctHigh:   0.03,
			ChangePctMedium: 0.015,
		},
		Behavior: BehaviorWeights{
			FloatingLossWeight: 5,
			CounterTrendWeight: 3,
			HighSeverityWeight: 10,
			MaxScore:           100,
			RecentAlertLimit:   5,
		},
		Alerts: AlertRules{
			MarginRatio:       Thresholds{Warning: 0.60, Danger: 0.80},
			GrossExposure:     Thresholds{Warning: 2.0, Danger: 3.0},
			Top1Concentration: Thresholds{Warning: 0.50, Danger: 0.70},
			MaxDrawdown:       Thresholds{Warning: 0.10, Danger: 0.20},
		},
	}
}
