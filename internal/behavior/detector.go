// Package behavior scans per-contract position deltas for risky trading
// patterns: adding to losing positions and adding against the price move.
package behavior

import (
	"fmt"
	"sort"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// Detector flags behavior alerts for one strategy at a time.
type Detector struct {
	pol *policy.Policy
	log *logger.Logger
}

// NewDetector creates a new behavior detector.
func NewDetector(pol *policy.Policy, log *logger.Logger) *Detector {
	return &Detector{
		pol: pol,
		log: log.WithComponent("behavior"),
	}
}

// Detect scans one strategy's position snapshots, comparing each day's
// position per contract against the prior available snapshot of the same
// contract. A contract's first appearance has no baseline and can never
// flag an add. Alerts come back ordered by date then contract.
func (d *Detector) Detect(positions []contracts.PositionSnapshot) []contracts.BehaviorAlert {
	byContract := map[string][]contracts.PositionSnapshot{}
	for _, pos := range positions {
		byContract[pos.Contract] = append(byContract[pos.Contract], pos)
	}

	var alerts []contracts.BehaviorAlert
	for _, history := range byContract {
		sort.Slice(history, func(i, j int) bool {
			return history[i].TradeDate.Before(history[j].TradeDate)
		})

		for i := 1; i < len(history); i++ {
			prev, cur := history[i-1], history[i]

			if a := d.checkFloatingLossAdd(prev, cur); a != nil {
				alerts = append(alerts, *a)
			}
			if a := d.checkCounterTrendAdd(prev, cur); a != nil {
				alerts = append(alerts, *a)
			}
		}
	}

	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].TradeDate.Equal(alerts[j].TradeDate) {
			return alerts[i].TradeDate.Before(alerts[j].TradeDate)
		}
		if alerts[i].Contract != alerts[j].Contract {
			return alerts[i].Contract < alerts[j].Contract
		}
		return alerts[i].AlertType < alerts[j].AlertType
	})

	return alerts
}

// checkFloatingLossAdd flags a day where the contract carries a floating
// loss and the quantity on the losing side grew versus the baseline.
func (d *Detector) checkFloatingLossAdd(prev, cur contracts.PositionSnapshot) *contracts.BehaviorAlert {
	if cur.FloatingPnL >= 0 {
		return nil
	}

	side, addQty := losingSideAdd(prev, cur)
	if addQty <= 0 {
		return nil
	}

	// Loss relative to margin, falling back to position value when the
	// statement carries no margin for the contract.
	var lossRatio *float64
	base := cur.Margin
	if base <= 0 {
		base = cur.PositionValue
	}
	if base > 0 {
		lossRatio = contracts.Float64(-cur.FloatingPnL / base)
	}

	severity := contracts.SeverityLow
	if lossRatio != nil {
		severity = d.classifyLossRatio(*lossRatio)
	}

	ratioPct := 0.0
	if lossRatio != nil {
		ratioPct = *lossRatio * 100
	}

	return &contracts.BehaviorAlert{
		StrategyCode: cur.StrategyCode,
		TradeDate:    cur.TradeDate,
		AlertType:    contracts.AlertFloatingLossAdd,
		Severity:     severity,
		Contract:     cur.Contract,
		Description: fmt.Sprintf("added %d %s on %s while down %.2f (%.2f%%)",
			addQty, side, cur.Contract, -cur.FloatingPnL, ratioPct),
		Details: contracts.BehaviorDetail{
			FloatingPnL:   contracts.Float64(cur.FloatingPnL),
			LossRatio:     lossRatio,
			AddQuantity:   &addQty,
			AddDirection:  side,
			PositionValue: contracts.Float64(cur.PositionValue),
		},
	}
}

// checkCounterTrendAdd flags an add in the direction opposite to the
// settlement price move since the baseline day.
func (d *Detector) checkCounterTrendAdd(prev, cur contracts.PositionSnapshot) *contracts.BehaviorAlert {
	if prev.Settlement <= 0 {
		return nil
	}

	priceChange := cur.Settlement - prev.Settlement
	changePct := priceChange / prev.Settlement

	longAdd := cur.LongQty - prev.LongQty
	shortAdd := cur.ShortQty - prev.ShortQty

	var (
		direction string
		quantity  int
	)
	switch {
	case longAdd > 0 && priceChange < 0:
		direction = "long"
		quantity = longAdd
	case shortAdd > 0 && priceChange > 0:
		direction = "short"
		quantity = shortAdd
	default:
		return nil
	}

	return &contracts.BehaviorAlert{
		StrategyCode: cur.StrategyCode,
		TradeDate:    cur.TradeDate,
		AlertType:    contracts.AlertCounterTrendAdd,
		Severity:     d.classifyChangePct(changePct),
		Contract:     cur.Contract,
		Description: fmt.Sprintf("added %d %s on %s against a %.2f%% move",
			quantity, direction, cur.Contract, changePct*100),
		Details: contracts.BehaviorDetail{
			Direction:      direction,
			PriceChange:    contracts.Float64(priceChange),
			ChangePct:      contracts.Float64(changePct),
			Quantity:       &quantity,
			Price:          contracts.Float64(cur.Settlement),
			Settlement:     contracts.Float64(cur.Settlement),
			PrevSettlement: contracts.Float64(prev.Settlement),
		},
	}
}

// losingSideAdd attributes the floating loss to one side and returns that
// side's quantity increase. With both sides open the settlement move picks
// the loser: a falling price hurts longs, a rising one hurts shorts.
func losingSideAdd(prev, cur contracts.PositionSnapshot) (string, int) {
	hasLong := cur.LongQty > 0
	hasShort := cur.ShortQty > 0

	switch {
	case hasLong && !hasShort:
		return "long", cur.LongQty - prev.LongQty
	case hasShort && !hasLong:
		return "short", cur.ShortQty - prev.ShortQty
	case hasLong && hasShort:
		if cur.Settlement < prev.Settlement {
			return "long", cur.LongQty - prev.LongQty
		}
		return "short", cur.ShortQty - prev.ShortQty
	default:
		return "", 0
	}
}

func (d *Detector) classifyLossRatio(lossRatio float64) string {
	switch {
	case lossRatio > d.pol.Severity.LossRatioHigh:
		return contracts.SeverityHigh
	case lossRatio > d.pol.Severity.LossRatioMedium:
		return contracts.SeverityMedium
	default:
		return contracts.SeverityLow
	}
}

func (d *Detector) classifyChangePct(changePct float64) string {
	abs := changePct
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs > d.pol.Severity.ChangePctHigh:
		return contracts.SeverityHigh
	case abs > d.pol.Severity.ChangePctMedium:
		return contracts.SeverityMedium
	default:
		return contracts.SeverityLow
	}
}
