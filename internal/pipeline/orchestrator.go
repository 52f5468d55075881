// Package pipeline coordinates the daily analytics run: per-strategy
// series derivation in parallel, a cohort barrier at ranking, and
// idempotent persistence of every derived output.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jayliu/stratwatch/internal/alerting"
	"github.com/jayliu/stratwatch/internal/behavior"
	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/riskmetrics"
	"github.com/jayliu/stratwatch/internal/scoring"
	"github.com/jayliu/stratwatch/internal/timeseries"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// Orchestrator wires the stages together and owns the run lifecycle.
type Orchestrator struct {
	statements contracts.StatementRepository

	metricsRepo  contracts.MetricsRepository
	scoreRepo    contracts.ScoreRepository
	behaviorRepo contracts.BehaviorRepository
	alertRepo    contracts.AlertRepository

	riskCalc    *riskmetrics.Calculator
	scoreEngine *scoring.Engine
	detector    *behavior.Detector
	alertGen    *alerting.Generator

	workers int
	log     *logger.Logger
}

// NewOrchestrator creates a new pipeline orchestrator.
func NewOrchestrator(
	statements contracts.StatementRepository,
	metricsRepo contracts.MetricsRepository,
	scoreRepo contracts.ScoreRepository,
	behaviorRepo contracts.BehaviorRepository,
	alertRepo contracts.AlertRepository,
	riskCalc *riskmetrics.Calculator,
	scoreEngine *scoring.Engine,
	detector *behavior.Detector,
	alertGen *alerting.Generator,
	workers int,
	log *logger.Logger,
) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		statements:   statements,
		metricsRepo:  metricsRepo,
		scoreRepo:    scoreRepo,
		behaviorRepo: behaviorRepo,
		alertRepo:    alertRepo,
		riskCalc:     riskCalc,
		scoreEngine:  scoreEngine,
		detector:     detector,
		alertGen:     alertGen,
		workers:      workers,
		log:          log.WithComponent("pipeline"),
	}
}

// RunConfig holds configuration for one pipeline run.
type RunConfig struct {
	// RunID identifies the run in logs. Generated when empty.
	RunID string

	// CalcDate labels the cohort outputs. Zero means "latest trade date
	// seen across the cohort".
	CalcDate time.Time

	// PolicyHash is recorded for audit of which thresholds were active.
	PolicyHash string

	// DryRun computes everything but persists nothing.
	DryRun bool
}

// RunResult summarizes one completed run.
type RunResult struct {
	RunID    string
	CalcDate time.Time
	Duration time.Duration

	Strategies int
	Scored     int
	Ranked     int

	DailyMetrics   int
	BehaviorAlerts int
	Alerts         int

	// Excluded maps strategy code to the data-quality reason it was
	// dropped from this run. One bad strategy never aborts the cohort.
	Excluded map[string]string

	Scores []contracts.StrategyScore
}

// strategyOutput is everything one per-strategy scan produces.
type strategyOutput struct {
	code    string
	series  []contracts.DailyEquityRecord
	metrics []contracts.DailyRiskMetrics

	score          contracts.StrategyScore
	behaviorAlerts []contracts.BehaviorAlert
	summary        contracts.BehaviorSummary
	alerts         []contracts.Alert

	lastTradeDate time.Time
}

// Run executes the full pipeline: derive, score, rank, persist.
// Data-quality failures are isolated per strategy; only boundary I/O
// failures abort the run.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}

	log := o.log.WithField("run_id", cfg.RunID)
	log.WithFields(map[string]interface{}{
		"policy_hash": cfg.PolicyHash,
		"dry_run":     cfg.DryRun,
	}).Info("Starting pipeline run")

	codes, err := o.statements.ListInputCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list input codes: %w", err)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no ingested equity data found")
	}

	if !cfg.DryRun {
		if err := o.statements.EnsureStrategies(ctx, codes); err != nil {
			return nil, fmt.Errorf("ensure strategies: %w", err)
		}
	}

	// Per-strategy derivation, embarrassingly parallel. Each worker sees
	// only its own strategy's records.
	var (
		mu       sync.Mutex
		outputs  []*strategyOutput
		excluded = map[string]string{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, code := range codes {
		code := code
		g.Go(func() error {
			out, err := o.processStrategy(gctx, code)
			if err != nil {
				if contracts.IsDuplicateDate(err) {
					log.WithError(err).WithField("strategy", code).
						Warn("Strategy excluded from run")
					mu.Lock()
					excluded[code] = err.Error()
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("strategy %s: %w", code, err)
			}
			if out == nil {
				return nil
			}
			mu.Lock()
			outputs = append(outputs, out)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic order regardless of worker completion order.
	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].code < outputs[j].code
	})

	// The cohort calc date labels every cross-strategy output.
	calcDate := cfg.CalcDate
	if calcDate.IsZero() {
		for _, out := range outputs {
			if out.lastTradeDate.After(calcDate) {
				calcDate = out.lastTradeDate
			}
		}
	}

	// Ranking barrier: every strategy's statistics are in before any rank
	// is assigned.
	scores := make([]contracts.StrategyScore, 0, len(outputs))
	for _, out := range outputs {
		out.score.CalcDate = calcDate
		out.score.Stats.CalcDate = calcDate
		out.summary.CalcDate = calcDate
		scores = append(scores, out.score)
	}
	scoring.Rank(scores)

	result := &RunResult{
		RunID:      cfg.RunID,
		CalcDate:   calcDate,
		Strategies: len(outputs),
		Excluded:   excluded,
		Scores:     scores,
	}
	for _, s := range scores {
		if s.Scored() {
			result.Scored++
		}
		if s.Rank != nil {
			result.Ranked++
		}
	}
	for _, out := range outputs {
		result.DailyMetrics += len(out.metrics)
		result.BehaviorAlerts += len(out.behaviorAlerts)
		result.Alerts += len(out.alerts)
	}

	if !cfg.DryRun {
		if err := o.persist(ctx, outputs, scores); err != nil {
			return nil, fmt.Errorf("persist outputs: %w", err)
		}
	}

	result.Duration = time.Since(startTime)
	log.WithFields(map[string]interface{}{
		"strategies":      result.Strategies,
		"excluded":        len(result.Excluded),
		"ranked":          result.Ranked,
		"behavior_alerts": result.BehaviorAlerts,
		"alerts":          result.Alerts,
		"duration":        result.Duration.Seconds(),
	}).Info("Pipeline run completed")

	return result, nil
}

// processStrategy runs the sequential per-strategy scan:
// normalize -> returns -> drawdowns -> daily risk metrics -> score ->
// behavior -> threshold alerts.
func (o *Orchestrator) processStrategy(ctx context.Context, code string) (*strategyOutput, error) {
	raw, err := o.statements.GetEquitySeries(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load equity: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	series, err := timeseries.Normalize(raw)
	if err != nil {
		return nil, err
	}
	series = timeseries.ApplyReturns(series)
	series = timeseries.ApplyDrawdowns(series)

	positions, err := o.statements.GetPositions(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	trades, err := o.statements.GetTrades(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}

	out := &strategyOutput{
		code:          code,
		series:        series,
		lastTradeDate: series[len(series)-1].TradeDate,
	}

	for _, rec := range series {
		out.metrics = append(out.metrics, o.riskCalc.Calculate(rec, positions, trades))
	}

	out.score = o.scoreEngine.Evaluate(code, out.lastTradeDate, series)

	out.behaviorAlerts = o.detector.Detect(positions)
	out.summary = o.detector.Summarize(code, out.lastTradeDate, out.behaviorAlerts)

	if len(out.metrics) > 0 {
		latest := out.metrics[len(out.metrics)-1]
		out.alerts = o.alertGen.Evaluate(latest, &out.score)
	}

	return out, nil
}

// persist writes every derived output back through the boundary. All
// writes are upserts by natural key, so retrying a failed run is safe.
func (o *Orchestrator) persist(ctx context.Context, outputs []*strategyOutput, scores []contracts.StrategyScore) error {
	summaries := make([]contracts.BehaviorSummary, 0, len(outputs))

	for _, out := range outputs {
		if err := o.metricsRepo.SaveDerivedEquity(ctx, out.series); err != nil {
			return fmt.Errorf("save derived equity for %s: %w", out.code, err)
		}
		if err := o.metricsRepo.SaveDailyMetrics(ctx, out.metrics); err != nil {
			return fmt.Errorf("save daily metrics for %s: %w", out.code, err)
		}
		if err := o.behaviorRepo.SaveAlerts(ctx, out.behaviorAlerts); err != nil {
			return fmt.Errorf("save behavior alerts for %s: %w", out.code, err)
		}
		if err := o.alertRepo.SaveAlerts(ctx, out.alerts); err != nil {
			return fmt.Errorf("save alerts for %s: %w", out.code, err)
		}
		summaries = append(summaries, out.summary)
	}

	if err := o.behaviorRepo.SaveSummaries(ctx, summaries); err != nil {
		return fmt.Errorf("save behavior summaries: %w", err)
	}
	if err := o.scoreRepo.SaveScores(ctx, scores); err != nil {
		return fmt.Errorf("save scores: %w", err)
	}

	return nil
}
