// Package snapshot builds the read-only dashboard projection: one
// document aggregating the latest scores, risk metrics, equity series,
// open positions and behavior summaries.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/pkg/logger"
	"github.com/jayliu/stratwatch/pkg/redis"
)

// Document is the consumer-facing snapshot. It is a projection of the
// pipeline's outputs, never written back.
type Document struct {
	GeneratedAt time.Time `json:"generated_at"`

	Scores    []contracts.StrategyScore              `json:"scores"`
	Risk      []contracts.DailyRiskMetrics           `json:"risk"`
	Equity    map[string][]EquityPoint               `json:"equity"`
	Positions map[string][]contracts.PositionSnapshot `json:"positions"`
	Behavior  []contracts.BehaviorSummary            `json:"behavior"`
}

// EquityPoint is one equity-curve sample for charting.
type EquityPoint struct {
	TradeDate        time.Time `json:"trade_date"`
	Equity           float64   `json:"equity"`
	CumulativeReturn *float64  `json:"cumulative_return"`
	Drawdown         *float64  `json:"drawdown"`
	MarginUsed       float64   `json:"margin_used"`
	FloatingPnL      float64   `json:"floating_pnl"`
}

// Builder assembles and caches the dashboard document.
type Builder struct {
	statements   contracts.StatementRepository
	metricsRepo  contracts.MetricsRepository
	scoreRepo    contracts.ScoreRepository
	behaviorRepo contracts.BehaviorRepository

	cache *redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewBuilder creates a new snapshot builder.
func NewBuilder(
	statements contracts.StatementRepository,
	metricsRepo contracts.MetricsRepository,
	scoreRepo contracts.ScoreRepository,
	behaviorRepo contracts.BehaviorRepository,
	cache *redis.Cache,
	log *logger.Logger,
) *Builder {
	return &Builder{
		statements:   statements,
		metricsRepo:  metricsRepo,
		scoreRepo:    scoreRepo,
		behaviorRepo: behaviorRepo,
		cache:        cache,
		ttl:          redis.TTLShort,
		log:          log.WithComponent("snapshot"),
	}
}

// Get returns the cached document when fresh, rebuilding it otherwise.
func (b *Builder) Get(ctx context.Context) (*Document, error) {
	if b.cache != nil {
		var doc Document
		found, err := b.cache.Get(ctx, redis.DashboardKey(), &doc)
		if err != nil {
			b.log.WithError(err).Warn("Snapshot cache read failed")
		}
		if found {
			return &doc, nil
		}
	}

	doc, err := b.Build(ctx)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, redis.DashboardKey(), doc, b.ttl); err != nil {
			b.log.WithError(err).Warn("Snapshot cache write failed")
		}
	}

	return doc, nil
}

// Invalidate drops the cached document, typically right after a pipeline
// run so the dashboard picks up fresh numbers.
func (b *Builder) Invalidate(ctx context.Context) {
	if b.cache == nil {
		return
	}
	if err := b.cache.Delete(ctx, redis.DashboardKey()); err != nil {
		b.log.WithError(err).Warn("Snapshot cache invalidation failed")
	}
}

// Build assembles the document from the persisted outputs.
func (b *Builder) Build(ctx context.Context) (*Document, error) {
	doc := &Document{
		GeneratedAt: time.Now().UTC(),
		Equity:      map[string][]EquityPoint{},
		Positions:   map[string][]contracts.PositionSnapshot{},
	}

	scores, err := b.scoreRepo.GetLatestScores(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	doc.Scores = scores

	risk, err := b.metricsRepo.GetLatestMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("load risk metrics: %w", err)
	}
	doc.Risk = risk

	behavior, err := b.behaviorRepo.GetLatestSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load behavior summaries: %w", err)
	}
	doc.Behavior = behavior

	strategies, err := b.statements.ListStrategies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load strategies: %w", err)
	}

	for _, s := range strategies {
		series, err := b.statements.GetEquitySeries(ctx, s.Code)
		if err != nil {
			return nil, fmt.Errorf("load equity for %s: %w", s.Code, err)
		}
		for _, rec := range series {
			doc.Equity[s.Code] = append(doc.Equity[s.Code], EquityPoint{
				TradeDate:        rec.TradeDate,
				Equity:           rec.Equity,
				CumulativeReturn: rec.CumulativeReturn,
				Drawdown:         rec.Drawdown,
				MarginUsed:       rec.MarginUsed,
				FloatingPnL:      rec.FloatingPnL,
			})
		}

		positions, err := b.statements.GetPositions(ctx, s.Code)
		if err != nil {
			return nil, fmt.Errorf("load positions for %s: %w", s.Code, err)
		}
		doc.Positions[s.Code] = latestPositions(positions)
	}

	return doc, nil
}

// latestPositions keeps only the most recent day's snapshot rows.
func latestPositions(positions []contracts.PositionSnapshot) []contracts.PositionSnapshot {
	var latest time.Time
	for _, p := range positions {
		if p.TradeDate.After(latest) {
			latest = p.TradeDate
		}
	}

	var out []contracts.PositionSnapshot
	for _, p := range positions {
		if p.TradeDate.Equal(latest) {
			out = append(out, p)
		}
	}
	return out
}
