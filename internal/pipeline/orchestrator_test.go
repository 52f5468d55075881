package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayliu/stratwatch/internal/alerting"
	"github.com/jayliu/stratwatch/internal/behavior"
	"github.com/jayliu/stratwatch/internal/contracts"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/internal/riskmetrics"
	"github.com/jayliu/stratwatch/internal/scoring"
	"github.com/jayliu/stratwatch/pkg/config"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// fakeStore implements every repository boundary in memory.
type fakeStore struct {
	mu sync.Mutex

	equity    map[string][]contracts.DailyEquityRecord
	positions map[string][]contracts.PositionSnapshot
	trades    map[string][]contracts.TradeRecord

	readErr error

	strategies     []string
	derivedEquity  map[string][]contracts.DailyEquityRecord
	dailyMetrics   []contracts.DailyRiskMetrics
	behaviorAlerts []contracts.BehaviorAlert
	summaries      []contracts.BehaviorSummary
	alerts         []contracts.Alert
	scores         []contracts.StrategyScore
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		equity:        map[string][]contracts.DailyEquityRecord{},
		positions:     map[string][]contracts.PositionSnapshot{},
		trades:        map[string][]contracts.TradeRecord{},
		derivedEquity: map[string][]contracts.DailyEquityRecord{},
	}
}

func (f *fakeStore) EnsureStrategies(ctx context.Context, codes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strategies = append([]string(nil), codes...)
	return nil
}

func (f *fakeStore) ListInputCodes(ctx context.Context) ([]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	codes := make([]string, 0, len(f.equity))
	for code := range f.equity {
		codes = append(codes, code)
	}
	return codes, nil
}

func (f *fakeStore) ListStrategies(ctx context.Context) ([]contracts.StrategyAccount, error) {
	return nil, nil
}

func (f *fakeStore) GetEquitySeries(ctx context.Context, code string) ([]contracts.DailyEquityRecord, error) {
	return f.equity[code], nil
}

func (f *fakeStore) GetPositions(ctx context.Context, code string) ([]contracts.PositionSnapshot, error) {
	return f.positions[code], nil
}

func (f *fakeStore) GetTrades(ctx context.Context, code string) ([]contracts.TradeRecord, error) {
	return f.trades[code], nil
}

func (f *fakeStore) SaveDailyMetrics(ctx context.Context, metrics []contracts.DailyRiskMetrics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dailyMetrics = append(f.dailyMetrics, metrics...)
	return nil
}

func (f *fakeStore) SaveDerivedEquity(ctx context.Context, records []contracts.DailyEquityRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range records {
		f.derivedEquity[rec.StrategyCode] = append(f.derivedEquity[rec.StrategyCode], rec)
	}
	return nil
}

func (f *fakeStore) GetLatestMetrics(ctx context.Context) ([]contracts.DailyRiskMetrics, error) {
	return f.dailyMetrics, nil
}

func (f *fakeStore) SaveScores(ctx context.Context, scores []contracts.StrategyScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scores = append([]contracts.StrategyScore(nil), scores...)
	return nil
}

func (f *fakeStore) GetScores(ctx context.Context, calcDate time.Time) ([]contracts.StrategyScore, error) {
	return f.scores, nil
}

func (f *fakeStore) GetLatestScores(ctx context.Context) ([]contracts.StrategyScore, error) {
	return f.scores, nil
}

func (f *fakeStore) SaveAlerts(ctx context.Context, alerts []contracts.BehaviorAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.behaviorAlerts = append(f.behaviorAlerts, alerts...)
	return nil
}

func (f *fakeStore) SaveSummaries(ctx context.Context, summaries []contracts.BehaviorSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append([]contracts.BehaviorSummary(nil), summaries...)
	return nil
}

func (f *fakeStore) GetSummary(ctx context.Context, code string) (*contracts.BehaviorSummary, error) {
	return nil, nil
}

func (f *fakeStore) GetLatestSummaries(ctx context.Context) ([]contracts.BehaviorSummary, error) {
	return f.summaries, nil
}

// fakeAlertStore separates the threshold-alert boundary, which shares a
// SaveAlerts method name with the behavior boundary.
type fakeAlertStore struct {
	mu     sync.Mutex
	alerts []contracts.Alert
}

func (f *fakeAlertStore) SaveAlerts(ctx context.Context, alerts []contracts.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alerts...)
	return nil
}

func (f *fakeAlertStore) GetAlerts(ctx context.Context, code string, from time.Time) ([]contracts.Alert, error) {
	return f.alerts, nil
}

func newTestOrchestrator(store *fakeStore, alertStore *fakeAlertStore, workers int) *Orchestrator {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	pol := policy.Default()

	return NewOrchestrator(
		store, store, store, store, alertStore,
		riskmetrics.NewCalculator(log),
		scoring.NewEngine(pol, log),
		behavior.NewDetector(pol, log),
		alerting.NewGenerator(pol, log),
		workers,
		log,
	)
}

func equitySeries(code string, equities ...float64) []contracts.DailyEquityRecord {
	out := make([]contracts.DailyEquityRecord, len(equities))
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i, eq := range equities {
		out[i] = contracts.DailyEquityRecord{
			StrategyCode: code,
			TradeDate:    base.AddDate(0, 0, i),
			Equity:       eq,
			IngestedAt:   base,
		}
	}
	return out
}

func TestRun_FullPipeline(t *testing.T) {
	store := newFakeStore()
	alertStore := &fakeAlertStore{}

	store.equity["CTA-01"] = equitySeries("CTA-01", 1_000_000, 1_010_000, 1_030_000)
	store.equity["CTA-02"] = equitySeries("CTA-02", 2_000_000, 1_950_000, 1_900_000)

	o := newTestOrchestrator(store, alertStore, 4)

	result, err := o.Run(context.Background(), RunConfig{RunID: "test-run"})
	require.NoError(t, err)

	assert.Equal(t, "test-run", result.RunID)
	assert.Equal(t, 2, result.Strategies)
	assert.Equal(t, 2, result.Scored)
	assert.Equal(t, 2, result.Ranked)
	assert.Empty(t, result.Excluded)

	// Cohort calc date is the latest trade date seen.
	assert.Equal(t, "2026-08-26", result.CalcDate.Format("2006-01-02"))

	// The winner made money, the loser lost it.
	require.Len(t, result.Scores, 2)
	byCode := map[string]contracts.StrategyScore{}
	for _, s := range result.Scores {
		byCode[s.StrategyCode] = s
	}
	assert.Equal(t, 1, *byCode["CTA-01"].Rank)
	assert.Equal(t, 2, *byCode["CTA-02"].Rank)

	// Persistence went through every boundary.
	assert.ElementsMatch(t, []string{"CTA-01", "CTA-02"}, store.strategies)
	assert.Len(t, store.dailyMetrics, 6)
	assert.Len(t, store.scores, 2)
	assert.Len(t, store.summaries, 2)
	assert.Len(t, store.derivedEquity["CTA-01"], 3)

	// Derived fields were filled before persisting.
	derived := store.derivedEquity["CTA-01"]
	assert.Nil(t, derived[0].DailyReturn)
	require.NotNil(t, derived[2].DailyReturn)
	require.NotNil(t, derived[2].MaxDrawdown)
}

func TestRun_DuplicateDateExcludesOneStrategy(t *testing.T) {
	store := newFakeStore()
	alertStore := &fakeAlertStore{}

	store.equity["CTA-GOOD"] = equitySeries("CTA-GOOD", 1_000_000, 1_010_000)

	bad := equitySeries("CTA-BAD", 1_000_000, 1_010_000)
	conflict := bad[1]
	conflict.Equity = 1_020_000
	conflict.IngestedAt = conflict.IngestedAt.Add(time.Hour)
	store.equity["CTA-BAD"] = append(bad, conflict)

	o := newTestOrchestrator(store, alertStore, 4)

	result, err := o.Run(context.Background(), RunConfig{})
	require.NoError(t, err, "one bad strategy never aborts the cohort")

	assert.Equal(t, 1, result.Strategies)
	require.Contains(t, result.Excluded, "CTA-BAD")
	assert.Contains(t, result.Excluded["CTA-BAD"], "duplicate equity records")

	require.Len(t, store.scores, 1)
	assert.Equal(t, "CTA-GOOD", store.scores[0].StrategyCode)
}

func TestRun_ReadErrorAbortsRun(t *testing.T) {
	store := newFakeStore()
	store.readErr = errors.New("connection refused")

	o := newTestOrchestrator(store, &fakeAlertStore{}, 4)

	_, err := o.Run(context.Background(), RunConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRun_NoDataFails(t *testing.T) {
	o := newTestOrchestrator(newFakeStore(), &fakeAlertStore{}, 4)

	_, err := o.Run(context.Background(), RunConfig{})
	require.Error(t, err)
}

func TestRun_DryRunPersistsNothing(t *testing.T) {
	store := newFakeStore()
	alertStore := &fakeAlertStore{}
	store.equity["CTA-01"] = equitySeries("CTA-01", 1_000_000, 1_010_000)

	o := newTestOrchestrator(store, alertStore, 4)

	result, err := o.Run(context.Background(), RunConfig{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Strategies)
	assert.Equal(t, 1, result.Scored)

	assert.Empty(t, store.strategies)
	assert.Empty(t, store.scores)
	assert.Empty(t, store.dailyMetrics)
	assert.Empty(t, store.summaries)
	assert.Empty(t, alertStore.alerts)
}

func TestRun_Deterministic(t *testing.T) {
	makeStore := func() *fakeStore {
		store := newFakeStore()
		store.equity["CTA-03"] = equitySeries("CTA-03", 1_000_000, 1_005_000, 1_010_000)
		store.equity["CTA-01"] = equitySeries("CTA-01", 1_000_000, 1_020_000, 1_040_000)
		store.equity["CTA-02"] = equitySeries("CTA-02", 1_000_000, 990_000, 995_000)
		return store
	}

	run := func(workers int) []contracts.StrategyScore {
		o := newTestOrchestrator(makeStore(), &fakeAlertStore{}, workers)
		result, err := o.Run(context.Background(), RunConfig{RunID: "fixed"})
		require.NoError(t, err)
		return result.Scores
	}

	single := run(1)
	parallel := run(8)

	// Worker count and completion order never change the output.
	require.Equal(t, single, parallel)

	for i := range single {
		require.NotNil(t, single[i].Rank)
	}
	assert.Equal(t, "CTA-01", single[0].StrategyCode)
}

func TestRun_ExplicitCalcDateWins(t *testing.T) {
	store := newFakeStore()
	store.equity["CTA-01"] = equitySeries("CTA-01", 1_000_000, 1_010_000)

	o := newTestOrchestrator(store, &fakeAlertStore{}, 1)

	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	result, err := o.Run(context.Background(), RunConfig{CalcDate: want})
	require.NoError(t, err)

	assert.Equal(t, want, result.CalcDate)
	for _, s := range result.Scores {
		assert.Equal(t, want, s.CalcDate)
	}
	for _, sum := range store.summaries {
		assert.Equal(t, want, sum.CalcDate)
	}
}
