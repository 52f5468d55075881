package commands

import (
	"fmt"

	"github.com/jayliu/stratwatch/internal/alerting"
	"github.com/jayliu/stratwatch/internal/behavior"
	"github.com/jayliu/stratwatch/internal/pipeline"
	"github.com/jayliu/stratwatch/internal/policy"
	"github.com/jayliu/stratwatch/internal/riskmetrics"
	"github.com/jayliu/stratwatch/internal/scoring"
	"github.com/jayliu/stratwatch/internal/snapshot"
	"github.com/jayliu/stratwatch/internal/statements"
	"github.com/jayliu/stratwatch/pkg/config"
	"github.com/jayliu/stratwatch/pkg/database"
	"github.com/jayliu/stratwatch/pkg/logger"
	"github.com/jayliu/stratwatch/pkg/redis"
)

// app holds the wired dependencies shared by subcommands.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	policy *policy.Policy

	policyHash string

	statementRepo *statements.Repository
	metricsRepo   *riskmetrics.Repository
	scoreRepo     *scoring.Repository
	behaviorRepo  *behavior.Repository
	alertRepo     *alerting.Repository

	orchestrator *pipeline.Orchestrator
	snapshot     *snapshot.Builder
}

// initApp loads config, connects to infrastructure and wires the
// pipeline. Callers must Close() when done.
func initApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Flag overrides env
	if policyFile != "" {
		cfg.Pipeline.PolicyFile = policyFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load threshold policy
	pol, err := policy.LoadOrDefault(cfg.Pipeline.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	hash, err := policy.Hash(pol)
	if err != nil {
		return nil, fmt.Errorf("hash policy: %w", err)
	}

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// 5. Connect to redis (no-op client when disabled)
	rdb, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 6. Create repositories
	statementRepo := statements.NewRepository(db.Pool)
	metricsRepo := riskmetrics.NewRepository(db.Pool)
	scoreRepo := scoring.NewRepository(db.Pool)
	behaviorRepo := behavior.NewRepository(db.Pool)
	alertRepo := alerting.NewRepository(db.Pool)

	// 7. Create calculators
	riskCalc := riskmetrics.NewCalculator(log)
	scoreEngine := scoring.NewEngine(pol, log)
	detector := behavior.NewDetector(pol, log)
	alertGen := alerting.NewGenerator(pol, log)

	// 8. Create orchestrator
	orchestrator := pipeline.NewOrchestrator(
		statementRepo,
		metricsRepo,
		scoreRepo,
		behaviorRepo,
		alertRepo,
		riskCalc,
		scoreEngine,
		detector,
		alertGen,
		cfg.Pipeline.Workers,
		log,
	)

	// 9. Create snapshot builder
	cache := redis.NewCache(rdb, "stratwatch")
	builder := snapshot.NewBuilder(statementRepo, metricsRepo, scoreRepo, behaviorRepo, cache, log)

	return &app{
		cfg:           cfg,
		log:           log,
		db:            db,
		redis:         rdb,
		policy:        pol,
		policyHash:    hash,
		statementRepo: statementRepo,
		metricsRepo:   metricsRepo,
		scoreRepo:     scoreRepo,
		behaviorRepo:  behaviorRepo,
		alertRepo:     alertRepo,
		orchestrator:  orchestrator,
		snapshot:      builder,
	}, nil
}

// Close releases infrastructure connections.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
