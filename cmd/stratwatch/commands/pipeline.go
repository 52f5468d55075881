package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jayliu/stratwatch/internal/pipeline"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the statement analytics pipeline",
	Long: `Run the daily analytics batch over all strategies.

The pipeline:
- normalizes equity series and derives returns/drawdowns
- computes daily risk metrics from positions
- scores and ranks every strategy against the active policy
- detects behavior anomalies from position transitions
- evaluates threshold alerts

Subcommands:
  run     - execute a full pipeline run

Example:
  go run ./cmd/stratwatch pipeline run
  go run ./cmd/stratwatch pipeline run --dry-run
  go run ./cmd/stratwatch pipeline run --date 2026-08-28`,
}

var (
	pipelineDryRun bool
	pipelineDate   string

	pipelineRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Execute a full pipeline run",
		RunE:  runPipeline,
	}
)

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)

	pipelineRunCmd.Flags().BoolVar(&pipelineDryRun, "dry-run", false, "compute everything, persist nothing")
	pipelineRunCmd.Flags().StringVar(&pipelineDate, "date", "", "calculation date (YYYY-MM-DD, default latest trade date)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Stratwatch Pipeline ===")

	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	runCfg := pipeline.RunConfig{
		PolicyHash: a.policyHash,
		DryRun:     pipelineDryRun,
	}

	if pipelineDate != "" {
		calcDate, err := time.Parse("2006-01-02", pipelineDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", pipelineDate, err)
		}
		runCfg.CalcDate = calcDate
	}

	ctx := context.Background()

	result, err := a.orchestrator.Run(ctx, runCfg)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	if !pipelineDryRun {
		a.snapshot.Invalidate(ctx)
	}

	fmt.Printf("\n✅ Run %s completed in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("   Calc date:       %s\n", result.CalcDate.Format("2006-01-02"))
	fmt.Printf("   Strategies:      %d\n", result.Strategies)
	fmt.Printf("   Scored:          %d (ranked %d)\n", result.Scored, result.Ranked)
	fmt.Printf("   Daily metrics:   %d\n", result.DailyMetrics)
	fmt.Printf("   Behavior alerts: %d\n", result.BehaviorAlerts)
	fmt.Printf("   Alerts:          %d\n", result.Alerts)

	if len(result.Excluded) > 0 {
		fmt.Println("\n⚠️  Excluded strategies:")
		for code, reason := range result.Excluded {
			fmt.Printf("   - %s: %s\n", code, reason)
		}
	}

	if len(result.Scores) > 0 {
		fmt.Println("\nRanking:")
		for _, s := range result.Scores {
			if !s.Scored() {
				fmt.Printf("   --  %-12s (insufficient history)\n", s.StrategyCode)
				continue
			}
			fmt.Printf("   #%-2d %-12s total=%.2f perf=%.2f risk=%.2f\n",
				*s.Rank, s.StrategyCode,
				deref(s.TotalScore), deref(s.PerformanceScore), deref(s.RiskScore))
		}
	}

	if pipelineDryRun {
		fmt.Println("\n(dry run: nothing persisted)")
	}

	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
