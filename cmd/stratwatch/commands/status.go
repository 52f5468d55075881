package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show latest pipeline results",
	Long: `Show the latest persisted scores, ranks and behavior summaries.

Example:
  go run ./cmd/stratwatch status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Println("=== Stratwatch Status ===")
	health, err := a.db.HealthCheck(ctx)
	if err != nil {
		fmt.Printf("Database: unreachable (%s)\n", health.Error)
		return err
	}
	fmt.Printf("Database: healthy (%d/%d conns, ping %s)\n\n",
		health.TotalConns, health.MaxConns, health.ResponseTime.Round(time.Millisecond))

	scores, err := a.scoreRepo.GetLatestScores(ctx)
	if err != nil {
		return fmt.Errorf("get latest scores: %w", err)
	}

	if len(scores) == 0 {
		fmt.Println("No scores persisted yet. Run the pipeline first:")
		fmt.Println("  go run ./cmd/stratwatch pipeline run")
		return nil
	}

	summaries, err := a.behaviorRepo.GetLatestSummaries(ctx)
	if err != nil {
		return fmt.Errorf("get latest summaries: %w", err)
	}
	behaviorByCode := make(map[string]float64, len(summaries))
	for _, s := range summaries {
		behaviorByCode[s.StrategyCode] = s.BehaviorRiskScore
	}

	sort.Slice(scores, func(i, j int) bool {
		ri, rj := scores[i].Rank, scores[j].Rank
		if ri == nil {
			return false
		}
		if rj == nil {
			return true
		}
		return *ri < *rj
	})

	fmt.Printf("Scores (calc date %s):\n\n", scores[0].CalcDate.Format("2006-01-02"))
	fmt.Printf("%-5s %-14s %8s %8s %8s %10s\n", "Rank", "Strategy", "Total", "Perf", "Risk", "Behavior")

	for _, s := range scores {
		rank := "--"
		if s.Rank != nil {
			rank = fmt.Sprintf("#%d", *s.Rank)
		}
		if !s.Scored() {
			fmt.Printf("%-5s %-14s %8s %8s %8s %10.1f\n", rank, s.StrategyCode, "--", "--", "--", behaviorByCode[s.StrategyCode])
			continue
		}
		fmt.Printf("%-5s %-14s %8.2f %8.2f %8.2f %10.1f\n",
			rank, s.StrategyCode,
			deref(s.TotalScore), deref(s.PerformanceScore), deref(s.RiskScore),
			behaviorByCode[s.StrategyCode])
	}

	return nil
}
