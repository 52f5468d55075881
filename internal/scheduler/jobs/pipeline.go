package jobs

import (
	"context"
	"fmt"

	"github.com/jayliu/stratwatch/internal/pipeline"
	"github.com/jayliu/stratwatch/internal/snapshot"
	"github.com/jayliu/stratwatch/pkg/logger"
)

// PipelineJob runs the daily statement analytics batch after the
// exchange close and refreshes the dashboard snapshot.
type PipelineJob struct {
	orchestrator *pipeline.Orchestrator
	snapshot     *snapshot.Builder
	schedule     string
	policyHash   string
	logger       *logger.Logger
}

// NewPipelineJob creates the daily pipeline job.
func NewPipelineJob(
	orchestrator *pipeline.Orchestrator,
	snap *snapshot.Builder,
	schedule string,
	policyHash string,
	log *logger.Logger,
) *PipelineJob {
	return &PipelineJob{
		orchestrator: orchestrator,
		snapshot:     snap,
		schedule:     schedule,
		policyHash:   policyHash,
		logger:       log.WithComponent("pipeline-job"),
	}
}

// Name returns the job name.
func (j *PipelineJob) Name() string {
	return "daily-pipeline"
}

// Schedule returns the cron expression with seconds.
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes the full pipeline and invalidates the cached snapshot
// so the next dashboard read rebuilds from fresh rows.
func (j *PipelineJob) Run(ctx context.Context) error {
	result, err := j.orchestrator.Run(ctx, pipeline.RunConfig{
		PolicyHash: j.policyHash,
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	j.snapshot.Invalidate(ctx)

	j.logger.WithFields(map[string]interface{}{
		"run_id":     result.RunID,
		"calc_date":  result.CalcDate.Format("2006-01-02"),
		"strategies": result.Strategies,
		"scored":     result.Scored,
		"excluded":   len(result.Excluded),
		"duration":   result.Duration,
	}).Info("Daily pipeline finished")

	return nil
}
