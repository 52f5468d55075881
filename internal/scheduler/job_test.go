package scheduler

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(name string, success bool) JobResult {
	now := time.Now()
	return JobResult{
		JobName:   name,
		StartTime: now,
		EndTime:   now.Add(time.Second),
		Duration:  time.Second,
		Success:   success,
	}
}

func TestJobHistory_AddResultKeepsLast100(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < 150; i++ {
		h.AddResult(result(fmt.Sprintf("run-%d", i), true))
	}

	require.Len(t, h.Results, 100)
	assert.Equal(t, "run-50", h.Results[0].JobName)
	assert.Equal(t, "run-149", h.Results[99].JobName)
}

func TestJobHistory_GetLatestResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 5; i++ {
		h.AddResult(result(fmt.Sprintf("run-%d", i), true))
	}

	latest := h.GetLatestResults(3)
	require.Len(t, latest, 3)
	assert.Equal(t, "run-2", latest[0].JobName)
	assert.Equal(t, "run-4", latest[2].JobName)

	assert.Len(t, h.GetLatestResults(10), 5)
	assert.Empty(t, (&JobHistory{}).GetLatestResults(3))
}

func TestJobHistory_SuccessRate(t *testing.T) {
	h := &JobHistory{}
	assert.Equal(t, 0.0, h.GetSuccessRate())

	h.AddResult(result("a", true))
	h.AddResult(result("b", false))
	h.AddResult(result("c", true))
	h.AddResult(result("d", true))

	assert.InDelta(t, 0.75, h.GetSuccessRate(), 1e-12)
	assert.Len(t, h.GetFailedResults(), 1)
	assert.Equal(t, "b", h.GetFailedResults()[0].JobName)
}
