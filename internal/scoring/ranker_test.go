package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayliu/stratwatch/internal/contracts"
)

func scoredStrategy(code string, total float64) contracts.StrategyScore {
	return contracts.StrategyScore{
		StrategyCode: code,
		CalcDate:     calcDate,
		TotalScore:   contracts.Float64(total),
	}
}

func TestRank_DenseUniqueRanks(t *testing.T) {
	scores := []contracts.StrategyScore{
		scoredStrategy("CTA-03", 55.0),
		scoredStrategy("CTA-01", 71.0),
		scoredStrategy("CTA-02", 63.5),
	}

	Rank(scores)

	byCode := make(map[string]*int)
	for i := range scores {
		byCode[scores[i].StrategyCode] = scores[i].Rank
	}

	require.NotNil(t, byCode["CTA-01"])
	assert.Equal(t, 1, *byCode["CTA-01"])
	assert.Equal(t, 2, *byCode["CTA-02"])
	assert.Equal(t, 3, *byCode["CTA-03"])
}

func TestRank_TiesBrokenByCode(t *testing.T) {
	scores := []contracts.StrategyScore{
		scoredStrategy("CTA-09", 60.0),
		scoredStrategy("CTA-02", 60.0),
		scoredStrategy("CTA-05", 60.0),
	}

	Rank(scores)

	// Equal totals still get unique ranks, ordered by code for
	// deterministic reruns.
	got := map[string]int{}
	for i := range scores {
		require.NotNil(t, scores[i].Rank)
		got[scores[i].StrategyCode] = *scores[i].Rank
	}
	assert.Equal(t, map[string]int{"CTA-02": 1, "CTA-05": 2, "CTA-09": 3}, got)
}

func TestRank_UnscoredKeepNilRank(t *testing.T) {
	scores := []contracts.StrategyScore{
		scoredStrategy("CTA-01", 71.0),
		{StrategyCode: "CTA-NEW", CalcDate: calcDate}, // too little history
		scoredStrategy("CTA-02", 40.0),
	}

	Rank(scores)

	assert.NotNil(t, scores[0].Rank)
	assert.Nil(t, scores[1].Rank)
	assert.NotNil(t, scores[2].Rank)

	// Ranks stay dense over the scored subset.
	assert.Equal(t, 1, *scores[0].Rank)
	assert.Equal(t, 2, *scores[2].Rank)
}

func TestRank_ReRankClearsStaleRanks(t *testing.T) {
	stale := 7
	scores := []contracts.StrategyScore{
		scoredStrategy("CTA-01", 50.0),
	}
	scores[0].Rank = &stale

	Rank(scores)

	require.NotNil(t, scores[0].Rank)
	assert.Equal(t, 1, *scores[0].Rank)
}

func TestRank_Empty(t *testing.T) {
	assert.NotPanics(t, func() { Rank(nil) })
}
