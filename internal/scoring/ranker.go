package scoring

import (
	"sort"

	"github.com/jayliu/stratwatch/internal/contracts"
)

// Rank assigns cohort ranks in place: scored strategies get dense, unique
// integer ranks 1..N by total score descending, ties broken by strategy
// code ascending so reruns are deterministic. Unscored strategies keep a
// nil rank and stay in the slice.
//
// Ranking is the cohort barrier: it must only be called once every
// strategy of the calc date has been evaluated.
func Rank(scores []contracts.StrategyScore) {
	scored := make([]*contracts.StrategyScore, 0, len(scores))
	for i := range scores {
		scores[i].Rank = nil
		if scores[i].Scored() {
			scored = append(scored, &scores[i])
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if *scored[i].TotalScore != *scored[j].TotalScore {
			return *scored[i].TotalScore > *scored[j].TotalScore
		}
		return scored[i].StrategyCode < scored[j].StrategyCode
	})

	for i, s := range scored {
		rank := i + 1
		s.Rank = &rank
	}
}
