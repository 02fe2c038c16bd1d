package stats

import (
	"sort"

	"github.com/verte-zerg/spacelane/internal/model"
)

// RankModes orders mode aggregates by decision accuracy, lowest first. Modes
// without decisions sort last.
func RankModes(aggs []model.ModeAggregate) []model.ModeAggregate {
	out := make([]model.ModeAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i], out[j]
		if (ai.Decisions == 0) != (aj.Decisions == 0) {
			return aj.Decisions == 0
		}
		if modeAccuracy(ai) == modeAccuracy(aj) {
			return ai.Mode < aj.Mode
		}
		return modeAccuracy(ai) < modeAccuracy(aj)
	})
	return out
}

// WeakestMode returns the mode with the lowest decision accuracy, or "" when
// nothing was decided.
func WeakestMode(aggs []model.ModeAggregate) string {
	ranked := RankModes(aggs)
	if len(ranked) == 0 || ranked[0].Decisions == 0 {
		return ""
	}
	return ranked[0].Mode
}

func modeAccuracy(agg model.ModeAggregate) float64 {
	if agg.Decisions == 0 {
		return 0
	}
	return float64(agg.Correct) / float64(agg.Decisions)
}

func modeLatency(agg model.ModeAggregate) float64 {
	if agg.Decisions == 0 {
		return 0
	}
	return agg.LatencySumMs / float64(agg.Decisions)
}
