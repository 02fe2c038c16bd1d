package stats

import (
	"context"

	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	ModesAll         []model.ModeAggregate
	ModesWindow      []model.ModeAggregate
	BestScore        int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	modesAll, err := st.ListModeAggregates(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	modesWindow, err := st.ListModeAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	best, err := st.BestScore(ctx, cfg.Mode)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		ModesAll:         modesAll,
		ModesWindow:      modesWindow,
		BestScore:        best,
	}, nil
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
