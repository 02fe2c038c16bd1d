package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/spacelane/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "spacelane.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insertSession(t *testing.T, st *Store, mode string, offset time.Duration, peak int, decisions []model.Decision) int64 {
	t.Helper()
	start := time.Unix(0, 0).Add(offset)
	end := start.Add(45 * time.Second)
	id, err := st.InsertSession(context.Background(), model.SessionStats{
		StartedAt:  start,
		EndedAt:    end,
		Mode:       mode,
		Hazards:    true,
		PeriodMs:   2000,
		Waves:      12,
		Hits:       8,
		HazardHits: 1,
		Escapes:    3,
		FinalScore: peak - 1,
		PeakScore:  peak,
		DurationMs: end.Sub(start).Milliseconds(),
	}, decisions)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	return id
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	decisions := []model.Decision{
		{Correct: 1, Displayed: 1, Chosen: 1, LatencyMs: 400},
		{Correct: 0, Displayed: 1, Chosen: 1, LatencyMs: 600},
	}
	first := insertSession(t, st, "two", 0, 9, decisions)
	second := insertSession(t, st, "scan", time.Minute, 4, nil)

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != first || sessions[1].SessionID != second {
		t.Fatalf("unexpected order: %+v", sessions)
	}
	got := sessions[0]
	if got.Decisions != 2 || got.CorrectChoices != 1 || got.LatencySumMs != 1000 {
		t.Fatalf("unexpected decision aggregates: %+v", got)
	}
	if got.Mode != "two" || got.PeakScore != 9 || got.Hits != 8 {
		t.Fatalf("unexpected session fields: %+v", got)
	}
	if sessions[1].Decisions != 0 {
		t.Fatalf("expected no decisions for second session")
	}

	filtered, err := st.ListSessions(context.Background(), model.StatsConfig{Mode: "scan"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].SessionID != second {
		t.Fatalf("expected only scan session, got %+v", filtered)
	}
}

func TestModeAggregatesAndBestScore(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	a := insertSession(t, st, "two", 0, 5, []model.Decision{{Correct: 0, Chosen: 0, LatencyMs: 300}})
	b := insertSession(t, st, "two", time.Minute, 11, []model.Decision{{Correct: 1, Chosen: 0, LatencyMs: 500}})
	c := insertSession(t, st, "auto", 2*time.Minute, 20, []model.Decision{{Correct: 1, Chosen: 1, LatencyMs: 1000}})

	aggs, err := st.ListModeAggregates(ctx, []int64{a, b, c})
	if err != nil {
		t.Fatalf("mode aggregates: %v", err)
	}
	if len(aggs) != 2 {
		t.Fatalf("expected 2 modes, got %+v", aggs)
	}
	if aggs[0].Mode != "auto" || aggs[1].Mode != "two" {
		t.Fatalf("unexpected mode order: %+v", aggs)
	}
	if aggs[1].Sessions != 2 || aggs[1].Decisions != 2 || aggs[1].Correct != 1 || aggs[1].LatencySumMs != 800 {
		t.Fatalf("unexpected two-mode aggregate: %+v", aggs[1])
	}

	best, err := st.BestScore(ctx, "two")
	if err != nil {
		t.Fatalf("best score: %v", err)
	}
	if best != 11 {
		t.Fatalf("expected best 11, got %d", best)
	}
	best, err = st.BestScore(ctx, "")
	if err != nil || best != 20 {
		t.Fatalf("expected overall best 20, got %d (%v)", best, err)
	}
	best, err = st.BestScore(ctx, "scan")
	if err != nil || best != 0 {
		t.Fatalf("expected 0 for unplayed mode, got %d (%v)", best, err)
	}
}
