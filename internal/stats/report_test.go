package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/store"
)

func TestBuildReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "spacelane.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	modes := []string{"auto", "two", "two"}
	var ids []int64
	for i, mode := range modes {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		stats := model.SessionStats{
			StartedAt:  start,
			EndedAt:    end,
			Mode:       mode,
			PeriodMs:   2000,
			Waves:      10,
			Hits:       6,
			FinalScore: 5 + i,
			PeakScore:  6 + i,
			DurationMs: end.Sub(start).Milliseconds(),
		}
		decisions := []model.Decision{
			{Correct: 0, Displayed: 0, Chosen: 0, LatencyMs: 250},
			{Correct: 1, Displayed: 0, Chosen: 0, LatencyMs: 350},
		}
		id, err := st.InsertSession(ctx, stats, decisions)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if len(report.WindowSessionIDs) != 1 || report.WindowSessionIDs[0] != ids[2] {
		t.Fatalf("unexpected window ids: %v", report.WindowSessionIDs)
	}
	if len(report.ModesAll) != 1 || report.ModesAll[0].Mode != "two" || report.ModesAll[0].Decisions != 4 {
		t.Fatalf("unexpected mode aggregates: %+v", report.ModesAll)
	}
	if len(report.ModesWindow) != 1 || report.ModesWindow[0].Sessions != 1 {
		t.Fatalf("unexpected window mode aggregates: %+v", report.ModesWindow)
	}
	if report.BestScore != 8 {
		t.Fatalf("expected best score 8, got %d", report.BestScore)
	}
}

func TestSessionMetrics(t *testing.T) {
	m := SessionMetrics(model.SessionAggregate{
		Waves:          10,
		Hits:           4,
		Decisions:      5,
		CorrectChoices: 4,
		LatencySumMs:   2000,
		FinalScore:     3,
		DurationMs:     30000,
	})
	if m.HitRate != 0.4 || m.Accuracy != 0.8 || m.AvgLatencyMs != 400 || m.ScorePerMin != 6 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
	if zero := SessionMetrics(model.SessionAggregate{}); zero != (Metrics{}) {
		t.Fatalf("expected zero metrics, got %+v", zero)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions found.") {
		t.Fatalf("expected empty message, got %q", buf.String())
	}
	buf.Reset()
	sessions := []model.SessionAggregate{
		{Waves: 10, Hits: 5, PeakScore: 7, Decisions: 2, CorrectChoices: 1, LatencySumMs: 800},
		{Waves: 10, Hits: 10, PeakScore: 12},
	}
	if err := RenderSummary(&buf, sessions); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Best Score: 12", "Avg Hit Rate: 75.00%", "Avg Decision Accuracy: 50.00%", "Avg Reaction Time: 400 ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
}

func TestRankModes(t *testing.T) {
	aggs := []model.ModeAggregate{
		{Mode: "two", Decisions: 10, Correct: 9},
		{Mode: "auto", Decisions: 0},
		{Mode: "scan", Decisions: 10, Correct: 6},
	}
	ranked := RankModes(aggs)
	if ranked[0].Mode != "scan" || ranked[1].Mode != "two" || ranked[2].Mode != "auto" {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
	if got := WeakestMode(aggs); got != "scan" {
		t.Fatalf("expected scan as weakest, got %q", got)
	}
	if got := WeakestMode([]model.ModeAggregate{{Mode: "auto"}}); got != "" {
		t.Fatalf("expected no weakest mode, got %q", got)
	}

	var buf bytes.Buffer
	if err := RenderModeTable(&buf, aggs); err != nil {
		t.Fatalf("render mode table: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[2], "scan") {
		t.Fatalf("expected weakest mode first, got %q", lines[2])
	}
}
