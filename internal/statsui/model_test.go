package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "spacelane.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func filterInputs(values ...string) []textinput.Model {
	inputs := make([]textinput.Model, len(values))
	for i, v := range values {
		inputs[i] = textinput.New()
		inputs[i].SetValue(v)
	}
	return inputs
}

func TestParseFilter(t *testing.T) {
	cfg, err := parseFilter(filterInputs("scan", "2026-01-02", "5", "3"))
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if cfg.Mode != "scan" || cfg.Last != 5 || cfg.CurveWindow != 3 || cfg.Since == nil {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := parseFilter(filterInputs("joystick", "", "", "")); err == nil {
		t.Fatalf("expected invalid mode error")
	}
	if _, err := parseFilter(filterInputs("", "yesterday", "", "")); err == nil {
		t.Fatalf("expected invalid date error")
	}
	if _, err := parseFilter(filterInputs("", "", "", "0")); err == nil {
		t.Fatalf("expected invalid window error")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	if got := nextCurveWindow(1); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := nextCurveWindow(7); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := prevCurveWindow(10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	if got := prevCurveWindow(5); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestViewShowsSessions(t *testing.T) {
	st := openStore(t)
	end := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	_, err := st.InsertSession(context.Background(), model.SessionStats{
		StartedAt:  end.Add(-time.Minute),
		EndedAt:    end,
		Mode:       "two",
		Waves:      8,
		Hits:       5,
		FinalScore: 4,
		PeakScore:  6,
		DurationMs: 60000,
	}, []model.Decision{{Correct: 1, Displayed: 1, Chosen: 1, LatencyMs: 420}})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	m := NewModel(st, model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	if !strings.Contains(view, "Best Score") || !strings.Contains(view, "mode=any") {
		t.Fatalf("expected overview cards and filter summary:\n%s", view)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabModes {
		t.Fatalf("expected modes tab, got %d", m.activeTab)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "two") {
		t.Fatalf("expected history row for the session:\n%s", m.View())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	if !m.filterMode {
		t.Fatalf("expected filter mode after /")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to leave filter mode")
	}
}

func TestHistoryEmpty(t *testing.T) {
	if got := renderHistory(nil); got != "No sessions found." {
		t.Fatalf("unexpected empty history %q", got)
	}
}
