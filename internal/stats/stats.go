// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/spacelane/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics are the derived numbers for one session.
type Metrics struct {
	HitRate      float64
	Accuracy     float64
	AvgLatencyMs float64
	ScorePerMin  float64
}

// SessionMetrics derives hit rate, decision accuracy, mean reaction time and
// score pace for a session.
func SessionMetrics(s model.SessionAggregate) Metrics {
	var m Metrics
	if s.Waves > 0 {
		m.HitRate = float64(s.Hits) / float64(s.Waves)
	}
	if s.Decisions > 0 {
		m.Accuracy = float64(s.CorrectChoices) / float64(s.Decisions)
		m.AvgLatencyMs = s.LatencySumMs / float64(s.Decisions)
	}
	if s.DurationMs > 0 {
		m.ScorePerMin = float64(s.FinalScore) / (float64(s.DurationMs) / 60000.0)
	}
	return m
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[clampInt(idx, 0, last)])
	}
	return b.String()
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var hitRate, acc, latency float64
	best := 0
	decided := 0
	for _, s := range sessions {
		m := SessionMetrics(s)
		hitRate += m.HitRate
		if s.Decisions > 0 {
			acc += m.Accuracy
			latency += m.AvgLatencyMs
			decided++
		}
		if s.PeakScore > best {
			best = s.PeakScore
		}
	}
	count := float64(len(sessions))
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Best Score: %d", best),
		fmt.Sprintf("Avg Hit Rate: %.2f%%", hitRate/count*100),
	}
	if decided > 0 {
		lines = append(lines,
			fmt.Sprintf("Avg Decision Accuracy: %.2f%%", acc/float64(decided)*100),
			fmt.Sprintf("Avg Reaction Time: %.0f ms", latency/float64(decided)),
		)
	}
	lines = append(lines, "Score Trend: "+Sparkline(seriesOf(sessions, func(s model.SessionAggregate) float64 {
		return float64(s.FinalScore)
	})))
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints learning curves for score, accuracy and reaction time.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints learning curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	scores := seriesOf(sessions, func(s model.SessionAggregate) float64 { return float64(s.FinalScore) })
	accs := seriesOf(sessions, func(s model.SessionAggregate) float64 { return SessionMetrics(s).Accuracy * 100 })
	lats := seriesOf(sessions, func(s model.SessionAggregate) float64 { return SessionMetrics(s).AvgLatencyMs })

	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Score", Values: MovingAverage(scores, window)},
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Reaction", Values: MovingAverage(lats, window)},
	}, width, height, useColor)
}

// RenderModeTable prints per-mode decision aggregates, weakest first.
func RenderModeTable(w io.Writer, aggs []model.ModeAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No decisions recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Mode (Windowed)"); err != nil {
		return err
	}
	headers, rows := ModeTableRows(aggs)
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ModeTableRows returns the headers and rows of the per-mode table.
func ModeTableRows(aggs []model.ModeAggregate) ([]string, [][]string) {
	headers := []string{"Mode", "Sessions", "Decisions", "Accuracy", "Avg Reaction (ms)"}
	ranked := RankModes(aggs)
	rows := make([][]string, 0, len(ranked))
	for _, agg := range ranked {
		rows = append(rows, []string{
			agg.Mode,
			fmt.Sprintf("%d", agg.Sessions),
			fmt.Sprintf("%d", agg.Decisions),
			fmt.Sprintf("%.2f%%", modeAccuracy(agg)*100),
			fmt.Sprintf("%.1f", modeLatency(agg)),
		})
	}
	return headers, rows
}

func seriesOf(sessions []model.SessionAggregate, fn func(model.SessionAggregate) float64) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = fn(s)
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
