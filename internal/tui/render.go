package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/spacelane/internal/generator"
	"github.com/verte-zerg/spacelane/internal/model"
	"github.com/verte-zerg/spacelane/internal/wave"
)

const (
	chromeRows   = 6 // header, field borders, lane bar, hint and footer
	minFieldCols = 16
	minFieldRows = 6
	animTicks    = 6
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
	shipStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hazardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	defenderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3AA0C8")).Bold(true)
	laneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Padding(0, 1)
	laneOnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#101010")).Background(lipgloss.Color("#C89A3A")).Bold(true).Padding(0, 1)
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
)

var flashBorders = map[string]lipgloss.Color{
	"":               "#F0F0F0",
	wave.FlashHazard: "#FF4D4F",
}

const idleBorder = lipgloss.Color("#4A4A4A")

var animations = map[string][]string{
	generator.HazardAnimation:   {"✶", "✷", "✸", "✹"},
	generator.DefenderAnimation: {"▲", "△"},
}

var shipFrames = [][]string{
	{"◆", "◇"}, {"●", "○"}, {"■", "□"}, {"▼", "▽"}, {"♠", "♤"},
	{"♣", "♧"}, {"♥", "♡"}, {"♦", "♢"}, {"★", "☆"}, {"◉", "◎"},
}

func init() {
	for i, frames := range shipFrames {
		animations[generator.ShipAnimation(i)] = frames
	}
}

func animFrame(name string, frame int) string {
	frames := animations[name]
	if len(frames) == 0 {
		return "?"
	}
	return frames[(frame/animTicks)%len(frames)]
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	cols := maxInt(minFieldCols, m.width-2)
	rows := maxInt(minFieldRows, m.height-chromeRows)
	return strings.Join([]string{
		m.renderHeader(),
		m.renderField(cols, rows),
		m.renderLanes(cols + 2),
		m.help.View(keys),
	}, "\n")
}

func (m *Model) renderHeader() string {
	status := fmt.Sprintf("SPACELANE  score %s  best %d  mode %s  wave %d", m.scoreText, m.bestScore, m.cfg.Mode, m.ctrl.Waves())
	out := headerStyle.Render(status)
	if m.paused {
		out += "  " + pausedStyle.Render("PAUSED")
	}
	return out
}

type glyph struct {
	text  string
	style lipgloss.Style
}

func (m *Model) renderField(cols, rows int) string {
	grid := make([][]*glyph, rows)
	for r := range grid {
		grid[r] = make([]*glyph, cols)
	}
	put := func(x, y float64, g glyph) {
		col, row, ok := m.toCell(x, y, cols, rows)
		if !ok {
			return
		}
		grid[row][col] = &g
		if runewidth.StringWidth(g.text) == 2 && col+1 < cols {
			grid[row][col+1] = &glyph{}
		}
	}
	for _, s := range m.stars {
		put(s.x, s.y, glyph{text: "·", style: starStyle})
	}
	if m.defenderVisible {
		put(m.defenderX, m.defenderY, glyph{text: animFrame(m.defenderAnim, m.frame), style: defenderStyle})
	}
	if m.targetVisible {
		style := shipStyle
		if m.targetAnim == generator.HazardAnimation {
			style = hazardStyle
		}
		put(m.targetX, m.targetY, glyph{text: animFrame(m.targetAnim, m.frame), style: style})
	}

	lines := make([]string, rows)
	for r, row := range grid {
		var b strings.Builder
		for _, g := range row {
			switch {
			case g == nil:
				b.WriteByte(' ')
			case g.text == "":
				// right half of a wide glyph
			default:
				b.WriteString(g.style.Render(g.text))
			}
		}
		lines[r] = b.String()
	}

	border := idleBorder
	if m.flashLeft > 0 {
		if c, ok := flashBorders[m.flashColor]; ok {
			border = c
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(border).
		Render(strings.Join(lines, "\n"))
}

// toCell maps field coordinates onto the character grid.
func (m *Model) toCell(x, y float64, cols, rows int) (col, row int, ok bool) {
	if x < 0 || y < 0 || x >= m.field.Width || y >= m.field.Height {
		return 0, 0, false
	}
	col = int(x / m.field.Width * float64(cols))
	row = int(y / m.field.Height * float64(rows))
	return col, row, col < cols && row < rows
}

func (m *Model) renderLanes(width int) string {
	half := maxInt(1, width/2)
	labels := []string{"◀ left", "right ▶"}
	parts := make([]string, len(labels))
	for i, label := range labels {
		style := laneStyle
		if m.selected == i {
			style = laneOnStyle
		}
		parts[i] = lipgloss.PlaceHorizontal(half, lipgloss.Center, style.Render(label))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	hint := ""
	if m.arb.Waiting() {
		hint = mutedStyle.Render(waitingHint(m.cfg.Mode))
	}
	return bar + "\n" + hint
}

func waitingHint(mode model.AccessMode) string {
	switch mode {
	case model.ModeCycleScan:
		return "space to scan, enter to fire"
	case model.ModeAuto:
		return "autopilot engaged"
	default:
		return "pick a lane"
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
