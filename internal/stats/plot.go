package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelTop        = "max"
	axisLabelMid        = "mid"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	terminalWidthBackup = 80
)

var seriesColors = []lipgloss.Color{"6", "5", "3", "2", "4"}

// Braille dot bits indexed by [row][col] within a 2x4 cell.
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// canvas is a grid of braille cells, one layer per series.
type canvas struct {
	width, height int
	layers        [][][]uint8
}

func newCanvas(width, height, layers int) *canvas {
	c := &canvas{width: width, height: height}
	for i := 0; i < layers; i++ {
		grid := make([][]uint8, height)
		for y := range grid {
			grid[y] = make([]uint8, width)
		}
		c.layers = append(c.layers, grid)
	}
	return c
}

func (c *canvas) dot(layer, x, y int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.layers[layer][cy][cx] |= brailleBits[y%4][x%2]
}

// line plots a Bresenham segment between two dot coordinates.
func (c *canvas) line(layer, x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.dot(layer, x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// cell merges all layers at a cell. owner is the first layer with a dot, or -1.
func (c *canvas) cell(x, y int) (r rune, owner int) {
	var mask uint8
	owner = -1
	for i, grid := range c.layers {
		if grid[y][x] == 0 {
			continue
		}
		if owner < 0 {
			owner = i
		}
		mask |= grid[y][x]
	}
	return rune(0x2800 + int(mask)), owner
}

// PlotSeries renders a multi-line braille plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a braille plot, colored when forced or when w is a terminal.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	kept := series[:0:0]
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	cv := newCanvas(width, height, len(kept))
	dotRows := height * 4
	var ranges []string
	for i, s := range kept {
		values := resampleSeries(s.Values, width)
		lo, hi := bounds(s.Values)
		ranges = append(ranges, fmt.Sprintf("%s: min=%.2f max=%.2f", s.Name, lo, hi))
		if math.Abs(hi-lo) < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		prevX, prevY := -1, -1
		for x, v := range values {
			y := clampInt(int(math.Round((hi-v)/(hi-lo)*float64(dotRows-1))), 0, dotRows-1)
			if prevX < 0 {
				cv.dot(i, x*2, y)
			} else {
				cv.line(i, prevX, prevY, x*2, y)
			}
			prevX, prevY = x*2, y
		}
	}

	useColor := shouldUseColor(w, forceColor)
	var out []string
	if title != "" {
		out = append(out, title)
	}
	out = append(out, scaleNote)
	out = append(out, ranges...)
	labels := axisLabels(height)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(labels[y], runewidth.StringWidth(axisLabelTop)))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			r, owner := cv.cell(x, y)
			if useColor && owner >= 0 {
				row.WriteString(colorize(string(r), owner))
			} else {
				row.WriteRune(r)
			}
		}
		out = append(out, row.String())
	}
	out = append(out, legend(kept, useColor), "")
	_, err := io.WriteString(w, strings.Join(out, "\n")+"\n")
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - runewidth.StringWidth(axisLabelTop) - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		return minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func colorize(s string, idx int) string {
	return lipgloss.NewStyle().Foreground(seriesColors[idx%len(seriesColors)]).Render(s)
}

func axisLabels(height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = axisLabelTop
	if height > 2 {
		labels[height/2] = axisLabelMid
	}
	if height > 1 {
		labels[height-1] = axisLabelBottom
	}
	return labels
}

func legend(series []Series, useColor bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := "⠁ " + s.Name
		if useColor {
			label = colorize(label, i)
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// resampleSeries stretches or squeezes values to exactly width points. Shrinking
// averages buckets; growing interpolates linearly.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	out := make([]float64, width)
	n := len(values)
	switch {
	case n == width:
		copy(out, values)
	case n > width:
		for i := range out {
			start := i * n / width
			end := (i + 1) * n / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	case n == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(n-1) / float64(width-1)
			idx := int(pos)
			if idx >= n-1 {
				out[i] = values[n-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
