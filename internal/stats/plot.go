package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

type lineStyle struct {
	name   string
	period int
	on     int
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 4
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	thresholdColor      = "\x1b[31m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
	"\x1b[34m", // blue
}

// PlotSeries renders percent series (0-100) as a braille line chart with the
// weak threshold marked.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a plot with optional forced color output.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
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

	dotsHigh := height * 4
	layers := make([][][]uint8, len(series))
	for si, s := range series {
		layers[si] = makeCells(height, width)
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range resampleSeries(s.Values, width) {
			px, py := x*2, percentToRow(v, dotsHigh)
			if prevX < 0 {
				if style.shouldPlot(px) {
					setBrailleDot(layers[si], px, py)
				}
			} else {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(layers[si], dx, dy)
					}
				})
			}
			prevX, prevY = px, py
		}
	}
	thresholdRow := percentToRow(WeakThreshold, dotsHigh) / 4

	useColor := shouldUseColor(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labels := axisLabels(height, thresholdRow)
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(labels[y], axisLabelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			mask, layer := composeCell(layers, x, y)
			switch {
			case mask != 0 && useColor:
				row.WriteString(colorPalette[layer%len(colorPalette)])
				row.WriteRune(brailleFromMask(mask))
				row.WriteString(colorReset)
			case mask != 0:
				row.WriteRune(brailleFromMask(mask))
			case y == thresholdRow && x%2 == 0 && useColor:
				row.WriteString(thresholdColor + "·" + colorReset)
			case y == thresholdRow && x%2 == 0:
				row.WriteRune('·')
			default:
				row.WriteRune(brailleFromMask(0))
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) > 0 {
			out = append(out, s)
		}
	}
	return out
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
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func axisLabels(height, thresholdRow int) []string {
	labels := make([]string, height)
	labels[0] = "100%"
	if height > 1 {
		labels[height-1] = "0%"
	}
	if thresholdRow > 0 && thresholdRow < height-1 {
		labels[thresholdRow] = fmt.Sprintf("%.0f%%", WeakThreshold)
	}
	return labels
}

func percentToRow(v float64, dotsHigh int) int {
	if dotsHigh <= 1 {
		return 0
	}
	return int(math.Round((1 - clampPercent(v)/100) * float64(dotsHigh-1)))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

// composeCell merges all layers at a cell; the first layer with a dot owns
// the color.
func composeCell(layers [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	owner := -1
	for i, cells := range layers {
		if cells[y][x] == 0 {
			continue
		}
		if owner == -1 {
			owner = i
		}
		mask |= cells[y][x]
	}
	return mask, owner
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	return x%ls.period < ls.on
}

// resampleSeries stretches or averages values to exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) > width:
		for i := range out {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			out[i] = Mean(values[start:end])
		}
	case len(values) == 1 || width == 1:
		for i := range out {
			out[i] = values[0]
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series)+1)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%s)", brailleFromMask(0x01), s.Name, lineStyles[i%len(lineStyles)].name)
		if useColor {
			label = colorPalette[i%len(colorPalette)] + label + colorReset
		}
		parts = append(parts, label)
	}
	parts = append(parts, fmt.Sprintf("· weak below %.0f%%", WeakThreshold))
	return "Legend: " + strings.Join(parts, "  ")
}

// drawLine walks a Bresenham line between two dot coordinates.
func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Braille cells are 2 dots wide and 4 dots tall.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setBrailleDot(cells [][]uint8, x, y int) {
	cellX, cellY := x/2, y/4
	if x < 0 || y < 0 || cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleBits[x%2][y%4]
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
