package stats

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + runewidth.StringWidth(axisSeparator)
	total := 80
	expected := total - axisWidth
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(5); got != minPlotWidth {
		t.Fatalf("expected min width %d for narrow terminal, got %d", minPlotWidth, got)
	}
}
