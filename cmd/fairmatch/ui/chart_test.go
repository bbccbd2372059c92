package ui

import (
	"strings"
	"testing"
)

func TestLineChartView(t *testing.T) {
	styles := NewStyles(LightTheme())
	chart := LineChart{Title: "Queue Size", Width: 20}

	out := chart.View([]float64{0, 1, 2, 3, 4}, styles)
	if !strings.Contains(out, "Queue Size") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "min 0.00  max 4.00  last 4.00  (5 steps)") {
		t.Errorf("missing footer:\n%s", out)
	}
	// Rising series ends on the tallest block.
	if !strings.Contains(out, "█") {
		t.Errorf("missing peak block:\n%s", out)
	}
}

func TestLineChartEmpty(t *testing.T) {
	out := LineChart{Title: "x"}.View(nil, NewStyles(LightTheme()))
	if !strings.Contains(out, "no data recorded yet") {
		t.Errorf("empty chart output:\n%s", out)
	}
}

func TestLineChartFlatSeries(t *testing.T) {
	out := LineChart{Width: 10}.View([]float64{3, 3, 3}, NewStyles(LightTheme()))
	// A zero-span series renders at full height rather than dividing by zero.
	if !strings.Contains(out, "███") {
		t.Errorf("flat series output:\n%s", out)
	}
}

func TestResample(t *testing.T) {
	series := make([]float64, 100)
	for i := range series {
		series[i] = float64(i)
	}

	out := resample(series, 10)
	if len(out) != 10 {
		t.Fatalf("len = %d, want 10", len(out))
	}
	if out[0] != 0 || out[9] != 99 {
		t.Errorf("endpoints = %v, %v, want 0 and 99", out[0], out[9])
	}

	short := []float64{1, 2}
	if got := resample(short, 10); len(got) != 2 {
		t.Errorf("short series should pass through, got %d points", len(got))
	}
}
