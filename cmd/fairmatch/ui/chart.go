package ui

import (
	"fmt"
	"math"
	"strings"
)

// LineChart renders a statistic series as a block-character chart, the
// terminal stand-in for the statistics panel's line charts. Values are
// scaled into the given height; the x axis is the step index.
type LineChart struct {
	Title  string
	Width  int
	Height int
}

var chartBlocks = []rune(" ▁▂▃▄▅▆▇█")

// View renders the series. An empty series renders a placeholder.
func (c LineChart) View(series []float64, styles Styles) string {
	if len(series) == 0 {
		return styles.Muted.Render("no data recorded yet")
	}

	width := c.Width
	if width <= 0 {
		width = 40
	}
	points := resample(series, width)

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range points {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var sb strings.Builder
	if c.Title != "" {
		sb.WriteString(styles.PanelTitle.Render(c.Title))
		sb.WriteString("\n")
	}

	span := hi - lo
	var row strings.Builder
	for _, v := range points {
		idx := len(chartBlocks) - 1
		if span > 0 {
			idx = int((v - lo) / span * float64(len(chartBlocks)-1))
		}
		row.WriteRune(chartBlocks[idx])
	}
	sb.WriteString(styles.Info.Render(row.String()))
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("min %.2f  max %.2f  last %.2f  (%d steps)",
		lo, hi, series[len(series)-1], len(series))))
	return sb.String()
}

// resample squeezes or stretches the series to the target width by
// sampling, keeping the last value exact.
func resample(series []float64, width int) []float64 {
	if len(series) <= width {
		return series
	}
	out := make([]float64, width)
	for i := range out {
		pos := float64(i) / float64(width-1) * float64(len(series)-1)
		out[i] = series[int(math.Round(pos))]
	}
	return out
}
