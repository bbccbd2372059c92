package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fairmatch/internal/engine"
)

// The panel renderers below turn one recorded step into terminal output.
// They only read snapshot data; highlighting comes from the step's action
// annotations.

// QueuePanel renders the skill-ordered queue with the current action's
// players highlighted.
func QueuePanel(step engine.Step, styles Styles, width int) string {
	q := step.Queue

	teamX := intSet(q.TeamX)
	teamY := intSet(q.TeamY)

	var nodes []string
	for rank, p := range q.State {
		style := styles.NodeIdle
		switch {
		case rank == q.TargetPlayer && q.Action == engine.QueueAnchor:
			style = styles.NodeAnchor
		case rank == q.TargetPlayer && q.Action != engine.QueueIdle:
			style = styles.NodeTarget
		case teamX[rank]:
			style = styles.NodeTeamX
		case teamY[rank]:
			style = styles.NodeTeamY
		case q.WindowStart >= 0 && rank >= q.WindowStart && rank < q.WindowEnd:
			style = styles.NodeWindow
		}
		nodes = append(nodes, style.Render(fmt.Sprintf("P%d:%d", p.ID, p.Skill)))
	}

	body := "queue is empty"
	if len(nodes) > 0 {
		body = wrapNodes(nodes, width-4)
	}

	title := fmt.Sprintf("Queue (%d players) — %s", len(q.State), actionLabel(string(q.Action)))
	return styles.Panel.Width(width).Render(styles.PanelTitle.Render(title) + "\n" + body)
}

// HeapPanel renders the candidate heap in array order, cheapest first.
func HeapPanel(step engine.Step, styles Styles, width int) string {
	h := step.Heap

	table := NewSimpleTable("", []string{"slot", "anchor", "teams", "f", "score"})
	for slot, g := range h.State {
		marker := fmt.Sprintf("%d", slot)
		if slot == h.TargetGame && h.Action != engine.HeapIdle {
			marker = "▶" + marker
		}
		table.AddRow(
			marker,
			fmt.Sprintf("P%d", g.AnchorID),
			teamSummary(g),
			fmt.Sprintf("%.2f", g.Imbalance),
			fmt.Sprintf("%.2f", g.Score()),
		)
	}

	title := fmt.Sprintf("Candidate Games (%d) — %s", len(h.State), actionLabel(string(h.Action)))
	body := table.View(styles)
	if len(h.State) == 0 {
		body = styles.Muted.Render("no candidate games")
	}
	return styles.Panel.Width(width).Render(styles.PanelTitle.Render(title) + "\n" + body)
}

// MatchesPanel renders the created matches as team-vs-team lines.
func MatchesPanel(step engine.Step, styles Styles, width int) string {
	var sb strings.Builder
	for i, m := range step.Matches {
		x := make([]string, len(m.TeamX))
		for j, p := range m.TeamX {
			x[j] = styles.NodeTeamX.Render(fmt.Sprintf("P%d:%d", p.ID, p.Skill))
		}
		y := make([]string, len(m.TeamY))
		for j, p := range m.TeamY {
			y[j] = styles.NodeTeamY.Render(fmt.Sprintf("P%d:%d", p.ID, p.Skill))
		}
		score := fmt.Sprintf("f=%.2f", m.Imbalance)
		if m.Priority != nil {
			score = fmt.Sprintf("g=%.2f", *m.Priority)
		}
		sb.WriteString(fmt.Sprintf("%s  %s %s %s  %s\n",
			styles.Bold.Render(fmt.Sprintf("#%d", i+1)),
			strings.Join(x, " "),
			styles.Muted.Render("vs"),
			strings.Join(y, " "),
			styles.Muted.Render(score)))
	}

	body := sb.String()
	if body == "" {
		body = styles.Muted.Render("no matches created yet")
	}
	title := fmt.Sprintf("Created Matches (%d)", len(step.Matches))
	return styles.Panel.Width(width).Render(styles.PanelTitle.Render(title) + "\n" + strings.TrimRight(body, "\n"))
}

// StatsPanel renders the recorded statistic series as block charts.
func StatsPanel(stats engine.Stats, styles Styles, width int, timeSensitive bool) string {
	chartWidth := max(20, width-8)
	var sections []string

	sections = append(sections,
		LineChart{Title: "Queue Size", Width: chartWidth}.View(stats.QueueSize, styles),
		LineChart{Title: "Heap Size", Width: chartWidth}.View(stats.HeapSize, styles),
	)
	if timeSensitive {
		sections = append(sections,
			LineChart{Title: "Max Wait Time", Width: chartWidth}.View(stats.MaxWaitTime, styles),
			LineChart{Title: "Min Priority vs Imbalance", Width: chartWidth}.View(stats.MinPriority, styles),
		)
	}
	sections = append(sections,
		LineChart{Title: "Min Imbalance", Width: chartWidth}.View(stats.MinImbalance, styles),
	)

	return styles.Panel.Width(width).Render(
		styles.PanelTitle.Render("Statistics") + "\n" + strings.Join(sections, "\n\n"))
}

// ParametersPanel renders the session parameters for reference.
func ParametersPanel(params map[string]float64, styles Styles, width int) string {
	labels := []struct{ key, label string }{
		{"team_size", "Team Size (k)"},
		{"p_norm", "Fairness Norm (p)"},
		{"q_norm", "Uniformity Norm (q)"},
		{"fairness_weight", "Fairness Weight (α)"},
		{"queue_weight", "Queue Weight (β)"},
		{"skill_window", "Skill Window"},
	}
	table := NewSimpleTable("", []string{"parameter", "value"})
	for _, l := range labels {
		if v, ok := params[l.key]; ok {
			table.AddRow(l.label, trimTrailingZeros(v))
		}
	}
	return styles.Panel.Width(width).Render(
		styles.PanelTitle.Render("Parameters") + "\n" + table.View(styles))
}

func trimTrailingZeros(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func teamSummary(g engine.GameState) string {
	ids := func(team []engine.PlayerState) string {
		parts := make([]string, len(team))
		for i, p := range team {
			parts[i] = fmt.Sprintf("%d", p.ID)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("[%s] vs [%s]", ids(g.TeamX), ids(g.TeamY))
}

func actionLabel(action string) string {
	return strings.ReplaceAll(action, "_", " ")
}

func intSet(values []int) map[int]bool {
	out := make(map[int]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

func wrapNodes(nodes []string, width int) string {
	if width < 10 {
		width = 10
	}
	var lines []string
	var current []string
	lineWidth := 0
	for _, n := range nodes {
		w := lipgloss.Width(n) + 1
		if lineWidth+w > width && len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
			current = nil
			lineWidth = 0
		}
		current = append(current, n)
		lineWidth += w
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return strings.Join(lines, "\n")
}
