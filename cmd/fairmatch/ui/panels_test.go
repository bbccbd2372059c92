package ui

import (
	"strings"
	"testing"

	"fairmatch/internal/engine"
)

func sampleStep() engine.Step {
	priority := 42.5
	return engine.Step{
		Queue: engine.QueueSnapshot{
			State: []engine.PlayerState{
				{ID: 0, Skill: 100},
				{ID: 1, Skill: 110},
				{ID: 2, Skill: 120},
				{ID: 3, Skill: 130},
			},
			Action:       engine.QueueAnchor,
			TargetPlayer: 0,
			WindowStart:  1,
			WindowEnd:    4,
		},
		Heap: engine.HeapSnapshot{
			State: []engine.GameState{
				{
					AnchorID:  0,
					TeamX:     []engine.PlayerState{{ID: 0, Skill: 100}, {ID: 3, Skill: 130}},
					TeamY:     []engine.PlayerState{{ID: 1, Skill: 110}, {ID: 2, Skill: 120}},
					Imbalance: 10,
					Priority:  &priority,
				},
			},
			Action:     engine.HeapInsert,
			TargetGame: 0,
		},
	}
}

func TestQueuePanel(t *testing.T) {
	out := QueuePanel(sampleStep(), NewStyles(LightTheme()), 80)

	if !strings.Contains(out, "Queue (4 players)") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "anchor") {
		t.Errorf("missing action label:\n%s", out)
	}
	for _, node := range []string{"P0:100", "P3:130"} {
		if !strings.Contains(out, node) {
			t.Errorf("missing node %q:\n%s", node, out)
		}
	}
}

func TestQueuePanelEmpty(t *testing.T) {
	step := engine.Step{Queue: engine.QueueSnapshot{Action: engine.QueueIdle, TargetPlayer: -1}}
	out := QueuePanel(step, NewStyles(LightTheme()), 80)
	if !strings.Contains(out, "queue is empty") {
		t.Errorf("empty queue output:\n%s", out)
	}
}

func TestHeapPanel(t *testing.T) {
	out := HeapPanel(sampleStep(), NewStyles(LightTheme()), 80)

	if !strings.Contains(out, "Candidate Games (1)") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "[0,3] vs [1,2]") {
		t.Errorf("missing team summary:\n%s", out)
	}
	// The inserted game's slot is marked.
	if !strings.Contains(out, "▶0") {
		t.Errorf("missing target marker:\n%s", out)
	}
	if !strings.Contains(out, "42.50") {
		t.Errorf("missing score:\n%s", out)
	}
}

func TestMatchesPanel(t *testing.T) {
	step := sampleStep()
	step.Matches = step.Heap.State

	out := MatchesPanel(step, NewStyles(LightTheme()), 80)
	if !strings.Contains(out, "Created Matches (1)") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "g=42.50") {
		t.Errorf("missing priority score:\n%s", out)
	}

	// Without a priority the imbalance is shown instead.
	step.Matches[0].Priority = nil
	out = MatchesPanel(step, NewStyles(LightTheme()), 80)
	if !strings.Contains(out, "f=10.00") {
		t.Errorf("missing imbalance score:\n%s", out)
	}
}

func TestStatsPanelSeriesSelection(t *testing.T) {
	stats := engine.Stats{
		QueueSize:    []float64{1, 2, 3},
		HeapSize:     []float64{0, 1, 1},
		MaxWaitTime:  []float64{0, 1, 2},
		MinPriority:  []float64{5, 4},
		MinImbalance: []float64{3, 2},
	}
	styles := NewStyles(LightTheme())

	unrestricted := StatsPanel(stats, styles, 80, false)
	if strings.Contains(unrestricted, "Min Priority") {
		t.Error("unrestricted stats should not chart priority")
	}

	timeSensitive := StatsPanel(stats, styles, 80, true)
	for _, title := range []string{"Queue Size", "Heap Size", "Max Wait Time", "Min Priority", "Min Imbalance"} {
		if !strings.Contains(timeSensitive, title) {
			t.Errorf("time-sensitive stats missing %q", title)
		}
	}
}

func TestParametersPanel(t *testing.T) {
	params := map[string]float64{
		"team_size":       2,
		"p_norm":          1,
		"q_norm":          1,
		"fairness_weight": 0.1,
		"skill_window":    18,
	}
	out := ParametersPanel(params, NewStyles(LightTheme()), 60)

	if !strings.Contains(out, "Team Size (k)") || !strings.Contains(out, "18") {
		t.Errorf("parameters output:\n%s", out)
	}
	// No queue weight recorded means the row is omitted entirely.
	if strings.Contains(out, "Queue Weight") {
		t.Errorf("unexpected queue weight row:\n%s", out)
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2, "2"},
		{0.1, "0.1"},
		{18.5, "18.5"},
	}
	for _, tt := range tests {
		if got := trimTrailingZeros(tt.in); got != tt.want {
			t.Errorf("trimTrailingZeros(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
