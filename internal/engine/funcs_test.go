package engine

import (
	"math"
	"testing"
)

func testPlayers(skills ...int) []*Player {
	clock := NewFakeClock(fixedTime())
	out := make([]*Player, len(skills))
	for i, s := range skills {
		out[i] = NewPlayer(i, s, clock)
	}
	return out
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestTeamSkill(t *testing.T) {
	tests := []struct {
		name   string
		skills []int
		pNorm  float64
		want   float64
	}{
		{"p1_is_sum", []int{10, 20, 30}, 1, 60},
		{"p2_is_euclidean", []int{3, 4}, 2, 5},
		{"pinf_is_max", []int{10, 50, 20}, math.Inf(1), 50},
		{"single_player", []int{42}, 3, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TeamSkill(testPlayers(tt.skills...), tt.pNorm)
			if !almostEqual(got, tt.want) {
				t.Errorf("TeamSkill = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFairness(t *testing.T) {
	x := testPlayers(10, 20)
	y := testPlayers(15, 25)

	if got := Fairness(x, y, 1); !almostEqual(got, 10) {
		t.Errorf("Fairness p=1 = %v, want 10", got)
	}
	// Symmetric.
	if got := Fairness(y, x, 1); !almostEqual(got, 10) {
		t.Errorf("Fairness reversed = %v, want 10", got)
	}
	// Identical teams are perfectly fair.
	if got := Fairness(x, x, 2); got != 0 {
		t.Errorf("Fairness of identical teams = %v, want 0", got)
	}
}

func TestUniformity(t *testing.T) {
	tests := []struct {
		name   string
		skills []int
		qNorm  float64
		want   float64
	}{
		// mean 20, deviations 10,0,10 -> (20/3)
		{"q1_mean_abs_dev", []int{10, 20, 30}, 1, 20.0 / 3},
		// qinf takes the farthest deviation
		{"qinf_max_dev", []int{10, 20, 60}, math.Inf(1), 30},
		{"uniform_game", []int{25, 25, 25, 25}, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Uniformity(testPlayers(tt.skills...), tt.qNorm)
			if !almostEqual(got, tt.want) {
				t.Errorf("Uniformity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImbalance(t *testing.T) {
	x := testPlayers(10, 20)
	y := testPlayers(15, 25)

	// d_1 = |30-40| = 10, v_1 over {10,20,15,25}: mean 17.5, devs 7.5+2.5+2.5+7.5 = 20/4 = 5
	want := 0.5*10 + 5.0
	if got := Imbalance(x, y, 1, 1, 0.5); !almostEqual(got, want) {
		t.Errorf("Imbalance = %v, want %v", got, want)
	}
}

func TestPriorityUsesEarliestEnqueue(t *testing.T) {
	x := testPlayers(10, 20)
	y := testPlayers(15, 25)
	x[0].EnqueuedAt = 5
	x[1].EnqueuedAt = 9
	y[0].EnqueuedAt = 3
	y[1].EnqueuedAt = 12

	if got := Priority(x, y, 2, 10); !almostEqual(got, 10+2*3) {
		t.Errorf("Priority = %v, want 16", got)
	}
}
