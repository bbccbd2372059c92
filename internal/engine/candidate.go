package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CandidateGame is a provisional pairing of two teams anchored on a single
// player. At most one candidate exists per anchor; the heap enforces that.
// Priority is NaN when the manager runs without queue weighting.
type CandidateGame struct {
	Anchor    *Player
	TeamX     []*Player
	TeamY     []*Player
	Imbalance float64
	Priority  float64
}

// NewCandidateGame scores the candidate. queueWeight < 0 disables the
// priority term (unrestricted mode).
func NewCandidateGame(anchor *Player, teamX, teamY []*Player, pNorm, qNorm, fairnessWeight, queueWeight float64) *CandidateGame {
	g := &CandidateGame{
		Anchor:    anchor,
		TeamX:     teamX,
		TeamY:     teamY,
		Imbalance: Imbalance(teamX, teamY, pNorm, qNorm, fairnessWeight),
		Priority:  math.NaN(),
	}
	if queueWeight >= 0 {
		g.Priority = Priority(teamX, teamY, queueWeight, g.Imbalance)
	}
	return g
}

// Score is the value the heap orders by: priority when present, otherwise
// imbalance.
func (g *CandidateGame) Score() float64 {
	if !math.IsNaN(g.Priority) {
		return g.Priority
	}
	return g.Imbalance
}

// Less orders candidates by score.
func (g *CandidateGame) Less(other *CandidateGame) bool {
	return g.Score() < other.Score()
}

// Players returns every player in the game, both teams combined.
func (g *CandidateGame) Players() []*Player {
	all := make([]*Player, 0, len(g.TeamX)+len(g.TeamY))
	all = append(all, g.TeamX...)
	all = append(all, g.TeamY...)
	return all
}

// Snapshot converts the candidate into the recorder's form.
func (g *CandidateGame) Snapshot() GameState {
	state := GameState{
		AnchorID:  g.Anchor.ID,
		TeamX:     snapshotTeam(g.TeamX),
		TeamY:     snapshotTeam(g.TeamY),
		Imbalance: g.Imbalance,
	}
	if !math.IsNaN(g.Priority) {
		priority := g.Priority
		state.Priority = &priority
	}
	return state
}

func snapshotTeam(team []*Player) []PlayerState {
	out := make([]PlayerState, len(team))
	for i, p := range team {
		out[i] = p.Snapshot()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *CandidateGame) String() string {
	ids := func(team []*Player) string {
		parts := make([]string, len(team))
		for i, p := range team {
			parts[i] = fmt.Sprintf("%d", p.ID)
		}
		return strings.Join(parts, ",")
	}
	s := fmt.Sprintf("CandidateGame(anchor=%d X=[%s] Y=[%s] f=%.2f", g.Anchor.ID, ids(g.TeamX), ids(g.TeamY), g.Imbalance)
	if !math.IsNaN(g.Priority) {
		s += fmt.Sprintf(" g=%.2f", g.Priority)
	}
	return s + ")"
}
