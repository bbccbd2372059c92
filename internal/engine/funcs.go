package engine

import "math"

// The scoring functions below follow the matchmaking model of teams X and Y
// drawn from a skill-ordered queue:
//
//	s_p(X)    p-norm team skill
//	d_p(X,Y)  p-fairness, the gap between the two team skills
//	v_q(Z)    q-uniformity, spread of all game players around their mean
//	f(X,Y)    imbalance  = alpha*d_p + v_q
//	g(X,Y)    priority   = f + beta*min(enqueue time)
//
// p or q = +Inf selects the max forms.

// TeamSkill computes the p-norm skill of a team. For p = +Inf this is the
// skill of the strongest player.
func TeamSkill(team []*Player, pNorm float64) float64 {
	if math.IsInf(pNorm, 1) {
		best := math.Inf(-1)
		for _, p := range team {
			best = math.Max(best, float64(p.Skill))
		}
		return best
	}
	sum := 0.0
	for _, p := range team {
		sum += math.Pow(float64(p.Skill), pNorm)
	}
	return math.Pow(sum, 1/pNorm)
}

// Fairness computes d_p(X, Y), the absolute difference between the two
// teams' p-norm skills.
func Fairness(teamX, teamY []*Player, pNorm float64) float64 {
	return math.Abs(TeamSkill(teamX, pNorm) - TeamSkill(teamY, pNorm))
}

// MeanSkill computes the mean skill across every player in the game.
func MeanSkill(players []*Player) float64 {
	sum := 0.0
	for _, p := range players {
		sum += float64(p.Skill)
	}
	return sum / float64(len(players))
}

// Uniformity computes v_q(Z) over all game players. For q = +Inf this is
// the distance of the farthest player from the mean.
func Uniformity(players []*Player, qNorm float64) float64 {
	mean := MeanSkill(players)
	if math.IsInf(qNorm, 1) {
		worst := 0.0
		for _, p := range players {
			worst = math.Max(worst, math.Abs(float64(p.Skill)-mean))
		}
		return worst
	}
	sum := 0.0
	for _, p := range players {
		sum += math.Pow(math.Abs(float64(p.Skill)-mean), qNorm)
	}
	return math.Pow(sum/float64(len(players)), 1/qNorm)
}

// Imbalance computes f(X, Y) = alpha*d_p(X,Y) + v_q(X u Y).
func Imbalance(teamX, teamY []*Player, pNorm, qNorm, fairnessWeight float64) float64 {
	all := make([]*Player, 0, len(teamX)+len(teamY))
	all = append(all, teamX...)
	all = append(all, teamY...)
	return fairnessWeight*Fairness(teamX, teamY, pNorm) + Uniformity(all, qNorm)
}

// Priority computes g(X, Y) = f + beta*min(enqueue time). The earliest
// enqueue time across both teams is used, so long-waiting players pull the
// score down and get matched sooner.
func Priority(teamX, teamY []*Player, queueWeight, imbalance float64) float64 {
	earliest := math.Inf(1)
	for _, p := range teamX {
		earliest = math.Min(earliest, p.EnqueuedAt)
	}
	for _, p := range teamY {
		earliest = math.Min(earliest, p.EnqueuedAt)
	}
	return imbalance + queueWeight*earliest
}
