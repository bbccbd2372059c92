package engine

// Player is a queued participant. Ordering is by (skill, id) so ties break
// deterministically, and identity is the ID alone.
type Player struct {
	ID         int
	Skill      int
	EnqueuedAt float64
	DequeuedAt float64 // 0 while still queued

	clock *Clock
}

// NewPlayer creates a player stamped with the clock's current time.
func NewPlayer(id, skill int, clock *Clock) *Player {
	return &Player{ID: id, Skill: skill, EnqueuedAt: clock.Now(), clock: clock}
}

// WaitTime reports how long the player has been (or was) queued, in
// simulation seconds.
func (p *Player) WaitTime() float64 {
	if p.DequeuedAt == 0 {
		return p.clock.Now() - p.EnqueuedAt
	}
	return p.DequeuedAt - p.EnqueuedAt
}

// MarkExited stamps the player's dequeue time.
func (p *Player) MarkExited() {
	p.DequeuedAt = p.clock.Now()
}

// Less orders players by skill, then ID.
func (p *Player) Less(other *Player) bool {
	if p.Skill != other.Skill {
		return p.Skill < other.Skill
	}
	return p.ID < other.ID
}

// Snapshot converts the player into the recorder's field map form.
func (p *Player) Snapshot() PlayerState {
	return PlayerState{
		ID:         p.ID,
		Skill:      p.Skill,
		EnqueuedAt: p.EnqueuedAt,
		WaitTime:   p.WaitTime(),
	}
}
