package engine

// Snapshot types capture the queue, heap, and created-match state at each
// recorded step. They are plain value types (no pointers back into the
// engine) so a recorded timeline stays stable while the simulation moves
// on, and they marshal directly for run persistence.

// QueueAction tags what happened to the queue at a step. The dashboard
// uses it to highlight the affected players.
type QueueAction string

const (
	QueueIdle         QueueAction = "idle"
	QueueInsert       QueueAction = "insert"
	QueueRemove       QueueAction = "remove"
	QueueAnchor       QueueAction = "anchor"
	QueueGameFound    QueueAction = "game_found"
	QueueGameNotFound QueueAction = "game_not_found"
)

// HeapAction tags what happened to the candidate heap at a step.
type HeapAction string

const (
	HeapIdle   HeapAction = "idle"
	HeapInsert HeapAction = "insert"
	HeapRemove HeapAction = "remove"
)

// PlayerState is the recorded form of a player.
type PlayerState struct {
	ID         int     `json:"id"`
	Skill      int     `json:"skill"`
	EnqueuedAt float64 `json:"enqueued_at"`
	WaitTime   float64 `json:"wait_time"`
}

// GameState is the recorded form of a candidate game or created match.
// Priority is nil in unrestricted mode, where only imbalance is scored.
type GameState struct {
	AnchorID  int           `json:"anchor_id"`
	TeamX     []PlayerState `json:"team_x"`
	TeamY     []PlayerState `json:"team_y"`
	Imbalance float64       `json:"imbalance"`
	Priority  *float64      `json:"priority,omitempty"`
}

// Score is the display value: priority when present, otherwise imbalance.
func (g GameState) Score() float64 {
	if g.Priority != nil {
		return *g.Priority
	}
	return g.Imbalance
}

// QueueSnapshot is the queue at one step: players in skill order plus the
// action annotations for rendering.
type QueueSnapshot struct {
	State        []PlayerState `json:"state"`
	Action       QueueAction   `json:"action"`
	TargetPlayer int           `json:"target_player"` // rank, -1 when none
	WindowStart  int           `json:"window_start"`  // [start, end) ranks, -1/-1 when none
	WindowEnd    int           `json:"window_end"`
	TeamX        []int         `json:"team_x,omitempty"` // ranks of a found game's teams
	TeamY        []int         `json:"team_y,omitempty"`
}

// HeapSnapshot is the candidate heap at one step in array order.
type HeapSnapshot struct {
	State      []GameState `json:"state"`
	Action     HeapAction  `json:"action"`
	TargetGame int         `json:"target_game"` // slot, -1 when none
}

// Step is one frame of the recorded timeline.
type Step struct {
	Queue   QueueSnapshot `json:"queue"`
	Heap    HeapSnapshot  `json:"heap"`
	Matches []GameState   `json:"matches"`
}

func snapshotQueue(players *SortedSet) []PlayerState {
	all := players.All()
	out := make([]PlayerState, len(all))
	for i, p := range all {
		out[i] = p.Snapshot()
	}
	return out
}

func snapshotHeap(heap *CandidateHeap) []GameState {
	games := heap.Games()
	out := make([]GameState, len(games))
	for i, g := range games {
		out[i] = g.Snapshot()
	}
	return out
}

func snapshotMatches(matches []*CandidateGame) []GameState {
	out := make([]GameState, len(matches))
	for i, g := range matches {
		out[i] = g.Snapshot()
	}
	return out
}
