// Package engine implements the skill-based matchmaking core: a sorted
// player queue, an indexed min-heap of candidate games scored by the
// p-fairness / q-uniformity imbalance model, and a step recorder that
// captures the whole process for playback.
package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

// Mode selects the scoring model.
type Mode string

const (
	// ModeUnrestricted orders candidate games by imbalance alone.
	ModeUnrestricted Mode = "unrestricted"
	// ModeTimeSensitive adds the queue-time term: g = f + beta*min(enqueue).
	ModeTimeSensitive Mode = "time_sensitive"
)

// Config holds the matchmaking parameters.
type Config struct {
	Mode           Mode    `json:"mode" yaml:"mode"`
	TeamSize       int     `json:"team_size" yaml:"team_size"`             // k, 1..5
	PNorm          float64 `json:"p_norm" yaml:"p_norm"`                   // p >= 1
	QNorm          float64 `json:"q_norm" yaml:"q_norm"`                   // q >= 1
	FairnessWeight float64 `json:"fairness_weight" yaml:"fairness_weight"` // alpha > 0
	QueueWeight    float64 `json:"queue_weight" yaml:"queue_weight"`       // beta >= 0, time-sensitive only
	Approximate    bool    `json:"approximate" yaml:"approximate"`
	Record         bool    `json:"record" yaml:"record"`
}

// DefaultConfig returns the parameters used when none are supplied.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeUnrestricted,
		TeamSize:       2,
		PNorm:          1,
		QNorm:          1,
		FairnessWeight: 0.1,
		QueueWeight:    0.1,
		Record:         true,
	}
}

// Validate checks every parameter range.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeUnrestricted, ModeTimeSensitive:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeUnrestricted, ModeTimeSensitive, c.Mode)
	}
	if c.TeamSize < 1 || c.TeamSize > 5 {
		return fmt.Errorf("team_size must be between 1 and 5, got %d", c.TeamSize)
	}
	if c.PNorm < 1 {
		return fmt.Errorf("p_norm must be >= 1, got %v", c.PNorm)
	}
	if c.QNorm < 1 {
		return fmt.Errorf("q_norm must be >= 1, got %v", c.QNorm)
	}
	if c.FairnessWeight <= 0 {
		return fmt.Errorf("fairness_weight must be > 0, got %v", c.FairnessWeight)
	}
	if c.Mode == ModeTimeSensitive && c.QueueWeight < 0 {
		return fmt.Errorf("queue_weight must be >= 0, got %v", c.QueueWeight)
	}
	return nil
}

// SkillWindow is how many higher-skilled neighbours a player can be matched
// with. The exact bound ceil(4(1+alpha)k^(1+1/q)) preserves the optimality
// guarantee; approximate mode shrinks it to the minimum 2k-1.
func (c Config) SkillWindow() int {
	if c.Approximate {
		return 2*c.TeamSize - 1
	}
	return int(math.Ceil(4 * (1 + c.FairnessWeight) * math.Pow(float64(c.TeamSize), 1+1/c.QNorm)))
}

// RequiredPlayers is how many players beyond the anchor a game needs.
func (c Config) RequiredPlayers() int {
	return 2*c.TeamSize - 1
}

// Manager runs a matchmaking session: players enter a skill-sorted queue,
// every affected player keeps its best candidate game in the heap, and
// CreateMatch commits the heap minimum. All exported methods are safe for
// concurrent use; the dashboard calls them from background commands while
// reading the recorder.
type Manager struct {
	mu      sync.Mutex
	cfg     Config
	clock   *Clock
	players *SortedSet
	heap    *CandidateHeap
	matches []*CandidateGame
	nextID  int

	recorder *Recorder
	log      *zap.Logger
}

// NewManager validates the config and creates an empty session.
func NewManager(cfg Config, log *zap.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		cfg:     cfg,
		clock:   NewClock(),
		players: NewSortedSet(),
		heap:    NewCandidateHeap(),
		log:     log,
	}
	if cfg.Record {
		m.recorder = NewRecorder()
		m.record(defaultStepOptions())
	}
	log.Info("matchmaking session created",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("team_size", cfg.TeamSize),
		zap.Float64("p_norm", cfg.PNorm),
		zap.Float64("q_norm", cfg.QNorm),
		zap.Float64("fairness_weight", cfg.FairnessWeight),
		zap.Int("skill_window", cfg.SkillWindow()))
	return m, nil
}

// Config returns the session parameters.
func (m *Manager) Config() Config { return m.cfg }

// Recorder returns the step recorder, or nil when recording is disabled.
func (m *Manager) Recorder() *Recorder { return m.recorder }

// Clock returns the session clock. Tests swap it for a fake.
func (m *Manager) Clock() *Clock { return m.clock }

// SetClock replaces the session clock. Must be called before any players
// are inserted.
func (m *Manager) SetClock(c *Clock) { m.clock = c }

// Parameters returns the effective parameters for display.
func (m *Manager) Parameters() map[string]float64 {
	params := map[string]float64{
		"team_size":       float64(m.cfg.TeamSize),
		"p_norm":          m.cfg.PNorm,
		"q_norm":          m.cfg.QNorm,
		"fairness_weight": m.cfg.FairnessWeight,
		"skill_window":    float64(m.cfg.SkillWindow()),
	}
	if m.cfg.Mode == ModeTimeSensitive {
		params["queue_weight"] = m.cfg.QueueWeight
	}
	return params
}

// QueueLen reports the number of queued players.
func (m *Manager) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.Len()
}

// HeapLen reports the number of candidate games.
func (m *Manager) HeapLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heap.Len()
}

// Matches returns the created matches in creation order.
func (m *Manager) Matches() []GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshotMatches(m.matches)
}

// InsertPlayer adds one player with the given skill and returns it.
func (m *Manager) InsertPlayer(skill int) *Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(stepOptions{clear: true})
	p := NewPlayer(m.nextID, skill, m.clock)
	m.nextID++
	m.insert(p)
	return p
}

// InsertPlayers adds players with skills drawn from a normal distribution.
// A nil rng falls back to the shared source.
func (m *Manager) InsertPlayers(n int, mean, stddev float64, rng *rand.Rand) []*Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(stepOptions{clear: true})
	gauss := rand.NormFloat64
	if rng != nil {
		gauss = rng.NormFloat64
	}
	out := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		skill := int(math.Abs(math.Round(gauss()*stddev + mean)))
		p := NewPlayer(m.nextID, skill, m.clock)
		m.nextID++
		m.log.Debug("inserting player", zap.Int("id", p.ID), zap.Int("skill", p.Skill))
		m.insert(p)
		out = append(out, p)
	}
	return out
}

// CreateMatch commits the best candidate game, removing its players from
// the queue. Returns the match, or nil when no candidate exists.
func (m *Manager) CreateMatch() *GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(stepOptions{clear: true})
	game := m.heap.Peek()
	if game == nil {
		m.log.Info("no candidate games available")
		return nil
	}
	for _, p := range game.Players() {
		m.log.Debug("removing matched player", zap.Int("id", p.ID))
		m.remove(p)
	}
	m.matches = append(m.matches, game)
	m.record(defaultStepOptions())
	m.log.Info("match created",
		zap.Int("anchor", game.Anchor.ID),
		zap.Float64("imbalance", game.Imbalance),
		zap.Int("heap_size", m.heap.Len()))
	state := game.Snapshot()
	return &state
}

func (m *Manager) record(opts stepOptions) {
	if m.recorder == nil {
		return
	}
	if opts.queueAction == "" {
		opts.queueAction = QueueIdle
	}
	if opts.heapAction == "" {
		opts.heapAction = HeapIdle
	}
	m.recorder.record(opts, m.players, m.heap, m.matches)
}

func (m *Manager) newCandidate(anchor *Player, teamX, teamY []*Player) *CandidateGame {
	queueWeight := -1.0
	if m.cfg.Mode == ModeTimeSensitive {
		queueWeight = m.cfg.QueueWeight
	}
	return NewCandidateGame(anchor, teamX, teamY, m.cfg.PNorm, m.cfg.QNorm, m.cfg.FairnessWeight, queueWeight)
}

// bestGameFor searches the anchor's skill window for the candidate game
// with the lowest score. Only higher-skilled neighbours are considered;
// lower-skilled ones see the anchor inside their own windows instead.
func (m *Manager) bestGameFor(anchor *Player) *CandidateGame {
	rank := m.players.Index(anchor)
	start := rank + 1
	end := min(m.players.Len(), start+m.cfg.SkillWindow())
	visible := m.players.Slice(start, end)

	opts := defaultStepOptions()
	opts.queueAction = QueueAnchor
	opts.targetPlayer = rank
	opts.windowStart = start
	opts.windowEnd = end
	m.record(opts)

	required := m.cfg.RequiredPlayers()
	if len(visible) < required {
		return nil
	}

	var best *CandidateGame
	checked := 0
	for _, others := range combinations(visible, required) {
		for _, teamXOthers := range combinations(others, m.cfg.TeamSize-1) {
			teamX := append([]*Player{anchor}, teamXOthers...)
			teamY := difference(others, teamXOthers)
			game := m.newCandidate(anchor, teamX, teamY)
			checked++
			if best == nil || game.Less(best) {
				best = game
			}
		}
	}
	m.log.Debug("evaluated candidate games", zap.Int("anchor", anchor.ID), zap.Int("checked", checked))
	return best
}

func (m *Manager) insert(p *Player) {
	m.players.Add(p)
	rank := m.players.Index(p)

	opts := defaultStepOptions()
	opts.queueAction = QueueInsert
	opts.targetPlayer = rank
	m.record(opts)

	m.reevaluate(p)

	affected := m.players.Slice(max(0, rank-m.cfg.SkillWindow()), rank)
	for _, other := range affected {
		m.reevaluate(other)
	}
}

func (m *Manager) remove(p *Player) {
	rank := m.players.Index(p)
	affected := m.players.Slice(max(0, rank-m.cfg.SkillWindow()), rank)

	opts := defaultStepOptions()
	opts.queueAction = QueueRemove
	opts.targetPlayer = rank
	m.record(opts)

	m.players.Remove(p)

	if slot := m.heap.Index(p.ID); slot >= 0 {
		heapOpts := defaultStepOptions()
		heapOpts.heapAction = HeapRemove
		heapOpts.targetGame = slot
		m.record(heapOpts)
		m.heap.Remove(p.ID)
	} else {
		m.record(defaultStepOptions())
	}

	p.MarkExited()

	for _, other := range affected {
		m.reevaluate(other)
	}
}

// reevaluate refreshes one player's candidate game after a queue change.
// No valid game drops the player's stale entry from the heap.
func (m *Manager) reevaluate(p *Player) {
	best := m.bestGameFor(p)
	if best == nil {
		opts := defaultStepOptions()
		opts.queueAction = QueueGameNotFound
		opts.targetPlayer = m.players.Index(p)
		m.record(opts)
		m.heap.Remove(p.ID)
		return
	}

	opts := defaultStepOptions()
	opts.queueAction = QueueGameFound
	opts.targetPlayer = m.players.Index(p)
	opts.teamX = ranks(m.players, best.TeamX)
	opts.teamY = ranks(m.players, best.TeamY)
	m.record(opts)

	m.heap.Push(best)

	heapOpts := defaultStepOptions()
	heapOpts.preserveQueue = true
	heapOpts.heapAction = HeapInsert
	heapOpts.targetGame = m.heap.Index(p.ID)
	m.record(heapOpts)
}

func ranks(players *SortedSet, team []*Player) []int {
	out := make([]int, 0, len(team))
	for _, p := range team {
		out = append(out, players.Index(p))
	}
	return out
}

// combinations enumerates all k-element subsets preserving input order.
func combinations(players []*Player, k int) [][]*Player {
	if k < 0 || k > len(players) {
		return nil
	}
	if k == 0 {
		return [][]*Player{nil}
	}
	var out [][]*Player
	current := make([]*Player, 0, k)
	var walk func(start int)
	walk = func(start int) {
		if len(current) == k {
			out = append(out, append([]*Player(nil), current...))
			return
		}
		for i := start; i <= len(players)-(k-len(current)); i++ {
			current = append(current, players[i])
			walk(i + 1)
			current = current[:len(current)-1]
		}
	}
	walk(0)
	return out
}

// difference returns the players in all that are not in exclude.
func difference(all, exclude []*Player) []*Player {
	excluded := make(map[int]bool, len(exclude))
	for _, p := range exclude {
		excluded[p.ID] = true
	}
	out := make([]*Player, 0, len(all)-len(exclude))
	for _, p := range all {
		if !excluded[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
