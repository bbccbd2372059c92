package engine

import (
	"math"
	"sync"
)

// Stats are the per-step statistic series the dashboard charts and the run
// store persists.
type Stats struct {
	QueueSize    []float64 `json:"queue_size"`
	HeapSize     []float64 `json:"heap_size"`
	MaxWaitTime  []float64 `json:"max_wait_time"`
	MinPriority  []float64 `json:"min_priority"`
	MinImbalance []float64 `json:"min_imbalance"`
}

// Recorder accumulates the step timeline of a matchmaking session. The
// manager appends synchronously; the dashboard reads concurrently while an
// insert or match runs in the background, so access is mutex-guarded.
type Recorder struct {
	mu    sync.Mutex
	steps []Step
	stats Stats
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// stepOptions carries the annotations for one recorded frame. Zero value
// means "idle frame": snapshot everything with no highlights.
type stepOptions struct {
	clear         bool
	preserveQueue bool
	preserveHeap  bool

	queueAction  QueueAction
	targetPlayer int
	windowStart  int
	windowEnd    int
	teamX        []int
	teamY        []int

	heapAction HeapAction
	targetGame int
}

func defaultStepOptions() stepOptions {
	return stepOptions{
		queueAction:  QueueIdle,
		heapAction:   HeapIdle,
		targetPlayer: -1,
		windowStart:  -1,
		windowEnd:    -1,
		targetGame:   -1,
	}
}

// record appends one frame. preserveQueue/preserveHeap reuse the previous
// frame's snapshot so an animation can highlight a heap change without the
// queue appearing to move (and vice versa). clear starts a fresh timeline,
// which the managers do at each user-level action boundary.
func (r *Recorder) record(opts stepOptions, players *SortedSet, heap *CandidateHeap, matches []*CandidateGame) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if opts.clear {
		r.steps = nil
	}

	step := Step{
		Queue: QueueSnapshot{
			Action:       opts.queueAction,
			TargetPlayer: opts.targetPlayer,
			WindowStart:  opts.windowStart,
			WindowEnd:    opts.windowEnd,
			TeamX:        opts.teamX,
			TeamY:        opts.teamY,
		},
		Heap: HeapSnapshot{
			Action:     opts.heapAction,
			TargetGame: opts.targetGame,
		},
		Matches: snapshotMatches(matches),
	}

	if opts.preserveQueue && len(r.steps) > 0 {
		step.Queue.State = r.steps[len(r.steps)-1].Queue.State
	} else {
		step.Queue.State = snapshotQueue(players)
	}
	if opts.preserveHeap && len(r.steps) > 0 {
		step.Heap.State = r.steps[len(r.steps)-1].Heap.State
	} else {
		step.Heap.State = snapshotHeap(heap)
	}

	r.steps = append(r.steps, step)

	r.stats.QueueSize = append(r.stats.QueueSize, float64(len(step.Queue.State)))
	r.stats.HeapSize = append(r.stats.HeapSize, float64(len(step.Heap.State)))
	maxWait := 0.0
	for _, p := range step.Queue.State {
		maxWait = math.Max(maxWait, p.WaitTime)
	}
	r.stats.MaxWaitTime = append(r.stats.MaxWaitTime, maxWait)
	if len(step.Heap.State) > 0 {
		top := step.Heap.State[0]
		if top.Priority != nil {
			r.stats.MinPriority = append(r.stats.MinPriority, *top.Priority)
		}
		r.stats.MinImbalance = append(r.stats.MinImbalance, top.Imbalance)
	}
}

// Steps returns a copy of the recorded timeline.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// Len reports the number of recorded steps.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Stats returns a copy of the statistic series.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		QueueSize:    append([]float64(nil), r.stats.QueueSize...),
		HeapSize:     append([]float64(nil), r.stats.HeapSize...),
		MaxWaitTime:  append([]float64(nil), r.stats.MaxWaitTime...),
		MinPriority:  append([]float64(nil), r.stats.MinPriority...),
		MinImbalance: append([]float64(nil), r.stats.MinImbalance...),
	}
}
