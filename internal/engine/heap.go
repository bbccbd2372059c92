package engine

// CandidateHeap is a min-heap of candidate games with a uniqueness
// constraint: one game per anchor player. Pushing a game whose anchor is
// already present replaces the existing entry in place. An index map from
// anchor ID to slot supports O(1) lookup and O(log n) removal.
type CandidateHeap struct {
	items []*CandidateGame
	index map[int]int // anchor ID -> slot
}

// NewCandidateHeap creates an empty heap.
func NewCandidateHeap() *CandidateHeap {
	return &CandidateHeap{index: make(map[int]int)}
}

// Len reports the number of candidate games.
func (h *CandidateHeap) Len() int { return len(h.items) }

// Peek returns the lowest-score game without removing it, or nil.
func (h *CandidateHeap) Peek() *CandidateGame {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// At returns the game at heap slot i, or nil when out of range. The
// dashboard uses this to render the array form of the heap.
func (h *CandidateHeap) At(i int) *CandidateGame {
	if i < 0 || i >= len(h.items) {
		return nil
	}
	return h.items[i]
}

// Contains reports whether an anchor has a game in the heap.
func (h *CandidateHeap) Contains(anchorID int) bool {
	_, ok := h.index[anchorID]
	return ok
}

// Index returns the slot of an anchor's game, or -1.
func (h *CandidateHeap) Index(anchorID int) int {
	if i, ok := h.index[anchorID]; ok {
		return i
	}
	return -1
}

// Push inserts a game, or replaces the anchor's existing game and restores
// the heap order from its slot.
func (h *CandidateHeap) Push(game *CandidateGame) {
	id := game.Anchor.ID
	if i, ok := h.index[id]; ok {
		h.items[i] = game
		h.fix(i)
		return
	}
	h.items = append(h.items, game)
	i := len(h.items) - 1
	h.index[id] = i
	h.siftUp(i)
}

// Remove deletes the anchor's game if present.
func (h *CandidateHeap) Remove(anchorID int) {
	i, ok := h.index[anchorID]
	if !ok {
		return
	}
	last := len(h.items) - 1
	if i == last {
		h.items = h.items[:last]
		delete(h.index, anchorID)
		return
	}
	h.swap(i, last)
	h.items = h.items[:last]
	delete(h.index, anchorID)
	h.fix(i)
}

// Games returns the heap contents in slot order.
func (h *CandidateHeap) Games() []*CandidateGame {
	out := make([]*CandidateGame, len(h.items))
	copy(out, h.items)
	return out
}

func (h *CandidateHeap) fix(i int) {
	if i > 0 && h.items[i].Less(h.items[(i-1)/2]) {
		h.siftUp(i)
		return
	}
	h.siftDown(i)
}

func (h *CandidateHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.items[i].Less(h.items[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *CandidateHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		if l := 2*i + 1; l < n && h.items[l].Less(h.items[smallest]) {
			smallest = l
		}
		if r := 2*i + 2; r < n && h.items[r].Less(h.items[smallest]) {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

func (h *CandidateHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].Anchor.ID] = i
	h.index[h.items[j].Anchor.ID] = j
}
