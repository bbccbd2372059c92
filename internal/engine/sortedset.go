package engine

// SortedSet keeps the matchmaking queue in (skill, id) order using an AVL
// tree augmented with subtree sizes, so both rank queries and index slices
// run in O(log n). The skill-window search depends on the slice form.
type SortedSet struct {
	root *treeNode
}

type treeNode struct {
	player *Player
	left   *treeNode
	right  *treeNode
	height int
	size   int
}

// NewSortedSet creates a set optionally seeded with players.
func NewSortedSet(players ...*Player) *SortedSet {
	s := &SortedSet{}
	for _, p := range players {
		s.Add(p)
	}
	return s
}

// Len reports the number of players in the set.
func (s *SortedSet) Len() int { return nodeSize(s.root) }

// Add inserts a player; duplicates (same skill and ID) are ignored.
func (s *SortedSet) Add(p *Player) {
	s.root = insertNode(s.root, p)
}

// Remove deletes a player. Reports whether it was present.
func (s *SortedSet) Remove(p *Player) bool {
	if !s.Contains(p) {
		return false
	}
	s.root = deleteNode(s.root, p)
	return true
}

// Contains reports membership.
func (s *SortedSet) Contains(p *Player) bool {
	node := s.root
	for node != nil {
		switch {
		case p.Less(node.player):
			node = node.left
		case node.player.Less(p):
			node = node.right
		default:
			return true
		}
	}
	return false
}

// At returns the player at the given rank, or nil when out of range.
func (s *SortedSet) At(i int) *Player {
	if i < 0 || i >= s.Len() {
		return nil
	}
	node := s.root
	for {
		leftSize := nodeSize(node.left)
		switch {
		case i < leftSize:
			node = node.left
		case i == leftSize:
			return node.player
		default:
			i -= leftSize + 1
			node = node.right
		}
	}
}

// Index returns the rank of a player, or -1 if absent.
func (s *SortedSet) Index(p *Player) int {
	rank := 0
	node := s.root
	for node != nil {
		switch {
		case p.Less(node.player):
			node = node.left
		case node.player.Less(p):
			rank += nodeSize(node.left) + 1
			node = node.right
		default:
			return rank + nodeSize(node.left)
		}
	}
	return -1
}

// Slice returns players with ranks in [start, end). Bounds are clamped.
func (s *SortedSet) Slice(start, end int) []*Player {
	if start < 0 {
		start = 0
	}
	if end > s.Len() {
		end = s.Len()
	}
	if start >= end {
		return nil
	}
	out := make([]*Player, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, s.At(i))
	}
	return out
}

// All returns every player in sorted order.
func (s *SortedSet) All() []*Player {
	out := make([]*Player, 0, s.Len())
	var walk func(*treeNode)
	walk = func(n *treeNode) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.player)
		walk(n.right)
	}
	walk(s.root)
	return out
}

func nodeHeight(n *treeNode) int {
	if n == nil {
		return 0
	}
	return n.height
}

func nodeSize(n *treeNode) int {
	if n == nil {
		return 0
	}
	return n.size
}

func updateNode(n *treeNode) {
	n.height = 1 + max(nodeHeight(n.left), nodeHeight(n.right))
	n.size = 1 + nodeSize(n.left) + nodeSize(n.right)
}

func balanceFactor(n *treeNode) int {
	return nodeHeight(n.left) - nodeHeight(n.right)
}

func rotateLeft(root *treeNode) *treeNode {
	pivot := root.right
	root.right = pivot.left
	pivot.left = root
	updateNode(root)
	updateNode(pivot)
	return pivot
}

func rotateRight(root *treeNode) *treeNode {
	pivot := root.left
	root.left = pivot.right
	pivot.right = root
	updateNode(root)
	updateNode(pivot)
	return pivot
}

func rebalance(n *treeNode) *treeNode {
	updateNode(n)
	bf := balanceFactor(n)
	if bf > 1 {
		if balanceFactor(n.left) < 0 {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	}
	if bf < -1 {
		if balanceFactor(n.right) > 0 {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

func insertNode(n *treeNode, p *Player) *treeNode {
	if n == nil {
		return &treeNode{player: p, height: 1, size: 1}
	}
	switch {
	case p.Less(n.player):
		n.left = insertNode(n.left, p)
	case n.player.Less(p):
		n.right = insertNode(n.right, p)
	default:
		return n
	}
	return rebalance(n)
}

func deleteNode(n *treeNode, p *Player) *treeNode {
	if n == nil {
		return nil
	}
	switch {
	case p.Less(n.player):
		n.left = deleteNode(n.left, p)
	case n.player.Less(p):
		n.right = deleteNode(n.right, p)
	default:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		successor := n.right
		for successor.left != nil {
			successor = successor.left
		}
		n.player = successor.player
		n.right = deleteNode(n.right, successor.player)
	}
	return rebalance(n)
}
