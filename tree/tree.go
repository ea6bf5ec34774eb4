package tree

import (
	"sync"

	"github.com/locutus2/ceres/kernel"
)

// Tree is a minimal arena-backed multi-tree, adapted from the teacher's
// mcts.MCTS: nodes live in one growable slice addressed by Ref, children
// are recorded as index slices, and a freelist lets nodes be recycled.
// Structural mutation (allocation, adding children) is guarded by mu;
// the per-node in-flight counters are atomics touched without mu, per
// the concurrency model in spec.md §5.
type Tree struct {
	mu       sync.RWMutex
	nodes    []Node
	children [][]Ref
	freelist []Ref
	root     Ref
}

// New constructs an empty tree with one root node.
func New(rootPrior float32) *Tree {
	t := &Tree{
		nodes:    make([]Node, 0, 1024),
		children: make([][]Ref, 0, 1024),
		root:     NilRef,
	}
	t.root = t.alloc(-1, rootPrior)
	return t
}

// Root returns the tree's root reference.
func (t *Tree) Root() Ref { return t.root }

func (t *Tree) alloc(move int32, prior float32) Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	if l := len(t.freelist); l > 0 {
		r := t.freelist[l-1]
		t.freelist = t.freelist[:l-1]
		t.nodes[r].reset(move, prior)
		t.children[r] = t.children[r][:0]
		return r
	}
	t.nodes = append(t.nodes, Node{})
	t.nodes[len(t.nodes)-1].reset(move, prior)
	t.children = append(t.children, nil)
	return Ref(len(t.nodes) - 1)
}

// AddChild allocates a new child of parent for move, with prior
// probability prior, and appends it to parent's children in order
// (children must be added left to right to keep invariant 1 meaningful).
func (t *Tree) AddChild(parent Ref, move int32, prior float32) Ref {
	child := t.alloc(move, prior)
	t.mu.Lock()
	t.children[parent] = append(t.children[parent], child)
	t.mu.Unlock()
	return child
}

// Children returns the ordered list of children of ref.
func (t *Tree) Children(ref Ref) []Ref {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.children[ref]
}

// Node returns a pointer to the node addressed by ref, inside the arena's
// current backing slice. A recycled slot is reset in place, but an alloc
// that grows the arena past its capacity copies every node to a new
// backing array, after which pointers obtained earlier refer to the old
// copies.
func (t *Tree) Node(ref Ref) *Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &t.nodes[ref]
}

// ParentView builds the read-only snapshot the kernel consumes for ref,
// as though gathered at this exact point in time (spec.md §5: the kernel
// is never required to be linearisable with concurrent mutation).
func (t *Tree) ParentView(ref Ref, isRoot bool) *kernel.ParentView {
	n := t.Node(ref)
	children := t.Children(ref)

	var sumPVisited float32
	var numExpanded int
	var checkmateKnown bool
	for _, c := range children {
		cn := t.Node(c)
		if cn.Visits() > 0 {
			sumPVisited += cn.Prior()
		}
		if cn.Expanded() {
			numExpanded++
		}
		if cn.IsForcedMate() {
			checkmateKnown = true
		}
	}

	return &kernel.ParentView{
		N:                           n.Visits(),
		NInFlight:                   n.InFlight(0),
		NInFlight2:                  n.InFlight(1),
		Q:                           n.Q(),
		SumPVisited:                 sumPVisited,
		NumPolicyMoves:              len(children),
		NumChildrenExpanded:         numExpanded,
		IsRoot:                      isRoot,
		Uncertainty:                 n.Uncertainty(),
		CheckmateKnownAmongChildren: checkmateKnown,
	}
}

// Backpropagate walks ref up to root applying Update(value), negating
// the value at every step the way the teacher's search pipeline does
// (mcts/search.go's `return -retVal`), and releases the in-flight credit
// the leaf applier had placed on the path.
func (t *Tree) Backpropagate(path []Ref, selector int, value float32) {
	for i := len(path) - 1; i >= 0; i-- {
		n := t.Node(path[i])
		n.Update(value)
		n.AddInFlight(selector, -1)
		value = -value
	}
}

// AddInFlightPath credits every node on path with one in-flight visit
// under selector, simulating the leaf applier staking a claim on a
// descent before the (possibly slow) evaluation completes.
func (t *Tree) AddInFlightPath(path []Ref, selector int) {
	for _, ref := range path {
		t.Node(ref).AddInFlight(selector, 1)
	}
}
