package tree

import (
	"sync"
	"sync/atomic"

	"github.com/chewxy/math32"
)

// Node is one arena slot. Completed-visit bookkeeping (visits, valueSum,
// the running mean-absolute-deviation) is guarded by mu, matching the
// teacher's mcts.Node; the two in-flight counters are mutated with
// atomics from outside the kernel by the leaf applier (spec.md §5), so
// they are plain int32 fields accessed only through atomic ops.
type Node struct {
	mu sync.Mutex

	move   int32
	prior  float32 // P(s,a)
	visits int32   // N(s,a): completed visits only
	valueSum float32 // W(s,a): sum, not mean, of backed-up values
	madSum   float32 // running sum of |v - mean| at update time

	nInFlight  int32 // atomic: selector 0
	nInFlight2 int32 // atomic: selector 1

	isForcedMate bool
	expanded     bool
}

func (n *Node) reset(move int32, prior float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.move = move
	n.prior = prior
	n.visits = 0
	n.valueSum = 0
	n.madSum = 0
	atomic.StoreInt32(&n.nInFlight, 0)
	atomic.StoreInt32(&n.nInFlight2, 0)
	n.isForcedMate = false
	n.expanded = false
}

// Update folds a backed-up value into this node's statistics. Called
// once per completed visit, from the node's own perspective.
func (n *Node) Update(v float32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	mean := float32(0)
	if n.visits > 0 {
		mean = n.valueSum / float32(n.visits)
	}
	n.madSum += math32.Abs(v - mean)
	n.valueSum += v
	n.visits++
	n.expanded = true
}

// ValueSum returns W(s,a), the raw accumulated (not averaged) value.
func (n *Node) ValueSum() float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.valueSum
}

// Q returns the node's own mean value (its perspective, not its
// parent's).
func (n *Node) Q() float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.visits == 0 {
		return 0
	}
	return n.valueSum / float32(n.visits)
}

// Uncertainty returns the node's running mean-absolute-deviation, the
// statistic spec.md calls Uncertainty / U.
func (n *Node) Uncertainty() float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.visits == 0 {
		return 0
	}
	return n.madSum / float32(n.visits)
}

// Visits returns N(s,a).
func (n *Node) Visits() int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.visits
}

// Prior returns P(s,a).
func (n *Node) Prior() float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.prior
}

// Move returns the move index this node represents.
func (n *Node) Move() int32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.move
}

// Expanded reports whether this node has accumulated at least one
// completed visit.
func (n *Node) Expanded() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.expanded
}

// MarkForcedMate records that this node is a proven forced win, which
// Tree.ParentView reports to the kernel as the parent's
// CheckmateKnownAmongChildren.
func (n *Node) MarkForcedMate() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.isForcedMate = true
}

// IsForcedMate reports whether MarkForcedMate was called on this node.
func (n *Node) IsForcedMate() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isForcedMate
}

// AddInFlight atomically adjusts the in-flight counter for selectorID.
// This is the leaf applier's job (spec.md §5): it happens outside the
// kernel, concurrently with other workers' Gather calls, which is why
// it is an atomic add rather than something guarded by mu.
func (n *Node) AddInFlight(selector int, delta int32) {
	if selector == 1 {
		atomic.AddInt32(&n.nInFlight2, delta)
		return
	}
	atomic.AddInt32(&n.nInFlight, delta)
}

// InFlight returns a point-in-time read of the in-flight counter for
// selectorID (not required to be linearisable with concurrent AddInFlight
// calls, per spec.md §5).
func (n *Node) InFlight(selector int) int32 {
	if selector == 1 {
		return atomic.LoadInt32(&n.nInFlight2)
	}
	return atomic.LoadInt32(&n.nInFlight)
}
