package tree

import "github.com/locutus2/ceres/kernel"

// NodeGatherer adapts one (Tree, Ref) pair to kernel.ChildGatherer. It is
// a two-word value with no mutable state, so it can be reused across
// kernel calls, and concurrent callers gathering different parents never
// step on each other: each carries its own ref instead of sharing
// mutable state on Tree (spec.md §4.B / §5).
type NodeGatherer struct {
	Tree *Tree
	Ref  Ref
}

// Gather implements kernel.ChildGatherer, fulfilling spec.md §4.B's
// external contract: populate scratch[0:numToProcess) with each child's
// current N, InFlight, P, W and U.
func (g NodeGatherer) Gather(parent *kernel.ParentView, selectorID kernel.SelectorID, depth int, lastChild int32, scratch *kernel.Scratch) int {
	children := g.Tree.Children(g.Ref)

	numToProcess := len(children)
	if numToProcess > len(scratch.N) {
		numToProcess = len(scratch.N)
	}

	selector := 0
	if selectorID == kernel.SelectorSecondary {
		selector = 1
	}

	for i := 0; i < numToProcess; i++ {
		cn := g.Tree.Node(children[i])
		scratch.N[i] = cn.Visits()
		scratch.InFlight[i] = cn.InFlight(selector)
		scratch.P[i] = cn.Prior()
		scratch.W[i] = cn.ValueSum()
		scratch.U[i] = cn.Uncertainty()
	}
	return numToProcess
}
