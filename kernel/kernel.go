// Package kernel implements the per-node child-selection kernel of an
// MCTS engine: given statistics already gathered for a parent node's
// children it scores every child under a PUCT-style formula and, given a
// visit budget, distributes the new visits across children in a way
// that matches performing them one at a time and re-selecting after
// each.
//
// The kernel is pure computation. It never allocates on the hot path,
// never blocks, and knows nothing about chess, neural networks, or the
// surrounding search driver; those are supplied by the caller through
// ParentView, ChildGatherer and the Config record.
package kernel

// MaxChildren bounds the scratch arrays' capacity. It must be at least
// as large as the largest legal move count the calling game can produce
// (256 is comfortably above chess's theoretical maximum of 218).
const MaxChildren = 256

// SelectorID distinguishes the two concurrent descent identities that
// may share one tree (see Config.FlowDualSelectors). The kernel branches
// on this value to choose which in-flight counter and virtual-loss
// magnitude applies.
type SelectorID int

const (
	// SelectorPrimary is the always-available descent identity.
	SelectorPrimary SelectorID = 0
	// SelectorSecondary is only meaningful when FlowDualSelectors is set.
	SelectorSecondary SelectorID = 1
)
