// Package tree provides a minimal arena-based MCTS tree that implements
// kernel.ChildGatherer (spec.md §4.B). It is the grounded reference
// collaborator the kernel package is tested and benchmarked against; a
// production engine would supply its own node representation instead.
package tree

// Ref addresses a node in a Tree's arena. It plays the role the
// teacher's Naughty index plays: a small integer handle instead of a
// pointer, so the arena can be grown and reset without pointer chasing.
type Ref int32

// NilRef is the sentinel "no node" reference. It is not Ref's zero value:
// a freshly allocated Tree's root lives at Ref(0), so -1 is reserved to
// keep an uninitialized Ref from aliasing a real node.
const NilRef Ref = -1

// Valid reports whether r addresses an allocated node.
func (r Ref) Valid() bool { return r >= 0 }
