package kernel

// fillHoles implements spec.md §4.E. Scanning from NumChildrenExpanded to
// numToProcess-1, the first unallocated index that has an allocated
// index to its right borrows one visit from the nearest such index,
// restoring invariant 1 (no gap left of an unexpanded child once these
// visits are applied). Only the first gap in a call is closed; per
// spec.md's Open Question (b) a caller that invokes the kernel
// repeatedly will close any remaining gaps over subsequent calls.
func fillHoles(parent *ParentView, numToProcess int, childVisitCounts []int16) {
	start := parent.NumChildrenExpanded
	if start < 0 {
		start = 0
	}
	for i := start; i < numToProcess; i++ {
		if childVisitCounts[i] != 0 {
			continue
		}
		for j := i + 1; j < numToProcess; j++ {
			if childVisitCounts[j] > 0 {
				childVisitCounts[i] = 1
				childVisitCounts[j]--
				return
			}
		}
		// No visits anywhere to the right of i: nothing to shift, and
		// no gap exists past this point either.
		return
	}
}
