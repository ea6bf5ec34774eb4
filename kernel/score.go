package kernel

import "github.com/chewxy/math32"

// cpuctBase computes the exploration constant's log-growth term:
// CPUCT + CPUCTFactor * log((N + CPUCTBase) / CPUCTBase).
func cpuctBase(cfg *Config, nParent int32) float32 {
	if cfg.CPUCTFactor == 0 {
		return cfg.CPUCT
	}
	return cfg.CPUCT + cfg.CPUCTFactor*math32.Log((float32(nParent)+cfg.CPUCTBase)/cfg.CPUCTBase)
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// fpuValue computes the first-play-urgency substitute for a never-
// visited child (spec.md §4.D).
func fpuValue(cfg *Config, parent *ParentView) float32 {
	reduction := cfg.FPUReduction
	if parent.IsRoot {
		reduction = cfg.FPUReductionAtRoot
	}
	sumP := parent.SumPVisited
	if sumP < 0 {
		sumP = 0
	}
	v := parent.Q - reduction*math32.Sqrt(sumP)
	return clamp(v, -1, 1)
}

// childQ computes Q̄[i], the parent-perspective value estimate for child
// i given its current accumulated in-flight count (which may include
// visits already allocated earlier in the same multi-visit batch). W[i]
// is accumulated from child i's own side-to-move perspective, so virtual
// loss (a pessimistic placeholder outcome for the side selecting, i.e.
// the parent) is added to W before the negation that converts it to the
// parent's view: the more visits already in flight to a child, the less
// attractive that child looks to a concurrent selector.
func childQ(cfg *Config, parent *ParentView, s *Scratch, i int, inFlight int32, vloss float32, fpu float32) float32 {
	if s.N[i] == 0 {
		return fpu
	}
	denom := float32(s.N[i] + inFlight)
	if denom < 1 {
		denom = 1
	}
	return -(s.W[i] + vloss*float32(inFlight)) / denom
}

// childScore computes score[i] given its current in-flight count.
func childScore(cfg *Config, parent *ParentView, s *Scratch, i int, inFlight int32, c, sqrtNEff, vloss, fpu float32) float32 {
	q := childQ(cfg, parent, s, i, inFlight, vloss, fpu)
	denom := 1 + float32(s.N[i]) + float32(inFlight)
	return q + c*s.P[i]*sqrtNEff/denom
}

// effectiveVirtualLoss resolves the virtual-loss magnitude for a call,
// applying the dynamic boost to the second selector in dual-selector
// mode per spec.md §4.D.
func effectiveVirtualLoss(cfg *Config, selectorID SelectorID, dynamicVLossBoost float32) float32 {
	vloss := cfg.VirtualLoss
	if cfg.FlowDualSelectors && selectorID == SelectorSecondary {
		vloss += dynamicVLossBoost * cfg.DynamicVLossBoostSelector1
	}
	return vloss
}

// ComputeTopChildScores is the kernel entry point (spec.md §6). It scores
// every child of parent under a PUCT-style formula and, when
// numVisitsToCompute > 0, allocates that many integer visits across the
// scored children in a way equivalent to performing them one at a time
// and re-selecting after each (spec.md §4.D).
//
// scores and childVisitCounts must each have length >= parent.NumPolicyMoves;
// only indices [0, numToProcess) are written. childVisitCounts is left
// untouched when numVisitsToCompute == 0 (pure-score mode).
func ComputeTopChildScores(
	cfg *Config,
	parent *ParentView,
	gatherer ChildGatherer,
	scratch *Scratch,
	selectorID SelectorID,
	depth int,
	dynamicVLossBoost float32,
	maxChildIndex int,
	numVisitsToCompute int,
	scores []float32,
	childVisitCounts []int16,
	cpuctMultiplier float32,
	empiricalDistrib []float32,
	empiricalWeight float32,
	runningV []float32,
	rootNoise []float32,
	pruned []bool,
	lastChild int32,
) error {
	if cpuctMultiplier == 0 {
		cpuctMultiplier = 1.0
	}
	if maxChildIndex >= cfg.MaxChildren || maxChildIndex >= MaxChildren {
		return contractViolation("maxChildIndex %d out of range (MaxChildren=%d)", maxChildIndex, cfg.MaxChildren)
	}
	if numVisitsToCompute < 0 {
		return contractViolation("numVisitsToCompute must be >= 0, got %d", numVisitsToCompute)
	}
	if parent.NumChildrenExpanded > parent.NumPolicyMoves {
		return contractViolation("NumChildrenExpanded (%d) > NumPolicyMoves (%d)", parent.NumChildrenExpanded, parent.NumPolicyMoves)
	}

	numToProcess := maxChildIndex + 1
	if parent.NumPolicyMoves < numToProcess {
		numToProcess = parent.NumPolicyMoves
	}
	if cfg.MaxChildren < numToProcess {
		numToProcess = cfg.MaxChildren
	}
	if numToProcess <= 0 {
		return nil
	}
	if len(scores) < numToProcess {
		return contractViolation("scores slice too short: need %d, got %d", numToProcess, len(scores))
	}

	scratch.reset(numToProcess)
	gatherer.Gather(parent, selectorID, depth, lastChild, scratch)

	fixDegeneratePriors(scratch, numToProcess)

	in := &adjustInputs{
		parent:              parent,
		runningV:            runningV,
		rootNoise:           rootNoise,
		empiricalDistrib:    empiricalDistrib,
		empiricalWeight:     empiricalWeight,
		pruned:              pruned,
		depth:               depth,
		numVisitsToCompute:  numVisitsToCompute,
	}
	cpuctMultiplier, numToProcess = applyPriorAdjusters(cfg, scratch, in, numToProcess, cpuctMultiplier)
	if numToProcess <= 0 {
		return nil
	}

	vloss := effectiveVirtualLoss(cfg, selectorID, dynamicVLossBoost)
	fpu := fpuValue(cfg, parent)
	c := cpuctBase(cfg, parent.N) * cpuctMultiplier

	nEff := parent.N + parent.NInFlight
	if cfg.FlowDualSelectors && selectorID == SelectorSecondary {
		nEff = parent.N + parent.NInFlight2
	}
	if nEff < 0 {
		nEff = 0
	}
	sqrtNEff := math32.Sqrt(float32(nEff))

	for i := 0; i < numToProcess; i++ {
		scores[i] = childScore(cfg, parent, scratch, i, scratch.InFlight[i], c, sqrtNEff, vloss, fpu)
	}

	if numVisitsToCompute == 0 {
		return nil
	}
	if len(childVisitCounts) < numToProcess {
		return contractViolation("childVisitCounts slice too short: need %d, got %d", numToProcess, len(childVisitCounts))
	}
	for i := 0; i < numToProcess; i++ {
		childVisitCounts[i] = 0
	}

	allocateVisits(cfg, parent, scratch, numToProcess, c, nEff, vloss, fpu, numVisitsToCompute, childVisitCounts)

	fillHoles(parent, numToProcess, childVisitCounts)
	return nil
}

// fixDegeneratePriors implements spec.md §7 fault kind 2: NaN priors or
// an all-zero policy mass are clamped to a uniform distribution over
// numToProcess rather than ever propagating a NaN into scores.
func fixDegeneratePriors(s *Scratch, numToProcess int) {
	var sum float32
	hasNaN := false
	for i := 0; i < numToProcess; i++ {
		if math32.IsNaN(s.P[i]) {
			hasNaN = true
			continue
		}
		sum += s.P[i]
	}
	if !hasNaN && sum > 1e-8 {
		return
	}
	uniform := float32(1) / float32(numToProcess)
	for i := 0; i < numToProcess; i++ {
		s.P[i] = uniform
	}
}

// allocateVisits implements the multi-visit allocator of spec.md §4.D as
// an explicit next-highest-score walk: one of the allocation strategies
// the spec itself sanctions as equivalent to the sequential reference.
// Each of the V visits recomputes every child's score with that child's
// in-flight count bumped by whatever has already been allocated to it
// this call, then assigns the visit to the strict-max (ties broken by
// lowest index).
//
// baseNEff is N_parent_effective at the start of this call. Sequential
// single-visit re-selection increments the parent's effective visit
// count by one for every visit it performs, so this loop must do the
// same to every child's shared √N_parent_effective term as it assigns
// visits — using a value fixed for the whole batch would silently
// diverge from the sequential reference whenever it determines which
// child breaks a tie.
func allocateVisits(cfg *Config, parent *ParentView, s *Scratch, numToProcess int, c float32, baseNEff int32, vloss, fpu float32, budget int, childVisitCounts []int16) {
	var extra [MaxChildren]int32
	for v := 0; v < budget; v++ {
		sqrtNEff := math32.Sqrt(float32(baseNEff) + float32(v))
		best := -1
		var bestScore float32
		for i := 0; i < numToProcess; i++ {
			inFlight := s.InFlight[i] + extra[i]
			sc := childScore(cfg, parent, s, i, inFlight, c, sqrtNEff, vloss, fpu)
			if best == -1 || sc > bestScore {
				best = i
				bestScore = sc
			}
		}
		extra[best]++
		childVisitCounts[best]++
	}
}
