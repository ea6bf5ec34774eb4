package kernel

import "github.com/chewxy/math32"

// adjustInputs bundles the optional, caller-supplied data that feeds the
// prior adjusters (spec.md §4.C). Every field beyond Scratch is optional
// and nil/zero means "this step does not apply".
type adjustInputs struct {
	parent *ParentView

	// RunningV supplies the root-move tracker's recent-outcome estimate
	// per child, used only by the running-Q blend (step 1).
	runningV []float32

	// RootNoise is a pre-sampled Dirichlet(alpha) draw of length
	// numToProcess, used only by the supplemented root-noise step 0.
	rootNoise []float32

	empiricalDistrib []float32
	empiricalWeight  float32

	// pruned[i] is true when an external pruning pass has flagged child
	// i as pruned (root-pruning override, step 5).
	pruned []bool

	depth               int
	numVisitsToCompute  int
}

// applyPriorAdjusters runs steps 0-6 of spec.md §4.C, in the fixed order
// the spec mandates, over scratch[0:numToProcess). It returns the
// effective cpuctMultiplier and numToProcess after checkmate-certainty
// propagation's optional "fully collapse" mode (step 6), which may
// shrink numToProcess to the expanded prefix only.
func applyPriorAdjusters(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int, cpuctMultiplier float32) (float32, int) {
	applyRootNoise(cfg, s, in, numToProcess)
	applyRunningQBlend(cfg, s, in, numToProcess)
	applyEmpiricalBlend(cfg, s, in, numToProcess)
	applyPolicyDecay(cfg, s, in, numToProcess)
	applyUncertaintyBoost(cfg, s, in, numToProcess)
	applyRootPruningOverride(cfg, s, in, numToProcess)
	cpuctMultiplier, numToProcess = applyCheckmatePropagation(cfg, in, numToProcess, cpuctMultiplier)
	return cpuctMultiplier, numToProcess
}

// applyRootNoise implements SPEC_FULL.md §4.C step 0: a caller-supplied
// Dirichlet sample blended into priors at the root, the AlphaZero/Leela
// self-play exploration feature this spec's distillation dropped. Off by
// default (RootNoiseWeight == 0).
func applyRootNoise(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if !in.parent.IsRoot || cfg.RootNoiseWeight <= 0 || len(in.rootNoise) < numToProcess {
		return
	}
	eps := cfg.RootNoiseWeight
	for i := 0; i < numToProcess; i++ {
		s.P[i] = (1-eps)*s.P[i] + eps*in.rootNoise[i]
	}
}

// applyRunningQBlend implements spec.md §4.C step 1.
func applyRunningQBlend(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if !in.parent.IsRoot || in.parent.N <= 500 || cfg.FracWeightUseRunningQ <= 0 || len(in.runningV) < numToProcess {
		return
	}
	f := cfg.FracWeightUseRunningQ
	for i := 0; i < numToProcess; i++ {
		s.W[i] = (1-f)*s.W[i] + f*in.runningV[i]*float32(s.N[i])
	}
}

// applyEmpiricalBlend implements spec.md §4.C step 2.
func applyEmpiricalBlend(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if in.empiricalWeight <= 0 || len(in.empiricalDistrib) < numToProcess {
		return
	}
	w := in.empiricalWeight
	for i := 0; i < numToProcess; i++ {
		s.P[i] = (1-w)*s.P[i] + w*in.empiricalDistrib[i]
	}
}

// applyPolicyDecay implements spec.md §4.C step 3: sharpen the root
// policy over time so the best arm gets identified faster as the search
// accumulates visits. Raising each P[i] to the softmax exponent (itself
// growing slowly with N) rather than to its reciprocal is what actually
// sharpens a distribution over (0,1) values — an exponent below 1 pulls
// small probabilities toward 1 faster than large ones and flattens the
// distribution instead, which matches neither the stated rationale nor
// the larger-prior-grows-larger behavior this step is meant to produce.
func applyPolicyDecay(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if !in.parent.IsRoot || in.depth != 0 || in.parent.N <= 100 || cfg.PolicyDecayFactor <= 0 {
		return
	}
	var sum float32
	for i := 0; i < numToProcess; i++ {
		sum += s.P[i]
	}
	if sum <= 0 {
		return
	}
	f := cfg.PolicyDecayFactor
	e := cfg.PolicyDecayExponent
	softmax := 1 + math32.Log(1+f*2e-4*math32.Pow(float32(in.parent.N), e))
	if softmax <= 0 {
		return
	}
	var newSum float32
	for i := 0; i < numToProcess; i++ {
		p := s.P[i]
		if p < 0 {
			p = 0
		}
		s.P[i] = math32.Pow(p, softmax)
		newSum += s.P[i]
	}
	if newSum <= 0 {
		return
	}
	scale := sum / newSum
	for i := 0; i < numToProcess; i++ {
		s.P[i] *= scale
	}
}

// applyUncertaintyBoost implements spec.md §4.C step 4, using the
// single-division semantics decided in SPEC_FULL.md's Open Question (a):
// the N-weighted average of applied multipliers is computed once and
// every adjusted P[i] is divided by it once.
func applyUncertaintyBoost(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if !cfg.EnableUncertaintyBoosting || int(in.parent.N) < cfg.MinNEstimate || cfg.ExplorationMultiplier == nil {
		return
	}
	parentMAD := in.parent.Uncertainty
	var weightedSum, weightTotal float32
	// Fixed-size stack arrays: numToProcess <= MaxChildren, so this
	// never allocates on the heap the way a make([]bool, n) would.
	var adjusted [MaxChildren]bool
	for i := 0; i < numToProcess && i < in.parent.NumChildrenExpanded; i++ {
		if int(s.N[i]) < cfg.MinNEstimate {
			continue
		}
		m := cfg.ExplorationMultiplier(s.U[i], parentMAD)
		adjusted[i] = true
		s.P[i] *= m
		weightedSum += float32(s.N[i]) * m
		weightTotal += float32(s.N[i])
	}
	if weightTotal <= 0 {
		return
	}
	avg := weightedSum / weightTotal
	if avg <= 0 {
		return
	}
	for i := 0; i < numToProcess; i++ {
		if adjusted[i] {
			s.P[i] /= avg
		}
	}
}

// applyRootPruningOverride implements spec.md §4.C step 5. Unvisited
// pruned moves are deliberately left alone: suppressing them would
// permanently block their subtree from ever being descended.
func applyRootPruningOverride(cfg *Config, s *Scratch, in *adjustInputs, numToProcess int) {
	if !in.parent.IsRoot || in.numVisitsToCompute <= 0 || len(in.pruned) < numToProcess {
		return
	}
	for i := 0; i < numToProcess; i++ {
		if in.pruned[i] && s.N[i] > 0 {
			s.W[i] = math32.Inf(1)
		}
	}
}

// applyCheckmatePropagation implements spec.md §4.C step 6.
func applyCheckmatePropagation(cfg *Config, in *adjustInputs, numToProcess int, cpuctMultiplier float32) (float32, int) {
	if !cfg.CheckmateCertaintyPropagationEnabled || !in.parent.CheckmateKnownAmongChildren {
		return cpuctMultiplier, numToProcess
	}
	if cfg.CheckmateFullyCollapse {
		if in.parent.NumChildrenExpanded < numToProcess {
			numToProcess = in.parent.NumChildrenExpanded
		}
		return 0, numToProcess
	}
	return 0.1, numToProcess
}
