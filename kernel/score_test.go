package kernel

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticGatherer feeds ComputeTopChildScores fixed per-child arrays,
// standing in for the external gather contract (spec.md §4.B) so the
// kernel's own logic can be tested in isolation.
type staticGatherer struct {
	n        []int32
	inFlight []int32
	p        []float32
	w        []float32
	u        []float32
}

func (g staticGatherer) Gather(parent *ParentView, selectorID SelectorID, depth int, lastChild int32, s *Scratch) int {
	n := len(g.n)
	for i := 0; i < n; i++ {
		s.N[i] = g.n[i]
		if g.inFlight != nil {
			s.InFlight[i] = g.inFlight[i]
		}
		s.P[i] = g.p[i]
		if g.w != nil {
			s.W[i] = g.w[i]
		}
		if g.u != nil {
			s.U[i] = g.u[i]
		}
	}
	return n
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.CPUCT = 1.4
	cfg.CPUCTFactor = 0
	cfg.FPUReduction = 0
	cfg.FPUReductionAtRoot = 0
	return cfg
}

// scenario 1: two children, uniform prior, no visits yet, budget 4.
func TestComputeTopChildScores_UniformSplit(t *testing.T) {
	cfg := testConfig()
	parent := &ParentView{N: 0, NumPolicyMoves: 2, NumChildrenExpanded: 0}
	g := staticGatherer{n: []int32{0, 0}, p: []float32{0.5, 0.5}}

	scratch := new(Scratch)
	scores := make([]float32, 2)
	visits := make([]int16, 2)

	err := ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, 1, 4, scores, visits, 1.0, nil, 0, nil, nil, nil, -1)
	require.NoError(t, err)

	var total int16
	for _, v := range visits {
		total += v
	}
	assert.EqualValues(t, 4, total)
	assert.Equal(t, int16(2), visits[0])
	assert.Equal(t, int16(2), visits[1])
}

// scenario 2: strong prior bias concentrates most of the budget on the
// favoured child.
func TestComputeTopChildScores_StrongPriorBias(t *testing.T) {
	cfg := testConfig()
	cfg.CPUCT = 1.4
	parent := &ParentView{N: 0, NumPolicyMoves: 2, NumChildrenExpanded: 0}
	g := staticGatherer{n: []int32{0, 0}, p: []float32{0.9, 0.1}}

	scratch := new(Scratch)
	scores := make([]float32, 2)
	visits := make([]int16, 2)

	err := ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, 1, 10, scores, visits, 1.0, nil, 0, nil, nil, nil, -1)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, visits[0], int16(8))
	assert.LessOrEqual(t, visits[0], int16(10))
	assert.EqualValues(t, 10, visits[0]+visits[1])
}

// scenario 3: a visited, root-pruned move receives no further visits.
func TestComputeTopChildScores_RootPruned(t *testing.T) {
	cfg := testConfig()
	parent := &ParentView{N: 10, NumPolicyMoves: 3, NumChildrenExpanded: 3, IsRoot: true}
	g := staticGatherer{
		n: []int32{5, 0, 0},
		p: []float32{0.4, 0.3, 0.3},
		w: []float32{2, 0, 0},
	}
	pruned := []bool{true, false, false}

	scratch := new(Scratch)
	scores := make([]float32, 3)
	visits := make([]int16, 3)

	err := ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, 2, 8, scores, visits, 1.0, nil, 0, nil, nil, pruned, -1)
	require.NoError(t, err)

	assert.EqualValues(t, 0, visits[0])
	assert.EqualValues(t, 8, visits[1]+visits[2])
}

// scenario 4: checkmate-certainty propagation concentrates most visits
// on the proven-winning child.
func TestComputeTopChildScores_CheckmateKnown(t *testing.T) {
	cfg := testConfig()
	cfg.CheckmateCertaintyPropagationEnabled = true
	parent := &ParentView{
		N: 50, NumPolicyMoves: 3, NumChildrenExpanded: 3,
		CheckmateKnownAmongChildren: true,
	}
	g := staticGatherer{
		n: []int32{20, 10, 10},
		p: []float32{0.5, 0.3, 0.2},
		// child 0 is a forced mate: a -∞ W from its own perspective, so
		// virtual loss dilution can never erode its dominance within one
		// batch, the same extreme-sentinel trick root-pruning uses.
		w: []float32{math32.Inf(-1), 2, 2},
	}

	scratch := new(Scratch)
	scores := make([]float32, 3)
	visits := make([]int16, 3)

	err := ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, 2, 100, scores, visits, 1.0, nil, 0, nil, nil, nil, -1)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, visits[0], int16(90))
}

// scenario 5: hole filling shifts a visit left of unexpanded children.
func TestFillHoles_ShiftsOneVisitLeft(t *testing.T) {
	parent := &ParentView{NumChildrenExpanded: 0}
	visits := []int16{0, 0, 3, 2}
	fillHoles(parent, 4, visits)
	assert.Equal(t, []int16{1, 0, 2, 2}, visits)
}

func TestFillHoles_OnlyClosesFirstGapPerCall(t *testing.T) {
	parent := &ParentView{NumChildrenExpanded: 0}
	visits := []int16{0, 0, 3, 2}
	fillHoles(parent, 4, visits)
	fillHoles(parent, 4, visits)
	assert.Equal(t, []int16{1, 1, 1, 2}, visits)
}

func TestFillHoles_NoGapIsNoOp(t *testing.T) {
	parent := &ParentView{NumChildrenExpanded: 2}
	visits := []int16{3, 1, 0, 0}
	fillHoles(parent, 4, visits)
	assert.Equal(t, []int16{3, 1, 0, 0}, visits)
}

// Budget conservation, non-negativity and idempotence of pure-score mode
// across a spread of random inputs (spec.md §8).
func TestComputeTopChildScores_Properties(t *testing.T) {
	cfg := testConfig()
	r := rand.New(rand.NewSource(1))

	for trial := 0; trial < 200; trial++ {
		n := 2 + r.Intn(6)
		g := staticGatherer{
			n: make([]int32, n), inFlight: make([]int32, n),
			p: make([]float32, n), w: make([]float32, n), u: make([]float32, n),
		}
		var sum float32
		for i := 0; i < n; i++ {
			g.n[i] = int32(r.Intn(20))
			g.p[i] = r.Float32()
			sum += g.p[i]
			g.w[i] = (r.Float32()*2 - 1) * float32(g.n[i])
		}
		for i := range g.p {
			g.p[i] /= sum
		}
		parent := &ParentView{N: int32(r.Intn(1000)), NumPolicyMoves: n, NumChildrenExpanded: n}

		budget := r.Intn(65)
		scratch := new(Scratch)
		scores := make([]float32, n)
		visits := make([]int16, n)
		err := ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, n-1, budget, scores, visits, 1.0, nil, 0, nil, nil, nil, -1)
		require.NoError(t, err)

		var total int16
		for _, v := range visits {
			require.GreaterOrEqual(t, v, int16(0))
			total += v
		}
		assert.EqualValues(t, budget, total)

		scoresA := make([]float32, n)
		visitsA := make([]int16, n)
		require.NoError(t, ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, n-1, 0, scoresA, visitsA, 1.0, nil, 0, nil, nil, nil, -1))
		scoresB := make([]float32, n)
		require.NoError(t, ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, n-1, 0, scoresB, visitsA, 1.0, nil, 0, nil, nil, nil, -1))
		assert.Equal(t, scoresA, scoresB)
	}
}

// Equivalence to the sequential single-visit reference for V <= 64.
func TestComputeTopChildScores_MatchesSequentialReference(t *testing.T) {
	cfg := testConfig()
	r := rand.New(rand.NewSource(7))

	for trial := 0; trial < 500; trial++ {
		n := 2 + r.Intn(5)
		nArr := make([]int32, n)
		pArr := make([]float32, n)
		wArr := make([]float32, n)
		var sum float32
		for i := 0; i < n; i++ {
			nArr[i] = int32(r.Intn(10))
			pArr[i] = r.Float32() + 0.01
			sum += pArr[i]
			wArr[i] = (r.Float32()*2 - 1) * float32(nArr[i])
		}
		for i := range pArr {
			pArr[i] /= sum
		}
		parent := &ParentView{N: int32(r.Intn(200)), NumPolicyMoves: n, NumChildrenExpanded: n}
		budget := 1 + r.Intn(64)

		g := staticGatherer{n: nArr, p: pArr, w: wArr}
		scratch := new(Scratch)
		scores := make([]float32, n)
		visits := make([]int16, n)
		require.NoError(t, ComputeTopChildScores(&cfg, parent, g, scratch, SelectorPrimary, 0, 0, n-1, budget, scores, visits, 1.0, nil, 0, nil, nil, nil, -1))

		want := sequentialReferenceAllocate(&cfg, parent, nArr, pArr, wArr, budget)
		assert.Equal(t, want, visits)
	}
}

// sequentialReferenceAllocate performs the naive one-visit-at-a-time
// selection loop spec.md §4.D describes as the ground truth, directly
// against the raw child arrays (no prior adjusters), as a reference
// oracle independent of the kernel's own allocateVisits implementation.
func sequentialReferenceAllocate(cfg *Config, parent *ParentView, n []int32, p []float32, w []float32, budget int) []int16 {
	visits := make([]int16, len(n))
	inFlight := make([]int32, len(n))
	c := cpuctBase(cfg, parent.N) * 1.0
	for v := 0; v < budget; v++ {
		sqrtNEff := math32.Sqrt(float32(parent.N) + float32(v))
		best := -1
		var bestScore float32
		for i := range n {
			var q float32
			if n[i] == 0 {
				q = fpuValue(cfg, parent)
			} else {
				q = -(w[i] + cfg.VirtualLoss*float32(inFlight[i])) / float32(n[i]+inFlight[i])
			}
			denom := 1 + float32(n[i]) + float32(inFlight[i])
			score := q + c*p[i]*sqrtNEff/denom
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		inFlight[best]++
		visits[best]++
	}
	return visits
}
