// Command benchkernel drives the PUCT child-selection kernel over the
// standard starting chess position, the way the teacher's cmd/infer drove
// a trained network over real games. It exists to exercise kernel, tree,
// evaluator and game together end to end; it trains nothing and plays no
// full games.
package main

import (
	"flag"
	"log"

	"github.com/pkg/errors"

	"github.com/locutus2/ceres/evaluator"
	"github.com/locutus2/ceres/game"
	"github.com/locutus2/ceres/kernel"
	"github.com/locutus2/ceres/tree"
)

var (
	numVisits = flag.Int("visits", 64, "number of visits to allocate at the root per batch")
	batches   = flag.Int("batches", 4, "number of sequential allocation batches to run")
	rootNoise = flag.Float64("root_noise", 0, "weight of Dirichlet root exploration noise, 0 disables it")
)

func main() {
	flag.Parse()

	cfg := kernel.DefaultConfig()
	cfg.RootNoiseWeight = float32(*rootNoise)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid kernel config: %+v", errors.WithStack(err))
	}

	pos := game.NewPosition()
	inf := evaluator.Material{}
	policy, _ := inf.Infer(pos.Game())
	moves := pos.LegalMoves()

	t := tree.New(1.0)
	root := t.Root()
	for i, m := range moves {
		prior := float32(1) / float32(len(moves))
		if i < len(policy) {
			prior = policy[i]
		}
		t.AddChild(root, int32(i), prior)
	}

	scratchPool := kernel.NewScratchPool()
	scratch := scratchPool.Get()
	defer scratchPool.Put(scratch)

	scores := make([]float32, len(moves))
	visitCounts := make([]int16, len(moves))
	gatherer := tree.NodeGatherer{Tree: t, Ref: root}

	for b := 0; b < *batches; b++ {
		view := t.ParentView(root, true)

		var noise []float32
		if cfg.RootNoiseWeight > 0 {
			noise = tree.RootNoise(len(moves), float64(cfg.RootNoiseAlpha))
		}

		if err := kernel.ComputeTopChildScores(
			&cfg, view, gatherer, scratch,
			kernel.SelectorPrimary, 0, 0,
			len(moves)-1, *numVisits,
			scores, visitCounts, 1.0,
			nil, 0, nil, noise, nil, -1,
		); err != nil {
			log.Fatalf("kernel call failed: %+v", err)
		}

		children := t.Children(root)
		for i, child := range children {
			if i >= len(visitCounts) || visitCounts[i] == 0 {
				continue
			}
			cn := t.Node(child)
			for v := int16(0); v < visitCounts[i]; v++ {
				cn.AddInFlight(0, 1)
				_, value := inf.Infer(pos.Game())
				cn.Update(-value)
				cn.AddInFlight(0, -1)
			}
		}

		best := argmaxScore(scores[:len(moves)])
		log.Printf("batch %d: allocated %d visits, best child %d (move %v) score=%.4f",
			b, *numVisits, best, moves[best], scores[best])
	}
}

func argmaxScore(scores []float32) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
