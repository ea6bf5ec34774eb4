package tree

import (
	"time"

	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// RootNoise samples a Dirichlet(alpha) draw of length n, for use as the
// supplemented root exploration noise described in SPEC_FULL.md §4.C
// step 0. Grounded in the teacher's mcts.New, which builds the same
// distmv.NewDirichlet + golang.org/x/exp/rand pairing to seed root
// exploration noise for self-play.
func RootNoise(n int, alpha float64) []float32 {
	if n <= 0 {
		return nil
	}
	a := make([]float64, n)
	for i := range a {
		a[i] = alpha
	}
	dist := distmv.NewDirichlet(a, distrand.NewSource(uint64(time.Now().UnixNano())))
	sample := dist.Rand(nil)
	out := make([]float32, n)
	for i, v := range sample {
		out[i] = float32(v)
	}
	return out
}
