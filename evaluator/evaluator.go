// Package evaluator declares the neural-network-evaluator contract the
// kernel's surrounding search driver depends on. Per spec.md §1, real
// evaluators are an external collaborator specified only by the
// interface they present; this package also provides one deterministic,
// NN-free stub so the benchmark command can exercise the kernel without
// a trained network.
package evaluator

import "github.com/notnil/chess"

// Inferencer is the contract a neural-network evaluator presents to the
// surrounding search driver, grounded in the teacher's mcts.Inferencer.
type Inferencer interface {
	// Infer returns a policy distribution over g's legal moves (same
	// order as g.ValidMoves()) and a value estimate in [-1, 1] from
	// the side-to-move's perspective.
	Infer(g *chess.Game) (policy []float32, value float32)
}

// Material is a deterministic stub Inferencer: its "policy" is uniform
// over legal moves and its "value" is a simple material count. It lets
// cmd/benchkernel drive the kernel against real chess positions without
// depending on a trained network.
type Material struct{}

var pieceValue = map[chess.PieceType]float32{
	chess.Pawn:   1,
	chess.Knight: 3,
	chess.Bishop: 3,
	chess.Rook:   5,
	chess.Queen:  9,
	chess.King:   0,
}

// Infer implements Inferencer.
func (Material) Infer(g *chess.Game) (policy []float32, value float32) {
	moves := g.ValidMoves()
	if len(moves) > 0 {
		policy = make([]float32, len(moves))
		uniform := float32(1) / float32(len(moves))
		for i := range policy {
			policy[i] = uniform
		}
	}

	var score float32
	pos := g.Position()
	turn := pos.Turn()
	for _, p := range pos.Board().SquareMap() {
		if p == chess.NoPiece {
			continue
		}
		v := pieceValue[p.Type()]
		if p.Color() == turn {
			score += v
		} else {
			score -= v
		}
	}
	// squash into (-1, 1) the way a value head's tanh output would.
	abs := score
	if abs < 0 {
		abs = -abs
	}
	value = score / (abs + 8)
	return policy, value
}
