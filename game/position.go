// Package game wraps notnil/chess with the small surface
// cmd/benchkernel needs to drive the kernel against real positions. Move
// generation, position encoding and endgame tablebases are explicitly
// out of scope for the kernel itself (spec.md §1); this package exists
// only to give the demo/benchmark program something real to select
// moves over, adapted from the teacher's game.Chess.
package game

import (
	"sync"

	"github.com/notnil/chess"
)

// Position wraps one in-progress chess game, trimmed from the teacher's
// game.Chess down to what a demo driver needs: legal moves, applying
// one, and cloning for concurrent exploration.
type Position struct {
	mu sync.Mutex
	g  *chess.Game
}

// NewPosition starts a fresh game from the standard starting position.
func NewPosition() *Position {
	return &Position{g: chess.NewGame()}
}

// LegalMoves returns every legal move from the current position, in a
// stable order (the same order a policy vector returned by an evaluator
// must line up with).
func (p *Position) LegalMoves() []*chess.Move {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.ValidMoves()
}

// Game returns the underlying *chess.Game, for callers (such as
// evaluator.Material) that need full board access.
func (p *Position) Game() *chess.Game {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g
}

// Turn returns the color to move.
func (p *Position) Turn() chess.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Position().Turn()
}

// Ended reports whether the game has ended and, if so, the winner
// (chess.NoColor for a draw).
func (p *Position) Ended() (ended bool, winner chess.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	outcome := p.g.Outcome()
	if outcome == chess.NoOutcome {
		return false, chess.NoColor
	}
	switch outcome {
	case chess.WhiteWon:
		return true, chess.White
	case chess.BlackWon:
		return true, chess.Black
	default:
		return true, chess.NoColor
	}
}

// Apply plays move in place.
func (p *Position) Apply(move *chess.Move) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Move(move)
}

// Clone returns an independent copy of the current position, the way
// the teacher's game.Chess.Clone lets concurrent workers explore
// different continuations from the same root.
func (p *Position) Clone() *Position {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Position{g: p.g.Clone()}
}

// String renders the board, matching the teacher's ShowBoard.
func (p *Position) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Position().Board().Draw()
}
