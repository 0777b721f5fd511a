package engine

import "github.com/lgbarn/gambit/internal/chess"

// FiftyMoveHalfmoves is the half-move clock value at which a draw may be claimed.
const FiftyMoveHalfmoves = 100

// deriveFlags recomputes the flags that follow from the board alone.
// Checkmate and stalemate need a legal move count; see ResolveStatus.
func deriveFlags(pos chess.Position) chess.Position {
	pos.Check = IsInCheck(pos, pos.SideToMove)
	pos.Checkmate = false
	pos.Stalemate = false
	pos.Draw = pos.HalfmoveClock >= FiftyMoveHalfmoves
	return pos
}

// ResolveStatus returns a copy of pos with all terminal flags set, given the
// number of legal moves available to the side to move.
func ResolveStatus(pos chess.Position, legalMoves int) chess.Position {
	pos = deriveFlags(pos)
	if legalMoves == 0 {
		pos.Checkmate = pos.Check
		pos.Stalemate = !pos.Check
		pos.Draw = pos.Draw || pos.Stalemate
	}
	return pos
}
