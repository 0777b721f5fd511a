package engine

import "github.com/lgbarn/gambit/internal/chess"

// applyPawnMove handles the pawn-specific parts of a move on next: en
// passant capture, the new en passant target after a double push, and
// promotion. It returns the piece actually captured.
func applyPawnMove(next *chess.Position, before chess.Position, move chess.Move, captured chess.Piece) chess.Piece {
	colour := before.PieceAt(move.From).Colour

	// En passant: diagonal step onto the empty target square.
	if move.To == before.EnPassant && move.From.File() != move.To.File() && captured.IsEmpty() {
		victim := chess.SquareOf(move.To.File(), move.From.Rank())
		captured = next.Squares[victim]
		next.Squares[victim] = chess.NoPiece
	}

	if abs(move.To.Rank()-move.From.Rank()) == 2 {
		next.EnPassant = chess.SquareOf(move.From.File(), (move.From.Rank()+move.To.Rank())/2)
	}

	if move.Promotion != chess.NoPieceType {
		next.Squares[move.To] = chess.Piece{Type: move.Promotion, Colour: colour}
	}
	return captured
}
