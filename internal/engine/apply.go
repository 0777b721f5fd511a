package engine

import "github.com/lgbarn/gambit/internal/chess"

// ApplyMove returns the position reached by playing move on pos.
// The input position is not modified. No legality checking is performed:
// the move is assumed to come from the engine's legal move list.
func ApplyMove(pos chess.Position, move chess.Move) chess.Position {
	next := pos
	mover := pos.PieceAt(move.From)
	captured := pos.PieceAt(move.To)

	next.Squares[move.From] = chess.NoPiece
	next.Squares[move.To] = mover
	next.EnPassant = chess.NoSquare

	switch mover.Type {
	case chess.King:
		if abs(move.To.File()-move.From.File()) == 2 {
			applyCastleRook(&next, move)
		}
		revokeCastling(&next, mover.Colour)
	case chess.Pawn:
		captured = applyPawnMove(&next, pos, move, captured)
	}

	updateCastlingRightsForRook(&next, move.From)
	updateCastlingRightsForRook(&next, move.To)

	if mover.Type == chess.Pawn || !captured.IsEmpty() {
		next.HalfmoveClock = 0
	} else {
		next.HalfmoveClock++
	}
	if pos.SideToMove == chess.Black {
		next.FullmoveNumber++
	}
	next.SideToMove = pos.SideToMove.Opposite()

	return deriveFlags(next)
}

// DescribeMove returns move with its descriptive flags filled in from pos.
// The check and checkmate flags are taken from the resulting position;
// checkmate additionally needs the opponent's legal move count, so callers
// that know it should use DescribeMoveWithReplies.
func DescribeMove(pos chess.Position, move chess.Move) chess.Move {
	move.Flags = 0
	mover := pos.PieceAt(move.From)

	if !pos.PieceAt(move.To).IsEmpty() {
		move.Flags |= chess.FlagCapture
	}

	switch mover.Type {
	case chess.King:
		switch move.To.File() - move.From.File() {
		case 2:
			move.Flags |= chess.FlagKingsideCastle
		case -2:
			move.Flags |= chess.FlagQueensideCastle
		}
	case chess.Pawn:
		if move.To == pos.EnPassant && move.From.File() != move.To.File() && pos.PieceAt(move.To).IsEmpty() {
			move.Flags |= chess.FlagEnPassant
		}
		if abs(move.To.Rank()-move.From.Rank()) == 2 {
			move.Flags |= chess.FlagDoublePawnPush
		}
	}

	if IsInCheck(ApplyMove(pos, move), pos.SideToMove.Opposite()) {
		move.Flags |= chess.FlagCheck
	}
	return move
}

// DescribeMoveWithReplies is like DescribeMove but also sets FlagCheckmate
// when the move gives check and the opponent has no legal replies.
func DescribeMoveWithReplies(pos chess.Position, move chess.Move, replies int) chess.Move {
	move = DescribeMove(pos, move)
	if move.Has(chess.FlagCheck) && replies == 0 {
		move.Flags |= chess.FlagCheckmate
	}
	return move
}
