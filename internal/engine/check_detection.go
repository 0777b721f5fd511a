package engine

import "github.com/lgbarn/gambit/internal/chess"

var (
	knightOffsets   = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets     = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	diagonalOffsets = [4][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	straightOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
)

// IsInCheck returns true if the given colour's king is in check.
// A position without that king is never in check.
func IsInCheck(pos chess.Position, colour chess.Colour) bool {
	king, ok := pos.FindKing(colour)
	if !ok {
		return false
	}
	return IsSquareAttacked(pos, king, colour.Opposite())
}

// IsSquareAttacked returns true if the square is attacked by the given colour.
func IsSquareAttacked(pos chess.Position, sq chess.Square, byColour chess.Colour) bool {
	file, rank := sq.File(), sq.Rank()

	// Pawns attack diagonally forward, so look one rank behind the target
	// from the attacker's point of view.
	pawnRank := rank - 1
	if byColour == chess.Black {
		pawnRank = rank + 1
	}
	for _, df := range [2]int{-1, 1} {
		if pieceAt(pos, file+df, pawnRank) == (chess.Piece{Type: chess.Pawn, Colour: byColour}) {
			return true
		}
	}

	if hitsAny(pos, file, rank, knightOffsets[:], chess.Piece{Type: chess.Knight, Colour: byColour}) {
		return true
	}
	if hitsAny(pos, file, rank, kingOffsets[:], chess.Piece{Type: chess.King, Colour: byColour}) {
		return true
	}

	queen := chess.Piece{Type: chess.Queen, Colour: byColour}
	if slidesInto(pos, file, rank, diagonalOffsets[:], chess.Piece{Type: chess.Bishop, Colour: byColour}, queen) {
		return true
	}
	return slidesInto(pos, file, rank, straightOffsets[:], chess.Piece{Type: chess.Rook, Colour: byColour}, queen)
}

// pieceAt returns the occupant of (file, rank), or NoPiece when off the board.
func pieceAt(pos chess.Position, file, rank int) chess.Piece {
	if file < 0 || file >= chess.BoardSize || rank < 0 || rank >= chess.BoardSize {
		return chess.NoPiece
	}
	return pos.Squares[chess.SquareOf(file, rank)]
}

// hitsAny reports whether piece stands one offset away from (file, rank).
func hitsAny(pos chess.Position, file, rank int, offsets [][2]int, piece chess.Piece) bool {
	for _, off := range offsets {
		if pieceAt(pos, file+off[0], rank+off[1]) == piece {
			return true
		}
	}
	return false
}

// slidesInto walks each ray from (file, rank) and reports whether the first
// occupied square holds one of the given sliders.
func slidesInto(pos chess.Position, file, rank int, dirs [][2]int, sliders ...chess.Piece) bool {
	for _, dir := range dirs {
		f, r := file+dir[0], rank+dir[1]
		for f >= 0 && f < chess.BoardSize && r >= 0 && r < chess.BoardSize {
			piece := pos.Squares[chess.SquareOf(f, r)]
			if !piece.IsEmpty() {
				for _, s := range sliders {
					if piece == s {
						return true
					}
				}
				break // Blocked
			}
			f += dir[0]
			r += dir[1]
		}
	}
	return false
}
