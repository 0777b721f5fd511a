package engine

import "github.com/lgbarn/gambit/internal/chess"

// Rook home squares for standard chess.
var (
	whiteKingsideRook  = chess.MustParseSquare("h1")
	whiteQueensideRook = chess.MustParseSquare("a1")
	blackKingsideRook  = chess.MustParseSquare("h8")
	blackQueensideRook = chess.MustParseSquare("a8")
)

// applyCastleRook hops the rook over the king for a castling move.
// The king itself has already been moved by the caller.
func applyCastleRook(pos *chess.Position, king chess.Move) {
	rank := king.From.Rank()
	var rookFrom, rookTo chess.Square
	if king.To.File() > king.From.File() {
		rookFrom = chess.SquareOf(7, rank)
		rookTo = chess.SquareOf(5, rank)
	} else {
		rookFrom = chess.SquareOf(0, rank)
		rookTo = chess.SquareOf(3, rank)
	}

	rook := pos.Squares[rookFrom]
	pos.Squares[rookFrom] = chess.NoPiece
	pos.Squares[rookTo] = rook
}

// revokeCastling removes both castling rights for colour.
func revokeCastling(pos *chess.Position, colour chess.Colour) {
	if colour == chess.White {
		pos.Castling.WhiteKingside = false
		pos.Castling.WhiteQueenside = false
	} else {
		pos.Castling.BlackKingside = false
		pos.Castling.BlackQueenside = false
	}
}

// updateCastlingRightsForRook removes castling rights when a rook moves
// from, or is captured on, its home square.
func updateCastlingRightsForRook(pos *chess.Position, sq chess.Square) {
	switch sq {
	case whiteKingsideRook:
		pos.Castling.WhiteKingside = false
	case whiteQueensideRook:
		pos.Castling.WhiteQueenside = false
	case blackKingsideRook:
		pos.Castling.BlackKingside = false
	case blackQueensideRook:
		pos.Castling.BlackQueenside = false
	}
}
