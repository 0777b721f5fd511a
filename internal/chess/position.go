package chess

// CastlingRights records the four independent castling permissions.
type CastlingRights struct {
	WhiteKingside  bool
	WhiteQueenside bool
	BlackKingside  bool
	BlackQueenside bool
}

// AllCastlingRights grants every castling option.
var AllCastlingRights = CastlingRights{true, true, true, true}

// String renders the rights in FEN form: a subset of "KQkq" in that order, or "-".
func (c CastlingRights) String() string {
	buf := make([]byte, 0, 4)
	if c.WhiteKingside {
		buf = append(buf, 'K')
	}
	if c.WhiteQueenside {
		buf = append(buf, 'Q')
	}
	if c.BlackKingside {
		buf = append(buf, 'k')
	}
	if c.BlackQueenside {
		buf = append(buf, 'q')
	}
	if len(buf) == 0 {
		return "-"
	}
	return string(buf)
}

// Any reports whether at least one castling option remains.
func (c CastlingRights) Any() bool {
	return c.WhiteKingside || c.WhiteQueenside || c.BlackKingside || c.BlackQueenside
}

// Position is the full state of a chess position.
//
// Position is a plain value: it holds no references, so every copy is
// independent and a Position can be shared between goroutines freely.
// Transitions produce a new value rather than modifying the receiver.
type Position struct {
	// Squares indexed by Square, a1 = 0 ... h8 = 63.
	Squares [NumSquares]Piece

	// Who has the next move.
	SideToMove Colour

	Castling CastlingRights

	// Square behind a pawn that just advanced two ranks, or NoSquare.
	EnPassant Square

	// Half-moves since the last pawn move or capture.
	HalfmoveClock int

	// Starts at 1 and increments after Black moves.
	FullmoveNumber int

	// Derived terminal-state flags. They are hints only and must be
	// re-verified with the engine before being relied on.
	Check     bool
	Checkmate bool
	Stalemate bool
	Draw      bool
}

// NewPosition returns an empty board with White to move and no castling rights.
func NewPosition() Position {
	return Position{
		SideToMove:     White,
		EnPassant:      NoSquare,
		FullmoveNumber: 1,
	}
}

// PieceAt returns the piece on the square, or NoPiece when empty or off the board.
func (p Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.Squares[sq]
}

// IsOccupied reports whether any piece stands on the square.
func (p Position) IsOccupied(sq Square) bool {
	return !p.PieceAt(sq).IsEmpty()
}

// IsOccupiedBy reports whether a piece of the given colour stands on the square.
func (p Position) IsOccupiedBy(sq Square, colour Colour) bool {
	piece := p.PieceAt(sq)
	return !piece.IsEmpty() && piece.Colour == colour
}

// FindKing returns the square of the given colour's king.
// The second result is false when no such king is on the board.
func (p Position) FindKing(colour Colour) (Square, bool) {
	king := Piece{Type: King, Colour: colour}
	for sq := Square(0); sq < NumSquares; sq++ {
		if p.Squares[sq] == king {
			return sq, true
		}
	}
	return NoSquare, false
}

// Count returns the number of pieces of the given colour.
func (p Position) Count(colour Colour) int {
	n := 0
	for _, piece := range p.Squares {
		if !piece.IsEmpty() && piece.Colour == colour {
			n++
		}
	}
	return n
}

// SameBoard reports whether two positions agree on placement, side to move,
// castling rights and en passant target. Clocks and derived flags are ignored.
func (p Position) SameBoard(other Position) bool {
	return p.Squares == other.Squares &&
		p.SideToMove == other.SideToMove &&
		p.Castling == other.Castling &&
		p.EnPassant == other.EnPassant
}
