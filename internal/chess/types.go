// Package chess provides core chess types and operations.
package chess

// Colour represents the colour of a piece or player.
type Colour int

const (
	White Colour = iota
	Black
)

// String returns the string representation of a colour.
func (c Colour) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Opposite returns the opposite colour.
func (c Colour) Opposite() Colour {
	if c == White {
		return Black
	}
	return White
}

// PieceType represents a chess piece type without colour.
type PieceType int

const (
	NoPieceType PieceType = iota
	King
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

// String returns the string representation of a piece type.
func (p PieceType) String() string {
	names := []string{"None", "King", "Queen", "Rook", "Bishop", "Knight", "Pawn"}
	if p >= 0 && int(p) < len(names) {
		return names[p]
	}
	return "Unknown"
}

// Letter returns the single letter representation of a piece type (uppercase).
func (p PieceType) Letter() byte {
	letters := []byte{' ', 'K', 'Q', 'R', 'B', 'N', 'P'}
	if p >= 0 && int(p) < len(letters) {
		return letters[p]
	}
	return '?'
}

// PieceTypeFromLetter converts a piece letter of either case to a piece type.
// Returns NoPieceType for anything else.
func PieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'K', 'k':
		return King
	case 'Q', 'q':
		return Queen
	case 'R', 'r':
		return Rook
	case 'B', 'b':
		return Bishop
	case 'N', 'n':
		return Knight
	case 'P', 'p':
		return Pawn
	default:
		return NoPieceType
	}
}

// PromotionFromLetter maps a lowercase promotion suffix to a piece type.
// Only q, r, b and n are accepted.
func PromotionFromLetter(c byte) (PieceType, bool) {
	switch c {
	case 'q':
		return Queen, true
	case 'r':
		return Rook, true
	case 'b':
		return Bishop, true
	case 'n':
		return Knight, true
	default:
		return NoPieceType, false
	}
}

// Piece is a coloured piece. The zero value is an empty square.
type Piece struct {
	Type   PieceType
	Colour Colour
}

// NoPiece is the empty square.
var NoPiece = Piece{}

// W creates a white piece.
func W(t PieceType) Piece {
	return Piece{Type: t, Colour: White}
}

// B creates a black piece.
func B(t PieceType) Piece {
	return Piece{Type: t, Colour: Black}
}

// IsEmpty reports whether the piece denotes an empty square.
func (p Piece) IsEmpty() bool {
	return p.Type == NoPieceType
}

// Letter returns the FEN letter for the piece: uppercase for White, lowercase for Black.
func (p Piece) Letter() byte {
	letter := p.Type.Letter()
	if p.Colour == Black && letter >= 'A' && letter <= 'Z' {
		letter += 'a' - 'A'
	}
	return letter
}

// String returns a short representation such as "WK" or "BP".
func (p Piece) String() string {
	if p.IsEmpty() {
		return "--"
	}
	return string([]byte{p.Colour.String()[0], p.Type.Letter()})
}

// Constants for board dimensions.
const (
	BoardSize  = 8
	NumSquares = BoardSize * BoardSize
)

// InitialFEN is the FEN string for the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
