package chess

import (
	"fmt"

	"github.com/lgbarn/gambit/internal/errors"
)

// Square is a linear board index: 0 = a1, 7 = h1, 56 = a8, 63 = h8.
type Square int

// NoSquare marks an absent square (e.g. no en passant target).
const NoSquare Square = -1

// SquareOf returns the square on the given file (0 = a) and rank (0 = first rank).
func SquareOf(file, rank int) Square {
	return Square(rank*BoardSize + file)
}

// File returns the 0-based file of the square.
func (s Square) File() int {
	return int(s) % BoardSize
}

// Rank returns the 0-based rank of the square.
func (s Square) Rank() int {
	return int(s) / BoardSize
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s >= 0 && s < NumSquares
}

// String returns the algebraic name of the square, or "-" when it is off the board.
func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare converts algebraic notation such as "e4" to a square.
func ParseSquare(alg string) (Square, error) {
	if len(alg) != 2 {
		return NoSquare, fmt.Errorf("square %q: %w", alg, errors.ErrInvalidSquare)
	}
	file, rank := alg[0], alg[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return NoSquare, fmt.Errorf("square %q: %w", alg, errors.ErrInvalidSquare)
	}
	return SquareOf(int(file-'a'), int(rank-'1')), nil
}

// MustParseSquare is like ParseSquare but panics on error. Use with constants only.
func MustParseSquare(alg string) Square {
	sq, err := ParseSquare(alg)
	if err != nil {
		panic(err)
	}
	return sq
}
