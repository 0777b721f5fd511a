package chess

import (
	"fmt"
	"strings"

	"github.com/lgbarn/gambit/internal/errors"
)

// MoveFlag describes a property of a move. Flags combine as a bit set.
type MoveFlag uint8

const (
	FlagCapture MoveFlag = 1 << iota
	FlagEnPassant
	FlagKingsideCastle
	FlagQueensideCastle
	FlagDoublePawnPush
	FlagCheck
	FlagCheckmate
)

var moveFlagNames = []struct {
	flag MoveFlag
	name string
}{
	{FlagCapture, "capture"},
	{FlagEnPassant, "en-passant"},
	{FlagKingsideCastle, "O-O"},
	{FlagQueensideCastle, "O-O-O"},
	{FlagDoublePawnPush, "double-push"},
	{FlagCheck, "check"},
	{FlagCheckmate, "checkmate"},
}

// String lists the set flags separated by '|'.
func (f MoveFlag) String() string {
	var names []string
	for _, fn := range moveFlagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Move represents a single move in coordinate form with descriptive flags.
type Move struct {
	From Square
	To   Square

	// The piece promoted to (NoPieceType if not a promotion).
	Promotion PieceType

	Flags MoveFlag
}

// Has reports whether all the given flags are set.
func (m Move) Has(f MoveFlag) bool {
	return m.Flags&f == f
}

// IsCapture returns true if this move is a capture.
func (m Move) IsCapture() bool {
	return m.Flags&(FlagCapture|FlagEnPassant) != 0
}

// IsPromotion returns true if this move is a pawn promotion.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPieceType
}

// IsCastle returns true if this move is a castling move.
func (m Move) IsCastle() bool {
	return m.Flags&(FlagKingsideCastle|FlagQueensideCastle) != 0
}

// String returns the coordinate form of the move, e.g. "e2e4" or "a7a8q".
func (m Move) String() string {
	var sb strings.Builder
	sb.Grow(5)
	sb.WriteString(m.From.String())
	sb.WriteString(m.To.String())
	if m.IsPromotion() {
		sb.WriteByte(m.Promotion.Letter() + ('a' - 'A'))
	}
	return sb.String()
}

// ParseMove parses a four or five character coordinate move string.
// The returned move carries no flags.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("move %q: %w", s, errors.ErrInvalidMove)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return Move{}, fmt.Errorf("move %q: %w", s, errors.ErrInvalidMove)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return Move{}, fmt.Errorf("move %q: %w", s, errors.ErrInvalidMove)
	}
	move := Move{From: from, To: to}
	if len(s) == 5 {
		promo, ok := PromotionFromLetter(s[4])
		if !ok {
			return Move{}, fmt.Errorf("move %q: bad promotion %q: %w", s, s[4], errors.ErrInvalidMove)
		}
		move.Promotion = promo
	}
	return move, nil
}
