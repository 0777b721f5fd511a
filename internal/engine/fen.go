// Package engine provides the position codec and position transitions.
package engine

import (
	"strconv"
	"strings"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/errors"
)

// InitialFEN is the FEN string for the standard starting position.
const InitialFEN = chess.InitialFEN

// minFENFields is the number of fields a FEN string must carry; the two
// clock fields are optional and default to 0 and 1.
const minFENFields = 4

// ParseFEN decodes a FEN string into a Position.
// Failures wrap errors.ErrMalformedInput and carry a *errors.ParseError.
func ParseFEN(fen string) (chess.Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < minFENFields {
		return chess.Position{}, malformed(fen, "fields", "at least 4 space-separated fields", strconv.Itoa(len(parts)))
	}

	pos := chess.NewPosition()

	if err := parsePiecePlacement(&pos, fen, parts[0]); err != nil {
		return chess.Position{}, err
	}
	if err := parseSideToMove(&pos, fen, parts[1]); err != nil {
		return chess.Position{}, err
	}
	if err := parseCastlingRights(&pos, fen, parts[2]); err != nil {
		return chess.Position{}, err
	}
	if err := parseEnPassant(&pos, fen, parts[3]); err != nil {
		return chess.Position{}, err
	}
	if err := parseClocks(&pos, fen, parts[4:]); err != nil {
		return chess.Position{}, err
	}

	return deriveFlags(pos), nil
}

// MustParseFEN is like ParseFEN but panics on error. Use with constants only.
func MustParseFEN(fen string) chess.Position {
	pos, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return pos
}

// NewInitialPosition returns the standard starting position.
func NewInitialPosition() chess.Position {
	return MustParseFEN(InitialFEN)
}

func malformed(fen, field, expected, got string) error {
	return &errors.ParseError{
		Err:      errors.ErrMalformedInput,
		Input:    fen,
		Field:    field,
		Expected: expected,
		Got:      got,
	}
}

// parsePiecePlacement parses the piece placement field of a FEN string.
// Ranks run 8 down to 1, files a to h within a rank.
func parsePiecePlacement(pos *chess.Position, fen, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != chess.BoardSize {
		return malformed(fen, "placement", "8 ranks", placement)
	}

	for i, rankText := range ranks {
		rank := chess.BoardSize - 1 - i
		file := 0
		for _, c := range rankText {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			default:
				if c > 0x7f {
					return malformed(fen, "placement", "piece letter", string(c))
				}
				pieceType := chess.PieceTypeFromLetter(byte(c))
				if pieceType == chess.NoPieceType {
					return malformed(fen, "placement", "piece letter", string(c))
				}
				if file >= chess.BoardSize {
					return malformed(fen, "placement", "8 files per rank", rankText)
				}
				colour := chess.White
				if c >= 'a' && c <= 'z' {
					colour = chess.Black
				}
				pos.Squares[chess.SquareOf(file, rank)] = chess.Piece{Type: pieceType, Colour: colour}
				file++
			}
			if file > chess.BoardSize {
				return malformed(fen, "placement", "8 files per rank", rankText)
			}
		}
		if file != chess.BoardSize {
			return malformed(fen, "placement", "8 files per rank", rankText)
		}
	}
	return nil
}

// parseSideToMove parses the side to move field.
func parseSideToMove(pos *chess.Position, fen, side string) error {
	switch side {
	case "w":
		pos.SideToMove = chess.White
	case "b":
		pos.SideToMove = chess.Black
	default:
		return malformed(fen, "side to move", "'w' or 'b'", side)
	}
	return nil
}

// parseCastlingRights parses the castling availability field.
// Letters may appear in any order; encoding always emits KQkq order.
func parseCastlingRights(pos *chess.Position, fen, castling string) error {
	pos.Castling = chess.CastlingRights{}
	if castling == "-" {
		return nil
	}

	for _, c := range castling {
		switch c {
		case 'K':
			pos.Castling.WhiteKingside = true
		case 'Q':
			pos.Castling.WhiteQueenside = true
		case 'k':
			pos.Castling.BlackKingside = true
		case 'q':
			pos.Castling.BlackQueenside = true
		default:
			return malformed(fen, "castling", "subset of KQkq or '-'", castling)
		}
	}
	return nil
}

// parseEnPassant parses the en passant target square field.
func parseEnPassant(pos *chess.Position, fen, ep string) error {
	pos.EnPassant = chess.NoSquare
	if ep == "-" {
		return nil
	}
	sq, err := chess.ParseSquare(ep)
	if err != nil {
		return malformed(fen, "en passant", "'-' or a square", ep)
	}
	pos.EnPassant = sq
	return nil
}

// parseClocks parses the optional halfmove clock and fullmove number fields.
func parseClocks(pos *chess.Position, fen string, clocks []string) error {
	pos.HalfmoveClock = 0
	pos.FullmoveNumber = 1

	if len(clocks) >= 1 {
		n, err := strconv.Atoi(clocks[0])
		if err != nil || n < 0 {
			return malformed(fen, "halfmove clock", "non-negative integer", clocks[0])
		}
		pos.HalfmoveClock = n
	}
	if len(clocks) >= 2 {
		n, err := strconv.Atoi(clocks[1])
		if err != nil || n < 1 {
			return malformed(fen, "fullmove number", "positive integer", clocks[1])
		}
		pos.FullmoveNumber = n
	}
	return nil
}

// ToFEN encodes a position as a FEN string. It never fails.
func ToFEN(pos chess.Position) string {
	var sb strings.Builder
	sb.Grow(90)

	writePiecePlacement(&sb, pos)
	sb.WriteByte(' ')
	writeSideToMove(&sb, pos)
	sb.WriteByte(' ')
	sb.WriteString(pos.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(pos.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(pos.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(pos.FullmoveNumber))

	return sb.String()
}

// writePiecePlacement writes the piece placement to the builder.
func writePiecePlacement(sb *strings.Builder, pos chess.Position) {
	for rank := chess.BoardSize - 1; rank >= 0; rank-- {
		emptyCount := 0
		for file := 0; file < chess.BoardSize; file++ {
			piece := pos.Squares[chess.SquareOf(file, rank)]
			if piece.IsEmpty() {
				emptyCount++
				continue
			}
			if emptyCount > 0 {
				sb.WriteByte(byte('0' + emptyCount))
				emptyCount = 0
			}
			sb.WriteByte(piece.Letter())
		}
		if emptyCount > 0 {
			sb.WriteByte(byte('0' + emptyCount))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
}

// writeSideToMove writes the side to move to the builder.
func writeSideToMove(sb *strings.Builder, pos chess.Position) {
	if pos.SideToMove == chess.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
}
