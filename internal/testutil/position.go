package testutil

import (
	"testing"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/engine"
)

// Named positions shared by tests.
const (
	StartFEN      = chess.InitialFEN
	AfterE4FEN    = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	EnPassantFEN  = "rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3"
	NoCastlingFEN = "r3k2r/8/8/8/8/8/8/R3K2R w - - 12 40"
	CastlingFEN   = "r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1"
	ScholarFEN    = "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5Q2/PPPP1PPP/RNB1K1NR b KQkq - 3 3"
	MatedFEN      = "r1bqkb1r/pppp1Qpp/2n2n2/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 0 4"
	StalemateFEN  = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	PromotionFEN  = "8/P6k/8/8/8/8/6Kp/8 w - - 0 50"
)

// FENCorpus lists well-formed FEN strings that survive a decode/encode round trip.
var FENCorpus = []string{
	StartFEN,
	AfterE4FEN,
	EnPassantFEN,
	NoCastlingFEN,
	CastlingFEN,
	ScholarFEN,
	MatedFEN,
	StalemateFEN,
	PromotionFEN,
}

// MustPosition decodes fen or stops the test.
func MustPosition(t testing.TB, fen string) chess.Position {
	t.Helper()
	pos, err := engine.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

// MustSquare parses an algebraic square or stops the test.
func MustSquare(t testing.TB, s string) chess.Square {
	t.Helper()
	sq, err := chess.ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return sq
}

// MustMoves parses coordinate moves or stops the test.
func MustMoves(t testing.TB, coords ...string) []chess.Move {
	t.Helper()
	moves := make([]chess.Move, 0, len(coords))
	for _, c := range coords {
		m, err := chess.ParseMove(c)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", c, err)
		}
		moves = append(moves, m)
	}
	return moves
}
