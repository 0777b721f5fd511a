package engine

import (
	"testing"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/errors"
)

var fenCorpus = []struct {
	name string
	fen  string
}{
	{"initial position", InitialFEN},
	{"italian middlegame", "r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 b kq - 3 5"},
	{"en passant target", "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3"},
	{"no castling rights", "4k3/8/8/8/8/8/8/4K3 w - - 0 1"},
	{"black to move after e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
	{"promotion race", "8/P6k/8/8/8/8/6Kp/8 w - - 0 60"},
	{"partial castling", "r3k2r/8/8/8/8/8/8/R3K2R w Kq - 12 40"},
	{"fifty move boundary", "8/8/4k3/8/8/4K3/8/8 b - - 99 120"},
}

func TestParseFEN_RoundTrip(t *testing.T) {
	for _, tt := range fenCorpus {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q) error: %v", tt.fen, err)
			}
			if got := ToFEN(pos); got != tt.fen {
				t.Errorf("ToFEN(ParseFEN(s)) = %q; want %q", got, tt.fen)
			}
		})
	}
}

func TestParseFEN(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		checkFn func(t *testing.T, pos chess.Position)
	}{
		{
			name: "initial position",
			fen:  InitialFEN,
			checkFn: func(t *testing.T, pos chess.Position) {
				if pos.SideToMove != chess.White {
					t.Errorf("SideToMove = %v; want White", pos.SideToMove)
				}
				if pos.Castling != chess.AllCastlingRights {
					t.Errorf("Castling = %v; want KQkq", pos.Castling)
				}
				if pos.EnPassant != chess.NoSquare {
					t.Errorf("EnPassant = %v; want none", pos.EnPassant)
				}
				if pos.HalfmoveClock != 0 || pos.FullmoveNumber != 1 {
					t.Errorf("clocks = %d/%d; want 0/1", pos.HalfmoveClock, pos.FullmoveNumber)
				}
				if got := pos.PieceAt(chess.MustParseSquare("e1")); got != chess.W(chess.King) {
					t.Errorf("e1 = %v; want WK", got)
				}
				if got := pos.PieceAt(chess.MustParseSquare("d8")); got != chess.B(chess.Queen) {
					t.Errorf("d8 = %v; want BQ", got)
				}
				for _, sq := range []string{"e3", "e4", "e5", "e6"} {
					if pos.IsOccupied(chess.MustParseSquare(sq)) {
						t.Errorf("%s should be empty", sq)
					}
				}
				if pos.Count(chess.White) != 16 || pos.Count(chess.Black) != 16 {
					t.Errorf("piece counts = %d/%d; want 16/16", pos.Count(chess.White), pos.Count(chess.Black))
				}
				if pos.Check || pos.Checkmate || pos.Stalemate || pos.Draw {
					t.Error("initial position should carry no terminal flags")
				}
			},
		},
		{
			name: "en passant square",
			fen:  "rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
			checkFn: func(t *testing.T, pos chess.Position) {
				if pos.EnPassant != chess.MustParseSquare("d6") {
					t.Errorf("EnPassant = %v; want d6", pos.EnPassant)
				}
				if pos.FullmoveNumber != 3 {
					t.Errorf("FullmoveNumber = %d; want 3", pos.FullmoveNumber)
				}
			},
		},
		{
			name: "clocks omitted",
			fen:  "4k3/8/8/8/8/8/8/4K3 b - -",
			checkFn: func(t *testing.T, pos chess.Position) {
				if pos.HalfmoveClock != 0 || pos.FullmoveNumber != 1 {
					t.Errorf("clocks = %d/%d; want 0/1", pos.HalfmoveClock, pos.FullmoveNumber)
				}
				if pos.SideToMove != chess.Black {
					t.Errorf("SideToMove = %v; want Black", pos.SideToMove)
				}
			},
		},
		{
			name: "castling letters out of order",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w qkQK - 0 1",
			checkFn: func(t *testing.T, pos chess.Position) {
				if pos.Castling != chess.AllCastlingRights {
					t.Errorf("Castling = %v; want KQkq", pos.Castling)
				}
				if got := ToFEN(pos); got != "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1" {
					t.Errorf("ToFEN = %q; want canonical castling order", got)
				}
			},
		},
		{
			name: "check derived",
			fen:  "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1",
			checkFn: func(t *testing.T, pos chess.Position) {
				if !pos.Check {
					t.Error("Check = false; black king on e8 faces the rook on e1")
				}
			},
		},
		{
			name: "fifty move draw derived",
			fen:  "8/8/4k3/8/8/4K3/8/8 w - - 100 130",
			checkFn: func(t *testing.T, pos chess.Position) {
				if !pos.Draw {
					t.Error("Draw = false; want true at halfmove clock 100")
				}
			},
		},
		{
			name: "kings absent",
			fen:  "8/8/8/8/8/8/8/8 w - - 0 1",
			checkFn: func(t *testing.T, pos chess.Position) {
				if pos.Check {
					t.Error("empty board should not be in check")
				}
				if _, ok := pos.FindKing(chess.White); ok {
					t.Error("FindKing on an empty board should report false")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatalf("ParseFEN(%q) error: %v", tt.fen, err)
			}
			tt.checkFn(t, pos)
		})
	}
}

func TestParseFEN_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		field string
	}{
		{"empty", "", "fields"},
		{"too few fields", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq", "fields"},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"nine files", "rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"short rank", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"digit overflow", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"bad piece letter", "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "placement"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", "side to move"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX - 0 1", "castling"},
		{"bad en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1", "en passant"},
		{"negative halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1", "halfmove clock"},
		{"text halfmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1", "halfmove clock"},
		{"zero fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0", "fullmove number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			if err == nil {
				t.Fatalf("ParseFEN(%q) = nil error; want failure", tt.fen)
			}
			if !errors.Is(err, errors.ErrMalformedInput) {
				t.Errorf("error = %v; want ErrMalformedInput", err)
			}
			var parseErr *errors.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if parseErr.Field != tt.field {
				t.Errorf("Field = %q; want %q", parseErr.Field, tt.field)
			}
		})
	}
}

func TestMustParseFEN_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParseFEN should panic on malformed input")
		}
	}()
	MustParseFEN("not a fen")
}

func TestToFEN_EmptyPosition(t *testing.T) {
	want := "8/8/8/8/8/8/8/8 w - - 0 1"
	if got := ToFEN(chess.NewPosition()); got != want {
		t.Errorf("ToFEN(NewPosition()) = %q; want %q", got, want)
	}
}
