package training

import (
	"strings"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/engine"
)

// Puzzle is a tactics exercise: a start position and the expected moves.
type Puzzle struct {
	ID       string   `json:"id" yaml:"id"`
	FEN      string   `json:"fen" yaml:"fen"`
	Solution []string `json:"solution" yaml:"solution"`
	Rating   int      `json:"rating,omitempty" yaml:"rating,omitempty"`
	Themes   []string `json:"themes,omitempty" yaml:"themes,omitempty"`
}

// Position decodes the puzzle's start position.
func (p Puzzle) Position() (chess.Position, error) {
	return engine.ParseFEN(p.FEN)
}

// Len returns the number of moves in the solution.
func (p Puzzle) Len() int {
	return len(p.Solution)
}

// ValidateSolution reports whether move matches the solution move at index.
// Case and spaces are ignored.
func ValidateSolution(p Puzzle, index int, move string) bool {
	if index < 0 || index >= len(p.Solution) {
		return false
	}
	return normalizeMove(p.Solution[index]) == normalizeMove(move)
}

func normalizeMove(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
