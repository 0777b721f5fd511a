// Package notation renders coordinate moves in standard algebraic notation
// and sorts candidate moves into checks, captures and quiet moves.
package notation

import (
	chesslib "github.com/notnil/chess"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
)

// board converts a position to the rules library's representation.
func board(pos chess.Position) (*chesslib.Position, error) {
	opt, err := chesslib.FEN(engine.ToFEN(pos))
	if err != nil {
		return nil, &errors.ParseError{Err: errors.ErrMalformedInput, Input: engine.ToFEN(pos), Field: "position", Got: err.Error()}
	}
	return chesslib.NewGame(opt).Position(), nil
}

// decode resolves a coordinate move against p.
func decode(p *chesslib.Position, coordinate string) (*chesslib.Move, error) {
	m, err := chesslib.UCINotation{}.Decode(p, coordinate)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidMove, "%s: %v", coordinate, err)
	}
	for _, legal := range p.ValidMoves() {
		if legal.S1() == m.S1() && legal.S2() == m.S2() && legal.Promo() == m.Promo() {
			return legal, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrInvalidMove, "%s is not legal here", coordinate)
}

// SAN returns the algebraic form of a coordinate move played from pos,
// for example "Nf3", "exd5", "O-O" or "e8=Q+".
func SAN(pos chess.Position, coordinate string) (string, error) {
	p, err := board(pos)
	if err != nil {
		return "", err
	}
	m, err := decode(p, coordinate)
	if err != nil {
		return "", err
	}
	return chesslib.AlgebraicNotation{}.Encode(p, m), nil
}

// Line renders a sequence of coordinate moves, such as a principal
// variation, played one after another from pos.
func Line(pos chess.Position, coordinates []string) ([]string, error) {
	p, err := board(pos)
	if err != nil {
		return nil, err
	}

	sans := make([]string, 0, len(coordinates))
	for i, coordinate := range coordinates {
		m, err := decode(p, coordinate)
		if err != nil {
			return sans, errors.Wrapf(err, "move %d", i+1)
		}
		sans = append(sans, chesslib.AlgebraicNotation{}.Encode(p, m))
		p = p.Update(m)
	}
	return sans, nil
}

// Classification groups coordinate moves for a checks, captures and
// threats scan. A capturing check is listed under Checks only.
type Classification struct {
	Checks   []string `json:"checks" yaml:"checks"`
	Captures []string `json:"captures" yaml:"captures"`
	Quiet    []string `json:"quiet" yaml:"quiet"`
}

// Classify sorts moves, in order, by what they do in pos. Moves the rules
// library does not accept are skipped.
func Classify(pos chess.Position, moves []string) (Classification, error) {
	p, err := board(pos)
	if err != nil {
		return Classification{}, err
	}

	c := Classification{Checks: []string{}, Captures: []string{}, Quiet: []string{}}
	for _, coordinate := range moves {
		m, err := decode(p, coordinate)
		if err != nil {
			continue
		}
		switch {
		case m.HasTag(chesslib.Check):
			c.Checks = append(c.Checks, coordinate)
		case m.HasTag(chesslib.Capture), m.HasTag(chesslib.EnPassant):
			c.Captures = append(c.Captures, coordinate)
		default:
			c.Quiet = append(c.Quiet, coordinate)
		}
	}
	return c, nil
}

// IsLegal reports whether the rules library accepts coordinate in pos.
func IsLegal(pos chess.Position, coordinate string) bool {
	p, err := board(pos)
	if err != nil {
		return false
	}
	_, err = decode(p, coordinate)
	return err == nil
}
