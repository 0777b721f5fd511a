package uci

import (
	"strconv"
	"strings"
)

// Info is the content of one "info" line. Nil pointers mark absent fields.
type Info struct {
	Depth *int
	Score *int // centipawns, from the side to move
	Mate  *int // moves to mate; negative when being mated
	PV    []string
}

// HasPV reports whether the line carried a non-empty principal variation.
func (i Info) HasPV() bool {
	return len(i.PV) > 0
}

// ParseInfoLine parses a search "info" line. It never fails: unknown tokens
// are skipped and a keyword with a missing or non-numeric value is absent.
// The pv collects every following token until a cp or mate keyword.
func ParseInfoLine(line string) Info {
	var info Info
	tokens := strings.Fields(line)
	inPV := false

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "depth":
			info.Depth = intAfter(tokens, i)
			i++
		case "cp":
			info.Score = intAfter(tokens, i)
			inPV = false
			i++
		case "mate":
			info.Mate = intAfter(tokens, i)
			inPV = false
			i++
		case "pv":
			inPV = true
		default:
			if inPV {
				info.PV = append(info.PV, tokens[i])
			}
		}
	}
	return info
}

// intAfter returns the integer following tokens[i], or nil.
func intAfter(tokens []string, i int) *int {
	if i+1 >= len(tokens) {
		return nil
	}
	n, err := strconv.Atoi(tokens[i+1])
	if err != nil {
		return nil
	}
	return &n
}

// ParseBestMoveLine parses a "bestmove <move> [ponder <move>]" line.
// ok is false when the line is not a bestmove line. A "(none)" move, sent
// when the side to move has no legal moves, yields an empty best move.
func ParseBestMoveLine(line string) (best, ponder string, ok bool) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[0] != tokenBestMove {
		return "", "", false
	}
	if len(tokens) > 1 && tokens[1] != tokenNoMove {
		best = tokens[1]
	}
	if len(tokens) > 3 && tokens[2] == "ponder" {
		ponder = tokens[3]
	}
	return best, ponder, true
}

// ParseLegalMovesLine extracts the moves from a "Legal moves:" diagnostic line.
func ParseLegalMovesLine(line string) ([]string, bool) {
	rest, found := strings.CutPrefix(line, legalMovesPrefix)
	if !found {
		return nil, false
	}
	moves := strings.Fields(rest)
	if moves == nil {
		moves = []string{}
	}
	return moves, true
}
