package uci

import (
	"fmt"

	"github.com/lgbarn/gambit/internal/chess"
)

// MateScore is the centipawn magnitude Score assigns to a mate in zero.
const MateScore = 100000

// Result is the outcome of one completed search.
type Result struct {
	BestMove   string   // coordinate move; empty when there are no legal moves
	PonderMove string   // expected reply, if the engine sent one
	Evaluation int      // centipawns, positive favours White
	MateIn     *int     // moves to mate, positive when White mates
	Depth      int      // deepest completed iteration
	PV         []string // principal variation of the latest iteration
}

// IsMate reports whether the engine announced a forced mate.
func (r Result) IsMate() bool {
	return r.MateIn != nil
}

// Score returns the evaluation as a single comparable number, mapping
// mate announcements beyond any centipawn value.
func (r Result) Score() int {
	if r.MateIn == nil {
		return r.Evaluation
	}
	switch n := *r.MateIn; {
	case n > 0:
		return MateScore - n
	case n < 0:
		return -MateScore - n
	default:
		return 0
	}
}

// FormatEvaluation returns a human-readable evaluation such as "+1.23" or "-M5".
func FormatEvaluation(r Result) string {
	if r.MateIn != nil {
		n := *r.MateIn
		if n < 0 {
			return fmt.Sprintf("-M%d", -n)
		}
		return fmt.Sprintf("+M%d", n)
	}
	sign := "+"
	cp := r.Evaluation
	if cp < 0 {
		sign = "-"
		cp = -cp
	}
	return fmt.Sprintf("%s%d.%02d", sign, cp/100, cp%100)
}

// aggregator folds info lines into the running state of a search.
// Each field holds the latest value seen; the pv is replaced, never merged.
type aggregator struct {
	depth int
	eval  int
	mate  *int
	pv    []string
}

func (a *aggregator) add(info Info) {
	if info.Depth != nil {
		a.depth = *info.Depth
	}
	// A line carries a single score; the newest kind supersedes the other.
	if info.Score != nil {
		a.eval = *info.Score
		a.mate = nil
	}
	if info.Mate != nil {
		m := *info.Mate
		a.mate = &m
	}
	if info.HasPV() {
		a.pv = append([]string(nil), info.PV...)
	}
}

// result builds the final Result. Engine scores are relative to the side
// to move and are turned around for Black.
func (a *aggregator) result(best, ponder string, sideToMove chess.Colour) Result {
	r := Result{
		BestMove:   best,
		PonderMove: ponder,
		Evaluation: a.eval,
		Depth:      a.depth,
		PV:         a.pv,
	}
	if r.PV == nil {
		r.PV = []string{}
	}
	if a.mate != nil {
		m := *a.mate
		r.MateIn = &m
	}
	if sideToMove == chess.Black {
		r.Evaluation = -r.Evaluation
		if r.MateIn != nil {
			*r.MateIn = -*r.MateIn
		}
	}
	return r
}
