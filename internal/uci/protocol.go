// Package uci drives an external analysis engine over the UCI text protocol.
package uci

import (
	"fmt"
	"strconv"
)

// Commands and acknowledgement tokens. The engine matches these byte for byte.
const (
	cmdUCI        = "uci"
	cmdIsReady    = "isready"
	cmdNewGame    = "ucinewgame"
	cmdStop       = "stop"
	cmdQuit       = "quit"
	cmdShowBoard  = "d"
	tokenUCIOK    = "uciok"
	tokenReadyOK  = "readyok"
	tokenInfo     = "info"
	tokenBestMove = "bestmove"
	tokenNoMove   = "(none)"

	legalMovesPrefix = "Legal moves:"
	checkersPrefix   = "Checkers"
)

func setOptionCommand(name string, value int) string {
	return "setoption name " + name + " value " + strconv.Itoa(value)
}

func positionCommand(fen string) string {
	return "position fen " + fen
}

func goMoveTimeCommand(moveTimeMs, depth int) string {
	return fmt.Sprintf("go movetime %d depth %d", moveTimeMs, depth)
}

func goDepthCommand(depth int) string {
	return fmt.Sprintf("go depth %d", depth)
}

// State is the lifecycle state of a Client.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateThinking
	StateError
)

var stateNames = [...]string{
	StateUninitialized: "UNINITIALIZED",
	StateReady:         "READY",
	StateThinking:      "THINKING",
	StateError:         "ERROR",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// canServe reports whether requests may be queued in this state.
func (s State) canServe() bool {
	return s == StateReady || s == StateThinking
}
