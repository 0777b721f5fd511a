// Package training implements the use-cases the trainer builds on:
// best moves, evaluations, hints, puzzle checks, blunder detection and
// move classification. All engine access goes through the Engine interface.
package training

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/config"
	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/notation"
	"github.com/lgbarn/gambit/internal/uci"
)

// Engine is the analysis capability the use-cases need.
// *uci.Client satisfies it.
type Engine interface {
	BestMove(ctx context.Context, pos chess.Position, moveTimeMs, depth int) (uci.Result, error)
	Evaluate(ctx context.Context, pos chess.Position, depth int) (uci.Result, error)
	LegalMoves(ctx context.Context, pos chess.Position) ([]string, error)
}

// Service runs the training use-cases against one engine.
type Service struct {
	engine Engine
	search config.SearchConfig
	log    zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSearch overrides the search budgets.
func WithSearch(search config.SearchConfig) ServiceOption {
	return func(s *Service) {
		s.search = search
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates a Service backed by e.
func NewService(e Engine, opts ...ServiceOption) *Service {
	s := &Service{
		engine: e,
		search: config.NewSearchConfig(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns the search budgets in use.
func (s *Service) Search() config.SearchConfig {
	return s.search
}

// GetLegalMoves returns every legal move in pos in coordinate form.
func (s *Service) GetLegalMoves(ctx context.Context, pos chess.Position) ([]string, error) {
	return s.engine.LegalMoves(ctx, pos)
}

// GetLegalMovesForSquare returns the legal moves of the piece on sq.
// Moves come back with From, To and Promotion set. An unknown promotion
// letter leaves the move without a promotion piece.
func (s *Service) GetLegalMovesForSquare(ctx context.Context, pos chess.Position, sq chess.Square) ([]chess.Move, error) {
	coords, err := s.engine.LegalMoves(ctx, pos)
	if err != nil {
		return nil, err
	}

	prefix := sq.String()
	moves := make([]chess.Move, 0, len(coords))
	for _, coord := range coords {
		if !strings.HasPrefix(coord, prefix) {
			continue
		}
		m, err := chess.ParseMove(coord)
		if err != nil && len(coord) == 5 {
			s.log.Debug().Str("move", coord).Msg("ignoring unknown promotion letter")
			m, err = chess.ParseMove(coord[:4])
		}
		if err != nil {
			s.log.Warn().Str("move", coord).Err(err).Msg("skipping unreadable engine move")
			continue
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// GetBestMove searches pos with the configured move time and depth.
func (s *Service) GetBestMove(ctx context.Context, pos chess.Position) (uci.Result, error) {
	return s.engine.BestMove(ctx, pos, s.search.MoveTimeMs, s.search.Depth)
}

// GetEvaluation evaluates pos at the configured evaluation depth.
func (s *Service) GetEvaluation(ctx context.Context, pos chess.Position) (uci.Result, error) {
	return s.engine.Evaluate(ctx, pos, s.search.EvalDepth)
}

// GetHint returns the square of the piece the engine would move.
func (s *Service) GetHint(ctx context.Context, pos chess.Position) (chess.Square, error) {
	res, err := s.engine.BestMove(ctx, pos, s.search.HintMoveTimeMs, s.search.Depth)
	if err != nil {
		return chess.NoSquare, err
	}
	if res.BestMove == "" {
		return chess.NoSquare, errors.ErrNoMove
	}
	m, err := chess.ParseMove(res.BestMove)
	if err != nil {
		return chess.NoSquare, errors.Wrap(err, "hint")
	}
	return m.From, nil
}

// IsBlunder reports whether playing move from pos costs the mover more than
// the configured threshold. Both evaluations are read from White's side and
// turned to the mover's side before comparing.
func (s *Service) IsBlunder(ctx context.Context, pos chess.Position, move chess.Move) (bool, error) {
	before, err := s.engine.Evaluate(ctx, pos, s.search.EvalDepth)
	if err != nil {
		return false, err
	}
	after, err := s.engine.Evaluate(ctx, engine.ApplyMove(pos, move), s.search.EvalDepth)
	if err != nil {
		return false, err
	}

	drop := before.Score() - after.Score()
	if pos.SideToMove == chess.Black {
		drop = -drop
	}
	s.log.Debug().
		Str("move", move.String()).
		Int("before", before.Score()).
		Int("after", after.Score()).
		Int("drop", drop).
		Msg("blunder check")
	return drop > s.search.BlunderThresholdCp, nil
}

// ScanCCT sorts the legal moves of pos into checks, captures and the
// remaining quiet moves.
func (s *Service) ScanCCT(ctx context.Context, pos chess.Position) (notation.Classification, error) {
	coords, err := s.engine.LegalMoves(ctx, pos)
	if err != nil {
		return notation.Classification{}, err
	}
	return notation.Classify(pos, coords)
}

// GetStatus returns pos with its check, checkmate, stalemate and draw flags
// resolved against the engine's legal move list.
func (s *Service) GetStatus(ctx context.Context, pos chess.Position) (chess.Position, error) {
	coords, err := s.engine.LegalMoves(ctx, pos)
	if err != nil {
		return chess.Position{}, err
	}
	return engine.ResolveStatus(pos, len(coords)), nil
}

// ScanThreats returns, in square order, the squares of side-to-move pieces
// that the opponent attacks.
func ScanThreats(pos chess.Position) []chess.Square {
	opponent := pos.SideToMove.Opposite()
	threats := []chess.Square{}
	for sq := chess.Square(0); sq < chess.NumSquares; sq++ {
		if !pos.IsOccupiedBy(sq, pos.SideToMove) {
			continue
		}
		if engine.IsSquareAttacked(pos, sq, opponent) {
			threats = append(threats, sq)
		}
	}
	return threats
}

// ParseEngineMove converts an engine move string into a Move with its
// descriptive flags filled from pos.
func ParseEngineMove(pos chess.Position, coordinate string) (chess.Move, error) {
	m, err := chess.ParseMove(coordinate)
	if err != nil {
		return chess.Move{}, err
	}
	return engine.DescribeMove(pos, m), nil
}

// ReviewLine renders a principal variation from pos in algebraic notation.
func ReviewLine(pos chess.Position, pv []string) ([]string, error) {
	return notation.Line(pos, pv)
}
