package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/training"
	"github.com/lgbarn/gambit/internal/uci"
)

// positionRequest is the body every API call takes. Square is only read
// by the legal-moves route.
type positionRequest struct {
	FEN    string `json:"fen" binding:"required"`
	Square string `json:"square"`
}

// resultResponse is a finished search.
type resultResponse struct {
	BestMove   string   `json:"bestmove"`
	PonderMove string   `json:"ponder,omitempty"`
	Evaluation int      `json:"cp"`
	MateIn     *int     `json:"mate,omitempty"`
	Display    string   `json:"display"`
	Depth      int      `json:"depth"`
	PV         []string `json:"pv"`
	SAN        []string `json:"san,omitempty"`
}

// statusResponse carries the resolved flags of a position.
type statusResponse struct {
	SideToMove string `json:"side_to_move"`
	Check      bool   `json:"check"`
	Checkmate  bool   `json:"checkmate"`
	Stalemate  bool   `json:"stalemate"`
	Draw       bool   `json:"draw"`
}

// BestMove handles POST /api/bestmove.
func (s *Server) BestMove(c *gin.Context) {
	s.search(c, s.svc.GetBestMove)
}

// Evaluate handles POST /api/evaluate.
func (s *Server) Evaluate(c *gin.Context) {
	s.search(c, s.svc.GetEvaluation)
}

func (s *Server) search(c *gin.Context, run func(context.Context, chess.Position) (uci.Result, error)) {
	_, pos, ok := s.bind(c)
	if !ok {
		return
	}
	res, err := run(c.Request.Context(), pos)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := resultResponse{
		BestMove:   res.BestMove,
		PonderMove: res.PonderMove,
		Evaluation: res.Evaluation,
		MateIn:     res.MateIn,
		Display:    uci.FormatEvaluation(res),
		Depth:      res.Depth,
		PV:         res.PV,
	}
	// A PV the rules library rejects is still returned in coordinate form.
	if san, err := training.ReviewLine(pos, res.PV); err == nil {
		out.SAN = san
	}
	c.JSON(http.StatusOK, out)
}

// LegalMoves handles POST /api/legal-moves. Without a square every legal
// move is returned.
func (s *Server) LegalMoves(c *gin.Context) {
	req, pos, ok := s.bind(c)
	if !ok {
		return
	}
	if req.Square == "" {
		moves, err := s.svc.GetLegalMoves(c.Request.Context(), pos)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"moves": moves})
		return
	}

	sq, err := chess.ParseSquare(req.Square)
	if err != nil {
		s.fail(c, err)
		return
	}
	moves, err := s.svc.GetLegalMovesForSquare(c.Request.Context(), pos, sq)
	if err != nil {
		s.fail(c, err)
		return
	}

	coords := make([]string, len(moves))
	for i, m := range moves {
		coords[i] = m.String()
	}
	c.JSON(http.StatusOK, gin.H{
		"square": sq.String(),
		"moves":  coords,
	})
}

// Hint handles POST /api/hint.
func (s *Server) Hint(c *gin.Context) {
	_, pos, ok := s.bind(c)
	if !ok {
		return
	}
	sq, err := s.svc.GetHint(c.Request.Context(), pos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"square": sq.String()})
}

// Status handles POST /api/status.
func (s *Server) Status(c *gin.Context) {
	_, pos, ok := s.bind(c)
	if !ok {
		return
	}
	st, err := s.svc.GetStatus(c.Request.Context(), pos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusResponse{
		SideToMove: st.SideToMove.String(),
		Check:      st.Check,
		Checkmate:  st.Checkmate,
		Stalemate:  st.Stalemate,
		Draw:       st.Draw,
	})
}

// CCT handles POST /api/cct.
func (s *Server) CCT(c *gin.Context) {
	_, pos, ok := s.bind(c)
	if !ok {
		return
	}
	cls, err := s.svc.ScanCCT(c.Request.Context(), pos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cls)
}

// Threats handles POST /api/threats. It needs no engine.
func (s *Server) Threats(c *gin.Context) {
	_, pos, ok := s.bind(c)
	if !ok {
		return
	}
	squares := training.ScanThreats(pos)
	names := make([]string, 0, len(squares))
	for _, sq := range squares {
		names = append(names, sq.String())
	}
	c.JSON(http.StatusOK, gin.H{"squares": names})
}

// bind decodes the request body and its position. On failure the response
// has already been written.
func (s *Server) bind(c *gin.Context) (positionRequest, chess.Position, bool) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, chess.Position{}, false
	}
	pos, err := engine.ParseFEN(req.FEN)
	if err != nil {
		s.fail(c, err)
		return req, chess.Position{}, false
	}
	return req, pos, true
}

// fail writes err with the status code for its kind.
func (s *Server) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.FullPath()).Int("status", code).Msg("request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrMalformedInput),
		errors.Is(err, errors.ErrInvalidSquare),
		errors.Is(err, errors.ErrInvalidMove):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNoMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errors.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrEngineProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
