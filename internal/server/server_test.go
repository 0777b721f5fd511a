package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/notation"
	"github.com/lgbarn/gambit/internal/testutil"
	"github.com/lgbarn/gambit/internal/training"
	"github.com/lgbarn/gambit/internal/uci"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubEngine answers every request with the same canned data.
type stubEngine struct {
	result uci.Result
	legal  []string
	err    error
}

func (e *stubEngine) BestMove(context.Context, chess.Position, int, int) (uci.Result, error) {
	return e.result, e.err
}

func (e *stubEngine) Evaluate(context.Context, chess.Position, int) (uci.Result, error) {
	return e.result, e.err
}

func (e *stubEngine) LegalMoves(context.Context, chess.Position) ([]string, error) {
	return e.legal, e.err
}

func newTestServer(e *stubEngine) *Server {
	return New(training.NewService(e), zerolog.Nop())
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func fenBody(fen string) string {
	return fmt.Sprintf(`{"fen":%q}`, fen)
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubEngine{})
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertContains(t, w.Body.String(), `"status":"ok"`)
}

func TestBestMove(t *testing.T) {
	s := newTestServer(&stubEngine{result: uci.Result{
		BestMove:   "e2e4",
		PonderMove: "e7e5",
		Evaluation: 35,
		Depth:      15,
		PV:         []string{"e2e4", "e7e5", "g1f3"},
	}})

	w := post(t, s, "/api/bestmove", fenBody(testutil.StartFEN))
	testutil.AssertEqual(t, w.Code, http.StatusOK)

	var got resultResponse
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got, resultResponse{
		BestMove:   "e2e4",
		PonderMove: "e7e5",
		Evaluation: 35,
		Display:    "+0.35",
		Depth:      15,
		PV:         []string{"e2e4", "e7e5", "g1f3"},
		SAN:        []string{"e4", "e5", "Nf3"},
	})
}

func TestEvaluate_Mate(t *testing.T) {
	in := 2
	s := newTestServer(&stubEngine{result: uci.Result{BestMove: "f3f7", MateIn: &in, Depth: 9, PV: []string{"garbage"}}})

	w := post(t, s, "/api/evaluate", fenBody(testutil.StartFEN))
	testutil.AssertEqual(t, w.Code, http.StatusOK)

	var got resultResponse
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got.Display, "+M2")
	testutil.AssertEqual(t, *got.MateIn, 2)
	testutil.AssertEqual(t, got.PV, []string{"garbage"})
	testutil.AssertTrue(t, got.SAN == nil, "unreadable PV should have no SAN")
}

func TestLegalMoves(t *testing.T) {
	s := newTestServer(&stubEngine{legal: []string{"e2e4", "e2e3", "g1f3"}})

	w := post(t, s, "/api/legal-moves", `{"fen":"`+testutil.StartFEN+`","square":"e2"}`)
	testutil.AssertEqual(t, w.Code, http.StatusOK)

	var got struct {
		Square string   `json:"square"`
		Moves  []string `json:"moves"`
	}
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got.Square, "e2")
	testutil.AssertEqual(t, got.Moves, []string{"e2e4", "e2e3"})
}

func TestLegalMoves_AllSquares(t *testing.T) {
	s := newTestServer(&stubEngine{legal: []string{"e2e4", "g1f3"}})

	w := post(t, s, "/api/legal-moves", fenBody(testutil.StartFEN))
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertContains(t, w.Body.String(), `"moves":["e2e4","g1f3"]`)
}

func TestHint(t *testing.T) {
	s := newTestServer(&stubEngine{result: uci.Result{BestMove: "g1f3"}})

	w := post(t, s, "/api/hint", fenBody(testutil.StartFEN))
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertContains(t, w.Body.String(), `"square":"g1"`)
}

func TestStatus(t *testing.T) {
	s := newTestServer(&stubEngine{legal: []string{}})

	w := post(t, s, "/api/status", fenBody(testutil.MatedFEN))
	testutil.AssertEqual(t, w.Code, http.StatusOK)

	var got statusResponse
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got, statusResponse{SideToMove: "Black", Check: true, Checkmate: true})
}

func TestCCT(t *testing.T) {
	s := newTestServer(&stubEngine{legal: []string{"e4d5", "h1h8", "e1f1"}})

	w := post(t, s, "/api/cct", fenBody("4k3/8/8/3p4/4P3/8/8/4K2R w K - 0 1"))
	testutil.AssertEqual(t, w.Code, http.StatusOK)

	var got notation.Classification
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got.Checks, []string{"h1h8"})
	testutil.AssertEqual(t, got.Captures, []string{"e4d5"})
	testutil.AssertEqual(t, got.Quiet, []string{"e1f1"})
}

func TestThreats(t *testing.T) {
	s := newTestServer(&stubEngine{err: errors.ErrEngineUnavailable})
	w := post(t, s, "/api/threats", fenBody("4k3/8/2q1r3/8/3N4/8/8/4K3 b - - 0 1"))
	testutil.AssertEqual(t, w.Code, http.StatusOK, "body %s", w.Body.String())

	var got struct {
		Squares []string `json:"squares"`
	}
	testutil.AssertNoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	testutil.AssertEqual(t, got.Squares, []string{"c6", "e6"})
}

func TestErrorStatusCodes(t *testing.T) {
	timeout := &errors.EngineError{Op: "bestmove", Err: fmt.Errorf("%w: %w", errors.ErrEngineProtocol, context.DeadlineExceeded)}

	tests := []struct {
		name   string
		path   string
		body   string
		engine *stubEngine
		want   int
	}{
		{"missing fen", "/api/bestmove", `{}`, &stubEngine{}, http.StatusBadRequest},
		{"bad json", "/api/bestmove", `{`, &stubEngine{}, http.StatusBadRequest},
		{"malformed fen", "/api/evaluate", fenBody("8/8 w"), &stubEngine{}, http.StatusBadRequest},
		{"bad square", "/api/legal-moves", `{"fen":"` + testutil.StartFEN + `","square":"z9"}`, &stubEngine{}, http.StatusBadRequest},
		{"no move", "/api/hint", fenBody(testutil.StalemateFEN), &stubEngine{}, http.StatusUnprocessableEntity},
		{"unavailable", "/api/bestmove", fenBody(testutil.StartFEN), &stubEngine{err: errors.ErrEngineUnavailable}, http.StatusServiceUnavailable},
		{"protocol", "/api/evaluate", fenBody(testutil.StartFEN), &stubEngine{err: errors.ErrEngineProtocol}, http.StatusBadGateway},
		{"timeout", "/api/bestmove", fenBody(testutil.StartFEN), &stubEngine{err: timeout}, http.StatusGatewayTimeout},
		{"unknown", "/api/status", fenBody(testutil.StartFEN), &stubEngine{err: fmt.Errorf("boom")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, newTestServer(tt.engine), tt.path, tt.body)
			testutil.AssertEqual(t, w.Code, tt.want, "body %s", w.Body.String())
			testutil.AssertContains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(&stubEngine{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0", time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
