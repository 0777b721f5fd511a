package uci

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/worker"
)

// Defaults applied by New.
const (
	DefaultThreads          = 2
	DefaultHashMB           = 16
	DefaultStartupTimeout   = 10 * time.Second
	DefaultOperationTimeout = 30 * time.Second
	DefaultStopGrace        = 500 * time.Millisecond
)

var errStreamClosed = fmt.Errorf("engine output closed: %w", io.EOF)

// Client owns one engine connection and serializes every request onto it.
// All methods are safe for concurrent use; concurrent requests are queued.
type Client struct {
	transport        Transport
	log              zerolog.Logger
	threads          int
	hashMB           int
	startupTimeout   time.Duration
	operationTimeout time.Duration
	stopGrace        time.Duration
	onState          func(State)

	pool  *worker.Pool
	lines chan string
	done  chan struct{}

	sendMu  sync.Mutex
	lastCmd string

	stateMu sync.Mutex
	state   State
	started bool
	closed  bool

	closeOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithThreads sets the engine's Threads option.
func WithThreads(n int) Option {
	return func(c *Client) {
		if n >= 1 {
			c.threads = n
		}
	}
}

// WithHashMB sets the engine's Hash option in megabytes.
func WithHashMB(mb int) Option {
	return func(c *Client) {
		if mb >= 1 {
			c.hashMB = mb
		}
	}
}

// WithStartupTimeout bounds the startup handshake.
func WithStartupTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.startupTimeout = d
		}
	}
}

// WithOperationTimeout bounds each request on top of the caller's context.
// Zero leaves requests bounded by the caller's context only.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.operationTimeout = d
		}
	}
}

// WithStopGrace sets how long an interrupted search may take to send its
// final bestmove before the session is considered out of sync.
func WithStopGrace(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.stopGrace = d
		}
	}
}

// WithStateListener registers fn to be called after every state change.
// fn runs on the goroutine that caused the change and must not block.
func WithStateListener(fn func(State)) Option {
	return func(c *Client) {
		c.onState = fn
	}
}

// New creates a client for the given transport. Call Start before use.
func New(t Transport, opts ...Option) *Client {
	c := &Client{
		transport:        t,
		log:              zerolog.Nop(),
		threads:          DefaultThreads,
		hashMB:           DefaultHashMB,
		startupTimeout:   DefaultStartupTimeout,
		operationTimeout: DefaultOperationTimeout,
		stopGrace:        DefaultStopGrace,
		lines:            make(chan string, 256),
		done:             make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = worker.NewPool(worker.WithWorkers(1))
	return c
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

// setState moves to s. ERROR only leaves to UNINITIALIZED, and a closed
// client stays UNINITIALIZED.
func (c *Client) setState(s State) {
	c.stateMu.Lock()
	old := c.state
	if old == s ||
		(c.closed && s != StateUninitialized) ||
		(old == StateError && s != StateUninitialized) {
		c.stateMu.Unlock()
		return
	}
	c.state = s
	listener := c.onState
	c.stateMu.Unlock()

	c.log.Info().Str("from", old.String()).Str("to", s.String()).Msg("engine state")
	if listener != nil {
		listener(s)
	}
}

// Start launches the engine and runs the handshake. Any failure leaves
// the client in ERROR for good.
func (c *Client) Start(ctx context.Context) error {
	c.stateMu.Lock()
	if c.started || c.closed {
		state := c.state
		c.stateMu.Unlock()
		if state.canServe() {
			return nil
		}
		return &errors.EngineError{Err: errors.ErrEngineUnavailable, Op: "start", State: state.String()}
	}
	c.started = true
	c.stateMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.startupTimeout)
	defer cancel()

	c.pool.Start()
	if err := c.transport.Start(ctx); err != nil {
		return c.startupFailure(err)
	}
	go c.readLoop()

	if err := c.pool.Do(ctx, c.handshake); err != nil {
		return c.startupFailure(err)
	}
	c.setState(StateReady)
	c.log.Info().Int("threads", c.threads).Int("hash_mb", c.hashMB).Msg("engine ready")
	return nil
}

func (c *Client) handshake(ctx context.Context) error {
	if err := c.send(cmdUCI); err != nil {
		return err
	}
	if err := c.awaitToken(ctx, tokenUCIOK); err != nil {
		return err
	}
	if err := c.send(setOptionCommand("Threads", c.threads)); err != nil {
		return err
	}
	if err := c.send(setOptionCommand("Hash", c.hashMB)); err != nil {
		return err
	}
	if err := c.send(cmdIsReady); err != nil {
		return err
	}
	return c.awaitToken(ctx, tokenReadyOK)
}

func (c *Client) startupFailure(cause error) error {
	state := c.State()
	c.setState(StateError)
	c.log.Error().Err(cause).Msg("engine startup failed")
	return &errors.EngineError{
		Err:     fmt.Errorf("%w: %w", errors.ErrEngineStartup, cause),
		Op:      "start",
		Command: c.lastCommand(),
		State:   state.String(),
	}
}

// readLoop pumps transport output into c.lines until the transport fails.
func (c *Client) readLoop() {
	defer close(c.lines)
	for {
		line, err := c.transport.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.log.Debug().Err(err).Msg("engine read")
			}
			return
		}
		c.log.Trace().Str("line", line).Msg("recv")
		select {
		case c.lines <- line:
		case <-c.done:
			return
		}
	}
}

// BestMove searches pos for at most moveTimeMs milliseconds and depth plies,
// whichever limit is reached first.
func (c *Client) BestMove(ctx context.Context, pos chess.Position, moveTimeMs, depth int) (Result, error) {
	return c.search(ctx, "bestmove", pos, goMoveTimeCommand(moveTimeMs, depth))
}

// Evaluate searches pos to the given depth with no time limit.
func (c *Client) Evaluate(ctx context.Context, pos chess.Position, depth int) (Result, error) {
	return c.search(ctx, "evaluate", pos, goDepthCommand(depth))
}

func (c *Client) search(ctx context.Context, op string, pos chess.Position, goCmd string) (Result, error) {
	if err := c.available(op); err != nil {
		return Result{}, err
	}
	ctx, cancel := c.withOperationTimeout(ctx)
	defer cancel()

	var res Result
	err := c.pool.Do(ctx, func(ctx context.Context) error {
		if err := c.available(op); err != nil {
			return err
		}
		if err := c.send(positionCommand(engine.ToFEN(pos))); err != nil {
			return c.protocolFailure(op, err)
		}
		if err := c.send(goCmd); err != nil {
			return c.protocolFailure(op, err)
		}
		c.setState(StateThinking)

		r, err := c.collectSearch(ctx, op, pos.SideToMove)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return Result{}, c.finish(op, err)
	}

	c.log.Debug().
		Str("op", op).
		Str("best", res.BestMove).
		Int("depth", res.Depth).
		Str("eval", FormatEvaluation(res)).
		Msg("search complete")
	return res, nil
}

// collectSearch reads until bestmove, folding info lines into the result.
func (c *Client) collectSearch(ctx context.Context, op string, side chess.Colour) (Result, error) {
	var agg aggregator
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, c.interrupt(op, ctx.Err(), true, isBestMove)
			}
			return Result{}, c.protocolFailure(op, err)
		}

		switch {
		case hasToken(line, tokenInfo):
			agg.add(ParseInfoLine(line))
		case hasToken(line, tokenBestMove):
			best, ponder, _ := ParseBestMoveLine(line)
			c.setState(StateReady)
			return agg.result(best, ponder, side), nil
		}
	}
}

// LegalMoves asks the engine for the coordinate moves legal in pos.
func (c *Client) LegalMoves(ctx context.Context, pos chess.Position) ([]string, error) {
	const op = "legalmoves"
	if err := c.available(op); err != nil {
		return nil, err
	}
	ctx, cancel := c.withOperationTimeout(ctx)
	defer cancel()

	var moves []string
	err := c.pool.Do(ctx, func(ctx context.Context) error {
		if err := c.available(op); err != nil {
			return err
		}
		if err := c.send(positionCommand(engine.ToFEN(pos))); err != nil {
			return c.protocolFailure(op, err)
		}
		if err := c.send(cmdShowBoard); err != nil {
			return c.protocolFailure(op, err)
		}

		m, err := c.collectLegalMoves(ctx, op)
		if err != nil {
			return err
		}
		moves = m
		return nil
	})
	if err != nil {
		return nil, c.finish(op, err)
	}
	return moves, nil
}

// collectLegalMoves scans the diagnostic dump for the "Legal moves:" line
// and keeps reading until the "Checkers" line that ends the dump.
func (c *Client) collectLegalMoves(ctx context.Context, op string) ([]string, error) {
	var moves []string
	found := false
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.interrupt(op, ctx.Err(), false, isCheckers)
			}
			return nil, c.protocolFailure(op, err)
		}

		if m, ok := ParseLegalMovesLine(line); ok {
			moves, found = m, true
			continue
		}
		if isCheckers(line) {
			if !found {
				return nil, c.protocolFailure(op, fmt.Errorf("no %q line before %q", legalMovesPrefix, checkersPrefix))
			}
			return moves, nil
		}
	}
}

// Stop asks the engine to end the current search early. It does not wait
// for the queue: the in-flight request still completes with the engine's
// final bestmove.
func (c *Client) Stop() error {
	if err := c.available("stop"); err != nil {
		return err
	}
	if err := c.send(cmdStop); err != nil {
		return &errors.EngineError{Err: fmt.Errorf("%w: %w", errors.ErrEngineUnavailable, err), Op: "stop", Command: cmdStop}
	}
	return nil
}

// NewGame tells the engine the next search belongs to a different game.
// It is queued behind any in-flight search and does not wait for a reply.
func (c *Client) NewGame(ctx context.Context) error {
	const op = "newgame"
	if err := c.available(op); err != nil {
		return err
	}
	err := c.pool.Do(ctx, func(ctx context.Context) error {
		if err := c.available(op); err != nil {
			return err
		}
		if err := c.send(cmdNewGame); err != nil {
			return c.protocolFailure(op, err)
		}
		return nil
	})
	if err != nil {
		return c.finish(op, err)
	}
	return nil
}

// Close cancels queued and in-flight requests, asks the engine to quit and
// releases the transport. Later requests fail with ErrEngineUnavailable.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.stateMu.Lock()
		c.closed = true
		started := c.started
		c.stateMu.Unlock()

		c.pool.Stop()
		close(c.done)
		if started {
			_ = c.send(cmdQuit)
			err = c.transport.Shutdown()
		}
		c.pool.Close()
		c.setState(StateUninitialized)
		c.log.Info().Msg("engine closed")
	})
	return err
}

// interrupt handles a request whose context ended while the engine was
// still producing output. With sendStop the search is stopped first. The
// remaining output is drained until terminal matches; if it does within
// the stop grace the session stays usable, otherwise it moves to ERROR.
func (c *Client) interrupt(op string, cause error, sendStop bool, terminal func(string) bool) error {
	c.log.Warn().Str("op", op).Err(cause).Msg("request interrupted")
	if c.isClosed() {
		return c.unavailable(op)
	}
	if sendStop {
		if err := c.send(cmdStop); err != nil {
			return c.protocolFailure(op, err)
		}
	}

	grace := time.NewTimer(c.stopGrace)
	defer grace.Stop()
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return c.protocolFailure(op, errStreamClosed)
			}
			if terminal(line) {
				c.setState(StateReady)
				return &errors.EngineError{Err: cause, Op: op, Command: c.lastCommand(), State: c.State().String()}
			}
		case <-grace.C:
			return c.protocolFailure(op, fmt.Errorf("output not drained within %s: %w", c.stopGrace, cause))
		case <-c.done:
			return c.unavailable(op)
		}
	}
}

// protocolFailure moves the client to ERROR: the stream can no longer be
// trusted to line up with requests.
func (c *Client) protocolFailure(op string, cause error) error {
	if c.isClosed() {
		return c.unavailable(op)
	}
	state := c.State()
	c.setState(StateError)
	c.log.Error().Str("op", op).Err(cause).Msg("engine protocol failure")
	return &errors.EngineError{
		Err:     fmt.Errorf("%w: %w", errors.ErrEngineProtocol, cause),
		Op:      op,
		Command: c.lastCommand(),
		State:   state.String(),
	}
}

// finish maps an error returned through the pool to the caller's error.
func (c *Client) finish(op string, err error) error {
	var engErr *errors.EngineError
	switch {
	case errors.As(err, &engErr):
		return err
	case errors.Is(err, worker.ErrPoolStopped):
		return c.unavailable(op)
	default:
		// The context ended while the request was still queued.
		return &errors.EngineError{Err: err, Op: op, State: c.State().String()}
	}
}

func (c *Client) available(op string) error {
	if s := c.State(); !s.canServe() {
		return &errors.EngineError{Err: errors.ErrEngineUnavailable, Op: op, State: s.String()}
	}
	return nil
}

func (c *Client) unavailable(op string) error {
	return &errors.EngineError{Err: errors.ErrEngineUnavailable, Op: op, State: c.State().String()}
}

func (c *Client) isClosed() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.closed
}

func (c *Client) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.operationTimeout > 0 {
		return context.WithTimeout(ctx, c.operationTimeout)
	}
	return context.WithCancel(ctx)
}

// send writes one command line. It is the only writer to the transport.
func (c *Client) send(line string) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	c.lastCmd = line
	c.log.Debug().Str("cmd", line).Msg("send")
	return c.transport.SendLine(line)
}

func (c *Client) lastCommand() string {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.lastCmd
}

// readLine returns the next output line, or an error when the output ends
// or ctx is done.
func (c *Client) readLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.lines:
		if !ok {
			return "", errStreamClosed
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// awaitToken reads until a line equal to token arrives.
func (c *Client) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", token, err)
		}
		if strings.TrimSpace(line) == token {
			return nil
		}
	}
}

// hasToken reports whether line starts with the word token.
func hasToken(line, token string) bool {
	if !strings.HasPrefix(line, token) {
		return false
	}
	return len(line) == len(token) || line[len(token)] == ' '
}

func isBestMove(line string) bool {
	return hasToken(line, tokenBestMove)
}

func isCheckers(line string) bool {
	return strings.HasPrefix(line, checkersPrefix)
}
