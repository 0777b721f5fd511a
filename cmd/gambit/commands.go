package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lgbarn/gambit/internal/chess"
	"github.com/lgbarn/gambit/internal/config"
	"github.com/lgbarn/gambit/internal/engine"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/logging"
	"github.com/lgbarn/gambit/internal/output"
	"github.com/lgbarn/gambit/internal/server"
	"github.com/lgbarn/gambit/internal/training"
	"github.com/lgbarn/gambit/internal/uci"
)

// command is one gambit subcommand.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"bestmove", "search a position for the best move", runBestMove},
		{"eval", "evaluate a position", runEval},
		{"legal", "list legal moves, optionally for one square", runLegal},
		{"hint", "name the square of the piece to move", runHint},
		{"batch", "evaluate FEN lines and write YAML records", runBatch},
		{"serve", "serve the HTTP API", runServe},
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// app carries what every subcommand needs. The engine is started on first use.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	in  io.Reader
	out io.Writer

	engine      training.Engine
	closeEngine func() error
}

// service returns a Service with the given search budgets, starting the
// engine if it is not running yet.
func (a *app) service(ctx context.Context, search config.SearchConfig) (*training.Service, error) {
	if a.engine == nil {
		e, closer, err := newEngine(ctx, a.cfg, a.log)
		if err != nil {
			return nil, err
		}
		a.engine, a.closeEngine = e, closer
	}
	return training.NewService(a.engine,
		training.WithSearch(search),
		training.WithLogger(logging.Component(a.log, "training")),
	), nil
}

func (a *app) close() {
	if a.closeEngine == nil {
		return
	}
	if err := a.closeEngine(); err != nil {
		a.log.Warn().Err(err).Msg("engine shutdown")
	}
}

// newFlagSet returns a flag set for a subcommand that reports errors
// instead of exiting.
func (a *app) newFlagSet(name string) *flag.FlagSet {
	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	return set
}

// parsePosition parses flags and reads the position from -fen or the
// remaining arguments, defaulting to the starting position.
func parsePosition(set *flag.FlagSet, args []string) (chess.Position, error) {
	fen := set.String("fen", "", "Position in FEN (default: starting position)")
	if err := set.Parse(args); err != nil {
		return chess.Position{}, fmt.Errorf("%s: %v: %w", set.Name(), err, errUsage)
	}
	text := *fen
	if text == "" && set.NArg() > 0 {
		text = strings.Join(set.Args(), " ")
	}
	if text == "" {
		return engine.NewInitialPosition(), nil
	}
	return engine.ParseFEN(text)
}

func runBestMove(ctx context.Context, a *app, args []string) error {
	search := a.cfg.Search
	set := a.newFlagSet("bestmove")
	set.IntVar(&search.MoveTimeMs, "movetime", search.MoveTimeMs, "Search time in milliseconds")
	set.IntVar(&search.Depth, "depth", search.Depth, "Search depth")
	pos, err := parsePosition(set, args)
	if err != nil {
		return err
	}

	svc, err := a.service(ctx, search)
	if err != nil {
		return err
	}
	res, err := svc.GetBestMove(ctx, pos)
	if err != nil {
		return err
	}

	if res.BestMove == "" {
		fmt.Fprintln(a.out, "bestmove (none)")
	} else {
		fmt.Fprintf(a.out, "bestmove %s\n", res.BestMove)
	}
	if res.PonderMove != "" {
		fmt.Fprintf(a.out, "ponder %s\n", res.PonderMove)
	}
	printResult(a.out, pos, res)
	return nil
}

func runEval(ctx context.Context, a *app, args []string) error {
	search := a.cfg.Search
	set := a.newFlagSet("eval")
	set.IntVar(&search.EvalDepth, "depth", search.EvalDepth, "Evaluation depth")
	pos, err := parsePosition(set, args)
	if err != nil {
		return err
	}

	svc, err := a.service(ctx, search)
	if err != nil {
		return err
	}
	res, err := svc.GetEvaluation(ctx, pos)
	if err != nil {
		return err
	}
	printResult(a.out, pos, res)
	return nil
}

// printResult writes the evaluation, depth and principal variation.
func printResult(w io.Writer, pos chess.Position, res uci.Result) {
	fmt.Fprintf(w, "eval %s\n", uci.FormatEvaluation(res))
	fmt.Fprintf(w, "depth %d\n", res.Depth)
	if len(res.PV) == 0 {
		return
	}
	line, err := training.ReviewLine(pos, res.PV)
	if err != nil {
		line = res.PV
	}
	fmt.Fprintf(w, "pv %s\n", strings.Join(line, " "))
}

func runLegal(ctx context.Context, a *app, args []string) error {
	set := a.newFlagSet("legal")
	square := set.String("square", "", "Only moves from this square")
	pos, err := parsePosition(set, args)
	if err != nil {
		return err
	}

	from := chess.NoSquare
	if *square != "" {
		if from, err = chess.ParseSquare(*square); err != nil {
			return err
		}
	}

	svc, err := a.service(ctx, a.cfg.Search)
	if err != nil {
		return err
	}

	if from == chess.NoSquare {
		moves, err := svc.GetLegalMoves(ctx, pos)
		if err != nil {
			return err
		}
		for _, m := range moves {
			fmt.Fprintln(a.out, m)
		}
		return nil
	}

	moves, err := svc.GetLegalMovesForSquare(ctx, pos, from)
	if err != nil {
		return err
	}
	for _, m := range moves {
		fmt.Fprintln(a.out, m.String())
	}
	return nil
}

func runHint(ctx context.Context, a *app, args []string) error {
	pos, err := parsePosition(a.newFlagSet("hint"), args)
	if err != nil {
		return err
	}
	svc, err := a.service(ctx, a.cfg.Search)
	if err != nil {
		return err
	}
	sq, err := svc.GetHint(ctx, pos)
	if errors.Is(err, errors.ErrNoMove) {
		fmt.Fprintln(a.out, "no move")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "move the piece on %s\n", sq)
	return nil
}

func runBatch(ctx context.Context, a *app, args []string) error {
	search := a.cfg.Search
	set := a.newFlagSet("batch")
	in := set.String("in", "-", "File of FEN lines, - for stdin")
	workers := set.Int("workers", 2, "Concurrent requests queued on the engine")
	dedupe := set.Bool("dedupe", false, "Mark repeated positions instead of evaluating them again")
	format := set.String("format", output.FormatYAML, "Output format: yaml, json, jsonl")
	set.IntVar(&search.EvalDepth, "depth", search.EvalDepth, "Evaluation depth")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("batch: %v: %w", err, errUsage)
	}
	if *workers < 1 {
		return fmt.Errorf("batch: -workers must be positive: %w", errUsage)
	}
	w, err := output.NewWriter(*format, a.out)
	if err != nil {
		return fmt.Errorf("batch: %v: %w", err, errUsage)
	}

	r := a.in
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	svc, err := a.service(ctx, search)
	if err != nil {
		return err
	}
	n, err := analyzeBatch(ctx, svc, r, w, batchOptions{Workers: *workers, SkipDuplicates: *dedupe})
	a.log.Info().Int("positions", n).Msg("batch finished")
	return err
}

func runServe(ctx context.Context, a *app, args []string) error {
	set := a.newFlagSet("serve")
	addr := set.String("addr", a.cfg.Server.Addr, "Listen address")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("serve: %v: %w", err, errUsage)
	}

	svc, err := a.service(ctx, a.cfg.Search)
	if err != nil {
		return err
	}
	srv := server.New(svc, logging.Component(a.log, "http"))
	return srv.Run(ctx, *addr, a.cfg.Server.ShutdownTimeout)
}
