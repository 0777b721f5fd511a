// gambit drives a UCI analysis engine for chess training: best moves,
// evaluations, legal moves, hints, batch analysis and an HTTP API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lgbarn/gambit/internal/config"
	"github.com/lgbarn/gambit/internal/errors"
	"github.com/lgbarn/gambit/internal/logging"
	"github.com/lgbarn/gambit/internal/training"
	"github.com/lgbarn/gambit/internal/uci"
)

const programVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "gambit: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// run parses args, loads configuration and dispatches one subcommand.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, rest, err := parseGlobalFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.help {
		usage(stdout)
		return nil
	}
	if opts.version {
		fmt.Fprintf(stdout, "gambit version %s\n", programVersion)
		return nil
	}
	if len(rest) == 0 {
		usage(stderr)
		return fmt.Errorf("no command given: %w", errUsage)
	}

	cmd, ok := findCommand(rest[0])
	if !ok {
		usage(stderr)
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}

	a := &app{cfg: cfg, log: log, in: stdin, out: stdout}
	defer a.close()
	return cmd.run(ctx, a, rest[1:])
}

// engineStarter starts the analysis engine and returns it with its closer.
type engineStarter func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (training.Engine, func() error, error)

// newEngine is replaced in tests.
var newEngine engineStarter = startEngine

// startEngine runs the configured engine binary and completes the handshake.
func startEngine(ctx context.Context, cfg *config.Config, log zerolog.Logger) (training.Engine, func() error, error) {
	client := uci.New(
		uci.NewProcessTransport(cfg.Engine.Path, cfg.Engine.Args...),
		uci.WithLogger(logging.Component(log, "uci")),
		uci.WithThreads(cfg.Engine.Threads),
		uci.WithHashMB(cfg.Engine.HashMB),
		uci.WithStartupTimeout(cfg.Engine.StartupTimeout),
		uci.WithOperationTimeout(cfg.Engine.OperationTimeout),
		uci.WithStopGrace(cfg.Engine.StopGrace),
	)
	if err := client.Start(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, client.Close, nil
}
