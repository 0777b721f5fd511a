// flags.go - Command-line flag definitions and configuration
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/lgbarn/gambit/internal/config"
	"github.com/lgbarn/gambit/internal/errors"
)

var errUsage = fmt.Errorf("usage error")

// globalOptions are the flags that come before the subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	enginePath string
	threads    int
	hashMB     int
	logLevel   string
	logFormat  string
	version    bool
	help       bool
}

// parseGlobalFlags parses the leading flags and returns the remaining
// arguments, starting with the subcommand name.
func parseGlobalFlags(args []string, stderr io.Writer) (globalOptions, []string, error) {
	var opts globalOptions

	set := flag.NewFlagSet("gambit", flag.ContinueOnError)
	set.SetOutput(stderr)
	set.Usage = func() { usage(stderr) }

	set.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	set.StringVar(&opts.envFile, "env", ".env", "Environment file loaded before configuration (empty to skip)")
	set.StringVar(&opts.enginePath, "engine", "", "Engine binary (overrides configuration)")
	set.IntVar(&opts.threads, "threads", 0, "Engine threads (overrides configuration)")
	set.IntVar(&opts.hashMB, "hash", 0, "Engine hash size in MB (overrides configuration)")
	set.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	set.StringVar(&opts.logFormat, "log-format", "", "Log format: json, console")
	set.BoolVar(&opts.version, "version", false, "Print version and exit")
	set.BoolVar(&opts.help, "h", false, "Show help")

	if err := set.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return globalOptions{help: true}, nil, nil
		}
		return opts, nil, fmt.Errorf("%v: %w", err, errUsage)
	}
	return opts, set.Args(), nil
}

// apply overrides cfg with the flags that were set.
func (o globalOptions) apply(cfg *config.Config) {
	if o.enginePath != "" {
		cfg.Engine.Path = o.enginePath
	}
	if o.threads > 0 {
		cfg.Engine.Threads = o.threads
	}
	if o.hashMB > 0 {
		cfg.Engine.HashMB = o.hashMB
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
}

// loadConfig loads the env file, the configuration file and the
// environment, then applies flag overrides.
func loadConfig(opts globalOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "loading %s", opts.envFile)
		}
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: gambit [options] <command> [command options]\n\n")
	fmt.Fprintf(w, "Chess training helpers backed by a UCI analysis engine.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nOptions:\n")
	fmt.Fprintf(w, "  -config file     YAML configuration file\n")
	fmt.Fprintf(w, "  -env file        environment file (default .env)\n")
	fmt.Fprintf(w, "  -engine path     engine binary\n")
	fmt.Fprintf(w, "  -threads n       engine threads\n")
	fmt.Fprintf(w, "  -hash mb         engine hash size\n")
	fmt.Fprintf(w, "  -log-level lvl   trace, debug, info, warn, error\n")
	fmt.Fprintf(w, "  -log-format fmt  json or console\n")
	fmt.Fprintf(w, "  -version         print version and exit\n")
}
