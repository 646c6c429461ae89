// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"yggdrasil/config"
	"yggdrasil/internal/core"
	"yggdrasil/internal/metrics"
	"yggdrasil/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X yggdrasil/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the relay server or the line client.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	if err := config.LoadFromEnv(cfg); err != nil {
		return err
	}
	envVerbose := cfg.Verbose

	fs := flag.NewFlagSet("yggdrasil", flag.ContinueOnError)

	// ── server ───────────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Run the relay server")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Bind address (with -l)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "Listen port (with -l)")
	fs.StringVar(&cfg.Path, "path", cfg.Path, "WebSocket upgrade path")
	fs.StringVar(&cfg.StatsPath, "stats-path", cfg.StatsPath, `Metrics JSON path ("" disables)`)
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "Close sessions silent this long (0 = never)")
	fs.Int64Var(&cfg.ReadLimit, "read-limit", cfg.ReadLimit, "Largest accepted frame in bytes (0 = unlimited)")
	fs.DurationVar(&cfg.GracePeriod, "grace-period", cfg.GracePeriod, "Shutdown wait for open sessions")

	// ── client ───────────────────────────────────────────────────
	fs.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "WebSocket handshake timeout")
	fs.IntVar(&cfg.DialAttempts, "dial-attempts", cfg.DialAttempts, "Connection attempts before giving up")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = envVerbose
	}

	if showHelp || (len(args) == 0 && !cfg.Listen && cfg.URL == "") {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("yggdrasil %s\n", version)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	var m *metrics.Collector
	if cfg.Listen {
		m = metrics.New()
	}

	mode, err := core.Build(cfg, logger, m)
	if err != nil {
		return err
	}

	if dryRun {
		describe(cfg)
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Listen {
		if len(remaining) > 0 {
			return fmt.Errorf("listen mode takes no arguments, got %q", remaining)
		}
		return nil
	}

	switch len(remaining) {
	case 0: // URL from YGG_URL
	case 1:
		cfg.URL = remaining[0]
	default:
		return fmt.Errorf("expected one server URL, got %d arguments", len(remaining))
	}
	return nil
}

func describe(cfg *config.Config) {
	if cfg.Listen {
		fmt.Fprintf(os.Stderr, "would listen on ws://%s%s", cfg.ListenAddr(), cfg.Path)
		if cfg.StatsPath != "" {
			fmt.Fprintf(os.Stderr, " (stats on %s)", cfg.StatsPath)
		}
		fmt.Fprintln(os.Stderr)
		return
	}
	fmt.Fprintf(os.Stderr, "would connect to %s (%d attempts)\n", cfg.URL, cfg.DialAttempts)
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Yggdrasil – Anonymous WebSocket Pair Relay v%s

Pick a name, find someone by theirs, and chat.  No accounts, no history.

Usage:
  yggdrasil -l [options]                      Run the relay server
  yggdrasil [options] <ws://host:port/path>   Connect as a line client

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  Every long option has a %[1]s* counterpart, e.g. %[1]sPORT=9000 or
  %[1]sURL=ws://relay:8080/ws.  Flags win over the environment.

Examples:
  yggdrasil -l -p 8080                        Serve on :8080/ws
  yggdrasil -l --idle-timeout 10m -vv         Drop silent sessions
  yggdrasil ws://localhost:8080/ws            Interactive client
  printf 'bot\nalice\nhi\n' | yggdrasil ws://relay:8080/ws
`, config.EnvPrefix)
}
