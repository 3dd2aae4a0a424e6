// Command matchmaker is the CLI entrypoint: it parses flags, loads
// config, wires internal/facade, and maps the result onto the process
// exit code contract in SPEC_FULL.md §6.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"matchmaker/internal/config"
	"matchmaker/internal/facade"
	"matchmaker/internal/interrupt"
	"matchmaker/internal/logging"
	"matchmaker/internal/ui"
)

var (
	configPath  string
	dumpConfig  bool
	fullscreen  bool
	noRead      bool
	verboseN    int
	quietN      int
	extraBinds  []string
	stateDir    string
	logLevel    string

	logger *zap.Logger
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return exitCodeFor(err)
	}
	return lastExitCode
}

// lastExitCode carries the exit code decided inside runPick back to
// main, since cobra's RunE only reports error/no-error.
var lastExitCode int

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchmaker [flags] -- [command]",
		Short: "Matchmaker is an interactive fuzzy-selection engine",
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if verboseN > 0 {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			if quietN > 0 {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
			}
			var err error
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			if stateDir != "" {
				return logging.Initialize(stateDir, logLevel, nil)
			}
			return nil
		},
		RunE: runPick,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a matchmaker YAML config file")
	cmd.Flags().BoolVar(&dumpConfig, "dump-config", false, "print the resolved configuration and exit")
	cmd.Flags().BoolVarP(&fullscreen, "fullscreen", "F", false, "accepted but has no effect: the picker always runs in the alternate screen buffer")
	cmd.Flags().BoolVar(&noRead, "no-read", false, "do not read candidates from stdin (use positional items only)")
	cmd.Flags().CountVarP(&verboseN, "verbose", "v", "increase log verbosity")
	cmd.Flags().CountVarP(&quietN, "quiet", "q", "decrease log verbosity")
	cmd.Flags().StringArrayVar(&extraBinds, "binds", nil, "additional key=action bindings, repeatable")
	cmd.Flags().StringVar(&stateDir, "state-dir", "", "directory for engine diagnostic logs")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "engine log level (debug|info|warn|error)")

	return cmd
}

func runPick(cmd *cobra.Command, args []string) error {
	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		lastExitCode = 2
		return err
	}
	for _, w := range warnings {
		if logger != nil {
			logger.Warn(w)
		}
	}
	if len(extraBinds) > 0 {
		if cfg.Binds == nil {
			cfg.Binds = make(map[string]string)
		}
		for _, kv := range extraBinds {
			if k, v, ok := splitBind(kv); ok {
				cfg.Binds[k] = v
			}
		}
	}

	if dumpConfig {
		fmt.Printf("%+v\n", cfg)
		lastExitCode = 0
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := facade.NewWorker(1)
	src := facade.Source{}
	switch {
	case len(args) > 0:
		src.Items = args
	case noRead:
		// --no-read with no positional items: nothing to ingest up
		// front; the store stays empty until a reload/become action.
	case stdinIsTerminal():
		// No piped stdin: fall back to spawning default_command as the
		// candidate producer, or fail the way the original CLI does
		// when neither is available.
		if cfg.DefaultCommand == "" {
			fmt.Fprintln(os.Stderr, "matchmaker: no input detected")
			lastExitCode = 2
			return nil
		}
		rs, err := interrupt.StartReload(ctx, interrupt.ResolveShell(), cfg.DefaultCommand)
		if err != nil {
			lastExitCode = 2
			return fmt.Errorf("default_command %q failed to start: %w", cfg.DefaultCommand, err)
		}
		src.Reader = rs.Stdout
	default:
		src.Reader = os.Stdin
	}

	selection, err := facade.Pick(ctx, cfg, w, src)
	if err != nil {
		lastExitCode = exitCodeFor(err)
		if lastExitCode == 2 {
			return err
		}
		return nil
	}

	for _, line := range selection {
		fmt.Println(line)
	}
	lastExitCode = 0
	return nil
}

// stdinIsTerminal reports whether stdin is an interactive terminal
// rather than a pipe or redirected file, the same check the original
// CLI makes with atty before deciding whether default_command needs to
// run as the candidate source.
func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func splitBind(kv string) (string, string, bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

// exitCodeFor maps the SPEC_FULL.md §7.1 error taxonomy onto process
// exit codes per §6: 0 normal accept, 1 user abort (ctrl-c), 127 event
// loop closed unexpectedly, 130 Esc abort, 2 configuration/IO failure.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var abortErr *ui.AbortError
	if errors.As(err, &abortErr) {
		return abortErr.Code
	}
	var closedErr facade.EventLoopClosedError
	if errors.As(err, &closedErr) {
		return 127
	}
	return 2
}
