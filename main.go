package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"library-circulation/library"

	"github.com/spf13/cobra"
)

type cliFlags struct {
	dbPath   string
	backend  string
	tick     time.Duration
	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags

	root := &cobra.Command{
		Use:   "librarian",
		Short: "Library catalogue with a borrow queue and undo history",
		Long: "Without a subcommand, librarian starts an interactive shell that processes\n" +
			"queued borrow requests in the background.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := &syncWriter{w: cmd.OutOrStdout()}
			observer := library.WithTickObserver(func(res library.StepResult) {
				fmt.Fprintf(out, "[auto] %s\n", stepLine(res))
			})
			return withManager(cmd, flags, func(ctx context.Context, cfg library.Config, mgr *library.LibraryManager) error {
				return runShell(ctx, cfg, mgr, cmd.InOrStdin(), out)
			}, observer)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dbPath, "db", "", "path to the catalogue store (env LIBRARY_DB)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: sqlite or json (env LIBRARY_BACKEND)")
	pf.DurationVar(&flags.tick, "tick", 0, "interval between queue processing ticks (env LIBRARY_TICK)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env LIBRARY_LOG_LEVEL)")

	root.AddCommand(
		newListCmd(&flags),
		newSearchCmd(&flags),
		newAddCmd(&flags),
		newDeleteCmd(&flags),
		newReturnCmd(&flags),
		newExportCmd(&flags),
	)
	return root
}

// loadConfig layers flags over environment over defaults.
func loadConfig(flags cliFlags) (library.Config, error) {
	cfg, err := library.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.backend != "" {
		cfg.Backend = strings.ToLower(flags.backend)
	}
	if flags.tick > 0 {
		cfg.TickInterval = flags.tick
	}
	if flags.logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(flags.logLevel)); err != nil {
			return cfg, fmt.Errorf("--log-level: %w", err)
		}
	}
	return cfg, cfg.Validate()
}

// withManager opens the catalogue described by the flags, runs fn, and closes it.
func withManager(
	cmd *cobra.Command,
	flags cliFlags,
	fn func(context.Context, library.Config, *library.LibraryManager) error,
	opts ...library.Option,
) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	opts = append([]library.Option{library.WithLogger(logger)}, opts...)
	mgr, err := library.OpenLibraryManager(ctx, cfg, opts...)
	if err != nil {
		return fmt.Errorf("open catalogue: %w", err)
	}
	defer mgr.Close()
	return fn(ctx, cfg, mgr)
}
