package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/recera/vuec/cmd/vuec/internal/config"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vuec",
		Short: "vuec - template IR compiler",
		Long: `vuec compiles Vue-style template IR documents (*.vir.yaml).

It converts element directives, runs the transform passes and reports the
runtime helpers, components and directives each template depends on.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: ./"+config.FileName+")")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logs")

	rootCmd.AddCommand(newCompileCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))

	return rootCmd
}

// setup loads configuration and installs the logger into the command
// context.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	a.cfg = cfg
	if a.out == nil {
		a.out = cmd.OutOrStdout()
	}

	ctx := newLogContext(cmd.Context(), cfg.Log, cmd.ErrOrStderr())
	cmd.SetContext(ctx)
	log.Debugf(ctx, "debug logs enabled")
	return nil
}

func newLogContext(ctx context.Context, lc *config.LogConfig, w io.Writer) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	format := log.FormatJSON
	switch lc.Format {
	case config.LogTerminal:
		format = log.FormatTerminal
	case config.LogAuto:
		if log.IsTerminal() {
			format = log.FormatTerminal
		}
	}
	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(w))
	if lc.Debug {
		ctx = log.Context(ctx, log.WithDebug())
	}
	return ctx
}
