package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recera/vuec/cmd/vuec/internal/config"
	"github.com/recera/vuec/cmd/vuec/internal/ui"
	"github.com/recera/vuec/pkg/compiler"
)

func newCompileCommand(a *app) *cobra.Command {
	var (
		jsonOutput bool
		strict     bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "compile [path]",
		Short: "Compile template IR documents",
		Long: `Compile a *.vir.yaml document, or every document under a directory,
and report the runtime helpers, components and directives it needs.

If no path is given, the input configured in vuec.yaml is used.

Examples:
  vuec compile                      # Compile the configured input
  vuec compile templates/page.vir.yaml
  vuec compile templates --json     # Machine-readable report
  vuec compile --strict             # Fail on warnings too`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := a.cfg.Input
			if len(args) > 0 {
				path = args[0]
			}
			if !cmd.Flags().Changed("json") {
				jsonOutput = a.cfg.Output.Format == config.FormatJSON
			}

			if err := a.openCache(ctx, noCache); err != nil {
				return err
			}
			defer a.close()

			results, err := a.compilePath(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to compile %s: %w", path, err)
			}
			if err := ui.NewReporter(a.out, jsonOutput).Report(results); err != nil {
				return err
			}
			return checkResults(results, strict)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON report to stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the result cache")

	return cmd
}

// checkResults turns error diagnostics, and warnings when strict, into a
// command failure naming every offending document.
func checkResults(results []*compiler.Result, strict bool) error {
	var errs []error
	for _, res := range results {
		n := res.Errors()
		if strict {
			n = len(res.Diagnostics)
		}
		if n > 0 {
			errs = append(errs, fmt.Errorf("%s: %d problem(s)", res.File, n))
		}
	}
	return errors.Join(errs...)
}
