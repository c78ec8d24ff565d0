package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tempocheck/internal/deps"
	"tempocheck/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tools and configured paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("External tools", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range deps.CheckBinaries(deps.Remote(cfg.YtDlpBinary(), cfg.FFmpegBinary())) {
				kind := statusOK
				message := status.Command
				if !status.Available {
					// Missing fetch tools skip the list phase, they do not fail runs.
					kind = statusWarn
					message = status.Detail
					if status.Hint != "" {
						message = fmt.Sprintf("%s (install with: %s)", status.Detail, status.Hint)
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Configured paths", colorize) {
				fmt.Fprintln(out, line)
			}
			failures := 0
			for _, result := range preflight.RunAll(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if failures > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failures)
			}
			return nil
		},
	}
}
