package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tempocheck/internal/harness"
	"tempocheck/internal/logging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var includeOffline bool
	var offlineOnly bool
	var skipBuild bool
	var tolerancePct float64
	var reportPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the detector and validate it against the reference samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
				logging.RetentionTarget{
					Dir:     cfg.Paths.LogDir,
					Pattern: "*.log",
					Exclude: []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)},
				},
			)

			tolerance := cfg.Validation.TolerancePct
			if cmd.Flags().Changed("tolerance-pct") {
				tolerance = tolerancePct
			}

			h, err := harness.New(cfg, harness.Options{
				IncludeOffline: includeOffline,
				OfflineOnly:    offlineOnly,
				SkipBuild:      skipBuild,
				TolerancePct:   tolerance,
				ReportPath:     strings.TrimSpace(reportPath),
			},
				harness.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
				harness.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			_, runErr := h.Run(signalCtx)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&includeOffline, "include-offline", false, "Also run the offline MP3 test")
	cmd.Flags().BoolVar(&offlineOnly, "offline-only", false, "Skip YouTube tests (useful without network access)")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Do not build before running tests")
	cmd.Flags().Float64Var(&tolerancePct, "tolerance-pct", 3.0, "Percent error tolerance (overrides config and TOLERANCE_PCT)")
	cmd.Flags().StringVar(&reportPath, "json-report", "", "Write a JSON run report to this path")
	return cmd
}
