package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tempocheck/internal/config"
	"tempocheck/internal/deps"
	"tempocheck/internal/detector"
	"tempocheck/internal/evaluate"
	"tempocheck/internal/logging"
	"tempocheck/internal/preflight"
	"tempocheck/internal/report"
	"tempocheck/internal/testlist"
)

const lockFileName = "tempocheck.lock"

const (
	phaseOffline = "offline"
	phaseList    = "list"
)

// Options control a single validation run.
type Options struct {
	IncludeOffline bool
	OfflineOnly    bool
	SkipBuild      bool
	TolerancePct   float64
	// ReportPath, when set, receives a JSON document describing the run.
	ReportPath string
}

// Option adjusts harness construction.
type Option func(*Harness)

// WithOutput redirects the progress and diagnostic streams. Nil writers keep
// the current destination.
func WithOutput(out, errOut io.Writer) Option {
	return func(h *Harness) {
		if out != nil {
			h.out = out
		}
		if errOut != nil {
			h.errOut = errOut
		}
	}
}

// WithLogger attaches a logger for structured run tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithExecutor injects a command executor shared by the build step and the
// detector client (primarily for tests).
func WithExecutor(exec detector.Executor) Option {
	return func(h *Harness) {
		if exec != nil {
			h.exec = exec
		}
	}
}

// Harness drives the run phases in order and owns the user-facing surface.
type Harness struct {
	cfg       *config.Config
	opts      Options
	out       io.Writer
	errOut    io.Writer
	logger    *slog.Logger
	exec      detector.Executor
	client    *detector.Client
	evaluator evaluate.Evaluator
	lock      *flock.Flock
	runID     string
}

// Summary aggregates the run for programmatic callers. The human-readable
// surface has already been written to the harness writers by the time Run
// returns it.
type Summary struct {
	RunID        string
	TolerancePct float64
	Passed       int
	Failed       int
	Skipped      int
	ReportPath   string
}

type runState struct {
	passed  int
	failed  int
	cases   []report.CaseResult
	skipped []report.SkippedLine
}

// New constructs a harness bound to the given configuration.
func New(cfg *config.Config, opts Options, options ...Option) (*Harness, error) {
	if cfg == nil {
		return nil, errors.New("harness requires configuration")
	}
	if opts.TolerancePct < 0 {
		return nil, fmt.Errorf("tolerance must be non-negative, got %v", opts.TolerancePct)
	}

	h := &Harness{
		cfg:    cfg,
		opts:   opts,
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: logging.NewNop(),
		exec:   detector.DefaultExecutor(),
		runID:  uuid.NewString(),
	}
	for _, opt := range options {
		opt(h)
	}

	clientOpts := []detector.Option{
		detector.WithExecutor(h.exec),
		detector.WithLogger(h.logger),
	}
	if cfg.Detector.TimeoutSeconds > 0 {
		clientOpts = append(clientOpts, detector.WithTimeout(time.Duration(cfg.Detector.TimeoutSeconds)*time.Second))
	}
	client, err := detector.New(cfg.Paths.Detector, clientOpts...)
	if err != nil {
		return nil, err
	}

	h.client = client
	h.evaluator = evaluate.New(opts.TolerancePct)
	h.logger = logging.NewComponentLogger(h.logger, "harness").
		With(logging.String(logging.FieldRunID, h.runID))
	h.lock = flock.New(filepath.Join(cfg.Paths.LogDir, lockFileName))
	return h, nil
}

// RunID identifies this harness instance in logs and reports.
func (h *Harness) RunID() string {
	return h.runID
}

// Run executes the configured phases in order and renders every progress
// line and diagnostic. A nil error means no case failed; failures and
// aborted phases return an ExitError carrying the status to exit with.
func (h *Harness) Run(ctx context.Context) (Summary, error) {
	summary := Summary{
		RunID:        h.runID,
		TolerancePct: h.evaluator.TolerancePct(),
		ReportPath:   h.opts.ReportPath,
	}

	if err := h.cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(h.errOut, "ERROR: %v\n", err)
		return summary, &ExitError{Code: 1, Err: Wrap(ErrConfiguration, "setup", "log directory", "", err)}
	}

	locked, err := h.lock.TryLock()
	if err != nil {
		fmt.Fprintf(h.errOut, "ERROR: acquire run lock: %v\n", err)
		return summary, &ExitError{Code: 1, Err: Wrap(ErrLocked, "lock", "acquire", h.lock.Path(), err)}
	}
	if !locked {
		fmt.Fprintln(h.errOut, "ERROR: another tempocheck run is already active.")
		return summary, &ExitError{Code: 1, Err: Wrap(ErrLocked, "lock", "acquire", h.lock.Path(), nil)}
	}
	defer func() {
		if unlockErr := h.lock.Unlock(); unlockErr != nil {
			h.logger.Warn("failed to release run lock", logging.Error(unlockErr))
		}
	}()

	startedAt := time.Now().UTC()
	h.logger.Info("validation run started",
		logging.Float64("tolerance_pct", h.evaluator.TolerancePct()),
		logging.Bool("include_offline", h.opts.IncludeOffline),
		logging.Bool("offline_only", h.opts.OfflineOnly),
		logging.Bool("skip_build", h.opts.SkipBuild),
	)

	if err := h.ensureBuild(ctx); err != nil {
		return summary, err
	}
	if err := h.checkDetector(); err != nil {
		return summary, err
	}

	state := &runState{}

	if h.opts.IncludeOffline || h.opts.OfflineOnly {
		fmt.Fprintln(h.out, "==> Offline MP3 test")
		h.runCase(ctx, phaseOffline, h.cfg.Offline.Sample, h.offlineLabel(), h.cfg.Offline.ExpectedBPM, state)
	}

	runList := !h.opts.OfflineOnly
	if runList {
		for _, status := range deps.CheckBinaries(deps.Remote(h.cfg.YtDlpBinary(), h.cfg.FFmpegBinary())) {
			if status.Available {
				continue
			}
			fmt.Fprintf(h.errOut, "SKIP: %s not found. Install with: %s\n", status.Command, status.Hint)
			h.logger.Warn("remote tool unavailable",
				logging.String("tool", status.Command),
				logging.String("detail", status.Detail),
			)
			runList = false
		}
	}

	if runList {
		if err := h.runList(ctx, state); err != nil {
			return summary, err
		}
	} else {
		fmt.Fprintln(h.out, "SKIP: YouTube tests disabled. Run on a machine with network access.")
	}

	fmt.Fprintf(h.out, "==> Summary: %d passed, %d failed\n", state.passed, state.failed)

	summary.Passed = state.passed
	summary.Failed = state.failed
	summary.Skipped = len(state.skipped)

	h.logger.Info("validation run finished",
		logging.Int("passed", state.passed),
		logging.Int("failed", state.failed),
		logging.Int("skipped", len(state.skipped)),
		logging.Duration("elapsed", time.Since(startedAt)),
	)

	if h.opts.ReportPath != "" {
		doc := report.Document{
			RunID:        h.runID,
			Detector:     h.cfg.Paths.Detector,
			TolerancePct: h.evaluator.TolerancePct(),
			StartedAt:    startedAt,
			FinishedAt:   time.Now().UTC(),
			Passed:       state.passed,
			Failed:       state.failed,
			Cases:        state.cases,
			Skipped:      state.skipped,
		}
		if err := report.Write(h.opts.ReportPath, doc); err != nil {
			fmt.Fprintf(h.errOut, "ERROR: %v\n", err)
			return summary, &ExitError{Code: 1, Err: Wrap(ErrConfiguration, "report", "write", h.opts.ReportPath, err)}
		}
	}

	if state.failed > 0 {
		return summary, &ExitError{Code: 1, Err: ErrCasesFailed}
	}
	return summary, nil
}

func (h *Harness) ensureBuild(ctx context.Context) error {
	if h.opts.SkipBuild {
		return nil
	}
	command := h.cfg.Paths.BuildCommand
	fmt.Fprintf(h.out, "CMD: %s\n", command)
	result, err := h.exec.Execute(ctx, command, nil)
	if err != nil {
		fmt.Fprintf(h.errOut, "ERROR: %v\n", err)
		return &ExitError{Code: 1, Err: Wrap(ErrBuild, "build", "start", command, err)}
	}
	if result.ExitCode != 0 {
		if detail := strings.TrimSpace(result.Stderr); detail != "" {
			fmt.Fprintln(h.errOut, detail)
		}
		return &ExitError{
			Code: result.ExitCode,
			Err:  Wrap(ErrBuild, "build", command, fmt.Sprintf("exit status %d", result.ExitCode), nil),
		}
	}
	h.logger.Info("build completed", logging.String("command", command))
	return nil
}

func (h *Harness) checkDetector() error {
	path := h.cfg.Paths.Detector
	if err := preflight.Executable(path); err != nil {
		fmt.Fprintf(h.errOut, "ERROR: %s not found. Build first.\n", path)
		return &ExitError{Code: 1, Err: Wrap(ErrDetectorMissing, "preflight", "detector", path, err)}
	}
	return nil
}

func (h *Harness) offlineLabel() string {
	if label := strings.TrimSpace(h.cfg.Offline.Label); label != "" {
		return label
	}
	return testlist.DeriveLabel(h.cfg.Offline.Sample)
}

func (h *Harness) runList(ctx context.Context, state *runState) error {
	listPath := h.cfg.Paths.List
	fmt.Fprintf(h.out, "==> YouTube test list (%s)\n", listPath)
	entries, err := testlist.ReadFile(listPath)
	if err != nil {
		fmt.Fprintf(h.errOut, "ERROR: %v\n", err)
		return &ExitError{Code: 1, Err: Wrap(ErrConfiguration, "list", "read", listPath, err)}
	}
	for _, entry := range entries {
		if entry.Err != nil {
			fmt.Fprintf(h.errOut, "SKIP: Unable to parse line (expected: '%s'): %s\n", testlist.Grammar, entry.Raw)
			state.skipped = append(state.skipped, report.SkippedLine{
				Line:   entry.Number,
				Raw:    entry.Raw,
				Reason: entry.Err.Error(),
			})
			h.logger.Warn("reference line skipped",
				logging.Int("line", entry.Number),
				logging.Error(entry.Err),
			)
			continue
		}
		h.runCase(ctx, phaseList, entry.Case.Source, entry.Case.Label, entry.Case.ExpectedBPM, state)
	}
	return nil
}

func (h *Harness) runCase(ctx context.Context, phase, source, label string, expected float64, state *runState) {
	fmt.Fprintf(h.out, "CMD: %s\n", strings.Join(h.client.Command(source), " "))

	started := time.Now()
	result, err := h.client.Detect(ctx, source)
	elapsed := time.Since(started)

	var outcome evaluate.Outcome
	if err != nil {
		outcome = evaluate.InvocationFailure(label, err)
	} else {
		outcome = h.evaluator.Evaluate(label, expected, result)
	}

	if outcome.Measurement != "" {
		fmt.Fprintln(h.out, outcome.Measurement)
	}
	if outcome.Passed {
		state.passed++
	} else {
		fmt.Fprintln(h.errOut, outcome.Failure)
		state.failed++
	}

	summary := detector.ParseSummary(result.Stdout)
	state.cases = append(state.cases, report.CaseResult{
		Phase:         phase,
		Source:        source,
		Label:         label,
		ExpectedBPM:   expected,
		DetectedBPM:   outcome.Detected,
		PercentError:  outcome.PercentError,
		BeatCount:     summary.BeatCount,
		TimeSignature: summary.TimeSignature,
		Passed:        outcome.Passed,
		Failure:       outcome.Failure,
		ElapsedSec:    elapsed.Seconds(),
	})

	attrs := []any{
		logging.String(logging.FieldCase, label),
		logging.String(logging.FieldSource, source),
		logging.Float64("expected_bpm", expected),
		logging.Bool("passed", outcome.Passed),
		logging.Duration("elapsed", elapsed),
	}
	if outcome.Detected != nil {
		attrs = append(attrs, logging.Float64("detected_bpm", *outcome.Detected))
	}
	if outcome.PercentError != nil {
		attrs = append(attrs, logging.Float64("pct_error", *outcome.PercentError))
	}
	h.logger.Info("case finished", attrs...)
}
