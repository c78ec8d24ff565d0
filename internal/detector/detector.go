// Package detector invokes the bpm_detect binary and interprets its verbose
// output. A non-zero detector exit is a reportable result, not an error;
// only failure to run the process at all surfaces as an error.
package detector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"tempocheck/internal/logging"
)

// Invocation captures one detector run.
type Invocation struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor abstracts command execution for testability.
type Executor interface {
	Execute(ctx context.Context, binary string, args []string) (Invocation, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds each invocation. Zero keeps the default of waiting
// indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger attaches a logger for invocation tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "detector")
		}
	}
}

// Client wraps bpm_detect CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
	logger  *slog.Logger
}

// New constructs a detector client for the binary at the given path.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("detector binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Command returns the argv Detect executes for the given source: verbose
// mode on, the click-track artifact discarded to the null device.
func (c *Client) Command(source string) []string {
	return []string{c.binary, "-v", "-o", os.DevNull, source}
}

// Detect runs the detector against a single source (file path or URL) and
// captures both streams in full. The returned Invocation carries the exit
// code; an error means the process could not run to completion at all.
func (c *Client) Detect(ctx context.Context, source string) (Invocation, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	argv := c.Command(source)
	started := time.Now()
	result, err := c.exec.Execute(ctx, argv[0], argv[1:])
	if err != nil {
		c.logger.Error("invocation failed",
			logging.String(logging.FieldSource, source),
			logging.Error(err),
		)
		return result, fmt.Errorf("run detector: %w", err)
	}
	attrs := []any{
		logging.String(logging.FieldSource, source),
		logging.Int("exit_code", result.ExitCode),
		logging.Duration("elapsed", time.Since(started)),
	}
	if summary := ParseSummary(result.Stdout); summary.BPM != "" {
		attrs = append(attrs, logging.String("bpm", summary.BPM))
		if summary.BeatCount > 0 {
			attrs = append(attrs, logging.Int("beat_count", summary.BeatCount))
		}
		if summary.TimeSignature != "" {
			attrs = append(attrs, logging.String("time_signature", summary.TimeSignature))
		}
	}
	c.logger.Debug("invocation finished", attrs...)
	return result, nil
}

// DefaultExecutor returns the process-spawning executor Detect uses when no
// override is injected. The harness shares it for the build step.
func DefaultExecutor() Executor {
	return commandExecutor{}
}

type commandExecutor struct{}

func (commandExecutor) Execute(ctx context.Context, binary string, args []string) (Invocation, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	result := Invocation{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("command interrupted: %w", ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("start command: %w", runErr)
}
