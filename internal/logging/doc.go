// Package logging assembles structured slog loggers and formatting helpers
// used across the harness.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attribute helpers so run code can tag log lines with
// run IDs and case labels. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape and routing guarantees. Progress and result
// lines that belong to the check output contract are written directly to
// stdout/stderr by the harness, not through slog.
package logging
