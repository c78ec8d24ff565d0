// Package harness orchestrates a full validation run: the optional detector
// build, the binary preflight, the offline sample, the reference list pass,
// and the closing summary. Progress and diagnostics are written to the
// harness writers with a stable surface so shell pipelines can depend on
// stdout and stderr; structured logs go to the configured log file instead.
package harness
