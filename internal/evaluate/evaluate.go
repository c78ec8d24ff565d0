// Package evaluate turns a detector invocation into a pass/fail outcome for
// one reference case. It owns every user-facing failure string so the harness
// and the report render identical diagnostics.
package evaluate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"tempocheck/internal/detector"
)

// Outcome is the verdict for a single case. Measurement holds the
// detected/expected comparison line when both values were available;
// Failure holds the diagnostic when the case did not pass. Detected and
// PercentError are nil until the corresponding value could be computed.
type Outcome struct {
	Passed       bool
	Detected     *float64
	PercentError *float64
	Measurement  string
	Failure      string
}

// Evaluator applies a percentage tolerance to detector output.
type Evaluator struct {
	tolerancePct float64
}

// New returns an Evaluator that passes cases whose percent error does not
// exceed tolerancePct.
func New(tolerancePct float64) Evaluator {
	return Evaluator{tolerancePct: tolerancePct}
}

// TolerancePct reports the configured tolerance.
func (e Evaluator) TolerancePct() float64 {
	return e.tolerancePct
}

// Evaluate inspects a completed detector invocation for the named case.
// A non-zero exit, a missing or unparsable BPM report, or a non-positive
// expected BPM each fail the case before any comparison happens.
func (e Evaluator) Evaluate(label string, expectedBPM float64, result detector.Invocation) Outcome {
	if result.ExitCode != 0 {
		failure := fmt.Sprintf("FAILED: bpm_detect error for %s", label)
		if detail := strings.TrimSpace(result.Stderr); detail != "" {
			failure += "\n" + detail
		}
		return Outcome{Failure: failure}
	}

	raw, ok := detector.ExtractBPM(result.Stdout)
	if !ok {
		return Outcome{Failure: fmt.Sprintf("FAILED: No detected BPM reported for %s", label)}
	}

	detected, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Outcome{Failure: fmt.Sprintf("FAILED: Invalid detected BPM '%s' for %s", raw, label)}
	}

	if expectedBPM <= 0 {
		return Outcome{
			Detected: &detected,
			Failure:  fmt.Sprintf("FAILED: Invalid expected BPM (%v) for %s", expectedBPM, label),
		}
	}

	pct := math.Abs(detected-expectedBPM) / expectedBPM * 100.0
	outcome := Outcome{
		Detected:     &detected,
		PercentError: &pct,
		Measurement: fmt.Sprintf(
			"Detected: %.3f BPM | Expected: %.3f BPM | Error: %.2f%% (tolerance %.2f%%)",
			detected, expectedBPM, pct, e.tolerancePct,
		),
	}
	if pct <= e.tolerancePct {
		outcome.Passed = true
		return outcome
	}
	outcome.Failure = fmt.Sprintf("FAILED: %s outside tolerance", label)
	return outcome
}

// InvocationFailure reports a detector process that never produced a result,
// which covers start failures and timeouts.
func InvocationFailure(label string, err error) Outcome {
	return Outcome{Failure: fmt.Sprintf("FAILED: bpm_detect failed to run for %s\n%v", label, err)}
}
