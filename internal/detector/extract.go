package detector

import (
	"strconv"
	"strings"
)

const bpmLinePrefix = "Detected BPM:"

// ExtractBPM scans verbose detector output for the first line of the form
// "Detected BPM: <value> ..." and returns the value token. The token is not
// interpreted as a number here; validation belongs to the evaluator.
func ExtractBPM(stdout string) (string, bool) {
	for _, line := range strings.Split(stdout, "\n") {
		if !strings.HasPrefix(line, bpmLinePrefix) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			return fields[2], true
		}
	}
	return "", false
}

// Summary collects the informational lines a verbose detector run reports
// beyond the BPM value. Fields are zero when the corresponding line is
// absent or unreadable.
type Summary struct {
	BPM           string
	BeatCount     int
	TimeSignature string
	OutputPath    string
}

// ParseSummary extracts the summary lines from verbose detector output.
// Used for logging and reports only; pass/fail decisions rely solely on
// ExtractBPM.
func ParseSummary(stdout string) Summary {
	var summary Summary
	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.HasPrefix(line, bpmLinePrefix):
			if summary.BPM == "" {
				if fields := strings.Fields(line); len(fields) >= 3 {
					summary.BPM = fields[2]
				}
			}
		case strings.HasPrefix(line, "Beat count:"):
			if fields := strings.Fields(line); len(fields) >= 3 {
				if count, err := strconv.Atoi(fields[2]); err == nil {
					summary.BeatCount = count
				}
			}
		case strings.HasPrefix(line, "Time signature:"):
			if fields := strings.Fields(line); len(fields) >= 3 {
				summary.TimeSignature = fields[2]
			}
		case strings.HasPrefix(line, "Output:"):
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "Output:")); rest != "" {
				summary.OutputPath = rest
			}
		}
	}
	return summary
}
