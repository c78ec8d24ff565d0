// Package testlist parses the reference list of BPM samples.
//
// A list is UTF-8 text with one case per line:
//
//	- youtu.be/dQw4w9WgXcQ (Never Gonna Give You Up) [113 BPM]
//	- www.youtube.com/watch?v=8Uee_mcxvrw (PPAP) [136 BPM (4/4)]
//
// Blank lines and lines whose first non-space byte is '#' are comments.
// Anything else must match the grammar or it is reported back to the caller
// as a malformed entry; the caller decides whether that skips or aborts.
package testlist

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Grammar is the human-readable shape of a valid list entry, quoted in skip
// diagnostics when a line fails to parse.
const Grammar = "- <URL> (<track name>) [<actual bpm> BPM<(optional time signature)]"

// ErrMalformed reports a line that does not match the entry grammar.
var ErrMalformed = errors.New("line does not match entry grammar")

var lineRE = regexp.MustCompile(
	`^\s*(?:-\s*)?(?P<url>(?:https?://)?(?:www\.)?\S+)\s*\((?P<label>.*)\)\s*\[(?P<bpm>\d+(?:\.\d+)?)\s+BPM[^\]]*\]\s*$`,
)

var (
	urlIndex   = lineRE.SubexpIndex("url")
	labelIndex = lineRE.SubexpIndex("label")
	bpmIndex   = lineRE.SubexpIndex("bpm")
)

// Case is one reference sample to validate: where to find the audio, a
// display label, and the ground-truth BPM.
type Case struct {
	Source      string
	Label       string
	ExpectedBPM float64
}

// ParseLine converts one content line into a Case. The source token is
// normalized to carry an explicit scheme. Returns ErrMalformed when the line
// does not match the grammar.
func ParseLine(line string) (Case, error) {
	match := lineRE.FindStringSubmatch(line)
	if match == nil {
		return Case{}, ErrMalformed
	}

	expected, err := strconv.ParseFloat(match[bpmIndex], 64)
	if err != nil {
		return Case{}, fmt.Errorf("parse expected BPM %q: %w", match[bpmIndex], err)
	}

	return Case{
		Source:      normalizeSource(match[urlIndex]),
		Label:       match[labelIndex],
		ExpectedBPM: expected,
	}, nil
}

// IsComment reports whether the line is blank or a comment and should be
// dropped without a diagnostic.
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}

func normalizeSource(source string) string {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return "https://" + source
}
