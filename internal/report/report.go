// Package report renders a finished validation run as a JSON document so
// other tooling can consume results without scraping harness output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CaseResult captures the verdict for one reference sample. BeatCount and
// TimeSignature come from the detector's verbose summary when it printed one.
type CaseResult struct {
	Phase         string   `json:"phase"`
	Source        string   `json:"source"`
	Label         string   `json:"label"`
	ExpectedBPM   float64  `json:"expected_bpm"`
	DetectedBPM   *float64 `json:"detected_bpm,omitempty"`
	PercentError  *float64 `json:"percent_error,omitempty"`
	BeatCount     int      `json:"beat_count,omitempty"`
	TimeSignature string   `json:"time_signature,omitempty"`
	Passed        bool     `json:"passed"`
	Failure       string   `json:"failure,omitempty"`
	ElapsedSec    float64  `json:"elapsed_seconds"`
}

// SkippedLine records a reference list line that never became a case.
type SkippedLine struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Document is the root of the JSON report.
type Document struct {
	RunID        string        `json:"run_id"`
	Detector     string        `json:"detector"`
	TolerancePct float64       `json:"tolerance_pct"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	Cases        []CaseResult  `json:"cases,omitempty"`
	Skipped      []SkippedLine `json:"skipped,omitempty"`
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Write persists doc at path, creating parent directories as needed.
func Write(path string, doc Document) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()
	if err := Encode(file, doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return file.Close()
}

// Load reads a report document back from disk. Primarily used by tests and
// downstream tooling.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read report: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode report: %w", err)
	}
	return doc, nil
}
