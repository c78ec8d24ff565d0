package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tempocheck/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// It points every path into that directory and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.Detector = filepath.Join(base, "build", "bpm_detect")
	cfgVal.Paths.BuildCommand = filepath.Join(base, "scripts", "build.sh")
	cfgVal.Paths.List = filepath.Join(base, "test_samples", "yt_testlist.txt")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Offline.Sample = filepath.Join(base, "test_samples", "sample.mp3")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTolerance overrides the configured tolerance percentage.
func WithTolerance(pct float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Validation.TolerancePct = pct
	}
}

// WithDetectorScript writes an executable stub with the given shell body at
// the detector path.
func WithDetectorScript(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteScript(b.t, b.cfg.Paths.Detector, body)
	}
}

// WithDetectorReporting writes a detector stub that reports the given BPM
// value and exits cleanly.
func WithDetectorReporting(bpm string) ConfigOption {
	return func(b *configBuilder) {
		body := fmt.Sprintf("#!/bin/sh\necho \"Detected BPM: %s\"\nexit 0\n", bpm)
		WriteScript(b.t, b.cfg.Paths.Detector, body)
	}
}

// WithBuildScript writes an executable stub with the given shell body at the
// build command path.
func WithBuildScript(body string) ConfigOption {
	return func(b *configBuilder) {
		WriteScript(b.t, b.cfg.Paths.BuildCommand, body)
	}
}

// WithReferenceList fills the reference list file with the given lines.
func WithReferenceList(lines ...string) ConfigOption {
	return func(b *configBuilder) {
		path := b.cfg.Paths.List
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.t.Fatalf("mkdir list dir: %v", err)
		}
		content := strings.Join(lines, "\n") + "\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.t.Fatalf("write reference list: %v", err)
		}
	}
}

// WithOfflineSample creates a placeholder audio file at the offline sample
// path.
func WithOfflineSample() ConfigOption {
	return func(b *configBuilder) {
		WriteFile(b.t, b.cfg.Offline.Sample, 1024)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the remote fetch tools are
// stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"yt-dlp", "ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
