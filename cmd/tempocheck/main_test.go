package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tempocheck/internal/config"
	"tempocheck/internal/harness"
	"tempocheck/internal/logging"
	"tempocheck/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
detector = %q
build_command = %q
list = %q
log_dir = %q

[offline]
sample = %q
expected_bpm = %.1f
label = %q

[validation]
tolerance_pct = %.1f
`,
		cfg.Paths.Detector,
		cfg.Paths.BuildCommand,
		cfg.Paths.List,
		cfg.Paths.LogDir,
		cfg.Offline.Sample,
		cfg.Offline.ExpectedBPM,
		cfg.Offline.Label,
		cfg.Validation.TolerancePct,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIRunOfflineOnly(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\necho \"Detected BPM: 128\"\nexit 0\n")
	testsupport.WriteFile(t, env.cfg.Offline.Sample, 64)

	out, errOut, err := runCLI(t, []string{"run", "--offline-only", "--skip-build"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v (stderr %q)", err, errOut)
	}
	if !strings.Contains(out, "==> Offline MP3 test") {
		t.Fatalf("missing offline header: %q", out)
	}
	if !strings.Contains(out, "==> Summary: 1 passed, 0 failed") {
		t.Fatalf("missing summary: %q", out)
	}
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.LogDir, logging.LogFileName)); statErr != nil {
		t.Fatalf("expected run log file: %v", statErr)
	}
}

func TestCLIRunPropagatesFailureExit(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\necho \"Detected BPM: 150\"\nexit 0\n")

	_, errOut, err := runCLI(t, []string{"run", "--offline-only", "--skip-build"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for failing case")
	}
	var exit *harness.ExitError
	if !errors.As(err, &exit) || exit.Code != 1 {
		t.Fatalf("expected ExitError with code 1, got %v", err)
	}
	if !strings.Contains(errOut, "outside tolerance") {
		t.Fatalf("missing failure diagnostic: %q", errOut)
	}
}

func TestCLIRunToleranceFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\necho \"Detected BPM: 150\"\nexit 0\n")

	out, _, err := runCLI(t, []string{"run", "--offline-only", "--skip-build", "--tolerance-pct", "20"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "(tolerance 20.00%)") {
		t.Fatalf("expected flag tolerance in output: %q", out)
	}
	if !strings.Contains(out, "==> Summary: 1 passed, 0 failed") {
		t.Fatalf("expected pass at 20%% tolerance: %q", out)
	}
}

func TestCLIRunToleranceEnvApplies(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\necho \"Detected BPM: 150\"\nexit 0\n")
	t.Setenv(config.ToleranceEnvVar, "20")

	out, _, err := runCLI(t, []string{"run", "--offline-only", "--skip-build"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "(tolerance 20.00%)") {
		t.Fatalf("expected env tolerance in output: %q", out)
	}
}

func TestCLIRunWritesJSONReport(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\necho \"Detected BPM: 128\"\nexit 0\n")
	reportPath := filepath.Join(env.baseDir, "report.json")

	_, _, err := runCLI(t, []string{"run", "--offline-only", "--skip-build", "--json-report", reportPath}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var doc struct {
		Passed int `json:"passed"`
		Failed int `json:"failed"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.Passed != 1 || doc.Failed != 0 {
		t.Fatalf("unexpected report counters: %+v", doc)
	}
}

func TestCLIListRendersEntries(t *testing.T) {
	env := setupCLITestEnv(t)
	list := "# tracked references\n" +
		"- https://example.com/a (Song A) [120 BPM]\n" +
		"not parsable\n"
	if err := os.MkdirAll(filepath.Dir(env.cfg.Paths.List), 0o755); err != nil {
		t.Fatalf("mkdir list dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.Paths.List, []byte(list), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	out, _, err := runCLI(t, []string{"list"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "https://example.com/a") || !strings.Contains(out, "Song A") {
		t.Fatalf("missing entry in table: %q", out)
	}
	if !strings.Contains(out, "1 line(s) did not match") {
		t.Fatalf("missing malformed note: %q", out)
	}
}

func TestCLIListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	list := "- https://example.com/a (Song A) [120 BPM]\nbroken\n"
	if err := os.MkdirAll(filepath.Dir(env.cfg.Paths.List), 0o755); err != nil {
		t.Fatalf("mkdir list dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.Paths.List, []byte(list), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	out, _, err := runCLI(t, []string{"list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	var payload listPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(payload.Entries))
	}
	if payload.Entries[0].Label != "Song A" || payload.Entries[0].ExpectedBPM != 120 {
		t.Fatalf("unexpected first entry: %+v", payload.Entries[0])
	}
	if payload.Entries[1].Error == "" || payload.Entries[1].Raw != "broken" {
		t.Fatalf("unexpected second entry: %+v", payload.Entries[1])
	}
}

func TestCLIDepsReportsProblems(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err == nil {
		t.Fatal("expected error while paths are missing")
	}
	if !strings.Contains(err.Error(), "preflight check") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "== External tools ==") || !strings.Contains(out, "== Configured paths ==") {
		t.Fatalf("missing sections: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "yt-dlp") {
		t.Fatalf("expected tool warnings: %q", out)
	}
	if !strings.Contains(out, "Detector binary") {
		t.Fatalf("expected detector path check: %q", out)
	}
}

func TestCLIDepsPassesWhenReady(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteScript(t, env.cfg.Paths.Detector, "#!/bin/sh\nexit 0\n")
	testsupport.WriteScript(t, env.cfg.Paths.BuildCommand, "#!/bin/sh\nexit 0\n")
	if err := os.MkdirAll(filepath.Dir(env.cfg.Paths.List), 0o755); err != nil {
		t.Fatalf("mkdir list dir: %v", err)
	}
	if err := os.WriteFile(env.cfg.Paths.List, []byte("# empty\n"), 0o644); err != nil {
		t.Fatalf("write list: %v", err)
	}

	stubDir := filepath.Join(env.baseDir, "bin")
	if err := os.MkdirAll(stubDir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}
	for _, name := range []string{"yt-dlp", "ffmpeg"} {
		testsupport.WriteScript(t, filepath.Join(stubDir, name), "#!/bin/sh\nexit 0\n")
	}
	t.Setenv("PATH", stubDir)

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v (output %q)", err, out)
	}
	if strings.Contains(out, "[ERROR]") || strings.Contains(out, "[WARN]") {
		t.Fatalf("expected all checks green: %q", out)
	}
}
