package preflight

import (
	"tempocheck/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all filesystem preflight checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckExecutable("Detector binary", cfg.Paths.Detector),
		CheckExecutable("Build command", cfg.Paths.BuildCommand),
		CheckFileReadable("Reference list", cfg.Paths.List),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
}
