package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeOffline(); err != nil {
		return err
	}
	if err := c.normalizeValidation(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.Detector) == "" {
		c.Paths.Detector = defaultDetectorPath
	}
	if c.Paths.Detector, err = expandPath(c.Paths.Detector); err != nil {
		return fmt.Errorf("paths.detector: %w", err)
	}
	if strings.TrimSpace(c.Paths.BuildCommand) == "" {
		c.Paths.BuildCommand = defaultBuildCommand
	}
	if c.Paths.BuildCommand, err = expandPath(c.Paths.BuildCommand); err != nil {
		return fmt.Errorf("paths.build_command: %w", err)
	}
	if strings.TrimSpace(c.Paths.List) == "" {
		c.Paths.List = defaultListPath
	}
	if c.Paths.List, err = expandPath(c.Paths.List); err != nil {
		return fmt.Errorf("paths.list: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOffline() error {
	var err error
	if strings.TrimSpace(c.Offline.Sample) == "" {
		c.Offline.Sample = defaultOfflineSample
	}
	if c.Offline.Sample, err = expandPath(c.Offline.Sample); err != nil {
		return fmt.Errorf("offline.sample: %w", err)
	}
	if c.Offline.ExpectedBPM == 0 {
		c.Offline.ExpectedBPM = defaultOfflineBPM
	}
	c.Offline.Label = strings.TrimSpace(c.Offline.Label)
	return nil
}

func (c *Config) normalizeValidation() error {
	if c.Validation.TolerancePct == 0 {
		c.Validation.TolerancePct = defaultTolerancePct
	}
	if value, ok := os.LookupEnv(ToleranceEnvVar); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			parsed, err := strconv.ParseFloat(trimmed, 64)
			if err != nil {
				return fmt.Errorf("validation.tolerance_pct: parse %s=%q: %w", ToleranceEnvVar, value, err)
			}
			c.Validation.TolerancePct = parsed
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
