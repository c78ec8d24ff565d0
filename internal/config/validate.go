package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOffline(); err != nil {
		return err
	}
	if err := c.validateDetector(); err != nil {
		return err
	}
	if err := c.validateValidation(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.Detector == "" {
		return errors.New("paths.detector must be set")
	}
	if c.Paths.BuildCommand == "" {
		return errors.New("paths.build_command must be set")
	}
	if c.Paths.List == "" {
		return errors.New("paths.list must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateOffline() error {
	if c.Offline.Sample == "" {
		return errors.New("offline.sample must be set")
	}
	if c.Offline.ExpectedBPM <= 0 {
		return fmt.Errorf("offline.expected_bpm must be positive, got %v", c.Offline.ExpectedBPM)
	}
	return nil
}

func (c *Config) validateDetector() error {
	if c.Detector.TimeoutSeconds < 0 {
		return errors.New("detector.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *Config) validateValidation() error {
	if c.Validation.TolerancePct < 0 {
		return fmt.Errorf("validation.tolerance_pct must be >= 0, got %v", c.Validation.TolerancePct)
	}
	return nil
}
