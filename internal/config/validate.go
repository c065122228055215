package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateRuns(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDetection() error {
	if c.Detection.TriggerThreshold <= 0 {
		return errors.New("detection.trigger_threshold must be positive")
	}
	return nil
}

func (c *Config) validateRuns() error {
	if c.Runs.MaxIndex < 1 {
		return errors.New("runs.max_index must be at least 1")
	}
	if c.Runs.MaxIndex > 99 {
		return errors.New("runs.max_index must not exceed 99 (run-NN naming)")
	}
	if c.Runs.MaxMissing < 0 {
		return errors.New("runs.max_missing must not be negative")
	}
	if !validTaskLabel(c.Runs.Task) {
		return fmt.Errorf("runs.task %q must be alphanumeric (BIDS task label)", c.Runs.Task)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func validTaskLabel(label string) bool {
	if label == "" {
		return false
	}
	for _, r := range label {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum {
			return false
		}
	}
	return true
}
