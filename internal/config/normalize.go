package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRuns()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.JournalPath) == "" {
		c.Paths.JournalPath = filepath.Join(c.Paths.LogDir, "journal.db")
	} else if c.Paths.JournalPath, err = expandPath(c.Paths.JournalPath); err != nil {
		return fmt.Errorf("paths.journal_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRuns() {
	c.Runs.Task = strings.TrimSpace(c.Runs.Task)
	if c.Runs.Task == "" {
		c.Runs.Task = defaultTask
	}
	if c.Runs.MaxIndex == 0 {
		c.Runs.MaxIndex = defaultRunMaxIndex
	}
	if c.Runs.MaxMissing == 0 {
		c.Runs.MaxMissing = defaultRunMaxMissing
	}
	c.Detection.TriggerLabel = strings.TrimSpace(c.Detection.TriggerLabel)
	if c.Detection.TriggerThreshold == 0 {
		c.Detection.TriggerThreshold = defaultTriggerThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
