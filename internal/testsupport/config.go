package testsupport

import (
	"path/filepath"
	"testing"

	"physiobids/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.JournalPath = filepath.Join(base, "logs", "journal.db")
	// Keep unit tests quiet and fast; orchestrator tests opt back in.
	cfg.Plot.Enabled = false
	cfg.Journal.Enabled = false
	cfg.Sourcedata.Mirror = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithJournal enables the SQLite journal on the test config.
func WithJournal() ConfigOption {
	return func(c *config.Config) {
		c.Journal.Enabled = true
	}
}

// WithPlot enables QA plot generation on the test config.
func WithPlot() ConfigOption {
	return func(c *config.Config) {
		c.Plot.Enabled = true
	}
}

// WithSourcedataMirror enables raw recording mirroring on the test config.
func WithSourcedataMirror() ConfigOption {
	return func(c *config.Config) {
		c.Sourcedata.Mirror = true
	}
}

// WithTriggerThreshold overrides the detection threshold on the test config.
func WithTriggerThreshold(threshold float64) ConfigOption {
	return func(c *config.Config) {
		c.Detection.TriggerThreshold = threshold
	}
}
