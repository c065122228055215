package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"physiobids/internal/config"
	"physiobids/internal/journal"
	"physiobids/internal/logging"
	"physiobids/internal/session"
)

func runConvert(cmd *cobra.Command, ctx *commandContext, physioRoot, bidsRoot string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	var store *journal.Store
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.Paths.JournalPath)
		if err != nil {
			logger.Warn("journal unavailable, continuing without audit trail", logging.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	conv := session.New(cfg, logger, store)
	report, convertErr := conv.Convert(cmd.Context(), physioRoot, bidsRoot)

	if report != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderReport(out, report))
	}
	return convertErr
}

// buildLogger writes console output to stderr so stdout stays reserved for
// the conversion summary, plus a per-invocation file under the log directory.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	logFile := filepath.Join(cfg.Paths.LogDir,
		fmt.Sprintf("physiobids-%s.log", time.Now().Format("20060102-150405")))
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", logFile},
	})
}
