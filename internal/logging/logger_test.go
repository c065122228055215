package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"physiobids/internal/logging"
	"physiobids/internal/pipeline"
)

func TestNewWritesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "physiobids.log")

	logger, err := logging.New(logging.Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger = logging.NewComponentLogger(logger, "segmenter")
	logger.Info("run accepted",
		logging.String(logging.FieldRun, "run-01"),
		logging.Int("volumes", 160),
	)

	contents, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(contents)
	if !strings.Contains(line, "INFO [segmenter] run-01 - run accepted") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "volumes=160") {
		t.Fatalf("expected volumes attribute, got %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsScopeFields(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "ctx.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := pipeline.WithSubject(context.Background(), "sub-01")
	ctx = pipeline.WithSession(ctx, "ses-02")
	ctx = pipeline.WithRun(ctx, "run-03")

	logging.WithContext(ctx, logger).Info("segmenting")

	contents, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, want := range []string{`"subject":"sub-01"`, `"session":"ses-02"`, `"run":"run-03"`} {
		if !strings.Contains(string(contents), want) {
			t.Fatalf("expected %s in output, got %s", want, contents)
		}
	}
}

func TestNewNopDiscardsOutput(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should vanish", logging.Error(os.ErrNotExist))
}
