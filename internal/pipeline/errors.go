package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks inputs that are present but malformed or inconsistent.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks problems with the tool's own configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks required inputs that are absent on disk.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later severity classification. The marker should
// be one of the exported sentinel errors above or a domain sentinel that itself
// wraps one of them.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Severity expresses how much of the session an error costs.
type Severity int

const (
	// SeverityAbortSession means the session cannot produce further output.
	SeverityAbortSession Severity = iota
	// SeveritySkipRun means the current run is lost but later runs may succeed.
	SeveritySkipRun
)

// skipRunMarker tags errors that should cost only the current run.
var skipRunMarker = errors.New("skip run")

// SkipRun re-tags err so Classify maps it to SeveritySkipRun.
func SkipRun(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", skipRunMarker, err)
}

// Classify maps an error to the severity the orchestrator should apply.
// Anything not explicitly tagged as run-scoped aborts the session.
func Classify(err error) Severity {
	if errors.Is(err, skipRunMarker) {
		return SeveritySkipRun
	}
	return SeverityAbortSession
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
