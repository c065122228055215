package runmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrMetadataNotFound reports an absent sidecar file.
	ErrMetadataNotFound = errors.New("run metadata not found")
	// ErrMetadataParse reports unreadable or malformed sidecar content.
	ErrMetadataParse = errors.New("run metadata parse failure")
)

// IncompleteMetadataError reports a sidecar missing required fields.
type IncompleteMetadataError struct {
	Path    string
	Missing []string
}

func (e *IncompleteMetadataError) Error() string {
	return fmt.Sprintf("metadata %s missing required field(s): %s", e.Path, strings.Join(e.Missing, ", "))
}

// Metadata is the per-run acquisition description the segmenter needs.
type Metadata struct {
	TaskName       string
	RepetitionTime float64
	NumVolumes     int
	// SamplingFrequency is optional in bold sidecars; zero when absent.
	SamplingFrequency float64
}

// Result is the outcome of one Resolve call. When AlreadyResolved is true the
// sidecar was processed by an earlier call and Metadata is the cached value;
// the caller decides whether that means "skip this run".
type Result struct {
	Metadata        Metadata
	AlreadyResolved bool
}

// Resolver loads and validates bold sidecars, deduplicating repeated lookups.
// Not safe for concurrent use; a session owns exactly one resolver.
type Resolver struct {
	resolved map[string]Metadata
}

func NewResolver() *Resolver {
	return &Resolver{resolved: make(map[string]Metadata)}
}

// sidecar mirrors the JSON keys the converter reads. Pointer fields
// distinguish absent from zero: a null or missing RepetitionTime is a hard
// error, not a default.
type sidecar struct {
	TaskName          *string  `json:"TaskName"`
	RepetitionTime    *float64 `json:"RepetitionTime"`
	NumVolumes        *int     `json:"NumVolumes"`
	SamplingFrequency *float64 `json:"SamplingFrequency"`
}

// Resolve loads the sidecar at path, or returns the tagged cached result when
// the canonicalized path was already resolved.
func (r *Resolver) Resolve(path string) (Result, error) {
	key, err := canonicalKey(path)
	if err != nil {
		return Result{}, err
	}
	if meta, ok := r.resolved[key]; ok {
		return Result{Metadata: meta, AlreadyResolved: true}, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrMetadataNotFound, path)
		}
		return Result{}, fmt.Errorf("%w: %s: %v", ErrMetadataParse, path, err)
	}

	var sc sidecar
	if err := json.Unmarshal(contents, &sc); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %v", ErrMetadataParse, path, err)
	}

	var missing []string
	if sc.TaskName == nil || strings.TrimSpace(*sc.TaskName) == "" {
		missing = append(missing, "TaskName")
	}
	if sc.RepetitionTime == nil {
		missing = append(missing, "RepetitionTime")
	}
	if sc.NumVolumes == nil {
		missing = append(missing, "NumVolumes")
	}
	if len(missing) > 0 {
		return Result{}, &IncompleteMetadataError{Path: path, Missing: missing}
	}
	if *sc.RepetitionTime <= 0 {
		return Result{}, fmt.Errorf("%w: %s: RepetitionTime must be positive, got %g",
			ErrMetadataParse, path, *sc.RepetitionTime)
	}
	if *sc.NumVolumes <= 0 {
		return Result{}, fmt.Errorf("%w: %s: NumVolumes must be positive, got %d",
			ErrMetadataParse, path, *sc.NumVolumes)
	}

	meta := Metadata{
		TaskName:       strings.TrimSpace(*sc.TaskName),
		RepetitionTime: *sc.RepetitionTime,
		NumVolumes:     *sc.NumVolumes,
	}
	if sc.SamplingFrequency != nil {
		meta.SamplingFrequency = *sc.SamplingFrequency
	}

	r.resolved[key] = meta
	return Result{Metadata: meta}, nil
}

// canonicalKey collapses path aliases so symlinked duplicates share one cache
// entry. Symlink resolution is best-effort: a dangling path falls back to the
// absolute form so Resolve can still report not-found against it.
func canonicalKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMetadataParse, path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}
