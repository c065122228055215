package recording

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports a recording extension no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported recording format")

// Recording is one session's continuous capture. Immutable once loaded.
type Recording struct {
	// Labels holds one instrument label per channel, in column order.
	Labels []string
	// Units holds the physical unit per channel, parallel to Labels.
	Units []string
	// Samples is row-per-timepoint, column-per-channel.
	Samples [][]float64
	// Rate is the sampling rate in samples per second.
	Rate float64
	// Path is where the recording was loaded from.
	Path string
}

// Load reads the recording at path, dispatching on extension.
func Load(path string) (*Recording, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mat":
		return LoadMAT(path)
	case ".edf":
		return LoadEDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Extensions lists recognized recording extensions in probe order.
func Extensions() []string {
	return []string{".mat", ".edf"}
}

// Len returns the number of time samples.
func (r *Recording) Len() int {
	return len(r.Samples)
}

// Channel returns one channel's full trace as a fresh slice.
func (r *Recording) Channel(col int) []float64 {
	out := make([]float64, len(r.Samples))
	for i, row := range r.Samples {
		out[i] = row[col]
	}
	return out
}

// validate enforces the structural invariant shared by all loaders.
func (r *Recording) validate() error {
	if len(r.Labels) == 0 {
		return errors.New("recording has no channels")
	}
	if len(r.Labels) != len(r.Units) {
		return fmt.Errorf("recording has %d labels but %d units", len(r.Labels), len(r.Units))
	}
	if r.Rate <= 0 {
		return fmt.Errorf("recording sampling rate must be positive, got %g", r.Rate)
	}
	if len(r.Samples) == 0 {
		return errors.New("recording has no samples")
	}
	for i, row := range r.Samples {
		if len(row) != len(r.Labels) {
			return fmt.Errorf("sample row %d has %d columns, recording declares %d channels",
				i, len(row), len(r.Labels))
		}
	}
	return nil
}
