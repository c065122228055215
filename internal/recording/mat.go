package recording

import (
	"fmt"

	"physiobids/internal/matfile"
)

// LoadMAT reads an acquisition MAT export. The export carries `labels` and
// `units` char matrices (one row per channel), a samples-by-channels `data`
// matrix, and the sampling rate as either `fs` (Hz) or `isi` (milliseconds
// between samples).
func LoadMAT(path string) (*Recording, error) {
	doc, err := matfile.Read(path)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}

	labels, ok := doc.StringRows("labels")
	if !ok {
		return nil, fmt.Errorf("load recording %s: %w: no labels variable", path, matfile.ErrParse)
	}
	units, ok := doc.StringRows("units")
	if !ok {
		return nil, fmt.Errorf("load recording %s: %w: no units variable", path, matfile.ErrParse)
	}
	samples, ok := doc.Matrix("data")
	if !ok {
		return nil, fmt.Errorf("load recording %s: %w: no data variable", path, matfile.ErrParse)
	}

	rate, err := samplingRate(doc)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}

	rec := &Recording{
		Labels:  labels,
		Units:   units,
		Samples: samples,
		Rate:    rate,
		Path:    path,
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}
	return rec, nil
}

func samplingRate(doc *matfile.Document) (float64, error) {
	if fs, ok := doc.Scalar("fs"); ok {
		return fs, nil
	}
	if isi, ok := doc.Scalar("isi"); ok {
		if isi <= 0 {
			return 0, fmt.Errorf("%w: isi must be positive, got %g", matfile.ErrParse, isi)
		}
		return 1000.0 / isi, nil
	}
	return 0, fmt.Errorf("%w: no fs or isi variable", matfile.ErrParse)
}
