package recording

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenPSG/edf"
)

// ErrEDFParse reports an EDF header this loader cannot use.
var ErrEDFParse = errors.New("edf parse error")

// edfLayout is the subset of the fixed-width EDF header the loader needs to
// shape the recording. Sample decoding (digital-to-physical calibration) is
// delegated to the edf package's signal readers.
type edfLayout struct {
	records       int
	durationSec   float64
	labels        []string
	units         []string
	samplesPerRec []int
}

// LoadEDF reads an EDF recording. Every signal must share one sampling rate;
// mixed-rate files are rejected rather than resampled.
func LoadEDF(path string) (*Recording, error) {
	layout, err := readEDFLayout(path)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}

	spr := layout.samplesPerRec[0]
	for i, s := range layout.samplesPerRec {
		if s != spr {
			return nil, fmt.Errorf("load recording %s: %w: signal %d has %d samples/record, signal 0 has %d (mixed rates unsupported)",
				path, ErrEDFParse, i, s, spr)
		}
	}
	if layout.durationSec <= 0 {
		return nil, fmt.Errorf("load recording %s: %w: non-positive record duration", path, ErrEDFParse)
	}
	if layout.records <= 0 {
		return nil, fmt.Errorf("load recording %s: %w: unknown record count", path, ErrEDFParse)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}
	defer f.Close()

	reader, err := edf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("load recording %s: %w: %v", path, ErrEDFParse, err)
	}

	total := layout.records * spr
	channels := make([][]float64, len(layout.labels))
	for i := range layout.labels {
		sr, err := reader.Signal(i)
		if err != nil {
			return nil, fmt.Errorf("load recording %s: %w: %v", path, ErrEDFParse, err)
		}
		trace := make([]float64, total)
		if _, err := sr.Read(trace); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load recording %s: read signal %d: %w", path, i, err)
		}
		channels[i] = trace
	}

	samples := make([][]float64, total)
	for row := range samples {
		samples[row] = make([]float64, len(channels))
		for col := range channels {
			samples[row][col] = channels[col][row]
		}
	}

	rec := &Recording{
		Labels:  layout.labels,
		Units:   layout.units,
		Samples: samples,
		Rate:    float64(spr) / layout.durationSec,
		Path:    path,
	}
	if err := rec.validate(); err != nil {
		return nil, fmt.Errorf("load recording %s: %w", path, err)
	}
	return rec, nil
}

// readEDFLayout extracts labels, units, and record geometry from the
// fixed-width ASCII header.
func readEDFLayout(path string) (*edfLayout, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(contents) < 256 {
		return nil, fmt.Errorf("%w: header shorter than 256 bytes", ErrEDFParse)
	}

	field := func(start, width int) string {
		return strings.TrimSpace(string(contents[start : start+width]))
	}

	records, err := strconv.Atoi(field(236, 8))
	if err != nil {
		return nil, fmt.Errorf("%w: data record count: %v", ErrEDFParse, err)
	}
	duration, err := strconv.ParseFloat(field(244, 8), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: data record duration: %v", ErrEDFParse, err)
	}
	ns, err := strconv.Atoi(field(252, 4))
	if err != nil || ns <= 0 {
		return nil, fmt.Errorf("%w: signal count %q", ErrEDFParse, field(252, 4))
	}

	// Per-signal header arrays, in on-disk order and width.
	need := 256 + ns*(16+80+8+8+8+8+8+80+8+32)
	if len(contents) < need {
		return nil, fmt.Errorf("%w: signal headers truncated (%d bytes, need %d)", ErrEDFParse, len(contents), need)
	}

	layout := &edfLayout{
		records:       records,
		durationSec:   duration,
		labels:        make([]string, ns),
		units:         make([]string, ns),
		samplesPerRec: make([]int, ns),
	}

	labelBase := 256
	unitBase := labelBase + ns*16 + ns*80
	sprBase := unitBase + ns*8 + ns*8 + ns*8 + ns*8 + ns*8 + ns*80
	for i := 0; i < ns; i++ {
		layout.labels[i] = field(labelBase+i*16, 16)
		layout.units[i] = field(unitBase+i*8, 8)
		spr, err := strconv.Atoi(field(sprBase+i*8, 8))
		if err != nil || spr <= 0 {
			return nil, fmt.Errorf("%w: signal %d samples/record %q", ErrEDFParse, i, field(sprBase+i*8, 8))
		}
		layout.samplesPerRec[i] = spr
	}
	return layout, nil
}
