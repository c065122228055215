package output

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"physiobids/internal/fileutil"
	"physiobids/internal/physio"
	"physiobids/internal/recording"
	"physiobids/internal/segment"
)

// Sidecar is the JSON metadata written next to each physio TSV.
type Sidecar struct {
	SamplingFrequency float64  `json:"SamplingFrequency"`
	StartTime         float64  `json:"StartTime"`
	Columns           []string `json:"Columns"`
	Units             []string `json:"Units,omitempty"`
}

// Columns returns the sidecar column names for a mapping, in output order.
func Columns(mapping physio.Mapping) []string {
	roles := mapping.OrderedRoles()
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = role.BIDSColumn()
	}
	return names
}

// Units returns the physical unit of each mapped channel, parallel to Columns.
func Units(rec *recording.Recording, mapping physio.Mapping) []string {
	channels := mapping.Channels()
	units := make([]string, len(channels))
	for i, ch := range channels {
		units[i] = rec.Units[ch.Index]
	}
	return units
}

// WriteRunTSV writes the mapped channels of one run segment as a gzipped TSV
// without a header row. Values are formatted with %.6g.
func WriteRunTSV(path string, rec *recording.Recording, mapping physio.Mapping, seg segment.Segment) error {
	if seg.StartIndex < 0 || seg.EndIndex > rec.Len() || seg.StartIndex >= seg.EndIndex {
		return fmt.Errorf("write run tsv %s: segment [%d:%d] outside recording of %d samples",
			path, seg.StartIndex, seg.EndIndex, rec.Len())
	}
	channels := mapping.Channels()
	if len(channels) == 0 {
		return fmt.Errorf("write run tsv %s: mapping has no channels", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write run tsv %s: %w", path, err)
	}
	err := fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		gz := gzip.NewWriter(w)
		buf := bufio.NewWriter(gz)
		line := make([]byte, 0, 16*len(channels))
		for row := seg.StartIndex; row < seg.EndIndex; row++ {
			line = line[:0]
			for col, ch := range channels {
				if col > 0 {
					line = append(line, '\t')
				}
				line = appendValue(line, rec.Samples[row][ch.Index])
			}
			line = append(line, '\n')
			if _, err := buf.Write(line); err != nil {
				return err
			}
		}
		if err := buf.Flush(); err != nil {
			return err
		}
		return gz.Close()
	})
	if err != nil {
		return fmt.Errorf("write run tsv %s: %w", path, err)
	}
	return nil
}

// WriteRunSidecar writes the JSON sidecar describing a run's TSV columns.
// StartTime is always zero: each run's samples begin at its own first trigger.
func WriteRunSidecar(path string, samplingFrequency float64, columns, units []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write run sidecar %s: %w", path, err)
	}
	sidecar := Sidecar{
		SamplingFrequency: samplingFrequency,
		StartTime:         0.0,
		Columns:           columns,
		Units:             units,
	}
	err := fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sidecar)
	})
	if err != nil {
		return fmt.Errorf("write run sidecar %s: %w", path, err)
	}
	return nil
}

// appendValue formats v the way the TSV stores every sample.
func appendValue(dst []byte, v float64) []byte {
	return strconv.AppendFloat(dst, v, 'g', 6, 64)
}
