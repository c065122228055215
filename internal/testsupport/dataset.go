// Package testsupport builds synthetic recordings, BIDS sidecar trees, and
// configurations for tests.
package testsupport

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/edf"
)

// TriggerTrace synthesizes a trigger channel: for each run, `volumes` pulses
// spaced `spacing` samples apart, runs separated by `gap` samples of silence.
// Pulses are 5 samples of level 8 on a zero baseline.
func TriggerTrace(runs, volumes, spacing, gap int) []float64 {
	length := runs*(volumes*spacing+gap) + gap
	trace := make([]float64, length)
	pos := gap
	for r := 0; r < runs; r++ {
		for v := 0; v < volumes; v++ {
			start := pos + v*spacing
			for i := start; i < start+5 && i < length; i++ {
				trace[i] = 8
			}
		}
		pos += volumes*spacing + gap
	}
	return trace
}

// WriteBoldSidecar writes a run's bold JSON sidecar, creating parent
// directories. Fields with zero values are omitted so tests can produce
// incomplete sidecars.
func WriteBoldSidecar(t testing.TB, path, task string, tr float64, numVolumes int, samplingRate float64) {
	t.Helper()
	payload := map[string]any{}
	if task != "" {
		payload["TaskName"] = task
	}
	if tr != 0 {
		payload["RepetitionTime"] = tr
	}
	if numVolumes != 0 {
		payload["NumVolumes"] = numVolumes
	}
	if samplingRate != 0 {
		payload["SamplingFrequency"] = samplingRate
	}
	contents, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		t.Fatalf("marshal sidecar: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir sidecar dir: %v", err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
}

// BuildMAT serializes labels, units, a samples-by-channels data matrix, and a
// sampling rate into an uncompressed little-endian MAT 5 byte stream.
func BuildMAT(labels, units []string, data [][]float64, rate float64) []byte {
	var buf bytes.Buffer

	header := make([]byte, 128)
	copy(header, []byte("MATLAB 5.0 MAT-file, created by physiobids testsupport"))
	for i := len("MATLAB 5.0 MAT-file, created by physiobids testsupport"); i < 116; i++ {
		header[i] = ' '
	}
	binary.LittleEndian.PutUint16(header[124:126], 0x0100)
	copy(header[126:128], []byte("IM"))
	buf.Write(header)

	writeCharMatrix(&buf, "labels", labels)
	writeCharMatrix(&buf, "units", units)
	writeDoubleMatrix(&buf, "data", data)
	writeDoubleMatrix(&buf, "fs", [][]float64{{rate}})

	return buf.Bytes()
}

// BuildMATWithISI is BuildMAT with the sampling rate expressed as an
// inter-sample interval in milliseconds under the name "isi", the way some
// acquisition exports record it.
func BuildMATWithISI(t testing.TB, labels, units []string, data [][]float64, isiMillis float64) []byte {
	t.Helper()
	var buf bytes.Buffer

	header := make([]byte, 128)
	copy(header, []byte("MATLAB 5.0 MAT-file, created by physiobids testsupport"))
	for i := len("MATLAB 5.0 MAT-file, created by physiobids testsupport"); i < 116; i++ {
		header[i] = ' '
	}
	binary.LittleEndian.PutUint16(header[124:126], 0x0100)
	copy(header[126:128], []byte("IM"))
	buf.Write(header)

	writeCharMatrix(&buf, "labels", labels)
	writeCharMatrix(&buf, "units", units)
	writeDoubleMatrix(&buf, "data", data)
	writeDoubleMatrix(&buf, "isi", [][]float64{{isiMillis}})

	return buf.Bytes()
}

// WriteMAT writes a synthetic MAT recording to path.
func WriteMAT(t testing.TB, path string, labels, units []string, data [][]float64, rate float64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir recording dir: %v", err)
	}
	if err := os.WriteFile(path, BuildMAT(labels, units, data, rate), 0o644); err != nil {
		t.Fatalf("write mat recording: %v", err)
	}
}

// WriteEDF writes a synthetic EDF recording to path with one data record per
// second at the given rate. Data is samples-by-channels.
func WriteEDF(t testing.TB, path string, labels, units []string, data [][]float64, rate int) {
	t.Helper()
	if len(data) == 0 || len(data)%rate != 0 {
		t.Fatalf("edf data length %d must be a positive multiple of rate %d", len(data), rate)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir recording dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create edf: %v", err)
	}
	defer f.Close()

	records := len(data) / rate
	signals := make([]edf.Signal, len(labels))
	for i, label := range labels {
		signals[i] = edf.Signal{
			Label:             label,
			PhysicalDimension: units[i],
			PhysicalMin:       -100,
			PhysicalMax:       100,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  rate,
		}
	}
	writer, err := edf.Create(f, edf.Header{
		Version:            edf.Version0,
		PatientID:          "test",
		RecordingID:        "testsupport",
		StartTime:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
		DataRecords:        records,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		t.Fatalf("edf create: %v", err)
	}
	for rec := 0; rec < records; rec++ {
		chunk := make([][]float64, len(signals))
		for s := range signals {
			chunk[s] = make([]float64, rate)
			for i := 0; i < rate; i++ {
				chunk[s][i] = data[rec*rate+i][s]
			}
		}
		if err := writer.WriteRecord(chunk); err != nil {
			t.Fatalf("edf write record %d: %v", rec, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("edf close: %v", err)
	}
}

func writeElement(buf *bytes.Buffer, elemType uint32, payload []byte) {
	var tag [8]byte
	binary.LittleEndian.PutUint32(tag[:4], elemType)
	binary.LittleEndian.PutUint32(tag[4:], uint32(len(payload)))
	buf.Write(tag[:])
	buf.Write(payload)
	if pad := len(payload) % 8; pad != 0 {
		buf.Write(make([]byte, 8-pad))
	}
}

func matrixPreamble(class uint32, rows, cols int, name string) *bytes.Buffer {
	body := &bytes.Buffer{}

	flags := make([]byte, 8)
	binary.LittleEndian.PutUint32(flags[:4], class)
	writeElement(body, 6, flags) // miUINT32 array flags

	dims := make([]byte, 8)
	binary.LittleEndian.PutUint32(dims[:4], uint32(rows))
	binary.LittleEndian.PutUint32(dims[4:], uint32(cols))
	writeElement(body, 5, dims) // miINT32 dimensions

	writeElement(body, 1, []byte(name)) // miINT8 name
	return body
}

func writeDoubleMatrix(buf *bytes.Buffer, name string, data [][]float64) {
	rows := len(data)
	cols := 0
	if rows > 0 {
		cols = len(data[0])
	}
	body := matrixPreamble(6, rows, cols, name) // mxDOUBLE

	values := make([]byte, 8*rows*cols)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			bits := math.Float64bits(data[r][c])
			binary.LittleEndian.PutUint64(values[8*(c*rows+r):], bits)
		}
	}
	writeElement(body, 9, values) // miDOUBLE

	writeElement(buf, 14, body.Bytes()) // miMATRIX
}

func writeCharMatrix(buf *bytes.Buffer, name string, rows []string) {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	body := matrixPreamble(4, len(rows), width, name) // mxCHAR

	values := make([]byte, 2*len(rows)*width)
	for c := 0; c < width; c++ {
		for r, row := range rows {
			ch := uint16(' ')
			if c < len(row) {
				ch = uint16(row[c])
			}
			binary.LittleEndian.PutUint16(values[2*(c*len(rows)+r):], ch)
		}
	}
	writeElement(body, 4, values) // miUINT16

	writeElement(buf, 14, body.Bytes()) // miMATRIX
}

// WriteEDFMixedRates writes an EDF file whose two signals disagree on
// samples per record, for exercising mixed-rate rejection.
func WriteEDFMixedRates(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir recording dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create edf: %v", err)
	}
	defer f.Close()

	signals := []edf.Signal{
		{
			Label:             "RSP100C",
			PhysicalDimension: "V",
			PhysicalMin:       -100,
			PhysicalMax:       100,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  100,
		},
		{
			Label:             "Digital input",
			PhysicalDimension: "V",
			PhysicalMin:       -100,
			PhysicalMax:       100,
			DigitalMin:        -32768,
			DigitalMax:        32767,
			SamplesPerRecord:  50,
		},
	}
	writer, err := edf.Create(f, edf.Header{
		Version:            edf.Version0,
		PatientID:          "test",
		RecordingID:        "testsupport",
		StartTime:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DataRecordDuration: time.Second,
		DataRecords:        1,
		SignalCount:        len(signals),
		Signals:            signals,
	})
	if err != nil {
		t.Fatalf("edf create: %v", err)
	}
	if err := writer.WriteRecord([][]float64{make([]float64, 100), make([]float64, 50)}); err != nil {
		t.Fatalf("edf write record: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("edf close: %v", err)
	}
}

// RunSpacing converts a repetition time in seconds to a sample count at rate.
func RunSpacing(rate float64, tr float64) int {
	return int(rate*tr + 0.5)
}

// Channel extracts one column from samples-by-channels data.
func Channel(data [][]float64, col int) []float64 {
	out := make([]float64, len(data))
	for i, row := range data {
		out[i] = row[col]
	}
	return out
}

// FormatRun is a convenience for building run entity strings in tests.
func FormatRun(index int) string {
	return fmt.Sprintf("run-%02d", index)
}
