package matfile_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"testing"

	"physiobids/internal/matfile"
	"physiobids/internal/testsupport"
)

func sampleData() ([]string, []string, [][]float64) {
	labels := []string{"ECG100C", "RSP100C", "Trigger"}
	units := []string{"mV", "V", "V"}
	data := [][]float64{
		{0.1, 0.5, 0},
		{0.2, 0.6, 8},
		{0.3, 0.7, 8},
		{0.4, 0.8, 0},
	}
	return labels, units, data
}

func TestParseRoundTrip(t *testing.T) {
	labels, units, data := sampleData()
	doc, err := matfile.Parse(testsupport.BuildMAT(labels, units, data, 500))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	gotLabels, ok := doc.StringRows("labels")
	if !ok {
		t.Fatal("labels variable missing")
	}
	for i, want := range labels {
		if gotLabels[i] != want {
			t.Fatalf("label %d: got %q want %q", i, gotLabels[i], want)
		}
	}

	gotData, ok := doc.Matrix("data")
	if !ok {
		t.Fatal("data variable missing")
	}
	if len(gotData) != 4 || len(gotData[0]) != 3 {
		t.Fatalf("data shape %dx%d, want 4x3", len(gotData), len(gotData[0]))
	}
	if gotData[1][2] != 8 {
		t.Fatalf("data[1][2] = %v, want 8", gotData[1][2])
	}

	rate, ok := doc.Scalar("fs")
	if !ok || rate != 500 {
		t.Fatalf("fs = %v (ok=%v), want 500", rate, ok)
	}
}

func TestColumnExtraction(t *testing.T) {
	labels, units, data := sampleData()
	doc, err := matfile.Parse(testsupport.BuildMAT(labels, units, data, 500))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	col, ok := doc.Column("data", 2)
	if !ok {
		t.Fatal("column 2 missing")
	}
	want := []float64{0, 8, 8, 0}
	for i := range want {
		if col[i] != want[i] {
			t.Fatalf("column sample %d: got %v want %v", i, col[i], want[i])
		}
	}
	if _, ok := doc.Column("data", 3); ok {
		t.Fatal("out-of-range column must not resolve")
	}
}

func TestParseCompressedElements(t *testing.T) {
	labels, units, data := sampleData()
	plain := testsupport.BuildMAT(labels, units, data, 500)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(plain[128:]); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	var file bytes.Buffer
	file.Write(plain[:128])
	var tag [8]byte
	binary.LittleEndian.PutUint32(tag[:4], 15) // miCOMPRESSED
	binary.LittleEndian.PutUint32(tag[4:], uint32(compressed.Len()))
	file.Write(tag[:])
	file.Write(compressed.Bytes())

	doc, err := matfile.Parse(file.Bytes())
	if err != nil {
		t.Fatalf("Parse compressed: %v", err)
	}
	if !doc.Has("data") || !doc.Has("labels") {
		t.Fatal("compressed variables missing")
	}
}

func TestParseRejectsShortFile(t *testing.T) {
	if _, err := matfile.Parse([]byte("tiny")); !errors.Is(err, matfile.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseRejectsBadEndianIndicator(t *testing.T) {
	contents := make([]byte, 128)
	copy(contents[126:], "XX")
	if _, err := matfile.Parse(contents); !errors.Is(err, matfile.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseRejectsTruncatedElement(t *testing.T) {
	labels, units, data := sampleData()
	plain := testsupport.BuildMAT(labels, units, data, 500)
	if _, err := matfile.Parse(plain[:len(plain)-16]); !errors.Is(err, matfile.ErrParse) {
		t.Fatalf("expected ErrParse for truncated payload, got %v", err)
	}
}
