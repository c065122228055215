package recording

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"physiobids/internal/testsupport"
)

func TestLoadMATRecording(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub-01_ses-01_task-rest_physio.mat")

	labels := []string{"ECG100C", "RSP100C", "Digital input"}
	units := []string{"mV", "V", "V"}
	data := [][]float64{
		{0.1, 0.5, 0},
		{0.2, 0.6, 8},
		{0.3, 0.7, 8},
		{0.4, 0.8, 0},
	}
	testsupport.WriteMAT(t, path, labels, units, data, 500)

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := rec.Rate, 500.0; got != want {
		t.Fatalf("Rate = %g, want %g", got, want)
	}
	if got, want := rec.Len(), 4; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := len(rec.Labels), 3; got != want {
		t.Fatalf("len(Labels) = %d, want %d", got, want)
	}
	if rec.Labels[2] != "Digital input" {
		t.Fatalf("Labels[2] = %q, want %q", rec.Labels[2], "Digital input")
	}
	if rec.Units[0] != "mV" {
		t.Fatalf("Units[0] = %q, want %q", rec.Units[0], "mV")
	}
	trigger := rec.Channel(2)
	want := []float64{0, 8, 8, 0}
	for i := range want {
		if trigger[i] != want[i] {
			t.Fatalf("Channel(2)[%d] = %g, want %g", i, trigger[i], want[i])
		}
	}
	if rec.Path != path {
		t.Fatalf("Path = %q, want %q", rec.Path, path)
	}
}

func TestLoadMATISISamplingRate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec.mat")

	// 2 ms inter-sample interval means 500 Hz.
	buf := testsupport.BuildMATWithISI(t, []string{"Digital input"}, []string{"V"},
		[][]float64{{0}, {8}, {0}}, 2.0)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write mat: %v", err)
	}

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := rec.Rate, 500.0; got != want {
		t.Fatalf("Rate = %g, want %g", got, want)
	}
}

func TestLoadEDFRecording(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub-01_ses-01_task-rest_physio.edf")

	labels := []string{"RSP100C", "Digital input"}
	units := []string{"V", "V"}
	rate := 100
	data := make([][]float64, 2*rate)
	for i := range data {
		data[i] = []float64{0.25, 0}
		if i >= 50 && i < 55 {
			data[i][1] = 8
		}
	}
	testsupport.WriteEDF(t, path, labels, units, data, rate)

	rec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := rec.Rate, 100.0; got != want {
		t.Fatalf("Rate = %g, want %g", got, want)
	}
	if got, want := rec.Len(), 200; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if rec.Labels[1] != "Digital input" {
		t.Fatalf("Labels[1] = %q, want %q", rec.Labels[1], "Digital input")
	}
	if rec.Units[0] != "V" {
		t.Fatalf("Units[0] = %q, want %q", rec.Units[0], "V")
	}

	// EDF stores 16-bit digital values, so decoded samples carry a small
	// quantization error.
	const tol = 0.01
	trigger := rec.Channel(1)
	for i, v := range trigger {
		want := 0.0
		if i >= 50 && i < 55 {
			want = 8.0
		}
		if math.Abs(v-want) > tol {
			t.Fatalf("Channel(1)[%d] = %g, want %g within %g", i, v, want, tol)
		}
	}
}

func TestLoadEDFMixedRatesRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.edf")
	testsupport.WriteEDFMixedRates(t, path)

	_, err := Load(path)
	if !errors.Is(err, ErrEDFParse) {
		t.Fatalf("Load() error = %v, want ErrEDFParse", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rec.acq")
	if err := os.WriteFile(path, []byte("not a recording"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.mat"))
	if err == nil {
		t.Fatal("Load() on missing file succeeded, want error")
	}
}

func TestExtensionsProbeOrder(t *testing.T) {
	got := Extensions()
	want := []string{".mat", ".edf"}
	if len(got) != len(want) {
		t.Fatalf("Extensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Extensions()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
