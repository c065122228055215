package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"physiobids/internal/bidspath"
	"physiobids/internal/testsupport"
)

func writeTestConfig(t *testing.T, journalEnabled bool) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
log_dir = %q
journal_path = %q

[journal]
enabled = %t

[plot]
enabled = false

[sourcedata]
mirror = false
`, filepath.Join(base, "logs"), filepath.Join(base, "logs", "journal.db"), journalEnabled)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func setupSessionDirs(t *testing.T) (physioRoot, bidsRoot string) {
	t.Helper()
	base := t.TempDir()
	physioRoot = filepath.Join(base, "physio", "sub-01", "ses-01")
	bidsRoot = filepath.Join(base, "bids")
	if err := os.MkdirAll(physioRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	const rate = 100
	spacing := testsupport.RunSpacing(rate, 1.0)
	trace := testsupport.TriggerTrace(1, 4, spacing, 5*spacing)
	data := make([][]float64, len(trace))
	for i := range data {
		data[i] = []float64{0.1, trace[i]}
	}
	testsupport.WriteMAT(t,
		filepath.Join(physioRoot, "sub-01_ses-01_task-rest_physio.mat"),
		[]string{"ECG100C", "Trigger"}, []string{"mV", "V"}, data, rate)

	id := bidspath.Identity{Subject: "sub-01", Session: "ses-01"}
	testsupport.WriteBoldSidecar(t, bidspath.BoldSidecar(bidsRoot, id, "rest", 1), "rest", 1.0, 4, rate)
	return physioRoot, bidsRoot
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIConvertAndJournal(t *testing.T) {
	configPath := writeTestConfig(t, true)
	physioRoot, bidsRoot := setupSessionDirs(t)

	out, _, err := runCLI(t, configPath, physioRoot, bidsRoot)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "run-01") {
		t.Fatalf("summary missing run-01: %q", out)
	}
	if !strings.Contains(out, "Converted 1 run(s), skipped 0") {
		t.Fatalf("summary missing totals: %q", out)
	}

	id := bidspath.Identity{Subject: "sub-01", Session: "ses-01"}
	tsvPath, jsonPath := bidspath.PhysioOutputs(bidsRoot, id, "rest", 1)
	if _, err := os.Stat(tsvPath); err != nil {
		t.Fatalf("tsv not written: %v", err)
	}
	if _, err := os.Stat(jsonPath); err != nil {
		t.Fatalf("sidecar not written: %v", err)
	}

	out, _, err = runCLI(t, configPath, "journal")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if !strings.Contains(out, "sub-01") || !strings.Contains(out, "completed") {
		t.Fatalf("journal output missing session: %q", out)
	}
}

func TestCLIJournalEmpty(t *testing.T) {
	configPath := writeTestConfig(t, true)

	out, _, err := runCLI(t, configPath, "journal")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if !strings.Contains(out, "No conversions recorded yet.") {
		t.Fatalf("unexpected journal output: %q", out)
	}
}

func TestCLIRejectsWrongArgCount(t *testing.T) {
	configPath := writeTestConfig(t, false)

	_, _, err := runCLI(t, configPath, "only-one-arg")
	if err == nil {
		t.Fatal("expected an argument count error")
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("init output missing target path: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected overwrite refusal")
	}

	if err := os.WriteFile(target, []byte("# local edits\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	contents, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(contents), "local edits") {
		t.Fatal("--overwrite did not replace the existing config")
	}
	if !strings.Contains(string(contents), "trigger_threshold") {
		t.Fatal("overwritten config is not the sample")
	}
}

func TestCLIConvertMissingRecording(t *testing.T) {
	configPath := writeTestConfig(t, false)
	base := t.TempDir()
	physioRoot := filepath.Join(base, "sub-09", "ses-01")
	if err := os.MkdirAll(physioRoot, 0o755); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, configPath, physioRoot, filepath.Join(base, "bids"))
	if err == nil {
		t.Fatal("expected missing recording error")
	}
	if !strings.Contains(err.Error(), "find recording") {
		t.Fatalf("error = %v, want find recording failure", err)
	}
}
