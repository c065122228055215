package bidspath_test

import (
	"errors"
	"path/filepath"
	"testing"

	"physiobids/internal/bidspath"
)

func TestParseIdentityFromBasename(t *testing.T) {
	id, err := bidspath.ParseIdentity("/data/physio/sub-01_ses-02_rawdata")
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if id.Subject != "sub-01" || id.Session != "ses-02" {
		t.Fatalf("got %+v, want sub-01/ses-02", id)
	}
}

func TestParseIdentityFromNestedComponents(t *testing.T) {
	id, err := bidspath.ParseIdentity("/data/physio/sub-ctrl9/ses-baseline/raw")
	if err != nil {
		t.Fatalf("ParseIdentity: %v", err)
	}
	if id.Subject != "sub-ctrl9" || id.Session != "ses-baseline" {
		t.Fatalf("got %+v", id)
	}
}

func TestParseIdentityFailure(t *testing.T) {
	if _, err := bidspath.ParseIdentity("/data/physio/raw"); !errors.Is(err, bidspath.ErrPathParse) {
		t.Fatalf("expected ErrPathParse, got %v", err)
	}
}

func TestBoldSidecarTemplate(t *testing.T) {
	id := bidspath.Identity{Subject: "sub-01", Session: "ses-01"}
	got := bidspath.BoldSidecar("/bids", id, "rest", 3)
	want := filepath.Join("/bids", "sub-01", "ses-01", "func", "sub-01_ses-01_task-rest_run-03_bold.json")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestPhysioOutputTemplates(t *testing.T) {
	id := bidspath.Identity{Subject: "sub-01", Session: "ses-01"}
	tsv, sidecar := bidspath.PhysioOutputs("/bids", id, "rest", 1)
	if filepath.Base(tsv) != "sub-01_ses-01_task-rest_run-01_physio.tsv.gz" {
		t.Fatalf("unexpected tsv name: %q", tsv)
	}
	if filepath.Base(sidecar) != "sub-01_ses-01_task-rest_run-01_physio.json" {
		t.Fatalf("unexpected sidecar name: %q", sidecar)
	}
	if filepath.Dir(tsv) != filepath.Dir(sidecar) {
		t.Fatal("tsv and sidecar must share a directory")
	}
}

func TestRecordingTemplate(t *testing.T) {
	id := bidspath.Identity{Subject: "sub-01", Session: "ses-01"}
	got := bidspath.Recording("/physio/sub-01_ses-01", id, "rest", ".mat")
	want := filepath.Join("/physio/sub-01_ses-01", "sub-01_ses-01_task-rest_physio.mat")
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRunID(t *testing.T) {
	if got := bidspath.RunID(7); got != "run-07" {
		t.Fatalf("got %q want run-07", got)
	}
	if got := bidspath.RunID(12); got != "run-12" {
		t.Fatalf("got %q want run-12", got)
	}
}

func TestTaskLabel(t *testing.T) {
	cases := map[string]string{
		"rest":          "rest",
		"resting state": "restingState",
		"Motor-Task 2":  "motorTask2",
		"  ":            "",
	}
	for in, want := range cases {
		if got := bidspath.TaskLabel(in); got != want {
			t.Fatalf("TaskLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
