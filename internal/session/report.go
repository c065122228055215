package session

import (
	"physiobids/internal/bidspath"
	"physiobids/internal/segment"
)

// RunOutcome is the final disposition of one probed run.
type RunOutcome string

const (
	OutcomeConverted RunOutcome = "converted"
	OutcomeSkipped   RunOutcome = "skipped"
	OutcomeAborted   RunOutcome = "aborted"
)

// RunReport describes what happened to one run.
type RunReport struct {
	RunID   string
	Task    string
	Outcome RunOutcome
	Message string
	Segment segment.Segment
	TSVPath string
}

// Report summarizes a whole conversion for display and auditing.
type Report struct {
	Identity      bidspath.Identity
	CorrelationID string
	RecordingPath string
	Runs          []RunReport
	Aborted       bool
	AbortReason   string
	PlotPath      string
	MirroredTo    string
}

// Converted counts runs that produced output files.
func (r *Report) Converted() int {
	n := 0
	for _, run := range r.Runs {
		if run.Outcome == OutcomeConverted {
			n++
		}
	}
	return n
}

// Skipped counts runs that were probed but produced nothing.
func (r *Report) Skipped() int {
	n := 0
	for _, run := range r.Runs {
		if run.Outcome == OutcomeSkipped {
			n++
		}
	}
	return n
}
