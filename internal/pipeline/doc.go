// Package pipeline holds the error taxonomy and context plumbing shared by
// every stage of the conversion flow.
//
// Errors are tagged with sentinel markers via Wrap so the session orchestrator
// can classify failures without string matching: some problems cost a single
// run (missing or duplicate metadata), others cost the whole session (missing
// recording, unparsable paths). Severity centralizes that split.
//
// Context helpers annotate a context.Context with subject, session, run, and
// correlation identifiers so log lines emitted deep inside a stage still carry
// enough information to be actionable from the log alone.
package pipeline
