// Package session drives one complete conversion: it identifies the subject
// and session from the physio directory, loads the recording, detects trigger
// onsets, then walks the expected runs resolving metadata, segmenting, and
// writing BIDS outputs.
//
// Failures are graded: problems scoped to a single run (missing or duplicate
// metadata, an unmatchable onset group) skip that run and continue; problems
// that poison everything after them (no recording, no trigger channel, a
// segment past the end of the data) abort the session.
package session
