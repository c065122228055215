// Package segment groups trigger pulse onsets into per-run sample ranges.
//
// A Scanner owns the full onset sequence of a session and a cursor that
// advances as runs are accepted, so declared runs are consumed strictly in
// order. Grouping is greedy: onsets accumulate into a candidate until the
// declared volume count is reached, and a gap wider than one inter-volume
// interval discards an undersized candidate. The count cutoff is authoritative
// for back-to-back runs with no detectable rest gap.
package segment
