// Package recording loads continuous multi-channel physiological recordings
// into an immutable in-memory form.
//
// Two on-disk formats are supported: the acquisition software's MAT export and
// EDF. Loaders validate the channel-count invariant up front so downstream
// code can index samples by mapped channel without bounds anxiety.
package recording
