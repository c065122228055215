// Package bidspath constructs and parses the BIDS file paths the converter
// touches.
//
// It owns the naming templates for recordings, bold sidecars, and physio
// outputs, plus extraction of subject/session identifiers from a physio
// directory path. Layout conventions beyond these templates are out of scope.
package bidspath
