// Package output writes the BIDS deliverables for one run: the gzipped
// tab-separated signal file and its JSON sidecar.
//
// Column order always follows the channel mapping's recording order, and both
// files are written atomically so an interrupted conversion never leaves a
// truncated file in the BIDS tree.
package output
