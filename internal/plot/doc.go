// Package plot renders the per-session QA figure: the full trigger trace with
// every accepted run overlaid as a shaded span, so an operator can eyeball
// whether run boundaries landed where the pulses are.
//
// The figure is a standalone SVG written with no drawing dependencies; the
// trace is downsampled to a fixed point budget before rendering.
package plot
