// Package physio maps instrument channel labels to canonical physiological
// signal roles.
//
// Acquisition software labels channels freely ("ECG100C", "RSP, X, RSPEC-R"),
// so mapping is substring containment against a fixed, ordered table; the first
// matching entry wins. Labels carrying the digital-input marker are excluded
// before matching, and labels matching nothing are dropped with a warning
// rather than failing the session.
package physio
