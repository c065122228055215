// Package trigger detects MRI volume trigger pulses in a recorded analog
// channel.
//
// The scanner emits one TTL pulse per acquired volume. Detection binarizes the
// channel against a threshold and reports rising edges only, so a channel that
// is already high at sample zero contributes no onset and falling edges are
// never counted.
package trigger
