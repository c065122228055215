package trigger

import (
	"errors"
	"fmt"
)

// DefaultThreshold suits TTL-level trigger lines (logic high near 5 V).
const DefaultThreshold = 5.0

// ErrInvalidChannel reports a trigger channel detection cannot work with.
var ErrInvalidChannel = errors.New("invalid trigger channel")

// Detect returns the sample indices of pulse rising edges: positions where the
// channel crosses from at-or-below threshold to above it. The comparison at
// index zero is against an implicit below-threshold sample, so a channel that
// starts high yields no onset there. A channel that never crosses the
// threshold yields an empty, non-nil slice.
func Detect(channel []float64, threshold float64) ([]int, error) {
	if len(channel) == 0 {
		return nil, fmt.Errorf("%w: channel is empty", ErrInvalidChannel)
	}

	// Index zero can never be an onset: there is no earlier sample to rise
	// from, and a channel captured mid-pulse must not fabricate one.
	onsets := make([]int, 0, 64)
	prevHigh := channel[0] > threshold
	for i := 1; i < len(channel); i++ {
		high := channel[i] > threshold
		if high && !prevHigh {
			onsets = append(onsets, i)
		}
		prevHigh = high
	}
	return onsets, nil
}
