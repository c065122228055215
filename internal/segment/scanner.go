package segment

import (
	"errors"
	"fmt"
	"math"
)

// ErrRunNotFound reports that no group of onsets satisfied the declared volume
// count before the onset sequence ran out. It costs one run, not the session.
var ErrRunNotFound = errors.New("no matching run found in trigger onsets")

// BoundsError reports a run whose computed end lies past the end of the
// recording, which means the declared metadata does not match the recorded
// data. This is fatal: later runs would be built on the same mismatch.
type BoundsError struct {
	StartIndex int
	EndIndex   int
	RecordLen  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("run segment [%d:%d] exceeds recording length %d; metadata does not match recorded data",
		e.StartIndex, e.EndIndex, e.RecordLen)
}

// Expectation declares what the metadata promises about one run.
type Expectation struct {
	NumVolumes     int
	RepetitionTime float64
}

// Segment is one accepted run's sample range. EndIndex is exclusive.
type Segment struct {
	StartIndex       int
	EndIndex         int
	NumVolumes       int
	SamplesPerVolume int
	// OnsetCount is how many trigger onsets the accepted candidate consumed;
	// always equal to NumVolumes.
	OnsetCount int
}

// SamplesPerVolume converts a repetition time to a sample count.
func SamplesPerVolume(samplingRate, repetitionTime float64) int {
	return int(math.Round(samplingRate * repetitionTime))
}

// state is the accumulator position in the run state machine.
type state int

const (
	awaitingOnsets state = iota
	accumulating
)

// Scanner walks a shared onset sequence, emitting one segment per declared
// run. The cursor carries across calls: accepting a run leaves the scanner
// positioned at the first onset after it.
type Scanner struct {
	onsets []int
	pos    int
}

// NewScanner wraps a strictly increasing onset sequence.
func NewScanner(onsets []int) *Scanner {
	return &Scanner{onsets: onsets}
}

// Remaining returns how many onsets the cursor has not yet consumed.
func (s *Scanner) Remaining() int {
	return len(s.onsets) - s.pos
}

// Next finds the next group of exactly exp.NumVolumes onsets and returns its
// segment. Undersized candidates broken by a gap wider than one inter-volume
// interval are discarded and scanning continues; exhausting the sequence
// without an accepted candidate returns ErrRunNotFound with the cursor at the
// end. recordLen bounds the accepted segment.
func (s *Scanner) Next(exp Expectation, samplingRate float64, recordLen int) (Segment, error) {
	if exp.NumVolumes <= 0 {
		return Segment{}, fmt.Errorf("expected volume count must be positive, got %d", exp.NumVolumes)
	}
	if exp.RepetitionTime <= 0 {
		return Segment{}, fmt.Errorf("repetition time must be positive, got %g", exp.RepetitionTime)
	}
	if samplingRate <= 0 {
		return Segment{}, fmt.Errorf("sampling rate must be positive, got %g", samplingRate)
	}

	spv := SamplesPerVolume(samplingRate, exp.RepetitionTime)

	st := awaitingOnsets
	count := 0
	start := 0
	for ; s.pos < len(s.onsets); s.pos++ {
		onset := s.onsets[s.pos]
		switch st {
		case awaitingOnsets:
			start = onset
			count = 1
			st = accumulating
		case accumulating:
			if onset-s.onsets[s.pos-1] > spv {
				// Rest gap before the candidate filled: discard and restart.
				start = onset
				count = 1
				continue
			}
			count++
		}
		if count == exp.NumVolumes {
			s.pos++
			return s.accept(start, exp.NumVolumes, spv, recordLen)
		}
	}
	return Segment{}, ErrRunNotFound
}

func (s *Scanner) accept(start, numVolumes, spv, recordLen int) (Segment, error) {
	end := start + numVolumes*spv
	if end > recordLen {
		return Segment{}, &BoundsError{StartIndex: start, EndIndex: end, RecordLen: recordLen}
	}
	return Segment{
		StartIndex:       start,
		EndIndex:         end,
		NumVolumes:       numVolumes,
		SamplesPerVolume: spv,
		OnsetCount:       numVolumes,
	}, nil
}
