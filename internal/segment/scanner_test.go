package segment_test

import (
	"errors"
	"testing"

	"physiobids/internal/segment"
)

func evenOnsets(start, spacing, count int) []int {
	onsets := make([]int, count)
	for i := range onsets {
		onsets[i] = start + i*spacing
	}
	return onsets
}

func TestNextAcceptsExactVolumeCount(t *testing.T) {
	// samplingRate 100 Hz, TR 1 s -> 100 samples per volume.
	onsets := append(evenOnsets(0, 100, 4), 5000, 5100)
	sc := segment.NewScanner(onsets)

	seg, err := sc.Next(segment.Expectation{NumVolumes: 4, RepetitionTime: 1}, 100, 10000)
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if seg.StartIndex != 0 || seg.EndIndex != 400 {
		t.Fatalf("got segment [%d:%d], want [0:400]", seg.StartIndex, seg.EndIndex)
	}
	if seg.SamplesPerVolume != 100 {
		t.Fatalf("samples per volume: got %d want 100", seg.SamplesPerVolume)
	}
}

func TestNextIsDeterministic(t *testing.T) {
	onsets := evenOnsets(250, 80, 12)
	exp := segment.Expectation{NumVolumes: 12, RepetitionTime: 0.8}

	first, err := segment.NewScanner(onsets).Next(exp, 100, 2000)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := segment.NewScanner(onsets).Next(exp, 100, 2000)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if first != second {
		t.Fatalf("segmentation not deterministic: %+v vs %+v", first, second)
	}
}

func TestNextDiscardsUndersizedCandidateOnGap(t *testing.T) {
	// Three onsets, then a gap far beyond one inter-volume interval.
	onsets := []int{0, 100, 200, 5000}
	sc := segment.NewScanner(onsets)

	_, err := sc.Next(segment.Expectation{NumVolumes: 4, RepetitionTime: 1}, 100, 10000)
	if !errors.Is(err, segment.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	if sc.Remaining() != 0 {
		t.Fatalf("cursor should be exhausted, %d onsets remain", sc.Remaining())
	}
}

func TestNextSkipsPartialGroupBeforeRealRun(t *testing.T) {
	// Two stray onsets, a rest gap, then a complete run.
	onsets := append([]int{0, 100}, evenOnsets(3000, 100, 4)...)
	sc := segment.NewScanner(onsets)

	seg, err := sc.Next(segment.Expectation{NumVolumes: 4, RepetitionTime: 1}, 100, 10000)
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if seg.StartIndex != 3000 || seg.EndIndex != 3400 {
		t.Fatalf("got segment [%d:%d], want [3000:3400]", seg.StartIndex, seg.EndIndex)
	}
}

func TestNextSegmentsBackToBackRunsByCountAlone(t *testing.T) {
	// Eight evenly spaced onsets with no rest gap anywhere: two runs of four
	// must be cut exactly at the count boundary.
	onsets := evenOnsets(0, 100, 8)
	sc := segment.NewScanner(onsets)
	exp := segment.Expectation{NumVolumes: 4, RepetitionTime: 1}

	first, err := sc.Next(exp, 100, 10000)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := sc.Next(exp, 100, 10000)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.StartIndex != 0 || first.EndIndex != 400 {
		t.Fatalf("first run [%d:%d], want [0:400]", first.StartIndex, first.EndIndex)
	}
	if second.StartIndex != 400 || second.EndIndex != 800 {
		t.Fatalf("second run [%d:%d], want [400:800]", second.StartIndex, second.EndIndex)
	}
}

func TestNextSeparatedRunsAcrossRestGaps(t *testing.T) {
	onsets := append(evenOnsets(100, 100, 4), evenOnsets(2000, 100, 4)...)
	sc := segment.NewScanner(onsets)
	exp := segment.Expectation{NumVolumes: 4, RepetitionTime: 1}

	first, err := sc.Next(exp, 100, 10000)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := sc.Next(exp, 100, 10000)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.StartIndex != 100 || second.StartIndex != 2000 {
		t.Fatalf("run starts %d, %d; want 100, 2000", first.StartIndex, second.StartIndex)
	}
	if _, err := sc.Next(exp, 100, 10000); !errors.Is(err, segment.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound after both runs consumed, got %v", err)
	}
}

func TestNextReportsBoundsError(t *testing.T) {
	onsets := evenOnsets(900, 100, 4)
	sc := segment.NewScanner(onsets)

	_, err := sc.Next(segment.Expectation{NumVolumes: 4, RepetitionTime: 1}, 100, 1000)
	var bounds *segment.BoundsError
	if !errors.As(err, &bounds) {
		t.Fatalf("expected BoundsError, got %v", err)
	}
	if bounds.EndIndex != 1300 || bounds.RecordLen != 1000 {
		t.Fatalf("unexpected bounds detail: %+v", bounds)
	}
}

func TestNextRejectsInvalidExpectations(t *testing.T) {
	sc := segment.NewScanner([]int{0, 100})
	if _, err := sc.Next(segment.Expectation{NumVolumes: 0, RepetitionTime: 1}, 100, 1000); err == nil {
		t.Fatal("expected error for zero volume count")
	}
	if _, err := sc.Next(segment.Expectation{NumVolumes: 2, RepetitionTime: 0}, 100, 1000); err == nil {
		t.Fatal("expected error for zero repetition time")
	}
	if _, err := sc.Next(segment.Expectation{NumVolumes: 2, RepetitionTime: 1}, 0, 1000); err == nil {
		t.Fatal("expected error for zero sampling rate")
	}
}

func TestSamplesPerVolumeRounds(t *testing.T) {
	if got := segment.SamplesPerVolume(1000, 1.25); got != 1250 {
		t.Fatalf("got %d want 1250", got)
	}
	if got := segment.SamplesPerVolume(496, 2.0); got != 992 {
		t.Fatalf("got %d want 992", got)
	}
	if got := segment.SamplesPerVolume(100, 0.7146); got != 71 {
		t.Fatalf("got %d want 71", got)
	}
}
