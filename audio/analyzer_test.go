package audio

import (
	"math"
	"testing"
)

// toneClip builds a clip alternating between loud and silent stretches, one
// stretch per video frame at the given fps.
func toneClip(sampleRate, fps int, loud []bool) *Clip {
	perFrame := sampleRate / fps
	samples := make([]float64, 0, perFrame*len(loud))
	for _, l := range loud {
		for i := 0; i < perFrame; i++ {
			if l {
				samples = append(samples, math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
			} else {
				samples = append(samples, 0)
			}
		}
	}
	return &Clip{SampleRate: sampleRate, Samples: samples}
}

func TestAnalyzeMouthStatesLength(t *testing.T) {
	for _, n := range []int{1, 100, 4410, 44100, 44101} {
		c := &Clip{SampleRate: 44100, Samples: make([]float64, n)}
		c.Samples[0] = 0.5
		got := AnalyzeMouthStates(c, 24, 0.15, 1)
		want := int(math.Ceil(c.Duration() * 24))
		if len(got) != want {
			t.Errorf("n=%d: got %d frames, want %d", n, len(got), want)
		}
	}
}

func TestAnalyzeMouthStatesSilentClip(t *testing.T) {
	c := &Clip{SampleRate: 8000, Samples: make([]float64, 8000)}
	for i, open := range AnalyzeMouthStates(c, 24, 0.15, 2) {
		if open {
			t.Fatalf("frame %d open on silent clip", i)
		}
	}
}

func TestAnalyzeMouthStatesEmptyClip(t *testing.T) {
	c := &Clip{SampleRate: 8000}
	if got := AnalyzeMouthStates(c, 24, 0.15, 2); len(got) != 0 {
		t.Errorf("got %d frames for empty clip, want 0", len(got))
	}
}

func TestAnalyzeMouthStatesSpeechPattern(t *testing.T) {
	// Loud bursts open the mouth, silent gaps close it.
	pattern := []bool{true, true, false, false, true, false, false, false}
	c := toneClip(24000, 24, pattern)

	got := AnalyzeMouthStates(c, 24, 0.15, 1)
	if len(got) != len(pattern) {
		t.Fatalf("got %d frames, want %d", len(got), len(pattern))
	}
	for i, want := range pattern {
		if got[i] != want {
			t.Errorf("frame %d: got %v, want %v", i, got[i], want)
		}
	}
}

func TestHysteresisMinimumOpenRun(t *testing.T) {
	// A single loud frame must stay open for minOpenFrames frames.
	pattern := []bool{false, true, false, false, false, false}
	c := toneClip(24000, 24, pattern)

	got := AnalyzeMouthStates(c, 24, 0.15, 3)
	want := []bool{false, true, true, true, false, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestHysteresisNeverForcesClose(t *testing.T) {
	// A run longer than minOpenFrames is left alone.
	pattern := []bool{true, true, true, true, true, false}
	c := toneClip(24000, 24, pattern)

	got := AnalyzeMouthStates(c, 24, 0.15, 2)
	for i := 0; i < 5; i++ {
		if !got[i] {
			t.Errorf("frame %d closed inside a loud run", i)
		}
	}
	if got[5] {
		t.Error("trailing silent frame should stay closed")
	}
}

func TestHysteresisIdempotent(t *testing.T) {
	open := []bool{false, true, false, true, false, false, false, true}
	applyHysteresis(open, 3)
	once := make([]bool, len(open))
	copy(once, open)
	applyHysteresis(open, 3)
	for i := range open {
		if open[i] != once[i] {
			t.Fatalf("second pass changed frame %d", i)
		}
	}
}

func TestThresholdIsStrict(t *testing.T) {
	// Uniform amplitude normalizes to RMS exactly 1.0; threshold 1.0 must
	// keep the mouth closed because the comparison is strict.
	samples := make([]float64, 24000)
	for i := range samples {
		samples[i] = 0.5
	}
	c := &Clip{SampleRate: 24000, Samples: samples}
	for i, open := range AnalyzeMouthStates(c, 24, 1.0, 1) {
		if open {
			t.Fatalf("frame %d open at threshold equal to RMS", i)
		}
	}
}
