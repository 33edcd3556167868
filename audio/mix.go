package audio

import "fmt"

// Mixer overlays clips on a shared timeline by summing samples. It backs the
// opening and ending bumpers, whose audio is a union of tracks at fixed
// offsets rather than a concatenation.
type Mixer struct {
	sampleRate int
	samples    []float64
}

// NewMixer creates an empty mixer at the given sample rate.
func NewMixer(sampleRate int) *Mixer {
	return &Mixer{sampleRate: sampleRate}
}

// Add sums c into the mix starting at offset seconds, growing the timeline
// as needed. Clips must share the mixer's sample rate; bumper assets are all
// produced at one rate, so a mismatch is a configuration error.
func (m *Mixer) Add(c *Clip, offset float64) error {
	if c.SampleRate != m.sampleRate {
		return fmt.Errorf("sample rate mismatch: clip %d Hz, mixer %d Hz", c.SampleRate, m.sampleRate)
	}
	start := int(offset * float64(m.sampleRate))
	if start < 0 {
		start = 0
	}
	need := start + len(c.Samples)
	if need > len(m.samples) {
		grown := make([]float64, need)
		copy(grown, m.samples)
		m.samples = grown
	}
	for i, s := range c.Samples {
		m.samples[start+i] += s
	}
	return nil
}

// ExtendTo pads the mix with silence out to at least d seconds.
func (m *Mixer) ExtendTo(d float64) {
	need := int(d * float64(m.sampleRate))
	if need > len(m.samples) {
		grown := make([]float64, need)
		copy(grown, m.samples)
		m.samples = grown
	}
}

// FadeOut applies a linear ramp to silence over [start, start+dur]; samples
// past the ramp are zeroed.
func (m *Mixer) FadeOut(start, dur float64) {
	if dur <= 0 {
		return
	}
	startIdx := int(start * float64(m.sampleRate))
	endIdx := int((start + dur) * float64(m.sampleRate))
	for i := startIdx; i < len(m.samples); i++ {
		if i < 0 {
			continue
		}
		if i >= endIdx {
			m.samples[i] = 0
			continue
		}
		gain := 1 - float64(i-startIdx)/float64(endIdx-startIdx)
		m.samples[i] *= gain
	}
}

// Mix returns the summed timeline clamped to [-1, 1].
func (m *Mixer) Mix() *Clip {
	out := make([]float64, len(m.samples))
	for i, s := range m.samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = s
	}
	return &Clip{SampleRate: m.sampleRate, Samples: out}
}

// Duration returns the current mix length in seconds.
func (m *Mixer) Duration() float64 {
	return float64(len(m.samples)) / float64(m.sampleRate)
}
