package audio

import "math"

// AnalyzeMouthStates derives one open/closed mouth flag per output video
// frame from a speech clip's loudness. The clip is peak-normalized, split
// into ceil(duration*fps) equal-duration bins, and a frame is open when its
// RMS amplitude strictly exceeds threshold. A forward-only hysteresis then
// keeps the mouth open for at least minOpenFrames frames after each opening
// so that brief dips inside a word do not flicker the sprite.
//
// The result is a pure function of the inputs: no state, no randomness.
func AnalyzeMouthStates(c *Clip, fps int, threshold float64, minOpenFrames int) []bool {
	n := len(c.Samples)
	if n == 0 || c.SampleRate <= 0 || fps <= 0 {
		return []bool{}
	}

	duration := float64(n) / float64(c.SampleRate)
	totalFrames := int(math.Ceil(duration * float64(fps)))
	open := make([]bool, totalFrames)

	peak := 0.0
	for _, s := range c.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		// Silent clip: every frame closed.
		return open
	}

	samplesPerFrame := float64(c.SampleRate) / float64(fps)
	for i := 0; i < totalFrames; i++ {
		start := int(math.Round(float64(i) * samplesPerFrame))
		end := int(math.Round(float64(i+1) * samplesPerFrame))
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		var sum float64
		for _, s := range c.Samples[start:end] {
			v := s / peak
			sum += v * v
		}
		rms := math.Sqrt(sum / float64(end-start))
		open[i] = rms > threshold
	}

	if minOpenFrames > 1 {
		applyHysteresis(open, minOpenFrames)
	}
	return open
}

// applyHysteresis forces minOpenFrames consecutive open frames at every
// open transition, then resumes scanning past the forced block. Closing is
// never forced; only the open state has minimum-duration protection.
func applyHysteresis(open []bool, minOpenFrames int) {
	i := 0
	for i < len(open) {
		if !open[i] {
			i++
			continue
		}
		end := i + minOpenFrames
		if end > len(open) {
			end = len(open)
		}
		for j := i; j < end; j++ {
			open[j] = true
		}
		i = end
	}
}
