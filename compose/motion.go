package compose

import "math"

// Motion primitives for character and logo animation. All are pure
// functions of time so layers built from them stay sampleable in any order.

// FloatOffset is the idle "breathing" bob: a sinusoidal vertical offset in
// pixels. The two characters share amplitude and frequency but are given
// phases π/2 apart so they never bob in unison.
func FloatOffset(t, amplitude, frequency, phase float64) float64 {
	return amplitude * math.Sin(2*math.Pi*frequency*t+phase)
}

// Bounce moves a point from start at constant velocity inside [min, max],
// reflecting elastically off both bounds. Implemented as a triangle wave
// over twice the span, so position is continuous and always in range.
func Bounce(start, velocity, t, min, max float64) float64 {
	span := max - min
	if span <= 0 {
		return min
	}
	x := start - min + velocity*t
	period := 2 * span
	m := math.Mod(x, period)
	if m < 0 {
		m += period
	}
	if m > span {
		m = period - m
	}
	return min + m
}

// Jitter is the logo's small trembling offset: independent sine terms on
// each axis at unrelated frequencies so the motion never visibly repeats.
func Jitter(t, amplitude float64) (dx, dy float64) {
	dx = amplitude * math.Sin(2*math.Pi*3.1*t)
	dy = amplitude * 0.8 * math.Sin(2*math.Pi*4.3*t)
	return dx, dy
}
