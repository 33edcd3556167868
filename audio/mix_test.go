package audio

import (
	"math"
	"testing"
)

func TestMixerOverlaysAtOffset(t *testing.T) {
	m := NewMixer(1000)
	a := &Clip{SampleRate: 1000, Samples: []float64{0.2, 0.2, 0.2, 0.2}}
	b := &Clip{SampleRate: 1000, Samples: []float64{0.3, 0.3}}

	if err := m.Add(a, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(b, 0.002); err != nil {
		t.Fatal(err)
	}

	mix := m.Mix()
	want := []float64{0.2, 0.2, 0.5, 0.5}
	for i, w := range want {
		if math.Abs(mix.Samples[i]-w) > 1e-9 {
			t.Errorf("sample %d: got %f, want %f", i, mix.Samples[i], w)
		}
	}
}

func TestMixerRejectsRateMismatch(t *testing.T) {
	m := NewMixer(44100)
	if err := m.Add(&Clip{SampleRate: 22050, Samples: []float64{0}}, 0); err == nil {
		t.Fatal("expected sample rate mismatch error")
	}
}

func TestMixerExtendTo(t *testing.T) {
	m := NewMixer(1000)
	m.Add(&Clip{SampleRate: 1000, Samples: []float64{1}}, 0)
	m.ExtendTo(0.5)
	if got := m.Duration(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("duration %f, want 0.5", got)
	}
	// Extending to a shorter length is a no-op.
	m.ExtendTo(0.1)
	if got := m.Duration(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("duration shrank to %f", got)
	}
}

func TestMixerFadeOut(t *testing.T) {
	m := NewMixer(1000)
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 1
	}
	m.Add(&Clip{SampleRate: 1000, Samples: samples}, 0)
	m.FadeOut(0.5, 0.25)

	mix := m.Mix()
	if mix.Samples[100] != 1 {
		t.Error("sample before fade was altered")
	}
	mid := mix.Samples[625] // halfway through the ramp
	if mid < 0.4 || mid > 0.6 {
		t.Errorf("mid-ramp sample %f, want ~0.5", mid)
	}
	if mix.Samples[900] != 0 {
		t.Error("sample past the ramp not silenced")
	}
}

func TestMixClampsSum(t *testing.T) {
	m := NewMixer(1000)
	loud := &Clip{SampleRate: 1000, Samples: []float64{0.8, -0.8}}
	m.Add(loud, 0)
	m.Add(loud, 0)

	mix := m.Mix()
	if mix.Samples[0] != 1 || mix.Samples[1] != -1 {
		t.Errorf("got %v, want clamped to [-1, 1]", mix.Samples)
	}
}
