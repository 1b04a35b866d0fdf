package delay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/glicol-verb/pkg/dsp"
	fx "github.com/vmunix/glicol-verb/pkg/framework/dsp"
)

const sampleRate = dsp.SampleRate44k1

func TestLine(t *testing.T) {
	t.Run("Length", func(t *testing.T) {
		l := NewLine(MaxDelaySeconds, sampleRate)
		assert.Equal(t, 88201, l.Len())
	})

	t.Run("IntegerDelay", func(t *testing.T) {
		l := NewLine(0.01, 1000)
		l.Write(1)
		for i := 0; i < 3; i++ {
			l.Write(0)
		}
		assert.Equal(t, float32(1), l.Read(4))
		assert.Equal(t, float32(0), l.Read(3))
	})

	t.Run("FractionalDelay", func(t *testing.T) {
		l := NewLine(0.01, 1000)
		l.Write(1)
		l.Write(0)
		assert.InDelta(t, 0.5, l.Read(1.5), 1e-6)
	})

	t.Run("ResizeClears", func(t *testing.T) {
		l := NewLine(0.01, 1000)
		l.Write(1)
		l.Resize(0.01, 2000)
		assert.Equal(t, 21, l.Len())
		for d := 0.0; d < 21; d++ {
			assert.Equal(t, float32(0), l.Read(d))
		}
	})
}

func TestDelayImpulseTiming(t *testing.T) {
	for _, ms := range []float64{1, 10, 33.3, 100, 250.5, 1000, 2000} {
		d := New(sampleRate)
		d.SetTimeMs(ms)
		d.SetFeedback(0)
		d.SetMix(1)

		delaySamples := ms * sampleRate / 1000
		total := int(delaySamples) + 8

		out := make([]float32, total)
		out[0] = d.Process(dsp.Mono(1)).Left
		for n := 1; n < total; n++ {
			out[n] = d.Process(dsp.StereoSample{}).Left
		}

		peakIdx := 0
		for n, v := range out {
			if v > out[peakIdx] {
				peakIdx = n
			}
		}
		assert.InDelta(t, delaySamples, float64(peakIdx), 1.0, "delay %.1f ms", ms)

		for n := 0; float64(n) < delaySamples-1; n++ {
			require.Less(t, math.Abs(float64(out[n])), 1e-6, "delay %.1f ms sample %d", ms, n)
		}
	}
}

func TestDelayBasic(t *testing.T) {
	d := New(sampleRate)
	d.SetTimeMs(100)
	d.SetFeedback(0)
	d.SetMix(1)

	d.Process(dsp.Mono(1))
	for n := 1; n < 4410; n++ {
		out := d.Process(dsp.StereoSample{})
		require.Less(t, float64(out.Left), 0.01)
	}

	out := d.Process(dsp.StereoSample{})
	assert.Greater(t, out.Left, float32(0.9))
	assert.Greater(t, out.Right, float32(0.9))
}

func TestDelayFeedbackDecays(t *testing.T) {
	const echoes = 6
	d := New(sampleRate)
	d.SetTimeMs(10)
	d.SetFeedback(0.9)
	d.SetMix(1)
	d.SetHighCut(8000)

	period := int(d.DelaySamples())
	out := make([]float32, period*(echoes+1))
	out[0] = d.Process(dsp.Mono(1)).Left
	for n := 1; n < len(out); n++ {
		out[n] = d.Process(dsp.StereoSample{}).Left
	}

	prev := float32(math.MaxFloat32)
	for k := 1; k <= echoes; k++ {
		peak := dsp.Peak(out[k*period-1 : (k+1)*period-1])
		assert.Greater(t, peak, float32(0))
		assert.Less(t, peak, prev, "echo %d", k)
		prev = peak
	}
}

func TestDelayParameters(t *testing.T) {
	t.Run("Clamping", func(t *testing.T) {
		d := New(sampleRate)

		d.SetTimeMs(0)
		assert.InDelta(t, sampleRate/1000, d.DelaySamples(), 1e-9)
		d.SetTimeMs(5000)
		assert.InDelta(t, 2*sampleRate, d.DelaySamples(), 1e-9)

		d.SetFeedback(2)
		assert.Equal(t, float32(MaxFeedback), d.feedback)
		d.SetFeedback(-1)
		assert.Equal(t, float32(0), d.feedback)

		d.SetMix(3)
		assert.Equal(t, float32(1), d.mix)

		d.SetHighCut(50)
		assert.InDelta(t, math.Exp(-2*math.Pi*MinHighCut/sampleRate), d.filter.Coefficient(), 1e-6)
	})

	t.Run("DefaultsPassHalfDry", func(t *testing.T) {
		d := New(sampleRate)
		out := d.Process(dsp.Mono(1))
		assert.InDelta(t, 0.5, out.Left, 1e-6)
	})

	t.Run("SampleRateChange", func(t *testing.T) {
		d := New(sampleRate)
		d.SetTimeMs(100)

		d.SetSampleRate(sampleRate + 0.05)
		assert.Equal(t, 88201, d.BufferLen())

		d.SetSampleRate(dsp.SampleRate48k)
		assert.Equal(t, 96001, d.BufferLen())
		assert.InDelta(t, 4800, d.DelaySamples(), 1e-9)
	})

	t.Run("Reset", func(t *testing.T) {
		d := New(sampleRate)
		d.SetTimeMs(1)
		d.SetMix(1)
		d.Process(dsp.Mono(1))
		d.Reset()
		for n := 0; n < 100; n++ {
			assert.Equal(t, float32(0), d.Process(dsp.StereoSample{}).Left)
		}
	})
}

func TestDelayIgnoresNaN(t *testing.T) {
	nan := math.NaN()
	setters := map[string]func(d *Delay){
		"TimeMs":   func(d *Delay) { d.SetTimeMs(nan) },
		"Feedback": func(d *Delay) { d.SetFeedback(float32(nan)) },
		"Mix":      func(d *Delay) { d.SetMix(float32(nan)) },
		"HighCut":  func(d *Delay) { d.SetHighCut(nan) },
	}
	for name, set := range setters {
		t.Run(name, func(t *testing.T) {
			d := New(sampleRate)
			d.SetTimeMs(5)
			d.SetFeedback(0.5)
			d.SetMix(0.5)
			d.SetHighCut(8000)
			coeff := d.filter.Coefficient()

			set(d)
			assert.InDelta(t, 5*sampleRate/1000, d.DelaySamples(), 1e-9)
			assert.Equal(t, float32(0.5), d.feedback)
			assert.Equal(t, float32(0.5), d.mix)
			assert.Equal(t, coeff, d.filter.Coefficient())

			out := make([]float32, 2048)
			require.NotPanics(t, func() {
				for n := range out {
					x := float32(math.Sin(2 * math.Pi * 440 * float64(n) / sampleRate))
					out[n] = d.Process(dsp.Mono(x)).Left
				}
			})
			assert.True(t, dsp.IsFinite(out))
			assert.Greater(t, dsp.Peak(out), float32(0))
		})
	}
}

func TestDelayBypassIsIdentity(t *testing.T) {
	newDelay := func() *Delay {
		d := New(sampleRate)
		d.SetTimeMs(3)
		d.SetFeedback(0.7)
		d.SetMix(0.6)
		return d
	}
	signal := func(n int) dsp.StereoSample {
		return dsp.StereoSample{
			Left:  float32(math.Sin(2 * math.Pi * 330 * float64(n) / sampleRate)),
			Right: float32(math.Cos(2 * math.Pi * 220 * float64(n) / sampleRate)),
		}
	}

	d, ref := newDelay(), newDelay()
	for n := 0; n < 1000; n++ {
		d.Process(signal(n))
		ref.Process(signal(n))
	}

	d.SetBypassed(true)
	for n := 0; n < 500; n++ {
		in := dsp.StereoSample{Left: float32(n) * 0.001, Right: -float32(n) * 0.002}
		require.Equal(t, in, fx.ProcessWithBypass(d, in))
	}

	d.SetBypassed(false)
	for n := 1000; n < 2000; n++ {
		require.Equal(t, ref.Process(signal(n)), fx.ProcessWithBypass(d, signal(n)), "sample %d", n)
	}
}

func BenchmarkDelay(b *testing.B) {
	d := New(sampleRate)
	d.SetTimeMs(250)
	d.SetFeedback(0.5)
	in := dsp.Mono(0.1)
	for i := 0; i < b.N; i++ {
		in = d.Process(in)
	}
}
