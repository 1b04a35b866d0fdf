package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/eq"
)

const sampleRate = dsp.SampleRate44k1

func TestFFT(t *testing.T) {
	t.Run("SinePeak", func(t *testing.T) {
		const size = 4096
		f := NewFFT(size, HannWindow)

		freq := f.BinFrequency(100, sampleRate)
		input := make([]float64, size)
		for i := range input {
			input[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		}

		magnitude, phase := f.Forward(input)
		require.Len(t, magnitude, size/2+1)
		require.Len(t, phase, size/2+1)

		peak := 0
		for i, m := range magnitude {
			if m > magnitude[peak] {
				peak = i
			}
		}
		assert.Equal(t, 100, peak)
		assert.Equal(t, 100, f.Bin(freq, sampleRate))
	})

	t.Run("ZeroPadding", func(t *testing.T) {
		f := NewFFT(64, RectangularWindow)
		magnitude, _ := f.Forward([]float64{1})
		for _, m := range magnitude {
			assert.InDelta(t, 1.0, m, 1e-12)
		}
		db := f.MagnitudeDB()
		assert.InDelta(t, 0.0, db[0], 1e-9)
	})

	t.Run("BinClamp", func(t *testing.T) {
		f := NewFFT(1024, RectangularWindow)
		assert.Equal(t, 0, f.Bin(-10, sampleRate))
		assert.Equal(t, 512, f.Bin(sampleRate, sampleRate))
	})
}

func TestMeasureResponse(t *testing.T) {
	t.Run("FlatEQ", func(t *testing.T) {
		e := eq.New(sampleRate)
		resp := MeasureResponse(e.Process, sampleRate, 8192)
		for _, f := range []float64{30, 200, 1000, 4000, 15000} {
			assert.InDelta(t, 0.0, resp.GainDBAt(f), 0.01, "%v Hz", f)
		}
	})

	t.Run("LowShelfBoost", func(t *testing.T) {
		e := eq.New(sampleRate)
		e.SetLowGain(6)
		resp := MeasureResponse(e.Process, sampleRate, 16384)
		assert.InDelta(t, 6.0, resp.GainDBAt(30), 0.5)
		assert.InDelta(t, 0.0, resp.GainDBAt(10000), 0.2)
	})

	t.Run("MidPeak", func(t *testing.T) {
		e := eq.New(sampleRate)
		e.SetMidGain(-9)
		e.SetMidQ(2)
		resp := MeasureResponse(e.Process, sampleRate, 16384)
		assert.InDelta(t, -9.0, resp.GainDBAt(1000), 0.3)
		assert.Greater(t, resp.Bins(), 8000)
		assert.InDelta(t, sampleRate/2, resp.Frequency(resp.Bins()-1), 1e-6)
	})
}

func TestLevelMeter(t *testing.T) {
	// Four samples per second so one block is one second of audio.
	m := NewLevelMeter(4, 1)
	l := m.Levels()
	assert.Equal(t, math.Inf(-1), l.Peak[0])
	assert.Equal(t, math.Inf(-1), l.RMS[1])

	m.Process([]float32{0.1, -0.5, 0.25, 0}, []float32{1, -1, 1, -1})
	l = m.Levels()
	assert.InDelta(t, -6.0206, l.Peak[0], 1e-3)
	assert.InDelta(t, -6.0206, l.MaxPeak[0], 1e-3)
	assert.InDelta(t, 0, l.RMS[1], 1e-9)

	t.Run("Decay", func(t *testing.T) {
		m.Process(make([]float32, 4), make([]float32, 4))
		l := m.Levels()
		assert.InDelta(t, -6.0206-DefaultPeakDecay, l.Peak[0], 1e-3)
		assert.InDelta(t, -6.0206, l.MaxPeak[0], 1e-3)
		assert.Equal(t, math.Inf(-1), l.RMS[1])
	})

	t.Run("Reset", func(t *testing.T) {
		m.Reset()
		l := m.Levels()
		assert.Equal(t, math.Inf(-1), l.MaxPeak[1])
		assert.Equal(t, math.Inf(-1), l.RMS[0])
	})
}

func TestLevelMeterPartialWindow(t *testing.T) {
	m := NewLevelMeter(sampleRate, 1)
	m.SetDecay(0)
	m.Process([]float32{0.5, 0.5}, []float32{0, 0})
	l := m.Levels()
	assert.InDelta(t, -6.0206, l.RMS[0], 1e-3)
	assert.InDelta(t, -6.0206, l.Peak[0], 1e-3)
	assert.Contains(t, l.String(), "max -6.0/-Inf dBFS")
}
