package param

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothedParameter(t *testing.T) {
	t.Run("LinearMix", func(t *testing.T) {
		p := MixParameter(1, "Dry/Wet", 1).Build()
		sp := NewSmoothedParameter(p, LinearSmoothing, 10, nil)
		sp.UpdateSampleRate(1000) // 10 samples
		require.Equal(t, 1.0, sp.Current())

		p.SetPlainValue(0)
		sp.Sync()
		require.True(t, sp.IsSmoothing())

		for i := 0; i < 10; i++ {
			assert.InDelta(t, 1-0.1*float64(i+1), sp.Next(), 1e-9)
		}
		assert.False(t, sp.IsSmoothing())
		assert.Equal(t, 0.0, sp.Next())
	})

	t.Run("LogarithmicGain", func(t *testing.T) {
		p := GainParameter(2, "Input Gain", 30).Build()
		sp := NewSmoothedParameter(p, LogarithmicSmoothing, 50, dbToGain)
		sp.UpdateSampleRate(1000) // 50 samples
		require.InDelta(t, 1.0, sp.Current(), 1e-12)

		p.SetPlainValue(-20)
		sp.Sync()

		prev := sp.Current()
		ratio := 0.0
		for i := 0; i < 49; i++ {
			v := sp.Next()
			require.Less(t, v, prev)
			require.Greater(t, v, 0.1)
			if i > 0 {
				// constant ratio between samples
				require.InDelta(t, ratio, v/prev, 1e-9)
			}
			ratio = v / prev
			prev = v
		}
		assert.InDelta(t, 0.1, sp.Next(), 1e-9)
		assert.False(t, sp.IsSmoothing())
	})

	t.Run("RetargetMidRamp", func(t *testing.T) {
		p := KnobParameter(3, "knob").Build()
		sp := NewSmoothedParameter(p, LinearSmoothing, 4, nil)
		sp.UpdateSampleRate(1000)

		p.SetPlainValue(1)
		sp.Sync()
		sp.Next()
		sp.Next()
		mid := sp.Current()
		assert.InDelta(t, 0.75, mid, 1e-9)

		p.SetPlainValue(0)
		sp.Sync()
		for i := 0; i < 3; i++ {
			assert.Less(t, sp.Next(), mid)
		}
		assert.Equal(t, 0.0, sp.Next())
	})

	t.Run("SyncWithoutChange", func(t *testing.T) {
		p := KnobParameter(3, "knob1").Build()
		sp := NewSmoothedParameter(p, LinearSmoothing, 10, nil)
		sp.UpdateSampleRate(44100)
		sp.Sync()
		assert.False(t, sp.IsSmoothing())
		assert.Equal(t, 0.5, sp.Next())
	})

	t.Run("DisableSmoothing", func(t *testing.T) {
		p := KnobParameter(4, "knob2").Build()
		sp := NewSmoothedParameter(p, LinearSmoothing, 10, nil)
		sp.UpdateSampleRate(44100)
		sp.SetSmoothing(false)

		p.SetPlainValue(1)
		sp.Sync()
		assert.Equal(t, 1.0, sp.Next())
	})

	t.Run("UpdateSampleRate", func(t *testing.T) {
		p := KnobParameter(5, "knob3").Build()
		sp := NewSmoothedParameter(p, LinearSmoothing, 20, nil)
		sp.UpdateSampleRate(48000)
		assert.Equal(t, 960, sp.RampLength())

		sp.UpdateSampleRate(0)
		assert.Equal(t, 1, sp.RampLength())
	})
}

func dbToGain(db float64) float64 {
	return math.Pow(10, db/20)
}

func BenchmarkSmoothedParameter(b *testing.B) {
	p := GainParameter(1, "gain", 30).Build()
	sp := NewSmoothedParameter(p, LogarithmicSmoothing, 50, dbToGain)
	sp.UpdateSampleRate(48000)

	for i := 0; i < b.N; i++ {
		if i%512 == 0 {
			p.SetPlainValue(float64(i%60) - 30)
			sp.Sync()
		}
		_ = sp.Next()
	}
}
