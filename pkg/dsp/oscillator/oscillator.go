// Package oscillator provides the test-signal sources used to exercise the
// signal core: a sine tone and a plucked string.
package oscillator

import "math"

// Sine is a phase-accumulator sine generator. Phase is kept in cycles so
// it wraps exactly.
type Sine struct {
	sampleRate float64
	freq       float64
	phase      float64
}

// New creates a 440 Hz sine.
func New(sampleRate float64) *Sine {
	return &Sine{sampleRate: sampleRate, freq: 440}
}

func (s *Sine) SetFrequency(hz float64) { s.freq = hz }
func (s *Sine) Frequency() float64      { return s.freq }

// SetPhase jumps to phase cycles, keeping the fractional part.
func (s *Sine) SetPhase(phase float64) {
	s.phase = phase - math.Floor(phase)
}

func (s *Sine) Reset() { s.phase = 0 }

// Next returns the current sample and advances one sample period.
func (s *Sine) Next() float32 {
	v := math.Sin(2 * math.Pi * s.phase)
	s.phase += s.freq / s.sampleRate
	s.phase -= math.Floor(s.phase)
	return float32(v)
}

// Fill writes amplitude-scaled samples into buf.
func (s *Sine) Fill(buf []float32, amplitude float32) {
	for i := range buf {
		buf[i] = s.Next() * amplitude
	}
}
