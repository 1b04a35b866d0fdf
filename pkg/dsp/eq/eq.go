// Package eq implements a three band equalizer: low shelf, mid peak and
// high shelf biquads in series.
package eq

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/filter"
)

// Parameter limits
const (
	MinLowFreq  = 20.0
	MaxLowFreq  = 500.0
	MinMidFreq  = 200.0
	MaxMidFreq  = 8000.0
	MinMidQ     = 0.5
	MaxMidQ     = 4.0
	MinHighFreq = 2000.0
	MaxHighFreq = 20000.0
	MaxGainDB   = 12.0

	DefaultLowFreq  = 200.0
	DefaultMidFreq  = 1000.0
	DefaultMidQ     = 1.0
	DefaultHighFreq = 4000.0
)

// EQ is a stereo-linked three band equalizer
type EQ struct {
	low, mid, high                 filter.State
	lowCoeffs, midCoeffs, hiCoeffs filter.Coefficients

	lowFreq  float64
	lowGain  float64
	midFreq  float64
	midGain  float64
	midQ     float64
	highFreq float64
	highGain float64

	sampleRate float64
	bypassed   bool
	dirty      bool
}

// New creates an EQ with flat defaults
func New(sampleRate float64) *EQ {
	e := &EQ{
		lowCoeffs:  filter.Unity(),
		midCoeffs:  filter.Unity(),
		hiCoeffs:   filter.Unity(),
		lowFreq:    DefaultLowFreq,
		midFreq:    DefaultMidFreq,
		midQ:       DefaultMidQ,
		highFreq:   DefaultHighFreq,
		sampleRate: sampleRate,
		dirty:      true,
	}
	e.updateCoefficients()
	return e
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// set stores v into *field and marks the coefficients dirty when it moved
// by more than the parameter epsilon
func (e *EQ) set(field *float64, v float64) {
	if math.Abs(*field-v) > dsp.ParamEpsilon {
		*field = v
		e.dirty = true
	}
}

// SetLowFreq sets the low shelf frequency (20-500 Hz)
func (e *EQ) SetLowFreq(hz float64) { e.set(&e.lowFreq, clamp(hz, MinLowFreq, MaxLowFreq)) }

// SetLowGain sets the low shelf gain (-12 to +12 dB)
func (e *EQ) SetLowGain(db float64) { e.set(&e.lowGain, clamp(db, -MaxGainDB, MaxGainDB)) }

// SetMidFreq sets the mid peak frequency (200-8000 Hz)
func (e *EQ) SetMidFreq(hz float64) { e.set(&e.midFreq, clamp(hz, MinMidFreq, MaxMidFreq)) }

// SetMidGain sets the mid peak gain (-12 to +12 dB)
func (e *EQ) SetMidGain(db float64) { e.set(&e.midGain, clamp(db, -MaxGainDB, MaxGainDB)) }

// SetMidQ sets the mid peak Q (0.5-4)
func (e *EQ) SetMidQ(q float64) { e.set(&e.midQ, clamp(q, MinMidQ, MaxMidQ)) }

// SetHighFreq sets the high shelf frequency (2000-20000 Hz)
func (e *EQ) SetHighFreq(hz float64) { e.set(&e.highFreq, clamp(hz, MinHighFreq, MaxHighFreq)) }

// SetHighGain sets the high shelf gain (-12 to +12 dB)
func (e *EQ) SetHighGain(db float64) { e.set(&e.highGain, clamp(db, -MaxGainDB, MaxGainDB)) }

// Settings returns the current band parameters
func (e *EQ) Settings() (lowFreq, lowGain, midFreq, midGain, midQ, highFreq, highGain float64) {
	return e.lowFreq, e.lowGain, e.midFreq, e.midGain, e.midQ, e.highFreq, e.highGain
}

// Dirty reports whether coefficients will be recomputed on the next Process
func (e *EQ) Dirty() bool {
	return e.dirty
}

// Coefficients returns the current low, mid and high coefficients
func (e *EQ) Coefficients() (low, mid, high filter.Coefficients) {
	e.updateCoefficients()
	return e.lowCoeffs, e.midCoeffs, e.hiCoeffs
}

func (e *EQ) updateCoefficients() {
	if !e.dirty {
		return
	}
	e.lowCoeffs = filter.LowShelf(e.sampleRate, e.lowFreq, e.lowGain, filter.ShelfSlope)
	e.midCoeffs = filter.Peak(e.sampleRate, e.midFreq, e.midGain, e.midQ)
	e.hiCoeffs = filter.HighShelf(e.sampleRate, e.highFreq, e.highGain, filter.ShelfSlope)
	e.dirty = false
}

// Process runs one stereo frame through low, mid and high in series
func (e *EQ) Process(in dsp.StereoSample) dsp.StereoSample {
	e.updateCoefficients()

	out := e.low.Process(in, &e.lowCoeffs)
	out = e.mid.Process(out, &e.midCoeffs)
	return e.high.Process(out, &e.hiCoeffs)
}

// SetSampleRate marks the coefficients dirty and resets the filters when the
// rate changes by more than 0.1 Hz
func (e *EQ) SetSampleRate(sampleRate float64) {
	if math.Abs(sampleRate-e.sampleRate) > dsp.SampleRateEpsilon {
		e.sampleRate = sampleRate
		e.dirty = true
		e.Reset()
	}
}

// Reset clears the filter histories
func (e *EQ) Reset() {
	e.low.Reset()
	e.mid.Reset()
	e.high.Reset()
}

// Bypassed reports the bypass flag
func (e *EQ) Bypassed() bool {
	return e.bypassed
}

// SetBypassed sets the bypass flag
func (e *EQ) SetBypassed(bypassed bool) {
	e.bypassed = bypassed
}
