package filter

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

// OnePole is a stereo one-pole lowpass: y[n] = (1-c)*x[n] + c*y[n-1].
type OnePole struct {
	coeff float32
	z1L   float32
	z1R   float32
}

// NewOnePole creates a one-pole with coefficient 0.5 until SetCutoff is called.
func NewOnePole() *OnePole {
	return &OnePole{coeff: 0.5}
}

// SetCutoff sets c = exp(-2*pi*fc/fs); fc/fs is clamped to [0, 0.5].
func (p *OnePole) SetCutoff(frequency, sampleRate float64) {
	normalized := frequency / sampleRate
	if normalized < 0 {
		normalized = 0
	} else if normalized > 0.5 {
		normalized = 0.5
	}
	p.coeff = float32(math.Exp(-dsp.TwoPi * normalized))
}

// Coefficient returns the current feedback coefficient.
func (p *OnePole) Coefficient() float32 {
	return p.coeff
}

// Process filters one stereo frame
func (p *OnePole) Process(in dsp.StereoSample) dsp.StereoSample {
	gain := 1 - p.coeff
	p.z1L = gain*in.Left + p.coeff*p.z1L
	p.z1R = gain*in.Right + p.coeff*p.z1R
	return dsp.StereoSample{Left: p.z1L, Right: p.z1R}
}

// Reset clears the filter memory
func (p *OnePole) Reset() {
	p.z1L = 0
	p.z1R = 0
}
