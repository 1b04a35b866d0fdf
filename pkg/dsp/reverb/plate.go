package reverb

import "github.com/vmunix/glicol-verb/pkg/dsp"

// Freeverb tuning, in samples at 44.1 kHz.
const (
	numCombs     = 8
	numAllpasses = 4
	stereoSpread = 23
	inputGain    = 0.015
	scaleDamping = 0.4
	scaleRoom    = 0.28
	offsetRoom   = 0.7
	tuningRate   = 44100.0

	// DefaultSize and DefaultDamping give a medium plate.
	DefaultSize    = 0.5
	DefaultDamping = 0.5
)

var (
	combTuning    = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTuning = [numAllpasses]int{556, 441, 341, 225}
)

// Plate is a Freeverb network: eight parallel damped combs into four series
// allpasses per side, with the right side detuned for width. It takes mono
// input and returns the wet stereo signal only.
type Plate struct {
	combL, combR       [numCombs]*comb
	allpassL, allpassR [numAllpasses]*allpass

	size    float64
	damping float64
}

// NewPlate creates a plate with delay lengths scaled to sampleRate.
func NewPlate(sampleRate float64) *Plate {
	scale := sampleRate / tuningRate
	p := &Plate{}
	for i, n := range combTuning {
		p.combL[i] = newComb(int(float64(n) * scale))
		p.combR[i] = newComb(int(float64(n+stereoSpread) * scale))
	}
	for i, n := range allpassTuning {
		p.allpassL[i] = newAllpass(int(float64(n) * scale))
		p.allpassR[i] = newAllpass(int(float64(n+stereoSpread) * scale))
	}
	p.Set(DefaultSize, DefaultDamping)
	return p
}

// Set sets room size and high-frequency damping, both clamped to [0, 1].
func (p *Plate) Set(size, damping float64) {
	p.size = min(max(size, 0), 1)
	p.damping = min(max(damping, 0), 1)

	feedback := float32(p.size*scaleRoom + offsetRoom)
	damp := float32(p.damping * scaleDamping)
	for i := range p.combL {
		p.combL[i].set(feedback, damp)
		p.combR[i].set(feedback, damp)
	}
}

// Size returns the room size.
func (p *Plate) Size() float64 { return p.size }

// Damping returns the damping amount.
func (p *Plate) Damping() float64 { return p.damping }

// Process runs one input sample through the network.
func (p *Plate) Process(input float32) dsp.StereoSample {
	in := input * inputGain

	var l, r float32
	for i := range p.combL {
		l += p.combL[i].process(in)
		r += p.combR[i].process(in)
	}
	for i := range p.allpassL {
		l = p.allpassL[i].process(l)
		r = p.allpassR[i].process(r)
	}
	return dsp.NewStereo(l, r)
}

// Reset clears every delay line.
func (p *Plate) Reset() {
	for i := range p.combL {
		p.combL[i].reset()
		p.combR[i].reset()
	}
	for i := range p.allpassL {
		p.allpassL[i].reset()
		p.allpassR[i].reset()
	}
}
