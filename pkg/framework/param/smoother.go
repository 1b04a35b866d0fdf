package param

import "math"

// Smoothing selects the curve a ramp follows.
type Smoothing int

const (
	// LinearSmoothing ramps at a constant rate.
	LinearSmoothing Smoothing = iota
	// LogarithmicSmoothing ramps at a constant ratio, which sounds even for
	// gains and frequencies.
	LogarithmicSmoothing
)

// logFloor keeps logarithmic ramps away from log(0).
const logFloor = 1e-4

// SmoothedParameter follows an atomic Parameter on the audio thread. The
// control thread only ever writes the Parameter; the audio thread calls
// Sync once per block and Next once per sample. A ramp always reaches its
// target in the configured time, however far it has to travel.
type SmoothedParameter struct {
	*Parameter
	curve     Smoothing
	timeMs    float64
	transform func(plain float64) float64
	enabled   bool

	length  int
	left    int
	current float64
	target  float64
	pos     float64
	step    float64
}

// NewSmoothedParameter smooths p over timeMs. transform maps the plain
// value to the smoothed quantity, for example dB to linear gain; nil means
// identity.
func NewSmoothedParameter(p *Parameter, curve Smoothing, timeMs float64, transform func(float64) float64) *SmoothedParameter {
	if transform == nil {
		transform = func(v float64) float64 { return v }
	}
	sp := &SmoothedParameter{
		Parameter: p,
		curve:     curve,
		timeMs:    timeMs,
		transform: transform,
		enabled:   true,
		length:    1,
	}
	sp.Snap()
	return sp
}

func (sp *SmoothedParameter) warp(v float64) float64 {
	if sp.curve == LogarithmicSmoothing {
		return math.Log(math.Max(v, logFloor))
	}
	return v
}

func (sp *SmoothedParameter) unwarp(v float64) float64 {
	if sp.curve == LogarithmicSmoothing {
		return math.Exp(v)
	}
	return v
}

// Sync picks up the latest parameter value as the ramp target.
func (sp *SmoothedParameter) Sync() {
	target := sp.transform(sp.GetPlainValue())
	if !sp.enabled {
		sp.current, sp.target, sp.left = target, target, 0
		return
	}
	if target == sp.target {
		return
	}
	sp.target = target
	sp.left = sp.length
	sp.pos = sp.warp(sp.current)
	sp.step = (sp.warp(target) - sp.pos) / float64(sp.length)
}

// Next advances one sample and returns the smoothed value.
func (sp *SmoothedParameter) Next() float64 {
	if sp.left == 0 {
		return sp.current
	}
	sp.left--
	if sp.left == 0 {
		sp.current = sp.target
	} else {
		sp.pos += sp.step
		sp.current = sp.unwarp(sp.pos)
	}
	return sp.current
}

// Current returns the smoothed value without advancing.
func (sp *SmoothedParameter) Current() float64 { return sp.current }

// IsSmoothing reports whether a ramp is in progress.
func (sp *SmoothedParameter) IsSmoothing() bool { return sp.left > 0 }

// Snap jumps to the parameter's value, dropping any ramp.
func (sp *SmoothedParameter) Snap() {
	sp.target = sp.transform(sp.GetPlainValue())
	sp.current = sp.target
	sp.left = 0
}

// SetSmoothing enables or disables smoothing. Disabling snaps.
func (sp *SmoothedParameter) SetSmoothing(enabled bool) {
	sp.enabled = enabled
	if !enabled {
		sp.Snap()
	}
}

// UpdateSampleRate converts the smoothing time to a ramp length and snaps.
func (sp *SmoothedParameter) UpdateSampleRate(sampleRate float64) {
	sp.length = max(int(math.Round(sampleRate*sp.timeMs/1000)), 1)
	sp.Snap()
}

// RampLength returns the ramp length in samples.
func (sp *SmoothedParameter) RampLength() int { return sp.length }
