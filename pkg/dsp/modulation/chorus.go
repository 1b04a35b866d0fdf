package modulation

import "github.com/vmunix/glicol-verb/pkg/dsp"

// Chorus defaults and limits in milliseconds.
const (
	ChorusDelayMs    = 20.0
	DefaultDepthMs   = 2.0
	MaxDepthMs       = 10.0
	DefaultChorusMix = 0.5
)

// Chorus is a two-voice mono-to-stereo chorus. The voices read one shared
// delay line with LFOs a half cycle apart, one per side.
type Chorus struct {
	sampleRate float64
	line       []float32
	write      int
	lfoL, lfoR *LFO
	depth      float64
	mix        float32
}

// NewChorus creates a chorus at 1 Hz with the default depth and mix.
func NewChorus(sampleRate float64) *Chorus {
	size := int((ChorusDelayMs+MaxDepthMs)*sampleRate/1000) + 2
	c := &Chorus{
		sampleRate: sampleRate,
		line:       make([]float32, size),
		lfoL:       NewLFO(sampleRate),
		lfoR:       NewLFO(sampleRate),
		depth:      DefaultDepthMs,
		mix:        DefaultChorusMix,
	}
	c.lfoR.SetPhase(0.5)
	return c
}

// SetRate sets the LFO rate in Hz.
func (c *Chorus) SetRate(hz float64) {
	c.lfoL.SetFrequency(hz)
	c.lfoR.SetFrequency(hz)
}

// Rate returns the LFO rate in Hz.
func (c *Chorus) Rate() float64 { return c.lfoL.Frequency() }

// SetShape sets the sweep waveform of both voices.
func (c *Chorus) SetShape(s Shape) {
	c.lfoL.SetShape(s)
	c.lfoR.SetShape(s)
}

// SetDepth sets the delay sweep in ms, clamped to [0, MaxDepthMs].
func (c *Chorus) SetDepth(ms float64) {
	c.depth = min(max(ms, 0), MaxDepthMs)
}

// SetMix sets the dry/wet mix (0 = dry, 1 = wet).
func (c *Chorus) SetMix(mix float64) {
	c.mix = float32(min(max(mix, 0), 1))
}

// Process writes one input sample and returns the stereo blend.
func (c *Chorus) Process(input float32) dsp.StereoSample {
	c.line[c.write] = input
	wet := dsp.NewStereo(c.tap(c.lfoL.Next()), c.tap(c.lfoR.Next()))

	c.write++
	if c.write == len(c.line) {
		c.write = 0
	}
	return dsp.Mono(input).Mix(wet, c.mix)
}

// tap reads the line (ChorusDelayMs + depth*mod) ms behind the write head
// with linear interpolation.
func (c *Chorus) tap(mod float64) float32 {
	delay := (ChorusDelayMs + c.depth*mod) * c.sampleRate / 1000
	delay = min(max(delay, 1), float64(len(c.line)-2))

	pos := float64(c.write) - delay
	if pos < 0 {
		pos += float64(len(c.line))
	}
	i := int(pos)
	frac := float32(pos - float64(i))
	j := i + 1
	if j == len(c.line) {
		j = 0
	}
	return c.line[i]*(1-frac) + c.line[j]*frac
}

// Reset clears the line and rewinds the LFOs.
func (c *Chorus) Reset() {
	clear(c.line)
	c.write = 0
	c.lfoL.Reset()
	c.lfoR.Reset()
	c.lfoR.SetPhase(0.5)
}
