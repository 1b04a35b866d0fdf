// Package delay provides delay line implementations for audio effects
package delay

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/filter"
)

// Parameter limits
const (
	MaxDelaySeconds = 2.0
	MinTimeMs       = 1.0
	MaxTimeMs       = MaxDelaySeconds * 1000.0
	MaxFeedback     = 0.95
	MinHighCut      = 1000.0
	MaxHighCut      = 20000.0

	DefaultMix     = 0.5
	DefaultHighCut = 12000.0
)

// Line implements a basic delay line with linear interpolation
type Line struct {
	buffer   []float32
	writePos int
}

// NewLine creates a delay line holding maxDelaySeconds of audio plus one sample
func NewLine(maxDelaySeconds, sampleRate float64) *Line {
	return &Line{buffer: make([]float32, int(maxDelaySeconds*sampleRate)+1)}
}

// Len returns the buffer length in samples
func (l *Line) Len() int {
	return len(l.buffer)
}

// Resize reallocates the buffer and clears it. Not real-time safe.
func (l *Line) Resize(maxDelaySeconds, sampleRate float64) {
	size := int(maxDelaySeconds*sampleRate) + 1
	if size != len(l.buffer) {
		l.buffer = make([]float32, size)
	}
	l.Reset()
}

// Reset clears the delay buffer
func (l *Line) Reset() {
	dsp.Clear(l.buffer)
	l.writePos = 0
}

// Write stores a sample at the write cursor and advances it
func (l *Line) Write(sample float32) {
	l.buffer[l.writePos] = sample
	l.writePos++
	if l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
}

// Read gets a delayed sample (delay in samples) using linear interpolation
// between the two neighbours of writePos - delaySamples.
func (l *Line) Read(delaySamples float64) float32 {
	size := len(l.buffer)
	readPos := float64(l.writePos) - delaySamples
	if readPos < 0 {
		readPos += float64(size)
	}

	floor := math.Floor(readPos)
	i0 := int(floor) % size
	i1 := (i0 + 1) % size
	frac := float32(readPos - floor)

	return l.buffer[i0]*(1.0-frac) + l.buffer[i1]*frac
}

// Delay is a stereo feedback delay with a one-pole high-cut on the
// feedback path. The dry path is never filtered.
type Delay struct {
	left  *Line
	right *Line

	timeMs       float64
	delaySamples float64
	feedback     float32
	mix          float32
	highCut      float64

	sampleRate float64
	bypassed   bool
	filter     *filter.OnePole
}

// New creates a delay for the given sample rate. The delay time is zero
// samples until SetTimeMs is called.
func New(sampleRate float64) *Delay {
	return &Delay{
		left:       NewLine(MaxDelaySeconds, sampleRate),
		right:      NewLine(MaxDelaySeconds, sampleRate),
		mix:        DefaultMix,
		highCut:    DefaultHighCut,
		sampleRate: sampleRate,
		filter:     filter.NewOnePole(),
	}
}

// SetTimeMs sets the delay time, clamped to [1, 2000] ms. NaN is ignored,
// as it is by every setter below.
func (d *Delay) SetTimeMs(ms float64) {
	if math.IsNaN(ms) {
		return
	}
	ms = math.Max(MinTimeMs, math.Min(MaxTimeMs, ms))
	d.timeMs = ms
	d.delaySamples = ms * d.sampleRate / 1000.0
}

// SetFeedback sets the feedback amount, clamped to [0, 0.95]
func (d *Delay) SetFeedback(feedback float32) {
	if isNaN(feedback) {
		return
	}
	d.feedback = dsp.Clamp(feedback, 0, MaxFeedback)
}

// SetMix sets the wet amount, clamped to [0, 1]
func (d *Delay) SetMix(mix float32) {
	if isNaN(mix) {
		return
	}
	d.mix = dsp.Clamp(mix, 0, 1)
}

// SetHighCut sets the feedback high-cut, clamped to [1000, 20000] Hz.
// The filter coefficient is recomputed immediately.
func (d *Delay) SetHighCut(frequency float64) {
	if math.IsNaN(frequency) {
		return
	}
	d.highCut = math.Max(MinHighCut, math.Min(MaxHighCut, frequency))
	d.filter.SetCutoff(d.highCut, d.sampleRate)
}

func isNaN(v float32) bool { return v != v }

// DelaySamples returns the current delay time in samples
func (d *Delay) DelaySamples() float64 {
	return d.delaySamples
}

// BufferLen returns the per-channel buffer length
func (d *Delay) BufferLen() int {
	return d.left.Len()
}

// Process runs one stereo frame through the delay
func (d *Delay) Process(in dsp.StereoSample) dsp.StereoSample {
	delayed := dsp.StereoSample{
		Left:  d.left.Read(d.delaySamples),
		Right: d.right.Read(d.delaySamples),
	}

	filtered := d.filter.Process(delayed)

	d.left.Write(in.Left + filtered.Left*d.feedback)
	d.right.Write(in.Right + filtered.Right*d.feedback)

	return in.Mix(delayed, d.mix)
}

// SetSampleRate reallocates the buffers when the rate changes by more
// than 0.1 Hz and rescales the delay time from the stored milliseconds.
func (d *Delay) SetSampleRate(sampleRate float64) {
	if math.Abs(sampleRate-d.sampleRate) <= dsp.SampleRateEpsilon {
		return
	}
	d.sampleRate = sampleRate
	d.left.Resize(MaxDelaySeconds, sampleRate)
	d.right.Resize(MaxDelaySeconds, sampleRate)
	d.filter.SetCutoff(d.highCut, sampleRate)
	if d.timeMs > 0 {
		d.delaySamples = d.timeMs * sampleRate / 1000.0
	}
	d.Reset()
}

// Reset zeroes both buffers, the cursor and the filter memory
func (d *Delay) Reset() {
	d.left.Reset()
	d.right.Reset()
	d.filter.Reset()
}

// Bypassed reports the bypass flag
func (d *Delay) Bypassed() bool {
	return d.bypassed
}

// SetBypassed sets the bypass flag
func (d *Delay) SetBypassed(bypassed bool) {
	d.bypassed = bypassed
}
