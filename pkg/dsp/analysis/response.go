package analysis

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

// Response is the magnitude response of a processor measured from its
// impulse response.
type Response struct {
	sampleRate float64
	fft        *FFT
	magnitude  []float64
}

// MeasureResponse feeds a unit impulse followed by size-1 zeros through
// process and transforms the left output. The resolution is
// sampleRate/size Hz per bin, so size must cover the impulse response tail.
func MeasureResponse(process func(dsp.StereoSample) dsp.StereoSample, sampleRate float64, size int) *Response {
	impulse := make([]float64, size)
	impulse[0] = float64(process(dsp.Mono(1)).Left)
	for i := 1; i < size; i++ {
		impulse[i] = float64(process(dsp.StereoSample{}).Left)
	}

	f := NewFFT(size, RectangularWindow)
	magnitude, _ := f.Forward(impulse)

	return &Response{
		sampleRate: sampleRate,
		fft:        f,
		magnitude:  append([]float64(nil), magnitude...),
	}
}

// GainAt returns the linear gain at freq, interpolated between bins
func (r *Response) GainAt(freq float64) float64 {
	pos := freq * float64(r.fft.Size()) / r.sampleRate
	i := int(math.Floor(pos))
	if i < 0 {
		return r.magnitude[0]
	}
	if i >= len(r.magnitude)-1 {
		return r.magnitude[len(r.magnitude)-1]
	}
	frac := pos - float64(i)
	return r.magnitude[i]*(1-frac) + r.magnitude[i+1]*frac
}

// GainDBAt returns the gain at freq in decibels
func (r *Response) GainDBAt(freq float64) float64 {
	return dsp.GainToDb(r.GainAt(freq))
}

// Bins returns the number of magnitude bins
func (r *Response) Bins() int {
	return len(r.magnitude)
}

// Frequency returns the center frequency of bin in Hz
func (r *Response) Frequency(bin int) float64 {
	return r.fft.BinFrequency(bin, r.sampleRate)
}
