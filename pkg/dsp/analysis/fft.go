package analysis

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Window selects the taper applied before a transform.
type Window int

const (
	RectangularWindow Window = iota
	HannWindow
)

// silenceDB stands in for the level of an empty bin.
const silenceDB = -120.0

// FFT is a windowed real transform of fixed size. Output slices are owned
// by the FFT and overwritten by the next Forward.
type FFT struct {
	size      int
	taper     []float64
	work      []float64
	coeffs    []complex128
	re, im    []float64
	magnitude []float64
	phase     []float64
	plan      *fourier.FFT
}

// NewFFT prepares a transform of size samples.
func NewFFT(size int, window Window) *FFT {
	bins := size/2 + 1
	f := &FFT{
		size:      size,
		taper:     make([]float64, size),
		work:      make([]float64, size),
		coeffs:    make([]complex128, bins),
		re:        make([]float64, bins),
		im:        make([]float64, bins),
		magnitude: make([]float64, bins),
		phase:     make([]float64, bins),
		plan:      fourier.NewFFT(size),
	}
	for i := range f.taper {
		f.taper[i] = 1
		if window == HannWindow && size > 1 {
			f.taper[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		}
	}
	return f
}

func (f *FFT) Size() int { return f.size }

// Forward transforms input, zero padding it to Size, and returns size/2+1
// magnitude and phase bins.
func (f *FFT) Forward(input []float64) (magnitude, phase []float64) {
	n := min(len(input), f.size)
	vecmath.MulBlock(f.work[:n], input[:n], f.taper[:n])
	clear(f.work[n:])

	f.coeffs = f.plan.Coefficients(f.coeffs, f.work)
	for i, c := range f.coeffs {
		f.re[i], f.im[i] = real(c), imag(c)
		f.phase[i] = math.Atan2(f.im[i], f.re[i])
	}
	vecmath.Magnitude(f.magnitude, f.re, f.im)
	return f.magnitude, f.phase
}

// MagnitudeDB converts the last magnitude spectrum to decibels in a new
// slice.
func (f *FFT) MagnitudeDB() []float64 {
	db := make([]float64, len(f.magnitude))
	for i, m := range f.magnitude {
		db[i] = silenceDB
		if m > 0 {
			db[i] = 20 * math.Log10(m)
		}
	}
	return db
}

// BinFrequency returns the centre of bin in Hz.
func (f *FFT) BinFrequency(bin int, sampleRate float64) float64 {
	return f.plan.Freq(bin) * sampleRate
}

// Bin returns the bin nearest freq, clamped to the spectrum.
func (f *FFT) Bin(freq, sampleRate float64) int {
	bin := int(math.Round(freq * float64(f.size) / sampleRate))
	return min(max(bin, 0), f.size/2)
}
