// Package filter provides digital signal processing filters
package filter

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

// ShelfSlope is the shelf slope S used by LowShelf and HighShelf.
const ShelfSlope = 0.9

// Coefficients holds biquad coefficients normalized so that a0 == 1.
type Coefficients struct {
	B0, B1, B2 float32 // numerator
	A1, A2     float32 // denominator
}

// Unity returns passthrough coefficients.
func Unity() Coefficients {
	return Coefficients{B0: 1}
}

// normalize divides every coefficient by a0 and narrows to float32
func normalize(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	invA0 := 1.0 / a0
	return Coefficients{
		B0: float32(b0 * invA0),
		B1: float32(b1 * invA0),
		B2: float32(b2 * invA0),
		A1: float32(a1 * invA0),
		A2: float32(a2 * invA0),
	}
}

// State is the Direct Form I history of a stereo biquad.
// Left and right share coefficients but keep independent histories.
type State struct {
	x1L, x2L, y1L, y2L float32
	x1R, x2R, y1R, y2R float32
}

// Reset clears the filter history
func (s *State) Reset() {
	*s = State{}
}

// Process filters one stereo frame - no allocations
func (s *State) Process(in dsp.StereoSample, c *Coefficients) dsp.StereoSample {
	// Direct Form I
	outL := c.B0*in.Left + c.B1*s.x1L + c.B2*s.x2L - c.A1*s.y1L - c.A2*s.y2L
	s.x2L = s.x1L
	s.x1L = in.Left
	s.y2L = s.y1L
	s.y1L = outL

	outR := c.B0*in.Right + c.B1*s.x1R + c.B2*s.x2R - c.A1*s.y1R - c.A2*s.y2R
	s.x2R = s.x1R
	s.x1R = in.Right
	s.y2R = s.y1R
	s.y1R = outR

	return dsp.StereoSample{Left: outL, Right: outR}
}

// Design functions (RBJ audio EQ cookbook)

// MaxNormalizedFrequency caps design frequencies just below Nyquist.
const MaxNormalizedFrequency = 0.49

// angular converts frequency to radians per sample, clamped to
// (0, MaxNormalizedFrequency*sampleRate].
func angular(sampleRate, frequency float64) float64 {
	f := min(max(frequency, 1e-3), MaxNormalizedFrequency*sampleRate)
	return 2.0 * math.Pi * f / sampleRate
}

// shelfAlpha returns alpha for a shelf with slope S
func shelfAlpha(sinOmega, A, slope float64) float64 {
	return sinOmega / 2.0 * math.Sqrt((A+1.0/A)*(1.0/slope-1.0)+2.0)
}

// LowShelf designs a low shelf at frequency with the given gain and slope
func LowShelf(sampleRate, frequency, gainDB, slope float64) Coefficients {
	omega := angular(sampleRate, frequency)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	A := math.Pow(10.0, gainDB/40.0)
	alpha := shelfAlpha(sinOmega, A, slope)

	sqrtAAlpha := 2.0 * math.Sqrt(A) * alpha

	b0 := A * ((A + 1) - (A-1)*cosOmega + sqrtAAlpha)
	b1 := 2.0 * A * ((A - 1) - (A+1)*cosOmega)
	b2 := A * ((A + 1) - (A-1)*cosOmega - sqrtAAlpha)
	a0 := (A + 1) + (A-1)*cosOmega + sqrtAAlpha
	a1 := -2.0 * ((A - 1) + (A+1)*cosOmega)
	a2 := (A + 1) + (A-1)*cosOmega - sqrtAAlpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high shelf at frequency with the given gain and slope
func HighShelf(sampleRate, frequency, gainDB, slope float64) Coefficients {
	omega := angular(sampleRate, frequency)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	A := math.Pow(10.0, gainDB/40.0)
	alpha := shelfAlpha(sinOmega, A, slope)

	sqrtAAlpha := 2.0 * math.Sqrt(A) * alpha

	b0 := A * ((A + 1) + (A-1)*cosOmega + sqrtAAlpha)
	b1 := -2.0 * A * ((A - 1) + (A+1)*cosOmega)
	b2 := A * ((A + 1) + (A-1)*cosOmega - sqrtAAlpha)
	a0 := (A + 1) - (A-1)*cosOmega + sqrtAAlpha
	a1 := 2.0 * ((A - 1) - (A+1)*cosOmega)
	a2 := (A + 1) - (A-1)*cosOmega - sqrtAAlpha

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Peak designs a peaking EQ band
func Peak(sampleRate, frequency, gainDB, q float64) Coefficients {
	omega := angular(sampleRate, frequency)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	A := math.Pow(10.0, gainDB/40.0)
	alpha := sinOmega / (2.0 * q)

	b0 := 1.0 + alpha*A
	b1 := -2.0 * cosOmega
	b2 := 1.0 - alpha*A
	a0 := 1.0 + alpha/A
	a1 := -2.0 * cosOmega
	a2 := 1.0 - alpha/A

	return normalize(b0, b1, b2, a0, a1, a2)
}

// Lowpass designs a second-order lowpass
func Lowpass(sampleRate, frequency, q float64) Coefficients {
	omega := angular(sampleRate, frequency)
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2.0 * q)

	b0 := (1.0 - cosOmega) / 2.0
	b1 := 1.0 - cosOmega
	b2 := (1.0 - cosOmega) / 2.0
	a0 := 1.0 + alpha
	a1 := -2.0 * cosOmega
	a2 := 1.0 - alpha

	return normalize(b0, b1, b2, a0, a1, a2)
}
