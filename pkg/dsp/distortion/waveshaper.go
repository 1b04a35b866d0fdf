// Package distortion provides the waveshaper behind the drive control.
package distortion

import (
	"fmt"
	"math"
)

// Curve is a waveshaping transfer function.
type Curve int

const (
	// CurveSoft is tanh soft clipping.
	CurveSoft Curve = iota
	// CurveHard clips at ±1.
	CurveHard
	// CurveSaturate is exponential saturation.
	CurveSaturate
	// CurveFold folds peaks back into range.
	CurveFold
	// CurveAsymmetric clips the negative half harder, adding even harmonics.
	CurveAsymmetric
)

// Drive limits, matching the drive control.
const (
	MinDrive = 1.0
	MaxDrive = 10.0
)

var curveNames = [...]string{"soft", "hard", "saturate", "fold", "asymmetric"}

func (c Curve) String() string {
	if c >= 0 && int(c) < len(curveNames) {
		return curveNames[c]
	}
	return fmt.Sprintf("Curve(%d)", int(c))
}

// ParseCurve maps a curve name to a Curve.
func ParseCurve(name string) (Curve, error) {
	for i, n := range curveNames {
		if n == name {
			return Curve(i), nil
		}
	}
	return CurveSoft, fmt.Errorf("unknown curve %q", name)
}

// Waveshaper drives the input into a curve and blends with the dry signal.
// The output of every curve stays within [-1, 1] for a full wet mix.
type Waveshaper struct {
	curve Curve
	drive float64
	mix   float64
}

// NewWaveshaper creates a fully wet shaper at unity drive.
func NewWaveshaper(curve Curve) *Waveshaper {
	return &Waveshaper{curve: curve, drive: MinDrive, mix: 1}
}

// SetDrive sets the input gain, clamped to [MinDrive, MaxDrive].
func (w *Waveshaper) SetDrive(drive float64) {
	w.drive = min(max(drive, MinDrive), MaxDrive)
}

// SetMix sets the dry/wet mix (0 = dry, 1 = wet).
func (w *Waveshaper) SetMix(mix float64) {
	w.mix = min(max(mix, 0), 1)
}

// Drive returns the current drive.
func (w *Waveshaper) Drive() float64 { return w.drive }

// Process shapes one sample.
func (w *Waveshaper) Process(input float32) float32 {
	x := float64(input) * w.drive

	var y float64
	switch w.curve {
	case CurveHard:
		y = min(max(x, -1), 1)
	case CurveSaturate:
		if x >= 0 {
			y = 1 - math.Exp(-x)
		} else {
			y = -1 + math.Exp(x)
		}
	case CurveFold:
		y = fold(x)
	case CurveAsymmetric:
		if x >= 0 {
			y = math.Tanh(x)
		} else {
			y = math.Tanh(2*x) * 0.8
		}
	default:
		y = math.Tanh(x)
	}

	return float32(float64(input)*(1-w.mix) + y*w.mix)
}

// fold reflects x into [-1, 1] with period 4.
func fold(x float64) float64 {
	n := (x + 1) / 4
	t := (n - math.Floor(n)) * 4 // [0, 4)
	if t < 2 {
		return t - 1
	}
	return 3 - t
}
