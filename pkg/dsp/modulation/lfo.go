// Package modulation provides the LFO and chorus behind the rate control.
package modulation

import (
	"fmt"
	"math"
)

// Shape is an LFO waveform.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeTriangle
)

var shapeNames = [...]string{"sine", "triangle"}

func (s Shape) String() string {
	if s >= 0 && int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape maps a shape name to a Shape.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return ShapeSine, fmt.Errorf("unknown shape %q", name)
}

// Rate limits in Hz, matching the rate control.
const (
	MinRate = 0.01
	MaxRate = 20.0
)

// LFO is a bipolar low frequency oscillator. Phase runs over [0, 1).
type LFO struct {
	sampleRate float64
	rate       float64
	phase      float64
	inc        float64
	shape      Shape
	depth      float64
}

// NewLFO creates a full-depth sine at 1 Hz.
func NewLFO(sampleRate float64) *LFO {
	l := &LFO{sampleRate: sampleRate, depth: 1}
	l.SetFrequency(1)
	return l
}

// SetFrequency sets the rate, clamped to [MinRate, MaxRate].
func (l *LFO) SetFrequency(hz float64) {
	l.rate = min(max(hz, MinRate), MaxRate)
	l.inc = l.rate / l.sampleRate
}

func (l *LFO) Frequency() float64 { return l.rate }

func (l *LFO) SetShape(s Shape) { l.shape = s }
func (l *LFO) Shape() Shape     { return l.shape }

// SetDepth scales the output, clamped to [0, 1].
func (l *LFO) SetDepth(depth float64) {
	l.depth = min(max(depth, 0), 1)
}

// SetPhase moves the phase, wrapping into [0, 1).
func (l *LFO) SetPhase(phase float64) {
	l.phase = phase - math.Floor(phase)
}

func (l *LFO) Phase() float64 { return l.phase }

// Next returns the value at the current phase, in [-depth, depth], then
// advances.
func (l *LFO) Next() float64 {
	var v float64
	if l.shape == ShapeTriangle {
		// -1 at phase 0, +1 at 0.5.
		v = 1 - 4*math.Abs(l.phase-0.5)
	} else {
		v = math.Sin(2 * math.Pi * l.phase)
	}
	l.phase += l.inc
	if l.phase >= 1 {
		l.phase--
	}
	return v * l.depth
}

// Reset rewinds to phase 0.
func (l *LFO) Reset() { l.phase = 0 }
