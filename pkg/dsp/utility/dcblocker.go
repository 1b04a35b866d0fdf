// Package utility provides small corrective processors for script output.
package utility

import "math"

// DefaultDCCutoff is the DC blocker corner in Hz.
const DefaultDCCutoff = 10.0

// DCBlocker removes DC offset with a first-order highpass:
// y[n] = x[n] - x[n-1] + R*y[n-1].
type DCBlocker struct {
	x1, y1 float32
	r      float32
}

// NewDCBlocker creates a blocker with its corner at cutoffHz.
func NewDCBlocker(cutoffHz, sampleRate float64) *DCBlocker {
	dc := &DCBlocker{}
	dc.SetCutoff(cutoffHz, sampleRate)
	return dc
}

// SetCutoff moves the corner. R is clamped to [0.9, 0.9999] for stability.
func (dc *DCBlocker) SetCutoff(cutoffHz, sampleRate float64) {
	r := 1 - 2*math.Pi*cutoffHz/sampleRate
	dc.r = float32(min(max(r, 0.9), 0.9999))
}

// Coefficient returns R.
func (dc *DCBlocker) Coefficient() float32 { return dc.r }

// Process filters one sample.
func (dc *DCBlocker) Process(input float32) float32 {
	out := input - dc.x1 + dc.r*dc.y1
	dc.x1 = input
	dc.y1 = out
	return out
}

// ProcessBuffer filters buffer in place.
func (dc *DCBlocker) ProcessBuffer(buffer []float32) {
	for i, x := range buffer {
		buffer[i] = dc.Process(x)
	}
}

// Reset clears the filter memory.
func (dc *DCBlocker) Reset() {
	dc.x1, dc.y1 = 0, 0
}
