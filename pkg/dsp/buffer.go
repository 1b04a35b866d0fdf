package dsp

import (
	"math"

	"github.com/tphakala/simd/f32"
)

// Buffer utilities for common audio operations

// Clear zeroes a buffer - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Scale multiplies buffer by a constant in place - no allocations
func Scale(buffer []float32, scale float32) {
	f32.Scale(buffer, buffer, scale)
}

// Interleave writes left/right into dst as L R L R ... dst must hold
// 2*min(len(left), len(right)) samples.
func Interleave(dst, left, right []float32) {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	f32.Interleave2(dst[:2*n], left[:n], right[:n])
}

// Peak finds the maximum absolute value in a buffer
func Peak(buffer []float32) float32 {
	peak := float32(0)
	for _, sample := range buffer {
		abs := float32(math.Abs(float64(sample)))
		if abs > peak {
			peak = abs
		}
	}
	return peak
}

// RMS calculates the root mean square of a buffer
func RMS(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}
	energy := f32.DotProduct(buffer, buffer)
	return float32(math.Sqrt(float64(energy) / float64(len(buffer))))
}

// IsFinite reports whether every sample is neither NaN nor infinite.
func IsFinite(buffer []float32) bool {
	for _, sample := range buffer {
		v := float64(sample)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Clamp limits value to [lo, hi]. NaN maps to lo.
func Clamp(value, lo, hi float32) float32 {
	if value < lo || value != value {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// DbToGain converts decibels to a linear gain factor.
func DbToGain(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10, db/20)
}

// GainToDb converts a linear gain factor to decibels.
func GainToDb(gain float64) float64 {
	if gain <= 0 {
		return MinDB
	}
	return 20 * math.Log10(gain)
}
