// Package dsp provides digital signal processing utilities and algorithms.
package dsp

// Common audio constants used throughout the DSP packages and the router.
const (
	// Gain/Level constants
	MinDB     = -200.0 // Minimum dB value (effectively silence)
	UnityGain = 1.0    // Unity gain (0 dB)

	// Channel counts
	MonoChannels   = 1
	StereoChannels = 2

	// Common sample rates
	SampleRate44k1 = 44100.0
	SampleRate48k  = 48000.0
	SampleRate96k  = 96000.0

	// Host buffer sizes
	MinBufferSize     = 1
	DefaultBufferSize = 512
	MaxBufferSize     = 4096 // Larger host buffers are processed in sub-blocks

	// Smoothing times
	FastSmoothing   = 0.001 // 1ms
	MediumSmoothing = 0.010 // 10ms
	SlowSmoothing   = 0.050 // 50ms

	// Phase constants
	TwoPi = 6.283185307179586
	Pi    = 3.141592653589793

	// SampleRateEpsilon is the smallest sample rate change (Hz) that causes
	// modules to reallocate or recompute.
	SampleRateEpsilon = 0.1

	// ParamEpsilon is the smallest parameter change that marks filter
	// coefficients dirty.
	ParamEpsilon = 0.01
)
