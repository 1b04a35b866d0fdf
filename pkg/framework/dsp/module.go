// Package dsp provides the per-sample module abstraction used by the signal
// router.
package dsp

import (
	audio "github.com/vmunix/glicol-verb/pkg/dsp"
)

// Module is a stereo per-sample processor that can be bypassed.
type Module interface {
	// Process processes one frame
	Process(in audio.StereoSample) audio.StereoSample

	// SetSampleRate updates the sample rate. Implementations ignore changes
	// of 0.1 Hz or less.
	SetSampleRate(sampleRate float64)

	// Reset clears internal state
	Reset()

	Bypassed() bool
	SetBypassed(bypassed bool)
}

// ProcessWithBypass returns in unchanged when m is bypassed without
// touching its state, otherwise m.Process(in).
func ProcessWithBypass(m Module, in audio.StereoSample) audio.StereoSample {
	if m.Bypassed() {
		return in
	}
	return m.Process(in)
}
