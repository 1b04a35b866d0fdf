package dsp

// StereoSample is one frame of stereo audio. The zero value is silence.
type StereoSample struct {
	Left  float32
	Right float32
}

// NewStereo creates a stereo sample from two channel values.
func NewStereo(left, right float32) StereoSample {
	return StereoSample{Left: left, Right: right}
}

// Mono duplicates a single value to both channels.
func Mono(value float32) StereoSample {
	return StereoSample{Left: value, Right: value}
}

// Mix blends s (dry) with other (wet): dry*(1-wet) + other*wet.
func (s StereoSample) Mix(other StereoSample, wet float32) StereoSample {
	dry := 1 - wet
	return StereoSample{
		Left:  s.Left*dry + other.Left*wet,
		Right: s.Right*dry + other.Right*wet,
	}
}

// Scale multiplies both channels by gain.
func (s StereoSample) Scale(gain float32) StereoSample {
	return StereoSample{Left: s.Left * gain, Right: s.Right * gain}
}
