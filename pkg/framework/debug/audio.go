package debug

import (
	"fmt"
	"math"
)

// AudioAnalyzer inspects rendered buffers for problems a listener would hear:
// non-finite samples, clipping, DC offset and unexpected silence.
type AudioAnalyzer struct {
	ClipThreshold    float32
	DCThreshold      float32
	SilenceThreshold float32
}

// NewAudioAnalyzer creates an analyzer with default thresholds.
func NewAudioAnalyzer() *AudioAnalyzer {
	return &AudioAnalyzer{
		ClipThreshold:    0.999,
		DCThreshold:      0.01,
		SilenceThreshold: 0.0001,
	}
}

// AnalysisResult contains the results of a buffer analysis.
type AnalysisResult struct {
	Samples        int
	Peak           float32
	RMS            float32
	DC             float32
	ClippedSamples int
	NonFinite      int
	ZeroCrossings  int
	Silent         bool
}

// Clipping reports whether any sample reached the clip threshold.
func (r AnalysisResult) Clipping() bool { return r.ClippedSamples > 0 }

// Analyze scans buffer once. Non-finite samples are counted and excluded from
// the level statistics.
func (a *AudioAnalyzer) Analyze(buffer []float32) AnalysisResult {
	result := AnalysisResult{Samples: len(buffer)}
	if len(buffer) == 0 {
		return result
	}

	var sum, sumSquares float64
	var last float32
	finite := 0

	for _, s := range buffer {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			result.NonFinite++
			continue
		}

		abs := float32(math.Abs(f))
		if abs > result.Peak {
			result.Peak = abs
		}
		if abs >= a.ClipThreshold {
			result.ClippedSamples++
		}
		if finite > 0 && (last < 0) != (s < 0) {
			result.ZeroCrossings++
		}

		sum += f
		sumSquares += f * f
		last = s
		finite++
	}

	if finite > 0 {
		result.RMS = float32(math.Sqrt(sumSquares / float64(finite)))
		result.DC = float32(sum / float64(finite))
	}
	result.Silent = result.RMS < a.SilenceThreshold

	return result
}

// Check returns a human readable line for every problem found in buffer.
func (a *AudioAnalyzer) Check(buffer []float32, name string) []string {
	r := a.Analyze(buffer)

	var issues []string
	if r.NonFinite > 0 {
		issues = append(issues, fmt.Sprintf("%s: %d non-finite samples", name, r.NonFinite))
	}
	if r.Clipping() {
		issues = append(issues, fmt.Sprintf("%s: clipping (%d samples, peak %.3f)", name, r.ClippedSamples, r.Peak))
	}
	if math.Abs(float64(r.DC)) > float64(a.DCThreshold) {
		issues = append(issues, fmt.Sprintf("%s: DC offset %.4f", name, r.DC))
	}
	if r.Silent && r.Samples > 0 {
		issues = append(issues, fmt.Sprintf("%s: silent", name))
	}
	return issues
}

// LogBufferStats writes the analysis of buffer to l.
func LogBufferStats(l *Logger, buffer []float32, name string) {
	if !l.Enabled(LogLevelInfo) {
		return
	}
	r := NewAudioAnalyzer().Analyze(buffer)
	l.Info("%s: samples=%d peak=%.3f rms=%.3f dc=%.5f crossings=%d",
		name, r.Samples, r.Peak, r.RMS, r.DC, r.ZeroCrossings)
}
