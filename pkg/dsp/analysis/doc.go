// Package analysis provides measurement tools for the signal chain.
//
// FFT and Frequency Response:
//   - windowed forward FFT on top of gonum's real FFT
//   - magnitude response of any per-sample processor from its impulse response
//
// Level Metering:
//   - stereo meter with decaying peak, max peak and sliding RMS, safe to
//     feed from the audio goroutine and read from another
//
// Example usage:
//
//	e := eq.New(44100)
//	e.SetLowGain(6)
//	resp := analysis.MeasureResponse(e.Process, 44100, 16384)
//	boost := resp.GainDBAt(30)
//
//	meter := analysis.NewLevelMeter(44100, 0.3)
//	meter.Process(left, right)
//	fmt.Println(meter.Levels())
package analysis
