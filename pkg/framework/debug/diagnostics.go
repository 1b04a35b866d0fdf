package debug

import "sync/atomic"

// scriptPrefixLen bounds how much of the active script a summary shows.
const scriptPrefixLen = 48

// Summary is the periodic state snapshot a processor reports.
type Summary struct {
	Samples         uint64
	Blocks          uint64
	InputPeak       float32
	OutputPeak      float32
	OutputAvailable int
	Underruns       uint64
	Script          string
}

// Diagnostics rate-limits processor reporting to roughly one line per second
// of audio. Every method is safe on a nil receiver and does no formatting
// unless the logger would write the line, so the audio thread can call it
// unconditionally.
type Diagnostics struct {
	log      *Logger
	interval uint64
	elapsed  uint64
	reports  atomic.Uint64
}

// NewDiagnostics reports through l. A nil logger silences everything.
func NewDiagnostics(l *Logger) *Diagnostics {
	d := &Diagnostics{log: l}
	d.SetSampleRate(44100)
	return d
}

// SetSampleRate sets the summary interval to one second of audio.
func (d *Diagnostics) SetSampleRate(sampleRate float64) {
	if d == nil {
		return
	}
	d.interval = uint64(max(sampleRate, 1))
	d.elapsed = 0
}

// Interval returns the summary interval in samples.
func (d *Diagnostics) Interval() uint64 {
	if d == nil {
		return 0
	}
	return d.interval
}

// Logger returns the destination logger.
func (d *Diagnostics) Logger() *Logger {
	if d == nil {
		return nil
	}
	return d.log
}

// Reports returns how many lines have been emitted.
func (d *Diagnostics) Reports() uint64 {
	if d == nil {
		return 0
	}
	return d.reports.Load()
}

// Tick advances the sample clock by n and reports whether a summary is due.
func (d *Diagnostics) Tick(n int) bool {
	if d == nil || n <= 0 {
		return false
	}
	d.elapsed += uint64(n)
	if d.elapsed < d.interval {
		return false
	}
	d.elapsed %= d.interval
	return d.log.Enabled(LogLevelDebug)
}

// Summarize writes s at debug level.
func (d *Diagnostics) Summarize(s Summary) {
	if d == nil || !d.log.Enabled(LogLevelDebug) {
		return
	}
	script := s.Script
	if len(script) > scriptPrefixLen {
		script = script[:scriptPrefixLen]
	}
	d.reports.Add(1)
	d.log.Debug("samples=%d blocks=%d in_peak=%.4f out_peak=%.4f out_avail=%d underruns=%d script=%q",
		s.Samples, s.Blocks, s.InputPeak, s.OutputPeak, s.OutputAvailable, s.Underruns, script)
}

// Underrun is the bridge's rate-limited underrun hook.
func (d *Diagnostics) Underrun(total uint64) {
	if d == nil || !d.log.Enabled(LogLevelWarn) {
		return
	}
	d.reports.Add(1)
	d.log.Warn("output underrun, %d samples of silence so far", total)
}

// ScriptAccepted notes a program change.
func (d *Diagnostics) ScriptAccepted(text string) {
	if d == nil || !d.log.Enabled(LogLevelInfo) {
		return
	}
	if len(text) > scriptPrefixLen {
		text = text[:scriptPrefixLen]
	}
	d.reports.Add(1)
	d.log.Info("script accepted: %q", text)
}

// ScriptRejected notes a failed program change.
func (d *Diagnostics) ScriptRejected(err error) {
	if d == nil || err == nil || !d.log.Enabled(LogLevelWarn) {
		return
	}
	d.reports.Add(1)
	d.log.Warn("script rejected, keeping previous program: %v", err)
}

// NoOutput warns that the engine produced no channels.
func (d *Diagnostics) NoOutput() {
	if d == nil || !d.log.Enabled(LogLevelWarn) {
		return
	}
	d.reports.Add(1)
	d.log.Warn("engine returned no output channels, emitting silence")
}
