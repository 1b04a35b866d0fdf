package analysis

import (
	"fmt"
	"math"
	"sync"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

// DefaultPeakDecay is how fast the running peak falls, in dB per second.
const DefaultPeakDecay = 20.0

// Levels is a snapshot of a LevelMeter in dBFS. Index 0 is left.
type Levels struct {
	Peak    [2]float64
	MaxPeak [2]float64
	RMS     [2]float64
}

func (l Levels) String() string {
	return fmt.Sprintf("peak %.1f/%.1f dBFS, max %.1f/%.1f dBFS, rms %.1f/%.1f dBFS",
		l.Peak[0], l.Peak[1], l.MaxPeak[0], l.MaxPeak[1], l.RMS[0], l.RMS[1])
}

// LevelMeter tracks a decaying peak, the highest peak since the last reset
// and a sliding-window RMS of a stereo stream. Process is called from the
// audio goroutine and Levels from anywhere.
type LevelMeter struct {
	mu         sync.Mutex
	sampleRate float64
	decay      float64

	peak    [2]float64
	maxPeak [2]float64

	squares [2][]float64
	sum     [2]float64
	pos     int
	count   int
}

// NewLevelMeter creates a meter whose RMS covers window seconds.
func NewLevelMeter(sampleRate, window float64) *LevelMeter {
	n := max(int(window*sampleRate), 1)
	return &LevelMeter{
		sampleRate: sampleRate,
		decay:      DefaultPeakDecay,
		squares:    [2][]float64{make([]float64, n), make([]float64, n)},
	}
}

// SetDecay sets the peak fall rate in dB per second.
func (m *LevelMeter) SetDecay(dbPerSecond float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decay = math.Max(dbPerSecond, 0)
}

// Process adds one block. left and right must have equal length.
func (m *LevelMeter) Process(left, right []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := min(len(left), len(right))
	fall := math.Exp(-m.decay / 20 * math.Ln10 * float64(n) / m.sampleRate)
	window := len(m.squares[0])

	for ch, buf := range [2][]float32{left[:n], right[:n]} {
		block := float64(dsp.Peak(buf))
		m.peak[ch] = math.Max(m.peak[ch]*fall, block)
		m.maxPeak[ch] = math.Max(m.maxPeak[ch], block)

		pos := m.pos
		sq := m.squares[ch]
		for _, s := range buf {
			v := float64(s) * float64(s)
			m.sum[ch] += v - sq[pos]
			sq[pos] = v
			pos = (pos + 1) % window
		}
		m.sum[ch] = math.Max(m.sum[ch], 0)
	}
	m.pos = (m.pos + n) % window
	m.count = min(m.count+n, window)
}

// Levels returns the current readings.
func (m *LevelMeter) Levels() Levels {
	m.mu.Lock()
	defer m.mu.Unlock()

	var l Levels
	for ch := range 2 {
		l.Peak[ch] = toDB(m.peak[ch])
		l.MaxPeak[ch] = toDB(m.maxPeak[ch])
		if m.count > 0 {
			l.RMS[ch] = toDB(math.Sqrt(m.sum[ch] / float64(m.count)))
		} else {
			l.RMS[ch] = math.Inf(-1)
		}
	}
	return l
}

// Reset clears every reading.
func (m *LevelMeter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peak = [2]float64{}
	m.maxPeak = [2]float64{}
	m.sum = [2]float64{}
	clear(m.squares[0])
	clear(m.squares[1])
	m.pos, m.count = 0, 0
}

func toDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
