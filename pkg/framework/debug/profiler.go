package debug

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Profiler accumulates wall-clock timings per named section. It keeps the
// most recent timings of each section in a ring for percentiles.
type Profiler struct {
	mu       sync.Mutex
	sections map[string]*Measurement
	keep     int
}

// Measurement summarizes one section.
type Measurement struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration

	recent []time.Duration
	next   int
}

// NewProfiler keeps the last keep timings of each section, at least one.
func NewProfiler(keep int) *Profiler {
	return &Profiler{sections: make(map[string]*Measurement), keep: max(keep, 1)}
}

// Start times name until the returned func is called.
func (p *Profiler) Start(name string) func() {
	begin := time.Now()
	return func() { p.Record(name, time.Since(begin)) }
}

// Record adds one timing for name.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.sections[name]
	if m == nil {
		m = &Measurement{Name: name, Min: d, Max: d, recent: make([]time.Duration, 0, p.keep)}
		p.sections[name] = m
	}
	m.Count++
	m.Total += d
	m.Last = d
	m.Min, m.Max = min(m.Min, d), max(m.Max, d)

	if len(m.recent) < p.keep {
		m.recent = append(m.recent, d)
		return
	}
	m.recent[m.next] = d
	m.next = (m.next + 1) % p.keep
}

// Measurement returns a copy of name's statistics.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.sections[name]
	if m == nil {
		return Measurement{}, false
	}
	c := *m
	c.recent = slices.Clone(m.recent)
	return c, true
}

// Report prints one line per section in name order.
func (p *Profiler) Report() string {
	p.mu.Lock()
	names := make([]string, 0, len(p.sections))
	for name := range p.sections {
		names = append(names, name)
	}
	p.mu.Unlock()

	if len(names) == 0 {
		return "no measurements recorded"
	}
	slices.Sort(names)

	var sb strings.Builder
	for _, name := range names {
		m, _ := p.Measurement(name)
		fmt.Fprintf(&sb, "%s: count=%d avg=%v min=%v max=%v p99=%v\n",
			name, m.Count, m.Average(), m.Min, m.Max, m.Percentile(99))
	}
	return sb.String()
}

func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Percentile returns the p-th percentile, p in [0, 100], of the retained
// timings.
func (m Measurement) Percentile(p float64) time.Duration {
	if len(m.recent) == 0 {
		return 0
	}
	sorted := slices.Clone(m.recent)
	slices.Sort(sorted)
	p = min(max(p, 0), 100)
	return sorted[int(float64(len(sorted)-1)*p/100)]
}

// ProcessSection is the section LoadProfiler measures against its budget.
const ProcessSection = "ProcessAudio"

// LoadProfiler relates callback timings to the real-time budget of one
// callback.
type LoadProfiler struct {
	*Profiler
	sampleRate float64
	blockSize  int
}

func NewLoadProfiler(sampleRate float64, blockSize int) *LoadProfiler {
	return &LoadProfiler{Profiler: NewProfiler(1000), sampleRate: sampleRate, blockSize: blockSize}
}

// Budget is the playback time of one callback.
func (a *LoadProfiler) Budget() time.Duration {
	if a.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(a.blockSize) / a.sampleRate * float64(time.Second))
}

// CPULoad is the mean ProcessSection time as a percentage of Budget.
func (a *LoadProfiler) CPULoad() float64 {
	m, ok := a.Measurement(ProcessSection)
	budget := a.Budget()
	if !ok || budget == 0 {
		return 0
	}
	return 100 * float64(m.Average()) / float64(budget)
}

// LoadReport is Report plus a line with the budget and load.
func (a *LoadProfiler) LoadReport() string {
	return a.Report() + fmt.Sprintf("sample rate=%.0f Hz block=%d budget=%v load=%.2f%%\n",
		a.sampleRate, a.blockSize, a.Budget(), a.CPULoad())
}
