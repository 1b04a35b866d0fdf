package oscillator

// AttackSeconds is the linear fade-in applied to every pluck.
const AttackSeconds = 0.003

// Pluck is a Karplus-Strong string: a period-long excitation recirculated
// through a two-point average with per-pass decay.
type Pluck struct {
	line   []float32
	index  int
	decay  float32
	attack int
	n      int
}

// NewPluck tunes a string to frequency. decay in (0, 1) sets how long it
// rings; 0.996 gives a guitar-like tail.
func NewPluck(sampleRate, frequency float64, decay float32) *Pluck {
	period := max(int(sampleRate/frequency), 2)

	// Excitation: deterministic noise with some fundamental mixed in.
	line := make([]float32, period)
	osc := New(float64(period))
	osc.SetFrequency(1)
	for i := range line {
		noise := float32(hash(uint32(i)))/float32(^uint32(0))*2 - 1
		line[i] = noise*0.7 + osc.Next()*0.3
	}

	return &Pluck{
		line:   line,
		decay:  decay,
		attack: max(int(AttackSeconds*sampleRate), 1),
	}
}

// Period returns the string length in samples.
func (p *Pluck) Period() int { return len(p.line) }

// Next returns the next sample.
func (p *Pluck) Next() float32 {
	s := p.line[p.index]
	if p.n < p.attack {
		s *= float32(p.n) / float32(p.attack)
	}
	p.n++

	next := p.index + 1
	if next == len(p.line) {
		next = 0
	}
	p.line[p.index] = (p.line[p.index] + p.line[next]) * 0.5 * p.decay
	p.index = next
	return s
}

// Add mixes gain times the next len(buffer) samples into buffer.
func (p *Pluck) Add(buffer []float32, gain float32) {
	for i := range buffer {
		buffer[i] += p.Next() * gain
	}
}

func hash(x uint32) uint32 {
	x *= 0x45d9f3b
	x ^= x >> 16
	x *= 0x45d9f3b
	x ^= x >> 16
	return x
}
