// Package engine connects the fixed-block script engine to the host-rate
// signal path: the engine contract, the block runner, the block bridge and
// the parameter injector.
package engine

import (
	"errors"

	"github.com/vmunix/glicol-verb/pkg/framework/debug"
)

// BlockSize is the fixed number of frames an engine processes per call.
const BlockSize = 128

// ErrProgramRejected is wrapped by engines when UpdateProgram fails.
var ErrProgramRejected = errors.New("program rejected")

// Engine is a script driven block processor. Implementations are owned by
// the audio thread and are never called concurrently.
type Engine interface {
	// Initialize prepares the engine for sampleRate.
	Initialize(sampleRate float64) error

	// UpdateProgram compiles text and makes it active. On failure the
	// previous program keeps running.
	UpdateProgram(text string) error

	// ProcessBlock runs one block. len(input) == BlockSize(). The returned
	// channels are owned by the engine and valid until the next call.
	ProcessBlock(input []float32) [][]float32

	SetSampleRate(rate float64)
	BlockSize() int
}

// DialectProvider is implemented by engines whose scripts reference
// controls with something other than the Glicol syntax.
type DialectProvider interface {
	Dialect() Dialect
}

// DialectOf returns the injection dialect for e.
func DialectOf(e Engine) Dialect {
	if p, ok := e.(DialectProvider); ok {
		if d := p.Dialect(); d != nil {
			return d
		}
	}
	return GlicolDialect{}
}

// Passthrough is an engine that returns its input unchanged. It accepts any
// program text.
type Passthrough struct {
	out     [1][]float32
	program string
}

// NewPassthrough creates a passthrough engine.
func NewPassthrough() *Passthrough {
	p := &Passthrough{}
	p.out[0] = make([]float32, BlockSize)
	return p
}

func (p *Passthrough) Initialize(sampleRate float64) error { return nil }

func (p *Passthrough) UpdateProgram(text string) error {
	p.program = text
	return nil
}

// Program returns the last accepted text.
func (p *Passthrough) Program() string { return p.program }

func (p *Passthrough) ProcessBlock(input []float32) [][]float32 {
	n := copy(p.out[0], input)
	clear(p.out[0][n:])
	return p.out[:]
}

func (p *Passthrough) SetSampleRate(rate float64) {}

func (p *Passthrough) BlockSize() int { return BlockSize }

// Runner adapts engine output to exactly two channels of one block.
// One channel is duplicated, extra channels are ignored and no channels
// yield silence with a single warning.
type Runner struct {
	engine Engine
	left   []float32
	right  []float32
	diag   *debug.Diagnostics
	warned bool
	blocks uint64
}

// NewRunner wraps e. diag may be nil.
func NewRunner(e Engine, diag *debug.Diagnostics) *Runner {
	bs := e.BlockSize()
	return &Runner{
		engine: e,
		left:   make([]float32, bs),
		right:  make([]float32, bs),
		diag:   diag,
	}
}

// Engine returns the wrapped engine.
func (r *Runner) Engine() Engine { return r.engine }

// Blocks returns the number of blocks run.
func (r *Runner) Blocks() uint64 { return r.blocks }

// Run processes one input block and returns left and right scratch slices
// owned by the runner.
func (r *Runner) Run(input []float32) (left, right []float32) {
	out := r.engine.ProcessBlock(input)
	r.blocks++

	switch {
	case len(out) == 0:
		clear(r.left)
		clear(r.right)
		if !r.warned {
			r.warned = true
			r.diag.NoOutput()
		}
	case len(out) == 1:
		fill(r.left, out[0])
		copy(r.right, r.left)
	default:
		fill(r.left, out[0])
		fill(r.right, out[1])
	}
	return r.left, r.right
}

// Reset rearms the no-output warning.
func (r *Runner) Reset() {
	r.warned = false
	clear(r.left)
	clear(r.right)
}

func fill(dst, src []float32) {
	n := copy(dst, src)
	clear(dst[n:])
}
