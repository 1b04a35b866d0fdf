package router

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/glicol-verb/pkg/engine"
	"github.com/vmunix/glicol-verb/pkg/framework/debug"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/framework/process"
)

const testRate = 44100.0

// gainEngine accepts programs whose last line is "gain <x>" and scales its
// input by x.
type gainEngine struct {
	gain    float32
	program string
	out     [1][]float32
}

func newGainEngine() *gainEngine {
	e := &gainEngine{gain: 1}
	e.out[0] = make([]float32, engine.BlockSize)
	return e
}

func (e *gainEngine) Initialize(float64) error { return nil }
func (e *gainEngine) SetSampleRate(float64)    {}
func (e *gainEngine) BlockSize() int           { return engine.BlockSize }

func (e *gainEngine) UpdateProgram(text string) error {
	lines := strings.Split(text, "\n")
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) != 2 || fields[0] != "gain" {
		return errors.New("unknown statement")
	}
	g, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return fmt.Errorf("%w: %v", engine.ErrProgramRejected, err)
	}
	e.gain = float32(g)
	e.program = text
	return nil
}

func (e *gainEngine) ProcessBlock(in []float32) [][]float32 {
	for i, s := range in {
		e.out[0][i] = s * e.gain
	}
	return e.out[:]
}

func newTestRouter(t *testing.T, cfg Config, setup func(reg *param.Registry)) *Router {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = debug.Discard()
	}
	r, err := New(cfg)
	require.NoError(t, err)
	if setup != nil {
		setup(r.Parameters())
	}
	require.NoError(t, r.Initialize(testRate, 512))
	return r
}

func setPlain(t *testing.T, reg *param.Registry, id uint32, v float64) {
	t.Helper()
	require.NoError(t, reg.SetPlain(id, v))
}

// wetOnly bypasses EQ and delay and routes only the engine output.
func wetOnly(t *testing.T) func(*param.Registry) {
	return func(reg *param.Registry) {
		setPlain(t, reg, ParamEQBypass, 1)
		setPlain(t, reg, ParamDelayBypass, 1)
		setPlain(t, reg, ParamDryWet, 1)
	}
}

// render feeds input through r in host blocks of the given size.
func render(r *Router, input [][]float32, block, outputs int) [][]float32 {
	n := len(input[0])
	out := make([][]float32, outputs)
	for ch := range out {
		out[ch] = make([]float32, n)
	}

	ctx := process.NewContext()
	ctx.SampleRate = testRate
	in := make([][]float32, len(input))
	o := make([][]float32, outputs)
	for off := 0; off < n; off += block {
		end := min(off+block, n)
		for ch := range input {
			in[ch] = input[ch][off:end]
		}
		for ch := range out {
			o[ch] = out[ch][off:end]
		}
		ctx.SetBuffers(in, o)
		r.ProcessAudio(ctx)
	}
	return out
}

func constant(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func sine(n int, freq, amp float64) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/testRate))
	}
	return buf
}

func impulse(n int) []float32 {
	buf := make([]float32, n)
	buf[0] = 1
	return buf
}
