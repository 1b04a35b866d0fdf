// Package luaengine is a reference script engine running Lua programs with
// gopher-lua. A program defines a global function process(x) returning one
// sample (mono) or two (left, right).
//
// Programs build stateful processors at load time from the dsp table:
//
//	local verb = dsp.plate(0.8, 0.3)
//	local fuzz = dsp.drive(ctl.drive, "asymmetric")
//	function process(x)
//		return verb:process(fuzz:process(x))
//	end
package luaengine

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/engine"
)

// DefaultProgram passes audio through unchanged.
const DefaultProgram = "function process(x) return x end"

// ErrNoProcess is wrapped when a program does not define process.
var ErrNoProcess = errors.New("program does not define function process(x)")

// Engine runs one Lua state at a time. UpdateProgram builds a fresh state
// and swaps it in only after the program loaded cleanly.
type Engine struct {
	state      *lua.LState
	process    *lua.LFunction
	sampleRate float64
	program    string
	left       []float32
	right      []float32
	out        [2][]float32
	errors     atomic.Uint64
	lastErr    atomic.Pointer[string]
}

var _ engine.Engine = (*Engine)(nil)
var _ engine.DialectProvider = (*Engine)(nil)

// New creates an engine running DefaultProgram.
func New() *Engine {
	e := &Engine{
		sampleRate: 44100,
		left:       make([]float32, engine.BlockSize),
		right:      make([]float32, engine.BlockSize),
	}
	e.out[0], e.out[1] = e.left, e.right
	return e
}

// Initialize sets the sample rate and loads DefaultProgram if nothing was
// loaded yet.
func (e *Engine) Initialize(sampleRate float64) error {
	e.SetSampleRate(sampleRate)
	if e.state != nil {
		return nil
	}
	return e.UpdateProgram(DefaultProgram)
}

// Dialect binds controls as ctl.name fields.
func (e *Engine) Dialect() engine.Dialect { return engine.LuaDialect{} }

// BlockSize returns engine.BlockSize.
func (e *Engine) BlockSize() int { return engine.BlockSize }

// SetSampleRate updates sr. A loaded program is rebuilt so its dsp nodes
// run at the new rate. Changes of 0.1 Hz or less are ignored.
func (e *Engine) SetSampleRate(rate float64) {
	if math.Abs(rate-e.sampleRate) <= dsp.SampleRateEpsilon {
		return
	}
	e.sampleRate = rate
	if e.state == nil {
		return
	}
	if err := e.UpdateProgram(e.program); err != nil {
		e.state.SetGlobal("sr", lua.LNumber(rate))
	}
}

// Program returns the active program text.
func (e *Engine) Program() string { return e.program }

// Errors returns the number of blocks cut short by a runtime error.
func (e *Engine) Errors() uint64 { return e.errors.Load() }

// LastError returns the most recent runtime error message.
func (e *Engine) LastError() string {
	if p := e.lastErr.Load(); p != nil {
		return *p
	}
	return ""
}

// UpdateProgram compiles text in a new state. Errors wrap
// engine.ErrProgramRejected and leave the previous program running.
func (e *Engine) UpdateProgram(text string) error {
	L := newState(e.sampleRate)

	if err := L.DoString(text); err != nil {
		L.Close()
		return fmt.Errorf("%w: %v", engine.ErrProgramRejected, err)
	}

	fn, ok := L.GetGlobal("process").(*lua.LFunction)
	if !ok {
		L.Close()
		return fmt.Errorf("%w: %w", engine.ErrProgramRejected, ErrNoProcess)
	}

	if e.state != nil {
		e.state.Close()
	}
	e.state = L
	e.process = fn
	e.program = text
	return nil
}

// ProcessBlock calls process once per sample. A runtime error silences the
// rest of the block.
func (e *Engine) ProcessBlock(input []float32) [][]float32 {
	if e.state == nil {
		clear(e.left)
		clear(e.right)
		return e.out[:]
	}

	n := min(len(input), len(e.left))
	L := e.state
	for i := 0; i < n; i++ {
		err := L.CallByParam(lua.P{Fn: e.process, NRet: 2, Protect: true}, lua.LNumber(input[i]))
		if err != nil {
			e.errors.Add(1)
			msg := err.Error()
			e.lastErr.Store(&msg)
			clear(e.left[i:])
			clear(e.right[i:])
			return e.out[:]
		}

		r := L.Get(-1)
		l := L.Get(-2)
		L.Pop(2)

		left := toSample(l)
		e.left[i] = left
		if _, stereo := r.(lua.LNumber); stereo {
			e.right[i] = toSample(r)
		} else {
			e.right[i] = left
		}
	}
	clear(e.left[n:])
	clear(e.right[n:])
	return e.out[:]
}

// Close releases the Lua state.
func (e *Engine) Close() {
	if e.state != nil {
		e.state.Close()
		e.state = nil
		e.process = nil
	}
}

func newState(sampleRate float64) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	L.SetGlobal("sr", lua.LNumber(sampleRate))
	L.SetGlobal("block_size", lua.LNumber(engine.BlockSize))
	L.SetGlobal("ctl", L.NewTable())
	openDSP(L, sampleRate)
	return L
}

// toSample converts a Lua return value; anything but a finite number is 0.
func toSample(v lua.LValue) float32 {
	n, ok := v.(lua.LNumber)
	if !ok {
		return 0
	}
	f := float64(n)
	if f != f || f > 1e30 || f < -1e30 {
		return 0
	}
	return float32(f)
}
