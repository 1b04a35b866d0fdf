// Package router implements the signal router: the per-callback pipeline
// that runs the fixed EQ and delay around a block based script engine and
// swaps engine programs sent from a control goroutine.
package router

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/analysis"
	"github.com/vmunix/glicol-verb/pkg/dsp/delay"
	"github.com/vmunix/glicol-verb/pkg/dsp/eq"
	"github.com/vmunix/glicol-verb/pkg/engine"
	"github.com/vmunix/glicol-verb/pkg/framework/bus"
	"github.com/vmunix/glicol-verb/pkg/framework/debug"
	fx "github.com/vmunix/glicol-verb/pkg/framework/dsp"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/framework/plugin"
	"github.com/vmunix/glicol-verb/pkg/framework/process"
	"github.com/vmunix/glicol-verb/pkg/framework/state"
)

// Info describes the processor.
var Info = plugin.Info{
	ID:       "com.vmunix.glicolverb",
	Name:     "GlicolVerb",
	Version:  "0.1.0",
	Vendor:   "vmunix",
	Category: "Fx|Delay|Reverb",
}

// Config selects the router's collaborators.
type Config struct {
	// Engine runs the script program. Nil selects engine.Passthrough.
	Engine engine.Engine
	// Logger receives diagnostics. Nil selects debug.Default().
	Logger *debug.Logger
	// Buses is the advertised layout. Nil selects stereo in, stereo out.
	Buses *bus.Configuration
	// QueueCapacity bounds in-flight script updates.
	QueueCapacity int
	// LatencyBlocks primes the bridge output with this many engine blocks
	// of silence so host sizes that are not a multiple of the engine block
	// never underrun.
	LatencyBlocks int
	// Script is loaded at Initialize unless a restored session supplies one.
	Script string
}

// DefaultConfig returns the unprimed passthrough configuration.
func DefaultConfig() Config {
	return Config{
		QueueCapacity: DefaultQueueCapacity,
	}
}

// Router is the audio processor. ProcessAudio runs on the audio thread;
// Scripts().Submit and the parameter registry may be used from any
// goroutine.
type Router struct {
	*plugin.BaseProcessor

	engine   engine.Engine
	runner   *engine.Runner
	bridge   *engine.BlockBridge
	injector *engine.Injector
	eq       *eq.EQ
	delay    *delay.Delay
	scripts  *ScriptQueue
	diag     *debug.Diagnostics

	p          bindings
	inputGain  *param.SmoothedParameter
	outputGain *param.SmoothedParameter
	dryWet     *param.SmoothedParameter

	dry         []float32
	active      string
	seed        string
	restored    string
	highCut     float64
	initialized bool

	samples    uint64
	inputPeak  float32
	outputPeak float32
}

var _ plugin.Processor = (*Router)(nil)

// New creates a router from cfg.
func New(cfg Config) (*Router, error) {
	params, err := NewParameters()
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}

	if cfg.Engine == nil {
		cfg.Engine = engine.NewPassthrough()
	}
	if cfg.Logger == nil {
		cfg.Logger = debug.Default()
	}
	if cfg.Buses == nil {
		cfg.Buses = bus.NewEffectStereo()
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = DefaultQueueCapacity
	}

	r := &Router{
		BaseProcessor: plugin.NewBaseProcessor(Info, params, cfg.Buses),
		engine:        cfg.Engine,
		bridge:        engine.NewBlockBridge(cfg.Engine.BlockSize()),
		injector:      engine.NewInjector(engine.DialectOf(cfg.Engine)),
		eq:            eq.New(dsp.SampleRate44k1),
		delay:         delay.New(dsp.SampleRate44k1),
		scripts:       NewScriptQueue(cfg.QueueCapacity),
		diag:          debug.NewDiagnostics(cfg.Logger),
		p:             bind(params),
		dry:           make([]float32, dsp.MaxBufferSize),
		seed:          cfg.Script,
	}
	r.runner = engine.NewRunner(cfg.Engine, r.diag)
	r.bridge.SetReporter(r.diag.Underrun)
	r.bridge.SetLatencyBlocks(cfg.LatencyBlocks)

	r.inputGain = param.NewSmoothedParameter(r.p.inputGain, param.LogarithmicSmoothing, GainSmoothingMs, gainTransform)
	r.outputGain = param.NewSmoothedParameter(r.p.outputGain, param.LogarithmicSmoothing, GainSmoothingMs, gainTransform)
	r.dryWet = param.NewSmoothedParameter(r.p.dryWet, param.LinearSmoothing, DryWetSmoothingMs, nil)

	r.OnReset(r.Reset)
	r.State().SetCustomState(r.saveScript, r.loadScript)
	return r, nil
}

// Initialize prepares every stage for sampleRate and loads the seed script.
// maxBlockSize may exceed the internal work size; longer host buffers are
// processed in sub-blocks.
func (r *Router) Initialize(sampleRate float64, maxBlockSize int32) error {
	if sampleRate <= 0 {
		return fmt.Errorf("initialize: invalid sample rate %v", sampleRate)
	}
	if err := r.BaseProcessor.Initialize(sampleRate, maxBlockSize); err != nil {
		return err
	}
	if err := r.engine.Initialize(sampleRate); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	r.eq.SetSampleRate(sampleRate)
	r.delay.SetSampleRate(sampleRate)
	r.bridge.SetSampleRate(sampleRate)
	r.diag.SetSampleRate(sampleRate)
	r.inputGain.UpdateSampleRate(sampleRate)
	r.outputGain.UpdateSampleRate(sampleRate)
	r.dryWet.UpdateSampleRate(sampleRate)
	r.highCut = 0
	r.syncParameters()

	r.Reset()

	if r.seed != "" {
		r.applyScript(r.seed)
	}
	r.initialized = true
	return nil
}

// Reset clears the bridge, the filters and the runner. Parameters and the
// active program are kept.
func (r *Router) Reset() {
	r.bridge.Clear()
	r.eq.Reset()
	r.delay.Reset()
	r.runner.Reset()
	r.inputGain.Snap()
	r.outputGain.Snap()
	r.dryWet.Snap()
	clear(r.dry)
	r.inputPeak, r.outputPeak = 0, 0
}

// LatencySamples reports the bridge priming latency.
func (r *Router) LatencySamples() int32 {
	return int32(r.bridge.LatencySamples())
}

// TailSamples reports the longest delay tail.
func (r *Router) TailSamples() int32 {
	return int32(delay.MaxDelaySeconds * r.SampleRate())
}

// Scripts returns the control-side handle for program updates.
func (r *Router) Scripts() *ScriptQueue { return r.scripts }

// Underruns returns the cumulative number of silent bridge frames.
func (r *Router) Underruns() uint64 { return r.bridge.Underruns() }

// Bridge exposes the block bridge counters.
func (r *Router) Bridge() *engine.BlockBridge { return r.bridge }

// Engine returns the script engine.
func (r *Router) Engine() engine.Engine { return r.engine }

// ActiveScript returns the program text running on the audio thread. Only
// call it from the audio thread or while processing is stopped.
func (r *Router) ActiveScript() string { return r.active }

// SaveState writes parameters and the last accepted script.
func (r *Router) SaveState(w io.Writer) error {
	return r.State().Save(w)
}

// LoadState restores parameters and the script. The script becomes the seed
// for the next Initialize and, if the router is already running, is queued
// for the audio thread.
func (r *Router) LoadState(rd io.Reader) error {
	if err := r.State().Load(rd); err != nil {
		return err
	}
	text := r.restored
	r.restored = ""
	if r.initialized && text != "" {
		if err := r.scripts.Submit(text); err != nil {
			return fmt.Errorf("restore script: %w", err)
		}
	}
	return nil
}

func (r *Router) saveScript(w io.Writer) error {
	return state.WriteString(w, r.scripts.PersistedScript())
}

func (r *Router) loadScript(rd io.Reader) error {
	text, err := state.ReadString(rd)
	if err != nil {
		return err
	}
	if text != "" {
		r.seed = text
		r.restored = text
		r.scripts.persist(text)
	}
	return nil
}

// ProcessAudio runs one host callback. It never blocks and, with a
// non-allocating engine and no pending script update, never allocates.
func (r *Router) ProcessAudio(ctx *process.Context) {
	if !r.initialized {
		ctx.Clear()
		return
	}
	r.drainScripts()
	r.syncParameters()

	n := ctx.NumSamples()
	if n <= len(r.dry) {
		r.processBlock(ctx, n)
	} else {
		for off := 0; off < n; off += len(r.dry) {
			m := min(len(r.dry), n-off)
			r.processBlock(ctx.Sub(off, m), m)
		}
	}

	r.samples += uint64(n)
	if r.diag.Tick(n) {
		r.diag.Summarize(debug.Summary{
			Samples:         r.samples,
			Blocks:          r.runner.Blocks(),
			InputPeak:       r.inputPeak,
			OutputPeak:      r.outputPeak,
			OutputAvailable: r.bridge.OutputAvailable(),
			Underruns:       r.bridge.Underruns(),
			Script:          r.active,
		})
		r.inputPeak, r.outputPeak = 0, 0
	}
}

func (r *Router) drainScripts() {
	for {
		u, ok := r.scripts.receive()
		if !ok {
			return
		}
		r.applyScript(u.Text)
	}
}

// applyScript injects the current controls into text and hands it to the
// engine. A rejected program leaves the previous one running.
func (r *Router) applyScript(text string) {
	err := r.engine.UpdateProgram(r.injector.Inject(r.p.controlValues(), text))
	if err != nil {
		if !errors.Is(err, engine.ErrProgramRejected) {
			err = fmt.Errorf("%w: %w", engine.ErrProgramRejected, err)
		}
		r.diag.ScriptRejected(err)
	} else {
		r.active = text
		r.scripts.persist(text)
		r.diag.ScriptAccepted(text)
	}
	r.scripts.report(ScriptStatus{Text: text, Err: err})
}

// configureEQ copies the band parameters into e.
func (p *bindings) configureEQ(e *eq.EQ) {
	e.SetBypassed(p.eqBypass.GetBool())
	e.SetLowFreq(p.lowFreq.GetPlainValue())
	e.SetLowGain(p.lowGain.GetPlainValue())
	e.SetMidFreq(p.midFreq.GetPlainValue())
	e.SetMidGain(p.midGain.GetPlainValue())
	e.SetMidQ(p.midQ.GetPlainValue())
	e.SetHighFreq(p.highFreq.GetPlainValue())
	e.SetHighGain(p.highGain.GetPlainValue())
}

// EQResponse measures the band filters as the parameters currently set
// them, on a private EQ so the live filter state is untouched. Bypass is
// ignored. size is the impulse length in samples.
func (r *Router) EQResponse(sampleRate float64, size int) *analysis.Response {
	e := eq.New(sampleRate)
	r.p.configureEQ(e)
	return analysis.MeasureResponse(e.Process, sampleRate, size)
}

// syncParameters pulls block-rate values into the fixed stages.
func (r *Router) syncParameters() {
	p := &r.p

	p.configureEQ(r.eq)

	r.delay.SetBypassed(p.delayBypass.GetBool())
	r.delay.SetTimeMs(p.delayTime.GetPlainValue())
	r.delay.SetFeedback(float32(p.delayFeedback.GetPlainValue()))
	r.delay.SetMix(float32(p.delayMix.GetPlainValue()))
	if hc := p.delayHighCut.GetPlainValue(); hc != r.highCut {
		r.highCut = hc
		r.delay.SetHighCut(hc)
	}

	r.inputGain.Sync()
	r.outputGain.Sync()
	r.dryWet.Sync()
}

// processBlock handles n <= len(r.dry) frames of ctx.
func (r *Router) processBlock(ctx *process.Context, n int) {
	for i := 0; i < n; i++ {
		l, rt := ctx.InputFrame(i)
		g := float32(r.inputGain.Next())
		mono := (l*g + rt*g) * 0.5
		r.inputPeak = max(r.inputPeak, abs(mono))

		// Stereo-linked EQ on a mono signal: the left output is the result.
		s := fx.ProcessWithBypass(r.eq, dsp.Mono(mono)).Left
		r.dry[i] = s
		r.bridge.PushInput(s)
	}

	for r.bridge.HasBlock() {
		left, right := r.runner.Run(r.bridge.PopInputBlock())
		r.bridge.PushOutput(left, right)
	}

	for i := 0; i < n; i++ {
		l, rt := r.bridge.PopOutput()
		wet := fx.ProcessWithBypass(r.delay, dsp.NewStereo(l, rt))

		mix := float32(r.dryWet.Next())
		g := float32(r.outputGain.Next())
		out := dsp.Mono(r.dry[i]).Mix(wet, mix).Scale(g)

		r.outputPeak = max(r.outputPeak, abs(out.Left), abs(out.Right))
		ctx.WriteOutputFrame(i, out.Left, out.Right)
	}
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}
