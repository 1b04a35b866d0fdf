// Package plugin defines the host-facing processor contract and a base that
// carries identity, parameters, buses and session state.
package plugin

import (
	"github.com/vmunix/glicol-verb/pkg/framework/bus"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/framework/process"
	"github.com/vmunix/glicol-verb/pkg/framework/state"
)

// Processor is what a host drives. ProcessAudio runs on the audio thread
// and must not allocate or block; everything else is called with processing
// stopped.
type Processor interface {
	Info() Info
	// Initialize precedes the first ProcessAudio and follows any change of
	// sample rate or maximum block size.
	Initialize(sampleRate float64, maxBlockSize int32) error
	ProcessAudio(ctx *process.Context)
	SetActive(active bool) error

	Parameters() *param.Registry
	Buses() *bus.Configuration
	LatencySamples() int32
	TailSamples() int32
}

// BaseProcessor implements the bookkeeping half of Processor. Embedders
// supply ProcessAudio and override what they need.
type BaseProcessor struct {
	info         Info
	params       *param.Registry
	buses        *bus.Configuration
	state        *state.Manager
	sampleRate   float64
	maxBlockSize int32
	active       bool
	onReset      func()
}

// NewBaseProcessor creates a base for info. Nil params start an empty
// registry; nil buses select the stereo effect layout. Saved state is
// tagged with info.UID.
func NewBaseProcessor(info Info, params *param.Registry, buses *bus.Configuration) *BaseProcessor {
	if params == nil {
		params = param.NewRegistry()
	}
	if buses == nil {
		buses = bus.NewEffectStereo()
	}
	return &BaseProcessor{
		info:   info,
		params: params,
		buses:  buses,
		state:  state.NewManager(params, info.UID()),
	}
}

func (b *BaseProcessor) Info() Info                  { return b.info }
func (b *BaseProcessor) Parameters() *param.Registry { return b.params }
func (b *BaseProcessor) Buses() *bus.Configuration   { return b.buses }
func (b *BaseProcessor) State() *state.Manager       { return b.state }
func (b *BaseProcessor) SampleRate() float64         { return b.sampleRate }
func (b *BaseProcessor) MaxBlockSize() int32         { return b.maxBlockSize }
func (b *BaseProcessor) Active() bool                { return b.active }

// LatencySamples and TailSamples report none until overridden.
func (b *BaseProcessor) LatencySamples() int32 { return 0 }
func (b *BaseProcessor) TailSamples() int32    { return 0 }

// Initialize records the processing setup.
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate
	b.maxBlockSize = maxBlockSize
	return nil
}

// SetActive records the state and runs the reset hook on deactivation.
func (b *BaseProcessor) SetActive(active bool) error {
	b.active = active
	if !active && b.onReset != nil {
		b.onReset()
	}
	return nil
}

// OnReset sets the hook SetActive(false) runs.
func (b *BaseProcessor) OnReset(fn func()) { b.onReset = fn }
