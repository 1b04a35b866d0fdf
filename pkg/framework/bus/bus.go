// Package bus describes the audio channel layouts a processor accepts.
package bus

import (
	"errors"
	"fmt"
)

// Direction tells inputs from outputs.
type Direction int32

const (
	DirectionInput Direction = iota
	DirectionOutput
)

// Type marks a bus as the main signal path or an auxiliary one.
type Type int32

const (
	TypeMain Type = iota
	TypeAux
)

// Info describes one bus.
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration is an ordered list of buses. The first bus in each
// direction is the main one.
type Configuration struct {
	name  string
	buses []Info
}

// Name returns the layout name.
func (c *Configuration) Name() string { return c.name }

// GetBusCount counts the buses in direction.
func (c *Configuration) GetBusCount(direction Direction) int32 {
	var n int32
	for _, b := range c.buses {
		if b.Direction == direction {
			n++
		}
	}
	return n
}

// GetBusInfo returns the index-th bus in direction, or nil.
func (c *Configuration) GetBusInfo(direction Direction, index int32) *Info {
	for i := range c.buses {
		if c.buses[i].Direction != direction {
			continue
		}
		if index == 0 {
			return &c.buses[i]
		}
		index--
	}
	return nil
}

// MainChannels returns the width of the main bus in direction, 0 if absent.
func (c *Configuration) MainChannels(direction Direction) int {
	if b := c.GetBusInfo(direction, 0); b != nil {
		return int(b.ChannelCount)
	}
	return 0
}

// Accepts reports whether the main buses are exactly inputs wide and
// outputs wide.
func (c *Configuration) Accepts(inputs, outputs int) bool {
	return c.MainChannels(DirectionInput) == inputs && c.MainChannels(DirectionOutput) == outputs
}

// Builder assembles a Configuration and collects errors until Build.
type Builder struct {
	cfg  Configuration
	errs []error
}

// NewBuilder starts a layout called name.
func NewBuilder(name string) *Builder {
	return &Builder{cfg: Configuration{name: name}}
}

// WithAudioInput appends an input bus of the given width.
func (b *Builder) WithAudioInput(name string, channels int32) *Builder {
	return b.add(DirectionInput, name, channels)
}

// WithAudioOutput appends an output bus of the given width.
func (b *Builder) WithAudioOutput(name string, channels int32) *Builder {
	return b.add(DirectionOutput, name, channels)
}

func (b *Builder) WithMonoInput(name string) *Builder    { return b.WithAudioInput(name, 1) }
func (b *Builder) WithStereoInput(name string) *Builder  { return b.WithAudioInput(name, 2) }
func (b *Builder) WithStereoOutput(name string) *Builder { return b.WithAudioOutput(name, 2) }

func (b *Builder) add(dir Direction, name string, channels int32) *Builder {
	if channels <= 0 {
		b.errs = append(b.errs, fmt.Errorf("bus %q: invalid channel count %d", name, channels))
		return b
	}
	info := Info{Direction: dir, ChannelCount: channels, Name: name, BusType: TypeMain, IsActive: true}
	if b.cfg.GetBusCount(dir) > 0 {
		info.BusType, info.IsActive = TypeAux, false
	}
	b.cfg.buses = append(b.cfg.buses, info)
	return b
}

// Build returns the layout, or every error recorded while adding buses.
// A layout without outputs is rejected.
func (b *Builder) Build() (*Configuration, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if b.cfg.GetBusCount(DirectionOutput) == 0 {
		return nil, fmt.Errorf("layout %q has no output bus", b.cfg.name)
	}
	cfg := b.cfg
	cfg.buses = append([]Info(nil), b.cfg.buses...)
	return &cfg, nil
}

// MustBuild is Build for layouts fixed at compile time.
func (b *Builder) MustBuild() *Configuration {
	cfg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return cfg
}
