// Package param provides lock-free parameters, a registry and smoothing for
// values shared between the control thread and the audio thread.
package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsBypass    uint32 = 1 << 16
)

// Parameter is a named control with a plain range and an atomically stored
// normalized value. Everything except the value is fixed once built.
type Parameter struct {
	ID           uint32
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // normalized
	StepCount    int32
	Flags        uint32

	value atomic.Uint64

	format func(plain float64) string
	parse  func(s string) (plain float64, err error)
}

// GetValue returns the normalized value.
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue stores a normalized value, clamped to [0, 1]. NaN stores 0.
func (p *Parameter) SetValue(v float64) {
	switch {
	case !(v >= 0):
		v = 0
	case v > 1:
		v = 1
	}
	if p.StepCount > 0 {
		steps := float64(p.StepCount)
		v = math.Round(v*steps) / steps
	}
	p.value.Store(math.Float64bits(v))
}

// GetPlainValue returns the value in plain units.
func (p *Parameter) GetPlainValue() float64 { return p.Denormalize(p.GetValue()) }

// SetPlainValue stores a value given in plain units.
func (p *Parameter) SetPlainValue(plain float64) { p.SetValue(p.Normalize(plain)) }

// GetBool reports whether a switch is on.
func (p *Parameter) GetBool() bool { return p.GetValue() >= 0.5 }

// ResetToDefault restores the default value.
func (p *Parameter) ResetToDefault() { p.SetValue(p.DefaultValue) }

// DefaultPlain returns the default in plain units.
func (p *Parameter) DefaultPlain() float64 { return p.Denormalize(p.DefaultValue) }

// Normalize maps a plain value into [0, 1].
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	return math.Min(math.Max((plain-p.Min)/(p.Max-p.Min), 0), 1)
}

// Denormalize maps a normalized value back to plain units.
func (p *Parameter) Denormalize(v float64) float64 {
	return p.Min + v*(p.Max-p.Min)
}

// FormatValue renders a normalized value for display.
func (p *Parameter) FormatValue(v float64) string {
	plain := p.Denormalize(v)
	switch {
	case p.format != nil:
		return p.format(plain)
	case p.StepCount > 0:
		return strconv.FormatFloat(plain, 'f', 0, 64)
	}
	return strconv.FormatFloat(plain, 'f', 2, 64)
}

// ParseValue reads a display string, with or without its unit, and returns
// the normalized value.
func (p *Parameter) ParseValue(s string) (float64, error) {
	parse := p.parse
	if parse == nil {
		parse = parseNumber
	}
	plain, err := parse(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.Name, err)
	}
	return p.Normalize(plain), nil
}
