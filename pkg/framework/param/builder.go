package param

import (
	"fmt"
	"strings"
)

// Builder provides a fluent API for creating parameters
type Builder struct {
	p *Parameter
}

// New starts an automatable 0-1 parameter.
func New(id uint32, name string) *Builder {
	return &Builder{p: &Parameter{
		ID:        id,
		Name:      name,
		ShortName: name,
		Max:       1,
		Flags:     CanAutomate,
	}}
}

// ShortName sets the name scripts and the command line use.
func (b *Builder) ShortName(name string) *Builder {
	b.p.ShortName = name
	return b
}

// Range sets the plain range.
func (b *Builder) Range(lo, hi float64) *Builder {
	b.p.Min, b.p.Max = lo, hi
	return b
}

// Default sets the default in plain units. Call it after Range.
func (b *Builder) Default(plain float64) *Builder {
	b.p.DefaultValue = b.p.Normalize(plain)
	return b
}

// Unit sets the display unit.
func (b *Builder) Unit(unit string) *Builder {
	b.p.Unit = unit
	return b
}

// Steps makes the parameter discrete with count steps.
func (b *Builder) Steps(count int32) *Builder {
	b.p.StepCount = count
	return b
}

// Formatter sets display formatting and parsing in plain units. A nil
// parse accepts bare numbers.
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.p.format, b.p.parse = format, parse
	return b
}

// Build returns the parameter set to its default.
func (b *Builder) Build() *Parameter {
	b.p.ResetToDefault()
	return b.p
}

// GainParameter is a symmetric dB range centred on 0 dB.
func GainParameter(id uint32, name string, rangeDB float64) *Builder {
	return New(id, name).Range(-rangeDB, rangeDB).Default(0).Unit("dB").
		Formatter(signedDecibels, parseDecibels)
}

// MixParameter is a 0-1 blend shown as a percentage.
func MixParameter(id uint32, name string, def float64) *Builder {
	return New(id, name).Default(def).Unit("%").Formatter(percent, parsePercent)
}

// KnobParameter is a bare 0-1 macro control defaulting to the middle.
func KnobParameter(id uint32, name string) *Builder {
	return New(id, name).Default(0.5).Formatter(twoDecimals, nil)
}

// FrequencyParameter is a range in Hz.
func FrequencyParameter(id uint32, name string, lo, hi, def float64) *Builder {
	return New(id, name).Range(lo, hi).Default(def).Unit("Hz").Formatter(hertz, parseHertz)
}

// RateParameter is a modulation rate in Hz.
func RateParameter(id uint32, name string, lo, hi, def float64) *Builder {
	return New(id, name).Range(lo, hi).Default(def).Unit("Hz").Formatter(lfoRate, parseHertz)
}

// TimeParameter is a range in milliseconds that also accepts seconds.
func TimeParameter(id uint32, name string, loMs, hiMs, defMs float64) *Builder {
	return New(id, name).Range(loMs, hiMs).Default(defMs).Unit("ms").Formatter(milliseconds, parseMilliseconds)
}

// QParameter is a filter quality factor.
func QParameter(id uint32, name string, lo, hi, def float64) *Builder {
	return New(id, name).Range(lo, hi).Default(def).Formatter(func(q float64) string {
		return fmt.Sprintf("Q %.2f", q)
	}, nil)
}

// FeedbackParameter is a 0-hi amount shown as a percentage.
func FeedbackParameter(id uint32, name string, hi, def float64) *Builder {
	return New(id, name).Range(0, hi).Default(def).Unit("%").Formatter(percent, parsePercent)
}

// DriveParameter is a gain multiplier.
func DriveParameter(id uint32, name string, lo, hi, def float64) *Builder {
	return New(id, name).Range(lo, hi).Default(def).Unit("x").Formatter(func(v float64) string {
		return fmt.Sprintf("%.2fx", v)
	}, parseMultiplier)
}

// SwitchParameter is a two-state control labelled off and on.
func SwitchParameter(id uint32, name, off, on string) *Builder {
	return New(id, name).Steps(1).Formatter(func(v float64) string {
		if v >= 0.5 {
			return on
		}
		return off
	}, func(s string) (float64, error) {
		s = strings.TrimSpace(s)
		switch {
		case strings.EqualFold(s, off):
			return 0, nil
		case strings.EqualFold(s, on):
			return 1, nil
		}
		return parseSwitch(s)
	})
}

// BypassParameter is the switch that takes a stage out of the signal path.
func BypassParameter(id uint32, name string) *Builder {
	b := SwitchParameter(id, name, "Active", "Bypassed")
	b.p.Flags |= IsBypass
	return b
}
