package engine

import (
	"fmt"
	"strings"
)

// Control names an injectable script control.
type Control int

// Controls in injection order.
const (
	Knob1 Control = iota
	Knob2
	Knob3
	Knob4
	Drive
	Feedback
	Mix
	Rate
	NumControls
)

var controlNames = [NumControls]string{
	"knob1", "knob2", "knob3", "knob4", "drive", "feedback", "mix", "rate",
}

// String returns the name scripts use for c.
func (c Control) String() string {
	if c < 0 || c >= NumControls {
		return fmt.Sprintf("Control(%d)", int(c))
	}
	return controlNames[c]
}

// ParseControl maps a control name back to its Control.
func ParseControl(name string) (Control, bool) {
	for i, n := range controlNames {
		if n == name {
			return Control(i), true
		}
	}
	return 0, false
}

// ControlValues is a snapshot of every control, indexed by Control.
type ControlValues [NumControls]float32

// Dialect describes how a script language references and binds a control.
type Dialect interface {
	// Reference is the token whose presence in a script means it uses name.
	Reference(name string) string
	// Binding is the line that defines name as value.
	Binding(name string, value float32) string
}

// GlicolDialect binds controls as constant signal nodes: `~drive: sig 2.000000`.
type GlicolDialect struct{}

func (GlicolDialect) Reference(name string) string { return "~" + name }

func (GlicolDialect) Binding(name string, value float32) string {
	return fmt.Sprintf("~%s: sig %.6f", name, value)
}

// LuaDialect binds controls as fields of the global ctl table:
// `ctl.drive = 2.000000`.
type LuaDialect struct{}

func (LuaDialect) Reference(name string) string { return "ctl." + name }

func (LuaDialect) Binding(name string, value float32) string {
	return fmt.Sprintf("ctl.%s = %.6f", name, value)
}

// Injector prepends control bindings to a script. It is pure: the output
// depends only on the values and the script.
type Injector struct {
	dialect Dialect
}

// NewInjector creates an injector for d, or GlicolDialect when d is nil.
func NewInjector(d Dialect) *Injector {
	if d == nil {
		d = GlicolDialect{}
	}
	return &Injector{dialect: d}
}

// Dialect returns the injector's dialect.
func (in *Injector) Dialect() Dialect { return in.dialect }

// Inject returns script preceded by one binding line per referenced control.
// A script that references no control is returned unchanged.
func (in *Injector) Inject(values ControlValues, script string) string {
	var sb strings.Builder
	for c := range NumControls {
		name := controlNames[c]
		if !strings.Contains(script, in.dialect.Reference(name)) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(in.dialect.Binding(name, values[c]))
	}
	if sb.Len() == 0 {
		return script
	}
	sb.WriteByte('\n')
	sb.WriteString(script)
	return sb.String()
}
