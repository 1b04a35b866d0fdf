package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vmunix/glicol-verb/internal/playback"
	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/engine"
	"github.com/vmunix/glicol-verb/pkg/engine/luaengine"
	"github.com/vmunix/glicol-verb/pkg/framework/bus"
	"github.com/vmunix/glicol-verb/pkg/framework/debug"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/router"
)

// setting is one -set name=value pair. The value is parsed by the
// parameter, so units are optional: delay_time=1s, dry_wet=30%.
type setting struct {
	name  string
	value string
}

// settings collects repeated -set flags.
type settings []setting

func (s *settings) String() string {
	parts := make([]string, len(*s))
	for i, st := range *s {
		parts[i] = st.name + "=" + st.value
	}
	return strings.Join(parts, ",")
}

func (s *settings) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	name, value = strings.TrimSpace(name), strings.TrimSpace(value)
	if !ok || name == "" || value == "" {
		return fmt.Errorf("want name=value, got %q", v)
	}
	*s = append(*s, setting{name: name, value: value})
	return nil
}

// apply sets every parameter by name or short name.
func (s settings) apply(reg *param.Registry) error {
	for _, st := range s {
		p := reg.GetByName(st.name)
		if p == nil {
			return fmt.Errorf("set %s: %w", st.name, param.ErrUnknownParameter)
		}
		v, err := p.ParseValue(st.value)
		if err != nil {
			return fmt.Errorf("set %s: %w", st.name, err)
		}
		p.SetValue(v)
	}
	return nil
}

// hostOptions are the flags render and play share.
type hostOptions struct {
	script    string
	engine    string
	block     int
	latency   int
	logLevel  string
	logFile   string
	loadState string
	saveState string
	sets      settings
}

func (o *hostOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.script, "script", "", "Script file loaded into the engine")
	fs.StringVar(&o.engine, "engine", "lua", "Script engine: lua, passthrough")
	fs.IntVar(&o.block, "block", dsp.DefaultBufferSize, "Host callback size in frames")
	fs.IntVar(&o.latency, "latency", 1, "Engine blocks of output priming (0 disables)")
	fs.StringVar(&o.logLevel, "log", "info", "Log level: debug, info, warn, error, off")
	fs.StringVar(&o.logFile, "logfile", "", "Append log output to this file instead of stderr")
	fs.StringVar(&o.loadState, "load", "", "Restore parameters and script from a state file")
	fs.StringVar(&o.saveState, "save", "", "Write parameters and script to a state file on exit")
	fs.Var(&o.sets, "set", "Set a parameter, name=value with optional unit (repeatable)")
}

// host owns a configured router and the resources behind it.
type host struct {
	router  *router.Router
	log     *debug.Logger
	opts    *hostOptions
	closers []func() error
}

// open builds and initializes a router for a clip of the given rate and
// channel count.
func (o *hostOptions) open(sampleRate float64, channels int, stderr io.Writer) (*host, error) {
	if o.block < 1 {
		return nil, fmt.Errorf("block size must be positive, got %d", o.block)
	}
	level, err := debug.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}

	h := &host{opts: o}
	if o.logFile != "" {
		l, closer, err := debug.NewFileLogger(o.logFile, debug.DefaultPrefix, debug.DefaultFlags)
		if err != nil {
			return nil, err
		}
		h.log = l
		h.closers = append(h.closers, closer.Close)
	} else {
		h.log = debug.New(stderr, debug.DefaultPrefix, debug.DefaultFlags)
	}
	h.log.SetLevel(level)

	if err := h.build(sampleRate, channels); err != nil {
		_ = h.Close()
		return nil, err
	}
	return h, nil
}

func (h *host) build(sampleRate float64, channels int) error {
	o := h.opts

	layout := bus.Match(channels, playback.Channels)
	if layout == nil {
		return fmt.Errorf("unsupported input: %d channels, want mono or stereo", channels)
	}

	var eng engine.Engine
	switch o.engine {
	case "lua":
		lua := luaengine.New()
		h.closers = append(h.closers, func() error { lua.Close(); return nil })
		eng = lua
	case "passthrough":
		eng = engine.NewPassthrough()
	default:
		return fmt.Errorf("unknown engine %q", o.engine)
	}

	script := ""
	if o.script != "" {
		text, err := os.ReadFile(o.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		script = string(text)
	}

	cfg := router.DefaultConfig()
	cfg.Engine = eng
	cfg.Logger = h.log
	cfg.LatencyBlocks = o.latency
	cfg.Script = script
	cfg.Buses = layout

	r, err := router.New(cfg)
	if err != nil {
		return err
	}
	h.router = r

	if o.loadState != "" {
		f, err := os.Open(o.loadState)
		if err != nil {
			return fmt.Errorf("load state: %w", err)
		}
		err = r.LoadState(f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("load state %s: %w", o.loadState, err)
		}
	}
	if err := o.sets.apply(r.Parameters()); err != nil {
		return err
	}

	if err := r.Initialize(sampleRate, int32(o.block)); err != nil {
		return err
	}
	// An explicit script overrides the one stored in the state file.
	if o.loadState != "" && script != "" {
		if err := r.Scripts().Submit(script); err != nil {
			return err
		}
	}
	h.log.Info("%s: %.0f Hz, %s, block %d, engine %s, latency %d samples",
		router.Info, sampleRate, layout.Name(), o.block, o.engine, r.LatencySamples())

	return firstRejection(r.Scripts())
}

// firstRejection drains pending script statuses and returns the first
// rejection.
func firstRejection(q *router.ScriptQueue) error {
	var err error
	for {
		select {
		case st := <-q.Status():
			if !st.Accepted() && err == nil {
				err = st.Err
			}
		default:
			return err
		}
	}
}

// save writes the router state if -save was given.
func (h *host) save() error {
	if h.opts.saveState == "" {
		return nil
	}
	f, err := os.Create(h.opts.saveState)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := h.router.SaveState(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("save state: %w", err)
	}
	return f.Close()
}

// Close releases the engine and log file.
func (h *host) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		errs = append(errs, h.closers[i]())
	}
	h.closers = nil
	return errors.Join(errs...)
}
