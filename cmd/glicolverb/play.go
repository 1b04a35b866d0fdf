package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/vmunix/glicol-verb/internal/playback"
	"github.com/vmunix/glicol-verb/pkg/dsp/analysis"
	"github.com/vmunix/glicol-verb/pkg/framework/debug"
)

const defaultPollInterval = 250 * time.Millisecond

func runPlay(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("play", "input.wav", stderr)
	var opts hostOptions
	opts.register(fs)
	poll := fs.Duration("poll", defaultPollInterval, "Script file poll interval")
	duration := fs.Duration("for", 0, "Stop after this long (0 plays until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("play: need an input file: %w", errUsage)
	}
	if *poll <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", *poll)
	}

	clip, rate, err := readWAV(fs.Arg(0))
	if err != nil {
		return err
	}
	h, err := opts.open(float64(rate), len(clip), stderr)
	if err != nil {
		return err
	}
	defer h.Close()

	src := playback.NewRouterSource(h.router, clip, opts.block, true)
	meter := analysis.NewLevelMeter(float64(rate), meterWindow.Seconds())
	src.SetMeter(meter)
	player, err := playback.Open(rate, src)
	if err != nil {
		return err
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	player.Start()
	fmt.Fprintf(stdout, "Playing %s in a loop, Ctrl-C to stop\n", fs.Arg(0))
	status := newStatusLine(stdout)

	var watcher *scriptWatcher
	if opts.script != "" {
		watcher = newScriptWatcher(opts.script, h.router.Scripts(), stdout)
		fmt.Fprintf(stdout, "Watching %s for changes\n", opts.script)
	}

	ticker := time.NewTicker(*poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			status.clear()
			fmt.Fprintf(stdout, "Stopped after %d frames\n", src.Frames())
			fmt.Fprintf(stdout, "Levels: %s\n", meter.Levels())
			return h.save()
		case st := <-h.router.Scripts().Status():
			status.clear()
			printStatus(stdout, st)
		case <-ticker.C:
			if err := player.Err(); err != nil {
				return fmt.Errorf("audio device: %w", err)
			}
			if h.log.Enabled(debug.LogLevelDebug) {
				h.log.Debug("levels: %s", meter.Levels())
			}
			if watcher != nil {
				status.clear()
				if err := watcher.poll(); err != nil {
					fmt.Fprintf(stderr, "%v\n", err)
				}
			}
			status.show(meter.Levels().String())
		}
	}
}
