package main

import (
	"fmt"
	"io"
	"time"

	"github.com/vmunix/glicol-verb/internal/playback"
	"github.com/vmunix/glicol-verb/pkg/dsp/analysis"
	"github.com/vmunix/glicol-verb/pkg/framework/debug"
)

const defaultTailSeconds = 2.0

// meterWindow is the RMS window of the level readout.
const meterWindow = 300 * time.Millisecond

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("render", "input.wav output.wav", stderr)
	var opts hostOptions
	opts.register(fs)
	tail := fs.Float64("tail", defaultTailSeconds, "Seconds of silence rendered after the input")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return fmt.Errorf("render: need input and output files: %w", errUsage)
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

	meter := analysis.NewLevelMeter(float64(rate), meterWindow.Seconds())
	left, right := renderClip(h, clip, rate, max(*tail, 0), meter)

	analyzer := debug.NewAudioAnalyzer()
	for _, issue := range append(analyzer.Check(left, "left"), analyzer.Check(right, "right")...) {
		h.log.Warn("%s", issue)
	}
	debug.LogBufferStats(h.log, left, "left")
	debug.LogBufferStats(h.log, right, "right")
	if u := h.router.Underruns(); u > 0 {
		h.log.Warn("%d samples of underrun silence", u)
	}
	if err := firstRejection(h.router.Scripts()); err != nil {
		return err
	}

	if err := writeWAV(fs.Arg(1), rate, [][]float32{left, right}); err != nil {
		return err
	}
	if err := h.save(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Rendered: %s (%d frames, stereo)\n", fs.Arg(1), len(left))
	fmt.Fprintf(stdout, "Levels: %s\n", meter.Levels())
	return nil
}

// renderClip runs clip plus tail seconds of silence through the host's
// router in callbacks of the configured block size.
func renderClip(h *host, clip [][]float32, rate int, tail float64, meter *analysis.LevelMeter) (left, right []float32) {
	frames := int(tail * float64(rate))
	if len(clip) > 0 {
		frames += len(clip[0])
	}
	left = make([]float32, frames)
	right = make([]float32, frames)

	block := h.opts.block
	src := playback.NewRouterSource(h.router, clip, block, false)
	src.SetMeter(meter)
	prof := debug.NewLoadProfiler(float64(rate), block)
	for off := 0; off < frames; off += block {
		end := min(off+block, frames)
		stop := prof.Start(debug.ProcessSection)
		src.Fill(left[off:end], right[off:end])
		stop()
	}
	h.log.Info("%s", prof.LoadReport())
	return left, right
}
