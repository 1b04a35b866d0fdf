package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/engine"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
	"github.com/vmunix/glicol-verb/pkg/router"
)

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(nil, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, stderr.String(), "Commands:")

	err = run([]string{"bogus"}, &stdout, &stderr)
	require.ErrorIs(t, err, errUsage)
	assert.Contains(t, err.Error(), `"bogus"`)

	stdout.Reset()
	require.NoError(t, run([]string{"help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "render")
}

func TestSettings(t *testing.T) {
	var s settings
	require.NoError(t, s.Set("delay_time=1s"))
	require.NoError(t, s.Set(" dry_wet = 25% "))
	require.NoError(t, s.Set("eq_bypass=on"))
	assert.Equal(t, "delay_time=1s,dry_wet=25%,eq_bypass=on", s.String())

	assert.Error(t, s.Set("delay_time"))
	assert.Error(t, s.Set("=1"))
	assert.Error(t, s.Set("delay_time="))

	reg, err := router.NewParameters()
	require.NoError(t, err)
	require.NoError(t, s.apply(reg))
	assert.InDelta(t, 1000, reg.Get(router.ParamDelayTime).GetPlainValue(), 1e-6)
	assert.InDelta(t, 0.25, reg.Get(router.ParamDryWet).GetPlainValue(), 1e-6)
	assert.True(t, reg.Get(router.ParamEQBypass).GetBool())

	bad := settings{{name: "nope", value: "1"}}
	assert.ErrorIs(t, bad.apply(reg), param.ErrUnknownParameter)

	bad = settings{{name: "delay_time", value: "fast"}}
	assert.ErrorContains(t, bad.apply(reg), "delay_time")
}

func TestParams(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"params", "-set", "delay_time=500"}, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "dry_wet")
	assert.Contains(t, out, "500.0 ms")
	assert.Contains(t, out, "eq_bypass")
	assert.Contains(t, out, "Active")

	assert.Error(t, run([]string{"params", "-load", filepath.Join(t.TempDir(), "missing.state")}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"params", "-eq", "-set", "eq_low_gain=6"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "FREQ")
	assert.Regexp(t, `31\.5 Hz\s+\+[56]\.\d dB`, stdout.String())
	assert.Regexp(t, `4000 Hz\s+\+0\.0 dB`, stdout.String())

	assert.Error(t, run([]string{"params", "-eq", "-rate", "8000"}, &stdout, &stderr))
}

func TestGuitarClip(t *testing.T) {
	clip := guitarClip(dsp.SampleRate44k1)

	require.Len(t, clip, int(genSeconds*dsp.SampleRate44k1))
	require.True(t, dsp.IsFinite(clip))
	assert.InDelta(t, math.Tanh(genDrive), dsp.Peak(clip), 1e-3)

	// Nothing before the attack, something after every onset.
	assert.Zero(t, clip[0])
	for _, n := range arpeggio {
		start := int(n.start * dsp.SampleRate44k1)
		assert.Greater(t, dsp.Peak(clip[start:start+2000]), float32(0.01), "note at %.1fs", n.start)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rt.wav")
	left := []float32{0, 0.5, -0.5, 1, -1, 0.25}
	right := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}

	require.NoError(t, writeWAV(path, 48000, [][]float32{left, right}))

	clip, rate, err := readWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, rate)
	require.Len(t, clip, 2)
	require.Len(t, clip[0], len(left))
	for i := range left {
		assert.InDelta(t, left[i], clip[0][i], 1e-3)
		assert.InDelta(t, right[i], clip[1][i], 1e-3)
	}
}

func TestReadWAV_Errors(t *testing.T) {
	_, _, err := readWAV("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")

	invalid := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalid, []byte("not a wav file"), 0o644))
	_, _, err = readWAV(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestSampleToInt16(t *testing.T) {
	assert.Equal(t, 32767, sampleToInt16(1))
	assert.Equal(t, 32767, sampleToInt16(4))
	assert.Equal(t, -32767, sampleToInt16(-4))
	assert.Equal(t, 0, sampleToInt16(float32(math.NaN())))
}

func TestGenTone(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "tone.wav")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"gen", "-o", out, "-rate", "8000", "-tone", "1000"}, &stdout, &stderr))
	clip, rate, err := readWAV(out)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Len(t, clip, 1)
	assert.InDelta(t, toneGain, dsp.Peak(clip[0]), 1e-3)
	// 1 kHz at 8 kHz: samples 2 and 6 of each period are the peaks.
	assert.InDelta(t, toneGain, clip[0][2], 1e-3)
	assert.InDelta(t, -toneGain, clip[0][6], 1e-3)

	assert.Error(t, run([]string{"gen", "-o", out, "-rate", "8000", "-tone", "4000"}, &stdout, &stderr))
}

func TestGenAndRender(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	out := filepath.Join(dir, "out.wav")
	script := filepath.Join(dir, "fx.lua")
	saved := filepath.Join(dir, "session.state")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"gen", "-o", in, "-rate", "8000"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Generated")

	program := "function process(x) return x * ctl.knob1, x end\n"
	require.NoError(t, os.WriteFile(script, []byte(program), 0o644))

	err := run([]string{
		"render", "-script", script, "-block", "100", "-tail", "0.5",
		"-log", "off", "-set", "knob1=0.5", "-set", "dry_wet=1", "-save", saved,
		in, out,
	}, &stdout, &stderr)
	require.NoError(t, err)

	clip, rate, err := readWAV(out)
	require.NoError(t, err)
	assert.Equal(t, 8000, rate)
	require.Len(t, clip, 2)
	assert.Len(t, clip[0], int(genSeconds*8000)+4000)
	assert.Greater(t, dsp.Peak(clip[0]), float32(0.01))
	assert.Greater(t, dsp.Peak(clip[1]), dsp.Peak(clip[0]))
	assert.Contains(t, stdout.String(), "Levels: peak")

	stdout.Reset()
	require.NoError(t, run([]string{"params", "-load", saved}, &stdout, &stderr))
	assert.Regexp(t, `dry_wet\s+100%`, stdout.String())

	// The saved session restores the script without -script.
	out2 := filepath.Join(dir, "out2.wav")
	err = run([]string{"render", "-log", "off", "-load", saved, "-block", "100", "-tail", "0.5", in, out2},
		&stdout, &stderr)
	require.NoError(t, err)
	clip2, _, err := readWAV(out2)
	require.NoError(t, err)
	assert.Equal(t, clip, clip2)
}

func TestRender_RejectedScript(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.wav")
	script := filepath.Join(dir, "bad.lua")
	require.NoError(t, writeWAV(in, 8000, [][]float32{make([]float32, 800)}))
	require.NoError(t, os.WriteFile(script, []byte("function process(x) return x"), 0o644))

	var stdout, stderr bytes.Buffer
	err := run([]string{"render", "-log", "off", "-script", script, in, filepath.Join(dir, "out.wav")},
		&stdout, &stderr)
	require.ErrorIs(t, err, engine.ErrProgramRejected)
}

func TestRender_UnsupportedLayout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "quad.wav")
	quad := make([][]float32, 4)
	for ch := range quad {
		quad[ch] = make([]float32, 100)
	}
	require.NoError(t, writeWAV(in, 8000, quad))

	var stdout, stderr bytes.Buffer
	err := run([]string{"render", "-log", "off", in, filepath.Join(dir, "out.wav")}, &stdout, &stderr)
	assert.ErrorContains(t, err, "4 channels")
}

func TestRender_BadFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.ErrorIs(t, run([]string{"render", "only-one.wav"}, &stdout, &stderr), errUsage)
	assert.Error(t, run([]string{"render", "-set", "x", "a.wav", "b.wav"}, &stdout, &stderr))
}

func TestScriptWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fx.lua")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	q := router.NewScriptQueue(1)
	var out bytes.Buffer
	w := newScriptWatcher(path, q, &out)

	// Unchanged file: nothing submitted.
	require.NoError(t, w.poll())
	assert.Zero(t, q.Pending())

	touch := func(text string, at time.Time) {
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
		require.NoError(t, os.Chtimes(path, at, at))
	}

	base := time.Now().Add(time.Hour)
	touch("v2", base)
	require.NoError(t, w.poll())
	assert.Equal(t, 1, q.Pending())
	assert.Contains(t, out.String(), "script submitted")

	// Queue full: reported, retried on the next poll.
	touch("v3", base.Add(time.Second))
	require.NoError(t, w.poll())
	assert.Contains(t, out.String(), "dropped")
	assert.Equal(t, 1, q.Pending())

	require.NoError(t, w.poll())
	assert.Contains(t, out.String(), "dropped")

	require.NoError(t, os.Remove(path))
	assert.Error(t, w.poll())
}

func TestStatusLineQuietWhenPiped(t *testing.T) {
	var buf bytes.Buffer
	s := newStatusLine(&buf)
	s.show("peak -6.0 dBFS")
	s.clear()
	assert.Empty(t, buf.String())

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

func TestPrintStatus(t *testing.T) {
	var out bytes.Buffer
	printStatus(&out, router.ScriptStatus{Text: "ok"})
	printStatus(&out, router.ScriptStatus{Text: "bad", Err: engine.ErrProgramRejected})
	assert.Contains(t, out.String(), "script accepted")
	assert.Contains(t, out.String(), "script rejected")
}
