package main

import (
	"fmt"
	"io"
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/oscillator"
)

const (
	genSeconds  = 5.0
	noteSeconds = 1.8
	noteDecay   = 0.996
	noteGain    = 0.4
	genDrive    = 0.8
	toneGain    = 0.5
)

// note is one pluck of the test arpeggio.
type note struct {
	freq  float64
	start float64 // seconds
}

// arpeggio is an E minor arpeggio up two octaves and back.
var arpeggio = []note{
	{82.41, 0.0},  // E2
	{98.00, 0.3},  // G2
	{123.47, 0.6}, // B2
	{164.81, 0.9}, // E3
	{196.00, 1.2}, // G3
	{246.94, 1.5}, // B3
	{329.63, 1.8}, // E4
	{246.94, 2.4}, // B3
	{196.00, 2.7}, // G3
	{164.81, 3.0}, // E3
	{123.47, 3.3}, // B2
	{98.00, 3.6},  // G2
	{82.41, 3.9},  // E2
}

// guitarClip renders the arpeggio, normalizes it and soft clips it.
func guitarClip(sampleRate float64) []float32 {
	out := make([]float32, int(genSeconds*sampleRate))
	noteLen := int(noteSeconds * sampleRate)

	for _, n := range arpeggio {
		start := int(n.start * sampleRate)
		if start >= len(out) {
			continue
		}
		end := min(start+noteLen, len(out))
		oscillator.NewPluck(sampleRate, n.freq, noteDecay).Add(out[start:end], noteGain)
	}

	if peak := dsp.Peak(out); peak > 0 {
		dsp.Scale(out, 1/peak)
	}
	for i, s := range out {
		out[i] = float32(math.Tanh(float64(s) * genDrive))
	}
	return out
}

// toneClip is a sine at freq Hz and half scale, as long as the arpeggio.
func toneClip(sampleRate, freq float64) []float32 {
	out := make([]float32, int(genSeconds*sampleRate))
	osc := oscillator.New(sampleRate)
	osc.SetFrequency(freq)
	osc.Fill(out, toneGain)
	return out
}

func runGen(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("gen", "", stderr)
	output := fs.String("o", "guitar.wav", "Output WAV file")
	rate := fs.Int("rate", int(dsp.SampleRate44k1), "Sample rate in Hz")
	tone := fs.Float64("tone", 0, "Write a sine at this frequency in Hz instead of the arpeggio")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", *rate)
	}
	if *tone < 0 || *tone >= float64(*rate)/2 {
		return fmt.Errorf("tone must be below Nyquist (%d Hz), got %g", *rate/2, *tone)
	}

	clip := guitarClip(float64(*rate))
	if *tone > 0 {
		clip = toneClip(float64(*rate), *tone)
	}
	if err := writeWAV(*output, *rate, [][]float32{clip}); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Generated: %s\n", *output)
	fmt.Fprintf(stdout, "Duration: %.0fs, Sample rate: %dHz, Mono\n", genSeconds, *rate)
	return nil
}
