package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

const (
	outputBitDepth = 16
	wavFormatPCM   = 1
	maxInt16       = 32767.0
)

// readWAV decodes a PCM WAV file into one float slice per channel.
func readWAV(path string) ([][]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("%s: no audio channels", path)
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth == 0 {
		bitDepth = outputBitDepth
	}

	frames := len(buf.Data) / channels
	clip := make([][]float32, channels)
	for ch := range clip {
		clip[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := range clip {
			clip[ch][i] = intToSample(buf.Data[i*channels+ch], bitDepth)
		}
	}
	return clip, buf.Format.SampleRate, nil
}

// writeWAV encodes one or more equal-length channels as 16-bit PCM.
func writeWAV(path string, sampleRate int, channels [][]float32) error {
	if len(channels) == 0 {
		return fmt.Errorf("%s: no channels to write", path)
	}

	var frames []float32
	switch len(channels) {
	case 1:
		frames = channels[0]
	case 2:
		frames = make([]float32, 2*min(len(channels[0]), len(channels[1])))
		dsp.Interleave(frames, channels[0], channels[1])
	default:
		n := len(channels[0])
		frames = make([]float32, n*len(channels))
		for i := 0; i < n; i++ {
			for ch := range channels {
				frames[i*len(channels)+ch] = channels[ch][i]
			}
		}
	}

	data := make([]int, len(frames))
	for i, s := range frames {
		data[i] = sampleToInt16(s)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	encoder := wav.NewEncoder(file, sampleRate, outputBitDepth, len(channels), wavFormatPCM)
	err = encoder.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	})
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return file.Close()
}

func intToSample(v, bitDepth int) float32 {
	if bitDepth == 8 {
		return float32(v-128) / 128
	}
	return float32(float64(v) / float64(int(1)<<(bitDepth-1)))
}

func sampleToInt16(s float32) int {
	if math.IsNaN(float64(s)) {
		return 0
	}
	return int(dsp.Clamp(s, -1, 1) * maxInt16)
}
