// Package playback drives a router from a clip and streams the result to
// an audio device or a file.
package playback

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/analysis"
	"github.com/vmunix/glicol-verb/pkg/framework/process"
	"github.com/vmunix/glicol-verb/pkg/router"
)

// Channels is the number of channels every source produces.
const Channels = 2

// Source produces stereo frames on demand. left and right have equal length.
type Source interface {
	Fill(left, right []float32)
}

// RouterSource feeds a clip through a router in host-sized callbacks, the way
// a plugin host would.
type RouterSource struct {
	router *router.Router
	ctx    *process.Context
	clip   [][]float32
	length int
	loop   bool
	block  int

	pos    int
	frames atomic.Uint64
	meter  *analysis.LevelMeter

	in     [][]float32
	inView [][]float32
	out    [Channels][]float32
}

// NewRouterSource plays clip (one slice per channel) through r in callbacks
// of at most block frames. A looping source wraps around at the end of the
// clip; otherwise it feeds silence once the clip is exhausted so delay and
// engine tails ring out.
func NewRouterSource(r *router.Router, clip [][]float32, block int, loop bool) *RouterSource {
	if block <= 0 {
		block = dsp.DefaultBufferSize
	}
	length := 0
	if len(clip) > 0 {
		length = len(clip[0])
		for _, ch := range clip[1:] {
			length = min(length, len(ch))
		}
	}

	s := &RouterSource{
		router: r,
		ctx:    process.NewContext(),
		clip:   clip,
		length: length,
		loop:   loop,
		block:  block,
		in:     make([][]float32, len(clip)),
		inView: make([][]float32, len(clip)),
	}
	s.ctx.SampleRate = r.SampleRate()
	for ch := range s.in {
		s.in[ch] = make([]float32, block)
	}
	return s
}

// SetMeter makes every Fill feed its output to m. Call it before rendering
// starts.
func (s *RouterSource) SetMeter(m *analysis.LevelMeter) { s.meter = m }

// Fill renders len(left) frames.
func (s *RouterSource) Fill(left, right []float32) {
	n := min(len(left), len(right))
	for off := 0; off < n; off += s.block {
		m := min(s.block, n-off)
		s.feed(m)
		for ch := range s.in {
			s.inView[ch] = s.in[ch][:m]
		}
		s.out[0] = left[off : off+m]
		s.out[1] = right[off : off+m]
		s.ctx.SetBuffers(s.inView, s.out[:])
		s.router.ProcessAudio(s.ctx)
	}
	if s.meter != nil {
		s.meter.Process(left[:n], right[:n])
	}
	s.frames.Add(uint64(n))
}

// feed copies the next m clip frames into the input buffers.
func (s *RouterSource) feed(m int) {
	for i := 0; i < m; i++ {
		if s.pos >= s.length {
			if !s.loop || s.length == 0 {
				for ch := range s.in {
					clear(s.in[ch][i:m])
				}
				s.pos += m - i
				return
			}
			s.pos = 0
		}
		for ch := range s.in {
			s.in[ch][i] = s.clip[ch][s.pos]
		}
		s.pos++
	}
}

// Done reports whether a non-looping source has consumed its clip.
func (s *RouterSource) Done() bool {
	return !s.loop && s.pos >= s.length
}

// Frames returns how many frames have been rendered. It is safe to call
// while another goroutine is filling.
func (s *RouterSource) Frames() uint64 { return s.frames.Load() }

// Reader adapts a Source to the interleaved little-endian float32 stream
// audio devices consume.
type Reader struct {
	mu     sync.Mutex
	src    Source
	left   []float32
	right  []float32
	frames []float32
}

// NewReader creates a reader pulling from src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Read fills p with whole stereo frames. A trailing partial frame is left
// out of n.
func (r *Reader) Read(p []byte) (int, error) {
	const frameBytes = Channels * 4

	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(p) / frameBytes
	if n == 0 {
		return 0, nil
	}
	if cap(r.left) < n {
		r.left = make([]float32, n)
		r.right = make([]float32, n)
		r.frames = make([]float32, Channels*n)
	}
	left, right, frames := r.left[:n], r.right[:n], r.frames[:Channels*n]

	r.src.Fill(left, right)
	dsp.Interleave(frames, left, right)
	for i, v := range frames {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return n * frameBytes, nil
}
