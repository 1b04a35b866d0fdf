package engine

import (
	"sync/atomic"

	"github.com/vmunix/glicol-verb/pkg/dsp/buffer"
)

// RingCapacity is the per-channel bridge capacity. It covers the largest
// supported host buffer plus one engine block.
const RingCapacity = 8192

// BlockBridge accumulates host-rate mono input into fixed engine blocks and
// queues the engine's stereo output for host-rate reads.
//
// PushInput, PopInputBlock, PushOutput and PopOutput are called from the
// audio thread. The counters may be read from any goroutine.
type BlockBridge struct {
	input  *buffer.Ring
	left   *buffer.Ring
	right  *buffer.Ring
	block  []float32
	silent []float32

	blockSize      int
	latencyBlocks  int
	reportInterval uint64
	sinceReport    uint64
	reporter       func(total uint64)

	underruns atomic.Uint64
	dropped   atomic.Uint64
}

// NewBlockBridge creates a bridge for blocks of blockSize frames.
func NewBlockBridge(blockSize int) *BlockBridge {
	blockSize = max(blockSize, 1)
	return &BlockBridge{
		input:          buffer.NewRing(RingCapacity),
		left:           buffer.NewRing(RingCapacity),
		right:          buffer.NewRing(RingCapacity),
		block:          make([]float32, blockSize),
		silent:         make([]float32, blockSize),
		blockSize:      blockSize,
		reportInterval: 44100,
	}
}

// BlockSize returns the engine block size.
func (b *BlockBridge) BlockSize() int { return b.blockSize }

// SetReporter installs fn, called once per reportInterval underrun samples
// with the cumulative count.
func (b *BlockBridge) SetReporter(fn func(total uint64)) {
	b.reporter = fn
}

// SetSampleRate sets the report interval to one second of audio.
func (b *BlockBridge) SetSampleRate(sampleRate float64) {
	b.reportInterval = uint64(max(sampleRate, 1))
}

// SetLatencyBlocks primes the output with n blocks of silence, now and after
// every Clear. The caller must not be processing concurrently.
func (b *BlockBridge) SetLatencyBlocks(n int) {
	b.latencyBlocks = max(n, 0)
	b.Clear()
}

// LatencySamples returns the priming latency in samples.
func (b *BlockBridge) LatencySamples() int {
	return b.latencyBlocks * b.blockSize
}

// PushInput queues one host sample. A full ring drops it.
func (b *BlockBridge) PushInput(sample float32) {
	if !b.input.Push(sample) {
		b.dropped.Add(1)
	}
}

// HasBlock reports whether a full engine block is queued.
func (b *BlockBridge) HasBlock() bool {
	return b.input.Len() >= b.blockSize
}

// PendingInput returns the number of queued input samples.
func (b *BlockBridge) PendingInput() int {
	return b.input.Len()
}

// PopInputBlock dequeues exactly one block into a scratch slice owned by the
// bridge. Missing samples are zero.
func (b *BlockBridge) PopInputBlock() []float32 {
	n := b.input.Read(b.block)
	clear(b.block[n:])
	return b.block
}

// PushOutput queues one block of engine output.
func (b *BlockBridge) PushOutput(left, right []float32) {
	if n := b.left.Write(left); n < len(left) {
		b.dropped.Add(uint64(len(left) - n))
	}
	if n := b.right.Write(right); n < len(right) {
		b.dropped.Add(uint64(len(right) - n))
	}
}

// PushOutputMono queues samples on both channels.
func (b *BlockBridge) PushOutputMono(samples []float32) {
	b.PushOutput(samples, samples)
}

// PopOutput dequeues one stereo frame, or silence on underrun.
func (b *BlockBridge) PopOutput() (left, right float32) {
	l, okL := b.left.Pop()
	r, okR := b.right.Pop()
	if okL && okR {
		return l, r
	}

	total := b.underruns.Add(1)
	b.sinceReport++
	if b.sinceReport >= b.reportInterval {
		b.sinceReport = 0
		if b.reporter != nil {
			b.reporter(total)
		}
	}
	return 0, 0
}

// OutputAvailable returns the number of frames ready for PopOutput.
func (b *BlockBridge) OutputAvailable() int {
	return min(b.left.Len(), b.right.Len())
}

// Underruns returns the cumulative number of silent output frames.
func (b *BlockBridge) Underruns() uint64 { return b.underruns.Load() }

// Dropped returns the cumulative number of samples lost to full rings.
func (b *BlockBridge) Dropped() uint64 { return b.dropped.Load() }

// Clear drains every ring and re-applies priming. Counters are kept.
func (b *BlockBridge) Clear() {
	b.input.Clear()
	b.left.Clear()
	b.right.Clear()
	clear(b.block)
	b.sinceReport = 0
	for range b.latencyBlocks {
		b.left.Write(b.silent)
		b.right.Write(b.silent)
	}
}
