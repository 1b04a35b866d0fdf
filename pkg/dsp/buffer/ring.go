// Package buffer provides lock-free sample buffers for moving audio between
// differently sized processing blocks.
package buffer

import (
	"sync/atomic"
)

// Ring is a fixed-capacity single-producer single-consumer FIFO of samples.
// Capacity is rounded up to a power of two. Push on a full ring drops the
// sample; Pop on an empty ring reports ok == false and never fabricates data.
type Ring struct {
	data     []float32
	mask     uint64
	readPos  atomic.Uint64
	writePos atomic.Uint64
}

// NewRing creates a ring holding at least capacity samples
func NewRing(capacity int) *Ring {
	size := nextPowerOf2(uint32(max(capacity, 1)))
	return &Ring{
		data: make([]float32, size),
		mask: uint64(size - 1),
	}
}

// Cap returns the ring capacity in samples
func (r *Ring) Cap() int {
	return len(r.data)
}

// Len returns the number of samples available to read
func (r *Ring) Len() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Free returns the number of samples that can be written
func (r *Ring) Free() int {
	return len(r.data) - r.Len()
}

// Push appends one sample. It returns false when the ring is full.
func (r *Ring) Push(sample float32) bool {
	writePos := r.writePos.Load()
	if writePos-r.readPos.Load() >= uint64(len(r.data)) {
		return false
	}
	r.data[writePos&r.mask] = sample
	r.writePos.Store(writePos + 1)
	return true
}

// Pop removes the oldest sample
func (r *Ring) Pop() (float32, bool) {
	readPos := r.readPos.Load()
	if readPos == r.writePos.Load() {
		return 0, false
	}
	sample := r.data[readPos&r.mask]
	r.readPos.Store(readPos + 1)
	return sample, true
}

// Write appends as many samples as fit and returns the count written
func (r *Ring) Write(samples []float32) int {
	writePos := r.writePos.Load()
	readPos := r.readPos.Load()

	size := uint64(len(r.data))
	n := len(samples)
	if free := int(size - (writePos - readPos)); free < n {
		n = free
	}

	// Copy with wrap-around handling
	remaining := n
	offset := 0
	for remaining > 0 {
		idx := writePos & r.mask
		chunk := remaining
		if idx+uint64(chunk) > size {
			chunk = int(size - idx)
		}
		copy(r.data[idx:idx+uint64(chunk)], samples[offset:offset+chunk])
		offset += chunk
		remaining -= chunk
		writePos += uint64(chunk)
	}

	r.writePos.Store(writePos)
	return n
}

// Read removes up to len(out) samples into out and returns the count read.
// The unfilled tail of out is left untouched.
func (r *Ring) Read(out []float32) int {
	readPos := r.readPos.Load()
	writePos := r.writePos.Load()

	size := uint64(len(r.data))
	n := len(out)
	if available := int(writePos - readPos); available < n {
		n = available
	}

	remaining := n
	offset := 0
	for remaining > 0 {
		idx := readPos & r.mask
		chunk := remaining
		if idx+uint64(chunk) > size {
			chunk = int(size - idx)
		}
		copy(out[offset:offset+chunk], r.data[idx:idx+uint64(chunk)])
		offset += chunk
		remaining -= chunk
		readPos += uint64(chunk)
	}

	r.readPos.Store(readPos)
	return n
}

// Clear discards all buffered samples. Must be called from the consumer
// side while the producer is idle.
func (r *Ring) Clear() {
	r.readPos.Store(r.writePos.Load())
}

// nextPowerOf2 rounds up to the next power of 2
func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
