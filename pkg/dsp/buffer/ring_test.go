package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRing(t *testing.T) {
	tests := []struct {
		capacity int
		want     int
	}{
		{0, 1},
		{1, 1},
		{100, 128},
		{128, 128},
		{8192, 8192},
		{8193, 16384},
	}

	for _, tt := range tests {
		r := NewRing(tt.capacity)
		assert.Equal(t, tt.want, r.Cap(), "capacity %d", tt.capacity)
		assert.Zero(t, r.Len())
		assert.Equal(t, tt.want, r.Free())
	}
}

func TestPushPop(t *testing.T) {
	t.Run("FIFOOrder", func(t *testing.T) {
		r := NewRing(8)
		for i := 0; i < 5; i++ {
			require.True(t, r.Push(float32(i)))
		}
		assert.Equal(t, 5, r.Len())

		for i := 0; i < 5; i++ {
			v, ok := r.Pop()
			require.True(t, ok)
			assert.Equal(t, float32(i), v)
		}
	})

	t.Run("EmptyPopReportsNothing", func(t *testing.T) {
		r := NewRing(4)
		v, ok := r.Pop()
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("FullPushDrops", func(t *testing.T) {
		r := NewRing(4)
		for i := 0; i < 4; i++ {
			require.True(t, r.Push(float32(i)))
		}
		assert.False(t, r.Push(99))
		assert.Equal(t, 4, r.Len())

		v, _ := r.Pop()
		assert.Equal(t, float32(0), v, "oldest sample survives the drop")
	})

	t.Run("WrapAround", func(t *testing.T) {
		r := NewRing(4)
		for round := 0; round < 10; round++ {
			for i := 0; i < 3; i++ {
				require.True(t, r.Push(float32(round*3+i)))
			}
			for i := 0; i < 3; i++ {
				v, ok := r.Pop()
				require.True(t, ok)
				require.Equal(t, float32(round*3+i), v)
			}
		}
	})
}

func TestWriteRead(t *testing.T) {
	t.Run("Partial", func(t *testing.T) {
		r := NewRing(8)
		n := r.Write([]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
		assert.Equal(t, 8, n)
		assert.Zero(t, r.Free())

		out := make([]float32, 3)
		assert.Equal(t, 3, r.Read(out))
		assert.Equal(t, []float32{1, 2, 3}, out)
	})

	t.Run("WrapAround", func(t *testing.T) {
		r := NewRing(8)
		r.Write([]float32{1, 2, 3, 4, 5, 6})
		out := make([]float32, 5)
		r.Read(out)

		// Write crosses the end of the backing array
		assert.Equal(t, 6, r.Write([]float32{7, 8, 9, 10, 11, 12}))
		out = make([]float32, 10)
		n := r.Read(out)
		assert.Equal(t, 7, n)
		assert.Equal(t, []float32{6, 7, 8, 9, 10, 11, 12}, out[:n])
		assert.Equal(t, []float32{0, 0, 0}, out[n:])
	})

	t.Run("Clear", func(t *testing.T) {
		r := NewRing(8)
		r.Write([]float32{1, 2, 3})
		r.Clear()
		assert.Zero(t, r.Len())
		_, ok := r.Pop()
		assert.False(t, ok)
	})
}

func TestRingZeroAllocs(t *testing.T) {
	r := NewRing(256)
	block := make([]float32, 128)
	allocs := testing.AllocsPerRun(100, func() {
		r.Write(block)
		r.Push(1)
		r.Pop()
		r.Read(block)
	})
	assert.Zero(t, allocs)
}

// TestConcurrentProducerConsumer streams an ascending pattern from one
// goroutine to another and checks nothing is reordered or duplicated.
func TestConcurrentProducerConsumer(t *testing.T) {
	const total = 200000
	r := NewRing(1024)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if r.Push(float32(i)) {
				i++
			}
		}
	}()

	next := 0
	for next < total {
		v, ok := r.Pop()
		if !ok {
			continue
		}
		require.Equal(t, float32(next), v)
		next++
	}
	wg.Wait()
	assert.Zero(t, r.Len())
}
