package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/glicol-verb/pkg/framework/debug"
)

// channelEngine returns a fixed number of output channels, each a scaled
// copy of the input.
type channelEngine struct {
	out [][]float32
}

func newChannelEngine(channels, length int) *channelEngine {
	e := &channelEngine{out: make([][]float32, channels)}
	for i := range e.out {
		e.out[i] = make([]float32, length)
	}
	return e
}

func (e *channelEngine) Initialize(float64) error    { return nil }
func (e *channelEngine) UpdateProgram(string) error  { return nil }
func (e *channelEngine) SetSampleRate(float64)       {}
func (e *channelEngine) BlockSize() int              { return BlockSize }
func (e *channelEngine) ProcessBlock(in []float32) [][]float32 {
	for ch, buf := range e.out {
		for i := range buf {
			buf[i] = in[i%len(in)] * float32(ch+1)
		}
	}
	return e.out
}

func ramp(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(i) / float32(n)
	}
	return buf
}

func TestPassthrough(t *testing.T) {
	p := NewPassthrough()
	require.NoError(t, p.Initialize(48000))
	require.NoError(t, p.UpdateProgram("anything"))
	assert.Equal(t, "anything", p.Program())
	assert.Equal(t, BlockSize, p.BlockSize())

	in := ramp(BlockSize)
	out := p.ProcessBlock(in)
	require.Len(t, out, 1)
	assert.Equal(t, in, out[0])

	allocs := testing.AllocsPerRun(100, func() { p.ProcessBlock(in) })
	assert.Zero(t, allocs)
}

func TestRunner(t *testing.T) {
	in := ramp(BlockSize)

	t.Run("MonoDuplicated", func(t *testing.T) {
		r := NewRunner(newChannelEngine(1, BlockSize), nil)
		l, rr := r.Run(in)
		assert.Equal(t, in, l)
		assert.Equal(t, in, rr)
		assert.Equal(t, uint64(1), r.Blocks())
	})

	t.Run("FirstTwoChannels", func(t *testing.T) {
		r := NewRunner(newChannelEngine(3, BlockSize), nil)
		l, rr := r.Run(in)
		assert.Equal(t, in, l)
		assert.InDelta(t, 2*in[10], rr[10], 1e-7)
	})

	t.Run("ShortOutputZeroFilled", func(t *testing.T) {
		r := NewRunner(newChannelEngine(2, 10), nil)
		l, _ := r.Run(in)
		assert.Equal(t, in[:10], l[:10])
		assert.Equal(t, make([]float32, BlockSize-10), l[10:])
	})

	t.Run("NoChannelsWarnsOnce", func(t *testing.T) {
		var buf bytes.Buffer
		diag := debug.NewDiagnostics(debug.New(&buf, "", 0))
		r := NewRunner(newChannelEngine(0, 0), diag)

		for range 3 {
			l, rr := r.Run(in)
			assert.Equal(t, make([]float32, BlockSize), l)
			assert.Equal(t, make([]float32, BlockSize), rr)
		}
		assert.Equal(t, uint64(1), diag.Reports())

		r.Reset()
		r.Run(in)
		assert.Equal(t, uint64(2), diag.Reports())
	})

	t.Run("ZeroAllocs", func(t *testing.T) {
		r := NewRunner(NewPassthrough(), nil)
		allocs := testing.AllocsPerRun(100, func() { r.Run(in) })
		assert.Zero(t, allocs)
	})
}

func TestDialectOf(t *testing.T) {
	assert.Equal(t, GlicolDialect{}, DialectOf(NewPassthrough()))
}
