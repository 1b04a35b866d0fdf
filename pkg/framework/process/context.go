// Package process provides the per-callback audio processing context.
package process

// maxChannels bounds the channel views a sub-block can hold without
// allocating.
const maxChannels = 8

// Context is what a processor sees for one host callback: the host's
// channel buffers and the sample rate. It is reused across callbacks and
// never allocates.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64

	sub       *Context
	subInput  [maxChannels][]float32
	subOutput [maxChannels][]float32
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{sub: &Context{}}
}

// SetBuffers points the context at host buffers for one callback.
func (c *Context) SetBuffers(input, output [][]float32) {
	c.Input = input
	c.Output = output
}

// NumSamples returns the number of frames to process: the shortest output
// channel, or the first input channel when there is no output.
func (c *Context) NumSamples() int {
	n := -1
	for _, ch := range c.Output {
		if n < 0 || len(ch) < n {
			n = len(ch)
		}
	}
	if n >= 0 {
		return n
	}
	if len(c.Input) > 0 {
		return len(c.Input[0])
	}
	return 0
}

// Sub returns a view of frames [offset, offset+n) of every channel. The
// view is reused by the next call.
func (c *Context) Sub(offset, n int) *Context {
	s := c.sub
	s.SampleRate = c.SampleRate
	s.Input = window(c.subInput[:0], c.Input, offset, n)
	s.Output = window(c.subOutput[:0], c.Output, offset, n)
	return s
}

func window(dst, channels [][]float32, offset, n int) [][]float32 {
	for i, ch := range channels {
		if i == maxChannels {
			break
		}
		lo := min(offset, len(ch))
		hi := min(offset+n, len(ch))
		dst = append(dst, ch[lo:hi])
	}
	return dst
}

// InputFrame returns the stereo input at frame i. A single input channel
// is duplicated; missing input is silence.
func (c *Context) InputFrame(i int) (left, right float32) {
	switch {
	case len(c.Input) >= 2:
		if i < len(c.Input[0]) {
			left = c.Input[0][i]
		}
		if i < len(c.Input[1]) {
			right = c.Input[1][i]
		}
	case len(c.Input) == 1:
		if i < len(c.Input[0]) {
			left = c.Input[0][i]
			right = left
		}
	}
	return left, right
}

// WriteOutputFrame writes a stereo frame at i. A single output channel
// receives the left value; channels past the second are left alone.
func (c *Context) WriteOutputFrame(i int, left, right float32) {
	switch {
	case len(c.Output) >= 2:
		c.Output[0][i] = left
		c.Output[1][i] = right
	case len(c.Output) == 1:
		c.Output[0][i] = left
	}
}

// Clear zeros every output channel.
func (c *Context) Clear() {
	for _, ch := range c.Output {
		clear(ch)
	}
}
