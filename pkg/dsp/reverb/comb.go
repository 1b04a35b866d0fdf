// Package reverb provides the plate reverb scripts build tails with.
package reverb

// comb is a feedback comb with a one-pole lowpass in the loop.
type comb struct {
	buffer   []float32
	index    int
	feedback float32
	damp1    float32
	damp2    float32
	store    float32
}

func newComb(delaySamples int) *comb {
	return &comb{buffer: make([]float32, max(delaySamples, 1))}
}

func (c *comb) set(feedback, damping float32) {
	c.feedback = feedback
	c.damp1 = damping
	c.damp2 = 1 - damping
}

func (c *comb) process(input float32) float32 {
	out := c.buffer[c.index]
	c.store = out*c.damp2 + c.store*c.damp1
	c.buffer[c.index] = input + c.store*c.feedback

	c.index++
	if c.index == len(c.buffer) {
		c.index = 0
	}
	return out
}

func (c *comb) reset() {
	clear(c.buffer)
	c.index = 0
	c.store = 0
}

// allpass is a Schroeder allpass diffuser with fixed 0.5 feedback.
type allpass struct {
	buffer []float32
	index  int
}

const allpassFeedback = 0.5

func newAllpass(delaySamples int) *allpass {
	return &allpass{buffer: make([]float32, max(delaySamples, 1))}
}

func (a *allpass) process(input float32) float32 {
	delayed := a.buffer[a.index]
	out := delayed - input
	a.buffer[a.index] = input + delayed*allpassFeedback

	a.index++
	if a.index == len(a.buffer) {
		a.index = 0
	}
	return out
}

func (a *allpass) reset() {
	clear(a.buffer)
	a.index = 0
}
