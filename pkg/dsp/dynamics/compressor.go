// Package dynamics provides a feed-forward compressor for the node library.
package dynamics

import (
	"math"

	"github.com/vmunix/glicol-verb/pkg/dsp"
)

// Ranges accepted by the setters.
const (
	MinRatio   = 1.0
	MaxRatio   = 40.0
	MinAttack  = 0.0001
	MinRelease = 0.001

	DefaultThreshold = -20.0
	DefaultRatio     = 4.0
	DefaultAttack    = 0.005
	DefaultRelease   = 0.050
	DefaultKnee      = 2.0
)

// floorDB is the level reported for a silent envelope.
const floorDB = -96.0

// Compressor is a peak-detecting soft-knee compressor.
type Compressor struct {
	sampleRate float64

	threshold float64
	ratio     float64
	attack    float64
	release   float64
	knee      float64
	makeup    float64

	attackCoef  float64
	releaseCoef float64
	envelope    float64

	reduction float64
}

// NewCompressor creates a compressor with a -20 dB threshold, 4:1 ratio,
// 5 ms attack, 50 ms release and 2 dB soft knee.
func NewCompressor(sampleRate float64) *Compressor {
	c := &Compressor{
		sampleRate: max(sampleRate, 1),
		threshold:  DefaultThreshold,
		ratio:      DefaultRatio,
		attack:     DefaultAttack,
		release:    DefaultRelease,
		knee:       DefaultKnee,
	}
	c.updateCoefficients()
	return c
}

// SetThreshold sets the threshold in dB.
func (c *Compressor) SetThreshold(dB float64) { c.threshold = dB }

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.threshold }

// SetRatio sets the compression ratio, clamped to [MinRatio, MaxRatio].
func (c *Compressor) SetRatio(ratio float64) {
	c.ratio = math.Min(math.Max(ratio, MinRatio), MaxRatio)
}

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// SetAttack sets the attack time in seconds.
func (c *Compressor) SetAttack(seconds float64) {
	c.attack = math.Max(seconds, MinAttack)
	c.updateCoefficients()
}

// Attack returns the attack time in seconds.
func (c *Compressor) Attack() float64 { return c.attack }

// SetRelease sets the release time in seconds.
func (c *Compressor) SetRelease(seconds float64) {
	c.release = math.Max(seconds, MinRelease)
	c.updateCoefficients()
}

// Release returns the release time in seconds.
func (c *Compressor) Release() float64 { return c.release }

// SetKnee sets the knee width in dB. Zero is a hard knee.
func (c *Compressor) SetKnee(widthDB float64) { c.knee = math.Max(widthDB, 0) }

// SetMakeupGain sets the makeup gain in dB.
func (c *Compressor) SetMakeupGain(dB float64) { c.makeup = dB }

// GainReduction returns the most recent gain reduction in dB.
func (c *Compressor) GainReduction() float64 { return c.reduction }

// Logarithmic time constants: the envelope covers ~90% of a step within the
// attack or release time.
func (c *Compressor) updateCoefficients() {
	c.attackCoef = 1 - math.Exp(-2.2/(c.attack*c.sampleRate))
	c.releaseCoef = 1 - math.Exp(-2.2/(c.release*c.sampleRate))
}

// reductionDB returns the gain reduction for a detector level in dB.
func (c *Compressor) reductionDB(level float64) float64 {
	over := level - c.threshold
	half := c.knee / 2
	slope := 1 - 1/c.ratio
	switch {
	case over <= -half:
		return 0
	case over >= half || c.knee == 0:
		return over * slope
	default:
		pos := (over + half) / c.knee
		return pos * pos * math.Max(over, 0) * slope
	}
}

// Process compresses one sample.
func (c *Compressor) Process(x float32) float32 {
	level := math.Abs(float64(x))
	if level > c.envelope {
		c.envelope += (level - c.envelope) * c.attackCoef
		if c.attackCoef > 0.5 || level > c.envelope*2 {
			c.envelope = level
		}
	} else {
		c.envelope += (level - c.envelope) * c.releaseCoef
	}

	levelDB := floorDB
	if c.envelope > 0 {
		levelDB = max(dsp.GainToDb(c.envelope), floorDB)
	}
	c.reduction = c.reductionDB(levelDB)
	return x * float32(dsp.DbToGain(c.makeup-c.reduction))
}

// Reset clears the detector.
func (c *Compressor) Reset() {
	c.envelope = 0
	c.reduction = 0
}
