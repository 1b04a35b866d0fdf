package router

import (
	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/delay"
	"github.com/vmunix/glicol-verb/pkg/dsp/eq"
	"github.com/vmunix/glicol-verb/pkg/engine"
	"github.com/vmunix/glicol-verb/pkg/framework/param"
)

// Parameter IDs. The values are stored in saved sessions and must not be
// renumbered.
const (
	ParamDryWet uint32 = iota
	ParamInputGain
	ParamOutputGain
	ParamKnob1
	ParamKnob2
	ParamKnob3
	ParamKnob4
	ParamDrive
	ParamFeedback
	ParamMix
	ParamRate
	ParamDelayBypass
	ParamDelayTime
	ParamDelayFeedback
	ParamDelayMix
	ParamDelayHighCut
	ParamEQBypass
	ParamEQLowFreq
	ParamEQLowGain
	ParamEQMidFreq
	ParamEQMidGain
	ParamEQMidQ
	ParamEQHighFreq
	ParamEQHighGain
)

// GainRangeDB bounds the input and output gains.
const GainRangeDB = 30

// Smoothing times in milliseconds.
const (
	GainSmoothingMs   = 50
	DryWetSmoothingMs = 10
)

// controlParams maps each script control to its parameter.
var controlParams = [engine.NumControls]uint32{
	engine.Knob1:    ParamKnob1,
	engine.Knob2:    ParamKnob2,
	engine.Knob3:    ParamKnob3,
	engine.Knob4:    ParamKnob4,
	engine.Drive:    ParamDrive,
	engine.Feedback: ParamFeedback,
	engine.Mix:      ParamMix,
	engine.Rate:     ParamRate,
}

// NewParameters builds the processor's parameter registry.
func NewParameters() (*param.Registry, error) {
	reg := param.NewRegistry()
	err := reg.Add(
		param.MixParameter(ParamDryWet, "Dry/Wet", 1).ShortName("dry_wet").Build(),
		param.GainParameter(ParamInputGain, "Input Gain", GainRangeDB).ShortName("input_gain").Build(),
		param.GainParameter(ParamOutputGain, "Output Gain", GainRangeDB).ShortName("output_gain").Build(),

		param.KnobParameter(ParamKnob1, "Knob 1").ShortName("knob1").Build(),
		param.KnobParameter(ParamKnob2, "Knob 2").ShortName("knob2").Build(),
		param.KnobParameter(ParamKnob3, "Knob 3").ShortName("knob3").Build(),
		param.KnobParameter(ParamKnob4, "Knob 4").ShortName("knob4").Build(),
		param.DriveParameter(ParamDrive, "Drive", 1, 10, 1).ShortName("drive").Build(),
		param.FeedbackParameter(ParamFeedback, "Feedback", 0.95, 0.3).ShortName("feedback").Build(),
		param.MixParameter(ParamMix, "Mix", 0.5).ShortName("mix").Build(),
		param.RateParameter(ParamRate, "Rate", 0.1, 20, 1).ShortName("rate").Build(),

		param.BypassParameter(ParamDelayBypass, "Delay Bypass").ShortName("delay_bypass").Build(),
		param.TimeParameter(ParamDelayTime, "Delay Time", delay.MinTimeMs, delay.MaxTimeMs, 250).ShortName("delay_time").Build(),
		param.FeedbackParameter(ParamDelayFeedback, "Delay Feedback", delay.MaxFeedback, 0.3).ShortName("delay_feedback").Build(),
		param.MixParameter(ParamDelayMix, "Delay Mix", delay.DefaultMix).ShortName("delay_mix").Build(),
		param.FrequencyParameter(ParamDelayHighCut, "Delay High Cut", delay.MinHighCut, delay.MaxHighCut, delay.DefaultHighCut).ShortName("delay_highcut").Build(),

		param.BypassParameter(ParamEQBypass, "EQ Bypass").ShortName("eq_bypass").Build(),
		param.FrequencyParameter(ParamEQLowFreq, "EQ Low Freq", eq.MinLowFreq, eq.MaxLowFreq, eq.DefaultLowFreq).ShortName("eq_low_freq").Build(),
		param.GainParameter(ParamEQLowGain, "EQ Low Gain", eq.MaxGainDB).ShortName("eq_low_gain").Build(),
		param.FrequencyParameter(ParamEQMidFreq, "EQ Mid Freq", eq.MinMidFreq, eq.MaxMidFreq, eq.DefaultMidFreq).ShortName("eq_mid_freq").Build(),
		param.GainParameter(ParamEQMidGain, "EQ Mid Gain", eq.MaxGainDB).ShortName("eq_mid_gain").Build(),
		param.QParameter(ParamEQMidQ, "EQ Mid Q", eq.MinMidQ, eq.MaxMidQ, eq.DefaultMidQ).ShortName("eq_mid_q").Build(),
		param.FrequencyParameter(ParamEQHighFreq, "EQ High Freq", eq.MinHighFreq, eq.MaxHighFreq, eq.DefaultHighFreq).ShortName("eq_high_freq").Build(),
		param.GainParameter(ParamEQHighGain, "EQ High Gain", eq.MaxGainDB).ShortName("eq_high_gain").Build(),
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// bindings caches parameter pointers so the audio thread never takes the
// registry lock.
type bindings struct {
	dryWet, inputGain, outputGain *param.Parameter

	controls [engine.NumControls]*param.Parameter

	delayBypass, delayTime, delayFeedback, delayMix, delayHighCut *param.Parameter

	eqBypass, lowFreq, lowGain, midFreq, midGain, midQ, highFreq, highGain *param.Parameter
}

func bind(reg *param.Registry) bindings {
	b := bindings{
		dryWet:        reg.Get(ParamDryWet),
		inputGain:     reg.Get(ParamInputGain),
		outputGain:    reg.Get(ParamOutputGain),
		delayBypass:   reg.Get(ParamDelayBypass),
		delayTime:     reg.Get(ParamDelayTime),
		delayFeedback: reg.Get(ParamDelayFeedback),
		delayMix:      reg.Get(ParamDelayMix),
		delayHighCut:  reg.Get(ParamDelayHighCut),
		eqBypass:      reg.Get(ParamEQBypass),
		lowFreq:       reg.Get(ParamEQLowFreq),
		lowGain:       reg.Get(ParamEQLowGain),
		midFreq:       reg.Get(ParamEQMidFreq),
		midGain:       reg.Get(ParamEQMidGain),
		midQ:          reg.Get(ParamEQMidQ),
		highFreq:      reg.Get(ParamEQHighFreq),
		highGain:      reg.Get(ParamEQHighGain),
	}
	for c, id := range controlParams {
		b.controls[c] = reg.Get(id)
	}
	return b
}

// controlValues snapshots the script controls.
func (b *bindings) controlValues() engine.ControlValues {
	var v engine.ControlValues
	for c, p := range b.controls {
		v[c] = float32(p.GetPlainValue())
	}
	return v
}

// gainTransform maps a dB parameter to linear gain for smoothing.
func gainTransform(db float64) float64 {
	return dsp.DbToGain(db)
}
