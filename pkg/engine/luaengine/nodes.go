package luaengine

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/vmunix/glicol-verb/pkg/dsp"
	"github.com/vmunix/glicol-verb/pkg/dsp/distortion"
	"github.com/vmunix/glicol-verb/pkg/dsp/dynamics"
	"github.com/vmunix/glicol-verb/pkg/dsp/filter"
	"github.com/vmunix/glicol-verb/pkg/dsp/modulation"
	"github.com/vmunix/glicol-verb/pkg/dsp/reverb"
	"github.com/vmunix/glicol-verb/pkg/dsp/utility"
)

// DSPLibName is the global table holding the node constructors.
const DSPLibName = "dsp"

const nodeTypeName = "glicolverb.node"

// node is a stateful processor scripts create at load time and call per
// sample as obj:process(x). Stereo nodes return two values.
type node interface {
	Process(x float32) dsp.StereoSample
	Stereo() bool
	Set(args []float64)
	Reset()
}

// arg returns args[i], or def when the script passed fewer arguments.
func arg(args []float64, i int, def float64) float64 {
	if i < len(args) {
		return args[i]
	}
	return def
}

type plateNode struct{ *reverb.Plate }

func (n plateNode) Process(x float32) dsp.StereoSample { return n.Plate.Process(x) }
func (n plateNode) Stereo() bool                       { return true }
func (n plateNode) Set(args []float64) {
	n.Plate.Set(arg(args, 0, n.Size()), arg(args, 1, n.Damping()))
}

type driveNode struct{ *distortion.Waveshaper }

func (n driveNode) Process(x float32) dsp.StereoSample { return dsp.Mono(n.Waveshaper.Process(x)) }
func (n driveNode) Stereo() bool                       { return false }
func (n driveNode) Reset()                             {}
func (n driveNode) Set(args []float64) {
	n.SetDrive(arg(args, 0, n.Drive()))
	if len(args) > 1 {
		n.SetMix(args[1])
	}
}

type chorusNode struct{ *modulation.Chorus }

func (n chorusNode) Stereo() bool { return true }
func (n chorusNode) Set(args []float64) {
	n.SetRate(arg(args, 0, n.Rate()))
	if len(args) > 1 {
		n.SetDepth(args[1])
	}
	if len(args) > 2 {
		n.SetMix(args[2])
	}
}

type lowpassNode struct {
	sampleRate float64
	freq, q    float64
	coeffs     filter.Coefficients
	state      filter.State
}

func newLowpassNode(sampleRate, freq, q float64) *lowpassNode {
	n := &lowpassNode{sampleRate: sampleRate}
	n.Set([]float64{freq, q})
	return n
}

func (n *lowpassNode) Process(x float32) dsp.StereoSample {
	return dsp.Mono(n.state.Process(dsp.Mono(x), &n.coeffs).Left)
}
func (n *lowpassNode) Stereo() bool { return false }
func (n *lowpassNode) Reset()       { n.state.Reset() }
func (n *lowpassNode) Set(args []float64) {
	n.freq = arg(args, 0, n.freq)
	n.q = max(arg(args, 1, n.q), 0.1)
	n.coeffs = filter.Lowpass(n.sampleRate, n.freq, n.q)
}

type compNode struct{ *dynamics.Compressor }

func (n compNode) Process(x float32) dsp.StereoSample { return dsp.Mono(n.Compressor.Process(x)) }
func (n compNode) Stereo() bool                       { return false }
func (n compNode) Set(args []float64) {
	n.SetThreshold(arg(args, 0, n.Threshold()))
	n.SetRatio(arg(args, 1, n.Ratio()))
	if len(args) > 2 {
		n.SetAttack(args[2] / 1000)
	}
	if len(args) > 3 {
		n.SetRelease(args[3] / 1000)
	}
}

type dcNode struct {
	*utility.DCBlocker
	sampleRate float64
}

func (n dcNode) Process(x float32) dsp.StereoSample { return dsp.Mono(n.DCBlocker.Process(x)) }
func (n dcNode) Stereo() bool                       { return false }
func (n dcNode) Set(args []float64) {
	if len(args) > 0 {
		n.SetCutoff(args[0], n.sampleRate)
	}
}

// openDSP installs the dsp table. Constructors take their parameters
// positionally and every one is optional:
//
//	dsp.plate(size, damping)       -- stereo
//	dsp.chorus(rate, depth_ms, mix, shape) -- stereo; shape: sine, triangle
//	dsp.drive(amount, curve)       -- curve: soft, hard, saturate, fold, asymmetric
//	dsp.lowpass(freq, q)
//	dsp.comp(threshold_db, ratio, attack_ms, release_ms)
//	dsp.dcblock(cutoff)
//
// Nodes expose process(x), set(...) with the constructor's numeric
// arguments, and reset().
func openDSP(L *lua.LState, sampleRate float64) {
	mt := L.NewTypeMetatable(nodeTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"process": nodeProcess,
		"set":     nodeSet,
		"reset":   nodeReset,
	}))

	lib := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"plate": func(L *lua.LState) int {
			p := reverb.NewPlate(sampleRate)
			p.Set(optNumber(L, 1, reverb.DefaultSize), optNumber(L, 2, reverb.DefaultDamping))
			return pushNode(L, plateNode{p})
		},
		"chorus": func(L *lua.LState) int {
			shape, err := modulation.ParseShape(L.OptString(4, modulation.ShapeSine.String()))
			if err != nil {
				L.ArgError(4, err.Error())
				return 0
			}
			c := modulation.NewChorus(sampleRate)
			c.SetShape(shape)
			c.SetRate(optNumber(L, 1, 1))
			c.SetDepth(optNumber(L, 2, modulation.DefaultDepthMs))
			c.SetMix(optNumber(L, 3, modulation.DefaultChorusMix))
			return pushNode(L, chorusNode{c})
		},
		"drive": func(L *lua.LState) int {
			curve, err := distortion.ParseCurve(L.OptString(2, distortion.CurveSoft.String()))
			if err != nil {
				L.ArgError(2, err.Error())
				return 0
			}
			w := distortion.NewWaveshaper(curve)
			w.SetDrive(optNumber(L, 1, distortion.MinDrive))
			return pushNode(L, driveNode{w})
		},
		"lowpass": func(L *lua.LState) int {
			return pushNode(L, newLowpassNode(sampleRate, optNumber(L, 1, 2000), optNumber(L, 2, 0.707)))
		},
		"comp": func(L *lua.LState) int {
			c := dynamics.NewCompressor(sampleRate)
			c.SetThreshold(optNumber(L, 1, dynamics.DefaultThreshold))
			c.SetRatio(optNumber(L, 2, dynamics.DefaultRatio))
			c.SetAttack(optNumber(L, 3, dynamics.DefaultAttack*1000) / 1000)
			c.SetRelease(optNumber(L, 4, dynamics.DefaultRelease*1000) / 1000)
			return pushNode(L, compNode{c})
		},
		"dcblock": func(L *lua.LState) int {
			dc := utility.NewDCBlocker(optNumber(L, 1, utility.DefaultDCCutoff), sampleRate)
			return pushNode(L, dcNode{DCBlocker: dc, sampleRate: sampleRate})
		},
	})
	L.SetGlobal(DSPLibName, lib)
}

func optNumber(L *lua.LState, n int, def float64) float64 {
	return float64(L.OptNumber(n, lua.LNumber(def)))
}

func pushNode(L *lua.LState, n node) int {
	ud := L.NewUserData()
	ud.Value = n
	L.SetMetatable(ud, L.GetTypeMetatable(nodeTypeName))
	L.Push(ud)
	return 1
}

func checkNode(L *lua.LState) node {
	ud := L.CheckUserData(1)
	n, ok := ud.Value.(node)
	if !ok {
		L.ArgError(1, "dsp node expected")
	}
	return n
}

func nodeProcess(L *lua.LState) int {
	n := checkNode(L)
	out := n.Process(float32(L.CheckNumber(2)))
	L.Push(lua.LNumber(out.Left))
	if n.Stereo() {
		L.Push(lua.LNumber(out.Right))
		return 2
	}
	return 1
}

func nodeSet(L *lua.LState) int {
	n := checkNode(L)
	args := make([]float64, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, float64(L.CheckNumber(i)))
	}
	n.Set(args)
	return 0
}

func nodeReset(L *lua.LState) int {
	checkNode(L).Reset()
	return 0
}
