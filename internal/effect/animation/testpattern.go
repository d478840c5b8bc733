package animation

import (
	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const TestPatternMode = "animation.testpattern.mode"

// Test pattern modes.
const (
	IndexSweep = "index_sweep"
	RGBTest    = "rgb_channels"
	AllWhite   = "white"
)

// TestPattern lights pixels in wiring checks: one white pixel walking the strip, all pixels cycling
// through the pure channels, or everything white.
type TestPattern struct {
	effect.AnimationBase
	env  effect.Env
	ids  []string
	mode string
	step int
}

func NewTestPattern() *TestPattern { return &TestPattern{} }

func (p *TestPattern) Name() string       { return "TestPattern" }
func (p *TestPattern) Settings() []string { return p.ids }

// Declare registers the settings of TestPattern in reg and returns their ids.
func (p *TestPattern) Declare(reg *settings.Registry) []string {
	p.DeclareBase(reg)
	p.ids = effect.Register(reg, settings.Setting{
		ID: TestPatternMode, Name: "Mode", Category: settings.Internal,
		Value: settings.Selection{Selected: IndexSweep, Options: []string{IndexSweep, RGBTest, AllWhite}},
	})
	return p.ids
}

func (p *TestPattern) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	p.env = env
	p.EnableBase(env)
	p.Declare(env.Settings)
	p.step = 0
	return nil
}

func (p *TestPattern) Loop() error {
	mode := p.env.Settings.Selected(TestPatternMode)
	if mode != p.mode {
		p.mode, p.step = mode, 0
	}
	n := p.env.Pixels()
	out := frame.Fill(frame.Black, n)

	switch mode {
	case RGBTest:
		c := [3]frame.Color{{R: 255}, {G: 255}, {B: 255}}[p.step%3]
		for i := range out {
			out[i] = c
		}
	case AllWhite:
		for i := range out {
			out[i] = frame.White
		}
	default:
		out[p.step%n] = frame.White
	}
	p.step++
	p.env.Output.PublishFrame(out)
	return nil
}

func (p *TestPattern) Disable() {}
