package animation

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	GradientSpeed  = "animation.gradient.speed"
	GradientSpread = "animation.gradient.spread"
)

// Gradient sweeps phase-shifted sine waves along the strip, one per channel.
type Gradient struct {
	effect.AnimationBase
	env   effect.Env
	ids   []string
	start time.Time
	now   func() time.Time
}

func NewGradient() *Gradient { return &Gradient{now: time.Now} }

func (g *Gradient) Name() string       { return "Gradient" }
func (g *Gradient) Settings() []string { return g.ids }

// Declare registers the settings of Gradient in reg and returns their ids.
func (g *Gradient) Declare(reg *settings.Registry) []string {
	g.DeclareBase(reg)
	g.ids = effect.Register(reg,
		settings.Setting{ID: GradientSpeed, Name: "Speed", Category: settings.Internal,
			Description: "Cycles per second.", Value: settings.Float{V: 0.1, Min: 0, Max: 5, Step: 0.05}},
		settings.Setting{ID: GradientSpread, Name: "Spread", Category: settings.Internal,
			Description: "Color cycles across the strip.", Value: settings.Float{V: 1, Min: 0.1, Max: 10, Step: 0.1}},
	)
	return g.ids
}

func (g *Gradient) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	g.env = env
	g.EnableBase(env)
	g.Declare(env.Settings)
	g.start = g.now()
	return nil
}

func (g *Gradient) Loop() error {
	speed := g.env.Settings.Float(GradientSpeed)
	spread := g.env.Settings.Float(GradientSpread)
	t := g.now().Sub(g.start).Seconds()
	n := g.env.Pixels()
	out := make(frame.Frame, n)
	for i := range out {
		v := float64(i) / float64(n) * spread
		phase := v*2*math.Pi + t*2*math.Pi*speed
		out[i] = frame.Color{
			R: wave(phase),
			G: wave(phase + 2*math.Pi/3),
			B: wave(phase + 4*math.Pi/3),
		}
	}
	g.env.Output.PublishFrame(out)
	return nil
}

func (g *Gradient) Disable() {}

func wave(phase float64) uint8 {
	return uint8(math.Round(255 * (0.5 + 0.5*math.Sin(phase))))
}
