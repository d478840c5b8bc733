package animation

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	FadeRandomColor = "animation.fade.randomcolor"
	FadeColor       = "animation.fade.color"
)

// Fade fills the strip with one color and dims it from full to off, then starts over with a new color.
type Fade struct {
	effect.AnimationBase
	env   effect.Env
	ids   []string
	rng   *rand.Rand
	color frame.Color
	dim   int
}

func NewFade() *Fade {
	return &Fade{rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))}
}

func (f *Fade) Name() string       { return "Fade" }
func (f *Fade) Settings() []string { return f.ids }

// Declare registers the settings of Fade in reg and returns their ids.
func (f *Fade) Declare(reg *settings.Registry) []string {
	f.DeclareBase(reg)
	f.ids = effect.Register(reg,
		settings.Setting{ID: FadeRandomColor, Name: "Random color", Category: settings.Internal, Value: settings.Bool{V: true}},
		settings.Setting{ID: FadeColor, Name: "Color", Category: settings.Internal, Value: settings.Color{V: frame.Red}},
	)
	return f.ids
}

func (f *Fade) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	f.env = env
	f.EnableBase(env)
	f.Declare(env.Settings)
	f.color, f.dim = frame.Red, 100
	return nil
}

func (f *Fade) Loop() error {
	if f.dim <= 1 {
		f.color = effect.RandomColor(f.rng)
		f.dim = 100
	}
	f.dim--
	if !f.env.Settings.Bool(FadeRandomColor) {
		f.color = f.env.Settings.Color(FadeColor)
	}
	f.env.Output.PublishFrame(frame.Fill(frame.Dim(f.color, f.dim), f.env.Pixels()))
	return nil
}

func (f *Fade) Disable() {}
