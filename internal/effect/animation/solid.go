package animation

import (
	"math"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	SolidColor   = "animation.solid.color"
	SolidPulseHz = "animation.solid.pulsehz"
)

// Solid fills the strip with a single color. A non-zero pulse rate modulates its brightness.
type Solid struct {
	effect.AnimationBase
	env   effect.Env
	ids   []string
	start time.Time
	now   func() time.Time
}

func NewSolid() *Solid { return &Solid{now: time.Now} }

func (s *Solid) Name() string       { return "Solid" }
func (s *Solid) Settings() []string { return s.ids }

// Declare registers the settings of Solid in reg and returns their ids.
func (s *Solid) Declare(reg *settings.Registry) []string {
	s.DeclareBase(reg)
	s.ids = effect.Register(reg,
		settings.Setting{ID: SolidColor, Name: "Color", Category: settings.Internal, Value: settings.Color{V: frame.White}},
		settings.Setting{ID: SolidPulseHz, Name: "Pulse", Category: settings.Internal,
			Description: "Brightness pulses per second, 0 for steady.",
			Value:       settings.Float{V: 0, Min: 0, Max: 5, Step: 0.1}},
	)
	return s.ids
}

func (s *Solid) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	s.env = env
	s.EnableBase(env)
	s.Declare(env.Settings)
	s.start = s.now()
	return nil
}

func (s *Solid) Loop() error {
	c := s.env.Settings.Color(SolidColor)
	if hz := s.env.Settings.Float(SolidPulseHz); hz > 0 {
		t := s.now().Sub(s.start).Seconds()
		c = frame.Dim(c, int(math.Round(50+50*math.Sin(2*math.Pi*hz*t))))
	}
	s.env.Output.PublishFrame(frame.Fill(c, s.env.Pixels()))
	return nil
}

func (s *Solid) Disable() {}
