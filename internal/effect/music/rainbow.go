package music

import (
	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	RainbowSmoothRise = "musicsync.rainbow.smoothrise"
	RainbowSmoothFall = "musicsync.rainbow.smoothfall"
	RainbowSteps      = "musicsync.rainbow.steps"
)

// Rainbow scrolls the color wheel outward from the centre of the strip and lights a centre bar
// whose length follows the average audio level. Beats speed up the scroll.
type Rainbow struct {
	effect.MusicBase
	env effect.Env
	ids []string

	strip    frame.Frame
	half     int
	step     int
	lastLeds int
}

func NewRainbow() *Rainbow { return &Rainbow{} }

func (r *Rainbow) Name() string       { return "Rainbow" }
func (r *Rainbow) Settings() []string { return r.ids }

// Declare registers the settings of Rainbow in reg and returns their ids.
func (r *Rainbow) Declare(reg *settings.Registry) []string {
	r.DeclareBase(reg)
	r.ids = effect.Register(reg,
		settings.Setting{ID: RainbowSmoothRise, Name: "SmoothRise", Category: settings.MusicEffect, Value: settings.Bool{V: true}},
		settings.Setting{ID: RainbowSmoothFall, Name: "SmoothFall", Category: settings.MusicEffect, Value: settings.Bool{V: true}},
		settings.Setting{ID: RainbowSteps, Name: "Steps", Category: settings.MusicEffect,
			Value: settings.Int{V: 5, Min: 1, Max: 20, Step: 1}},
	)
	return r.ids
}

func (r *Rainbow) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	r.env = env
	r.EnableBase(env)
	r.Declare(env.Settings)

	n := env.Pixels()
	r.strip = frame.Fill(frame.Black, n)
	r.half = n / 2
	r.step, r.lastLeds = 0, 0
	for i := 0; i < r.half; i++ {
		r.advance(5)
		c := effect.Wheel(r.step)
		r.strip[r.half-1-i] = c
		r.strip[n-r.half+i] = c
	}
	return nil
}

func (r *Rainbow) Loop() error {
	reg := r.env.Settings
	rise, fall := reg.Bool(RainbowSmoothRise), reg.Bool(RainbowSmoothFall)
	steps := reg.Int(RainbowSteps)
	bump := r.Bump()

	leds := min(int(r.Average()*0.1*r.Sensitivity()), r.half)
	leds = r.smooth(leds, rise, fall)

	out := r.strip.Clone()

	if bump {
		r.advance(steps + steps/2 + 20)
	} else {
		r.advance(steps)
	}
	r.shift(effect.Wheel(r.step))

	n := len(out)
	for i := 0; i < r.half-leds; i++ {
		out[i] = frame.Black
		out[n-1-i] = frame.Black
	}
	r.env.Output.PublishFrame(out)
	return nil
}

func (r *Rainbow) Disable() {}

// Average is the mean of the latest band levels.
func (r *Rainbow) Average() float64 {
	amps := r.Amplitudes()
	if len(amps) == 0 {
		return 0
	}
	var sum float64
	for _, a := range amps {
		sum += a
	}
	return sum / float64(len(amps))
}

// smooth limits how fast the bar may grow (2 pixels per tick) and shrink (1 pixel per tick).
func (r *Rainbow) smooth(leds int, rise, fall bool) int {
	switch {
	case rise && fall:
		if r.lastLeds > leds {
			leds = r.lastLeds
			r.lastLeds--
		} else {
			r.lastLeds = min(r.lastLeds+2, leds)
			leds = r.lastLeds
		}
	case rise:
		if r.lastLeds > leds {
			r.lastLeds = leds
		} else {
			r.lastLeds = min(r.lastLeds+2, leds)
			leds = r.lastLeds
		}
	case fall:
		if r.lastLeds > leds {
			leds = r.lastLeds
			r.lastLeds--
		} else {
			r.lastLeds = leds
		}
	}
	return leds
}

func (r *Rainbow) advance(by int) {
	r.step += by
	if r.step >= effect.WheelSize {
		r.step = 0
	}
}

// shift moves both halves one pixel away from the centre and puts c in the middle.
func (r *Rainbow) shift(c frame.Color) {
	n := len(r.strip)
	if r.half == 0 {
		return
	}
	copy(r.strip[:r.half-1], r.strip[1:r.half])
	copy(r.strip[n-r.half+1:], r.strip[n-r.half:n-1])
	r.strip[r.half-1] = c
	r.strip[n-r.half] = c
	if n%2 == 1 {
		r.strip[r.half] = c
	}
}
