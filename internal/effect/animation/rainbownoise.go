package animation

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	// The misspelling is kept so stored settings stay readable.
	NoiseBrightnessChange = "animation.rainbownoise.brgightnesschange"
	NoiseXIncrement       = "animation.rainbownoise.xincrement"
	NoiseYIncrement       = "animation.rainbownoise.yincrement"
	NoiseTimeIncrement    = "animation.rainbownoise.timeincrement"
)

// RainbowNoise picks every pixel's hue, and optionally its brightness, from simplex noise
// sampled along the strip and advanced over time.
type RainbowNoise struct {
	effect.AnimationBase
	env    effect.Env
	ids    []string
	seed   int64
	hue    opensimplex.Noise
	bright opensimplex.Noise
	strip  frame.Frame
	zoff   float64
}

func NewRainbowNoise(seed int64) *RainbowNoise { return &RainbowNoise{seed: seed} }

func (r *RainbowNoise) Name() string       { return "RainbowNoise" }
func (r *RainbowNoise) Settings() []string { return r.ids }

// Declare registers the settings of RainbowNoise in reg and returns their ids.
func (r *RainbowNoise) Declare(reg *settings.Registry) []string {
	r.DeclareBase(reg)
	r.ids = effect.Register(reg,
		settings.Setting{ID: NoiseBrightnessChange, Name: "Brightness change", Category: settings.Internal,
			Description: "Vary the brightness", Value: settings.Bool{V: false}},
		settings.Setting{ID: NoiseXIncrement, Name: "x-Increment", Category: settings.Internal,
			Value: settings.Float{V: 0.02, Min: 0, Max: 5, Step: 0.005}},
		settings.Setting{ID: NoiseYIncrement, Name: "y-Increment", Category: settings.Internal,
			Value: settings.Float{V: 0.005, Min: 0, Max: 5, Step: 0.005}},
		settings.Setting{ID: NoiseTimeIncrement, Name: "Time-Increment", Category: settings.Internal,
			Value: settings.Float{V: 0.02, Min: 0, Max: 5, Step: 0.002}},
	)
	return r.ids
}

func (r *RainbowNoise) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	r.env = env
	r.EnableBase(env)
	r.Declare(env.Settings)
	r.strip = frame.Fill(frame.Black, env.Pixels())
	r.bright = opensimplex.New(r.seed)
	r.hue = opensimplex.New(r.seed + 1)
	r.zoff = 0
	return nil
}

func (r *RainbowNoise) Loop() error {
	reg := r.env.Settings
	xinc, yinc := reg.Float(NoiseXIncrement), reg.Float(NoiseYIncrement)
	dim := reg.Bool(NoiseBrightnessChange)
	r.zoff += reg.Float(NoiseTimeIncrement)

	var xoff, yoff float64
	for i := range r.strip {
		xoff += xinc
		yoff += yinc
		c := effect.Wheel(int(remap(r.hue.Eval3(xoff, yoff, r.zoff), 0, effect.WheelSize-1)))
		if dim {
			c = frame.Dim(c, int(remap(r.bright.Eval3(xoff, yoff, r.zoff), 0, 100)))
		}
		r.strip[i] = c
	}
	r.env.Output.PublishFrame(r.strip)
	return nil
}

func (r *RainbowNoise) Disable() {}

// remap maps noise in -1..1 onto lo..hi, clamped.
func remap(n, lo, hi float64) float64 {
	v := lo + (n+1)/2*(hi-lo)
	return min(max(v, lo), hi)
}
