package effect

import (
	"math/rand/v2"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// WheelSize is the number of hues on the rainbow wheel.
const WheelSize = 360

var wheel = func() []frame.Color {
	w := make([]frame.Color, WheelSize)
	for i := range w {
		w[i] = frame.Hue(float64(i) * 360 / WheelSize)
	}
	return w
}()

// Wheel returns the rainbow color at position i, wrapped into the wheel.
func Wheel(i int) frame.Color {
	i %= WheelSize
	if i < 0 {
		i += WheelSize
	}
	return wheel[i]
}

// RandomColor picks a color from the wheel.
func RandomColor(r *rand.Rand) frame.Color {
	if r == nil {
		return wheel[rand.IntN(WheelSize)]
	}
	return wheel[r.IntN(WheelSize)]
}

// CheckEnv validates the environment a producer is enabled with.
func CheckEnv(env Env) error {
	if env.Settings == nil {
		return ErrNoSettings
	}
	return nil
}
