package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/effect/effecttest"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

func newEnv(pixels int) (effect.Env, *effecttest.Output) {
	out := effecttest.NewOutput(pixels)
	return effect.Env{Settings: settings.New(nil), Output: out}, out
}

func TestEnableWithoutSettingsFails(t *testing.T) {
	for _, p := range []effect.Producer{NewFade(), NewRainbowNoise(1), NewSolid(), NewGradient(), NewTestPattern()} {
		assert.ErrorIs(t, p.Enable(effect.Env{}), effect.ErrNoSettings, p.Name())
	}
}

func TestFadeDimsFixedColor(t *testing.T) {
	env, out := newEnv(3)
	f := NewFade()
	require.NoError(t, f.Enable(env))
	assert.Equal(t, []string{FadeRandomColor, FadeColor}, f.Settings())

	require.NoError(t, env.Settings.SetValue(FadeRandomColor, settings.Bool{V: false}))
	require.NoError(t, env.Settings.SetValue(FadeColor, settings.Color{V: frame.Color{G: 200}}))

	require.NoError(t, f.Loop())
	assert.Equal(t, frame.Fill(frame.Dim(frame.Color{G: 200}, 99), 3), out.Last())
	for i := 0; i < 98; i++ {
		require.NoError(t, f.Loop())
	}
	assert.Equal(t, frame.Fill(frame.Dim(frame.Color{G: 200}, 1), 3), out.Last())

	// The cycle restarts at full intensity.
	require.NoError(t, f.Loop())
	assert.Equal(t, frame.Fill(frame.Dim(frame.Color{G: 200}, 99), 3), out.Last())
}

func TestFadeRandomColorComesFromWheel(t *testing.T) {
	env, out := newEnv(2)
	f := NewFade()
	require.NoError(t, f.Enable(env))
	for i := 0; i < 100; i++ {
		require.NoError(t, f.Loop())
	}
	last := out.Last()
	require.Len(t, last, 2)
	assert.Equal(t, last[0], last[1])
	assert.False(t, last.IsBlack())
}

func TestRainbowNoise(t *testing.T) {
	env, out := newEnv(30)
	r := NewRainbowNoise(42)
	require.NoError(t, r.Enable(env))
	assert.Len(t, r.Settings(), 4)
	assert.Equal(t, 0.02, env.Settings.Float(NoiseXIncrement))

	require.NoError(t, r.Loop())
	first := out.Last()
	require.Len(t, first, 30)
	require.NoError(t, r.Loop())
	assert.NotEqual(t, first, out.Last(), "time increment moves the noise field")

	// Same seed, same sequence.
	env2, out2 := newEnv(30)
	r2 := NewRainbowNoise(42)
	require.NoError(t, r2.Enable(env2))
	require.NoError(t, r2.Loop())
	assert.Equal(t, first, out2.Last())
}

func TestRainbowNoiseBrightnessChange(t *testing.T) {
	env, out := newEnv(50)
	r := NewRainbowNoise(7)
	require.NoError(t, r.Enable(env))
	require.NoError(t, env.Settings.SetValue(NoiseBrightnessChange, settings.Bool{V: true}))
	require.NoError(t, r.Loop())

	// Full-saturation wheel colors always have one channel at 255; dimmed ones mostly do not.
	dimmed := 0
	for _, c := range out.Last() {
		if max(c.R, c.G, c.B) < 255 {
			dimmed++
		}
	}
	assert.Greater(t, dimmed, 0)
}

func TestRemap(t *testing.T) {
	assert.Equal(t, 0.0, remap(-1, 0, 100))
	assert.Equal(t, 50.0, remap(0, 0, 100))
	assert.Equal(t, 100.0, remap(1.5, 0, 100))
}

func TestSolidPulse(t *testing.T) {
	env, out := newEnv(2)
	s := NewSolid()
	now := time.Unix(100, 0)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Enable(env))

	require.NoError(t, s.Loop())
	assert.Equal(t, frame.Fill(frame.White, 2), out.Last())

	require.NoError(t, env.Settings.SetValue(SolidPulseHz, settings.Float{V: 1}))
	now = now.Add(750 * time.Millisecond) // sin at 3/4 turn is -1
	require.NoError(t, s.Loop())
	assert.Equal(t, frame.Fill(frame.Black, 2), out.Last())
}

func TestGradient(t *testing.T) {
	env, out := newEnv(3)
	g := NewGradient()
	now := time.Unix(0, 0)
	g.now = func() time.Time { return now }
	require.NoError(t, g.Enable(env))
	require.NoError(t, g.Loop())

	f := out.Last()
	require.Len(t, f, 3)
	assert.Equal(t, uint8(128), f[0].R)
	assert.NotEqual(t, f[0], f[1])
}

func TestTestPattern(t *testing.T) {
	env, out := newEnv(3)
	p := NewTestPattern()
	require.NoError(t, p.Enable(env))

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Loop())
		want := frame.Fill(frame.Black, 3)
		want[i%3] = frame.White
		assert.Equal(t, want, out.Last())
	}

	require.NoError(t, env.Settings.SetValue(TestPatternMode, settings.Selection{Selected: RGBTest}))
	for _, c := range []frame.Color{{R: 255}, {G: 255}, {B: 255}, {R: 255}} {
		require.NoError(t, p.Loop())
		assert.Equal(t, frame.Fill(c, 3), out.Last())
	}

	require.NoError(t, env.Settings.SetValue(TestPatternMode, settings.Selection{Selected: AllWhite}))
	require.NoError(t, p.Loop())
	assert.Equal(t, frame.Fill(frame.White, 3), out.Last())
}

func TestRegister(t *testing.T) {
	c := effect.NewCatalog()
	Register(c)
	assert.Equal(t, []string{"Fade", "RainbowNoise", "Solid", "Gradient", "TestPattern"}, c.Names())
	for _, n := range c.Names() {
		assert.Equal(t, "animation", c.Kind(n))
	}
}
