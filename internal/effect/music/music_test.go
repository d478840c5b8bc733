package music

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-lightstream/internal/audio"
	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/effect/effecttest"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

func newEnv(pixels int) (effect.Env, *effecttest.Output) {
	out := effecttest.NewOutput(pixels)
	return effect.Env{Settings: settings.New(nil), Output: out}, out
}

func lit(f frame.Frame) int {
	n := 0
	for _, c := range f {
		if c != frame.Black {
			n++
		}
	}
	return n
}

func TestDancingPointsInitialLayout(t *testing.T) {
	env, out := newEnv(24)
	d := NewDancingPoints(1)
	require.NoError(t, d.Enable(env))
	assert.Equal(t, []int{0, 6, 12, 18}, d.Positions())
	assert.Equal(t, []string{PointsRandomColor, PointsColor, PointsIdleActivity}, d.Settings())

	require.NoError(t, d.Loop())
	f := out.Last()
	assert.Equal(t, effect.Wheel(0), f[0])
	assert.Equal(t, effect.Wheel(90), f[6])
	assert.Equal(t, 4, lit(f))
}

func TestDancingPointsMoveOnBump(t *testing.T) {
	env, out := newEnv(60)
	d := NewDancingPoints(3)
	require.NoError(t, d.Enable(env))
	require.NoError(t, env.Settings.SetValue(PointsRandomColor, settings.Bool{V: false}))
	require.NoError(t, env.Settings.SetValue(PointsColor, settings.Color{V: frame.White}))
	start := d.Positions()

	d.Feed(audio.Analysis{Bump: true})
	for i := 0; i < maxMove; i++ {
		require.NoError(t, d.Loop())
	}
	moved := 0
	for i, p := range d.Positions() {
		dist := p - start[i]
		if dist != 0 {
			moved++
		}
		assert.LessOrEqual(t, max(dist, -dist), maxMove)
		assert.GreaterOrEqual(t, p, 0)
		assert.Less(t, p, 60)
	}
	assert.Greater(t, moved, 0)
	for _, c := range out.Last() {
		assert.Contains(t, []frame.Color{frame.Black, frame.White}, c)
	}

	// Without beats resting points stay put.
	rest := d.Positions()
	require.NoError(t, d.Loop())
	assert.Equal(t, rest, d.Positions())
}

func TestDancingPointsLeaveNoTrail(t *testing.T) {
	env, out := newEnv(60)
	d := NewDancingPoints(7)
	require.NoError(t, d.Enable(env))

	d.Feed(audio.Analysis{Bump: true})
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Loop())
		f := out.Last()
		at := map[int]bool{}
		for _, p := range d.Positions() {
			at[p] = true
		}
		for px, c := range f {
			if c != frame.Black {
				assert.True(t, at[px], "pixel %d lit without a point", px)
			}
		}
	}
}

func TestDancingPointsIdleActivity(t *testing.T) {
	env, _ := newEnv(60)
	d := NewDancingPoints(5)
	now := time.Unix(0, 0)
	d.now = func() time.Time { return now }
	require.NoError(t, d.Enable(env))
	require.NoError(t, env.Settings.SetValue(PointsIdleActivity, settings.Bool{V: true}))
	start := d.Positions()

	now = now.Add(SilenceTime)
	for i := 0; i < 500; i++ {
		require.NoError(t, d.Loop())
	}
	assert.NotEqual(t, start, d.Positions())
}

func TestDancingPointsTinyStrip(t *testing.T) {
	env, out := newEnv(3)
	d := NewDancingPoints(1)
	require.NoError(t, d.Enable(env))
	assert.Equal(t, []int{0}, d.Positions())
	d.Feed(audio.Analysis{Bump: true})
	for i := 0; i < 20; i++ {
		require.NoError(t, d.Loop())
	}
	assert.Len(t, out.Last(), 3)
}

func TestRainbowEnableFillsFromCentre(t *testing.T) {
	env, _ := newEnv(6)
	r := NewRainbow()
	require.NoError(t, r.Enable(env))
	assert.Equal(t, effect.Wheel(5), r.strip[2])
	assert.Equal(t, effect.Wheel(5), r.strip[3])
	assert.Equal(t, effect.Wheel(15), r.strip[0])
	assert.Equal(t, effect.Wheel(15), r.strip[5])
}

func TestRainbowBarFollowsLevel(t *testing.T) {
	env, out := newEnv(20)
	r := NewRainbow()
	require.NoError(t, r.Enable(env))
	require.NoError(t, env.Settings.SetValue(RainbowSmoothRise, settings.Bool{V: false}))
	require.NoError(t, env.Settings.SetValue(RainbowSmoothFall, settings.Bool{V: false}))

	// Silence: everything off.
	r.Feed(audio.Analysis{Amplitudes: []float64{0, 0}})
	require.NoError(t, r.Loop())
	assert.Equal(t, 0, lit(out.Last()))

	// Average 40 at sensitivity 1 lights 4 pixels per side.
	r.Feed(audio.Analysis{Amplitudes: []float64{30, 50}})
	require.NoError(t, r.Loop())
	f := out.Last()
	assert.Equal(t, 8, lit(f))
	assert.NotEqual(t, frame.Black, f[6])
	assert.Equal(t, frame.Black, f[5])

	// Loud input is capped at half the strip.
	r.Feed(audio.Analysis{Amplitudes: []float64{255}})
	require.NoError(t, r.Loop())
	assert.Equal(t, 20, lit(out.Last()))
}

func TestRainbowSmoothing(t *testing.T) {
	r := &Rainbow{}
	// Rising is limited to two pixels per tick.
	assert.Equal(t, 2, r.smooth(8, true, true))
	assert.Equal(t, 4, r.smooth(8, true, true))
	// Falling holds the previous length and decays by one.
	assert.Equal(t, 4, r.smooth(0, true, true))
	assert.Equal(t, 3, r.smooth(0, true, true))

	r = &Rainbow{lastLeds: 5}
	assert.Equal(t, 0, r.smooth(0, true, false))
	r = &Rainbow{}
	assert.Equal(t, 8, r.smooth(8, false, true))
	assert.Equal(t, 8, r.smooth(2, false, true))
}

func TestRainbowShiftsOutward(t *testing.T) {
	env, _ := newEnv(6)
	r := NewRainbow()
	require.NoError(t, r.Enable(env))
	before := r.strip.Clone()
	r.Feed(audio.Analysis{Bump: true})
	require.NoError(t, r.Loop())

	// steps 5 plus bump boost 2+20
	assert.Equal(t, 15+27, r.step)
	assert.Equal(t, before[1], r.strip[0])
	assert.Equal(t, before[4], r.strip[5])
	assert.Equal(t, effect.Wheel(42), r.strip[2])
	assert.Equal(t, effect.Wheel(42), r.strip[3])
}

func TestRainbowOddStrip(t *testing.T) {
	env, out := newEnv(5)
	r := NewRainbow()
	require.NoError(t, r.Enable(env))
	r.Feed(audio.Analysis{Amplitudes: []float64{255}})
	require.NoError(t, r.Loop())
	require.Len(t, out.Last(), 5)
	require.NoError(t, r.Loop())
	assert.Equal(t, r.strip[1], r.strip[2])
}

func TestSensitivityScalesBar(t *testing.T) {
	env, out := newEnv(40)
	r := NewRainbow()
	require.NoError(t, r.Enable(env))
	require.NoError(t, env.Settings.SetValue(RainbowSmoothRise, settings.Bool{V: false}))
	require.NoError(t, env.Settings.SetValue(RainbowSmoothFall, settings.Bool{V: false}))
	require.NoError(t, env.Settings.SetValue(effect.SettingSensitivity, settings.Float{V: 2}))

	r.Feed(audio.Analysis{Amplitudes: []float64{40}})
	require.NoError(t, r.Loop())
	assert.Equal(t, 16, lit(out.Last()))
}

func TestRegister(t *testing.T) {
	c := effect.NewCatalog()
	Register(c)
	assert.Equal(t, []string{"DancingPoints", "Rainbow"}, c.Names())
	assert.Equal(t, "music", c.Kind("Rainbow"))
}
