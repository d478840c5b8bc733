package sequence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeEval(t *testing.T) {
	env := Envelope{Keys: []Keyframe{
		{T: 0, V: 0, Ease: "linear"},
		{T: 10, V: 10, Ease: "step"},
		{T: 20, V: 0},
	}}
	assert.Equal(t, 0.0, env.Eval(-1))
	assert.Equal(t, 0.0, env.Eval(0))
	assert.Equal(t, 5.0, env.Eval(5))
	assert.Equal(t, 10.0, env.Eval(10))
	assert.Equal(t, 10.0, env.Eval(15), "step holds until the next key")
	assert.Equal(t, 0.0, env.Eval(25))
	assert.Equal(t, 0.0, Envelope{}.Eval(3))
	assert.True(t, Envelope{Keys: []Keyframe{{V: 0.7}}}.BoolEval(9))
}

func TestEase(t *testing.T) {
	assert.Equal(t, 0.5, easeApply("smooth", 0.5))
	assert.Equal(t, 0.5, easeApply("cubic", 0.5))
	assert.Equal(t, 0.25, easeApply("", 0.25))
}

func TestPlayerSwitchesEffects(t *testing.T) {
	var log []string
	params := map[string]float64{}
	p := NewPlayer(Hooks{
		StartEffect: func(name string) { log = append(log, name) },
		SetParam:    func(id string, v float64) { params[id] = v },
	})
	require.ErrorIs(t, p.Load(Program{}), ErrEmpty)
	require.NoError(t, p.Load(Program{
		Version: "playlist.v1",
		Clips: []Clip{
			{Name: "warmup", Effect: "Fade", DurationS: 4, Params: map[string]Envelope{
				"animation.speed": {Keys: []Keyframe{{T: 0, V: 100}, {T: 4, V: 20}}},
			}},
			{Name: "drop", Effect: "Rainbow", DurationS: 4},
		},
	}))

	p.Start()
	assert.Equal(t, []string{"Fade"}, log)
	assert.Equal(t, 100.0, params["animation.speed"])

	p.Tick(2)
	assert.Equal(t, 60.0, params["animation.speed"])

	p.Tick(2)
	assert.Equal(t, []string{"Fade", "Rainbow"}, log)

	p.Tick(4)
	assert.Equal(t, Idle, p.State)
	assert.Equal(t, []string{"Fade", "Rainbow"}, log)
}

func TestPlayerLoopsAndSeeks(t *testing.T) {
	var log []string
	p := NewPlayer(Hooks{StartEffect: func(name string) { log = append(log, name) }})
	require.NoError(t, p.Load(Program{Loop: true, Clips: []Clip{
		{Effect: "A", DurationS: 1},
		{Effect: "B", DurationS: 1},
	}}))
	p.Start()
	p.Tick(1)
	p.Tick(1)
	assert.Equal(t, []string{"A", "B", "A"}, log)
	assert.Equal(t, Running, p.State)

	c, local, ok := p.Clip()
	require.True(t, ok)
	assert.Equal(t, "A", c.Effect)
	assert.InDelta(t, 0, local, 1e-9)

	p.Seek(1.5)
	assert.Equal(t, "B", log[len(log)-1])

	p.Pause()
	p.Tick(10)
	c, _, _ = p.Clip()
	assert.Equal(t, "B", c.Effect)
	p.Resume()
	assert.Equal(t, Running, p.State)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: playlist.v1
loop: true
clips:
  - name: noise
    effect: RainbowNoise
    duration_s: 30
    params:
      animation.rainbownoise.timeincrement:
        keys:
          - {t: 30, v: 0.1}
          - {t: 0, v: 0.02, ease: smooth}
    bools:
      animation.rainbownoise.brgightnesschange:
        keys: [{t: 0, v: 1}]
`), 0o644))
	prog, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, prog.Clips, 1)
	keys := prog.Clips[0].Params["animation.rainbownoise.timeincrement"].Keys
	assert.Equal(t, 0.0, keys[0].T, "keys are sorted by time")
	assert.True(t, prog.Clips[0].Bools["animation.rainbownoise.brgightnesschange"].BoolEval(3))

	require.NoError(t, os.WriteFile(path, []byte("version: x\n"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrEmpty)
}
