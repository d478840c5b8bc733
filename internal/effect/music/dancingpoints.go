package music

import (
	"math/rand/v2"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const (
	PointsRandomColor  = "musicsync.dancingpoints.randomcolor"
	PointsColor        = "musicsync.dancingpoints.color"
	PointsIdleActivity = "musicsync.dancingpoints.idleactivity"

	// SilenceTime is how long without a beat before idle activity kicks in.
	SilenceTime = 5 * time.Second

	minMove = 4
	maxMove = 10
)

// DancingPoints spreads one point per six pixels along the strip. On every beat each resting
// point picks a target a few pixels away and walks there one pixel per tick.
type DancingPoints struct {
	effect.MusicBase
	env effect.Env
	ids []string
	rng *rand.Rand
	now func() time.Time

	pos      []int
	target   []int
	colors   []frame.Color
	strip    frame.Frame
	lastBump time.Time
}

func NewDancingPoints(seed uint64) *DancingPoints {
	return &DancingPoints{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), now: time.Now}
}

func (d *DancingPoints) Name() string       { return "DancingPoints" }
func (d *DancingPoints) Settings() []string { return d.ids }

// Declare registers the settings of DancingPoints in reg and returns their ids.
func (d *DancingPoints) Declare(reg *settings.Registry) []string {
	d.DeclareBase(reg)
	d.ids = effect.Register(reg,
		settings.Setting{ID: PointsRandomColor, Name: "Random color", Category: settings.MusicEffect, Value: settings.Bool{V: true}},
		settings.Setting{ID: PointsColor, Name: "Color", Category: settings.MusicEffect, Value: settings.Color{V: frame.Red}},
		settings.Setting{ID: PointsIdleActivity, Name: "Idle activity", Category: settings.MusicEffect,
			Description: "Move points randomly when no music is playing.", Value: settings.Bool{V: false}},
	)
	return d.ids
}

func (d *DancingPoints) Enable(env effect.Env) error {
	if err := effect.CheckEnv(env); err != nil {
		return err
	}
	d.env = env
	d.EnableBase(env)
	d.Declare(env.Settings)

	n := env.Pixels()
	points := max(n/6, 1)
	d.pos = make([]int, points)
	d.target = make([]int, points)
	d.colors = make([]frame.Color, points)
	d.strip = frame.Fill(frame.Black, n)
	d.lastBump = d.now()
	for i := range d.pos {
		d.pos[i] = n / points * i
		d.target[i] = d.pos[i]
	}
	return nil
}

func (d *DancingPoints) Loop() error {
	bump := d.Bump()
	now := d.now()
	if bump {
		d.lastBump = now
	}
	if d.env.Settings.Bool(PointsIdleActivity) && now.Sub(d.lastBump) >= SilenceTime {
		bump = d.rng.IntN(25) == 2
	}

	for i := range d.strip {
		d.strip[i] = frame.Black
	}
	for i := range d.pos {
		if bump && d.target[i] == d.pos[i] {
			d.retarget(i)
		}
		switch {
		case d.target[i] > d.pos[i]:
			d.pos[i]++
		case d.target[i] < d.pos[i]:
			d.pos[i]--
		}
		d.setColor(i)
		d.strip[d.pos[i]] = d.colors[i]
	}
	d.env.Output.PublishFrame(d.strip)
	return nil
}

func (d *DancingPoints) Disable() {}

// Positions returns the current point positions.
func (d *DancingPoints) Positions() []int { return append([]int(nil), d.pos...) }

func (d *DancingPoints) retarget(i int) {
	dist := d.rng.IntN(maxMove-minMove) + minMove
	if d.rng.IntN(2) != 0 {
		dist = -dist
	}
	d.target[i] = min(max(d.pos[i]+dist, 0), len(d.strip)-1)
}

func (d *DancingPoints) setColor(i int) {
	if d.env.Settings.Bool(PointsRandomColor) {
		d.colors[i] = effect.Wheel(effect.WheelSize / len(d.pos) * i)
		return
	}
	d.colors[i] = d.env.Settings.Color(PointsColor)
}
