package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
	"github.com/coreman2200/funtimes-lightstream/internal/sequence"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// Conductor drives a playlist: it ticks the sequence player and routes its hooks into the
// effect runner and the settings registry.
type Conductor struct {
	Seq *sequence.SafePlayer
	log zerolog.Logger
}

func NewConductor(run *effect.Runner, reg *settings.Registry) *Conductor {
	c := &Conductor{log: log.With().Str("component", "conductor").Logger()}
	hooks := sequence.Hooks{
		StartEffect: func(name string) {
			if err := run.StartNamed(name); err != nil {
				c.log.Warn().Err(err).Str("effect", name).Msg("playlist clip")
			}
		},
		SetParam: func(id string, v float64) {
			if err := reg.Assign(id, v); err != nil {
				c.log.Debug().Err(err).Str("setting", id).Msg("playlist param")
			}
		},
		SetBool: func(id string, b bool) {
			if err := reg.Assign(id, b); err != nil {
				c.log.Debug().Err(err).Str("setting", id).Msg("playlist param")
			}
		},
	}
	c.Seq = sequence.NewSafePlayer(hooks)
	return c
}

// Play loads prog and starts it from the first clip.
func (c *Conductor) Play(prog sequence.Program) {
	c.Seq.With(func(p *sequence.Player) {
		if err := p.Load(prog); err != nil {
			c.log.Warn().Err(err).Msg("load playlist")
			return
		}
		p.Start()
	})
}

func (c *Conductor) Playing() bool {
	var on bool
	c.Seq.With(func(p *sequence.Player) { on = p.State == sequence.Running })
	return on
}

// Run ticks the player fps times per second until ctx is done.
func (c *Conductor) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 30
	}
	dt := time.Second / time.Duration(fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Seq.With(func(p *sequence.Player) { p.Tick(dt.Seconds()) })
		}
	}
}
