package effect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/audio"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// DefaultInterval paces animations that report a non-positive interval.
const DefaultInterval = 50 * time.Millisecond

// Runner keeps at most one producer enabled. Animations are ticked on their own goroutine;
// music effects are ticked by Feed.
type Runner struct {
	env     Env
	catalog *Catalog

	// mu serializes Start, Stop and Feed, so a producer never ticks after Disable.
	mu     sync.Mutex
	active Producer
	cancel context.CancelFunc
	done   chan struct{}

	listeners []func(name string)

	log    zerolog.Logger
	errLog zerolog.Logger
}

// NewRunner returns an idle runner. catalog may be nil when only Start is used.
func NewRunner(env Env, catalog *Catalog) *Runner {
	l := log.With().Str("component", "effect").Logger()
	return &Runner{
		env:     env,
		catalog: catalog,
		log:     l,
		errLog:  l.Sample(&zerolog.BurstSampler{Burst: 3, Period: 5 * time.Second}),
	}
}

// OnStart registers fn to be called with the producer name after every successful Start.
func (r *Runner) OnStart(fn func(name string)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Start disables the current producer, then enables p and makes it active. When Enable fails
// no producer is active afterwards.
func (r *Runner) Start(p Producer) error {
	r.mu.Lock()
	r.stop()
	if err := p.Enable(r.env); err != nil {
		r.mu.Unlock()
		r.log.Error().Err(err).Str("effect", p.Name()).Msg("enable effect")
		return fmt.Errorf("enable %s: %w", p.Name(), err)
	}
	r.active = p
	if a, ok := p.(Animation); ok {
		r.spawn(a)
	}
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	r.log.Info().Str("effect", p.Name()).Str("kind", KindOf(p)).Msg("effect started")
	for _, fn := range listeners {
		fn(p.Name())
	}
	return nil
}

// StartNamed builds a fresh producer from the catalog and starts it.
func (r *Runner) StartNamed(name string) error {
	if r.catalog == nil {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	p, err := r.catalog.New(name)
	if err != nil {
		return err
	}
	return r.Start(p)
}

// Stop disables and clears the active producer. It is safe to repeat.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
}

// Feed hands an analysis frame to the active music effect and ticks it.
// It is a no-op when the active producer is not a music effect.
func (r *Runner) Feed(a audio.Analysis) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.active.(MusicEffect)
	if !ok {
		return
	}
	m.Feed(a)
	r.tick(m)
}

// Active returns the active producer, nil when none.
func (r *Runner) Active() Producer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// ActiveSettings returns the settings registered by the active producer, in its order.
func (r *Runner) ActiveSettings() []settings.Setting {
	r.mu.Lock()
	p := r.active
	r.mu.Unlock()
	if p == nil || r.env.Settings == nil {
		return nil
	}
	var out []settings.Setting
	for _, id := range p.Settings() {
		if s, ok := r.env.Settings.Get(id); ok {
			out = append(out, s)
		}
	}
	return out
}

// stop and spawn expect r.mu to be held.
func (r *Runner) stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
		r.cancel, r.done = nil, nil
	}
	if r.active != nil {
		r.active.Disable()
		r.log.Debug().Str("effect", r.active.Name()).Msg("effect disabled")
		r.active = nil
	}
}

func (r *Runner) spawn(a Animation) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go func() {
		defer close(done)
		interval := a.Interval()
		if interval <= 0 {
			interval = DefaultInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			r.tick(a)
			if next := a.Interval(); next > 0 && next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}()
}

func (r *Runner) tick(p Producer) {
	if err := loop(p); err != nil {
		r.errLog.Warn().Err(err).Str("effect", p.Name()).Msg("effect tick")
	}
}

func loop(p Producer) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("%w: %v", ErrProducerPanic, v)
		}
	}()
	return p.Loop()
}
