package sequence

import (
	"math"
	"sync"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{State: Idle, hooks: h}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrEmpty
	}
	p.prog = prog
	p.nowS = 0
	p.idx = 0
	p.State = Idle
	return nil
}

// Start moves to Running and starts the current clip's effect.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enter()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start. The running effect is left alone.
func (p *Player) Stop() {
	p.State = Idle
	p.nowS = 0
	p.idx = 0
}

// Clip returns the current clip and the time into it.
func (p *Player) Clip() (Clip, float64, bool) {
	if len(p.prog.Clips) == 0 {
		return Clip{}, 0, false
	}
	c, t := p.currentClipAndLocalT()
	return c, t, true
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	t = max(t, 0)
	total := p.totalDuration()
	if total > 0 && t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := len(p.prog.Clips) - 1
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	if p.State != Idle {
		p.enter()
	}
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 || dt <= 0 {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	if localT >= clip.DurationS {
		p.advanceClip()
		return
	}
	p.automate(clip, localT)
}

// automate pushes the clip's envelopes at localT into the settings hooks.
func (p *Player) automate(clip Clip, localT float64) {
	if p.hooks.SetParam != nil {
		for id, env := range clip.Params {
			p.hooks.SetParam(id, env.Eval(localT))
		}
	}
	if p.hooks.SetBool != nil {
		for id, env := range clip.Bools {
			p.hooks.SetBool(id, env.BoolEval(localT))
		}
	}
}

func (p *Player) enter() {
	clip, localT := p.currentClipAndLocalT()
	if p.hooks.StartEffect != nil {
		p.hooks.StartEffect(clip.Effect)
	}
	p.automate(clip, localT)
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	return p.prog.Clips[p.idx], p.nowS - acc
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) nextIndex() int {
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		p.State = Idle
		return
	}
	if next == 0 {
		// looping: rebase the clock so clip offsets stay valid
		p.nowS -= p.totalDuration()
	}
	p.idx = next
	p.enter()
}

// SafePlayer serializes access to a Player shared between a ticker and control surfaces.
type SafePlayer struct {
	mu sync.Mutex
	P  *Player
}

func NewSafePlayer(h Hooks) *SafePlayer {
	return &SafePlayer{P: NewPlayer(h)}
}

func (s *SafePlayer) With(f func(p *Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.P)
}
