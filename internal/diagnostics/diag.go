package diagnostics

import (
	"sync"
	"time"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Time           time.Time      `json:"time"`
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Bus fans diagnostics out to subscribers and keeps the most recent ones for late joiners.
type Bus struct {
	mu     sync.Mutex
	recent []Diagnostic
	keep   int
	subs   map[chan Diagnostic]struct{}
}

func NewBus(keep int) *Bus {
	return &Bus{keep: max(keep, 1), subs: map[chan Diagnostic]struct{}{}}
}

// Push records d and delivers it to every subscriber. Slow subscribers miss messages
// rather than block the publisher.
func (b *Bus) Push(d Diagnostic) {
	if d.Time.IsZero() {
		d.Time = time.Now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recent = append(b.recent, d)
	if len(b.recent) > b.keep {
		b.recent = b.recent[len(b.recent)-b.keep:]
	}
	for ch := range b.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Subscribe returns a channel of new diagnostics and a func that closes it.
func (b *Bus) Subscribe() (<-chan Diagnostic, func()) {
	ch := make(chan Diagnostic, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Bus) Recent() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Diagnostic(nil), b.recent...)
}
