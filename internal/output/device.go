// Package output streams the latest published frame to one active device at a controlled rate.
package output

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// MinPixels is the smallest pixel count a device may report.
const MinPixels = 1

type State int

const (
	Disconnected State = iota
	Connected
	Failed
)

// String returns the text shown on configuration surfaces.
func (s State) String() string {
	switch s {
	case Connected:
		return "Connected"
	case Failed:
		return "Connection failed"
	default:
		return "Disconnected"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Device is one frame sink with a connection state machine.
//
// Activate and Deactivate are idempotent within their target state. Output must be safe to
// call in any state; frames sent while not Connected are dropped without error.
type Device interface {
	ID() string
	PixelCount() int
	Activate() error
	Deactivate() error
	Output(f frame.Frame) error
	State() State
}

// Lifecycle implements the connection state machine once for every transport.
// Transports embed it and supply the connect/disconnect steps.
//
// op serializes Activate and Deactivate and is held across the transport I/O. mu guards the
// state alone, so State never waits on a slow connect.
type Lifecycle struct {
	op         sync.Mutex
	mu         sync.Mutex
	state      State
	connect    func() error
	disconnect func() error
	observers  []func(State, error)
}

// NewLifecycle returns a Disconnected lifecycle. Either function may be nil.
func NewLifecycle(connect, disconnect func() error) *Lifecycle {
	return &Lifecycle{connect: connect, disconnect: disconnect}
}

// Observe registers fn to be called after every state transition, with the error that caused it.
func (l *Lifecycle) Observe(fn func(State, error)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Activate connects unless already Connected. A Failed device releases what its last connection
// held before it retries.
func (l *Lifecycle) Activate() error {
	l.op.Lock()
	defer l.op.Unlock()

	switch l.State() {
	case Connected:
		return nil
	case Failed:
		if err := l.release(); err != nil {
			log.Debug().Err(err).Msg("release failed device before retry")
		}
	}
	var err error
	if l.connect != nil {
		err = l.connect()
	}
	next := Connected
	if err != nil {
		next = Failed
	}
	l.set(next, err)
	return err
}

// Deactivate disconnects a Connected or Failed device. It is safe to repeat.
func (l *Lifecycle) Deactivate() error {
	l.op.Lock()
	defer l.op.Unlock()

	if l.State() == Disconnected {
		return nil
	}
	err := l.release()
	l.set(Disconnected, err)
	return err
}

// Fail marks a Connected device as Failed, for transports that detect a lost link while sending.
// The transport keeps its resources until the next Activate or Deactivate.
func (l *Lifecycle) Fail(cause error) {
	l.mu.Lock()
	if l.state != Connected {
		l.mu.Unlock()
		return
	}
	obs := l.transition(Failed)
	l.mu.Unlock()
	notify(obs, Failed, cause)
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) Connected() bool { return l.State() == Connected }

func (l *Lifecycle) release() error {
	if l.disconnect == nil {
		return nil
	}
	return l.disconnect()
}

func (l *Lifecycle) set(next State, err error) {
	l.mu.Lock()
	obs := l.transition(next)
	l.mu.Unlock()
	notify(obs, next, err)
}

func (l *Lifecycle) transition(next State) []func(State, error) {
	if l.state == next {
		return nil
	}
	l.state = next
	return append([]func(State, error){}, l.observers...)
}

func notify(obs []func(State, error), s State, err error) {
	for _, fn := range obs {
		fn(s, err)
	}
}
