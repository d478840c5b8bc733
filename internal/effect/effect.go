// Package effect defines the frame producers and the runner that keeps exactly one of them active.
package effect

import (
	"errors"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/audio"
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

var ErrUnknown = errors.New("effect: unknown producer")

// Output is where producers publish frames. The output scheduler implements it.
type Output interface {
	PublishFrame(f frame.Frame)
	PixelCount() int
}

// Env is handed to a producer when it is enabled.
type Env struct {
	Settings *settings.Registry
	Output   Output
}

// Pixels is the output's pixel count, at least 1.
func (e Env) Pixels() int {
	if e.Output == nil {
		return 1
	}
	return max(e.Output.PixelCount(), 1)
}

// Producer computes frames from settings. Declare registers its settings without enabling it,
// so a catalog can publish the settings of producers that never ran. Enable declares again and
// resets its state, Loop computes and publishes one frame, Disable releases what Enable acquired.
type Producer interface {
	Name() string
	Declare(reg *settings.Registry) []string
	Enable(env Env) error
	Loop() error
	Disable()
	// Settings lists the ids of the settings the producer registered.
	Settings() []string
}

// Animation is a producer with its own cadence.
type Animation interface {
	Producer
	Interval() time.Duration
}

// MusicEffect is a producer driven by audio analysis frames. The runner calls Feed and then Loop
// for every analysis frame.
type MusicEffect interface {
	Producer
	Feed(a audio.Analysis)
}
