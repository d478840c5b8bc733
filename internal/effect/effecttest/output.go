// Package effecttest provides an in-memory effect.Output for tests.
package effecttest

import (
	"sync"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// Output records every published frame.
type Output struct {
	mu     sync.Mutex
	pixels int
	frames []frame.Frame
}

func NewOutput(pixels int) *Output { return &Output{pixels: pixels} }

func (o *Output) PixelCount() int { return o.pixels }

func (o *Output) PublishFrame(f frame.Frame) {
	o.mu.Lock()
	o.frames = append(o.frames, f.Clone())
	o.mu.Unlock()
}

// Last returns the latest frame, nil before the first publish.
func (o *Output) Last() frame.Frame {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.frames) == 0 {
		return nil
	}
	return o.frames[len(o.frames)-1]
}

func (o *Output) Count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}
