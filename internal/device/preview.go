package device

import (
	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
)

// Broadcaster delivers frames to preview viewers. server.Hub implements it.
type Broadcaster interface {
	BroadcastFrame(deviceID string, f frame.Frame)
}

// Preview is a virtual strip shown in the browser preview.
type Preview struct {
	*output.Lifecycle
	id     string
	pixels int
	hub    Broadcaster
}

func NewPreview(id string, pixels int, hub Broadcaster) *Preview {
	p := &Preview{id: idOrNew(id), pixels: checkPixels(pixels), hub: hub}
	p.Lifecycle = output.NewLifecycle(nil, nil)
	return p
}

func (p *Preview) ID() string      { return p.id }
func (p *Preview) PixelCount() int { return p.pixels }

func (p *Preview) Output(f frame.Frame) error {
	if !p.Connected() || p.hub == nil {
		return nil
	}
	p.hub.BroadcastFrame(p.id, f.Fit(p.pixels))
	return nil
}
