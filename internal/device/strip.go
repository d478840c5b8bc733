package device

import (
	"fmt"
	"sync"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/layout"
	"github.com/coreman2200/funtimes-lightstream/internal/led"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
)

// Strip drives a wired LED strip or matrix through a led.Driver opened on Activate.
type Strip struct {
	*output.Lifecycle
	id     string
	cfg    led.Config
	layout layout.Layout

	// Open builds the driver; led.Open unless replaced before Activate.
	Open func(led.Config) (led.Driver, error)

	mu  sync.Mutex
	drv led.Driver
	buf frame.Frame
}

// NewStrip uses l to remap frames; a zero layout means a plain strip of cfg.Count pixels.
func NewStrip(id string, cfg led.Config, l layout.Layout) *Strip {
	cfg.Count = checkPixels(cfg.Count)
	if l.Count() == 0 {
		l = layout.Strip(cfg.Count)
	}
	s := &Strip{id: idOrNew(id), cfg: cfg, layout: l, Open: led.Open, buf: make(frame.Frame, cfg.Count)}
	s.Lifecycle = output.NewLifecycle(s.connect, s.disconnect)
	return s
}

func (s *Strip) ID() string      { return s.id }
func (s *Strip) PixelCount() int { return s.cfg.Count }

func (s *Strip) connect() error {
	if err := s.disconnect(); err != nil {
		return fmt.Errorf("close stale %s driver: %w", s.cfg.Kind, err)
	}
	drv, err := s.Open(s.cfg)
	if err != nil {
		return fmt.Errorf("open %s driver: %w", s.cfg.Kind, err)
	}
	s.mu.Lock()
	s.drv = drv
	s.mu.Unlock()
	return nil
}

func (s *Strip) disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drv == nil {
		return nil
	}
	err := s.drv.Close()
	s.drv = nil
	return err
}

// Output remaps f to wiring order and writes it. A write error marks the strip Failed.
func (s *Strip) Output(f frame.Frame) error {
	if !s.Connected() {
		return nil
	}
	s.mu.Lock()
	drv := s.drv
	if drv == nil {
		s.mu.Unlock()
		return nil
	}
	s.layout.Remap(s.buf, f.Fit(s.cfg.Count))
	rgb := s.buf.RGB()
	s.mu.Unlock()

	if err := drv.Write(rgb); err != nil {
		s.Fail(err)
		return fmt.Errorf("strip %s: %w", s.id, err)
	}
	return nil
}
