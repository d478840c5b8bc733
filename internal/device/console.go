package device

import (
	"fmt"
	"sync"

	"periph.io/x/devices/v3/screen1d"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
	"github.com/coreman2200/funtimes-lightstream/internal/output"
)

// Console renders frames as a row of colored blocks on the terminal.
type Console struct {
	*output.Lifecycle
	id     string
	pixels int

	mu  sync.Mutex
	dev *screen1d.Dev
}

func NewConsole(id string, pixels int) *Console {
	c := &Console{id: idOrNew(id), pixels: checkPixels(pixels)}
	c.Lifecycle = output.NewLifecycle(c.connect, c.disconnect)
	return c
}

func (c *Console) ID() string      { return c.id }
func (c *Console) PixelCount() int { return c.pixels }

func (c *Console) connect() error {
	c.mu.Lock()
	c.dev = screen1d.New(&screen1d.Opts{X: c.pixels})
	c.mu.Unlock()
	return nil
}

func (c *Console) disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return nil
	}
	err := c.dev.Halt()
	c.dev = nil
	return err
}

func (c *Console) Output(f frame.Frame) error {
	if !c.Connected() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dev == nil {
		return nil
	}
	if _, err := c.dev.Write(f.Fit(c.pixels).RGB()); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
