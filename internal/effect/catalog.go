package effect

import (
	"fmt"
	"slices"
	"sync"

	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

// Catalog maps producer names to constructors, so every Start gets a fresh producer.
type Catalog struct {
	mu    sync.RWMutex
	m     map[string]func() Producer
	names []string
}

func NewCatalog() *Catalog { return &Catalog{m: map[string]func() Producer{}} }

// Register adds or replaces the constructor for name.
func (c *Catalog) Register(name string, fn func() Producer) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.m[name]; !ok {
		c.names = append(c.names, name)
	}
	c.m[name] = fn
}

func (c *Catalog) New(name string) (Producer, error) {
	c.mu.RLock()
	fn, ok := c.m[name]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return fn(), nil
}

// Declare builds one producer per name and registers its settings in reg, so configuration
// surfaces see every effect's settings before it first runs.
func (c *Catalog) Declare(reg *settings.Registry) {
	if reg == nil {
		return
	}
	for _, name := range c.Names() {
		if p, err := c.New(name); err == nil {
			p.Declare(reg)
		}
	}
}

// Names lists the registered producers in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

// Kind is "animation" or "music" for the named producer, "" when unknown.
func (c *Catalog) Kind(name string) string {
	p, err := c.New(name)
	if err != nil {
		return ""
	}
	return KindOf(p)
}

func KindOf(p Producer) string {
	switch p.(type) {
	case MusicEffect:
		return "music"
	case Animation:
		return "animation"
	default:
		return ""
	}
}
