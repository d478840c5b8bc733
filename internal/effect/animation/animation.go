// Package animation holds the time-driven effects.
package animation

import (
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
)

// Register adds every animation to c.
func Register(c *effect.Catalog) {
	c.Register("Fade", func() effect.Producer { return NewFade() })
	c.Register("RainbowNoise", func() effect.Producer { return NewRainbowNoise(time.Now().UnixNano()) })
	c.Register("Solid", func() effect.Producer { return NewSolid() })
	c.Register("Gradient", func() effect.Producer { return NewGradient() })
	c.Register("TestPattern", func() effect.Producer { return NewTestPattern() })
}
