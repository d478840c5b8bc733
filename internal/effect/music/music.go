// Package music holds the effects driven by audio analysis.
package music

import (
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/effect"
)

// Register adds every music effect to c.
func Register(c *effect.Catalog) {
	c.Register("DancingPoints", func() effect.Producer { return NewDancingPoints(uint64(time.Now().UnixNano())) })
	c.Register("Rainbow", func() effect.Producer { return NewRainbow() })
}
