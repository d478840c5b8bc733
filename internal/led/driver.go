// Package led holds the byte-level WS281x drivers used by strip devices.
package led

import (
	"fmt"
	"strings"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Config selects and parameterizes a driver.
type Config struct {
	Kind       string // "spidev" | "nrz" | "sim"
	Dev        string // spidev path or periph port name, e.g. /dev/spidev0.0
	Count      int
	ColorOrder string
	SpeedHz    int
	ResetUs    int
}

const (
	DefaultDev     = "/dev/spidev0.0"
	DefaultSpeedHz = 2400000
	DefaultResetUs = 300
)

func (c Config) withDefaults() Config {
	if c.Dev == "" {
		c.Dev = DefaultDev
	}
	if c.SpeedHz <= 0 {
		c.SpeedHz = DefaultSpeedHz
	}
	if c.ResetUs <= 0 {
		c.ResetUs = DefaultResetUs
	}
	return c
}

// Open builds the driver named by cfg.Kind.
func Open(cfg Config) (Driver, error) {
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", cfg.Count)
	}
	switch strings.ToLower(cfg.Kind) {
	case "spidev", "spi":
		return NewSPI(cfg)
	case "nrz", "periph":
		return NewNRZ(cfg.Dev, cfg.Count, cfg.ColorOrder)
	case "sim", "":
		return NewSim(cfg.Count), nil
	default:
		return nil, fmt.Errorf("unknown led driver %q", cfg.Kind)
	}
}

// ColorOrder is the wire order of the three channels, e.g. "GRB".
type ColorOrder [3]byte

var GRB = ColorOrder{'G', 'R', 'B'}

// ParseOrder accepts any permutation of R, G and B. An empty string means GRB.
func ParseOrder(s string) (ColorOrder, error) {
	if s == "" {
		return GRB, nil
	}
	s = strings.ToUpper(s)
	if len(s) != 3 || !strings.ContainsRune(s, 'R') || !strings.ContainsRune(s, 'G') || !strings.ContainsRune(s, 'B') {
		return GRB, fmt.Errorf("invalid color order %q", s)
	}
	return ColorOrder{s[0], s[1], s[2]}, nil
}

// pick returns the channel of r,g,b named by o[i].
func (o ColorOrder) pick(i int, r, g, b byte) byte {
	switch o[i] {
	case 'R':
		return r
	case 'B':
		return b
	default:
		return g
	}
}

// Reorder writes rgb into dst in wire order. dst must be at least len(rgb).
func (o ColorOrder) Reorder(dst, rgb []byte) {
	for i := 0; i+2 < len(rgb); i += 3 {
		r, g, b := rgb[i], rgb[i+1], rgb[i+2]
		dst[i] = o.pick(0, r, g, b)
		dst[i+1] = o.pick(1, r, g, b)
		dst[i+2] = o.pick(2, r, g, b)
	}
}
