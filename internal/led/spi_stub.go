//go:build !linux

package led

import "errors"

// ErrUnsupported is returned by the spidev driver off Linux. The nrz and sim drivers still work.
var ErrUnsupported = errors.New("led: spidev driver needs linux")

type SPI struct{}

func NewSPI(Config) (*SPI, error) { return nil, ErrUnsupported }

func (*SPI) Write([]byte) error { return ErrUnsupported }
func (*SPI) Close() error       { return nil }
