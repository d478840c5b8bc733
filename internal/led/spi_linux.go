//go:build linux

package led

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"unsafe"
)

// Minimal spidev ioctl bindings. NRZ is the periph-based alternative.
const (
	spiIOCWriteMode        = 0x40016b01
	spiIOCWriteBitsPerWord = 0x40016b03
	spiIOCWriteMaxSpeedHz  = 0x40046b04
)

type SPI struct {
	mu      sync.Mutex
	f       *os.File
	count   int
	resetUs int
	speedHz int
	enc     *encoder
}

// NewSPI opens cfg.Dev and prepares a 3x-expanding encoder for WS2812 over SPI.
// SpeedHz between 2.4 and 3.2 MHz suits the encoding. ResetUs is the latch, at least 280.
func NewSPI(cfg Config) (*SPI, error) {
	cfg = cfg.withDefaults()
	if cfg.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", cfg.Count)
	}
	order, err := ParseOrder(cfg.ColorOrder)
	if err != nil {
		return nil, err
	}
	speedHz, resetUs, count := cfg.SpeedHz, cfg.ResetUs, cfg.Count
	f, err := os.OpenFile(cfg.Dev, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open spidev: %w", err)
	}
	mode := byte(0)
	if err := ioctl(f, spiIOCWriteMode, unsafe.Pointer(&mode)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set mode: %w", err)
	}
	bpw := byte(8)
	if err := ioctl(f, spiIOCWriteBitsPerWord, unsafe.Pointer(&bpw)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set bits-per-word: %w", err)
	}
	hz := uint32(speedHz)
	if err := ioctl(f, spiIOCWriteMaxSpeedHz, unsafe.Pointer(&hz)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("SPI set speed: %w", err)
	}

	return &SPI{
		f:       f,
		count:   count,
		resetUs: resetUs,
		speedHz: speedHz,
		enc:     newEncoder(order),
	}, nil
}

func ioctl(f *os.File, req uintptr, arg unsafe.Pointer) error {
	if _, _, e := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), req, uintptr(arg)); e != 0 {
		return e
	}
	return nil
}

func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f != nil {
		err := s.f.Close()
		s.f = nil
		return err
	}
	return nil
}

// Write takes len(rgb)==3*count, expands to 9 bytes/pixel and appends the latch tail.
func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return fmt.Errorf("SPI closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	buf := append(s.enc.encode(rgb), make([]byte, latchBytes(s.resetUs, s.speedHz))...)
	if _, err := s.f.Write(buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}
