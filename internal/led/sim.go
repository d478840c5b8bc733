package led

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sim logs a compact summary of each frame, useful for headless runs and tests.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames int
	last   []byte
	closed bool
}

func NewSim(count int) *Sim {
	return &Sim{count: count}
}

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("sim closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	s.frames++
	s.last = append(s.last[:0], rgb...)

	var r, g, b float64
	for i := 0; i+2 < len(rgb); i += 3 {
		r += float64(rgb[i])
		g += float64(rgb[i+1])
		b += float64(rgb[i+2])
	}
	n := float64(s.count)
	log.Trace().Int("frame", s.frames).
		Floats64("avg", []float64{r / n, g / n, b / n}).
		Bytes("first", rgb[:3]).
		Msg("sim frame")
	return nil
}

// Last returns a copy of the most recent frame and the number of frames written.
func (s *Sim) Last() ([]byte, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...), s.frames
}

func (s *Sim) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
