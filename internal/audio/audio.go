// Package audio provides the analysis frames that drive music effects.
package audio

import (
	"context"
	"time"
)

// MaxAmplitude is the top of the per-band amplitude scale.
const MaxAmplitude = 255.0

// Analysis is one audio analysis frame.
type Analysis struct {
	Time time.Time `json:"time"`
	// Amplitudes holds one level per frequency band, 0..MaxAmplitude, lowest band first.
	Amplitudes []float64 `json:"amplitudes"`
	// Bump marks a detected beat or transient.
	Bump bool `json:"bump"`
}

// Average is the mean amplitude across bands, 0 without bands.
func (a Analysis) Average() float64 {
	if len(a.Amplitudes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range a.Amplitudes {
		sum += v
	}
	return sum / float64(len(a.Amplitudes))
}

// Source produces analysis frames until ctx is cancelled. fn is called from the source's goroutine.
type Source interface {
	Run(ctx context.Context, fn func(Analysis)) error
}
