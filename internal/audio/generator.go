package audio

import (
	"context"
	"math"
	"time"

	"github.com/ojrac/opensimplex-go"
)

// Generator synthesizes a beat at a fixed tempo with noise-shaped band levels.
// It stands in for a capture device when none is available.
type Generator struct {
	BPM   float64
	Bands int
	Rate  time.Duration
	Seed  int64

	noise opensimplex.Noise
}

func NewGenerator(bpm float64, bands int, seed int64) *Generator {
	if bpm <= 0 {
		bpm = 120
	}
	if bands <= 0 {
		bands = 16
	}
	return &Generator{BPM: bpm, Bands: bands, Rate: 20 * time.Millisecond, Seed: seed, noise: opensimplex.New(seed)}
}

// At returns the analysis for elapsed time since start. prevBeat is the beat index of the previous call.
func (g *Generator) At(elapsed time.Duration, prevBeat int) (Analysis, int) {
	beatLen := 60.0 / g.BPM
	t := elapsed.Seconds()
	beat := int(t / beatLen)
	phase := math.Mod(t, beatLen) / beatLen
	// Sharp attack at the start of each beat, exponential decay after it.
	env := math.Exp(-5 * phase)

	amps := make([]float64, g.Bands)
	for b := range amps {
		n := (g.noise.Eval2(float64(b)*0.3, t*0.8) + 1) / 2
		// Low bands carry the beat.
		weight := 1 - float64(b)/float64(g.Bands)
		v := (0.35*n + 0.65*env*weight) * MaxAmplitude
		amps[b] = math.Min(MaxAmplitude, math.Max(0, v))
	}
	return Analysis{Amplitudes: amps, Bump: beat != prevBeat}, beat
}

func (g *Generator) Run(ctx context.Context, fn func(Analysis)) error {
	if g.noise == nil {
		g.noise = opensimplex.New(g.Seed)
	}
	rate := g.Rate
	if rate <= 0 {
		rate = 20 * time.Millisecond
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()
	start := time.Now()
	prev := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a, beat := g.At(now.Sub(start), prev)
			prev = beat
			a.Time = now
			fn(a)
		}
	}
}
