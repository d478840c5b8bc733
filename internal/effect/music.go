package effect

import (
	"slices"
	"sync"

	"github.com/coreman2200/funtimes-lightstream/internal/audio"
	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const SettingSensitivity = "musicsync.sensitivity"

// MusicBase holds the latest analysis for a music effect. Embed it, call DeclareBase from Declare and EnableBase from Enable.
type MusicBase struct {
	mu   sync.Mutex
	amps []float64
	bump bool
	reg  *settings.Registry
}

// DeclareBase registers the sensitivity setting shared by every music effect.
func (m *MusicBase) DeclareBase(reg *settings.Registry) {
	Register(reg, settings.Setting{
		ID: SettingSensitivity, Name: "Sensitivity", Category: settings.MusicEffect,
		Description: "Scales how strongly music effects react to the audio level.",
		Value:       settings.Float{V: 1, Min: 0.1, Max: 5, Step: 0.1},
	})
}

// EnableBase attaches the registry and clears any previous analysis.
func (m *MusicBase) EnableBase(env Env) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg = env.Settings
	m.amps, m.bump = nil, false
}

func (m *MusicBase) Feed(a audio.Analysis) {
	m.mu.Lock()
	m.amps = slices.Clone(a.Amplitudes)
	m.bump = m.bump || a.Bump
	m.mu.Unlock()
}

// Bump reports whether a beat arrived since the last call.
func (m *MusicBase) Bump() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bump
	m.bump = false
	return b
}

// Amplitudes returns a copy of the latest band levels.
func (m *MusicBase) Amplitudes() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.amps)
}

// Sensitivity is the shared reaction multiplier, 1 when unset.
func (m *MusicBase) Sensitivity() float64 {
	m.mu.Lock()
	reg := m.reg
	m.mu.Unlock()
	if reg == nil {
		return 1
	}
	if v, ok := settings.Lookup[settings.Float](reg, SettingSensitivity); ok {
		return v.V
	}
	return 1
}
