package effect

import (
	"sync"
	"time"

	"github.com/coreman2200/funtimes-lightstream/internal/settings"
)

const SettingSpeed = "animation.speed"

// Register adds every setting to reg and returns their ids in order. A nil reg registers nothing.
func Register(reg *settings.Registry, ss ...settings.Setting) []string {
	ids := make([]string, 0, len(ss))
	for _, s := range ss {
		if reg != nil {
			reg.Register(s)
		}
		ids = append(ids, s.ID)
	}
	return ids
}

// AnimationBase gives animations the shared speed setting and an Interval derived from it.
type AnimationBase struct {
	mu  sync.Mutex
	reg *settings.Registry
	// Fallback is the interval used when no registry is attached.
	Fallback time.Duration
}

// DeclareBase registers the speed setting shared by every animation.
func (a *AnimationBase) DeclareBase(reg *settings.Registry) {
	Register(reg, settings.Setting{
		ID: SettingSpeed, Name: "Speed", Category: settings.Internal,
		Description: "Milliseconds between animation frames.",
		Value:       settings.Int{V: 50, Min: 5, Max: 1000, Step: 5},
	})
}

// EnableBase attaches the registry Interval reads the speed from.
func (a *AnimationBase) EnableBase(env Env) {
	a.mu.Lock()
	a.reg = env.Settings
	a.mu.Unlock()
}

func (a *AnimationBase) Interval() time.Duration {
	a.mu.Lock()
	reg := a.reg
	a.mu.Unlock()
	if reg != nil {
		if v, ok := settings.Lookup[settings.Int](reg, SettingSpeed); ok {
			return time.Duration(v.V) * time.Millisecond
		}
	}
	if a.Fallback > 0 {
		return a.Fallback
	}
	return DefaultInterval
}
