package sequence

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `yaml:"t" json:"t"`
	V    float64 `yaml:"v" json:"v"`
	Ease string  `yaml:"ease,omitempty" json:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a list of keyframes sorted by T; Eval(t) interpolates a value.
type Envelope struct {
	Keys []Keyframe `yaml:"keys" json:"keys"`
}

// Clip is one segment of a playlist: starts an effect, runs for a duration and automates
// settings of that effect while it plays.
type Clip struct {
	Name      string              `yaml:"name" json:"name"`
	Effect    string              `yaml:"effect" json:"effect"`
	DurationS float64             `yaml:"duration_s" json:"durationS"`
	Params    map[string]Envelope `yaml:"params,omitempty" json:"params,omitempty"` // numeric settings over time
	Bools     map[string]Envelope `yaml:"bools,omitempty" json:"bools,omitempty"`   // 0..1 thresholded to bool
}

// Program is a full playlist.
type Program struct {
	Version string `yaml:"version" json:"version"` // e.g., "playlist.v1"
	Loop    bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
	Clips   []Clip `yaml:"clips" json:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the effect runner and settings registry.
type Hooks struct {
	// StartEffect switches the active effect immediately.
	StartEffect func(name string)
	// Setting setters for the active effect.
	SetParam func(id string, v float64)
	SetBool  func(id string, b bool)
}

// Player owns the current Program timeline and uses Hooks to drive the runner.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index

	hooks Hooks
}
