package settings

import (
	"slices"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// Category groups settings for configuration surfaces.
type Category string

const (
	General     Category = "General"
	Other       Category = "Other"
	Internal    Category = "Internal"
	MusicEffect Category = "MusicEffect"
)

// Hidden reports whether the category is kept off end-user settings surfaces.
func (c Category) Hidden() bool { return c == Internal || c == MusicEffect }

func (c Category) Valid() bool {
	switch c {
	case General, Other, Internal, MusicEffect:
		return true
	}
	return false
}

type Kind string

const (
	KindBool      Kind = "bool"
	KindInt       Kind = "int"
	KindFloat     Kind = "float"
	KindSelection Kind = "selection"
	KindColor     Kind = "color"
	KindObject    Kind = "object"
)

// Value is the closed set of setting payloads. Only the types in this package implement it.
type Value interface {
	Kind() Kind
	clone() Value
}

type Bool struct{ V bool }

type Int struct{ V, Min, Max, Step int }

type Float struct{ V, Min, Max, Step float64 }

// Selection is one choice out of an ordered option list.
type Selection struct {
	Selected string
	Options  []string
}

type Color struct{ V frame.Color }

// Object carries an opaque value. It is persisted as JSON, so it should hold JSON-friendly types.
type Object struct{ V any }

func (Bool) Kind() Kind      { return KindBool }
func (Int) Kind() Kind       { return KindInt }
func (Float) Kind() Kind     { return KindFloat }
func (Selection) Kind() Kind { return KindSelection }
func (Color) Kind() Kind     { return KindColor }
func (Object) Kind() Kind    { return KindObject }

func (v Bool) clone() Value  { return v }
func (v Int) clone() Value   { return v }
func (v Float) clone() Value { return v }
func (v Color) clone() Value { return v }
func (v Object) clone() Value {
	return v
}
func (v Selection) clone() Value {
	v.Options = slices.Clone(v.Options)
	return v
}

// Admissible reports whether opt is one of the options.
func (v Selection) Admissible(opt string) bool {
	return slices.Contains(v.Options, opt)
}

func (v Int) clamp(x int) int {
	if v.Min > v.Max {
		return x
	}
	return min(max(x, v.Min), v.Max)
}

func (v Float) clamp(x float64) float64 {
	if v.Min > v.Max {
		return x
	}
	return min(max(x, v.Min), v.Max)
}

// Setting is a named, typed, persisted configuration value.
type Setting struct {
	ID          string
	Name        string
	Category    Category
	Description string
	Value       Value
}

// Kind returns the kind of the setting's value, or "" when it has none.
func (s Setting) Kind() Kind {
	if s.Value == nil {
		return ""
	}
	return s.Value.Kind()
}

func (s Setting) clone() Setting {
	if s.Value != nil {
		s.Value = s.Value.clone()
	}
	return s
}
