package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/coreman2200/funtimes-lightstream/internal/frame"
)

// Record is the persisted form of a Setting.
type Record struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name,omitempty" json:"name,omitempty"`
	Category    Category `yaml:"category" json:"category"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Kind        Kind     `yaml:"kind" json:"kind"`

	Bool     bool     `yaml:"bool,omitempty" json:"bool,omitempty"`
	Number   float64  `yaml:"number,omitempty" json:"number,omitempty"`
	Min      float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max      float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Step     float64  `yaml:"step,omitempty" json:"step,omitempty"`
	Selected string   `yaml:"selected,omitempty" json:"selected,omitempty"`
	Options  []string `yaml:"options,omitempty" json:"options,omitempty"`
	Color    string   `yaml:"color,omitempty" json:"color,omitempty"`
	Object   string   `yaml:"object,omitempty" json:"object,omitempty"`
}

// ToRecord flattens s into its persisted form.
func ToRecord(s Setting) (Record, error) {
	rec := Record{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		Kind:        s.Kind(),
	}
	switch v := s.Value.(type) {
	case Bool:
		rec.Bool = v.V
	case Int:
		rec.Number, rec.Min, rec.Max, rec.Step = float64(v.V), float64(v.Min), float64(v.Max), float64(v.Step)
	case Float:
		rec.Number, rec.Min, rec.Max, rec.Step = v.V, v.Min, v.Max, v.Step
	case Selection:
		rec.Selected, rec.Options = v.Selected, v.Options
	case Color:
		rec.Color = v.V.String()
	case Object:
		b, err := json.Marshal(v.V)
		if err != nil {
			return Record{}, fmt.Errorf("encode object %q: %w", s.ID, err)
		}
		rec.Object = string(b)
	default:
		return Record{}, fmt.Errorf("%w: %q has no value", ErrInvalidValue, s.ID)
	}
	return rec, nil
}

func fromRecord(rec Record) (Setting, error) {
	if rec.ID == "" {
		return Setting{}, fmt.Errorf("%w: record without id", ErrInvalidValue)
	}
	if !rec.Category.Valid() {
		return Setting{}, fmt.Errorf("%w: %q has category %q", ErrInvalidValue, rec.ID, rec.Category)
	}
	s := Setting{ID: rec.ID, Name: rec.Name, Category: rec.Category, Description: rec.Description}
	switch rec.Kind {
	case KindBool:
		s.Value = Bool{V: rec.Bool}
	case KindInt:
		s.Value = Int{V: roundInt(rec.Number), Min: roundInt(rec.Min), Max: roundInt(rec.Max), Step: roundInt(rec.Step)}
	case KindFloat:
		s.Value = Float{V: rec.Number, Min: rec.Min, Max: rec.Max, Step: rec.Step}
	case KindSelection:
		s.Value = Selection{Selected: rec.Selected, Options: rec.Options}
	case KindColor:
		c, err := frame.ParseColor(rec.Color)
		if err != nil {
			return Setting{}, fmt.Errorf("%w: %q: %v", ErrInvalidValue, rec.ID, err)
		}
		s.Value = Color{V: c}
	case KindObject:
		var v any
		if rec.Object != "" {
			if err := json.Unmarshal([]byte(rec.Object), &v); err != nil {
				return Setting{}, fmt.Errorf("%w: %q: %v", ErrInvalidValue, rec.ID, err)
			}
		}
		s.Value = Object{V: v}
	default:
		return Setting{}, fmt.Errorf("%w: %q has kind %q", ErrInvalidValue, rec.ID, rec.Kind)
	}
	return s, nil
}

// normalizeObject passes v through JSON so the value held in memory is the one Load returns:
// numbers become float64, structs become maps.
func normalizeObject(v Object) (Object, error) {
	if v.V == nil {
		return v, nil
	}
	b, err := json.Marshal(v.V)
	if err != nil {
		return v, fmt.Errorf("%w: object is not JSON encodable: %v", ErrInvalidValue, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Object{V: out}, nil
}

func roundInt(f float64) int { return int(math.Round(f)) }

// Assign sets a value decoded from a loosely typed source (JSON, MQTT payloads, CLI strings),
// converting raw to the kind of the existing setting.
func (r *Registry) Assign(id string, raw any) error {
	s, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	v, err := convert(s.Kind(), raw)
	if err != nil {
		return fmt.Errorf("assign %q: %w", id, err)
	}
	return r.SetValue(id, v)
}

func convert(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindBool:
		switch x := raw.(type) {
		case bool:
			return Bool{V: x}, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return Bool{V: b}, nil
		}
	case KindInt:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		return Int{V: roundInt(f)}, nil
	case KindFloat:
		f, err := toFloat(raw)
		if err != nil {
			return nil, err
		}
		return Float{V: f}, nil
	case KindSelection:
		if x, ok := raw.(string); ok {
			return Selection{Selected: x}, nil
		}
	case KindColor:
		switch x := raw.(type) {
		case string:
			c, err := frame.ParseColor(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			return Color{V: c}, nil
		case frame.Color:
			return Color{V: x}, nil
		}
	case KindObject:
		return Object{V: raw}, nil
	}
	return nil, fmt.Errorf("%w: %T for %s setting", ErrInvalidValue, raw, kind)
}

func toFloat(raw any) (float64, error) {
	switch x := raw.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, raw)
}
